package commands

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// binaryProperty is the name under which a --binary file is offered to the
// body assembler.
const binaryProperty = "data"

var fieldNamePattern = regexp.MustCompile(`^\w+$`)

// fileBinaryAccessor serves binary properties from local files.
type fileBinaryAccessor map[string]string

// GetBinary reads the file registered for property.
func (a fileBinaryAccessor) GetBinary(_ context.Context, property string) (*pbapi.BinaryData, error) {
	path, ok := a[property]
	if !ok {
		return nil, nil //nolint:nilnil // reported as missing binary data by the assembler
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binary property '%s': %w", property, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("binary property '%s' (%s): %w", property, path, constants.ErrNotRegularFile)
	}

	// path is supplied by the user on the command line
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binary property '%s': %w", property, err)
	}

	return &pbapi.BinaryData{
		Data:     data,
		MimeType: detectMimeType(path, data),
		FileName: filepath.Base(path),
	}, nil
}

// detectMimeType uses the file extension, then the content.
func detectMimeType(path string, data []byte) string {
	if byExtension := mime.TypeByExtension(filepath.Ext(path)); byExtension != "" {
		return byExtension
	}

	if len(data) == 0 {
		return constants.DefaultMimeType
	}

	return http.DetectContentType(data)
}

// parseBinaryArg splits "[field=]path". The prefix is only taken as a field
// name when it is a single word and the whole argument is not an existing file.
func parseBinaryArg(arg string) (string, string, error) {
	field, path := "", strings.TrimSpace(arg)

	if _, err := os.Stat(path); err != nil {
		prefix, rest, found := strings.Cut(arg, "=")
		if found && fieldNamePattern.MatchString(strings.TrimSpace(prefix)) {
			field, path = strings.TrimSpace(prefix), strings.TrimSpace(rest)
		}
	}

	if path == "" {
		return "", "", fmt.Errorf("%w: %q", constants.ErrInvalidBinaryArgument, arg)
	}

	return field, path, nil
}
