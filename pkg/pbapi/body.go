package pbapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// FieldAssignment sets one record field to a value.
type FieldAssignment struct {
	Name  string `mapstructure:"name"  json:"name"`
	Value Value  `mapstructure:"value" json:"value"`
}

// BinaryAttachment names the binary input to send and the record field receiving it.
type BinaryAttachment struct {
	// Property is the host-side name of the binary data. Empty means nothing to send.
	Property string
	// FieldName is the record field the file is stored in. Empty falls back to "file".
	FieldName string
}

// BodySpec describes the data entry modes active for one request.
// Any combination of the three may be set.
type BodySpec struct {
	Fields []FieldAssignment
	JSON   *Record
	Binary *BinaryAttachment
}

// BinaryData is a binary payload supplied by the host.
type BinaryData struct {
	Data     []byte
	MimeType string
	FileName string
}

// BinaryAccessor resolves named binary data of the current input item.
type BinaryAccessor interface {
	GetBinary(ctx context.Context, property string) (*BinaryData, error)
}

// Payload is an assembled request body.
type Payload struct {
	Body        []byte
	ContentType string
	// Fields holds the merged non-binary fields in assembly order.
	Fields *Record
	// Multipart is true when the body carries a binary part.
	Multipart bool
}

// BodyAssembler merges field assignments, a raw JSON body and a binary
// attachment into a single request body.
type BodyAssembler struct {
	accessor BinaryAccessor
	logger   Logger
}

// NewBodyAssembler creates an assembler reading binary data through accessor.
// Both arguments may be nil.
func NewBodyAssembler(accessor BinaryAccessor, logger Logger) *BodyAssembler {
	return &BodyAssembler{
		accessor: accessor,
		logger:   logger,
	}
}

// AssembleBody is a shorthand for NewBodyAssembler(accessor, nil).Assemble.
func AssembleBody(ctx context.Context, spec *BodySpec, accessor BinaryAccessor) (*Payload, error) {
	return NewBodyAssembler(accessor, nil).Assemble(ctx, spec)
}

// Assemble builds the request body for spec.
//
// Field assignments are applied first and the JSON body second, so JSON keys
// win over assigned fields of the same name. Without a binary attachment the
// result is a JSON object; with one it is multipart/form-data with the
// merged fields as form values followed by the file part.
func (a *BodyAssembler) Assemble(ctx context.Context, spec *BodySpec) (*Payload, error) {
	fields := NewRecord()

	if spec == nil {
		spec = &BodySpec{}
	}

	for _, assignment := range spec.Fields {
		fields.Set(assignment.Name, assignment.Value)
	}

	if spec.JSON != nil {
		fields.Merge(spec.JSON)
	}

	binary, err := a.resolveBinary(ctx, spec.Binary)
	if err != nil {
		return nil, err
	}

	if binary == nil {
		body, err := fields.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		return &Payload{
			Body:        body,
			ContentType: constants.ContentTypeJSON,
			Fields:      fields,
		}, nil
	}

	formName := spec.Binary.FieldName
	if formName == "" {
		formName = constants.DefaultAttachmentField
	}

	body, contentType, err := encodeMultipart(fields, formName, binary)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Body:        body,
		ContentType: contentType,
		Fields:      fields,
		Multipart:   true,
	}, nil
}

func (a *BodyAssembler) resolveBinary(ctx context.Context, attachment *BinaryAttachment) (*BinaryData, error) {
	if attachment == nil {
		return nil, nil //nolint:nilnil // no binary part requested
	}

	if attachment.Property == "" {
		if a.logger != nil {
			a.logger.Info("No binary data to send, skipping", nil)
		}

		return nil, nil //nolint:nilnil // empty property is a no-op
	}

	if a.accessor == nil {
		return nil, NewConfigurationError("binaryPropertyName", ErrNoBinaryAccessor)
	}

	binary, err := a.accessor.GetBinary(ctx, attachment.Property)
	if err != nil {
		return nil, NewConfigurationError("binaryPropertyName",
			fmt.Errorf("%w: %q: %w", ErrBinaryDataNotFound, attachment.Property, err))
	}

	if binary == nil {
		return nil, NewConfigurationError("binaryPropertyName",
			fmt.Errorf("%w: %q", ErrBinaryDataNotFound, attachment.Property))
	}

	return binary, nil
}

func encodeMultipart(fields *Record, formName string, binary *BinaryData) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	var err error

	fields.Each(func(key string, value Value) {
		if err != nil {
			return
		}

		err = writer.WriteField(key, value.Text())
	})

	if err != nil {
		return nil, "", fmt.Errorf("failed to write form field: %w", err)
	}

	fileName := binary.FileName
	if fileName == "" {
		fileName = formName
	}

	mimeType := binary.MimeType
	if mimeType == "" {
		mimeType = constants.DefaultMimeType
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(formName), escapeQuotes(fileName)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	_, err = part.Write(binary.Data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to write file data: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
