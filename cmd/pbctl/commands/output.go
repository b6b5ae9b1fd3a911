package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/internal/jq"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// outputOptions selects how command results are written.
type outputOptions struct {
	Format string
	JQ     string
}

func currentOutputOptions() outputOptions {
	return outputOptions{
		Format: viper.GetString("output"),
		JQ:     viper.GetString("jq"),
	}
}

// render writes data in the selected format. A jq expression always
// produces JSON. table draws the table format; when nil, JSON is written instead.
func render(ctx context.Context, w io.Writer, opts outputOptions, data interface{}, table func(io.Writer) error) error {
	if opts.JQ != "" {
		return writeJQ(ctx, w, opts.JQ, data)
	}

	switch strings.ToLower(opts.Format) {
	case constants.FormatJSON:
		return writeJSON(w, data)
	case constants.FormatYAML:
		return writeYAML(w, data)
	case constants.FormatTable, "":
		if table == nil {
			return writeJSON(w, data)
		}

		return table(w)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, opts.Format)
	}
}

func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))
	encoder.SetEscapeHTML(false)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}

	return nil
}

// writeYAML encodes data through its JSON form, so records and values keep
// their wire representation.
func writeYAML(w io.Writer, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML output: %w", err)
	}

	var plain interface{}

	err = json.Unmarshal(raw, &plain)
	if err != nil {
		return fmt.Errorf("failed to encode YAML output: %w", err)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err = encoder.Encode(plain)
	if err != nil {
		return fmt.Errorf("failed to encode YAML output: %w", err)
	}

	return encoder.Close()
}

func writeJQ(ctx context.Context, w io.Writer, expression string, data interface{}) error {
	filter, err := jq.Compile(expression)
	if err != nil {
		return err
	}

	values, err := filter.Apply(ctx, data)
	if err != nil {
		return err
	}

	for _, value := range values {
		err = writeJSON(w, value)
		if err != nil {
			return err
		}
	}

	return nil
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	cells := make([]any, len(headers))
	for i, header := range headers {
		cells[i] = header
	}

	table.Header(cells...)

	return table
}

func propertiesTable(w io.Writer, rows [][2]string) error {
	table := newTable(w, "Property", "Value")

	for _, row := range rows {
		_ = table.Append([]string{row[0], row[1]})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func optionsTable(w io.Writer, entries []pbapi.OptionEntry) error {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No options found")

		return nil
	}

	table := newTable(w, "Name", "Value")

	for _, entry := range entries {
		_ = table.Append([]string{entry.Label, entry.Value})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// recordsTable draws one row per record. Columns follow the order in which
// keys first appear.
func recordsTable(w io.Writer, records []*pbapi.Record) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No records found")

		return nil
	}

	columns := recordColumns(records)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = columnHeader(column)
	}

	table := newTable(w, headers...)

	for _, record := range records {
		row := make([]string, len(columns))

		for i, column := range columns {
			if value, ok := record.Get(column); ok {
				row[i] = truncate(value.Text(), constants.MaxCellWidth)
			}
		}

		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func recordColumns(records []*pbapi.Record) []string {
	seen := make(map[string]bool)
	columns := make([]string, 0)

	for _, record := range records {
		for _, key := range record.Keys() {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	return columns
}

// columnHeader turns "collectionName" or "user_collection" into a title-cased header.
func columnHeader(key string) string {
	var words strings.Builder

	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			words.WriteRune(' ')
		case i > 0 && r >= 'A' && r <= 'Z':
			words.WriteRune(' ')
			words.WriteRune(r)
		default:
			words.WriteRune(r)
		}
	}

	return cases.Title(language.English).String(words.String())
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-3]) + "..."
}
