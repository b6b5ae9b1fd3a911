package pbapi

import (
	"bytes"
	"unicode/utf8"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// FieldName is the conventional display field of a record.
const FieldName = "name"

// RowOption returns the selection entry of a record: its id as value and a
// human readable label.
func RowOption(rec *Record) OptionEntry {
	return OptionEntry{
		Label: RowLabel(rec),
		Value: rec.ID(),
	}
}

// RowLabel returns the display label of a record.
//
// A truthy "name" field is used as is. Otherwise the label is built from the
// short columns of the record (every field but id whose JSON form is longer
// than 2 and at most 20 characters), serialized as a JSON object without its
// opening brace and cut to 99 characters.
func RowLabel(rec *Record) string {
	if name, ok := rec.Get(FieldName); ok && name.Truthy() {
		return name.Text()
	}

	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true

	rec.Each(func(key string, value Value) {
		if key == FieldID {
			return
		}

		serialized, err := value.MarshalJSON()
		if err != nil {
			return
		}

		length := utf8.RuneCount(serialized)
		if length <= constants.RowLabelMinLength || length > constants.RowLabelMaxLength {
			return
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		_ = encodeString(&buf, key)

		buf.WriteByte(':')
		buf.Write(serialized)
	})

	buf.WriteByte('}')

	return substring(buf.String(), 1, constants.RowLabelCutoff)
}

// substring returns the runes of s in [start, end), clamped to the length of s.
func substring(s string, start, end int) string {
	runes := []rune(s)

	if end > len(runes) {
		end = len(runes)
	}

	if start >= end {
		return ""
	}

	return string(runes[start:end])
}
