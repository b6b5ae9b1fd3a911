package pbapi_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/stretchr/testify/assert"
)

func TestRowLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		record   string
		expected string
	}{
		{
			name:     "name field wins",
			record:   `{"id":"r1","title":"Hello","name":"Alice"}`,
			expected: "Alice",
		},
		{
			name:     "numeric name",
			record:   `{"id":"r1","name":42}`,
			expected: "42",
		},
		{
			name:     "short columns",
			record:   `{"id":"r1","title":"Hello","count":5,"body":"a long text that exceeds twenty chars","flag":true}`,
			expected: `"title":"Hello","flag":true}`,
		},
		{
			name:     "empty name falls back",
			record:   `{"id":"r1","name":"","city":"Paris"}`,
			expected: `"city":"Paris"}`,
		},
		{
			name:     "id is never part of the label",
			record:   `{"id":"abc123xyz","tag":"red"}`,
			expected: `"tag":"red"}`,
		},
		{
			name:     "boundaries are exclusive below and inclusive above",
			record:   `{"id":"r1","two":"","three":"a","twenty":"123456789012345678","twentyone":"1234567890123456789"}`,
			expected: `"three":"a","twenty":"123456789012345678"}`,
		},
		{
			name:     "no short columns",
			record:   `{"id":"r1","n":1}`,
			expected: `}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := pbapi.NewRecord()
			if err := rec.UnmarshalJSON([]byte(tt.record)); err != nil {
				t.Fatal(err)
			}

			assert.Equal(t, tt.expected, pbapi.RowLabel(rec))
		})
	}
}

func TestRowLabel_Cutoff(t *testing.T) {
	t.Parallel()

	rec := pbapi.NewRecord()
	rec.Set("id", pbapi.String("r1"))

	for i := 0; i < 10; i++ {
		rec.Set(fmt.Sprintf("field%d", i), pbapi.String("abcdefghijklmnop"))
	}

	label := pbapi.RowLabel(rec)

	assert.Equal(t, 99, utf8.RuneCountInString(label))
	assert.True(t, strings.HasPrefix(label, `"field0":"abcdefghijklmnop"`))
}

func TestRowOption(t *testing.T) {
	t.Parallel()

	rec := pbapi.NewRecord()
	rec.Set("id", pbapi.String("r9"))
	rec.Set("name", pbapi.String("Bob"))

	assert.Equal(t, pbapi.OptionEntry{Label: "Bob", Value: "r9"}, pbapi.RowOption(rec))
}
