package pbapi

import (
	"bytes"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FieldID is the identifier field carried by every record.
const FieldID = "id"

// Record is a JSON object whose keys keep the order the backend sent them in.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.New[string, Value]()}
}

// RecordFromMap builds a record from a Go map, with keys in sorted order.
func RecordFromMap(values map[string]any) (*Record, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	rec := NewRecord()

	for _, key := range keys {
		value, err := ValueOf(values[key])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}

		rec.Set(key, value)
	}

	return rec, nil
}

func (r *Record) ensure() {
	if r.fields == nil {
		r.fields = orderedmap.New[string, Value]()
	}
}

// ID returns the record identifier, or "" when the record has none.
func (r *Record) ID() string {
	value, ok := r.Get(FieldID)
	if !ok {
		return ""
	}

	return value.Text()
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil || r.fields == nil {
		return Value{}, false
	}

	return r.fields.Get(key)
}

// Set stores value under key. Existing keys keep their position.
func (r *Record) Set(key string, value Value) {
	r.ensure()
	r.fields.Set(key, value)
}

// Delete removes key from the record.
func (r *Record) Delete(key string) {
	if r.fields == nil {
		return
	}

	r.fields.Delete(key)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}

	return r.fields.Len()
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.Len())

	r.Each(func(key string, _ Value) {
		keys = append(keys, key)
	})

	return keys
}

// Each calls fn for every field in order.
func (r *Record) Each(fn func(key string, value Value)) {
	if r == nil || r.fields == nil {
		return
	}

	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Merge copies every field of other into r, overwriting existing keys.
func (r *Record) Merge(other *Record) {
	other.Each(func(key string, value Value) {
		r.Set(key, value)
	})
}

// Clone returns a shallow copy of the record.
func (r *Record) Clone() *Record {
	clone := NewRecord()
	clone.Merge(r)

	return clone
}

// Map converts the record into a plain Go map.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, r.Len())

	r.Each(func(key string, value Value) {
		out[key] = value.Interface()
	})

	return out
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer

	err := encodeRecord(&buf, r, nil)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	fields := orderedmap.New[string, Value]()

	err := fields.UnmarshalJSON(data)
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}

	r.fields = fields

	return nil
}

// encodeRecord writes r as a JSON object, skipping the keys for which skip returns true.
func encodeRecord(buf *bytes.Buffer, r *Record, skip func(key string) bool) error {
	buf.WriteByte('{')

	first := true

	for pair := r.oldest(); pair != nil; pair = pair.Next() {
		if skip != nil && skip(pair.Key) {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		err := encodeString(buf, pair.Key)
		if err != nil {
			return err
		}

		buf.WriteByte(':')

		err = encodeValue(buf, pair.Value)
		if err != nil {
			return fmt.Errorf("field %q: %w", pair.Key, err)
		}
	}

	buf.WriteByte('}')

	return nil
}

func (r *Record) oldest() *orderedmap.Pair[string, Value] {
	if r == nil || r.fields == nil {
		return nil
	}

	return r.fields.Oldest()
}
