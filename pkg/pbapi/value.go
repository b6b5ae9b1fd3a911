package pbapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Static errors for err113 compliance.
var (
	ErrInvalidJSONValue = errors.New("invalid JSON value")
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value of an arbitrary record field.
//
// Numbers keep the literal text the backend sent and objects keep their key
// order, so a value serializes back exactly as it was received.
type Value struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	array   []Value
	object  *Record
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Number returns a numeric value from its JSON literal.
func Number(n json.Number) Value {
	return Value{kind: KindNumber, number: n}
}

// Int returns a numeric value.
func Int(i int64) Value {
	return Number(json.Number(strconv.FormatInt(i, 10)))
}

// Float returns a numeric value.
func Float(f float64) Value {
	return Number(json.Number(strconv.FormatFloat(f, 'f', -1, 64)))
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Array returns an array value.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: KindArray, array: items}
}

// Object returns an object value backed by rec.
func Object(rec *Record) Value {
	if rec == nil {
		rec = NewRecord()
	}

	return Value{kind: KindObject, object: rec}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// AsNumber returns the numeric literal held by v.
func (v Value) AsNumber() (json.Number, bool) {
	return v.number, v.kind == KindNumber
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsArray returns the items held by v.
func (v Value) AsArray() ([]Value, bool) {
	return v.array, v.kind == KindArray
}

// AsObject returns the object held by v.
func (v Value) AsObject() (*Record, bool) {
	return v.object, v.kind == KindObject
}

// Truthy follows the JavaScript truthiness rules the backend's clients rely on.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolean
	case KindNumber:
		f, err := v.number.Float64()

		return err == nil && f != 0 && !math.IsNaN(f)
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

// Text returns the string for string values and the JSON text for everything else.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.str
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}

	return string(data)
}

// Interface converts v into plain Go values (map[string]any, []any, float64, ...).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		if i, err := v.number.Int64(); err == nil {
			return float64(i)
		}

		f, err := v.number.Float64()
		if err != nil {
			return v.number.String()
		}

		return f
	case KindString:
		return v.str
	case KindArray:
		items := make([]any, len(v.array))
		for i, item := range v.array {
			items[i] = item.Interface()
		}

		return items
	case KindObject:
		return v.object.Map()
	default:
		return nil
	}
}

// Equal reports whether two values are structurally identical, including key order.
func (v Value) Equal(other Value) bool {
	left, err := v.MarshalJSON()
	if err != nil {
		return false
	}

	right, err := other.MarshalJSON()
	if err != nil {
		return false
	}

	return bytes.Equal(left, right)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	err := encodeValue(&buf, v)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return fmt.Errorf("%w: %s", ErrInvalidJSONValue, string(data))
	}

	switch data[0] {
	case 'n':
		*v = Null()
	case 't', 'f':
		var b bool

		err := json.Unmarshal(data, &b)
		if err != nil {
			return fmt.Errorf("decoding bool: %w", err)
		}

		*v = Bool(b)
	case '"':
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("decoding string: %w", err)
		}

		*v = String(s)
	case '[':
		var items []Value

		err := json.Unmarshal(data, &items)
		if err != nil {
			return fmt.Errorf("decoding array: %w", err)
		}

		*v = Array(items...)
	case '{':
		rec := NewRecord()

		err := rec.UnmarshalJSON(data)
		if err != nil {
			return fmt.Errorf("decoding object: %w", err)
		}

		*v = Object(rec)
	default:
		var n json.Number

		err := json.Unmarshal(data, &n)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidJSONValue, string(data))
		}

		*v = Number(n)
	}

	return nil
}

// ValueOf converts a plain Go value into a Value.
//
// Maps are converted with their keys sorted, since Go maps carry no order.
func ValueOf(raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return typed, nil
	case *Record:
		return Object(typed), nil
	case bool:
		return Bool(typed), nil
	case string:
		return String(typed), nil
	case json.Number:
		return Number(typed), nil
	case int:
		return Int(int64(typed)), nil
	case int32:
		return Int(int64(typed)), nil
	case int64:
		return Int(typed), nil
	case uint:
		return Number(json.Number(strconv.FormatUint(uint64(typed), 10))), nil
	case uint64:
		return Number(json.Number(strconv.FormatUint(typed, 10))), nil
	case float32:
		return Float(float64(typed)), nil
	case float64:
		return Float(typed), nil
	case []any:
		items := make([]Value, 0, len(typed))

		for _, item := range typed {
			value, err := ValueOf(item)
			if err != nil {
				return Value{}, err
			}

			items = append(items, value)
		}

		return Array(items...), nil
	case map[string]any:
		rec, err := RecordFromMap(typed)
		if err != nil {
			return Value{}, err
		}

		return Object(rec), nil
	default:
		return valueOfReflect(raw)
	}
}

// valueOfReflect handles slices and maps of concrete element types.
func valueOfReflect(raw any) (Value, error) {
	rv := reflect.ValueOf(raw)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, 0, rv.Len())

		for i := 0; i < rv.Len(); i++ {
			value, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}

			items = append(items, value)
		}

		return Array(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: map key type %s", ErrInvalidJSONValue, rv.Type().Key())
		}

		keys := make([]string, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			keys = append(keys, key.String())
		}

		sort.Strings(keys)

		rec := NewRecord()

		for _, key := range keys {
			value, err := ValueOf(rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, err
			}

			rec.Set(key, value)
		}

		return Object(rec), nil
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %T", ErrInvalidJSONValue, raw)
		}

		var value Value

		err = value.UnmarshalJSON(data)
		if err != nil {
			return Value{}, err
		}

		return value, nil
	}
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		if v.number == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(v.number.String())
		}
	case KindString:
		return encodeString(buf, v.str)
	case KindArray:
		buf.WriteByte('[')

		for i, item := range v.array {
			if i > 0 {
				buf.WriteByte(',')
			}

			err := encodeValue(buf, item)
			if err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case KindObject:
		return encodeRecord(buf, v.object, nil)
	}

	return nil
}

// encodeString writes s as a JSON string without HTML escaping, matching
// what JavaScript clients of the backend produce.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer

	encoder := json.NewEncoder(&tmp)
	encoder.SetEscapeHTML(false)

	err := encoder.Encode(s)
	if err != nil {
		return fmt.Errorf("encoding string: %w", err)
	}

	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))

	return nil
}
