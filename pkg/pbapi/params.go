package pbapi

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/mitchellh/mapstructure"
)

// OperationParams holds the host parameters of one operation.
type OperationParams struct {
	Collection         string            `mapstructure:"resource"`
	Operation          string            `mapstructure:"operation"`
	ElementID          string            `mapstructure:"elementId"`
	AllElements        bool              `mapstructure:"allElements"`
	Page               int               `mapstructure:"page"`
	ElementsPerPage    int               `mapstructure:"elementsPerPage"`
	Filter             string            `mapstructure:"filter"`
	Sort               string            `mapstructure:"sort"`
	Expand             []string          `mapstructure:"expand-relations"`
	FieldSelection     []string          `mapstructure:"field-selection"`
	BodyType           []string          `mapstructure:"bodyType"`
	Assignments        []FieldAssignment `mapstructure:"fields"`
	BodyJSON           interface{}       `mapstructure:"bodyJson"`
	BinaryPropertyName string            `mapstructure:"binaryPropertyName"`
	BinaryFieldName    string            `mapstructure:"binaryFieldName"`
	ContinueOnFail     bool              `mapstructure:"continueOnFail"`
}

// nestedParameterKeys maps keys of the optional "parameters" group to their
// top-level names.
var nestedParameterKeys = map[string]string{
	"allElements":     "allElements",
	"elementsPerPage": "elementsPerPage",
	"relation":        "expand-relations",
	"fields":          "field-selection",
	"filter":          "filter",
	"page":            "page",
	"sort":            "sort",
}

var (
	valueType       = reflect.TypeOf(Value{})
	assignmentsType = reflect.TypeOf([]FieldAssignment{})
)

// DecodeParams decodes loosely typed host parameters.
//
// "collection" is accepted as an alias of "resource", and list options may be
// grouped under a "parameters" map. Scalars are weakly typed, so "2" decodes
// into an int and "a,b" into a list.
func DecodeParams(raw map[string]interface{}) (*OperationParams, error) {
	flat := make(map[string]interface{}, len(raw))

	for key, value := range raw {
		if key == "parameters" {
			continue
		}

		flat[key] = value
	}

	if nested, ok := raw["parameters"].(map[string]interface{}); ok {
		for key, value := range nested {
			target, known := nestedParameterKeys[key]
			if !known {
				target = key
			}

			if _, exists := flat[target]; !exists {
				flat[target] = value
			}
		}
	}

	if _, ok := flat["resource"]; !ok {
		if collection, exists := flat["collection"]; exists {
			flat["resource"] = collection
		}
	}

	delete(flat, "collection")

	params := &OperationParams{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			assignmentsHook,
			valueHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create parameter decoder: %w", err)
	}

	err = decoder.Decode(flat)
	if err != nil {
		return nil, NewConfigurationError("", fmt.Errorf("failed to decode parameters: %w", err))
	}

	return params, nil
}

// assignmentsHook unwraps {"assignments": [...]} into the assignment list.
func assignmentsHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != assignmentsType || from.Kind() != reflect.Map {
		return data, nil
	}

	wrapper, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}

	assignments, ok := wrapper["assignments"]
	if !ok || assignments == nil {
		return []interface{}{}, nil
	}

	return assignments, nil
}

func valueHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != valueType {
		return data, nil
	}

	return ValueOf(data)
}

// Validate checks that the parameters name a collection and a supported
// operation, and that single record operations carry an element ID.
func (p *OperationParams) Validate() error {
	if p.Collection == "" {
		return NewConfigurationError("resource", ErrCollectionRequired)
	}

	switch p.Operation {
	case constants.OperationSearch, constants.OperationCreate:
	case constants.OperationView, constants.OperationUpdate:
		if p.ElementID == "" {
			return NewConfigurationError("elementId", ErrElementIDRequired)
		}
	default:
		return NewConfigurationError("operation", fmt.Errorf("%w: %q", ErrUnsupportedOperation, p.Operation))
	}

	return nil
}

// QueryParams returns the list query described by the parameters.
func (p *OperationParams) QueryParams() *QueryParams {
	return &QueryParams{
		Page:    p.Page,
		PerPage: p.ElementsPerPage,
		Filter:  p.Filter,
		Sort:    p.Sort,
		Expand:  nonEmpty(p.Expand),
		Fields:  nonEmpty(p.FieldSelection),
	}
}

// BodySpec returns the body description selected by bodyType. Modes that are
// not selected are ignored even if their parameters are set. A missing
// bodyType selects field assignments only.
func (p *OperationParams) BodySpec() (*BodySpec, error) {
	return BodySpecFromParams(p)
}

// BodySpecFromParams builds a BodySpec from the bodyType selection of p.
func BodySpecFromParams(p *OperationParams) (*BodySpec, error) {
	bodyTypes := p.BodyType
	if bodyTypes == nil {
		bodyTypes = []string{constants.BodyTypeFields}
	}

	spec := &BodySpec{}

	for _, bodyType := range bodyTypes {
		switch bodyType {
		case constants.BodyTypeFields, constants.BodyTypeJSON, constants.BodyTypeBinary:
		default:
			return nil, NewConfigurationError("bodyType", fmt.Errorf("%w: %q", ErrInvalidBodyType, bodyType))
		}
	}

	if slices.Contains(bodyTypes, constants.BodyTypeFields) {
		spec.Fields = p.Assignments
	}

	if slices.Contains(bodyTypes, constants.BodyTypeJSON) {
		rec, err := ParseJSONBody(p.BodyJSON)
		if err != nil {
			return nil, err
		}

		spec.JSON = rec
	}

	if slices.Contains(bodyTypes, constants.BodyTypeBinary) {
		spec.Binary = &BinaryAttachment{
			Property:  p.BinaryPropertyName,
			FieldName: p.BinaryFieldName,
		}
	}

	return spec, nil
}

// ParseJSONBody converts a raw JSON body given as text, bytes, a map or a
// record into a record. Blank input yields nil.
func ParseJSONBody(raw interface{}) (*Record, error) {
	var data []byte

	switch typed := raw.(type) {
	case nil:
		return nil, nil //nolint:nilnil // no body
	case *Record:
		return typed, nil
	case string:
		data = []byte(typed)
	case []byte:
		data = typed
	case json.RawMessage:
		data = typed
	default:
		value, err := ValueOf(typed)
		if err != nil {
			return nil, NewConfigurationError("bodyJson", fmt.Errorf("%w: %w", ErrInvalidJSONBody, err))
		}

		rec, ok := value.AsObject()
		if !ok {
			return nil, NewConfigurationError("bodyJson", fmt.Errorf("%w: got %s", ErrInvalidJSONBody, value.Kind()))
		}

		return rec, nil
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil //nolint:nilnil // blank body
	}

	var value Value

	err := json.Unmarshal(data, &value)
	if err != nil {
		return nil, NewConfigurationError("bodyJson", fmt.Errorf("%w: %w", ErrInvalidJSONBody, err))
	}

	rec, ok := value.AsObject()
	if !ok {
		return nil, NewConfigurationError("bodyJson", fmt.Errorf("%w: got %s", ErrInvalidJSONBody, value.Kind()))
	}

	return rec, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
