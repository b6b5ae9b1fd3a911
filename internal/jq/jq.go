// Package jq filters command output with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
)

// Filter is a compiled jq expression.
type Filter struct {
	expression string
	code       *gojq.Code
}

// Compile parses and compiles expression.
func Compile(expression string) (*Filter, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}

		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	return &Filter{expression: expression, code: code}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expression
}

// Apply runs the filter over data, any value that encodes to JSON, and
// returns every emitted value. A halt without value ends the run without
// error.
func (f *Filter) Apply(ctx context.Context, data interface{}) ([]interface{}, error) {
	input, err := normalize(data)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, 0)
	iter := f.code.RunWithContext(ctx, input)

	for {
		value, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := value.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}

			return nil, fmt.Errorf("jq %q: %w", f.expression, err)
		}

		values = append(values, value)
	}

	return values, nil
}

// normalize converts data into the plain maps, slices and float64 numbers
// gojq operates on.
func normalize(data interface{}) (interface{}, error) {
	raw, ok := data.([]byte)
	if !ok {
		var err error

		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode jq input: %w", err)
		}
	}

	var input interface{}

	err := json.Unmarshal(raw, &input)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}

	return input, nil
}
