package pbapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ResponseError represents an error response from the backend.
//
// PocketBase replies with {"status"|"code": int, "message": string, "data": {...}}.
// The raw body is kept for payloads that do not follow this shape.
type ResponseError struct {
	StatusCode int                    `json:"status"  yaml:"status"`
	Message    string                 `json:"message" yaml:"message"`
	Data       map[string]interface{} `json:"data"    yaml:"data,omitempty"`
	Raw        []byte                 `json:"-"       yaml:"-"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Message == "" {
		if len(e.Raw) > 0 {
			return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, string(e.Raw))
		}

		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

// ParseResponseError parses an error response body returned with statusCode.
func ParseResponseError(statusCode int, data []byte) (*ResponseError, error) {
	var payload struct {
		Status  int                    `json:"status"`
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}

	respErr := &ResponseError{StatusCode: statusCode, Raw: data}

	if len(data) == 0 {
		return respErr, nil
	}

	err := json.Unmarshal(data, &payload)
	if err != nil {
		return respErr, fmt.Errorf("failed to unmarshal response error: %w", err)
	}

	respErr.Message = payload.Message
	respErr.Data = payload.Data

	if statusCode == 0 {
		respErr.StatusCode = payload.Status
		if respErr.StatusCode == 0 {
			respErr.StatusCode = payload.Code
		}
	}

	return respErr, nil
}

// ConfigurationError reports an invalid or missing host parameter.
type ConfigurationError struct {
	Parameter string
	Err       error
}

// NewConfigurationError creates a configuration error for parameter.
func NewConfigurationError(parameter string, err error) *ConfigurationError {
	return &ConfigurationError{Parameter: parameter, Err: err}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}

	return fmt.Sprintf("invalid parameter %q: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying reason.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Static errors for err113 compliance.
var (
	ErrAuthenticationFailed     = errors.New("authentication failed")
	ErrPaginationInconsistency  = errors.New("pagination did not advance")
	ErrCollectionRequired       = errors.New("collection is required")
	ErrElementIDRequired        = errors.New("element ID is required")
	ErrUnsupportedOperation     = errors.New("unsupported operation")
	ErrInvalidJSONBody          = errors.New("JSON body must be an object")
	ErrBinaryDataNotFound       = errors.New("binary data not found")
	ErrNoBinaryAccessor         = errors.New("no binary data accessor configured")
	ErrInvalidBodyType          = errors.New("invalid body type")
	ErrEndpointRequired         = errors.New("endpoint is required")
	ErrConfigRequired           = errors.New("config is required")
	ErrNoHostInURL              = errors.New("no host specified in URL")
	ErrCredentialsRequired      = errors.New("token or username and password are required")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrPathRequired             = errors.New("path is required")
)

func statusOf(err error) int {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsBadRequest checks if the error is a bad request error.
func IsBadRequest(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}

// IsConfigurationError checks if the error comes from invalid host parameters.
func IsConfigurationError(err error) bool {
	configErr := &ConfigurationError{}

	return errors.As(err, &configErr)
}
