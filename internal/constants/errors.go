package constants

import "errors"

// Configuration errors.
var (
	ErrNoTargetsConfigured = errors.New("no targets configured, use 'pbctl login' to add one")
	ErrTargetNotFound      = errors.New("target not found")
	ErrNoEndpoint          = errors.New("no PocketBase endpoint configured")
	ErrInvalidJWTFormat    = errors.New("invalid JWT format")
	ErrNoExpirationClaim   = errors.New("no expiration claim found")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Input errors.
var (
	ErrInvalidAssignment     = errors.New("invalid field assignment, expected name=value")
	ErrInvalidBinaryArgument = errors.New("invalid binary argument, expected [field=]path")
	ErrNotRegularFile        = errors.New("path is not a regular file")
	ErrUnsupportedOutput     = errors.New("unsupported output format")
)
