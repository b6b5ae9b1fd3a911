package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

const jwtParts = 3

// ParseExpiry reads the exp claim of a JWT without verifying its signature.
func ParseExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != jwtParts {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	var claims struct {
		Exp *float64 `json:"exp"`
	}

	err = json.Unmarshal(payload, &claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if claims.Exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return time.Unix(int64(*claims.Exp), 0), nil
}
