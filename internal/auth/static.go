package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// StaticTokenManager serves a pre-issued token that cannot be renewed.
type StaticTokenManager struct {
	mutex sync.RWMutex
	token string
}

// NewStaticTokenManager creates a manager for token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the static token.
func (m *StaticTokenManager) GetToken(_ context.Context) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.token == "" {
		return "", pbapi.ErrNotAuthenticated
	}

	return m.token, nil
}

// RefreshToken always fails: a static token has no credentials behind it.
func (m *StaticTokenManager) RefreshToken(_ context.Context) error {
	return pbapi.ErrStaticTokenCannotRefresh
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, _ time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.token = token
}
