package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister defines the interface for persisting config changes.
type ConfigPersister interface {
	UpdateTargetToken(target, token string, expiresAt time.Time) error
}

// ConfigTokenManager wraps PasswordTokenManager and persists every new token
// to the configuration of a named target.
type ConfigTokenManager struct {
	passwordManager *PasswordTokenManager
	configPersister ConfigPersister
	target          string
	mutex           sync.Mutex
	lastToken       string
	warn            func(err error)
}

// NewConfigTokenManager creates a new config-persisting token manager.
// warn receives persistence failures, which never fail a request. It may be nil.
func NewConfigTokenManager(
	config *PasswordConfig,
	configPersister ConfigPersister,
	target string,
	initialToken string,
	initialExpiry time.Time,
	warn func(err error),
) *ConfigTokenManager {
	passwordManager := NewPasswordTokenManager(config)

	if initialToken != "" {
		passwordManager.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		passwordManager: passwordManager,
		configPersister: configPersister,
		target:          target,
		lastToken:       initialToken,
		warn:            warn,
	}
}

// GetToken returns a valid token, logging in and persisting if necessary.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.passwordManager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a login and persists the new token.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.passwordManager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the token.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.passwordManager.SetToken(token, expiresAt)
	m.lastToken = token
}

// GetTokenExpiry returns the current token's expiration time.
func (m *ConfigTokenManager) GetTokenExpiry() time.Time {
	token := m.passwordManager.CurrentToken()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *ConfigTokenManager) persistIfChanged() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.passwordManager.CurrentToken()
	if current == nil || current.AccessToken == m.lastToken {
		return
	}

	m.lastToken = current.AccessToken

	err := m.persistToken(current)
	if err != nil && m.warn != nil {
		m.warn(err)
	}
}

// persistToken saves the token to config.
func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateTargetToken(m.target, token.AccessToken, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to update target token: %w", err)
	}

	return nil
}
