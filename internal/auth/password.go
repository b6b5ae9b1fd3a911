package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/hashicorp/go-retryablehttp"
)

// PasswordConfig configures a PasswordTokenManager.
type PasswordConfig struct {
	// Endpoint is the backend base URL.
	Endpoint string
	// UserCollection is the auth collection. Defaults to "_superusers".
	UserCollection string
	Identity       string
	Password       string
	// HTTPTimeout bounds one login attempt.
	HTTPTimeout time.Duration
	RetryMax    int
	UserAgent   string
}

// PasswordTokenManager obtains tokens through the auth-with-password endpoint
// of an auth collection.
type PasswordTokenManager struct {
	config     *PasswordConfig
	store      *TokenStore
	httpClient *retryablehttp.Client
	mutex      sync.Mutex
}

// NewPasswordTokenManager creates a password token manager.
func NewPasswordTokenManager(config *PasswordConfig) *PasswordTokenManager {
	if config.UserCollection == "" {
		config.UserCollection = constants.DefaultUserCollection
	}

	timeout := config.HTTPTimeout
	if timeout == 0 {
		timeout = constants.ShortHTTPTimeout
	}

	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	httpClient.RetryMax = config.RetryMax
	httpClient.RetryWaitMin = constants.DefaultRetryWaitMin
	httpClient.RetryWaitMax = constants.DefaultRetryWaitMax
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	httpClient.HTTPClient.Timeout = timeout

	return &PasswordTokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: httpClient,
	}
}

// AuthURL returns the login endpoint of the configured collection.
func (m *PasswordTokenManager) AuthURL() string {
	return fmt.Sprintf("%s%s/%s/auth-with-password",
		strings.TrimSuffix(m.config.Endpoint, "/"),
		constants.APIPathCollections,
		url.PathEscape(m.config.UserCollection))
}

// GetToken returns a valid token, logging in when the current one is missing or stale.
func (m *PasswordTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken performs a fresh login. A failed login drops the stored token.
func (m *PasswordTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	token, err := m.authenticate(ctx)
	if err != nil {
		m.store.Clear()

		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken seeds the manager with an existing token.
func (m *PasswordTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, ExpiresAt: expiresAt})
}

// CurrentToken returns the stored token, or nil.
func (m *PasswordTokenManager) CurrentToken() *Token {
	return m.store.Get()
}

func (m *PasswordTokenManager) authenticate(ctx context.Context) (*Token, error) {
	if m.config.Identity == "" || m.config.Password == "" {
		return nil, fmt.Errorf("%w: %w", pbapi.ErrAuthenticationFailed, pbapi.ErrCredentialsRequired)
	}

	body, err := json.Marshal(map[string]string{
		"identity": m.config.Identity,
		"password": m.config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.AuthURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}

	req.Header.Set("Content-Type", constants.ContentTypeJSON)
	req.Header.Set("Accept", constants.ContentTypeJSON)

	if m.config.UserAgent != "" {
		req.Header.Set("User-Agent", m.config.UserAgent)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pbapi.ErrAuthenticationFailed, err)
	}

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		respErr, _ := pbapi.ParseResponseError(resp.StatusCode, data)

		return nil, fmt.Errorf("%w: %w", pbapi.ErrAuthenticationFailed, respErr)
	}

	var authResp pbapi.AuthResponse

	err = json.Unmarshal(data, &authResp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	if authResp.Token == "" {
		return nil, fmt.Errorf("%w: empty token in response", pbapi.ErrAuthenticationFailed)
	}

	token := &Token{
		AccessToken: authResp.Token,
		Record:      authResp.Record,
	}

	expiresAt, err := ParseExpiry(authResp.Token)
	if err == nil {
		token.ExpiresAt = expiresAt
	}

	return token, nil
}
