package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/auth"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/internal/http"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// Client implements the pbapi.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       pbapi.Logger
	maxPages     int

	collections *CollectionsClient
	records     *RecordsClient
	options     *OptionsClient
	executor    *Executor
}

// createTokenManager creates appropriate token manager based on config.
func createTokenManager(config *pbapi.Config) auth.TokenManager {
	hasPassword := config.Username != "" && config.Password != ""

	if config.Token != "" && hasPassword {
		return createFallbackTokenManager(config)
	}

	if config.Token != "" {
		return auth.NewStaticTokenManager(config.Token)
	}

	if hasPassword {
		return auth.NewPasswordTokenManager(passwordConfig(config))
	}

	return nil // No authentication
}

// createFallbackTokenManager seeds a password manager with the configured
// token, so the token is used until the backend rejects it.
func createFallbackTokenManager(config *pbapi.Config) auth.TokenManager {
	manager := auth.NewPasswordTokenManager(passwordConfig(config))

	expiresAt, err := auth.ParseExpiry(config.Token)
	if err != nil {
		expiresAt = time.Time{}
	}

	manager.SetToken(config.Token, expiresAt)

	return manager
}

func passwordConfig(config *pbapi.Config) *auth.PasswordConfig {
	return &auth.PasswordConfig{
		Endpoint:       config.Endpoint,
		UserCollection: config.UserCollection,
		Identity:       config.Username,
		Password:       config.Password,
		HTTPTimeout:    config.HTTPTimeout,
		RetryMax:       config.RetryMax,
		UserAgent:      config.UserAgent,
	}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *pbapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a client for config.Endpoint, picking a token manager from the
// configured credentials. It does not contact the backend.
func New(_ context.Context, config *pbapi.Config) (*Client, error) {
	if config == nil {
		return nil, pbapi.ErrConfigRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a client with a custom token manager.
func NewWithTokenManager(config *pbapi.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, pbapi.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, pbapi.ErrEndpointRequired
	}

	httpClient := http.NewClient(config.Endpoint, tokenManager, createHTTPClientOptions(config)...)

	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = constants.DefaultMaxPages
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      httpClient.BaseURL(),
		logger:       config.Logger,
		maxPages:     maxPages,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.collections = NewCollectionsClient(c.httpClient)
	c.records = NewRecordsClient(c.httpClient, &pbapi.PaginationOptions{
		MaxPages: c.maxPages,
		Logger:   c.logger,
	})
	c.options = NewOptionsClient(c.collections, c.records)
	c.executor = NewExecutor(c.records, c, c.Authenticate, c.logger)
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticate makes sure a token is available, logging in if the token
// manager needs to. Clients without credentials succeed without a request.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.tokenManager == nil {
		return nil
	}

	_, err := c.tokenManager.GetToken(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, pbapi.ErrAuthenticationFailed) {
		return err
	}

	return fmt.Errorf("%w: %w", pbapi.ErrAuthenticationFailed, err)
}

// Collections implements pbapi.Client.Collections.
func (c *Client) Collections() pbapi.CollectionsClient {
	return c.collections
}

// Records implements pbapi.Client.Records.
func (c *Client) Records() pbapi.RecordsClient {
	return c.records
}

// Options implements pbapi.Client.Options.
func (c *Client) Options() pbapi.OptionsClient {
	return c.options
}

// Executor implements pbapi.Client.Executor.
func (c *Client) Executor() pbapi.Executor {
	return c.executor
}
