// Package pbclient provides the main entry point for creating PocketBase clients
package pbclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// New creates a new PocketBase client.
//
// The endpoint is normalized and, when credentials are configured, the client
// authenticates before returning. A rejected login is returned as an error
// wrapping pbapi.ErrAuthenticationFailed.
func New(ctx context.Context, config *pbapi.Config) (pbapi.Client, error) {
	if config == nil {
		return nil, pbapi.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, pbapi.ErrEndpointRequired
	}

	endpoint, err := NormalizeEndpoint(config.Endpoint)
	if err != nil {
		return nil, err
	}

	config.Endpoint = endpoint

	pbClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	err = pbClient.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	return pbClient, nil
}

// NormalizeEndpoint trims trailing slashes and adds "https://" when the
// endpoint has no scheme.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", pbapi.ErrNoHostInURL, endpoint)
	}

	return endpoint, nil
}

// NewWithEndpoint creates a new client with just an endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (pbapi.Client, error) {
	return New(ctx, &pbapi.Config{
		Endpoint: endpoint,
	})
}

// NewWithToken creates a new client with an endpoint and a pre-issued token.
func NewWithToken(ctx context.Context, endpoint, token string) (pbapi.Client, error) {
	return New(ctx, &pbapi.Config{
		Endpoint: endpoint,
		Token:    token,
	})
}

// NewWithPassword creates a new client that logs in to the superusers
// collection with identity and password.
func NewWithPassword(ctx context.Context, endpoint, identity, password string) (pbapi.Client, error) {
	return New(ctx, &pbapi.Config{
		Endpoint: endpoint,
		Username: identity,
		Password: password,
	})
}
