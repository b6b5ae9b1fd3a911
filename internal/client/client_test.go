package client_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/pocketbase-client/internal/auth"
	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := client.New(context.Background(), nil)
		require.ErrorIs(t, err, pbapi.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := client.New(context.Background(), &pbapi.Config{})
		require.ErrorIs(t, err, pbapi.ErrEndpointRequired)
	})

	t.Run("creates client with token", func(t *testing.T) {
		t.Parallel()

		pbClient, err := client.New(context.Background(), &pbapi.Config{
			Endpoint: "https://pb.example.com",
			Token:    "test-token",
		})
		require.NoError(t, err)
		assert.IsType(t, &auth.StaticTokenManager{}, pbClient.GetTokenManager())
	})

	t.Run("creates client with username/password", func(t *testing.T) {
		t.Parallel()

		pbClient, err := client.New(context.Background(), &pbapi.Config{
			Endpoint: "https://pb.example.com",
			Username: "admin@example.com",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.IsType(t, &auth.PasswordTokenManager{}, pbClient.GetTokenManager())
	})

	t.Run("token with credentials falls back to password login", func(t *testing.T) {
		t.Parallel()

		pbClient, err := client.New(context.Background(), &pbapi.Config{
			Endpoint: "https://pb.example.com",
			Token:    "seeded",
			Username: "admin@example.com",
			Password: "secret",
		})
		require.NoError(t, err)

		manager, ok := pbClient.GetTokenManager().(*auth.PasswordTokenManager)
		require.True(t, ok)

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "seeded", token)
	})

	t.Run("creates client without authentication", func(t *testing.T) {
		t.Parallel()

		pbClient, err := client.New(context.Background(), &pbapi.Config{
			Endpoint: "https://pb.example.com/",
		})
		require.NoError(t, err)
		assert.Nil(t, pbClient.GetTokenManager())
		assert.Equal(t, "https://pb.example.com", pbClient.BaseURL())
		assert.NotNil(t, pbClient.Collections())
		assert.NotNil(t, pbClient.Records())
		assert.NotNil(t, pbClient.Options())
		assert.NotNil(t, pbClient.Executor())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("logs in and sends the token", func(t *testing.T) {
		t.Parallel()

		logins := 0

		server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/api/collections/users/auth-with-password":
				logins++

				writeJSON(writer, http.StatusOK, `{"token":"user-token","record":{"id":"u1"}}`)
			case "/api/collections/posts":
				assert.Equal(t, "user-token", request.Header.Get("Authorization"))
				writeJSON(writer, http.StatusOK, postsCollection)
			default:
				t.Errorf("unexpected path %s", request.URL.Path)
			}
		})

		pbClient, err := client.New(context.Background(), &pbapi.Config{
			Endpoint:       server.URL,
			UserCollection: "users",
			Username:       "jane",
			Password:       "pw",
		})
		require.NoError(t, err)

		require.NoError(t, pbClient.Authenticate(context.Background()))

		_, err = pbClient.Collections().Get(context.Background(), "posts")
		require.NoError(t, err)
		assert.Equal(t, 1, logins)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, func(writer http.ResponseWriter, _ *http.Request) {
			writeJSON(writer, http.StatusBadRequest, `{"status":400,"message":"Failed to authenticate.","data":{}}`)
		})

		pbClient, err := client.New(context.Background(), &pbapi.Config{
			Endpoint: server.URL,
			Username: "jane",
			Password: "wrong",
		})
		require.NoError(t, err)

		err = pbClient.Authenticate(context.Background())
		require.ErrorIs(t, err, pbapi.ErrAuthenticationFailed)
		assert.True(t, pbapi.IsBadRequest(err))
	})

	t.Run("static token without value", func(t *testing.T) {
		t.Parallel()

		pbClient, err := client.NewWithTokenManager(&pbapi.Config{Endpoint: "http://localhost"},
			auth.NewStaticTokenManager(""))
		require.NoError(t, err)

		err = pbClient.Authenticate(context.Background())
		require.ErrorIs(t, err, pbapi.ErrAuthenticationFailed)
		require.ErrorIs(t, err, pbapi.ErrNotAuthenticated)
	})

	t.Run("no credentials", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, func(_ http.ResponseWriter, request *http.Request) {
			t.Errorf("unexpected request %s", request.URL.Path)
		})

		require.NoError(t, newTestClient(t, server).Authenticate(context.Background()))
	})
}

func TestClient_MaxPages(t *testing.T) {
	t.Parallel()

	requests := 0

	server := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		requests++

		page := request.URL.Query().Get("page")
		writeJSON(writer, http.StatusOK, fmt.Sprintf(
			`{"page":%s,"perPage":1,"totalItems":100,"totalPages":100,"items":[{"id":"r%s"}]}`, page, page))
	})

	pbClient, err := client.New(context.Background(), &pbapi.Config{Endpoint: server.URL, MaxPages: 2})
	require.NoError(t, err)

	_, err = pbClient.Records().Search(context.Background(), "posts", nil, true)
	require.ErrorIs(t, err, pbapi.ErrPaginationInconsistency)
	assert.Equal(t, 2, requests)
}
