package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, expiresAt.Unix())))

	return header + "." + payload + ".signature"
}

func TestLogin(t *testing.T) {
	t.Parallel()

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	token := fakeJWT(t, expires)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/api/collections/users/auth-with-password" {
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		var credentials map[string]string

		if !assert.NoError(t, json.NewDecoder(request.Body).Decode(&credentials)) {
			writer.WriteHeader(http.StatusBadRequest)

			return
		}

		if credentials["identity"] != "me@example.com" || credentials["password"] != "secret" {
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = writer.Write([]byte(`{"status":400,"message":"Failed to authenticate.","data":{}}`))

			return
		}

		_, _ = fmt.Fprintf(writer, `{"token":%q,"record":{"id":"u1"}}`, token)
	}))
	t.Cleanup(server.Close)

	t.Run("saves target and token", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yml")

		name, err := login(context.Background(), path, &loginOptions{
			Endpoint:       server.URL + "/",
			UserCollection: "users",
			Username:       "me@example.com",
			Password:       "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", name)

		config, err := readConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, name, config.CurrentTarget)

		target := config.Targets[name]
		require.NotNil(t, target)
		assert.Equal(t, server.URL, target.Endpoint)
		assert.Equal(t, "users", target.UserCollection)
		assert.Equal(t, "me@example.com", target.Username)
		assert.Equal(t, token, target.Token)
		require.NotNil(t, target.TokenExpiresAt)
		assert.True(t, expires.Equal(*target.TokenExpiresAt))

		loggedOut, err := logout(path, "")
		require.NoError(t, err)
		assert.Equal(t, name, loggedOut)

		config, err = readConfigFile(path)
		require.NoError(t, err)
		assert.Empty(t, config.Targets[name].Token)
		assert.Nil(t, config.Targets[name].TokenExpiresAt)
		assert.Equal(t, server.URL, config.Targets[name].Endpoint)
	})

	t.Run("named target", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yml")

		name, err := login(context.Background(), path, &loginOptions{
			Name:           "dev",
			Endpoint:       server.URL,
			UserCollection: "users",
			Username:       "me@example.com",
			Password:       "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "dev", name)
	})

	t.Run("wrong password saves nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yml")

		_, err := login(context.Background(), path, &loginOptions{
			Endpoint:       server.URL,
			UserCollection: "users",
			Username:       "me@example.com",
			Password:       "wrong",
		})
		require.ErrorIs(t, err, pbapi.ErrAuthenticationFailed)
		assert.True(t, pbapi.IsBadRequest(err))

		config, err := readConfigFile(path)
		require.NoError(t, err)
		assert.Empty(t, config.Targets)
	})
}

func TestLogout_NoTargets(t *testing.T) {
	t.Parallel()

	_, err := logout(filepath.Join(t.TempDir(), "config.yml"), "")
	require.ErrorIs(t, err, constants.ErrNoTargetsConfigured)
}

func TestPromptMissing(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	opts := &loginOptions{Password: "given"}

	err := promptMissing(strings.NewReader("pb.example.com\nadmin@example.com\n"), &out, opts)
	require.NoError(t, err)
	assert.Equal(t, "pb.example.com", opts.Endpoint)
	assert.Equal(t, "admin@example.com", opts.Username)
	assert.Equal(t, "given", opts.Password)
	assert.Equal(t, "Endpoint: Username: ", out.String())

	err = promptMissing(strings.NewReader("\n"), &out, &loginOptions{})
	require.ErrorIs(t, err, constants.ErrNoEndpoint)
}

func TestTargetNameFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pb.example.com", targetNameFor("https://pb.example.com"))
	assert.Equal(t, "127.0.0.1", targetNameFor("http://127.0.0.1:8090"))
}
