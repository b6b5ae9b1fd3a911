package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	pbhttp "github.com/fivetwenty-io/pocketbase-client/internal/http"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTokenManager for testing.
type MockTokenManager struct {
	token        string
	err          error
	refreshed    string
	refreshErr   error
	refreshCalls int
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(ctx context.Context) error {
	m.refreshCalls++
	if m.refreshErr != nil {
		return m.refreshErr
	}

	if m.refreshed != "" {
		m.token = m.refreshed
	}

	return nil
}

func (m *MockTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/collections/posts/records", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			response := map[string]string{"id": "rec-id", "title": "test-post"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{token: "test-token"}
		client := pbhttp.NewClient(server.URL, tokenManager)

		req := &pbhttp.Request{
			Method: "GET",
			Path:   "/api/collections/posts/records",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "rec-id", result["id"])
		assert.Equal(t, "test-post", result["title"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/collections/posts/records", request.URL.Path)
			assert.Equal(t, "page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := pbhttp.NewClient(server.URL, nil)

		req := &pbhttp.Request{
			Method: "GET",
			Path:   "/api/collections/posts/records",
			Query:  url.Values{"page": []string{"2"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "test-post", body["title"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := pbhttp.NewClient(server.URL, nil)

		req := &pbhttp.Request{
			Method: "POST",
			Path:   "/api/collections/posts/records",
			Body:   map[string]string{"title": "test-post"},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)

			_, _ = writer.Write([]byte(`{"status":404,"message":"The requested resource wasn't found.","data":{}}`))
		}))
		defer server.Close()

		client := pbhttp.NewClient(server.URL, nil)

		req := &pbhttp.Request{
			Method: "GET",
			Path:   "/api/collections/posts/records/missing",
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		errResp := &pbapi.ResponseError{}
		ok := errors.As(err, &errResp)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, errResp.StatusCode)
		assert.Equal(t, "The requested resource wasn't found.", errResp.Message)
		assert.True(t, pbapi.IsNotFound(err))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := pbhttp.NewClient(server.URL, nil)

		req := &pbhttp.Request{
			Method: "GET",
			Path:   "/api/collections/posts/records",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := pbhttp.NewClient(server.URL, nil, pbhttp.WithLogger(logger), pbhttp.WithDebug(true))

		req := &pbhttp.Request{
			Method: "GET",
			Path:   "/api/collections/posts/records",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*pbhttp.Client, context.Context) (*pbhttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *pbhttp.Client, ctx context.Context) (*pbhttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *pbhttp.Client, ctx context.Context) (*pbhttp.Response, error) {
				return c.Do(ctx, &pbhttp.Request{Method: http.MethodPost, Path: "/test", Body: map[string]string{"key": "value"}})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *pbhttp.Client, ctx context.Context) (*pbhttp.Response, error) {
				return c.Do(ctx, &pbhttp.Request{Method: http.MethodPut, Path: "/test", Body: map[string]string{"key": "value"}})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *pbhttp.Client, ctx context.Context) (*pbhttp.Response, error) {
				return c.Do(ctx, &pbhttp.Request{Method: http.MethodPatch, Path: "/test", Body: map[string]string{"key": "value"}})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *pbhttp.Client, ctx context.Context) (*pbhttp.Response, error) {
				return c.Do(ctx, &pbhttp.Request{Method: http.MethodDelete, Path: "/test"})
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := pbhttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := pbhttp.NewClient(server.URL, nil, pbhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, attempts)
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := pbhttp.NewClient(server.URL, nil, pbhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := pbhttp.NewClient(server.URL, nil, pbhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, 1, attempts) // Should not retry
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Unauthorized(t *testing.T) {
	t.Parallel()

	t.Run("refreshes the token and replays once", func(t *testing.T) {
		t.Parallel()

		var seen []string

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			seen = append(seen, request.Header.Get("Authorization"))
			if request.Header.Get("Authorization") != "fresh-token" {
				writer.WriteHeader(http.StatusUnauthorized)
				_, _ = writer.Write([]byte(`{"status":401,"message":"The request requires valid record authorization token.","data":{}}`))

				return
			}

			_, _ = writer.Write([]byte(`{"id":"abc"}`))
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{token: "expired-token", refreshed: "fresh-token"}
		client := pbhttp.NewClient(server.URL, tokenManager)

		resp, err := client.Get(context.Background(), "/api/collections/posts/records/abc", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"expired-token", "fresh-token"}, seen)
		assert.Equal(t, 1, tokenManager.refreshCalls)
	})

	t.Run("returns the original error when refresh fails", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"status":401,"message":"Unauthorized.","data":{}}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		tokenManager := &MockTokenManager{token: "static", refreshErr: pbapi.ErrStaticTokenCannotRefresh}
		client := pbhttp.NewClient(server.URL, tokenManager, pbhttp.WithLogger(logger))

		resp, err := client.Get(context.Background(), "/api/collections", nil)
		require.Error(t, err)
		assert.True(t, pbapi.IsUnauthorized(err))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 1, attempts)
		assert.Empty(t, logger.logs)
	})

	t.Run("token manager failure aborts the request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("request should not reach the server")
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{err: pbapi.ErrNotAuthenticated}
		client := pbhttp.NewClient(server.URL, tokenManager)

		_, err := client.Get(context.Background(), "/api/collections", nil)
		require.ErrorIs(t, err, pbapi.ErrNotAuthenticated)
	})
}

func TestClient_RawBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPatch, request.Method)
		assert.Equal(t, "multipart/form-data; boundary=xyz", request.Header.Get("Content-Type"))

		body, err := io.ReadAll(request.Body)
		assert.NoError(t, err)
		assert.Equal(t, "--xyz--", string(body))

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := pbhttp.NewClient(server.URL, nil)

	resp, err := client.Do(context.Background(), &pbhttp.Request{
		Method:      http.MethodPatch,
		Path:        "/raw",
		RawBody:     []byte("--xyz--"),
		ContentType: "multipart/form-data; boundary=xyz",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_JSONBodyKeepsMarkup(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"html":"<b>bold</b> & more"}`, string(body))
		assert.Contains(t, string(body), "<b>")

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := pbhttp.NewClient(server.URL, nil)

	_, err := client.Do(context.Background(), &pbhttp.Request{
		Method: http.MethodPost,
		Path:   "/json",
		Body:   map[string]string{"html": "<b>bold</b> & more"},
	})
	require.NoError(t, err)
}

func TestClient_LogsRetries(t *testing.T) {
	t.Parallel()

	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		attempts++
		if attempts == 1 {
			writer.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &MockLogger{}
	client := pbhttp.NewClient(server.URL, nil,
		pbhttp.WithLogger(logger),
		pbhttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

	_, err := client.Get(context.Background(), "/flaky", nil)
	require.NoError(t, err)

	require.Len(t, logger.logs, 1)
	assert.Equal(t, "warn", logger.logs[0]["level"])
	assert.Equal(t, "Retrying HTTP request", logger.logs[0]["msg"])

	fields, ok := logger.logs[0]["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, fields["attempt"])
}
