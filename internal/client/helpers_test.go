package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/stretchr/testify/require"
)

const postsCollection = `{
	"id": "pbc_posts",
	"name": "posts",
	"type": "base",
	"system": false,
	"fields": [
		{"id": "f1", "name": "id", "type": "text", "system": true, "primaryKey": true},
		{"id": "f2", "name": "title", "type": "text", "required": true},
		{"id": "f3", "name": "author", "type": "relation", "collectionId": "_pb_users_auth_", "maxSelect": 1},
		{"id": "f4", "name": "tags", "type": "relation", "collectionId": "pbc_tags", "maxSelect": 5},
		{"id": "f5", "name": "cover", "type": "file", "maxSelect": 1}
	]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *client.Client {
	t.Helper()

	pbClient, err := client.New(context.Background(), &pbapi.Config{Endpoint: server.URL})
	require.NoError(t, err)

	return pbClient
}

func writeJSON(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, _ = writer.Write([]byte(body))
}

func text(t *testing.T, record *pbapi.Record, key string) string {
	t.Helper()

	require.NotNil(t, record)

	value, ok := record.Get(key)
	require.True(t, ok, "record has no field %q", key)

	return value.Text()
}

// recordingLogger keeps the messages per level.
type recordingLogger struct {
	debug []string
	info  []string
	warn  []string
	error []string
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.info = append(l.info, msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.warn = append(l.warn, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.error = append(l.error, msg) }
