package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestBuildSendRequest(t *testing.T) {
	t.Parallel()

	req, err := buildSendRequest("/api/custom", &sendFlags{
		method:  "post",
		query:   []string{"format=full", "tag=a", "tag=b"},
		headers: []string{"X-Trace=abc"},
		body:    `{"month":"2024-01","count":2}`,
	})
	require.NoError(t, err)

	assert.Equal(t, "post", req.Method)
	assert.Equal(t, "/api/custom", req.Path)
	assert.Equal(t, url.Values{"format": {"full"}, "tag": {"a", "b"}}, req.Query)
	assert.Equal(t, map[string]string{"X-Trace": "abc"}, req.Headers)
	require.NotNil(t, req.Body)
	assert.Equal(t, []string{"month", "count"}, req.Body.Keys())

	_, err = buildSendRequest("/api/custom", &sendFlags{query: []string{"broken"}})
	require.ErrorIs(t, err, constants.ErrInvalidAssignment)

	_, err = buildSendRequest("/api/custom", &sendFlags{body: `[1,2]`})
	require.ErrorIs(t, err, pbapi.ErrInvalidJSONBody)

	req, err = buildSendRequest("/api/health", &sendFlags{})
	require.NoError(t, err)
	assert.Nil(t, req.Query)
	assert.Nil(t, req.Headers)
	assert.Nil(t, req.Body)
}

func TestSendThroughExecutor(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/api/custom", request.URL.Path)
		assert.Equal(t, "full", request.URL.Query().Get("format"))
		assert.Equal(t, "abc", request.Header.Get("X-Trace"))

		_, _ = writer.Write([]byte(`{"ok":true,"total":3}`))
	}))
	t.Cleanup(server.Close)

	pbClient, err := client.New(context.Background(), &pbapi.Config{Endpoint: server.URL, Token: "t"})
	require.NoError(t, err)

	req, err := buildSendRequest("api/custom", &sendFlags{
		method:  "POST",
		query:   []string{"format=full"},
		headers: []string{"X-Trace=abc"},
		body:    `{"month":"2024-01"}`,
	})
	require.NoError(t, err)

	results, err := pbClient.Executor().RunSend(context.Background(), req, make([]pbapi.Item, 1), false)
	require.NoError(t, err)

	var out bytes.Buffer

	require.NoError(t, writeSendResults(context.Background(), &out, outputOptions{}, results))
	assert.JSONEq(t, `{"ok":true,"total":3}`, out.String())

	out.Reset()
	require.NoError(t, writeSendResults(context.Background(), &out, outputOptions{JQ: ".total"}, results))
	assert.Equal(t, "3\n", out.String())
}

func TestWriteSendResults_Multiple(t *testing.T) {
	t.Parallel()

	results := []pbapi.ItemResult{
		{Index: 0, Success: true, Response: pbapi.Bool(true)},
		{Index: 1, Error: errBoom, Input: pbapi.NewRecord()},
	}

	var out bytes.Buffer

	require.NoError(t, writeSendResults(context.Background(), &out, outputOptions{Format: constants.FormatJSON}, results))
	assert.Contains(t, out.String(), `"response": true`)
	assert.Contains(t, out.String(), `"error": "boom"`)
}

func TestSplitPair(t *testing.T) {
	t.Parallel()

	key, value, err := splitPair("filter=a=b")
	require.NoError(t, err)
	assert.Equal(t, "filter", key)
	assert.Equal(t, "a=b", value)

	_, _, err = splitPair("=x")
	require.ErrorIs(t, err, constants.ErrInvalidAssignment)
}
