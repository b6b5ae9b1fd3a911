package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/http"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// Send implements pbapi.SendClient.Send. The method defaults to GET and a
// path without a leading slash is taken relative to the base URL. An empty
// response body yields a null value.
func (c *Client) Send(ctx context.Context, req *pbapi.SendRequest) (pbapi.Value, error) {
	if req == nil || strings.TrimSpace(req.Path) == "" {
		return pbapi.Null(), pbapi.NewConfigurationError("path", pbapi.ErrPathRequired)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = nethttp.MethodGet
	}

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	httpReq := &http.Request{
		Method:  method,
		Path:    path,
		Query:   req.Query,
		Headers: req.Headers,
	}

	if req.Body != nil {
		httpReq.Body = req.Body
	}

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		return pbapi.Null(), fmt.Errorf("sending %s %s: %w", method, path, err)
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return pbapi.Null(), nil
	}

	var value pbapi.Value

	err = json.Unmarshal(resp.Body, &value)
	if err != nil {
		return pbapi.Null(), fmt.Errorf("parsing send response: %w", err)
	}

	return value, nil
}
