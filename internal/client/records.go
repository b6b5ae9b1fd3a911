package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/internal/http"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// RecordsClient implements pbapi.RecordsClient.
type RecordsClient struct {
	httpClient *http.Client
	pagination *pbapi.PaginationOptions
}

// NewRecordsClient creates a new records client. pagination may be nil.
func NewRecordsClient(httpClient *http.Client, pagination *pbapi.PaginationOptions) *RecordsClient {
	if pagination == nil {
		pagination = pbapi.DefaultPaginationOptions()
	}

	return &RecordsClient{
		httpClient: httpClient,
		pagination: pagination,
	}
}

// ListPage implements pbapi.RecordPageLister.ListPage.
func (c *RecordsClient) ListPage(ctx context.Context, collection string, params *pbapi.QueryParams) (*pbapi.PageResult, error) {
	if collection == "" {
		return nil, pbapi.NewConfigurationError("collection", pbapi.ErrCollectionRequired)
	}

	resp, err := c.httpClient.Get(ctx, recordsPath(collection), params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var result pbapi.PageResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing records list response: %w", err)
	}

	if result.Items == nil {
		result.Items = []*pbapi.Record{}
	}

	return &result, nil
}

// Get implements pbapi.RecordsClient.Get. Only the expand and fields options
// of params are sent.
func (c *RecordsClient) Get(ctx context.Context, collection, id string, params *pbapi.QueryParams) (*pbapi.Record, error) {
	err := requireRecordTarget(collection, id)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, recordPath(collection, id), recordQuery(params).ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	return parseRecord(resp.Body)
}

// Create implements pbapi.RecordsClient.Create.
func (c *RecordsClient) Create(
	ctx context.Context,
	collection string,
	payload *pbapi.Payload,
	params *pbapi.QueryParams,
) (*pbapi.Record, error) {
	if collection == "" {
		return nil, pbapi.NewConfigurationError("collection", pbapi.ErrCollectionRequired)
	}

	resp, err := c.httpClient.Do(ctx, payloadRequest(nethttp.MethodPost, recordsPath(collection), payload, params))
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	return parseRecord(resp.Body)
}

// Update implements pbapi.RecordsClient.Update.
func (c *RecordsClient) Update(
	ctx context.Context,
	collection, id string,
	payload *pbapi.Payload,
	params *pbapi.QueryParams,
) (*pbapi.Record, error) {
	err := requireRecordTarget(collection, id)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, payloadRequest(nethttp.MethodPatch, recordPath(collection, id), payload, params))
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}

	return parseRecord(resp.Body)
}

// Search implements pbapi.RecordsClient.Search.
func (c *RecordsClient) Search(
	ctx context.Context,
	collection string,
	params *pbapi.QueryParams,
	allElements bool,
) ([]*pbapi.Record, error) {
	return pbapi.FetchRecords(ctx, c, collection, params, allElements, c.pagination)
}

func requireRecordTarget(collection, id string) error {
	if collection == "" {
		return pbapi.NewConfigurationError("collection", pbapi.ErrCollectionRequired)
	}

	if id == "" {
		return pbapi.NewConfigurationError("elementId", pbapi.ErrElementIDRequired)
	}

	return nil
}

// recordQuery keeps the options that apply to single record endpoints.
func recordQuery(params *pbapi.QueryParams) *pbapi.QueryParams {
	if params == nil {
		return nil
	}

	return &pbapi.QueryParams{
		Expand: params.Expand,
		Fields: params.Fields,
	}
}

func payloadRequest(method, path string, payload *pbapi.Payload, params *pbapi.QueryParams) *http.Request {
	req := &http.Request{
		Method: method,
		Path:   path,
		Query:  recordQuery(params).ToValues(),
	}

	if payload == nil || payload.Body == nil {
		req.RawBody = []byte("{}")
		req.ContentType = constants.ContentTypeJSON

		return req
	}

	req.RawBody = payload.Body
	req.ContentType = payload.ContentType

	return req
}

func parseRecord(data []byte) (*pbapi.Record, error) {
	record := pbapi.NewRecord()

	err := json.Unmarshal(data, record)
	if err != nil {
		return nil, fmt.Errorf("parsing record response: %w", err)
	}

	return record, nil
}
