package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/internal/http"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// CollectionsClient implements pbapi.CollectionsClient. Nothing is cached:
// every call is a round trip.
type CollectionsClient struct {
	httpClient *http.Client
}

// NewCollectionsClient creates a new collections client.
func NewCollectionsClient(httpClient *http.Client) *CollectionsClient {
	return &CollectionsClient{
		httpClient: httpClient,
	}
}

// List implements pbapi.CollectionsClient.List.
func (c *CollectionsClient) List(ctx context.Context) ([]pbapi.Collection, error) {
	params := pbapi.NewQueryParams().WithPerPage(constants.CollectionsPerPage)

	collections, err := pbapi.FetchPages(ctx, c.listPage, params, true, nil)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	return collections, nil
}

func (c *CollectionsClient) listPage(ctx context.Context, params *pbapi.QueryParams) (*pbapi.CollectionList, error) {
	resp, err := c.httpClient.Get(ctx, constants.APIPathCollections, params.ToValues())
	if err != nil {
		return nil, err
	}

	var result pbapi.CollectionList

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing collections list response: %w", err)
	}

	return &result, nil
}

// Get implements pbapi.CollectionsClient.Get.
func (c *CollectionsClient) Get(ctx context.Context, nameOrID string) (*pbapi.Collection, error) {
	if nameOrID == "" {
		return nil, pbapi.NewConfigurationError("collection", pbapi.ErrCollectionRequired)
	}

	resp, err := c.httpClient.Get(ctx, collectionPath(nameOrID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}

	var collection pbapi.Collection

	err = json.Unmarshal(resp.Body, &collection)
	if err != nil {
		return nil, fmt.Errorf("parsing collection response: %w", err)
	}

	return &collection, nil
}

// Fields implements pbapi.CollectionsClient.Fields.
func (c *CollectionsClient) Fields(ctx context.Context, collection string) ([]pbapi.Field, error) {
	result, err := c.Get(ctx, collection)
	if err != nil {
		return nil, err
	}

	return result.Fields, nil
}

func collectionPath(collection string) string {
	return constants.APIPathCollections + "/" + url.PathEscape(collection)
}

func recordsPath(collection string) string {
	return collectionPath(collection) + constants.APIPathRecords
}

func recordPath(collection, id string) string {
	return recordsPath(collection) + "/" + url.PathEscape(id)
}
