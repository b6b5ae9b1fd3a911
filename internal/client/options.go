package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
)

// OptionsClient implements pbapi.OptionsClient on top of the collections and
// records clients.
type OptionsClient struct {
	collections pbapi.CollectionsClient
	records     pbapi.RecordPageLister
}

// NewOptionsClient creates a new options client.
func NewOptionsClient(collections pbapi.CollectionsClient, records pbapi.RecordPageLister) *OptionsClient {
	return &OptionsClient{
		collections: collections,
		records:     records,
	}
}

// ListCollections implements pbapi.OptionsClient.ListCollections.
func (c *OptionsClient) ListCollections(ctx context.Context) ([]pbapi.OptionEntry, error) {
	collections, err := c.collections.List(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]pbapi.OptionEntry, 0, len(collections))
	for _, collection := range collections {
		options = append(options, pbapi.OptionEntry{Label: collection.Name, Value: collection.ID})
	}

	return options, nil
}

// ListFields implements pbapi.OptionsClient.ListFields.
//
// A relation field is offered as an entry expanding the whole related record.
// With IncludeRelationFields the plain field entry precedes it.
func (c *OptionsClient) ListFields(
	ctx context.Context,
	collection string,
	opts *pbapi.FieldOptions,
) ([]pbapi.OptionEntry, error) {
	fields, err := c.collections.Fields(ctx, collection)
	if err != nil {
		return nil, err
	}

	includeRelationFields := opts != nil && opts.IncludeRelationFields

	options := make([]pbapi.OptionEntry, 0, len(fields))

	for _, field := range fields {
		if !field.IsRelation() || includeRelationFields {
			options = append(options, pbapi.OptionEntry{Label: field.Name, Value: field.Name})
		}

		if field.IsRelation() {
			options = append(options, pbapi.OptionEntry{
				Label: fmt.Sprintf("All fields from relation '%s'", field.Name),
				Value: fmt.Sprintf("expand.%s.*", field.Name),
			})
		}
	}

	return options, nil
}

// ListRelations implements pbapi.OptionsClient.ListRelations.
func (c *OptionsClient) ListRelations(ctx context.Context, collection string) ([]pbapi.OptionEntry, error) {
	fields, err := c.collections.Fields(ctx, collection)
	if err != nil {
		return nil, err
	}

	options := make([]pbapi.OptionEntry, 0)

	for _, field := range fields {
		if field.IsRelation() {
			options = append(options, pbapi.OptionEntry{Label: field.Name, Value: field.Name})
		}
	}

	return options, nil
}

// ListRows implements pbapi.OptionsClient.ListRows. Only the first page of the
// newest records is offered, so the backend is told to skip its total count.
func (c *OptionsClient) ListRows(ctx context.Context, collection string) ([]pbapi.OptionEntry, error) {
	params := pbapi.NewQueryParams().
		WithSort(constants.RowsSort).
		WithSkipTotal(true)

	page, err := c.records.ListPage(ctx, collection, params)
	if err != nil {
		return nil, err
	}

	options := make([]pbapi.OptionEntry, 0, len(page.Items))
	for _, record := range page.Items {
		options = append(options, pbapi.RowOption(record))
	}

	return options, nil
}
