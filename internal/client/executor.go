package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/google/uuid"
)

// Executor implements pbapi.Executor. Items are processed one at a time in
// input order.
type Executor struct {
	records      pbapi.RecordsClient
	sender       pbapi.SendClient
	authenticate func(ctx context.Context) error
	logger       pbapi.Logger
}

// NewExecutor creates an executor. authenticate runs once before the first
// item and may be nil, as may logger.
func NewExecutor(
	records pbapi.RecordsClient,
	sender pbapi.SendClient,
	authenticate func(ctx context.Context) error,
	logger pbapi.Logger,
) *Executor {
	return &Executor{
		records:      records,
		sender:       sender,
		authenticate: authenticate,
		logger:       logger,
	}
}

type itemFunc func(ctx context.Context, item pbapi.Item, result *pbapi.ItemResult) error

// Run implements pbapi.Executor.Run.
//
// Authentication failures abort the run before any item. An item error
// aborts the run unless the item's parameters ask to continue on failure, in
// which case the error and the item's input are recorded on its result.
func (e *Executor) Run(ctx context.Context, items []pbapi.Item) ([]pbapi.ItemResult, error) {
	return e.run(ctx, items, func(item pbapi.Item) bool {
		return item.Params != nil && item.Params.ContinueOnFail
	}, e.runOperation)
}

// RunSend implements pbapi.Executor.RunSend. The same request is sent once
// per item.
func (e *Executor) RunSend(
	ctx context.Context,
	req *pbapi.SendRequest,
	items []pbapi.Item,
	continueOnFail bool,
) ([]pbapi.ItemResult, error) {
	return e.run(ctx, items, func(pbapi.Item) bool {
		return continueOnFail
	}, func(ctx context.Context, _ pbapi.Item, result *pbapi.ItemResult) error {
		response, err := e.sender.Send(ctx, req)
		if err != nil {
			return err
		}

		result.Response = response

		return nil
	})
}

func (e *Executor) run(
	ctx context.Context,
	items []pbapi.Item,
	continueOnFail func(item pbapi.Item) bool,
	process itemFunc,
) ([]pbapi.ItemResult, error) {
	if e.authenticate != nil {
		err := e.authenticate(ctx)
		if err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	results := make([]pbapi.ItemResult, 0, len(items))

	for index, item := range items {
		err := ctx.Err()
		if err != nil {
			return nil, fmt.Errorf("run cancelled before item %d: %w", index, err)
		}

		start := time.Now()
		result := pbapi.ItemResult{Index: index}

		err = process(ctx, item, &result)
		result.Duration = time.Since(start)

		if err != nil {
			if errors.Is(err, pbapi.ErrAuthenticationFailed) || !continueOnFail(item) {
				return nil, fmt.Errorf("item %d: %w", index, err)
			}

			result.Error = err
			result.Input = item.Input

			if result.Input == nil {
				result.Input = pbapi.NewRecord()
			}

			e.log(func(l pbapi.Logger) {
				l.Warn("Item failed, continuing", map[string]interface{}{
					"run_id": runID,
					"item":   index,
					"error":  err.Error(),
				})
			})

			results = append(results, result)

			continue
		}

		result.Success = true

		e.log(func(l pbapi.Logger) {
			l.Debug("Item processed", map[string]interface{}{
				"run_id":   runID,
				"item":     index,
				"records":  len(result.Records),
				"duration": result.Duration.String(),
			})
		})

		results = append(results, result)
	}

	return results, nil
}

func (e *Executor) runOperation(ctx context.Context, item pbapi.Item, result *pbapi.ItemResult) error {
	params := item.Params
	if params == nil {
		return pbapi.NewConfigurationError("", pbapi.ErrConfigRequired)
	}

	err := params.Validate()
	if err != nil {
		return err
	}

	query := params.QueryParams()

	switch params.Operation {
	case constants.OperationSearch:
		records, err := e.records.Search(ctx, params.Collection, query, params.AllElements)
		if err != nil {
			return err
		}

		result.Records = records
	case constants.OperationView:
		record, err := e.records.Get(ctx, params.Collection, params.ElementID, query)
		if err != nil {
			return err
		}

		result.Records = []*pbapi.Record{record}
	case constants.OperationCreate, constants.OperationUpdate:
		payload, err := e.assemble(ctx, item)
		if err != nil {
			return err
		}

		var record *pbapi.Record

		if params.Operation == constants.OperationCreate {
			record, err = e.records.Create(ctx, params.Collection, payload, query)
		} else {
			record, err = e.records.Update(ctx, params.Collection, params.ElementID, payload, query)
		}

		if err != nil {
			return err
		}

		result.Records = []*pbapi.Record{record}
	}

	return nil
}

func (e *Executor) assemble(ctx context.Context, item pbapi.Item) (*pbapi.Payload, error) {
	spec, err := item.Params.BodySpec()
	if err != nil {
		return nil, err
	}

	return pbapi.NewBodyAssembler(item.Binary, e.logger).Assemble(ctx, spec)
}

func (e *Executor) log(fn func(l pbapi.Logger)) {
	if e.logger != nil {
		fn(e.logger)
	}
}
