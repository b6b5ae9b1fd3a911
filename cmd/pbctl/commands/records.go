package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// queryFlags are the list options shared by record commands.
type queryFlags struct {
	all     bool
	page    int
	perPage int
	filter  string
	sort    string
	expand  []string
	fields  []string
}

// bodyFlags describe the body of create and update.
type bodyFlags struct {
	assignments []string
	json        string
	binary      string
}

// NewRecordsCommand creates the records command group.
func NewRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record", "r"},
		Short:   "Search, view, create and update records",
		Long:    "Search, view, create and update the records of a collection",
	}

	cmd.AddCommand(newRecordsSearchCommand())
	cmd.AddCommand(newRecordsViewCommand())
	cmd.AddCommand(newRecordsCreateCommand())
	cmd.AddCommand(newRecordsUpdateCommand())
	cmd.AddCommand(newRecordsRunCommand())

	return cmd
}

func newRecordsSearchCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:     "search COLLECTION",
		Aliases: []string{"list", "ls"},
		Short:   "Search records",
		Long:    "List the records of a collection, one page or every page with --all",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := searchParams(args[0], flags)

			return runRecordCommand(cmd, raw, nil, true)
		},
	}

	addQueryFlags(cmd, flags, true)

	return cmd
}

func newRecordsViewCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:     "view COLLECTION ID",
		Aliases: []string{"get"},
		Short:   "View a record",
		Args:    cobra.ExactArgs(2), //nolint:mnd // collection and id
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := map[string]interface{}{
				"resource":         args[0],
				"operation":        constants.OperationView,
				"elementId":        args[1],
				"expand-relations": flags.expand,
				"field-selection":  flags.fields,
			}

			return runRecordCommand(cmd, raw, nil, false)
		},
	}

	addQueryFlags(cmd, flags, false)

	return cmd
}

func newRecordsCreateCommand() *cobra.Command {
	flags := &queryFlags{}
	body := &bodyFlags{}

	cmd := &cobra.Command{
		Use:   "create COLLECTION",
		Short: "Create a record",
		Long: `Create a record from field assignments, a JSON object and a file.

JSON keys override fields of the same name. A file switches the request to
multipart/form-data.`,
		Example: `  pbctl records create posts --field title=Hello --field views=3
  pbctl records create posts --json '{"title":"Hello"}' --binary cover=./cover.png
  pbctl records create posts --json @post.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, accessor, err := writeParams(constants.OperationCreate, args[0], "", flags, body)
			if err != nil {
				return err
			}

			return runRecordCommand(cmd, raw, accessor, false)
		},
	}

	addQueryFlags(cmd, flags, false)
	addBodyFlags(cmd, body)

	return cmd
}

func newRecordsUpdateCommand() *cobra.Command {
	flags := &queryFlags{}
	body := &bodyFlags{}

	cmd := &cobra.Command{
		Use:   "update COLLECTION ID",
		Short: "Update a record",
		Long:  "Update a record from field assignments, a JSON object and a file",
		Args:  cobra.ExactArgs(2), //nolint:mnd // collection and id
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, accessor, err := writeParams(constants.OperationUpdate, args[0], args[1], flags, body)
			if err != nil {
				return err
			}

			return runRecordCommand(cmd, raw, accessor, false)
		},
	}

	addQueryFlags(cmd, flags, false)
	addBodyFlags(cmd, body)

	return cmd
}

func newRecordsRunCommand() *cobra.Command {
	var (
		file           string
		continueOnFail bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a list of operations",
		Long: `Run the operations listed in a YAML or JSON file, one item at a time.

Each item holds operation parameters (resource, operation, elementId,
allElements, page, elementsPerPage, filter, sort, expand-relations,
field-selection, bodyType, fields, bodyJson, binaryPropertyName,
binaryFieldName, continueOnFail) and may map binary property names to local
files under "binary". Without continueOnFail the first failing item stops the
run.`,
		Example: `  pbctl records run --file items.yml --continue-on-fail`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := readItemsFile(file, continueOnFail)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				results, err := c.Executor().Run(ctx, items)
				if err != nil {
					return err
				}

				views := newResultViews(results)

				return render(ctx, cmd.OutOrStdout(), currentOutputOptions(), views, func(w io.Writer) error {
					return resultsTable(w, views)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file listing the items")
	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "record failing items and continue")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func addQueryFlags(cmd *cobra.Command, flags *queryFlags, list bool) {
	if list {
		cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "fetch every page")
		cmd.Flags().IntVar(&flags.page, "page", 0, "page to fetch (default 1)")
		cmd.Flags().IntVar(&flags.perPage, "per-page", 0, "records per page (default 30)")
		cmd.Flags().StringVar(&flags.filter, "filter", "", "filter expression, e.g. \"views > 10\"")
		cmd.Flags().StringVar(&flags.sort, "sort", "", "sort expression, e.g. \"-created,title\"")
	}

	cmd.Flags().StringSliceVar(&flags.expand, "expand", nil, "relations to expand")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")
}

func addBodyFlags(cmd *cobra.Command, body *bodyFlags) {
	cmd.Flags().StringArrayVar(&body.assignments, "field", nil,
		"field assignment name=value, the value is parsed as JSON when possible (repeatable)")
	cmd.Flags().StringVar(&body.json, "json", "", "JSON object body, or @file to read it from a file")
	cmd.Flags().StringVar(&body.binary, "binary", "", "file to upload as [field=]path (field defaults to 'file')")
}

func searchParams(collection string, flags *queryFlags) map[string]interface{} {
	return map[string]interface{}{
		"resource":         collection,
		"operation":        constants.OperationSearch,
		"allElements":      flags.all,
		"page":             flags.page,
		"elementsPerPage":  flags.perPage,
		"filter":           flags.filter,
		"sort":             flags.sort,
		"expand-relations": flags.expand,
		"field-selection":  flags.fields,
	}
}

// writeParams builds create and update parameters. The body type list holds
// every body mode the flags use.
func writeParams(
	operation, collection, id string,
	flags *queryFlags,
	body *bodyFlags,
) (map[string]interface{}, pbapi.BinaryAccessor, error) {
	raw := map[string]interface{}{
		"resource":         collection,
		"operation":        operation,
		"expand-relations": flags.expand,
		"field-selection":  flags.fields,
	}

	if id != "" {
		raw["elementId"] = id
	}

	bodyTypes := make([]string, 0, 3) //nolint:mnd // one per body mode

	if len(body.assignments) > 0 {
		assignments, err := parseAssignments(body.assignments)
		if err != nil {
			return nil, nil, err
		}

		bodyTypes = append(bodyTypes, constants.BodyTypeFields)
		raw["fields"] = map[string]interface{}{"assignments": assignments}
	}

	if body.json != "" {
		data, err := readArgument(body.json)
		if err != nil {
			return nil, nil, err
		}

		bodyTypes = append(bodyTypes, constants.BodyTypeJSON)
		raw["bodyJson"] = data
	}

	var accessor pbapi.BinaryAccessor

	if body.binary != "" {
		field, path, err := parseBinaryArg(body.binary)
		if err != nil {
			return nil, nil, err
		}

		bodyTypes = append(bodyTypes, constants.BodyTypeBinary)
		raw["binaryPropertyName"] = binaryProperty
		raw["binaryFieldName"] = field
		accessor = fileBinaryAccessor{binaryProperty: path}
	}

	raw["bodyType"] = bodyTypes

	return raw, accessor, nil
}

// parseAssignments turns name=value pairs into assignment maps. Values that
// parse as JSON keep their type, anything else is sent as a string.
func parseAssignments(pairs []string) ([]interface{}, error) {
	assignments := make([]interface{}, 0, len(pairs))

	for _, pair := range pairs {
		name, rawValue, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)

		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidAssignment, pair)
		}

		var value interface{}

		err := json.Unmarshal([]byte(rawValue), &value)
		if err != nil {
			value = rawValue
		}

		assignments = append(assignments, map[string]interface{}{"name": name, "value": value})
	}

	return assignments, nil
}

// readArgument returns arg, or the content of the file named after a leading "@".
func readArgument(arg string) (string, error) {
	path, isFile := strings.CutPrefix(arg, "@")
	if !isFile {
		return arg, nil
	}

	// path is supplied by the user on the command line
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(data), nil
}

// runRecordCommand runs one operation through the executor and prints its
// records. list selects array output for single record operations.
func runRecordCommand(cmd *cobra.Command, raw map[string]interface{}, accessor pbapi.BinaryAccessor, list bool) error {
	params, err := pbapi.DecodeParams(raw)
	if err != nil {
		return err
	}

	err = params.Validate()
	if err != nil {
		return err
	}

	return withClient(cmd, func(ctx context.Context, c *client.Client) error {
		records, err := executeRecordOperation(ctx, c.Executor(), params, accessor)
		if err != nil {
			return err
		}

		return writeRecords(ctx, cmd.OutOrStdout(), currentOutputOptions(), records, list)
	})
}

// executeRecordOperation runs a single item and returns its records.
func executeRecordOperation(
	ctx context.Context,
	executor pbapi.Executor,
	params *pbapi.OperationParams,
	accessor pbapi.BinaryAccessor,
) ([]*pbapi.Record, error) {
	results, err := executor.Run(ctx, []pbapi.Item{{Params: params, Binary: accessor}})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return []*pbapi.Record{}, nil
	}

	if results[0].Error != nil {
		return nil, results[0].Error
	}

	return results[0].Records, nil
}

func writeRecords(ctx context.Context, w io.Writer, opts outputOptions, records []*pbapi.Record, list bool) error {
	var data interface{} = records
	if !list && len(records) == 1 {
		data = records[0]
	}

	return render(ctx, w, opts, data, func(w io.Writer) error {
		return recordsTable(w, records)
	})
}

// readItemsFile reads a YAML or JSON list of parameter maps.
func readItemsFile(path string, continueOnFail bool) ([]pbapi.Item, error) {
	// path is supplied by the user on the command line
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}

	return parseItems(data, continueOnFail)
}

// parseItems decodes items. A "binary" map of property name to file path
// becomes the item's binary accessor. continueOnFail applies to items that
// do not set it.
func parseItems(data []byte, continueOnFail bool) ([]pbapi.Item, error) {
	var rawItems []map[string]interface{}

	err := yaml.Unmarshal(data, &rawItems)
	if err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}

	items := make([]pbapi.Item, 0, len(rawItems))

	for index, raw := range rawItems {
		var accessor pbapi.BinaryAccessor

		if binary, ok := raw["binary"].(map[string]interface{}); ok {
			files := make(fileBinaryAccessor, len(binary))
			for property, path := range binary {
				files[property] = fmt.Sprint(path)
			}

			accessor = files
		}

		delete(raw, "binary")

		if _, set := raw["continueOnFail"]; !set && continueOnFail {
			raw["continueOnFail"] = true
		}

		params, err := pbapi.DecodeParams(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", index, err)
		}

		input, err := pbapi.RecordFromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", index, err)
		}

		items = append(items, pbapi.Item{Params: params, Input: input, Binary: accessor})
	}

	return items, nil
}

// resultView is the printable form of an item result.
type resultView struct {
	Index    int             `json:"index"`
	Success  bool            `json:"success"`
	Records  []*pbapi.Record `json:"records,omitempty"`
	Response *pbapi.Value    `json:"response,omitempty"`
	Input    *pbapi.Record   `json:"input,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration string          `json:"duration"`
}

func newResultViews(results []pbapi.ItemResult) []resultView {
	views := make([]resultView, 0, len(results))

	for _, result := range results {
		view := resultView{
			Index:    result.Index,
			Success:  result.Success,
			Records:  result.Records,
			Input:    result.Input,
			Duration: result.Duration.String(),
		}

		if result.Response.Kind() != pbapi.KindNull {
			response := result.Response
			view.Response = &response
		}

		if result.Error != nil {
			view.Error = result.Error.Error()
		}

		views = append(views, view)
	}

	return views
}

func resultsTable(w io.Writer, views []resultView) error {
	table := newTable(w, "Item", "Success", "Records", "Error", "Duration")

	for _, view := range views {
		_ = table.Append([]string{
			fmt.Sprintf("%d", view.Index),
			fmt.Sprintf("%t", view.Success),
			fmt.Sprintf("%d", len(view.Records)),
			truncate(view.Error, constants.MaxCellWidth),
			view.Duration,
		})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
