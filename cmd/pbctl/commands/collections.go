package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/spf13/cobra"
)

// NewCollectionsCommand creates the collections command.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "c"},
		Short:   "List collections",
		Long:    "List the collections of the backend as name and ID",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptionsCommand(cmd, func(ctx context.Context, options pbapi.OptionsClient) ([]pbapi.OptionEntry, error) {
				return options.ListCollections(ctx)
			})
		},
	}

	cmd.AddCommand(newCollectionsShowCommand())

	return cmd
}

func newCollectionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show COLLECTION",
		Short: "Show a collection and its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				collection, err := c.Collections().Get(ctx, args[0])
				if err != nil {
					return err
				}

				return render(ctx, cmd.OutOrStdout(), currentOutputOptions(), collection, func(w io.Writer) error {
					return collectionTable(w, collection)
				})
			})
		},
	}
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	var includeRelationFields bool

	cmd := &cobra.Command{
		Use:   "fields COLLECTION",
		Short: "List the fields of a collection",
		Long: `List the fields of a collection for field selection.

Every relation field adds an entry selecting all fields of the related record
(expand.<relation>.*). The relation field itself is listed only with
--include-relation-fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptionsCommand(cmd, func(ctx context.Context, options pbapi.OptionsClient) ([]pbapi.OptionEntry, error) {
				return options.ListFields(ctx, args[0], &pbapi.FieldOptions{
					IncludeRelationFields: includeRelationFields,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&includeRelationFields, "include-relation-fields", false, "also list relation fields themselves")

	return cmd
}

// NewRelationsCommand creates the relations command.
func NewRelationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "relations COLLECTION",
		Short: "List the relation fields of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptionsCommand(cmd, func(ctx context.Context, options pbapi.OptionsClient) ([]pbapi.OptionEntry, error) {
				return options.ListRelations(ctx, args[0])
			})
		},
	}
}

// NewRowsCommand creates the rows command.
func NewRowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rows COLLECTION",
		Short: "List records for selection",
		Long: `List the newest records of a collection as label and ID.

Labels come from the record's name, title or label field, or are built from
its short fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptionsCommand(cmd, func(ctx context.Context, options pbapi.OptionsClient) ([]pbapi.OptionEntry, error) {
				return options.ListRows(ctx, args[0])
			})
		},
	}
}

func runOptionsCommand(
	cmd *cobra.Command,
	list func(ctx context.Context, options pbapi.OptionsClient) ([]pbapi.OptionEntry, error),
) error {
	return withClient(cmd, func(ctx context.Context, c *client.Client) error {
		entries, err := list(ctx, c.Options())
		if err != nil {
			return err
		}

		return render(ctx, cmd.OutOrStdout(), currentOutputOptions(), entries, func(w io.Writer) error {
			return optionsTable(w, entries)
		})
	})
}

func collectionTable(w io.Writer, collection *pbapi.Collection) error {
	err := propertiesTable(w, [][2]string{
		{"Name", collection.Name},
		{"ID", collection.ID},
		{"Type", collection.Type},
		{"System", fmt.Sprintf("%t", collection.System)},
	})
	if err != nil {
		return err
	}

	if len(collection.Fields) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(w)

	table := newTable(w, "Field", "Type", "Required", "Hidden", "Relation To")

	for _, field := range collection.Fields {
		relation := ""
		if field.IsRelation() {
			relation = field.CollectionID
		}

		_ = table.Append([]string{
			field.Name,
			field.Type,
			fmt.Sprintf("%t", field.Required),
			fmt.Sprintf("%t", field.Hidden),
			truncate(relation, constants.MaxCellWidth),
		})
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
