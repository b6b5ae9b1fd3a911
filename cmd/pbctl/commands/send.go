package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/pocketbase-client/internal/client"
	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pbapi"
	"github.com/spf13/cobra"
)

// sendFlags describe a custom endpoint call.
type sendFlags struct {
	method  string
	query   []string
	headers []string
	body    string
	repeat  int
	cont    bool
}

// NewSendCommand creates the send command.
func NewSendCommand() *cobra.Command {
	flags := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send PATH",
		Short: "Call a custom endpoint",
		Long: `Send an authenticated request to any backend path and print the JSON response.

PATH is relative to the endpoint, e.g. /api/health or /api/custom/report.`,
		Example: `  pbctl send /api/health
  pbctl send /api/custom/report -X POST --body '{"month":"2024-01"}' --query format=full`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildSendRequest(args[0], flags)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				items := make([]pbapi.Item, max(flags.repeat, 1))

				results, err := c.Executor().RunSend(ctx, req, items, flags.cont)
				if err != nil {
					return err
				}

				return writeSendResults(ctx, cmd.OutOrStdout(), currentOutputOptions(), results)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringArrayVarP(&flags.query, "query", "q", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.headers, "header", "H", nil, "request header key=value (repeatable)")
	cmd.Flags().StringVarP(&flags.body, "body", "d", "", "JSON object body, or @file to read it from a file")
	cmd.Flags().IntVar(&flags.repeat, "repeat", 1, "number of times to send the request")
	cmd.Flags().BoolVar(&flags.cont, "continue-on-fail", false, "keep sending after a failed request")

	return cmd
}

func buildSendRequest(path string, flags *sendFlags) (*pbapi.SendRequest, error) {
	req := &pbapi.SendRequest{
		Method: flags.method,
		Path:   path,
	}

	if len(flags.query) > 0 {
		req.Query = url.Values{}

		for _, pair := range flags.query {
			key, value, err := splitPair(pair)
			if err != nil {
				return nil, err
			}

			req.Query.Add(key, value)
		}
	}

	if len(flags.headers) > 0 {
		req.Headers = make(map[string]string, len(flags.headers))

		for _, pair := range flags.headers {
			key, value, err := splitPair(pair)
			if err != nil {
				return nil, err
			}

			req.Headers[key] = value
		}
	}

	if flags.body != "" {
		data, err := readArgument(flags.body)
		if err != nil {
			return nil, err
		}

		body, err := pbapi.ParseJSONBody(data)
		if err != nil {
			return nil, err
		}

		req.Body = body
	}

	return req, nil
}

func splitPair(pair string) (string, string, error) {
	key, value, found := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)

	if !found || key == "" {
		return "", "", fmt.Errorf("%w: %q", constants.ErrInvalidAssignment, pair)
	}

	return key, value, nil
}

// writeSendResults prints the response of a single call as is, and one
// result per call otherwise.
func writeSendResults(ctx context.Context, w io.Writer, opts outputOptions, results []pbapi.ItemResult) error {
	if len(results) == 1 && results[0].Error == nil {
		return render(ctx, w, opts, results[0].Response, nil)
	}

	views := newResultViews(results)

	return render(ctx, w, opts, views, func(w io.Writer) error {
		return resultsTable(w, views)
	})
}
