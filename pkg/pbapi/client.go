package pbapi

import (
	"context"
	"net/url"
	"time"
)

// CollectionsClient provides access to collection metadata.
type CollectionsClient interface {
	List(ctx context.Context) ([]Collection, error)
	Get(ctx context.Context, nameOrID string) (*Collection, error)
	Fields(ctx context.Context, collection string) ([]Field, error)
}

// RecordsClient provides the record primitives of a collection.
type RecordsClient interface {
	RecordPageLister
	Get(ctx context.Context, collection, id string, params *QueryParams) (*Record, error)
	Create(ctx context.Context, collection string, payload *Payload, params *QueryParams) (*Record, error)
	Update(ctx context.Context, collection, id string, payload *Payload, params *QueryParams) (*Record, error)
	Search(ctx context.Context, collection string, params *QueryParams, allElements bool) ([]*Record, error)
}

// FieldOptions controls ListFields.
type FieldOptions struct {
	// IncludeRelationFields keeps the plain entry of relation fields next to
	// their expand entry.
	IncludeRelationFields bool
}

// OptionsClient produces label/value choices for interactive selection.
type OptionsClient interface {
	ListCollections(ctx context.Context) ([]OptionEntry, error)
	ListFields(ctx context.Context, collection string, opts *FieldOptions) ([]OptionEntry, error)
	ListRelations(ctx context.Context, collection string) ([]OptionEntry, error)
	ListRows(ctx context.Context, collection string) ([]OptionEntry, error)
}

// SendRequest describes a call to an arbitrary backend endpoint.
type SendRequest struct {
	Method  string            `json:"method,omitempty"  mapstructure:"method"`
	Path    string            `json:"path"              mapstructure:"path"`
	Query   url.Values        `json:"query,omitempty"   mapstructure:"-"`
	Headers map[string]string `json:"headers,omitempty" mapstructure:"headers"`
	Body    *Record           `json:"body,omitempty"    mapstructure:"-"`
}

// SendClient calls custom endpoints.
type SendClient interface {
	Send(ctx context.Context, req *SendRequest) (Value, error)
}

// Executor runs operations for a list of input items.
type Executor interface {
	Run(ctx context.Context, items []Item) ([]ItemResult, error)
	RunSend(ctx context.Context, req *SendRequest, items []Item, continueOnFail bool) ([]ItemResult, error)
}

// Client is the entry point to a PocketBase backend.
type Client interface {
	Collections() CollectionsClient
	Records() RecordsClient
	Options() OptionsClient
	SendClient
	Executor() Executor
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a pbapi.Client.
//
// # Authentication precedence
//
// If Token is set it is sent as is and never refreshed, unless Username and
// Password are also set, in which case a 401 triggers a password login.
// Otherwise Username and Password are exchanged for a token through the
// auth-with-password endpoint of UserCollection during construction.
type Config struct {
	// Endpoint: base URL of the backend (e.g., "https://pb.example.com").
	// pbclient.New trims a trailing slash and adds "https://" if no scheme is present.
	Endpoint string

	// UserCollection: auth collection used for the password login. Defaults to "_superusers".
	UserCollection string
	// Username: identity (email or username) for the password login.
	Username string
	// Password: password for the password login.
	Password string
	// Token: pre-issued auth token.
	Token string

	// HTTPTimeout: timeout of a single HTTP attempt.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500, 429,
	// and connection errors). If 0, a sensible default is used by the client.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// MaxPages: upper bound of pages fetched by one search. Defaults to 10000.
	MaxPages int
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}
