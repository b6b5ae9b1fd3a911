package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// LogDirPerm is the permission for log directories.
	LogDirPerm = 0755
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as authentication.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Pagination.
const (
	// DefaultPage is the first page of a listing.
	DefaultPage = 1

	// DefaultMaxPages caps a single pagination run.
	DefaultMaxPages = 10000

	// CollectionsPerPage is the page size used when listing collections.
	CollectionsPerPage = 200
)

// Authentication.
const (
	// DefaultUserCollection is the collection holding administrator accounts.
	DefaultUserCollection = "_superusers"

	// TokenExpirationBuffer is subtracted from the token expiry before it is considered stale.
	TokenExpirationBuffer = 30 * time.Second
)

// API paths.
const (
	// APIPathCollections lists collections.
	APIPathCollections = "/api/collections"

	// APIPathRecords is appended to a collection path to address its records.
	APIPathRecords = "/records"
)

// Option labels.
const (
	// RowLabelMinLength is the exclusive lower bound of a serialized column considered for a row label.
	RowLabelMinLength = 2

	// RowLabelMaxLength is the inclusive upper bound of a serialized column considered for a row label.
	RowLabelMaxLength = 20

	// RowLabelCutoff is the end index (exclusive) of a synthesized row label.
	RowLabelCutoff = 100

	// RowsSort is the sort used when listing rows for selection.
	RowsSort = "-created"
)

// Body assembly.
const (
	// ContentTypeJSON is the content type of a plain JSON body.
	ContentTypeJSON = "application/json"

	// DefaultAttachmentField is the form name of a binary part without a target field.
	DefaultAttachmentField = "file"

	// DefaultMimeType is used when the host does not report a MIME type.
	DefaultMimeType = "application/octet-stream"
)

// Format constants.
const (
	// FormatJSON is the JSON output format.
	FormatJSON = "json"

	// FormatYAML is the YAML output format.
	FormatYAML = "yaml"

	// FormatTable is the table output format.
	FormatTable = "table"

	// JSONIndentSize is the indent used for pretty-printed output.
	JSONIndentSize = 2
)

// Operation names.
const (
	// OperationSearch lists or searches a collection.
	OperationSearch = "search"

	// OperationView fetches a single record.
	OperationView = "view"

	// OperationCreate creates a record.
	OperationCreate = "create"

	// OperationUpdate updates a record.
	OperationUpdate = "update"
)

// Body type selections.
const (
	// BodyTypeFields selects explicit field assignments.
	BodyTypeFields = "fields"

	// BodyTypeJSON selects the raw JSON body.
	BodyTypeJSON = "bodyJson"

	// BodyTypeBinary selects the binary attachment.
	BodyTypeBinary = "binaryData"
)

// Display constants.
const (
	// NotAvailable is shown for missing values.
	NotAvailable = "N/A"

	// MaskedSecret replaces secrets in output.
	MaskedSecret = "***"

	// MaxCellWidth truncates long table cells.
	MaxCellWidth = 40
)
