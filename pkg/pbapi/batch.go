package pbapi

import (
	"time"
)

// Item is one input item of an execution run.
type Item struct {
	// Params are the operation parameters evaluated for this item.
	Params *OperationParams
	// Input is the item's own data, echoed back on failure.
	Input *Record
	// Binary resolves the item's binary properties. May be nil.
	Binary BinaryAccessor
}

// ItemResult is the outcome of one item.
type ItemResult struct {
	Index   int
	Success bool
	// Records holds the search results, or the single record of view/create/update.
	Records []*Record
	// Response holds the decoded response of a send call.
	Response Value
	// Input echoes the item's data when Error is set.
	Input    *Record
	Error    error
	Duration time.Duration
}
