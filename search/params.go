package search

import "github.com/poiesic/coursegraph/core"

const (
	defaultLimit     = 10
	defaultThreshold = 0.5
)

// Params holds per-query search parameters.
type Params struct {
	// Limit is the maximum number of results to return.
	// Values <= 0 use the default of 10.
	Limit int

	// Threshold is the minimum cosine similarity for a result.
	// Values outside (0, 1] use the default of 0.5.
	Threshold float32

	// SourceTypes restricts results to the given source types.
	// Empty means all source types.
	SourceTypes []core.SourceType

	// UseCache controls whether the result cache is consulted and updated
	// for this query.
	UseCache bool
}

// DefaultParams returns the standard search parameters.
func DefaultParams() Params {
	return Params{
		Limit:     defaultLimit,
		Threshold: defaultThreshold,
		UseCache:  true,
	}
}

// normalized replaces out-of-range fields with defaults.
func (p Params) normalized() Params {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Threshold <= 0 || p.Threshold > 1 {
		p.Threshold = defaultThreshold
	}
	return p
}
