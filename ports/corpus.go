package ports

import (
	"context"

	"caselens/domain/casefile"
)

// CorpusReaderPort provides read-only access to the historical case
// corpus. The valuation core never mutates the corpus; implementations
// must be safe for concurrent readers and return snapshot-consistent
// data for one call.
type CorpusReaderPort interface {
	// Snapshot returns the historical cases for the given snapshot
	// reference. An empty ref selects the latest corpus. Unavailability
	// (timeout, connection failure) surfaces as a retrieval error.
	Snapshot(ctx context.Context, ref string) ([]casefile.HistoricalCase, error)
}

// CorpusWriterPort loads historical cases into the corpus. Used by
// import tooling only; the analysis path never writes.
type CorpusWriterPort interface {
	InsertCases(ctx context.Context, cases []casefile.HistoricalCase) error
}
