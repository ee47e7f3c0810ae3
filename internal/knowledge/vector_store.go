package knowledge

import "context"

// Payload is the metadata stored alongside each vector. Text and Source are
// always set; Modified and Page are optional extras from the ingestion source.
type Payload struct {
	Text     string
	Source   string
	Modified string
	Page     int
}

// Record is the atomic unit written to the vector index. The vector length
// must equal the collection's configured size or the store rejects the batch.
type Record struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Match is one retrieval hit, ordered by descending similarity.
type Match struct {
	ID      string
	Score   float64
	Payload Payload
}

// VectorStore owns the collection lifecycle and all reads/writes against the
// vector index. No other component touches the collection directly.
//
// EnsureCollection is idempotent: it checks existence by name and creates the
// collection only when absent. Upsert writes the whole batch or nothing.
// Search returns at most topK matches, descending by similarity; an empty
// collection yields an empty result, not an error.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)
	DeleteBySource(ctx context.Context, source string) error
	Count(ctx context.Context) (int64, error)
	Ready() bool
}
