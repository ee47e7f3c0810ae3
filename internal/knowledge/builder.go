package knowledge

import (
	"fmt"

	"github.com/google/uuid"
)

// SourceMeta describes where a text unit came from.
type SourceMeta struct {
	Name     string // display name / filename, stored as payload "source"
	Modified string // optional RFC3339 modification time
}

// recordNamespace scopes deterministic record ids to this service.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("suedenergie/knowledge-backend"))

// RecordBuilder turns a text unit into an indexable record. Pure: it assigns
// ids and payload fields but never calls the embedding provider, so network
// retry logic stays in one place.
type RecordBuilder struct {
	deterministic bool
}

// NewRecordBuilder creates a builder. With deterministic=false every call
// mints a fresh random id, so re-ingesting a document appends new records.
// With deterministic=true the id is derived from source, page and content, so
// a replace-on-re-ingest policy overwrites instead of duplicating.
func NewRecordBuilder(deterministic bool) *RecordBuilder {
	return &RecordBuilder{deterministic: deterministic}
}

// Build produces a record with the vector left unset.
func (b *RecordBuilder) Build(text string, page int, chunkIndex int, meta SourceMeta) Record {
	var id string
	if b.deterministic {
		key := fmt.Sprintf("%s|%d|%d|%s", meta.Name, page, chunkIndex, text)
		id = uuid.NewSHA1(recordNamespace, []byte(key)).String()
	} else {
		id = uuid.NewString()
	}

	return Record{
		ID: id,
		Payload: Payload{
			Text:     text,
			Source:   meta.Name,
			Modified: meta.Modified,
			Page:     page,
		},
	}
}
