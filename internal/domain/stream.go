package domain

import "github.com/google/uuid"

// Stream names used between the API and the geometry backfill worker.
const (
	StreamTelemetryIngested = "stream:telemetry:ingested"
	StreamGeometryDone      = "stream:telemetry:geometry"
)

// IngestCompletedEvent is published after a successful bulk ingestion so the
// worker can derive geometry for the new rows.
type IngestCompletedEvent struct {
	BatchID     uuid.UUID `json:"batch_id"`
	RecordCount int       `json:"record_count"`
	WithNotes   bool      `json:"with_notes"`
	IngestedAt  string    `json:"ingested_at"`
}

// GeometryBackfilledEvent reports the outcome of a backfill pass.
type GeometryBackfilledEvent struct {
	BatchID      uuid.UUID `json:"batch_id"`
	AffectedRows int64     `json:"affected_rows"`
	Error        string    `json:"error,omitempty"`
}

// StreamMessage is one raw message read from a Redis Stream.
type StreamMessage struct {
	ID   string
	Data string
}
