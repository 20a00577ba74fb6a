package events

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical event shape published by tribunal modules.
// Outbox rows persist the marshalled envelope; the worker relay republishes it
// verbatim, so fields must stay backward compatible.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	SchemaVersion int             `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}
