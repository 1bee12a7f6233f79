package models

import (
	"encoding/json"
	"time"
)

// EventInput is the untyped create-event argument handed to the store.
// A nil field means the value was absent from the request; shape checks are
// the store's job, not the handler's.
type EventInput struct {
	ID          any
	EventType   any
	Timestamp   any
	GameName    any
	GameType    any
	GameVersion any
	Payload     any
}

// Event is a persisted telemetry record.
type Event struct {
	ID          string
	EventType   string
	Timestamp   time.Time
	GameName    string
	GameType    string
	GameVersion string
	Payload     json.RawMessage
}

// EventIngestResponse is returned by POST /api/telemetry/events on success.
type EventIngestResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a store or transport failure back to the client.
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}
