package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/PratikDhanave/telemetry-ingest-service/internal/models"
)

// EventStore persists telemetry events.
//
// CreateEvent returns a *ValidationError for malformed input, an
// *OperationalError when the database rejects the row, and any other error
// for failures it cannot attribute.
type EventStore interface {
	CreateEvent(ctx context.Context, in models.EventInput) error
	Ping(ctx context.Context) error
	Close()
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// buildEvent checks the untyped input against the events table shape.
// id and timestamp fall back to column defaults when absent.
func buildEvent(in models.EventInput) (models.Event, error) {
	var ev models.Event

	switch v := in.ID.(type) {
	case nil:
		ev.ID = uuid.NewString()
	case string:
		ev.ID = v
	default:
		return ev, validationErrorf("Invalid value for argument `id`: expected String, got %s.", jsonType(v))
	}

	var err error
	if ev.EventType, err = requiredString("eventType", in.EventType); err != nil {
		return ev, err
	}
	if ev.GameName, err = requiredString("gameName", in.GameName); err != nil {
		return ev, err
	}
	if ev.GameType, err = requiredString("gameType", in.GameType); err != nil {
		return ev, err
	}
	if ev.GameVersion, err = requiredString("gameVersion", in.GameVersion); err != nil {
		return ev, err
	}

	switch v := in.Timestamp.(type) {
	case nil:
		ev.Timestamp = now()
	case string:
		ts, perr := time.Parse(time.RFC3339Nano, v)
		if perr != nil {
			return ev, validationErrorf("Invalid value for argument `timestamp`: %q is not a valid ISO-8601 DateTime.", v)
		}
		ev.Timestamp = ts.UTC()
	case time.Time:
		ev.Timestamp = v.UTC()
	default:
		return ev, validationErrorf("Invalid value for argument `timestamp`: expected ISO-8601 DateTime, got %s.", jsonType(v))
	}

	if in.Payload == nil {
		return ev, validationErrorf("Argument `payload` is missing.")
	}
	raw, err := json.Marshal(in.Payload)
	if err != nil {
		return ev, validationErrorf("Invalid value for argument `payload`: %v.", err)
	}
	ev.Payload = raw

	return ev, nil
}

func requiredString(name string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", validationErrorf("Argument `%s` is missing.", name)
	case string:
		return s, nil
	default:
		return "", validationErrorf("Invalid value for argument `%s`: expected String, got %s.", name, jsonType(s))
	}
}

// jsonType names a decoded JSON value the way a client would recognise it.
func jsonType(v any) string {
	switch v.(type) {
	case bool:
		return "Boolean"
	case float64, json.Number, int, int64:
		return "Number"
	case string:
		return "String"
	case []any:
		return "Array"
	case map[string]any:
		return "Object"
	default:
		return "Unknown"
	}
}
