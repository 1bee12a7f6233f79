package store

import (
	"context"
	"fmt"

	"github.com/PratikDhanave/telemetry-ingest-service/internal/models"
)

// Fixtures are sample events for a fresh development database.
// id and timestamp are left to the store defaults.
func Fixtures() []models.EventInput {
	return []models.EventInput{
		{
			EventType:   "SESSION_START",
			GameName:    "Cyber Sprint",
			GameType:    "Racing",
			GameVersion: "1.0.0",
			Payload:     map[string]any{"map": "Neo-Tokyo", "players": 8},
		},
		{
			EventType:   "LAP_COMPLETE",
			GameName:    "Cyber Sprint",
			GameType:    "Racing",
			GameVersion: "1.0.0",
			Payload:     map[string]any{"lapTime": 45.5, "player": "SpeedRacer"},
		},
	}
}

// Seed writes every fixture and stops at the first failure.
func Seed(ctx context.Context, st EventStore) (int, error) {
	fixtures := Fixtures()
	for i, in := range fixtures {
		if err := st.CreateEvent(ctx, in); err != nil {
			return i, fmt.Errorf("seed fixture %d (%v): %w", i, in.EventType, err)
		}
	}
	return len(fixtures), nil
}
