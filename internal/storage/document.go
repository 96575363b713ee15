package storage

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/models"
)

// Decode parses a persisted schedule. Malformed content is treated as an
// empty schedule rather than an error.
func Decode(data []byte, source string) models.Schedule {
	var schedule models.Schedule
	if len(data) == 0 {
		return models.Schedule{}
	}
	if err := json.Unmarshal(data, &schedule); err != nil {
		logger.Warn("Malformed schedule document, treating as empty", "source", source, "error", err)
		return models.Schedule{}
	}
	return normalize(schedule)
}

// Encode serializes the schedule the way it is written to disk.
func Encode(schedule models.Schedule) ([]byte, error) {
	data, err := json.MarshalIndent(normalize(schedule), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schedule: %w", err)
	}
	return data, nil
}

// normalize guarantees empty slices instead of nulls in the document.
func normalize(schedule models.Schedule) models.Schedule {
	if schedule == nil {
		return models.Schedule{}
	}
	for i := range schedule {
		if schedule[i].Events == nil {
			schedule[i].Events = []models.Event{}
		}
	}
	return schedule
}
