package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeStageCompleted is emitted after every pipeline stage finishes.
	EventTypeStageCompleted = "rsum.stage.completed"
)

// StageEvent is a transport-neutral event payload for one completed stage.
type StageEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	RunID   string `json:"run_id"`
	Variant string `json:"variant"`

	// Session is the 1-based session ordinal, or 0 for the final response.
	Session int    `json:"session"`
	Stage   string `json:"stage"`
	Task    string `json:"task"`

	DurationMs    int64  `json:"duration_ms"`
	OutputPreview string `json:"output_preview,omitempty"`
}

// NewStageEvent stamps a stage event with a fresh id and the current time.
func NewStageEvent(runID, variant string, session int, stage, task string) *StageEvent {
	return &StageEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeStageCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		RunID:         runID,
		Variant:       variant,
		Session:       session,
		Stage:         stage,
		Task:          task,
	}
}
