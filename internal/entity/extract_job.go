package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/debt-tracker/constants"
)

// ExtractJob represents one asynchronous extraction run for data transfer between layers.
type ExtractJob struct {
	ID           uuid.UUID           `json:"id"`
	FileName     string              `json:"file_name"`
	FileSize     int64               `json:"file_size"`
	Status       constants.JobStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	ErrorKind    string              `json:"error_kind,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	ModelName    string              `json:"model_name,omitempty"`
	Records      []ClientRecord      `json:"records"`
	Summary      *RunSummary         `json:"summary,omitempty"`
}
