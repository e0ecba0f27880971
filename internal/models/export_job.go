package models

import "time"

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid reports whether f is supported.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatPDF
}

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is a schedule export request and its outcome.
type ExportJob struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	UserID       string          `json:"user_id"`
	Params       ExportJobParams `json:"params"`
	Status       ExportStatus    `json:"status"`
	Progress     int             `json:"progress"`
	ResultURL    *string         `json:"result_url,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// ExportJobParams freezes the schedule query at request time.
type ExportJobParams struct {
	Format       ExportFormat `json:"format"`
	Query        string       `json:"query,omitempty"`
	Filter       FilterSpec   `json:"filter"`
	Timezone     string       `json:"timezone,omitempty"`
	UpcomingOnly bool         `json:"upcoming_only,omitempty"`
}

// ExportJobUpdate lists the mutable fields of a job; nil fields are left unchanged.
type ExportJobUpdate struct {
	Status       *ExportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Apply mutates job with the non-nil fields of u.
func (u ExportJobUpdate) Apply(job *ExportJob) {
	if u.Status != nil {
		job.Status = *u.Status
	}
	if u.Progress != nil {
		job.Progress = *u.Progress
	}
	if u.ResultURL != nil {
		job.ResultURL = u.ResultURL
	}
	if u.ErrorMessage != nil {
		if *u.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			job.ErrorMessage = u.ErrorMessage
		}
	}
	if u.FinishedAt != nil {
		job.FinishedAt = u.FinishedAt
	}
}
