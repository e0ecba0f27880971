package dto

import "github.com/noah-isme/dance-class-api/internal/models"

// ExportRequest captures POST /exports.
type ExportRequest struct {
	Format       models.ExportFormat `json:"format"`
	Query        string              `json:"q,omitempty"`
	Filters      FilterRequest       `json:"filters"`
	Timezone     string              `json:"tz,omitempty"`
	UpcomingOnly bool                `json:"upcoming,omitempty"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
