package dto

import "github.com/noah-isme/dance-class-api/internal/models"

// ClassRequest captures POST /classes and PUT /classes/:id payloads.
type ClassRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Style       []string `json:"style" validate:"required,min=1,dive,dance_style"`
	DateTime    string   `json:"date_time" validate:"required"`
	Location    string   `json:"location" validate:"required,max=300"`
	Description string   `json:"description" validate:"required,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	RSVPLink    *string  `json:"rsvp_link,omitempty" validate:"omitempty,url"`
	Flyer       *string  `json:"flyer,omitempty" validate:"omitempty,url"`
	VideoLink   *string  `json:"video_link,omitempty" validate:"omitempty,url"`
}

// StatusRequest captures PATCH /classes/:id/status.
type StatusRequest struct {
	Status models.ClassStatus `json:"status" binding:"required"`
}

// ToggleResponse reports the membership state after a toggle.
type ToggleResponse struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Active bool   `json:"active"`
}
