package models

import (
	"strings"
	"time"
)

// ClassStatus represents the lifecycle state of a dance class listing.
type ClassStatus string

const (
	ClassStatusActive    ClassStatus = "active"
	ClassStatusFeatured  ClassStatus = "featured"
	ClassStatusCancelled ClassStatus = "cancelled"
	ClassStatusSubmitted ClassStatus = "submitted"
)

// Valid reports whether s is a known status.
func (s ClassStatus) Valid() bool {
	switch s {
	case ClassStatusActive, ClassStatusFeatured, ClassStatusCancelled, ClassStatusSubmitted:
		return true
	default:
		return false
	}
}

// DanceStyles is the catalogue offered when creating a class.
var DanceStyles = []string{
	"Hip Hop", "Contemporary", "Jazz", "Ballet", "Tap", "Lyrical", "Modern",
	"Street Jazz", "Breaking", "Popping", "Locking", "House", "Waacking",
	"Vogue", "Afro", "Latin", "Salsa", "Bachata", "K-Pop", "Heels",
	"Commercial", "Musical Theatre",
}

// IsDanceStyle reports whether style is part of the catalogue (case-insensitive).
func IsDanceStyle(style string) bool {
	for _, s := range DanceStyles {
		if strings.EqualFold(s, strings.TrimSpace(style)) {
			return true
		}
	}
	return false
}

// DanceClass is one scheduled class listing.
type DanceClass struct {
	ID                    string      `json:"id"`
	Title                 string      `json:"title"`
	ChoreographerID       string      `json:"choreographer_id"`
	ChoreographerName     string      `json:"choreographer_name"`
	ChoreographerUsername string      `json:"choreographer_username,omitempty"`
	Style                 []string    `json:"style"`
	DateTime              time.Time   `json:"date_time"`
	Location              string      `json:"location"`
	Description           string      `json:"description"`
	Price                 *float64    `json:"price,omitempty"`
	RSVPLink              *string     `json:"rsvp_link,omitempty"`
	Flyer                 *string     `json:"flyer,omitempty"`
	VideoLink             *string     `json:"video_link,omitempty"`
	Status                ClassStatus `json:"status"`
}

// Clone returns a deep copy so snapshot consumers cannot alias catalog state.
func (c DanceClass) Clone() DanceClass {
	out := c
	out.Style = append([]string(nil), c.Style...)
	out.Price = cloneFloat(c.Price)
	out.RSVPLink = cloneString(c.RSVPLink)
	out.Flyer = cloneString(c.Flyer)
	out.VideoLink = cloneString(c.VideoLink)
	return out
}

// IsCancelled reports whether interaction actions are disabled.
func (c DanceClass) IsCancelled() bool {
	return c.Status == ClassStatusCancelled
}

// IsUpcoming reports whether the class starts after now and is not cancelled.
func (c DanceClass) IsUpcoming(now time.Time) bool {
	return c.DateTime.After(now) && !c.IsCancelled()
}

// Studio derives the studio name from "Venue - Studio" style locations.
func (c DanceClass) Studio() string {
	parts := strings.Split(c.Location, " - ")
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(c.Location)
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
