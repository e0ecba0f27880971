package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/dance-class-api/internal/models"
)

// naiveLayouts are accepted for dateTime values without an offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// RecordError describes a fixture record rejected during decoding.
type RecordError struct {
	Document string
	Index    int
	ID       string
	Reason   string
}

func (e RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s[%d] %q: %s", e.Document, e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Document, e.Index, e.Reason)
}

type classRecord struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	ChoreographerID       string   `json:"choreographerId"`
	ChoreographerName     string   `json:"choreographerName"`
	ChoreographerUsername string   `json:"choreographerUsername"`
	Style                 []string `json:"style"`
	DateTime              string   `json:"dateTime"`
	Location              string   `json:"location"`
	Description           string   `json:"description"`
	Price                 *float64 `json:"price"`
	RSVPLink              *string  `json:"rsvpLink"`
	Flyer                 *string  `json:"flyer"`
	VideoLink             *string  `json:"videoLink"`
	Status                string   `json:"status"`
}

type socialLinksRecord struct {
	Instagram *string `json:"instagram"`
	TikTok    *string `json:"tiktok"`
	YouTube   *string `json:"youtube"`
	Website   *string `json:"website"`
}

type userRecord struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Username      string             `json:"username"`
	Role          string             `json:"role"`
	Pronouns      *string            `json:"pronouns"`
	Bio           *string            `json:"bio"`
	ProfilePhoto  *string            `json:"profilePhoto"`
	Website       *string            `json:"website"`
	SocialLinks   *socialLinksRecord `json:"socialLinks"`
	FeaturedVideo *string            `json:"featuredVideo"`
	Achievements  []string           `json:"achievements"`
	TeachingStyle *string            `json:"teachingStyle"`
}

// ParseClassTime parses RFC 3339 instants, or naive local times in loc.
func ParseClassTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("dateTime is empty")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("dateTime %q is not a valid timestamp", raw)
}

// DecodeClasses parses a classes document. Invalid records are skipped and reported.
func DecodeClasses(data []byte, loc *time.Location) ([]models.DanceClass, []RecordError, error) {
	var doc struct {
		Classes []json.RawMessage `json:"classes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", DocumentClasses, err)
	}

	classes := make([]models.DanceClass, 0, len(doc.Classes))
	rejected := make([]RecordError, 0)
	seen := make(map[string]struct{}, len(doc.Classes))
	for i, raw := range doc.Classes {
		var rec classRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			rejected = append(rejected, RecordError{Document: DocumentClasses, Index: i, Reason: err.Error()})
			continue
		}
		class, err := rec.toModel(loc)
		if err != nil {
			rejected = append(rejected, RecordError{Document: DocumentClasses, Index: i, ID: rec.ID, Reason: err.Error()})
			continue
		}
		if _, dup := seen[class.ID]; dup {
			rejected = append(rejected, RecordError{Document: DocumentClasses, Index: i, ID: rec.ID, Reason: "duplicate id"})
			continue
		}
		seen[class.ID] = struct{}{}
		classes = append(classes, class)
	}
	return classes, rejected, nil
}

// DecodeUsers parses a users or choreographers document; field names the top-level array.
func DecodeUsers(data []byte, document, field string) ([]models.User, []RecordError, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", document, err)
	}
	var items []json.RawMessage
	if raw, ok := doc[field]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", document, err)
		}
	}

	users := make([]models.User, 0, len(items))
	rejected := make([]RecordError, 0)
	for i, raw := range items {
		var rec userRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			rejected = append(rejected, RecordError{Document: document, Index: i, Reason: err.Error()})
			continue
		}
		user, err := rec.toModel()
		if err != nil {
			rejected = append(rejected, RecordError{Document: document, Index: i, ID: rec.ID, Reason: err.Error()})
			continue
		}
		users = append(users, user)
	}
	return users, rejected, nil
}

func (r classRecord) toModel(loc *time.Location) (models.DanceClass, error) {
	if strings.TrimSpace(r.ID) == "" {
		return models.DanceClass{}, fmt.Errorf("id is required")
	}
	styles := make([]string, 0, len(r.Style))
	for _, s := range r.Style {
		if s = strings.TrimSpace(s); s != "" {
			styles = append(styles, s)
		}
	}
	if len(styles) == 0 {
		return models.DanceClass{}, fmt.Errorf("style must not be empty")
	}
	at, err := ParseClassTime(r.DateTime, loc)
	if err != nil {
		return models.DanceClass{}, err
	}
	status := models.ClassStatus(strings.ToLower(strings.TrimSpace(r.Status)))
	if status == "" {
		status = models.ClassStatusActive
	}
	if !status.Valid() {
		return models.DanceClass{}, fmt.Errorf("unknown status %q", r.Status)
	}
	if r.Price != nil && *r.Price < 0 {
		return models.DanceClass{}, fmt.Errorf("price must not be negative")
	}
	return models.DanceClass{
		ID:                    r.ID,
		Title:                 r.Title,
		ChoreographerID:       r.ChoreographerID,
		ChoreographerName:     r.ChoreographerName,
		ChoreographerUsername: r.ChoreographerUsername,
		Style:                 styles,
		DateTime:              at,
		Location:              r.Location,
		Description:           r.Description,
		Price:                 r.Price,
		RSVPLink:              blankToNil(r.RSVPLink),
		Flyer:                 blankToNil(r.Flyer),
		VideoLink:             blankToNil(r.VideoLink),
		Status:                status,
	}, nil
}

func (r userRecord) toModel() (models.User, error) {
	if strings.TrimSpace(r.ID) == "" {
		return models.User{}, fmt.Errorf("id is required")
	}
	role := models.UserRole(strings.ToLower(strings.TrimSpace(r.Role)))
	if role == "" {
		role = models.RoleDancer
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("unknown role %q", r.Role)
	}
	user := models.User{
		ID:            r.ID,
		Name:          r.Name,
		Username:      strings.TrimSpace(r.Username),
		Role:          role,
		Pronouns:      blankToNil(r.Pronouns),
		Bio:           blankToNil(r.Bio),
		ProfilePhoto:  blankToNil(r.ProfilePhoto),
		Website:       blankToNil(r.Website),
		FeaturedVideo: blankToNil(r.FeaturedVideo),
		Achievements:  r.Achievements,
		TeachingStyle: blankToNil(r.TeachingStyle),
	}
	if r.SocialLinks != nil {
		user.SocialLinks = &models.SocialLinks{
			Instagram: blankToNil(r.SocialLinks.Instagram),
			TikTok:    blankToNil(r.SocialLinks.TikTok),
			YouTube:   blankToNil(r.SocialLinks.YouTube),
			Website:   blankToNil(r.SocialLinks.Website),
		}
	}
	return user, nil
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
