package models

import (
	"sort"
	"time"
)

// PreferenceKind names one of the three membership sets.
type PreferenceKind string

const (
	PreferenceInterested PreferenceKind = "interested"
	PreferenceAttending  PreferenceKind = "attending"
	PreferenceFavorite   PreferenceKind = "favorite"
)

// PreferenceSet holds a user's class and choreographer memberships. Each
// list is kept sorted and free of duplicates.
type PreferenceSet struct {
	UserID                  string   `json:"user_id"`
	InterestedClasses       []string `json:"interested_classes"`
	AttendingClasses        []string `json:"attending_classes"`
	FavoritedChoreographers []string `json:"favorited_choreographers"`
}

// NewPreferenceSet returns an empty set for userID.
func NewPreferenceSet(userID string) PreferenceSet {
	return PreferenceSet{
		UserID:                  userID,
		InterestedClasses:       []string{},
		AttendingClasses:        []string{},
		FavoritedChoreographers: []string{},
	}
}

// Normalize sorts and deduplicates every list, dropping empty ids.
func (p *PreferenceSet) Normalize() {
	p.InterestedClasses = normalizeIDs(p.InterestedClasses)
	p.AttendingClasses = normalizeIDs(p.AttendingClasses)
	p.FavoritedChoreographers = normalizeIDs(p.FavoritedChoreographers)
}

// Has reports membership of id in the kind's set.
func (p PreferenceSet) Has(kind PreferenceKind, id string) bool {
	list := p.list(kind)
	if list == nil {
		return false
	}
	i := sort.SearchStrings(*list, id)
	return i < len(*list) && (*list)[i] == id
}

// Toggle flips membership and returns the new state.
func (p *PreferenceSet) Toggle(kind PreferenceKind, id string) bool {
	list := p.list(kind)
	if list == nil || id == "" {
		return false
	}
	i := sort.SearchStrings(*list, id)
	if i < len(*list) && (*list)[i] == id {
		*list = append((*list)[:i:i], (*list)[i+1:]...)
		return false
	}
	next := make([]string, 0, len(*list)+1)
	next = append(next, (*list)[:i]...)
	next = append(next, id)
	next = append(next, (*list)[i:]...)
	*list = next
	return true
}

// Clone returns a deep copy.
func (p PreferenceSet) Clone() PreferenceSet {
	return PreferenceSet{
		UserID:                  p.UserID,
		InterestedClasses:       append([]string{}, p.InterestedClasses...),
		AttendingClasses:        append([]string{}, p.AttendingClasses...),
		FavoritedChoreographers: append([]string{}, p.FavoritedChoreographers...),
	}
}

func (p *PreferenceSet) list(kind PreferenceKind) *[]string {
	switch kind {
	case PreferenceInterested:
		return &p.InterestedClasses
	case PreferenceAttending:
		return &p.AttendingClasses
	case PreferenceFavorite:
		return &p.FavoritedChoreographers
	default:
		return nil
	}
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DateRange is an inclusive instant range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterSpec selects classes: OR within a field, AND across fields.
// Choreographers entries match either a choreographer id or display name.
type FilterSpec struct {
	Styles         []string   `json:"styles"`
	Choreographers []string   `json:"choreographers"`
	Studios        []string   `json:"studios"`
	DateRange      *DateRange `json:"date_range,omitempty"`
}

// IsEmpty reports whether the filter is maximally permissive.
func (f FilterSpec) IsEmpty() bool {
	return len(f.Styles) == 0 && len(f.Choreographers) == 0 && len(f.Studios) == 0 && f.DateRange == nil
}

// ViewMode is the preferred schedule presentation.
type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewCalendar ViewMode = "calendar"
)

// AppSettings are per-session display preferences.
type AppSettings struct {
	PreferredView ViewMode   `json:"preferred_view"`
	Filters       FilterSpec `json:"filters"`
}

// DefaultSettings is returned when nothing is stored or the stored value is unreadable.
func DefaultSettings() AppSettings {
	return AppSettings{
		PreferredView: ViewList,
		Filters: FilterSpec{
			Styles:         []string{},
			Choreographers: []string{},
			Studios:        []string{},
		},
	}
}
