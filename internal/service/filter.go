package service

import (
	"strings"
	"time"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
)

// MatchesFilter reports whether class satisfies the free-text query and every
// populated facet of filter. Values within a facet are OR'ed; facets are AND'ed.
func MatchesFilter(class models.DanceClass, query string, filter models.FilterSpec) bool {
	return matchesQuery(class, query) &&
		matchesStyles(class, filter.Styles) &&
		matchesChoreographers(class, filter.Choreographers) &&
		matchesStudios(class, filter.Studios) &&
		matchesDateRange(class, filter.DateRange)
}

// FilterClasses returns the classes matching query and filter in input order.
func FilterClasses(classes []models.DanceClass, query string, filter models.FilterSpec) []models.DanceClass {
	out := make([]models.DanceClass, 0, len(classes))
	for _, class := range classes {
		if MatchesFilter(class, query, filter) {
			out = append(out, class)
		}
	}
	return out
}

func matchesQuery(class models.DanceClass, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{class.Title, class.Description, class.ChoreographerName, class.Location}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, style := range class.Style {
		if strings.Contains(strings.ToLower(style), q) {
			return true
		}
	}
	return false
}

func matchesStyles(class models.DanceClass, styles []string) bool {
	if len(styles) == 0 {
		return true
	}
	for _, want := range styles {
		for _, have := range class.Style {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Entries match the choreographer id, or the display name for filters saved by older clients.
func matchesChoreographers(class models.DanceClass, choreographers []string) bool {
	if len(choreographers) == 0 {
		return true
	}
	for _, entry := range choreographers {
		if entry == "" {
			continue
		}
		if entry == class.ChoreographerID || entry == class.ChoreographerName {
			return true
		}
	}
	return false
}

func matchesStudios(class models.DanceClass, studios []string) bool {
	if len(studios) == 0 {
		return true
	}
	location := strings.ToLower(class.Location)
	for _, studio := range studios {
		if strings.Contains(location, strings.ToLower(studio)) {
			return true
		}
	}
	return false
}

func matchesDateRange(class models.DanceClass, r *models.DateRange) bool {
	if r == nil {
		return true
	}
	return r.Contains(class.DateTime)
}

const filterDateLayout = "2006-01-02"

var openRangeEnd = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// BuildFilter turns raw facet values into a FilterSpec. start and end accept
// RFC 3339 or YYYY-MM-DD; a bare end date covers the whole day in loc. A
// missing bound leaves that side of the range open.
func BuildFilter(req dto.FilterRequest, loc *time.Location) (models.FilterSpec, error) {
	spec := models.FilterSpec{
		Styles:         cleanValues(req.Styles),
		Choreographers: cleanValues(req.Choreographers),
		Studios:        cleanValues(req.Studios),
	}
	if strings.TrimSpace(req.Start) == "" && strings.TrimSpace(req.End) == "" {
		return spec, nil
	}

	details := make(map[string]string)
	r := models.DateRange{End: openRangeEnd}
	if raw := strings.TrimSpace(req.Start); raw != "" {
		start, err := parseRangeBound(raw, loc, false)
		if err != nil {
			details["start"] = "must be RFC 3339 or YYYY-MM-DD"
		}
		r.Start = start
	}
	if raw := strings.TrimSpace(req.End); raw != "" {
		end, err := parseRangeBound(raw, loc, true)
		if err != nil {
			details["end"] = "must be RFC 3339 or YYYY-MM-DD"
		}
		r.End = end
	}
	if len(details) == 0 && r.End.Before(r.Start) {
		details["end"] = "must not be before start"
	}
	if len(details) > 0 {
		return models.FilterSpec{}, appErrors.WithDetails(appErrors.ErrValidation, "invalid date range", details)
	}
	spec.DateRange = &r
	return spec, nil
}

// FilterRequestFrom is the inverse of BuildFilter for echoing saved filters.
func FilterRequestFrom(spec models.FilterSpec) dto.FilterRequest {
	req := dto.FilterRequest{
		Styles:         nonNilStrings(spec.Styles),
		Choreographers: nonNilStrings(spec.Choreographers),
		Studios:        nonNilStrings(spec.Studios),
	}
	if spec.DateRange != nil {
		if !spec.DateRange.Start.IsZero() {
			req.Start = spec.DateRange.Start.Format(time.RFC3339)
		}
		if !spec.DateRange.End.Equal(openRangeEnd) {
			req.End = spec.DateRange.End.Format(time.RFC3339)
		}
	}
	return req
}

func parseRangeBound(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(filterDateLayout, raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

// cleanValues accepts repeated values and comma separated lists alike.
func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
