package service

import (
	"sort"
	"time"

	"github.com/noah-isme/dance-class-api/internal/models"
)

const (
	dayKeyLayout   = "2006-01-02"
	dayLabelLayout = "Monday, January 2, 2006"
)

// GroupByDay buckets classes by their local calendar day in loc. Groups are
// ordered by date and items within a group by start time, then id.
func GroupByDay(classes []models.DanceClass, now time.Time, loc *time.Location) []models.DayGroup {
	if loc == nil {
		loc = time.Local
	}
	sorted := SortByDateTime(classes)

	today := now.In(loc).Format(dayKeyLayout)
	tomorrow := now.In(loc).AddDate(0, 0, 1).Format(dayKeyLayout)

	groups := make([]models.DayGroup, 0)
	index := make(map[string]int)
	for _, class := range sorted {
		local := class.DateTime.In(loc)
		key := local.Format(dayKeyLayout)
		i, ok := index[key]
		if !ok {
			label := local.Format(dayLabelLayout)
			switch key {
			case today:
				label = "Today"
			case tomorrow:
				label = "Tomorrow"
			}
			groups = append(groups, models.DayGroup{Key: key, Label: label})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Items = append(groups[i].Items, class)
	}
	return groups
}

// SortByDateTime returns a copy of classes ordered by start instant, ties broken by id.
func SortByDateTime(classes []models.DanceClass) []models.DanceClass {
	out := append([]models.DanceClass(nil), classes...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.Before(out[j].DateTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
