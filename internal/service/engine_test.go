package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-class-api/internal/models"
)

func newClass(id string, at time.Time, styles ...string) models.DanceClass {
	if len(styles) == 0 {
		styles = []string{"Hip Hop"}
	}
	return models.DanceClass{
		ID:                id,
		Title:             "Class " + id,
		ChoreographerID:   "choreo-1",
		ChoreographerName: "Alex Kim",
		Style:             styles,
		DateTime:          at,
		Location:          "Millennium Dance Complex - Studio A",
		Description:       "Grooves and foundations",
		Status:            models.ClassStatusActive,
	}
}

func ids(classes []models.DanceClass) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		out = append(out, c.ID)
	}
	return out
}

func TestGroupByDayTodayTomorrow(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, loc)
	classes := []models.DanceClass{
		newClass("c1", time.Date(2024, 6, 1, 18, 0, 0, 0, loc)),
		newClass("c2", time.Date(2024, 6, 1, 9, 0, 0, 0, loc)),
		newClass("c3", time.Date(2024, 6, 2, 10, 0, 0, 0, loc)),
	}

	groups := GroupByDay(classes, now, loc)
	require.Len(t, groups, 2)
	assert.Equal(t, "Today", groups[0].Label)
	assert.Equal(t, "2024-06-01", groups[0].Key)
	assert.Equal(t, []string{"c2", "c1"}, ids(groups[0].Items))
	assert.Equal(t, "Tomorrow", groups[1].Label)
	assert.Equal(t, []string{"c3"}, ids(groups[1].Items))
}

func TestGroupByDayLongLabelAndLocalDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, loc)

	// 2024-06-05T02:00Z is still June 4th in Los Angeles.
	late := newClass("late", time.Date(2024, 6, 5, 2, 0, 0, 0, time.UTC))
	groups := GroupByDay([]models.DanceClass{late}, now, loc)
	require.Len(t, groups, 1)
	assert.Equal(t, "2024-06-04", groups[0].Key)
	assert.Equal(t, "Tuesday, June 4, 2024", groups[0].Label)

	utcGroups := GroupByDay([]models.DanceClass{late}, now, time.UTC)
	assert.Equal(t, "2024-06-05", utcGroups[0].Key)
}

func TestGroupByDayTiesAndCoverage(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	input := make([]models.DanceClass, 0)
	for i := 0; i < 30; i++ {
		at := base.Add(time.Duration((i*7)%5) * 24 * time.Hour).Add(time.Duration(i%3) * time.Hour)
		input = append(input, newClass(fmt.Sprintf("c%02d", 29-i), at))
	}

	groups := GroupByDay(input, now, loc)
	seen := make(map[string]int)
	for gi, group := range groups {
		if gi > 0 {
			assert.Less(t, groups[gi-1].Key, group.Key)
		}
		for i, item := range group.Items {
			seen[item.ID]++
			assert.Equal(t, group.Key, item.DateTime.In(loc).Format("2006-01-02"))
			if i > 0 {
				prev := group.Items[i-1]
				assert.False(t, item.DateTime.Before(prev.DateTime))
				if item.DateTime.Equal(prev.DateTime) {
					assert.Less(t, prev.ID, item.ID)
				}
			}
		}
	}
	require.Len(t, seen, len(input))
	for id, count := range seen {
		assert.Equal(t, 1, count, id)
	}
}

func TestGroupByDayLabelDeterminism(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 6, 1, 23, 59, 0, 0, loc)
	a := GroupByDay([]models.DanceClass{newClass("a", time.Date(2024, 6, 9, 8, 0, 0, 0, loc))}, now, loc)
	b := GroupByDay([]models.DanceClass{
		newClass("b", time.Date(2024, 6, 9, 20, 0, 0, 0, loc)),
		newClass("c", time.Date(2024, 6, 9, 7, 0, 0, 0, loc)),
	}, now, loc)
	assert.Equal(t, a[0].Label, b[0].Label)
	assert.Empty(t, GroupByDay(nil, now, loc))
}

func TestMatchesFilterStyles(t *testing.T) {
	at := time.Now()
	jazz := newClass("jazz", at, "Jazz", "Tap")
	hiphop := newClass("hiphop", at, "Hip Hop")

	got := FilterClasses([]models.DanceClass{jazz, hiphop}, "", models.FilterSpec{
		Styles: []string{"Jazz"}, Choreographers: []string{}, Studios: []string{},
	})
	assert.Equal(t, []string{"jazz"}, ids(got))

	got = FilterClasses([]models.DanceClass{jazz, hiphop}, "", models.FilterSpec{Styles: []string{"Jazz", "Hip Hop"}})
	assert.Equal(t, []string{"jazz", "hiphop"}, ids(got))

	assert.False(t, MatchesFilter(jazz, "", models.FilterSpec{Styles: []string{"jazz"}}))
}

func TestMatchesFilterQueryCaseInsensitive(t *testing.T) {
	salsa := newClass("salsa", time.Now(), "Salsa")
	salsa.Title = "Partnerwork"
	salsa.Description = "Turns"

	assert.True(t, MatchesFilter(salsa, "salsa", models.FilterSpec{}))
	assert.True(t, MatchesFilter(salsa, "  SALSA ", models.FilterSpec{}))
	assert.True(t, MatchesFilter(salsa, "studio a", models.FilterSpec{}))
	assert.True(t, MatchesFilter(salsa, "alex", models.FilterSpec{}))
	assert.True(t, MatchesFilter(salsa, "   ", models.FilterSpec{}))
	assert.False(t, MatchesFilter(salsa, "ballet", models.FilterSpec{}))
}

func TestMatchesFilterChoreographersStudiosDates(t *testing.T) {
	at := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	class := newClass("c1", at)

	assert.True(t, MatchesFilter(class, "", models.FilterSpec{Choreographers: []string{"choreo-1"}}))
	assert.True(t, MatchesFilter(class, "", models.FilterSpec{Choreographers: []string{"Alex Kim"}}))
	assert.False(t, MatchesFilter(class, "", models.FilterSpec{Choreographers: []string{"choreo-2", ""}}))

	assert.True(t, MatchesFilter(class, "", models.FilterSpec{Studios: []string{"studio a"}}))
	assert.False(t, MatchesFilter(class, "", models.FilterSpec{Studios: []string{"Studio B"}}))

	inclusive := &models.DateRange{Start: at, End: at}
	assert.True(t, MatchesFilter(class, "", models.FilterSpec{DateRange: inclusive}))
	before := &models.DateRange{Start: at.Add(time.Minute), End: at.Add(time.Hour)}
	assert.False(t, MatchesFilter(class, "", models.FilterSpec{DateRange: before}))

	assert.False(t, MatchesFilter(class, "", models.FilterSpec{
		Styles:         []string{"Hip Hop"},
		Choreographers: []string{"choreo-1"},
		Studios:        []string{"Studio B"},
	}))
}

func TestEmptyFilterIsMaximallyPermissive(t *testing.T) {
	at := time.Now()
	classes := []models.DanceClass{
		newClass("a", at, "Jazz"),
		newClass("b", at, "Hip Hop", "House"),
		newClass("c", at, "Ballet"),
	}
	all := FilterClasses(classes, "", models.FilterSpec{})
	assert.Len(t, all, len(classes))

	for _, styles := range [][]string{{"Jazz"}, {"House", "Ballet"}, {"Nope"}} {
		subset := FilterClasses(classes, "", models.FilterSpec{Styles: styles})
		assert.LessOrEqual(t, len(subset), len(all))
		for _, c := range subset {
			assert.Contains(t, ids(all), c.ID)
		}
	}
}

func TestCancelledClassesStayInGroupsButNotUpcoming(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	cancelled := newClass("cancelled", now.Add(2*time.Hour))
	cancelled.Status = models.ClassStatusCancelled
	active := newClass("active", now.Add(3*time.Hour))

	filtered := FilterClasses([]models.DanceClass{cancelled, active}, "", models.FilterSpec{})
	groups := GroupByDay(filtered, now, time.UTC)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"cancelled", "active"}, ids(groups[0].Items))

	upcoming := UpcomingClasses([]models.DanceClass{cancelled, active}, now)
	assert.Equal(t, []string{"active"}, ids(upcoming))
}
