package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceSetToggle(t *testing.T) {
	prefs := NewPreferenceSet("u1")

	assert.True(t, prefs.Toggle(PreferenceInterested, "c2"))
	assert.True(t, prefs.Toggle(PreferenceInterested, "c1"))
	assert.Equal(t, []string{"c1", "c2"}, prefs.InterestedClasses)
	assert.True(t, prefs.Has(PreferenceInterested, "c1"))
	assert.False(t, prefs.Has(PreferenceAttending, "c1"))

	assert.False(t, prefs.Toggle(PreferenceInterested, "c1"))
	assert.Equal(t, []string{"c2"}, prefs.InterestedClasses)
	assert.False(t, prefs.Has(PreferenceInterested, "c1"))
}

func TestPreferenceSetToggleTwiceRestores(t *testing.T) {
	prefs := NewPreferenceSet("u1")
	prefs.Toggle(PreferenceFavorite, "ch-1")
	before := prefs.Clone()

	prefs.Toggle(PreferenceFavorite, "ch-2")
	prefs.Toggle(PreferenceFavorite, "ch-2")
	assert.Equal(t, before, prefs)
}

func TestPreferenceSetToggleDoesNotAliasClone(t *testing.T) {
	prefs := NewPreferenceSet("u1")
	prefs.Toggle(PreferenceAttending, "a")
	prefs.Toggle(PreferenceAttending, "b")
	snapshot := prefs.Clone()

	prefs.Toggle(PreferenceAttending, "a")
	assert.Equal(t, []string{"a", "b"}, snapshot.AttendingClasses)
}

func TestPreferenceSetUnknownKindAndEmptyID(t *testing.T) {
	prefs := NewPreferenceSet("u1")
	assert.False(t, prefs.Toggle(PreferenceKind("bogus"), "c1"))
	assert.False(t, prefs.Toggle(PreferenceInterested, ""))
	assert.False(t, prefs.Has(PreferenceKind("bogus"), "c1"))
}

func TestPreferenceSetNormalize(t *testing.T) {
	var prefs PreferenceSet
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u1","interested_classes":["b","a","b",""],"attending_classes":null}`), &prefs))
	prefs.Normalize()
	assert.Equal(t, []string{"a", "b"}, prefs.InterestedClasses)
	assert.Equal(t, []string{}, prefs.AttendingClasses)
	assert.Equal(t, []string{}, prefs.FavoritedChoreographers)
}

func TestDateRangeContainsInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)
	r := DateRange{Start: start, End: end}
	assert.True(t, r.Contains(start))
	assert.True(t, r.Contains(end))
	assert.False(t, r.Contains(end.Add(time.Second)))
	assert.False(t, r.Contains(start.Add(-time.Second)))
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	assert.Equal(t, ViewList, settings.PreferredView)
	assert.True(t, settings.Filters.IsEmpty())
}
