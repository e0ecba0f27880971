package models

// ClassView is a class annotated with the viewer's flags.
type ClassView struct {
	DanceClass
	IsInterested             bool `json:"is_interested"`
	IsAttending              bool `json:"is_attending"`
	IsFavoritedChoreographer bool `json:"is_favorited_choreographer"`
	IsOwner                  bool `json:"is_owner"`
	ActionsDisabled          bool `json:"actions_disabled"`
	IsPast                   bool `json:"is_past"`
}

// DayGroup buckets classes that start on the same local calendar day.
type DayGroup struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Items []DanceClass `json:"-"`
}

// DayGroupView is a DayGroup after annotation.
type DayGroupView struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Items []ClassView `json:"items"`
}

// ScheduleView is the grouped, annotated schedule.
type ScheduleView struct {
	Groups   []DayGroupView `json:"groups"`
	Total    int            `json:"total"`
	Timezone string         `json:"timezone"`
}

// ScheduleQuery carries the search text, filter and viewer context.
type ScheduleQuery struct {
	Query        string
	Filter       FilterSpec
	UpcomingOnly bool
	Timezone     string
}

// ChoreographerOption is one entry of the choreographer facet.
type ChoreographerOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterOptions lists the distinct facet values present in the catalog.
type FilterOptions struct {
	Styles         []string              `json:"styles"`
	Choreographers []ChoreographerOption `json:"choreographers"`
	Studios        []string              `json:"studios"`
}
