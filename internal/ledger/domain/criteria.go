package domain

import "strings"

// All is the wildcard value accepted by every enum criterion.
const All = "ALL"

// Period selects a due-date window relative to the as-of date.
type Period string

const (
	PeriodAll       Period = All
	PeriodThisWeek  Period = "THIS_WEEK"
	PeriodThisMonth Period = "THIS_MONTH"
)

// ParsePeriod maps user input to a Period. Unknown values degrade to PeriodAll.
func ParsePeriod(raw string) Period {
	switch p := Period(strings.ToUpper(strings.TrimSpace(raw))); p {
	case PeriodThisWeek, PeriodThisMonth:
		return p
	default:
		return PeriodAll
	}
}

// Criteria is the immutable filter configuration of one query. Zero values mean
// "no constraint".
type Criteria struct {
	SearchText string
	Status     Status
	Category   string
	Direction  Direction
	Period     Period
}

// NewCriteria builds Criteria from raw UI values. Unknown enum values and "ALL"
// become "no constraint" instead of an error.
func NewCriteria(search, status, category, direction, period string) Criteria {
	c := Criteria{
		SearchText: strings.TrimSpace(search),
		Period:     ParsePeriod(period),
	}
	if parsed, ok := ParseStatus(status); ok {
		c.Status = parsed
	}
	if parsed, ok := ParseDirection(direction); ok {
		c.Direction = parsed
	}
	category = strings.TrimSpace(category)
	if !strings.EqualFold(category, All) {
		c.Category = category
	}
	return c
}
