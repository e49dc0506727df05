// Package daterange converts dashboard timeline keywords into inclusive
// creation-time bounds.
package daterange

import (
	"time"

	"leadportal_backend/platform/apperr"
)

// Timeline selects a reporting window.
type Timeline string

const (
	Today     Timeline = "today"
	ThisWeek  Timeline = "this-week"
	ThisMonth Timeline = "this-month"
	ThisYear  Timeline = "this-year"
	Custom    Timeline = "custom"
)

// Valid reports whether t is a known keyword.
func (t Timeline) Valid() bool {
	switch t {
	case Today, ThisWeek, ThisMonth, ThisYear, Custom:
		return true
	}
	return false
}

const endOfDayNanos = 999_000_000

// Range is an inclusive interval. A nil bound is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Unconstrained reports whether the range matches every time.
func (r Range) Unconstrained() bool {
	return r.From == nil && r.To == nil
}

// Builder evaluates timelines against a clock in a fixed location.
type Builder struct {
	loc *time.Location
	now func() time.Time
}

// NewBuilder creates a Builder. A nil now uses time.Now.
func NewBuilder(loc *time.Location, now func() time.Time) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Builder{loc: loc, now: now}
}

// Location returns the reporting location.
func (b *Builder) Location() *time.Location { return b.loc }

// Now returns the current time in the reporting location.
func (b *Builder) Now() time.Time { return b.now().In(b.loc) }

// Build returns the range for timeline. Unknown keywords and a custom timeline
// missing either bound yield an unconstrained range.
func (b *Builder) Build(timeline Timeline, start, end *time.Time) Range {
	now := b.Now()
	switch timeline {
	case Today:
		return bounded(startOfDay(now), endOfDay(now))
	case ThisWeek:
		monday := startOfDay(now).AddDate(0, 0, -daysSinceMonday(now))
		return bounded(monday, endOfDay(monday.AddDate(0, 0, 6)))
	case ThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, b.loc)
		return bounded(first, now)
	case ThisYear:
		return bounded(
			time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, b.loc),
			time.Date(now.Year(), time.December, 31, 23, 59, 59, endOfDayNanos, b.loc),
		)
	case Custom:
		if start == nil || end == nil {
			return Range{}
		}
		return bounded(startOfDay(start.In(b.loc)), endOfDay(end.In(b.loc)))
	}
	return Range{}
}

// BuildForTrend is Build for bucketed reports, which need a strategy and
// therefore a known keyword with concrete bounds.
func (b *Builder) BuildForTrend(timeline Timeline, start, end *time.Time) (Range, error) {
	if !timeline.Valid() {
		return Range{}, apperr.Validation("unknown timeline").WithDetails(map[string]string{"timeline": string(timeline)})
	}
	if timeline == Custom && (start == nil || end == nil) {
		return Range{}, apperr.Validation("custom timeline requires start and end dates")
	}
	return b.Build(timeline, start, end), nil
}

func bounded(from, to time.Time) Range {
	return Range{From: &from, To: &to}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, endOfDayNanos, t.Location())
}

// daysSinceMonday treats Sunday as the last day of the week.
func daysSinceMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
