package aggregate

import (
	"fmt"
	"slices"
	"time"

	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/reporting/daterange"
	"leadportal_backend/platform/apperr"
)

// customMonthlyThresholdDays is the longest custom span still bucketed by week.
const customMonthlyThresholdDays = 30

// Point is one trend bar.
type Point struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Series is the trend chart.
type Series struct {
	HasData bool    `json:"isDataExist"`
	Points  []Point `json:"points"`
}

// bucketing maps a local timestamp to a sortable key and a key to its label.
type bucketing struct {
	key   func(t time.Time) int
	label func(key int) string
}

type strategyFactory func(rng daterange.Range) bucketing

var strategies = map[daterange.Timeline]strategyFactory{
	daterange.ThisMonth: weekOfMonth,
	daterange.ThisWeek:  func(daterange.Range) bucketing { return byDay },
	daterange.Today:     func(daterange.Range) bucketing { return byHour },
	daterange.ThisYear:  func(daterange.Range) bucketing { return byMonthName },
	daterange.Custom:    customSpan,
}

// Trend buckets hourly counts for timeline. Buckets are sorted by key and
// only buckets holding at least one lead appear.
func Trend(timeline daterange.Timeline, rng daterange.Range, hours []repository.HourCount) (Series, error) {
	factory, ok := strategies[timeline]
	if !ok {
		return Series{}, apperr.Validation("no bucketing strategy for timeline").WithDetails(map[string]string{"timeline": string(timeline)})
	}
	strategy := factory(rng)

	totals := make(map[int]int)
	for _, h := range hours {
		if h.Count > 0 {
			totals[strategy.key(h.Hour)] += h.Count
		}
	}

	keys := make([]int, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	points := make([]Point, 0, len(keys))
	for _, k := range keys {
		points = append(points, Point{Label: strategy.label(k), Count: totals[k]})
	}
	return Series{HasData: len(points) > 0, Points: points}, nil
}

var byDay = bucketing{
	key: func(t time.Time) int { return t.Year()*10000 + int(t.Month())*100 + t.Day() },
	label: func(k int) string {
		return fmt.Sprintf("%04d-%02d-%02d", k/10000, (k/100)%100, k%100)
	},
}

var byHour = bucketing{
	key:   func(t time.Time) int { return t.Hour() },
	label: func(h int) string { return fmt.Sprintf("%02d - %d:00", h, h+1) },
}

var byMonthName = bucketing{
	key:   func(t time.Time) int { return int(t.Month()) },
	label: func(m int) string { return time.Month(m).String() },
}

var byYearMonth = bucketing{
	key:   func(t time.Time) int { return t.Year()*100 + int(t.Month()) },
	label: func(k int) string { return fmt.Sprintf("Month %d", k%100) },
}

var byISOWeek = bucketing{
	key: func(t time.Time) int {
		year, week := t.ISOWeek()
		return year*100 + week
	},
	label: func(k int) string { return fmt.Sprintf("Week %d", k%100) },
}

// weekOfMonth numbers weeks from the Monday-started week holding the 1st.
func weekOfMonth(rng daterange.Range) bucketing {
	var anchor time.Time
	if rng.From != nil {
		anchor = mondayOf(*rng.From)
	}
	return bucketing{
		key: func(t time.Time) int {
			start := anchor
			if start.IsZero() {
				start = mondayOf(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()))
			}
			return civilDays(start, mondayOf(t)) / 7
		},
		label: func(k int) string { return fmt.Sprintf("Week %d", k+1) },
	}
}

func customSpan(rng daterange.Range) bucketing {
	if rng.From != nil && rng.To != nil && civilDays(*rng.From, *rng.To) > customMonthlyThresholdDays {
		return byYearMonth
	}
	return byISOWeek
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

// civilDays counts calendar days from a to b, ignoring DST shifts.
func civilDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
