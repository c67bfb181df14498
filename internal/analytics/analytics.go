// Package analytics derives aggregate views from committed session records.
// Every function is pure: the full record list goes in, a value comes out,
// and nothing is cached. All date math is calendar-date math — inputs and
// the "today" reference must share the YYYY-MM-DD normalization from the
// models package or grouping will be off by one.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ramitgoyal/zensync/internal/models"
)

// Stats is the aggregate card set shown on the analytics view.
type Stats struct {
	TotalTimeMinutes  int `json:"totalTimeMinutes"`
	AvgSessionMinutes int `json:"avgSessionMinutes"`
	TotalSessions     int `json:"totalSessions"`
	LongestStreak     int `json:"longestStreak"`
}

// DayBucket is one day of the weekly series.
type DayBucket struct {
	Day          string  `json:"day"`  // Sun..Sat
	Date         string  `json:"date"` // YYYY-MM-DD
	Minutes      int     `json:"minutes"`
	Hours        float64 `json:"hours"` // rounded to 1 decimal
	SessionCount int     `json:"sessionCount"`
}

// GridDay is one cell of the 30-day intensity grid.
type GridDay struct {
	Date         string `json:"date"`
	DayNumber    int    `json:"dayNumber"`
	MonthName    string `json:"monthName"`
	Minutes      int    `json:"minutes"`
	SessionCount int    `json:"sessionCount"`
	Intensity    int    `json:"intensity"` // 0..4
}

// SubjectTotal is one row of the dashboard subject breakdown.
type SubjectTotal struct {
	Subject      string `json:"subject"`
	TotalSeconds int    `json:"totalSeconds"`
	SessionCount int    `json:"sessionCount"`
}

// Aggregate computes the stat cards. Averages floor to whole minutes, so a
// set of sub-minute sessions reports zero rather than rounding up.
func Aggregate(records []*models.SessionRecord) Stats {
	totalSeconds := 0
	for _, r := range records {
		totalSeconds += r.Duration
	}
	avgSeconds := 0
	if len(records) > 0 {
		avgSeconds = totalSeconds / len(records)
	}
	return Stats{
		TotalTimeMinutes:  totalSeconds / 60,
		AvgSessionMinutes: avgSeconds / 60,
		TotalSessions:     len(records),
		LongestStreak:     LongestStreak(records),
	}
}

// LongestStreak returns the best historical run of consecutive calendar
// days that have at least one record. It scans the distinct sorted dates,
// so record order and per-day volume are irrelevant. Empty input yields 0;
// any record yields at least 1.
func LongestStreak(records []*models.SessionRecord) int {
	dates := distinctDates(records)
	if len(dates) == 0 {
		return 0
	}

	current, max := 1, 1
	for i := 1; i < len(dates); i++ {
		if daysBetween(dates[i-1], dates[i]) == 1 {
			current++
			if current > max {
				max = current
			}
		} else {
			current = 1
		}
	}
	return max
}

// CurrentStreak returns the run of consecutive days with sessions ending at
// today. A day with no session yet does not break an otherwise unbroken
// run: when today is absent the anchor falls back to yesterday. This is a
// different operation from LongestStreak and the two must not be conflated.
func CurrentStreak(records []*models.SessionRecord, today time.Time) int {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[r.Date] = true
	}

	anchor := dateOnly(today)
	if !seen[anchor.Format(models.DateLayout)] {
		anchor = anchor.AddDate(0, 0, -1)
		if !seen[anchor.Format(models.DateLayout)] {
			return 0
		}
	}

	streak := 0
	for d := anchor; seen[d.Format(models.DateLayout)]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// WeeklySeries buckets records into the 7 days of the current Sunday-start
// week. Days are reported in order Sun..Sat regardless of where today falls.
func WeeklySeries(records []*models.SessionRecord, today time.Time) []DayBucket {
	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	today = dateOnly(today)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))

	buckets := make([]DayBucket, 7)
	for i := range buckets {
		day := weekStart.AddDate(0, 0, i)
		date := day.Format(models.DateLayout)
		seconds, count := sumForDate(records, date)
		buckets[i] = DayBucket{
			Day:          names[i],
			Date:         date,
			Minutes:      seconds / 60,
			Hours:        math.Round(float64(seconds)/3600*10) / 10,
			SessionCount: count,
		}
	}
	return buckets
}

// MonthlyGrid buckets records into the 30 calendar days ending at today,
// oldest first, classifying each day's total minutes into an intensity
// level for heatmap coloring.
func MonthlyGrid(records []*models.SessionRecord, today time.Time) []GridDay {
	today = dateOnly(today)

	grid := make([]GridDay, 0, 30)
	for i := 29; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		date := day.Format(models.DateLayout)
		seconds, count := sumForDate(records, date)
		minutes := seconds / 60
		grid = append(grid, GridDay{
			Date:         date,
			DayNumber:    day.Day(),
			MonthName:    day.Month().String()[:3],
			Minutes:      minutes,
			SessionCount: count,
			Intensity:    intensity(minutes),
		})
	}
	return grid
}

// TodayTime returns the accumulated seconds recorded for today.
func TodayTime(daily models.DailyTimeMap, today time.Time) int {
	return daily[dateOnly(today).Format(models.DateLayout)]
}

// SubjectBreakdown totals time per subject, most-studied first. Ties break
// alphabetically so output is deterministic.
func SubjectBreakdown(records []*models.SessionRecord) []SubjectTotal {
	totals := map[string]*SubjectTotal{}
	for _, r := range records {
		t, ok := totals[r.Subject]
		if !ok {
			t = &SubjectTotal{Subject: r.Subject}
			totals[r.Subject] = t
		}
		t.TotalSeconds += r.Duration
		t.SessionCount++
	}

	out := make([]SubjectTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSeconds != out[j].TotalSeconds {
			return out[i].TotalSeconds > out[j].TotalSeconds
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// intensity maps a day's minutes onto the 0..4 heatmap scale. Boundaries
// are half-open: exactly 30 minutes is level 3, exactly 60 is level 4.
func intensity(minutes int) int {
	switch {
	case minutes == 0:
		return 0
	case minutes < 15:
		return 1
	case minutes < 30:
		return 2
	case minutes < 60:
		return 3
	default:
		return 4
	}
}

func distinctDates(records []*models.SessionRecord) []time.Time {
	seen := map[string]bool{}
	var dates []time.Time
	for _, r := range records {
		if seen[r.Date] {
			continue
		}
		d, err := time.Parse(models.DateLayout, r.Date)
		if err != nil {
			continue
		}
		seen[r.Date] = true
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func sumForDate(records []*models.SessionRecord, date string) (seconds, count int) {
	for _, r := range records {
		if r.Date == date {
			seconds += r.Duration
			count++
		}
	}
	return seconds, count
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
