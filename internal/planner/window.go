// Package planner derives the calendar and filter views from a task collection.
// Everything here is pure and synchronous.
package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/smartplanner/internal/models"
)

// DaysPerWeek is the length of a displayed calendar week.
const DaysPerWeek = 7

// Window is an ordered sequence of calendar dates, one per displayed column.
type Window []models.Date

// WeekOf returns the 7-day window containing selected, starting on the most
// recent weekStart on or before it.
func WeekOf(selected models.Date, weekStart time.Weekday) Window {
	offset := (int(selected.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	start := selected.AddDays(-offset)
	w := make(Window, DaysPerWeek)
	for i := range w {
		w[i] = start.AddDays(i)
	}
	return w
}

// Start returns the first date of the window.
func (w Window) Start() models.Date {
	if len(w) == 0 {
		return models.Date{}
	}
	return w[0]
}

// End returns the last date of the window.
func (w Window) End() models.Date {
	if len(w) == 0 {
		return models.Date{}
	}
	return w[len(w)-1]
}

// Index returns the position of d in the window, or -1.
func (w Window) Index(d models.Date) int {
	for i, day := range w {
		if day.SameDay(d) {
			return i
		}
	}
	return -1
}

// Contains reports whether d falls on one of the window's dates.
func (w Window) Contains(d models.Date) bool {
	return w.Index(d) >= 0
}

// Shift returns the window moved by n whole windows.
func (w Window) Shift(n int) Window {
	out := make(Window, len(w))
	for i, day := range w {
		out[i] = day.AddDays(n * len(w))
	}
	return out
}

// Next returns the following window.
func (w Window) Next() Window { return w.Shift(1) }

// Prev returns the preceding window.
func (w Window) Prev() Window { return w.Shift(-1) }

// ParseWeekStart reads "monday" or "sunday" (any case).
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "mon":
		return time.Monday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	}
	return time.Monday, fmt.Errorf("week start must be monday or sunday, got %q", s)
}
