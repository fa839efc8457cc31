package models

import (
	"fmt"
	"strings"
	"time"
)

// Workshop levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// DateLayout is the layout of both ends of a workshop date range.
const DateLayout = "2006-01-02"

const dateRangeSep = " to "

// Workshop is a scheduled teaching session.
type Workshop struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	DateRange   string   `json:"dateRange"`
	Type        string   `json:"type"`
	Level       string   `json:"level"`
	Skills      []string `json:"skills"`
	Price       string   `json:"price"`
	Seats       int      `json:"seats"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
}

// WorkshopCategory groups workshops by type for the filter bar.
type WorkshopCategory struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	ColorTo string `json:"colorTo,omitempty"`
}

// WorkshopData is the shape of workshops.json.
type WorkshopData struct {
	Categories []WorkshopCategory `json:"categories"`
	Workshops  []Workshop         `json:"workshops"`
}

// ValidLevel reports whether level is one of the known workshop levels.
func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ParseDateRange parses "YYYY-MM-DD to YYYY-MM-DD". Dates are UTC midnight.
func ParseDateRange(s string) (start, end time.Time, err error) {
	from, to, ok := strings.Cut(s, dateRangeSep)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q: missing %q separator", s, strings.TrimSpace(dateRangeSep))
	}
	start, err = time.Parse(DateLayout, strings.TrimSpace(from))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q: start: %w", s, err)
	}
	end, err = time.Parse(DateLayout, strings.TrimSpace(to))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q: end: %w", s, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q: end before start", s)
	}
	return start, end, nil
}

// Start returns the first day of the workshop. ok is false when the date
// range cannot be parsed.
func (w *Workshop) Start() (time.Time, bool) {
	start, _, err := ParseDateRange(w.DateRange)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

// HasSkill reports whether the workshop teaches skill (case-insensitive).
func (w *Workshop) HasSkill(skill string) bool {
	for _, s := range w.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}
