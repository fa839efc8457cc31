package gallery

import (
	"fmt"
	"slices"
	"time"

	"github.com/starford/designa/internal/apperr"
	"github.com/starford/designa/internal/models"
)

// WorkshopFilter narrows the workshop listing. Empty fields and "all"
// mean no constraint. When After is set only workshops starting on a later
// calendar day are kept.
type WorkshopFilter struct {
	Category string
	Level    string
	Skill    string
	After    time.Time
}

func activeWorkshop(v string) bool {
	return v != "" && v != "all" && v != All
}

// FilterWorkshops returns the workshops matching f in list order.
func FilterWorkshops(list []models.Workshop, f WorkshopFilter) []models.Workshop {
	out := make([]models.Workshop, 0, len(list))
	for i := range list {
		w := &list[i]
		if activeWorkshop(f.Category) && w.Type != f.Category {
			continue
		}
		if activeWorkshop(f.Level) && w.Level != f.Level {
			continue
		}
		if activeWorkshop(f.Skill) && !w.HasSkill(f.Skill) {
			continue
		}
		if !f.After.IsZero() && !startsAfter(w, f.After) {
			continue
		}
		out = append(out, *w)
	}
	return out
}

// UpcomingWorkshops returns up to limit workshops starting after the
// calendar day of now, earliest first. Unparseable date ranges are skipped.
func UpcomingWorkshops(list []models.Workshop, now time.Time, limit int) []models.Workshop {
	out := FilterWorkshops(list, WorkshopFilter{After: now})
	slices.SortStableFunc(out, func(a, b models.Workshop) int {
		as, _ := a.Start()
		bs, _ := b.Start()
		return as.Compare(bs)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FindWorkshop returns the workshop with slug, or apperr.ErrNotFound.
func FindWorkshop(list []models.Workshop, slug string) (models.Workshop, error) {
	for _, w := range list {
		if w.Slug == slug {
			return w, nil
		}
	}
	return models.Workshop{}, fmt.Errorf("workshop %q: %w", slug, apperr.ErrNotFound)
}

// startsAfter compares at date granularity: fixture dates carry no time or
// zone, so "today" is the calendar day of now in its own location.
func startsAfter(w *models.Workshop, now time.Time) bool {
	start, ok := w.Start()
	if !ok {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start.After(today)
}
