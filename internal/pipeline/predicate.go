// Package pipeline implements the filter and aggregate steps run on every
// dashboard interaction. All functions are pure: they read their inputs and
// return fresh values.
package pipeline

import (
	"time"

	"superstore-dashboard/internal/models"
)

// Predicate reports whether a record belongs to the filtered view.
type Predicate func(models.OrderRecord) bool

// DefaultSelection spans the whole domain, so filtering with it is the
// identity.
func DefaultSelection(dom models.Domain) models.Selection {
	return models.Selection{
		Start:      dom.MinDate,
		End:        dom.MaxDate,
		Categories: dom.Categories,
		Segments:   dom.Segments,
		Regions:    dom.Regions,
	}
}

// NewPredicate builds the conjunction of the date interval and the three set
// memberships. An empty set admits nothing.
func NewPredicate(sel models.Selection) Predicate {
	start := day(sel.Start)
	end := day(sel.End)
	categories := toSet(sel.Categories)
	segments := toSet(sel.Segments)
	regions := toSet(sel.Regions)

	return func(r models.OrderRecord) bool {
		d := day(r.OrderDate)
		if d.Before(start) || d.After(end) {
			return false
		}
		if _, ok := categories[r.Category]; !ok {
			return false
		}
		if _, ok := segments[r.Segment]; !ok {
			return false
		}
		_, ok := regions[r.Region]
		return ok
	}
}

// Filter returns the matching records in their original order. The input is
// never modified.
func Filter(records []models.OrderRecord, match Predicate) []models.OrderRecord {
	out := make([]models.OrderRecord, 0, len(records))
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// day truncates to the calendar day in t's own location.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
