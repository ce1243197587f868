package dataset

import (
	"slices"

	"superstore-dashboard/internal/models"
)

// Dataset is a loaded, read-only set of order records with its filter domain.
// Callers must not modify the slice returned by Records.
type Dataset struct {
	records []models.OrderRecord
	domain  models.Domain
}

func New(records []models.OrderRecord) *Dataset {
	return &Dataset{
		records: records,
		domain:  ScanDomain(records),
	}
}

func (d *Dataset) Records() []models.OrderRecord {
	return d.records
}

func (d *Dataset) Len() int {
	return len(d.records)
}

func (d *Dataset) Domain() models.Domain {
	return d.domain
}

// ScanDomain collects the date span and the sorted distinct values of every
// categorical filter dimension.
func ScanDomain(records []models.OrderRecord) models.Domain {
	var dom models.Domain
	if len(records) == 0 {
		return dom
	}

	categories := make(map[string]struct{})
	segments := make(map[string]struct{})
	regions := make(map[string]struct{})
	shipModes := make(map[string]struct{})

	dom.MinDate = records[0].OrderDate
	dom.MaxDate = records[0].OrderDate

	for _, r := range records {
		if r.OrderDate.Before(dom.MinDate) {
			dom.MinDate = r.OrderDate
		}
		if r.OrderDate.After(dom.MaxDate) {
			dom.MaxDate = r.OrderDate
		}
		categories[r.Category] = struct{}{}
		segments[r.Segment] = struct{}{}
		regions[r.Region] = struct{}{}
		shipModes[r.ShipMode] = struct{}{}
	}

	dom.Categories = sortedKeys(categories)
	dom.Segments = sortedKeys(segments)
	dom.Regions = sortedKeys(regions)
	dom.ShipModes = sortedKeys(shipModes)
	return dom
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
