package models

import "time"

// Selection is the set of user constraints applied to one pipeline run.
// Date bounds are inclusive calendar days.
type Selection struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Categories []string  `json:"categories"`
	Segments   []string  `json:"segments"`
	Regions    []string  `json:"regions"`
}

// Domain is the legal range of every filter widget, observed from the dataset.
type Domain struct {
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`
	Categories []string  `json:"categories"`
	Segments   []string  `json:"segments"`
	Regions    []string  `json:"regions"`
	ShipModes  []string  `json:"ship_modes"`
}
