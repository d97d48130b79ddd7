package report

import (
	"mangrovewatch/backend/api"
	"mangrovewatch/backend/geo"
	"mangrovewatch/backend/photo"
)

type Status int

const (
	Idle Status = iota
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Draft is the in-progress form. Location is free text: it is overwritten
// whenever coordinates are accepted but manual edits are never reconciled
// with GPS.
type Draft struct {
	Description string
	Location    string
	Severity    api.Severity
	Photo       photo.Photo
	Preview     []byte
	GPS         *api.GPSCoordinates
	GPSSource   geo.Source
}

func newDraft() Draft {
	return Draft{Severity: api.DefaultSeverity}
}

// State is a snapshot of the workflow.
type State struct {
	Status Status
	// Message is the last user facing error, cleared on success and reset.
	Message string
	Draft   Draft
	// Report is set once the submission succeeded.
	Report *api.Report
}
