package trip

import "encoding/json"

// Document is the root of a trip export. It is immutable once decoded and
// owned exclusively by a single pipeline invocation.
//
// All date fields are kept as the raw ISO-8601 strings from the export;
// parsing them is a pipeline stage so that one malformed record can be
// skipped without aborting the batch.
type Document struct {
	Trip            Trip             `json:"trip"`
	Transportations []Transportation `json:"transportations"`
	Lodgings        []Lodging        `json:"lodgings"`
	Activities      []Activity       `json:"activities"`

	// Attachments pass through untouched; the pipeline never interprets them.
	Attachments []json.RawMessage `json:"attachments,omitempty"`
}

// Trip holds the top-level trip metadata.
type Trip struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	// Notes is raw HTML authored in the trip planner; the caller is
	// responsible for trusting or sanitizing the source.
	Notes string `json:"notes,omitempty"`

	Destinations []Destination     `json:"destinations"`
	Participants []json.RawMessage `json:"participants,omitempty"`
}

// Destination is one place visited on the trip. The first destination's
// timezone anchors the whole itinerary's local calendar.
type Destination struct {
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Cost is the per-record price sub-object. It passes through to the
// rendered footer untouched.
type Cost struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// Metadata is the opaque caller-defined key-value payload carried by every
// record. The core never interprets it beyond the optional "provider" key
// used in transport descriptions.
type Metadata map[string]any

// Provider returns metadata["provider"] when it is a non-empty string.
func (m Metadata) Provider() string {
	if m == nil {
		return ""
	}
	if s, ok := m["provider"].(string); ok {
		return s
	}
	return ""
}

// Transportation is a single travel leg.
type Transportation struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`

	Cost     Cost     `json:"cost,omitempty"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Lodging is a stay with a check-in and a check-out instant.
type Lodging struct {
	ID               string `json:"id,omitempty"`
	Type             string `json:"type,omitempty"`
	Name             string `json:"name"`
	Address          string `json:"address,omitempty"`
	ConfirmationCode string `json:"confirmationCode,omitempty"`

	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	Cost     Cost     `json:"cost,omitempty"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Activity is a point-in-time event with a single start instant.
type Activity struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Address          string `json:"address,omitempty"`
	ConfirmationCode string `json:"confirmationCode,omitempty"`

	StartDate string `json:"startDate"`

	Cost     Cost     `json:"cost,omitempty"`
	Metadata Metadata `json:"metadata,omitempty"`
}
