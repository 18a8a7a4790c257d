package trip

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	appLog "itingen/internal/log"
)

// DefaultTimezone is the fixed fallback zone used when a trip document has
// no destinations or its first destination carries no timezone.
const DefaultTimezone = "UTC"

// DecodeDocument decodes a trip export from r.
//
// A document that is not valid JSON at all cannot yield an itinerary, so the
// error here is fatal (unlike per-record field errors, which are skipped
// later with a warning).
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &DataFormatError{Field: "(document)", Err: err}
	}
	return &doc, nil
}

// LoadDocument decodes a trip export from a file on disk.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeDocument(f)
}

// Timezone returns the IANA timezone identifier of the trip's first
// destination, or DefaultTimezone when the destinations list is empty or
// the field is blank. It never fails.
func Timezone(doc *Document) string {
	return TimezoneIn(doc, DefaultTimezone)
}

// TimezoneIn is Timezone with a caller-supplied fallback zone, the one a
// deployment configures for destination-less documents. An empty or blank
// fallback means DefaultTimezone.
func TimezoneIn(doc *Document, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = DefaultTimezone
	}
	if doc == nil || len(doc.Trip.Destinations) == 0 {
		return fallback
	}
	tz := strings.TrimSpace(doc.Trip.Destinations[0].Timezone)
	if tz == "" {
		return fallback
	}
	return tz
}

// Location resolves the trip's display timezone to a *time.Location.
//
// An unresolvable or malformed timezone string degrades to UTC rather than
// failing: a broken render is worse than an off-by-hours display for a
// secondary destination.
func Location(doc *Document) *time.Location {
	return LocationIn(doc, DefaultTimezone)
}

// LocationIn resolves like Location but prefers the caller-supplied fallback
// zone when the document names none. A malformed fallback degrades to UTC
// the same way a malformed destination zone does.
func LocationIn(doc *Document, fallback string) *time.Location {
	name := TimezoneIn(doc, fallback)
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Warn("unresolvable trip timezone; falling back to UTC", "timezone", name)
		return time.UTC
	}
	return loc
}

// instantLayouts are the accepted ISO-8601 shapes, tried in order. Layouts
// without an offset are interpreted as UTC per the export format.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp into an instant. Timestamps
// without an embedded offset are assumed UTC. fieldPath names the offending
// field in the returned *DataFormatError.
func ParseInstant(value, fieldPath string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, &DataFormatError{Field: fieldPath, Err: errors.New("empty timestamp")}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range instantLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &DataFormatError{
		Field: fieldPath,
		Err:   errors.New("unrecognized ISO-8601 timestamp: " + s),
	}
}

// ParseTripDates parses the trip's start and end instants. Failure here is
// fatal for the pipeline: without them no coherent day sequence exists.
func ParseTripDates(doc *Document) (start, end time.Time, err error) {
	start, err = ParseInstant(doc.Trip.StartDate, "trip.startDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = ParseInstant(doc.Trip.EndDate, "trip.endDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
