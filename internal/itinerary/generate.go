package itinerary

import (
	"time"

	"itingen/internal/enrich"
	appLog "itingen/internal/log"
	"itingen/internal/trip"
)

// Result is the normalized itinerary for one pipeline invocation: the day
// buckets in destination-local time plus everything the context assembler
// and the exporters need.
type Result struct {
	Doc      *trip.Document
	Timezone string
	Location *time.Location

	Start time.Time
	End   time.Time

	Days *DaySet

	// Warnings lists every record-level problem encountered. The itinerary
	// is still usable; a best-effort render beats a total failure.
	Warnings []string
}

// Generate runs the full normalization pipeline over a decoded trip
// document: enrich → resolve timezone → parse trip dates → build days →
// format events → populate. Destination-less documents fall back to UTC.
//
// The only fatal input error is an unparsable trip start or end date; every
// record-level problem is collected into Result.Warnings instead.
func Generate(doc *trip.Document) (*Result, error) {
	return GenerateIn(doc, "", "")
}

// GenerateIn is Generate with two optional zone inputs: override is a manual
// display zone (the web form's timezone select) and fallback is the
// deployment's configured zone for documents that name no destination.
// An empty or unresolvable override defers to the document's own destination
// timezone; an empty fallback means UTC.
func GenerateIn(doc *trip.Document, override, fallback string) (*Result, error) {
	if override != "" {
		if loc, err := time.LoadLocation(override); err == nil {
			return generate(doc, loc, override)
		}
		appLog.Warn("unresolvable timezone override; using trip destination zone", "timezone", override)
	}
	return generate(doc, trip.LocationIn(doc, fallback), trip.TimezoneIn(doc, fallback))
}

// generate is the pipeline body shared by every entry point.
func generate(doc *trip.Document, loc *time.Location, tzName string) (*Result, error) {
	doc = enrich.Document(doc)
	for i, leg := range doc.Transportations {
		doc.Transportations[i] = enrich.Transportation(leg)
	}

	start, end, err := trip.ParseTripDates(doc)
	if err != nil {
		return nil, err
	}

	days := BuildDays(start, end, loc)
	formatted := FormatEvents(doc, loc)
	warnings := append(formatted.Warnings, Populate(days, formatted)...)

	appLog.Info("itinerary generated",
		"trip", doc.Trip.Name,
		"timezone", tzName,
		"days", days.Len(),
		"events", len(formatted.Events),
		"warnings", len(warnings),
	)

	return &Result{
		Doc:      doc,
		Timezone: tzName,
		Location: loc,
		Start:    start,
		End:      end,
		Days:     days,
		Warnings: warnings,
	}, nil
}
