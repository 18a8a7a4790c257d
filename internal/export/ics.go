// Package export writes the populated itinerary in alternate download
// formats (iCalendar, CSV) for travelers who want the schedule in their own
// calendar or spreadsheet instead of the rendered document.
package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"itingen/internal/itinerary"
)

// ICSProductID identifies generated calendars.
const ICSProductID = "-//itingen//Trip Itinerary//EN"

// WriteICS serializes every itinerary event as a VEVENT.
//
// UIDs are derived from the local date and the event's position within the
// itinerary so a re-import updates rather than duplicates entries.
func WriteICS(w io.Writer, res *itinerary.Result) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ICSProductID)
	cal.SetCalscale("GREGORIAN")
	if res.Doc.Trip.Name != "" {
		cal.SetXWRCalName(res.Doc.Trip.Name)
	}
	cal.SetXWRTimezone(res.Timezone)

	now := time.Now().UTC()
	seq := 0
	for _, day := range res.Days.Days() {
		for _, ev := range day.Events {
			uid := fmt.Sprintf("%s-%d@itingen", ev.Date, seq)
			seq++

			vev := cal.AddEvent(uid)
			vev.SetDtStampTime(now)
			vev.SetStartAt(ev.When)
			// Point-in-time entries; a nominal hour keeps calendar apps
			// from collapsing them to zero height.
			vev.SetEndAt(ev.When.Add(time.Hour))
			vev.SetSummary(ev.Label)
			vev.SetDescription(string(ev.Category))
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}
