package itinerary

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	appLog "itingen/internal/log"
	"itingen/internal/trip"
)

// Display formats shared by every event label so rendered times look the
// same everywhere in the document.
const (
	clockLayout   = "3:04 PM"
	arrivalLayout = "3:04 PM, Jan 02"
)

// transportIcons maps a transport type to its marker. Unknown types fall
// back to the car icon.
var transportIcons = map[string]string{
	"flight":    "✈️",
	"train":     "🚆",
	"bus":       "🚌",
	"ferry":     "⛴️",
	"car":       "🚗",
	"taxi":      "🚕",
	"rideshare": "🚙",
	"subway":    "🚇",
	"bike":      "🚲",
	"walk":      "🚶",
}

const (
	lodgingIcon  = "🛏"
	bannerIcon   = "🏨"
	activityIcon = "🎟️"
)

// TransportIcon returns the marker for a transport type, case-insensitive.
func TransportIcon(transportType string) string {
	if icon, ok := transportIcons[strings.ToLower(transportType)]; ok {
		return icon
	}
	return transportIcons["car"]
}

// BannerEntry marks one lodging as active on one local calendar date. It is
// not an event row; the populator folds entries into per-day banner text.
type BannerEntry struct {
	Date string
	Name string
}

// FormatResult is the event formatter's output: every record turned into
// zero or more dated tuples, plus the lodging-span banner entries and the
// warnings for records that were skipped.
type FormatResult struct {
	Events   []Event
	Banners  []BannerEntry
	Warnings []string
}

// FormatEvents converts every lodging, transportation, and activity record
// into destination-local events.
//
// A record with a malformed or missing required timestamp is skipped with a
// recorded warning; one bad record never blanks the itinerary. Records whose
// interval is inverted (lodging end before start, arrival before departure)
// are treated the same way.
func FormatEvents(doc *trip.Document, loc *time.Location) FormatResult {
	if loc == nil {
		loc = time.UTC
	}

	var res FormatResult
	res.formatLodgings(doc.Lodgings, loc)
	res.formatTransports(doc.Transportations, loc)
	res.formatActivities(doc.Activities, loc)
	return res
}

func (r *FormatResult) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	appLog.Warn("record skipped", "reason", msg)
}

func (r *FormatResult) formatLodgings(lodgings []trip.Lodging, loc *time.Location) {
	for i, l := range lodgings {
		checkin, err := trip.ParseInstant(l.StartDate, fmt.Sprintf("lodgings[%d].startDate", i))
		if err != nil {
			r.warnf("%v", err)
			continue
		}
		checkout, err := trip.ParseInstant(l.EndDate, fmt.Sprintf("lodgings[%d].endDate", i))
		if err != nil {
			r.warnf("%v", err)
			continue
		}
		if l.Name == "" {
			r.warnf("lodgings[%d]: missing name", i)
			continue
		}
		if !checkin.Before(checkout) {
			r.warnf("lodgings[%d]: check-out %s is not after check-in %s",
				i, l.EndDate, l.StartDate)
			continue
		}

		checkinLocal := checkin.In(loc)
		checkoutLocal := checkout.In(loc)

		r.Events = append(r.Events, Event{
			Date:     checkinLocal.Format(DateLayout),
			When:     checkinLocal,
			Label:    fmt.Sprintf("%s %s — Check-In at %s", lodgingIcon, checkinLocal.Format(clockLayout), l.Name),
			Category: CategoryLodgingCheckIn,
		}, Event{
			Date:     checkoutLocal.Format(DateLayout),
			When:     checkoutLocal,
			Label:    fmt.Sprintf("%s %s — Check-Out from %s", lodgingIcon, checkoutLocal.Format(clockLayout), l.Name),
			Category: CategoryLodgingCheckOut,
		})

		// Banner entries for every date strictly between check-in and
		// check-out: the nights with no transition row of their own.
		firstNight := localMidnight(checkinLocal).AddDate(0, 0, 1)
		lastDate := localMidnight(checkoutLocal)
		for d := firstNight; d.Before(lastDate); d = d.AddDate(0, 0, 1) {
			r.Banners = append(r.Banners, BannerEntry{
				Date: d.Format(DateLayout),
				Name: l.Name,
			})
		}
	}
}

func (r *FormatResult) formatTransports(transports []trip.Transportation, loc *time.Location) {
	for i, t := range transports {
		departure, err := trip.ParseInstant(t.Departure, fmt.Sprintf("transportations[%d].departure", i))
		if err != nil {
			r.warnf("%v", err)
			continue
		}
		arrival, err := trip.ParseInstant(t.Arrival, fmt.Sprintf("transportations[%d].arrival", i))
		if err != nil {
			r.warnf("%v", err)
			continue
		}
		if arrival.Before(departure) {
			r.warnf("transportations[%d]: arrival %s precedes departure %s",
				i, t.Arrival, t.Departure)
			continue
		}

		depLocal := departure.In(loc)
		arrLocal := arrival.In(loc)

		label := fmt.Sprintf("%s %s — %s from %s to %s",
			TransportIcon(t.Type),
			depLocal.Format(clockLayout),
			titleCase(t.Type),
			t.Origin,
			t.Destination,
		)
		// A leg that lands on a different local date is shown on the
		// departure date only, with the arrival spelled out.
		if depLocal.Format(DateLayout) != arrLocal.Format(DateLayout) {
			label += fmt.Sprintf(" (arrives %s — local time)", arrLocal.Format(arrivalLayout))
		}

		r.Events = append(r.Events, Event{
			Date:     depLocal.Format(DateLayout),
			When:     depLocal,
			Label:    label,
			Category: CategoryTransport,
		})
	}
}

func (r *FormatResult) formatActivities(activities []trip.Activity, loc *time.Location) {
	for i, a := range activities {
		start, err := trip.ParseInstant(a.StartDate, fmt.Sprintf("activities[%d].startDate", i))
		if err != nil {
			r.warnf("%v", err)
			continue
		}

		name := a.Name
		if name == "" {
			name = "Unnamed Activity"
		}

		startLocal := start.In(loc)
		label := fmt.Sprintf("%s %s — %s", activityIcon, startLocal.Format(clockLayout), name)
		if addr := strings.TrimSpace(a.Address); addr != "" && !strings.EqualFold(addr, "n/a") {
			label += " @ " + addr
		}

		r.Events = append(r.Events, Event{
			Date:     startLocal.Format(DateLayout),
			When:     startLocal,
			Label:    label,
			Category: CategoryActivity,
		})
	}
}

// TransportDescription summarizes a leg for the footer and the alternate
// exports, e.g. "Flight from JFK to LAX with Delta".
func TransportDescription(t trip.Transportation) string {
	typ := t.Type
	if typ == "" {
		typ = "Unknown"
	}
	origin := t.Origin
	if origin == "" {
		origin = "Unknown Origin"
	}
	dest := t.Destination
	if dest == "" {
		dest = "Unknown Destination"
	}

	desc := fmt.Sprintf("%s from %s to %s", titleCase(typ), origin, dest)
	if provider := t.Metadata.Provider(); provider != "" {
		desc += " with " + provider
	}
	return desc
}

func localMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
