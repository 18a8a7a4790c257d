package itinerary

import (
	"fmt"
	"sort"
	"strings"

	appLog "itingen/internal/log"
)

const bannerPrefix = bannerIcon + " Lodging: Staying at "

// Populate merges formatted events and banner entries into the day set.
//
// Events dated outside the set's range are dropped with a warning: a date
// outside the trip is a data-quality problem, not a fatal one. Within a day
// events are ordered by time-of-day ascending; equal times keep input order
// (stable sort), which is the defined tie-break.
//
// Each day gets exactly one banner string, joining every lodging active on
// that date in input order.
func Populate(days *DaySet, res FormatResult) []string {
	var warnings []string

	for _, ev := range res.Events {
		day, ok := days.ByDate(ev.Date)
		if !ok {
			msg := fmt.Sprintf("event on %s is outside the trip's day range: %s", ev.Date, ev.Label)
			warnings = append(warnings, msg)
			appLog.Warn("event dropped", "date", ev.Date, "category", string(ev.Category))
			continue
		}
		day.Events = append(day.Events, ev)
	}

	for _, day := range days.Days() {
		sort.SliceStable(day.Events, func(i, j int) bool {
			return day.Events[i].TimeOfDay() < day.Events[j].TimeOfDay()
		})
	}

	bannerNames := make(map[string][]string)
	for _, b := range res.Banners {
		if _, ok := days.ByDate(b.Date); !ok {
			// Banner dates derive from lodging spans that can extend past
			// the trip range; out-of-range nights are simply not shown.
			continue
		}
		bannerNames[b.Date] = append(bannerNames[b.Date], b.Name)
	}
	for date, names := range bannerNames {
		day, _ := days.ByDate(date)
		day.LodgingBanner = bannerPrefix + strings.Join(names, ", ")
	}

	return warnings
}
