package itinerary

import (
	"time"
)

// DateLayout is the key format for local calendar dates.
const DateLayout = "2006-01-02"

// Category tags an event line with the kind of record it came from.
type Category string

const (
	CategoryLodgingCheckIn  Category = "lodging-checkin"
	CategoryLodgingCheckOut Category = "lodging-checkout"
	CategoryTransport       Category = "transport"
	CategoryActivity        Category = "activity"
)

// Event is a single formatted line item within a day. When is the instant
// in the destination-local zone; its time-of-day is the sort key.
type Event struct {
	Date     string
	When     time.Time
	Label    string
	Category Category
}

// TimeOfDay returns the event's position within its day, in seconds since
// local midnight.
func (e Event) TimeOfDay() int {
	h, m, s := e.When.Clock()
	return h*3600 + m*60 + s
}

// Day is the per-calendar-date bucket of events plus the optional lodging
// banner. It is created by BuildDays, mutated by Populate, and read-only
// afterward.
type Day struct {
	// Date is local midnight of the calendar date.
	Date time.Time

	Events        []Event
	LodgingBanner string
}

// Key returns the day's local calendar date key.
func (d *Day) Key() string { return d.Date.Format(DateLayout) }

// DaySet is the ordered sequence of days spanned by a trip with an O(1)
// date-keyed index. It is built once per invocation; there is no shared
// state across invocations.
type DaySet struct {
	days  []*Day
	index map[string]*Day
}

// BuildDays constructs one Day per local calendar date from start's date
// through end's date inclusive, in loc.
//
// If end precedes start the set still contains a single day anchored at
// start's date; a well-formed trip always yields at least one day.
func BuildDays(start, end time.Time, loc *time.Location) *DaySet {
	if loc == nil {
		loc = time.UTC
	}

	startLocal := start.In(loc)
	endLocal := end.In(loc)

	y, m, d := startLocal.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, loc)
	ey, em, ed := endLocal.Date()
	last := time.Date(ey, em, ed, 0, 0, 0, 0, loc)
	if last.Before(first) {
		last = first
	}

	set := &DaySet{index: make(map[string]*Day)}
	// time.Date normalizes the day offset, so this walks calendar dates
	// correctly across DST transitions.
	for i := 0; ; i++ {
		cur := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		if cur.After(last) {
			break
		}
		day := &Day{Date: cur, Events: []Event{}}
		set.days = append(set.days, day)
		set.index[day.Key()] = day
	}
	return set
}

// Days returns the ordered day sequence.
func (s *DaySet) Days() []*Day { return s.days }

// Len returns the number of days in the set.
func (s *DaySet) Len() int { return len(s.days) }

// ByDate looks up a day by its local calendar date key.
func (s *DaySet) ByDate(key string) (*Day, bool) {
	d, ok := s.index[key]
	return d, ok
}

// First and Last return the boundary days; both are nil only for a nil set.
func (s *DaySet) First() *Day {
	if len(s.days) == 0 {
		return nil
	}
	return s.days[0]
}

func (s *DaySet) Last() *Day {
	if len(s.days) == 0 {
		return nil
	}
	return s.days[len(s.days)-1]
}
