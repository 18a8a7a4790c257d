package render

import (
	"html/template"

	"itingen/internal/itinerary"
	"itingen/internal/trip"
)

// DateFormat is the single shared format rule for every human-readable date
// in the rendered document.
const DateFormat = "Jan 02, 2006"

// DayView is the per-day view-model exposed to templates.
type DayView struct {
	// Key is the machine date ("2006-01-02"); Date is the display form.
	Key     string
	Date    string
	Weekday string

	Events        []string
	LodgingBanner string
}

// TransportView pairs a raw transportation record with its footer summary.
type TransportView struct {
	trip.Transportation
	Description string
}

// Context is the flat structure consumed by the HTML template. It is a pure
// projection of the pipeline result: assembling it has no side effects and
// identical input yields identical output.
type Context struct {
	TripName        string
	TripDescription string
	StartDate       string
	EndDate         string

	// TripNotes is pre-trusted HTML; the upstream trip planner is the
	// sanitizing authority.
	TripNotes template.HTML

	TripDestination string
	Timezone        string

	Days []DayView

	// Raw record lists for the footer/address summary.
	Lodgings        []trip.Lodging
	Transportations []TransportView
}

// NewContext flattens a pipeline result into the template input structure.
func NewContext(res *itinerary.Result) Context {
	ctx := Context{
		TripName:        res.Doc.Trip.Name,
		TripDescription: res.Doc.Trip.Description,
		TripNotes:       template.HTML(res.Doc.Trip.Notes),
		Timezone:        res.Timezone,
	}

	if len(res.Doc.Trip.Destinations) > 0 {
		ctx.TripDestination = res.Doc.Trip.Destinations[0].Name
	}

	if first := res.Days.First(); first != nil {
		ctx.StartDate = first.Date.Format(DateFormat)
	}
	if last := res.Days.Last(); last != nil {
		ctx.EndDate = last.Date.Format(DateFormat)
	}

	for _, day := range res.Days.Days() {
		view := DayView{
			Key:           day.Key(),
			Date:          day.Date.Format(DateFormat),
			Weekday:       day.Date.Weekday().String(),
			Events:        make([]string, 0, len(day.Events)),
			LodgingBanner: day.LodgingBanner,
		}
		for _, ev := range day.Events {
			view.Events = append(view.Events, ev.Label)
		}
		ctx.Days = append(ctx.Days, view)
	}

	ctx.Lodgings = res.Doc.Lodgings
	for _, t := range res.Doc.Transportations {
		ctx.Transportations = append(ctx.Transportations, TransportView{
			Transportation: t,
			Description:    itinerary.TransportDescription(t),
		})
	}

	return ctx
}
