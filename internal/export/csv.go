package export

import (
	"encoding/csv"
	"io"

	"itingen/internal/itinerary"
)

// WriteCSV writes one row per itinerary event, ordered as rendered, plus a
// banner row for each night spent at a lodging.
func WriteCSV(w io.Writer, res *itinerary.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "time", "category", "description"}); err != nil {
		return err
	}

	for _, day := range res.Days.Days() {
		if day.LodgingBanner != "" {
			if err := cw.Write([]string{day.Key(), "", "lodging", day.LodgingBanner}); err != nil {
				return err
			}
		}
		for _, ev := range day.Events {
			row := []string{
				day.Key(),
				ev.When.Format("15:04"),
				string(ev.Category),
				ev.Label,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
