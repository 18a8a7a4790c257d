package render_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itingen/internal/itinerary"
	"itingen/internal/render"
	"itingen/internal/trip"
)

const renderFixture = `{
  "trip": {
    "name": "Spring in New York",
    "description": "A long weekend",
    "startDate": "2025-05-10T08:00:00Z",
    "endDate": "2025-05-15T13:00:00Z",
    "notes": "<p>Pack light.</p>",
    "destinations": [
      {"name": "New York", "country": "USA", "timezone": "America/New_York"}
    ]
  },
  "transportations": [
    {
      "type": "flight", "origin": "SFO", "destination": "JFK",
      "departure": "2025-05-10T08:00:00Z", "arrival": "2025-05-10T14:00:00Z",
      "metadata": {"provider": "Delta"}
    }
  ],
  "lodgings": [
    {
      "name": "The Standard", "address": "848 Washington St",
      "confirmationCode": "ABC123",
      "startDate": "2025-05-10T19:00:00Z", "endDate": "2025-05-14T15:00:00Z"
    }
  ],
  "activities": [
    {"name": "Broadway Show", "address": "Majestic Theatre", "startDate": "2025-05-11T23:30:00Z"}
  ]
}`

func generateFixture(t *testing.T) *itinerary.Result {
	t.Helper()
	doc, err := trip.DecodeDocument(strings.NewReader(renderFixture))
	require.NoError(t, err)
	res, err := itinerary.Generate(doc)
	require.NoError(t, err)
	return res
}

func TestNewContext(t *testing.T) {
	res := generateFixture(t)
	ctx := render.NewContext(res)

	assert.Equal(t, "Spring in New York", ctx.TripName)
	assert.Equal(t, "A long weekend", ctx.TripDescription)
	assert.Equal(t, "New York", ctx.TripDestination)
	assert.Equal(t, "America/New_York", ctx.Timezone)
	assert.Equal(t, "May 10, 2025", ctx.StartDate)
	assert.Equal(t, "May 15, 2025", ctx.EndDate)

	require.Len(t, ctx.Days, 6)
	assert.Equal(t, "2025-05-10", ctx.Days[0].Key)
	assert.Equal(t, "May 10, 2025", ctx.Days[0].Date)
	assert.Equal(t, "Saturday", ctx.Days[0].Weekday)
	require.Len(t, ctx.Days[0].Events, 2)
	assert.Equal(t, "✈️ 4:00 AM — Flight from SFO to JFK", ctx.Days[0].Events[0])

	assert.Equal(t, "🏨 Lodging: Staying at The Standard", ctx.Days[1].LodgingBanner)

	require.Len(t, ctx.Lodgings, 1)
	require.Len(t, ctx.Transportations, 1)
	assert.Equal(t, "Flight from SFO to JFK with Delta", ctx.Transportations[0].Description)
}

func TestHTML_DefaultTemplate(t *testing.T) {
	res := generateFixture(t)

	tpl, err := render.DefaultTemplate()
	require.NoError(t, err)

	out, err := render.HTML(tpl, render.NewContext(res))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Spring in New York")
	assert.Contains(t, html, "May 10, 2025")
	assert.Contains(t, html, "Saturday")
	assert.Contains(t, html, "🏨 Lodging: Staying at The Standard")
	assert.Contains(t, html, "🎟️ 7:30 PM — Broadway Show @ Majestic Theatre")
	assert.Contains(t, html, "All times shown in America/New_York")

	// Trip notes are trusted HTML and must not be escaped.
	assert.Contains(t, html, "<p>Pack light.</p>")
}

func TestHTML_EmptyDayShowsFreeDay(t *testing.T) {
	res := generateFixture(t)

	tpl, err := render.DefaultTemplate()
	require.NoError(t, err)

	out, err := render.HTML(tpl, render.NewContext(res))
	require.NoError(t, err)
	// 2025-05-15 has no events.
	assert.Contains(t, string(out), "Free day")
}

func TestHTML_Deterministic(t *testing.T) {
	res := generateFixture(t)
	tpl, err := render.DefaultTemplate()
	require.NoError(t, err)

	first, err := render.HTML(tpl, render.NewContext(res))
	require.NoError(t, err)
	second, err := render.HTML(tpl, render.NewContext(res))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadTemplate_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>{{.TripName}}</h1>"), 0o644))

	tpl, err := render.LoadTemplate(path)
	require.NoError(t, err)

	out, err := render.HTML(tpl, render.Context{TripName: "Custom Trip"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Custom Trip</h1>", string(out))
}

func TestLoadTemplate_MissingFileIsRenderFailure(t *testing.T) {
	_, err := render.LoadTemplate(filepath.Join(t.TempDir(), "does-not-exist.html"))
	var rf *render.RenderFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "template", rf.Stage)
}

func TestParseTemplate_Invalid(t *testing.T) {
	_, err := render.ParseTemplate("upload", []byte("{{.Broken"))
	var rf *render.RenderFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "template", rf.Stage)
}
