package trip_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itingen/internal/trip"
)

const sampleExport = `{
  "trip": {
    "name": "Spring in New York",
    "description": "A long weekend",
    "startDate": "2025-05-10T08:00:00Z",
    "endDate": "2025-05-15T13:00:00Z",
    "notes": "<p>Pack light.</p>",
    "destinations": [
      {"name": "New York", "country": "USA", "timezone": "America/New_York", "latitude": 40.7128, "longitude": -74.006}
    ]
  },
  "transportations": [
    {
      "id": "t1", "type": "flight", "origin": "SFO", "destination": "JFK",
      "departure": "2025-05-10T08:00:00Z", "arrival": "2025-05-10T14:00:00Z",
      "cost": {"value": 420.5, "currency": "USD"},
      "metadata": {"provider": "Delta", "seat": "12A"}
    }
  ],
  "lodgings": [
    {
      "id": "l1", "type": "hotel", "name": "The Standard",
      "address": "848 Washington St", "confirmationCode": "ABC123",
      "startDate": "2025-05-10T19:00:00Z", "endDate": "2025-05-14T15:00:00Z",
      "cost": {"value": 1200, "currency": "USD"}
    }
  ],
  "activities": [
    {"id": "a1", "name": "Broadway Show", "address": "Majestic Theatre", "startDate": "2025-05-11T23:30:00Z"}
  ]
}`

func TestDecodeDocument(t *testing.T) {
	doc, err := trip.DecodeDocument(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, "Spring in New York", doc.Trip.Name)
	require.Len(t, doc.Trip.Destinations, 1)
	assert.Equal(t, "America/New_York", doc.Trip.Destinations[0].Timezone)

	require.Len(t, doc.Transportations, 1)
	assert.Equal(t, 420.5, doc.Transportations[0].Cost.Value)
	assert.Equal(t, "USD", doc.Transportations[0].Cost.Currency)

	// Metadata passes through untouched, including keys the core never reads.
	assert.Equal(t, "Delta", doc.Transportations[0].Metadata.Provider())
	assert.Equal(t, "12A", doc.Transportations[0].Metadata["seat"])
}

func TestDecodeDocument_InvalidJSON(t *testing.T) {
	_, err := trip.DecodeDocument(strings.NewReader("{not json"))
	require.Error(t, err)

	var dfe *trip.DataFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Equal(t, "(document)", dfe.Field)
}

func TestTimezone(t *testing.T) {
	doc, err := trip.DecodeDocument(strings.NewReader(sampleExport))
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", trip.Timezone(doc))
}

func TestTimezone_EmptyDestinations(t *testing.T) {
	doc := &trip.Document{}
	assert.Equal(t, "UTC", trip.Timezone(doc))
}

func TestTimezone_BlankField(t *testing.T) {
	doc := &trip.Document{}
	doc.Trip.Destinations = []trip.Destination{{Name: "Somewhere", Timezone: "   "}}
	assert.Equal(t, "UTC", trip.Timezone(doc))
}

func TestTimezoneIn_FallbackApplies(t *testing.T) {
	doc := &trip.Document{}
	assert.Equal(t, "Asia/Tokyo", trip.TimezoneIn(doc, "Asia/Tokyo"))
	assert.Equal(t, "UTC", trip.TimezoneIn(doc, ""))
	assert.Equal(t, "UTC", trip.TimezoneIn(doc, "   "))

	// A destination zone always beats the configured fallback.
	doc.Trip.Destinations = []trip.Destination{{Name: "New York", Timezone: "America/New_York"}}
	assert.Equal(t, "America/New_York", trip.TimezoneIn(doc, "Asia/Tokyo"))
}

func TestLocationIn_FallbackZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, tokyo, trip.LocationIn(&trip.Document{}, "Asia/Tokyo"))

	// A malformed fallback degrades to UTC like a malformed destination zone.
	assert.Equal(t, time.UTC, trip.LocationIn(&trip.Document{}, "Not/AZone"))
}

func TestLocation_MalformedZoneFallsBackToUTC(t *testing.T) {
	doc := &trip.Document{}
	doc.Trip.Destinations = []trip.Destination{{Name: "Atlantis", Timezone: "Not/AZone"}}

	loc := trip.Location(doc)
	assert.Equal(t, time.UTC, loc)
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "utc suffix",
			value: "2025-05-10T08:00:00Z",
			want:  time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "explicit offset",
			value: "2025-05-10T10:00:00+02:00",
			want:  time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "no offset assumed utc",
			value: "2025-05-10T08:00:00",
			want:  time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			value: "2025-05-10",
			want:  time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := trip.ParseInstant(tt.value, "field")
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseInstant_Malformed(t *testing.T) {
	for _, value := range []string{"", "   ", "not-a-date", "2025-13-40T99:00:00Z"} {
		_, err := trip.ParseInstant(value, "activities[2].startDate")
		require.Error(t, err, "value %q", value)

		var dfe *trip.DataFormatError
		require.True(t, errors.As(err, &dfe))
		assert.Equal(t, "activities[2].startDate", dfe.Field)
	}
}

func TestParseTripDates(t *testing.T) {
	doc, err := trip.DecodeDocument(strings.NewReader(sampleExport))
	require.NoError(t, err)

	start, end, err := trip.ParseTripDates(doc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2025, 5, 15, 13, 0, 0, 0, time.UTC), end.UTC())
}

func TestParseTripDates_MalformedIsFatal(t *testing.T) {
	doc := &trip.Document{}
	doc.Trip.StartDate = "garbage"
	doc.Trip.EndDate = "2025-05-15T13:00:00Z"

	_, _, err := trip.ParseTripDates(doc)
	var dfe *trip.DataFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Equal(t, "trip.startDate", dfe.Field)
}
