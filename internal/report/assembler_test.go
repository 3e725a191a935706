package report

import (
	"testing"
	"time"

	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFrom    = "igotdarighttemperature@gmail.com"
	testSubject = "Your Water Temperatures from OpenWater"
)

func testReadings() []domain.Reading {
	return []domain.Reading{
		{Location: "Boston, MA", Published: "Mon, 01 Jan 2024", TemperatureF: 55.2},
		{Location: "Nome, AK", Published: "Tue, 02 Jan 2024", TemperatureF: -1.5},
	}
}

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRender_Golden(t *testing.T) {
	tests := []struct {
		name     string
		unit     domain.Unit
		readings []domain.Reading
	}{
		{"fahrenheit", domain.Fahrenheit, testReadings()},
		{"celsius", domain.Celsius, testReadings()},
		{"empty", domain.Fahrenheit, nil},
	}

	a := NewAssembler(testFrom, testSubject)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := a.Render(domain.Recipient{Name: "Sam", Email: "sam@example.com", Unit: tt.unit}, tt.readings)
			require.NoError(t, err)

			g := newGolden(t)
			g.Assert(t, tt.name+"_html", []byte(n.HTMLBody))
			g.Assert(t, tt.name+"_text", []byte(n.TextBody))
		})
	}
}

func TestRender_Envelope(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	n, err := NewAssembler(testFrom, testSubject).Render(domain.Recipient{Name: "Sam", Email: "sam@example.com"}, testReadings())
	require.NoError(t, err)

	assert.Equal(t, "sam@example.com", n.Recipient)
	assert.Equal(t, "Sam", n.Name)
	assert.Equal(t, testFrom, n.From)
	assert.Equal(t, testSubject, n.Subject)
	assert.Equal(t, domain.Fahrenheit, n.Unit)
	assert.Equal(t, 2, n.Readings)
	assert.Equal(t, fixed, n.GeneratedAt)
}

func TestRender_EscapesLocation(t *testing.T) {
	readings := []domain.Reading{{Location: "Anna Maria & Bradenton, FL", Published: "Mon, 01 Jan 2024", TemperatureF: 72.1}}

	n, err := NewAssembler(testFrom, testSubject).Render(domain.Recipient{Email: "sam@example.com"}, readings)
	require.NoError(t, err)

	assert.Contains(t, n.HTMLBody, "<u>Anna Maria &amp; Bradenton, FL</u>")
	assert.Contains(t, n.TextBody, "Anna Maria & Bradenton, FL")
}

func TestRender_DoesNotModifyReadings(t *testing.T) {
	readings := testReadings()

	_, err := NewAssembler(testFrom, testSubject).Render(domain.Recipient{Email: "sam@example.com", Unit: domain.Celsius}, readings)
	require.NoError(t, err)

	assert.Equal(t, testReadings(), readings)
}

func TestRender_UnknownUnit(t *testing.T) {
	_, err := NewAssembler(testFrom, testSubject).Render(domain.Recipient{Email: "sam@example.com", Unit: "K"}, testReadings())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sam@example.com")
}

func TestFormatTemp(t *testing.T) {
	assert.Equal(t, "55.2", FormatTemp(55.2))
	assert.Equal(t, "12.9", FormatTemp(domain.ToCelsius(55.2)))
	assert.Equal(t, "-40.0", FormatTemp(-40))
	assert.Equal(t, "100.0", FormatTemp(100))
}
