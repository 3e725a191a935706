package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCelsius(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want float64
	}{
		{"freezing", 32, 0},
		{"boiling", 212, 100},
		{"crossover", -40, -40},
		{"feed example", 55.2, 12.888888888888889},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToCelsius(tt.f), 1e-9)
		})
	}
}

func TestToCelsius_Representative(t *testing.T) {
	want := map[float64]float64{0: -17.78, 32: 0, 100: 37.78, -40: -40}
	for f, c := range want {
		assert.InDelta(t, c, ToCelsius(f), 0.01, "ToCelsius(%v)", f)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	for _, f := range []float64{-40, -1.5, 0, 32, 44.1, 55.2, 63.5, 100, 212} {
		assert.InDelta(t, f, ToFahrenheit(ToCelsius(f)), 1e-9, "round trip %v", f)
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"", Fahrenheit},
		{"F", Fahrenheit},
		{"f", Fahrenheit},
		{"Fahrenheit", Fahrenheit},
		{"C", Celsius},
		{" celsius ", Celsius},
		{"centigrade", Celsius},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnit(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseUnit("K")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"K"`)
}

func TestReading_In(t *testing.T) {
	r := Reading{Location: "Boston, MA", TemperatureF: 55.2}

	assert.Equal(t, 55.2, r.In(Fahrenheit))
	assert.InDelta(t, 12.89, r.In(Celsius), 0.005)
	assert.Equal(t, "°C", Celsius.Symbol())
	assert.Equal(t, "°F", Fahrenheit.Symbol())
}
