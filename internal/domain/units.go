package domain

import (
	"fmt"
	"strings"
)

// Unit is a temperature scale requested by a report recipient.
type Unit string

const (
	Fahrenheit Unit = "F"
	Celsius    Unit = "C"
)

// ParseUnit accepts "F", "C" or their long names, case-insensitively.
// An empty string selects Fahrenheit, the feed's native unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "F", "FAHRENHEIT":
		return Fahrenheit, nil
	case "C", "CELSIUS", "CENTIGRADE":
		return Celsius, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// Symbol returns the unit's display symbol, e.g. "°F".
func (u Unit) Symbol() string {
	if u == Celsius {
		return "°C"
	}
	return "°F"
}

// ToCelsius converts Fahrenheit to Celsius without rounding.
func ToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// ToFahrenheit converts Celsius to Fahrenheit without rounding.
func ToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
