package domain

import (
	"strings"
	"time"
)

// Store is the ordered set of readings produced by one scan pass.
// It is immutable once built, so any number of goroutines may query it.
type Store struct {
	readings  []Reading
	scannedAt time.Time
}

// NewStore copies readings in feed order. Duplicate locations are kept.
func NewStore(readings []Reading) *Store {
	cp := make([]Reading, len(readings))
	copy(cp, readings)
	return &Store{readings: cp, scannedAt: clock.Now()}
}

// Len returns the number of readings.
func (s *Store) Len() int { return len(s.readings) }

// ScannedAt returns when the store was built.
func (s *Store) ScannedAt() time.Time { return s.scannedAt }

// All returns a copy of every reading in feed order.
func (s *Store) All() []Reading {
	out := make([]Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// ForState returns the readings whose location contains code, in feed order.
// Matching is a case-sensitive substring test with no word boundary, so "ME"
// also matches "AMELIA ISLAND, FL" but not "Time Recorder". An empty code
// matches nothing. The result is never nil.
func (s *Store) ForState(code string) []Reading {
	out := make([]Reading, 0)
	if code == "" {
		return out
	}
	for _, r := range s.readings {
		if strings.Contains(r.Location, code) {
			out = append(out, r)
		}
	}
	return out
}

// ForStates concatenates ForState results in the order the codes are given.
// A reading that matches several codes appears once per matching code.
func (s *Store) ForStates(codes ...string) []Reading {
	out := make([]Reading, 0)
	for _, code := range codes {
		out = append(out, s.ForState(code)...)
	}
	return out
}
