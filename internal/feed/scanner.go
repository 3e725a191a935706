package feed

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/couchcryptid/openwater-etl/internal/domain"
)

// LineSource supplies feed content one line at a time. *bufio.Scanner
// satisfies it.
type LineSource interface {
	Scan() bool
	Text() string
	Err() error
}

// Scanner finds records in a line sequence by fixed textual landmarks.
// A failed record never ends the scan; scanning resumes at the next
// record-start landmark.
type Scanner struct {
	lines  LineSource
	layout domain.Layout

	lineNo int

	// pending holds a line read while filling one record that turned out to
	// open the next one.
	pending     string
	pendingLine int
	hasPending  bool

	used bool
	err  error
}

// NewScanner returns a Scanner that reads lines using the given layout.
func NewScanner(lines LineSource, layout domain.Layout) *Scanner {
	return &Scanner{lines: lines, layout: layout}
}

// Records yields one RawRecord per record-start landmark. Records whose
// landmarks are missing are yielded with a *domain.MalformedRecordError.
// The sequence consumes the line source and can be ranged over once.
func (s *Scanner) Records() iter.Seq2[domain.RawRecord, error] {
	return func(yield func(domain.RawRecord, error) bool) {
		if s.used {
			return
		}
		s.used = true

		for {
			text, n, ok := s.next()
			if !ok {
				s.err = s.lines.Err()
				return
			}
			if !strings.Contains(text, s.layout.RecordStart) {
				continue
			}

			raw, err := s.readRecord(n)
			if err != nil {
				if errors.Is(err, domain.ErrTruncatedRecord) && s.lines.Err() != nil {
					s.err = s.lines.Err()
					return
				}
				if !yield(raw, &domain.MalformedRecordError{Line: n, Err: err}) {
					return
				}
				continue
			}
			if !yield(raw, nil) {
				return
			}
		}
	}
}

// Err returns the first non-EOF error from the line source.
func (s *Scanner) Err() error {
	return s.err
}

// Line returns the number of lines consumed so far.
func (s *Scanner) Line() int {
	return s.lineNo
}

func (s *Scanner) next() (string, int, bool) {
	if s.hasPending {
		s.hasPending = false
		return s.pending, s.pendingLine, true
	}
	if !s.lines.Scan() {
		return "", 0, false
	}
	s.lineNo++
	return s.lines.Text(), s.lineNo, true
}

// field reads the next line of a record. A line that carries the record-start
// landmark is pushed back so the next record is not lost.
func (s *Scanner) field(name string) (string, error) {
	text, n, ok := s.next()
	if !ok {
		return "", fmt.Errorf("%s: %w", name, domain.ErrTruncatedRecord)
	}
	if strings.Contains(text, s.layout.RecordStart) {
		s.pending, s.pendingLine, s.hasPending = text, n, true
		return "", fmt.Errorf("%s: %w: next record starts at line %d", name, domain.ErrMissingLandmark, n)
	}
	return text, nil
}

func (s *Scanner) readRecord(start int) (domain.RawRecord, error) {
	raw := domain.RawRecord{Line: start}

	text, err := s.field("title")
	if err != nil {
		return raw, err
	}
	if raw.Location, err = extractTitle(text, s.layout); err != nil {
		return raw, err
	}

	if text, err = s.field("date"); err != nil {
		return raw, err
	}
	if raw.Date, err = extractDate(text, s.layout); err != nil {
		return raw, err
	}

	if _, err = s.field("link"); err != nil {
		return raw, err
	}

	if text, err = s.field("temperature"); err != nil {
		return raw, err
	}
	if raw.Temp, err = extractTemperature(text, s.layout); err != nil {
		return raw, err
	}

	return raw, nil
}
