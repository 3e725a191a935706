package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/couchcryptid/openwater-etl/internal/domain"
)

// maxLineBytes bounds a single feed line. CWTG item descriptions are short,
// but the channel header can carry long inline markup.
const maxLineBytes = 1 << 20

// Parser kinds accepted by NewParser.
const (
	KindLandmark = "landmark"
	KindGofeed   = "gofeed"
)

// Result is the outcome of one scan pass.
type Result struct {
	Store   *domain.Store
	Records int
	Skipped []*domain.MalformedRecordError
}

// Parser turns a fetched feed document into a Reading Store.
type Parser interface {
	Parse(r io.Reader) (Result, error)
}

// NewParser returns the parser registered under kind.
func NewParser(kind string, layout domain.Layout, logger *slog.Logger) (Parser, error) {
	switch kind {
	case "", KindLandmark:
		return NewLandmarkParser(layout, logger), nil
	case KindGofeed:
		return NewGofeedParser(layout, logger), nil
	default:
		return nil, fmt.Errorf("unknown feed parser %q", kind)
	}
}

// LandmarkParser scans the feed line by line with a Scanner.
type LandmarkParser struct {
	layout domain.Layout
	logger *slog.Logger
}

// NewLandmarkParser creates a LandmarkParser for the given layout.
func NewLandmarkParser(layout domain.Layout, logger *slog.Logger) *LandmarkParser {
	return &LandmarkParser{layout: layout, logger: logger}
}

// Parse scans r to the end. Malformed records are skipped and reported in
// the result; only a read error from r fails the pass.
func (p *LandmarkParser) Parse(r io.Reader) (Result, error) {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	sc := NewScanner(lines, p.layout)
	res := Collect(sc.Records(), p.logger)
	if err := sc.Err(); err != nil {
		return Result{}, fmt.Errorf("scan feed: %w", err)
	}
	return res, nil
}

// Collect drains a record sequence into a Store, building each reading and
// logging every skipped record.
func Collect(records iter.Seq2[domain.RawRecord, error], logger *slog.Logger) Result {
	var (
		readings []domain.Reading
		res      Result
	)

	skip := func(e *domain.MalformedRecordError) {
		res.Skipped = append(res.Skipped, e)
		logger.Warn("skipping malformed record", "line", e.Line, "reason", e.Reason(), "error", e.Err)
	}

	for raw, err := range records {
		res.Records++
		if err != nil {
			skip(asMalformed(raw.Line, err))
			continue
		}

		reading, err := domain.BuildReading(raw)
		if err != nil {
			skip(&domain.MalformedRecordError{Line: raw.Line, Err: err})
			continue
		}
		readings = append(readings, reading)
	}

	res.Store = domain.NewStore(readings)
	return res
}

func asMalformed(line int, err error) *domain.MalformedRecordError {
	var me *domain.MalformedRecordError
	if errors.As(err, &me) {
		return me
	}
	return &domain.MalformedRecordError{Line: line, Err: err}
}
