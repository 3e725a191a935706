package feed

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/mmcdole/gofeed"
)

// GofeedParser reads the feed as an RSS document instead of by line
// landmarks. Only the temperature still uses the layout marker and window,
// since the feed carries it inside free-form description markup.
type GofeedParser struct {
	layout domain.Layout
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewGofeedParser creates a GofeedParser for the given layout.
func NewGofeedParser(layout domain.Layout, logger *slog.Logger) *GofeedParser {
	return &GofeedParser{layout: layout, parser: gofeed.NewParser(), logger: logger}
}

// Parse decodes r as RSS. A document that is not a feed fails the pass;
// individual items that lack a usable temperature are skipped.
func (p *GofeedParser) Parse(r io.Reader) (Result, error) {
	f, err := p.parser.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse feed: %w", err)
	}
	return Collect(p.items(f.Items), p.logger), nil
}

// items yields one RawRecord per feed item. RawRecord.Line carries the
// item's 1-based position.
func (p *GofeedParser) items(items []*gofeed.Item) iter.Seq2[domain.RawRecord, error] {
	return func(yield func(domain.RawRecord, error) bool) {
		for i, item := range items {
			raw := domain.RawRecord{Line: i + 1, Location: item.Title, Date: item.Published}

			body := item.Description
			if body == "" {
				body = item.Content
			}

			var err error
			if idx := strings.Index(body, p.layout.TempMarker); idx < 0 {
				err = fmt.Errorf("temperature: %w %q", domain.ErrMissingLandmark, p.layout.TempMarker)
			} else {
				raw.Temp, err = temperatureWindow(body[idx+len(p.layout.TempMarker):], p.layout.TempWidth)
			}

			if err != nil {
				err = &domain.MalformedRecordError{Line: raw.Line, Err: err}
			}
			if !yield(raw, err) {
				return
			}
		}
	}
}
