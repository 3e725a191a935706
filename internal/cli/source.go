package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/openwater-etl/internal/adapter/noaa"
	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/couchcryptid/openwater-etl/internal/feed"
	"github.com/couchcryptid/openwater-etl/internal/observability"
)

const defaultFeedURL = "https://www.nodc.noaa.gov/dsdt/cwtg/rss/all.xml"

// sourceOptions selects where a command reads the feed from.
type sourceOptions struct {
	file      string
	url       string
	parser    string
	userAgent string
	timeout   time.Duration
}

func addSourceFlags(cmd *cobra.Command, s *sourceOptions) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "read the feed from a local file")
	cmd.Flags().StringVar(&s.url, "url", "", "download the feed from a URL (e.g. "+defaultFeedURL+")")
	cmd.Flags().StringVar(&s.parser, "parser", feed.KindLandmark, "feed parser (landmark|gofeed)")
	cmd.Flags().StringVar(&s.userAgent, "user-agent", "wtemp/1.0", "User-Agent sent with --url")
	cmd.Flags().DurationVar(&s.timeout, "timeout", 10*time.Second, "download timeout for --url")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	cmd.MarkFlagsOneRequired("file", "url")
}

// scan reads the whole feed and builds a Reading Store from it.
func (s *sourceOptions) scan(ctx context.Context, logger *slog.Logger) (feed.Result, error) {
	parser, err := feed.NewParser(s.parser, domain.LayoutV1, logger)
	if err != nil {
		return feed.Result{}, err
	}

	r, closeFn, err := s.open(ctx, logger)
	if err != nil {
		return feed.Result{}, err
	}
	defer closeFn()

	res, err := parser.Parse(r)
	if err != nil {
		return feed.Result{}, err
	}
	logger.Debug("feed scanned", "records", res.Records, "readings", res.Store.Len(), "skipped", len(res.Skipped))
	return res, nil
}

func (s *sourceOptions) open(ctx context.Context, logger *slog.Logger) (io.Reader, func(), error) {
	if s.file != "" {
		f, err := os.Open(s.file)
		if err != nil {
			return nil, nil, fmt.Errorf("open feed: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	client := noaa.NewClient(s.url, s.timeout, s.userAgent, observability.NewUnregisteredMetrics(), logger)
	body, err := client.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	return bytes.NewReader(body), func() {}, nil
}
