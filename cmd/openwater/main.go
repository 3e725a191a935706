package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/openwater-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/openwater-etl/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/openwater-etl/internal/adapter/mqtt"
	"github.com/couchcryptid/openwater-etl/internal/adapter/noaa"
	"github.com/couchcryptid/openwater-etl/internal/adapter/recipients"
	"github.com/couchcryptid/openwater-etl/internal/config"
	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/couchcryptid/openwater-etl/internal/feed"
	"github.com/couchcryptid/openwater-etl/internal/observability"
	"github.com/couchcryptid/openwater-etl/internal/pipeline"
	"github.com/couchcryptid/openwater-etl/internal/report"
)

type sink interface {
	pipeline.BatchLoader
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	parser, err := feed.NewParser(cfg.FeedParser, domain.LayoutV1, logger)
	if err != nil {
		logger.Error("failed to create feed parser", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := newSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect notification sink", "sink", cfg.NotifySink, "error", err)
		os.Exit(1)
	}

	fetcher := noaa.NewClient(cfg.FeedURL, cfg.FeedTimeout, cfg.FeedUserAgent, metrics, logger)
	source := recipients.NewFileSource(cfg.RecipientsFile, logger)
	assembler := report.NewAssembler(cfg.ReportFrom, cfg.ReportSubject)

	p := pipeline.New(fetcher, parser, source, assembler, out, logger, metrics, pipeline.Options{
		Interval:           cfg.PollInterval,
		MaxPublishAttempts: cfg.MaxPublishAttempts,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, metrics, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline. A zero poll interval runs once and then shuts the
	// service down.
	go runPipeline(ctx, stop, p, cfg.PollInterval <= 0, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := out.Close(); err != nil {
		logger.Error("sink close error", "sink", cfg.NotifySink, "error", err)
	}

	logger.Info("shutdown complete")
}

type runner interface {
	Run(ctx context.Context) error
}

func runPipeline(ctx context.Context, stop context.CancelFunc, p runner, once bool, logger *slog.Logger) {
	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline error", "error", err)
	}
	if once {
		logger.Info("single run finished")
		stop()
	}
}

func newSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sink, error) {
	if cfg.NotifySink == config.SinkMQTT {
		pub := mqttadapter.NewPublisher(cfg, logger)
		if err := pub.Connect(ctx); err != nil {
			_ = pub.Close()
			return nil, err
		}
		return pub, nil
	}
	return kafkaadapter.NewWriter(cfg, logger), nil
}
