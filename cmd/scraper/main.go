package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"table-scraper/internal/config"
	"table-scraper/internal/crawler"
	"table-scraper/internal/crawler/engine"
	scraperlog "table-scraper/internal/log"
	"table-scraper/internal/storage"
	"table-scraper/pkg/models"
)

// URLs to scrape
var urls = []string{
	"https://example.com/page1",
	"https://example.com/page2",
	"https://example.com/page3",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	plugin, closer, err := scraperlog.NewFilePlugin(cfg.LogFile, zap.InfoLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()
	// Errors also go to stderr so a failed run is visible without opening the log.
	core := zapcore.NewTee(plugin, scraperlog.NewStderrPlugin(zap.ErrorLevel))
	logger := scraperlog.NewLogger(core).With(zap.String("run_id", uuid.NewString()))
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger, urls); err != nil {
		logger.Error("could not write output", zap.Error(err))
		log.Fatal(err)
	}
}

// run wires fetcher, engine and sinks from cfg and scrapes urls once.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, urls []string) error {
	var fetcher crawler.Fetcher
	switch cfg.Fetcher {
	case "browser":
		fetcher = crawler.NewBrowserFetcher(cfg.FetchTimeout, cfg.UserAgent)
	default:
		fetcher = crawler.NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent)
	}

	engineCfg := engine.Config{
		Politeness: engine.NewPoliteness(cfg.Delay),
		Logger:     logger,
	}
	if cfg.RespectRobots {
		engineCfg.Guard = crawler.NewRobotsGuard(nil, cfg.UserAgent)
	}

	sinks := []engine.Sink[models.Record]{storage.NewCSVSink(cfg.OutputFile)}
	if cfg.DatabaseURL != "" {
		db, err := storage.Open(cfg.DatabaseURL, 10, 2*time.Second)
		if err != nil {
			return err
		}
		defer db.Close()
		sinks = append(sinks, storage.NewPostgresSink(db))
	}

	processor := &crawler.RecordProcessor{Parser: crawler.NewParser(fetcher)}
	scraper := engine.NewEngine[models.Record](engineCfg, processor, sinks...)

	return scraper.Run(ctx, urls...)
}
