package cli

import (
	"log"

	"ThemeSentinel/internal/breakout"
	"ThemeSentinel/internal/collector"
	"ThemeSentinel/internal/config"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/recorder"
	"ThemeSentinel/internal/strategy"
)

// app holds the services shared by every subcommand.
type app struct {
	cfg       *config.Config
	tiers     *strategy.TierClassifier
	data      *dataset.Holder
	fetcher   collector.Fetcher
	rec       recorder.Recorder
	breakouts *breakout.Service
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tiers, err := cfg.TierClassifier()
	if err != nil {
		return nil, err
	}
	params, err := cfg.BandParams()
	if err != nil {
		return nil, err
	}

	fetcher := newFetcher(cfg)
	log.Printf("[INFO] price source: %s", fetcher.Name())

	rec := openRecorder(cfg.Database.SQLitePath)
	data := dataset.NewHolder(dataset.NewLoader(cfg.Sources(), tiers))
	scanner := collector.NewScanner(fetcher, params, cfg.Band.Workers)

	return &app{
		cfg:       cfg,
		tiers:     tiers,
		data:      data,
		fetcher:   fetcher,
		rec:       rec,
		breakouts: breakout.NewService(data, scanner, rec, cfg.Band.Limit),
	}, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.Data.PriceSource {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewCSVFetcher(cfg.Data.PriceDir)
	}
}

func openRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func (a *app) Close() {
	if err := a.rec.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
}
