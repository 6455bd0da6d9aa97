package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/user/linkfind/internal/classify"
	"github.com/user/linkfind/internal/config"
	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/extract"
	"github.com/user/linkfind/internal/organizer"
)

// app holds what most commands need: config, logger, store and organiser.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *db.Store
	organizer *organizer.Organizer
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(level string, w io.Writer, json bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadClassifier(cfg *config.Config) (*classify.Classifier, error) {
	tables, err := classify.LoadTables(cfg.Classifier.TablesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword tables: %w", err)
	}
	return classify.New(tables), nil
}

// openApp loads configuration and opens the store. jsonLogs switches the
// logger to JSON, which serve uses.
func openApp(jsonLogs bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// The CLI stays quiet unless asked; the server logs requests at info.
	level := cfg.LogLevel
	if !jsonLogs && !verbose {
		level = "warn"
	}
	logger := newLogger(level, os.Stderr, jsonLogs)
	slog.SetDefault(logger)

	classifier, err := loadClassifier(cfg)
	if err != nil {
		return nil, err
	}

	store, err := db.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	extractor := extract.New(extract.Config{
		Timeout:      cfg.Extractor.Timeout,
		UserAgent:    cfg.Extractor.UserAgent,
		MaxBodyBytes: cfg.Extractor.MaxBodyBytes,
	}, logger)

	opts := organizer.Options{Logger: logger}
	if cfg.Enrich.Enabled {
		opts.Enricher = organizer.NewSummarizer(cfg.LLM)
		opts.AutoEnrich = true
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		organizer: organizer.New(store, classifier, extractor, opts),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
