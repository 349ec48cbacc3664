// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielhkuo/featurevotes/featuresync"
)

// API is everything the interactive client needs from the server.
type API interface {
	featuresync.API
	Creator
}

type Config struct {
	API         API
	Preferences Preferences
	Version     string
	// Interval between background refreshes; zero uses the controller default.
	Interval time.Duration
	Logger   *slog.Logger
}

// Run starts the sync controller and blocks until the user quits or ctx is
// canceled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	created := featuresync.NewSignal()

	var p *tea.Program
	opts := []featuresync.Option{
		featuresync.WithSignal(created),
		featuresync.WithLogger(logger),
		featuresync.WithOnChange(func(s featuresync.State) { p.Send(StateMsg(s)) }),
	}
	if cfg.Interval > 0 {
		opts = append(opts, featuresync.WithInterval(cfg.Interval))
	}
	ctrl := featuresync.NewController(cfg.API, opts...)

	var theme string
	if cfg.Preferences != nil {
		theme = cfg.Preferences.Get().Theme
	}

	model := New(Options{
		Controller:   ctrl,
		Creator:      cfg.API,
		Preferences:  cfg.Preferences,
		Created:      created,
		Version:      cfg.Version,
		DefaultTheme: resolveTheme(theme),
		Bell:         os.Stdout,
		Logger:       logger,
	})

	p = tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	ctrl.Start()
	defer ctrl.Stop()

	logger.Info("starting interactive client")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("interactive client: %w", err)
	}
	return nil
}
