// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package main provides the featurevotes client: an interactive terminal UI
// plus scriptable list/add/upvote subcommands against a FeatureVotes API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/featurevotes/client"
	"github.com/danielhkuo/featurevotes/featuresync"
	"github.com/danielhkuo/featurevotes/models"
	"github.com/danielhkuo/featurevotes/settings"
	"github.com/danielhkuo/featurevotes/tui"
)

// Set with -ldflags "-X main.Version=... -X main.BuildTime=..."
var (
	Version   = "1.0.0"
	BuildTime = "dev"
)

const appName = "featurevotes"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	apiURL   string
	logLevel string
	logFile  string

	out     io.Writer
	logger  *slog.Logger
	logSink io.Closer
	api     *client.Client
}

func rootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Vote on feature requests",
		Long: `featurevotes talks to a FeatureVotes API server.

Run without arguments for the interactive list. The API location comes from
--api-url, then $` + client.EnvBaseURL + `, then the built-in default.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL (default $"+client.EnvBaseURL+" or "+client.DefaultBaseURL+")")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Write logs to this file (logs are discarded otherwise)")

	cmd.AddCommand(a.listCmd(), a.addCmd(), a.upvoteCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func (a *app) setup() error {
	level := parseLevel(a.logLevel)

	var sink io.Writer = io.Discard
	if a.logFile != "" {
		f, err := tea.LogToFile(a.logFile, appName)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logSink = f
		sink = f
	}

	a.logger = slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	baseURL := client.ResolveBaseURL(a.apiURL)
	a.api = client.New(baseURL, client.WithUserAgent(appName+"/"+Version))
	a.logger.Debug("client configured", "api_url", baseURL)
	return nil
}

func (a *app) teardown() error {
	if a.logSink != nil {
		return a.logSink.Close()
	}
	return nil
}

func (a *app) runInteractive(ctx context.Context) error {
	var prefs tui.Preferences
	if path, err := settings.DefaultPath(); err != nil {
		a.logger.Warn("settings unavailable", "error", err)
	} else {
		store, err := settings.Open(path)
		if err != nil {
			a.logger.Warn("failed to load settings, using defaults", "path", path, "error", err)
		}
		prefs = store
	}

	return tui.Run(ctx, tui.Config{
		API:         a.api,
		Preferences: prefs,
		Version:     "v" + Version,
		Logger:      a.logger,
	})
}

func (a *app) listCmd() *cobra.Command {
	var (
		sortMode string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feature requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !featuresync.ValidSortMode(sortMode) {
				return fmt.Errorf("invalid sort %q (want %s or %s)", sortMode, models.SortTop, models.SortNewest)
			}

			features, err := a.api.ListFeatures(cmd.Context())
			if err != nil {
				return err
			}
			features = featuresync.Sort(features, sortMode)

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(features)
			}
			return writeFeatures(a.out, features, time.Now(), useColor(a.out))
		},
	}

	cmd.Flags().StringVar(&sortMode, "sort", models.SortTop, "Sort order (top, newest)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Suggest a new feature",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return errors.New("title is required")
			}

			f, err := a.api.CreateFeature(cmd.Context(), title)
			if err != nil {
				return err
			}
			a.logger.Info("feature created", "feature_id", f.ID)
			fmt.Fprintf(a.out, "Created #%d %s\n", f.ID, f.Title)
			return nil
		},
	}
}

func (a *app) upvoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upvote <id>",
		Short: "Add a vote to a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid feature id %q", args[0])
			}

			f, err := a.api.UpvoteFeature(cmd.Context(), id)
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("feature #%d not found", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Upvoted #%d %s (%s)\n", f.ID, f.Title, votesLabel(f.Votes))
			return nil
		},
	}
}

// writeFeatures prints one aligned row per feature.
func writeFeatures(w io.Writer, features []models.Feature, now time.Time, color bool) error {
	if len(features) == 0 {
		_, err := fmt.Fprintln(w, "No features yet. Be the first to suggest one.")
		return err
	}

	var (
		votesStyle = lipgloss.NewStyle()
		mutedStyle = lipgloss.NewStyle()
	)
	if color {
		votesStyle = votesStyle.Bold(true).Foreground(lipgloss.Color("75"))
		mutedStyle = mutedStyle.Foreground(lipgloss.Color("245"))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVOTES\tTITLE\tCREATED")
	for _, f := range features {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			f.ID,
			votesStyle.Render(strconv.Itoa(f.Votes)),
			f.Title,
			mutedStyle.Render(humanize.RelTime(f.CreatedAt, now, "ago", "from now")),
		)
	}
	return tw.Flush()
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func votesLabel(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return fmt.Sprintf("%d votes", n)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
