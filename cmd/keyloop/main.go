package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"keyloop/internal/bootstrap"
	practiceinadapter "keyloop/internal/modules/practice/adapter/in"
	practicedto "keyloop/internal/modules/practice/dto"
	"keyloop/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "keyloop",
		Short:         "Section-by-section piano practice from MIDI files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", defaultDataDir(), "data directory (database, journal, config.yaml)")

	root.AddCommand(newInitCmd(&dataDir))
	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newSectionsCmd(&dataDir))
	root.AddCommand(newPlayCmd(&dataDir))
	root.AddCommand(newServeCmd(&dataDir))
	root.AddCommand(newProgressCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newSessionsCmd(&dataDir))
	root.AddCommand(newRecentCmd(&dataDir))
	root.AddCommand(newPrefsCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newImportCmd(&dataDir))
	root.AddCommand(newResetCmd(&dataDir))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keyloop"
	}
	return filepath.Join(home, ".keyloop")
}

func loadConfig(dataDir string) (config.Config, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, fmt.Errorf("create data dir: %w", err)
	}
	return config.New(dataDir)
}

// withApp builds the application, runs fn and releases it again.
func withApp(cmd *cobra.Command, dataDir string, adjust func(*config.Config), fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(&cfg)
	}
	ctx := cmd.Context()
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	runErr := fn(ctx, app)
	closeErr := app.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func newInitCmd(dataDir *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml into the data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filepath.Join(*dataDir, config.FileName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default(*dataDir).Save(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file.mid]",
		Short: "Run the terminal practice UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			// keep log lines off the alternate screen
			logToFile := func(cfg *config.Config) {
				if cfg.LogFile == "" {
					cfg.LogFile = filepath.Join(cfg.DataDir, "keyloop.log")
				}
			}
			return withApp(cmd, *dataDir, logToFile, func(ctx context.Context, app *bootstrap.App) error {
				out, err := bootstrap.RunTUI(ctx, app, path)
				printSummary(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
}

func newSectionsCmd(dataDir *string) *cobra.Command {
	var hand string
	var bars int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sections <file.mid>",
		Short: "Show tracks and practice sections of a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ScoreCLI.Sections(ctx, args[0], hand, bars)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				w := cmd.OutOrStdout()
				song := out.Song
				_, _ = fmt.Fprintf(w, "%s  %.0f bpm  %d/%d  %.1fs  %d notes\n", filepath.Base(song.Path), song.TempoBPM, song.BeatsPerMeasure, song.BeatType, song.Duration, song.NoteCount)
				for _, track := range song.Tracks {
					_, _ = fmt.Fprintf(w, "  track %d  %-20s %5d notes  avg %5.1f  %s\n", track.Index, track.Name, track.NoteCount, track.AvgPitch, track.HandGuess)
				}
				_, _ = fmt.Fprintf(w, "hand=%s bars=%d (%.2fs per bar)\n", out.Segments.Hand, out.Segments.BarsPerSection, out.Segments.TimePerBar)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, section := range out.Segments.Sections {
					_, _ = fmt.Fprintf(tw, "%s\t%d notes\n", section.Label, len(section.Notes))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&hand, "hand", "both", "hand: left|right|both")
	cmd.Flags().IntVar(&bars, "bars", 4, "bars per section (1-16)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newPlayCmd(dataDir *string) *cobra.Command {
	var section, bars, volume int
	var hand string
	var tempo float64
	var loop bool
	cmd := &cobra.Command{
		Use:   "play <file.mid>",
		Short: "Play one section through the configured synth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := practiceinadapter.PlayOptions{Path: args[0], Section: section}
			flags := cmd.Flags()
			if flags.Changed("hand") {
				opts.Settings.Hand = &hand
			}
			if flags.Changed("bars") {
				opts.Settings.BarsPerSection = &bars
			}
			if flags.Changed("tempo") {
				opts.Settings.TempoScale = &tempo
			}
			if flags.Changed("volume") {
				opts.Settings.Volume = &volume
			}
			if flags.Changed("loop") {
				opts.Settings.Loop = &loop
			}
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				app.Start(ctx)
				opts.Poll = app.Config.PollInterval
				w := cmd.OutOrStdout()
				announced := -1
				out, err := app.PracticeCLI.Play(ctx, opts, func(snap practicedto.Snapshot) {
					pb := snap.Playback
					if pb.CurrentSection == announced || pb.CurrentSection >= len(snap.Sections) {
						return
					}
					announced = pb.CurrentSection
					_, _ = fmt.Fprintf(w, "playing %s  tempo %.0f%%  loop %t  (%d notes scheduled)\n",
						snap.Sections[pb.CurrentSection].Label, pb.TempoScale*100, pb.Loop, pb.Scheduled)
				})
				printSummary(w, out)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&section, "section", 0, "1-based section to play (default: last practiced)")
	cmd.Flags().StringVar(&hand, "hand", "both", "hand: left|right|both")
	cmd.Flags().IntVar(&bars, "bars", 4, "bars per section (1-16)")
	cmd.Flags().Float64Var(&tempo, "tempo", 1, "tempo scale (0.25-1.5)")
	cmd.Flags().IntVar(&volume, "volume", 75, "volume (0-100)")
	cmd.Flags().BoolVar(&loop, "loop", false, "loop the section until interrupted")
	return cmd
}

func newServeCmd(dataDir *string) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the practice API for a browser front end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			adjust := func(cfg *config.Config) {
				if listen != "" {
					cfg.Listen = listen
				}
			}
			return withApp(cmd, *dataDir, adjust, func(ctx context.Context, app *bootstrap.App) error {
				return bootstrap.Serve(ctx, app, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	return cmd
}

func newProgressCmd(dataDir *string) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Per-song section progress"}

	progress.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored song progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				records, err := app.ProgressCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no progress")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, r := range records {
					_, _ = fmt.Fprintf(tw, "%s\t%d%%\t%d/%d\tsection %d\t%s\n", r.FileName, r.CompletionPercentage, len(r.CompletedSections), r.TotalSections, r.CurrentSection+1, r.LastPlayed.Local().Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "show <key-or-file-name>",
		Short: "Show progress for one song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				records, err := app.ProgressCLI.Show(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, r := range records {
					completed := make([]string, len(r.CompletedSections))
					for i, index := range r.CompletedSections {
						completed[i] = fmt.Sprint(index + 1)
					}
					_, _ = fmt.Fprintf(w, "key: %s\nfile: %s\ncurrent section: %d of %d\ncompleted: %s (%d%%)\nlast played: %s\n\n",
						r.Key, r.FileName, r.CurrentSection+1, r.TotalSections, strings.Join(completed, ", "), r.CompletionPercentage, r.LastPlayed.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	})
	return progress
}

func newStatsCmd(dataDir *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice statistics and streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				stats, err := app.SessionCLI.Stats(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "today: %.1f min, %d sections, %d notes\n", stats.Today.Minutes, stats.Today.SectionsCompleted, stats.Today.NotesPlayed)
				_, _ = fmt.Fprintf(w, "total: %s, %d sections, %d sessions\n", stats.TotalFormatted, stats.SectionsCompleted, stats.SessionsCompleted)
				_, _ = fmt.Fprintf(w, "streak: %d day(s)\n", stats.Streak)
				if stats.LastSession != nil {
					_, _ = fmt.Fprintf(w, "last session: %s\n", stats.LastSession.Local().Format(time.DateTime))
				}
				for _, day := range stats.Days {
					_, _ = fmt.Fprintf(w, "  %s  %6.1f min  %3d sections  %4d notes\n", day.Date, day.Minutes, day.SectionsCompleted, day.NotesPlayed)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newSessionsCmd(dataDir *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent practice sessions from the journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				sessions, err := app.SessionCLI.History(ctx, limit)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, s := range sessions {
					_, _ = fmt.Fprintf(tw, "%s\t%.2f min\t%d sections\t%d notes\t%s\n", s.StartedAt.Local().Format(time.DateTime), s.DurationMinutes, s.SectionsCompleted, s.NotesPlayed, s.SongTitle)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list")
	return cmd
}

func newRecentCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently opened files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				files, err := app.StorageCLI.RecentFiles(ctx)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recent files")
					return nil
				}
				for _, f := range files {
					path := f.Path
					if path == "" {
						path = f.Name
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", time.UnixMilli(f.LastOpened).Local().Format(time.DateTime), path)
				}
				return nil
			})
		},
	}
}

func newPrefsCmd(dataDir *string) *cobra.Command {
	prefs := &cobra.Command{Use: "prefs", Short: "Show or change preferences"}

	prefs.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				p, err := app.StorageCLI.Preferences(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), p)
			})
		},
	})

	prefs.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Set one preference (tempo, volume, hand, bars, loop, theme)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				p, err := app.StorageCLI.SetPreference(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), p)
			})
		},
	})
	return prefs
}

func newExportCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export [out.json]",
		Short: "Export all stored data as one JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				if len(args) == 0 {
					return app.StorageCLI.Export(ctx, cmd.OutOrStdout())
				}
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("create %s: %w", args[0], err)
				}
				if err := app.StorageCLI.Export(ctx, f); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
}

func newImportCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <in.json>",
		Short: "Import a backup; namespaces absent from it are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.StorageCLI.Import(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported: %s\n", strings.Join(out.Namespaces, ", "))
				return nil
			})
		},
	}
}

func newResetCmd(dataDir *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored preferences, progress, stats and recent files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all stored data; pass --yes to confirm")
			}
			return withApp(cmd, *dataDir, nil, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.StorageCLI.Reset(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func printSummary(w io.Writer, out practicedto.CloseOutput) {
	if !out.Session.Recorded {
		return
	}
	s := out.Session.Session
	_, _ = fmt.Fprintf(w, "session: %.2f min, %d sections completed, %d notes played\n", s.DurationMinutes, s.SectionsCompleted, s.NotesPlayed)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
