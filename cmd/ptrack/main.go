// Package main provides the CLI entrypoint for ptrack.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/verte-zerg/ptrack/internal/app"
	"github.com/verte-zerg/ptrack/internal/catalog"
	"github.com/verte-zerg/ptrack/internal/config"
	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/historyui"
	"github.com/verte-zerg/ptrack/internal/logging"
	"github.com/verte-zerg/ptrack/internal/model"
	"github.com/verte-zerg/ptrack/internal/stats"
	"github.com/verte-zerg/ptrack/internal/store"
	"github.com/verte-zerg/ptrack/internal/tui"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the viper instance shared by a command tree.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}
	rootCmd := &cobra.Command{
		Use:           "ptrack",
		Short:         "TUI physical therapy exercise tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          c.runTrackerCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyStorage, config.DefaultBackend, "storage backend (sqlite or memory)")
	flags.String(config.KeyDB, config.DefaultDBPath(), "sqlite database path")
	flags.String(config.KeyStorageKey, config.DefaultStorageKey, "key the tracker state is stored under")
	flags.Int(config.KeyMemoryMB, config.DefaultMemoryMB, "memory backend size in MiB")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String(config.KeyLogFile, config.DefaultLogPath(), "log file, empty disables file logging")
	flags.Bool(config.KeyLogJSON, false, "write JSON log lines")
	flags.Bool(config.KeyLogStderr, false, "also log to stderr (ignored by TUI commands)")
	for _, key := range []string{
		config.KeyStorage, config.KeyDB, config.KeyStorageKey, config.KeyMemoryMB,
		config.KeyLogLevel, config.KeyLogFile, config.KeyLogJSON, config.KeyLogStderr,
	} {
		if err := c.v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", key, err))
		}
	}

	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newExercisesCmd())
	rootCmd.AddCommand(c.newAddCmd())
	rootCmd.AddCommand(c.newDoCmd())
	rootCmd.AddCommand(c.newExportCmd())
	rootCmd.AddCommand(c.newImportCmd())
	rootCmd.AddCommand(c.newClearHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// session is an opened tracker: resolved settings, logger, store and app.
type session struct {
	settings config.Settings
	kv       store.KV
	logs     io.Closer
	app      *app.App
}

// open resolves settings, configures logging and loads the tracker.
// Interactive sessions never log to stderr since the TUI owns the terminal.
func (c *cli) open(ctx context.Context, interactive bool) (*session, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := config.Resolve(c.v, fileCfg)
	if err != nil {
		return nil, err
	}

	params := logging.Params{
		Level:  settings.LogLevel,
		JSON:   settings.LogJSON,
		File:   settings.LogFile,
		Stderr: settings.LogStderr && !interactive,
	}
	if interactive {
		params.Fallback = io.Discard
	}
	logs := logging.Setup(params)

	kv, err := openKV(settings)
	if err != nil {
		// Best-effort close of the log file.
		_ = logs.Close()
		return nil, err
	}
	if settings.Backend == config.BackendMemory && !interactive {
		logErrln("memory storage: changes are lost when ptrack exits")
	}
	log.WithFields(log.Fields{"backend": settings.Backend, "key": settings.Key}).Debug("storage opened")

	a := app.New(ctx, app.Deps{
		Store:    store.NewGateway(kv, settings.Key),
		Calendar: dates.Calendar{},
	})
	if err := a.LoadError(); err != nil && !interactive {
		logErrf("warning: saved data is unreadable and left untouched until the next change: %v\n", err)
	}
	return &session{settings: settings, kv: kv, logs: logs, app: a}, nil
}

func (s *session) Close() {
	if err := s.app.SaveError(); err != nil {
		if errors.Is(err, store.ErrValueTooLarge) {
			logErrf("warning: changes were not saved, raise --%s: %v\n", config.KeyMemoryMB, err)
		} else {
			logErrf("warning: changes were not saved: %v\n", err)
		}
	}
	if err := s.kv.Close(); err != nil {
		logErrf("failed to close storage: %v\n", err)
	}
	if err := s.logs.Close(); err != nil {
		logErrf("failed to close log file: %v\n", err)
	}
}

func openKV(settings config.Settings) (store.KV, error) {
	switch settings.Backend {
	case config.BackendMemory:
		return store.NewMemory(settings.MemoryMB << 20), nil
	default:
		kv, err := store.Open(settings.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return kv, nil
	}
}

func (c *cli) runTrackerCmd(cmd *cobra.Command, _ []string) error {
	s, err := c.open(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	program := tea.NewProgram(tui.NewModel(s.app), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run tracker: %w", err)
	}
	return nil
}

func (c *cli) newHistoryCmd() *cobra.Command {
	var date string
	var plain bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse exercise history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interactive := !plain && isTerminal(os.Stdout)
			s, err := c.open(cmd.Context(), interactive)
			if err != nil {
				return err
			}
			defer s.Close()

			a := s.app
			cal := a.Calendar()
			if date != "" {
				key, err := cal.NormalizeKey(date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				date = key
			}

			if interactive {
				m := historyui.NewModel(cal, a.History(), a.ExerciseName, date)
				if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
					return fmt.Errorf("failed to run history: %w", err)
				}
				return nil
			}

			out := cmd.OutOrStdout()
			if date == "" {
				return stats.RenderHistory(out, cal, a.History(), a.ExerciseName)
			}
			rec := a.Record(date)
			rec.Date = date
			return stats.RenderDay(out, cal, rec, a.ExerciseName)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "show a single day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print plain text instead of the browser")
	return cmd
}

func (c *cli) newExercisesCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List exercises with today's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			a := s.app
			list := a.Exercises()
			if search != "" {
				list = a.SearchExercises(search)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				_, err := fmt.Fprintln(out, "No exercises found.")
				return err
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Name", "Sets", "Reps", "Per Rep", "Today", "ID"})
			for _, ex := range list {
				p, _ := a.Progress(ex.ID)
				today := fmt.Sprintf("%d/%d", p.CompletedSets, ex.Sets)
				if p.HasOpen {
					today += fmt.Sprintf(" (rep %d/%d)", p.CompletedReps(), ex.Reps)
				}
				tw.AppendRow(table.Row{ex.Name, ex.Sets, ex.Reps, dates.FormatDuration(ex.Duration), today, ex.ID})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name or description")
	return cmd
}

func (c *cli) newAddCmd() *cobra.Command {
	var d model.ExerciseDraft
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an exercise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			ex, err := s.app.AddExercise(d)
			if err != nil {
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("invalid exercise: %w", verr)
				}
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", ex.Name, ex.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&d.Name, "name", "", "exercise name")
	cmd.Flags().IntVar(&d.Sets, "sets", 3, "sets per day")
	cmd.Flags().IntVar(&d.Reps, "reps", 10, "reps per set")
	cmd.Flags().IntVar(&d.Duration, "duration", 30, "seconds per rep")
	cmd.Flags().StringVar(&d.Description, "description", "", "optional description")
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of exercises and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			path, err := store.Export(s.app.Snapshot(), s.settings.BackupDir, s.app.Calendar().Today())
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat backup: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
			return err
		},
	}
	cmd.Flags().String("dir", config.DefaultBackupDir, "directory for the backup file")
	if err := c.v.BindPFlag(config.KeyBackupDir, cmd.Flags().Lookup("dir")); err != nil {
		panic(fmt.Sprintf("failed to bind flag dir: %v", err))
	}
	return cmd
}

func (c *cli) newImportCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all exercises and history from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}
			state := store.Import(data)
			if state == nil {
				return fmt.Errorf("%s is not a valid ptrack backup", args[0])
			}
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf(
					"Replace everything with %d exercises and %d days of history?",
					len(state.Exercises), len(state.History)))
				if err != nil || !ok {
					return err
				}
			}

			s, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.app.ImportSnapshot(*state)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d exercises and %d days\n",
				len(state.Exercises), len(state.History))
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (c *cli) newClearHistoryCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-history",
		Short: "Delete all recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := confirm(cmd, "Delete all exercise history?")
				if err != nil || !ok {
					return err
				}
			}
			s, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.app.ClearHistory()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

// confirm asks a yes/no question on the command's input. Anything but y or
// yes declines.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	logErrln("Aborted.")
	return false, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func isTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
