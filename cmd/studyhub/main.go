package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"studyhub/internal/bootstrap"
	"studyhub/internal/platform/config"
	"studyhub/internal/platform/events"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir    string
	configFile string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{dataDir: defaultDataDir()}

	root := &cobra.Command{
		Use:           "studyhub",
		Short:         "Local-first study timer, planner and journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", flags.dataDir, "data directory")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default <data>/studyhub.yaml)")

	root.AddCommand(
		newTimerCmd(flags),
		newSoundCmd(flags),
		newSessionCmd(flags),
		newRecordCmd(flags),
		newCategoryCmd(flags),
		newTaskCmd(flags),
		newJournalCmd(flags),
		newExamCmd(flags),
		newChatCmd(flags),
		newSyncCmd(flags),
		newBackupCmd(flags),
		newXPCmd(flags),
		newTUICmd(flags),
		newMirrorCmd(flags),
	)
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studyhub"
	}
	return filepath.Join(home, ".studyhub")
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	return config.Load(flags.dataDir, flags.configFile)
}

// withApp builds the application for one command and always closes it, so
// queued mirror pushes get a chance to finish before the process exits.
func withApp(cmd *cobra.Command, flags *globalFlags, run func(ctx context.Context, app *bootstrap.App) error) (err error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	unsubscribe := noticeAuthRejected(app.Bus, cmd.ErrOrStderr())
	defer func() {
		if closeErr := app.Close(); err == nil {
			err = closeErr
		}
		unsubscribe()
	}()
	return run(cmd.Context(), app)
}

// noticeAuthRejected prints the first credential rejection to w. Pushes run
// on a background worker, so this may fire while app.Close drains them.
func noticeAuthRejected(bus *events.Bus, w io.Writer) func() {
	var once sync.Once
	return bus.AuthRejected.Subscribe(func(e events.AuthRejected) {
		once.Do(func() {
			_, _ = fmt.Fprintf(w, "studyhub: remote rejected credentials for %s, working local-only (%s)\n", e.UserID, e.Reason)
			_, _ = fmt.Fprintln(w, "studyhub: run `studyhub sync login` with a fresh token to resume syncing")
		})
	})
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(ctx, app)
			})
		},
	}
}

func newXPCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "xp",
		Short: "Show level, XP and today's focus time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.Progress.Summary(ctx)
				if err != nil {
					return err
				}
				p := s.Progress
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "level %d  %d XP  (%.0f%% to level %d at %d XP)\n", p.Level, p.XP, p.Percent, p.NextLevel, p.NextLevelXP)
				_, _ = fmt.Fprintf(out, "sessions %d  today %s of %.1fh (%.0f%%)\n",
					s.SessionCount, formatMillis(s.TodayMs), s.TargetHours, s.TodayPercent)
				return nil
			})
		},
	}
}
