package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"studyhub/internal/bootstrap"
	timerdto "studyhub/internal/modules/timer/dto"
)

func newTimerCmd(flags *globalFlags) *cobra.Command {
	timer := &cobra.Command{Use: "timer", Short: "Control the focus timer"}

	var mode, subject string
	start := &cobra.Command{
		Use:   "start",
		Short: "Start or resume the timer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.TimerCLI.Start(ctx, mode, subject)
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
	start.Flags().StringVar(&mode, "mode", "", "stopwatch|pomodoro|short-break|long-break (only from idle)")
	start.Flags().StringVar(&subject, "subject", "", "subject id")

	pause := &cobra.Command{
		Use:   "pause",
		Short: "Pause the running timer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.TimerCLI.Pause(ctx)
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and record the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TimerCLI.Stop(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if out.Session == nil {
					_, _ = fmt.Fprintf(w, "discarded %s (below minimum)\n", out.Elapsed.Round(time.Second))
					return nil
				}
				_, _ = fmt.Fprintf(w, "saved session %s  %s  +%d XP\n", out.Session.ID, out.Elapsed.Round(time.Second), out.XPAwarded)
				if out.LeveledUp {
					_, _ = fmt.Fprintf(w, "level up! %d -> %d\n", out.LevelBefore, out.LevelAfter)
				}
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show timer state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.TimerCLI.Status(ctx)
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	setMode := &cobra.Command{
		Use:   "mode <mode>",
		Short: "Change mode while idle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.TimerCLI.SetMode(ctx, args[0])
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	setSubject := &cobra.Command{
		Use:   "subject [id]",
		Short: "Set or clear the timer subject",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.TimerCLI.SetSubject(ctx, id)
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	timer.AddCommand(start, pause, stop, status, setMode, setSubject)
	return timer
}

func printTimer(w io.Writer, st timerdto.StatusOutput) {
	_, _ = fmt.Fprintf(w, "%s  %s  elapsed %s", st.Status, st.Mode, st.Elapsed.Round(time.Second))
	if st.Target > 0 {
		_, _ = fmt.Fprintf(w, "  remaining %s", st.Remaining.Round(time.Second))
		if st.TargetReached {
			_, _ = fmt.Fprint(w, "  (target reached)")
		}
	}
	if st.SubjectID != "" {
		_, _ = fmt.Fprintf(w, "  subject %s", st.SubjectID)
	}
	_, _ = fmt.Fprintln(w)
}

func newSoundCmd(flags *globalFlags) *cobra.Command {
	sound := &cobra.Command{Use: "sound", Short: "Manage custom timer sounds"}

	sound.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List custom sounds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				sounds, err := app.TimerCLI.Sounds(ctx)
				if err != nil {
					return err
				}
				if len(sounds) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no custom sounds")
				}
				for _, s := range sounds {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", s.ID, s.Label, s.Src)
				}
				return nil
			})
		},
	})

	sound.AddCommand(&cobra.Command{
		Use:   "add <label> <src>",
		Short: "Add a custom sound",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.TimerCLI.AddSound(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", s.Label, s.ID)
				return nil
			})
		},
	})

	sound.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a custom sound",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				return app.TimerCLI.RemoveSound(ctx, args[0])
			})
		},
	})
	return sound
}

func formatMillis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}
