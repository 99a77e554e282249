package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"studyhub/internal/bootstrap"
	syncdto "studyhub/internal/modules/sync/dto"
)

func newSyncCmd(flags *globalFlags) *cobra.Command {
	syncCmd := &cobra.Command{Use: "sync", Short: "Mirror records to the remote document store"}

	var user, token string
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and pull every collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SyncCLI.Login(ctx, user, token)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", user)
				printPull(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	login.Flags().StringVar(&user, "user", "", "remote user id")
	login.Flags().StringVar(&token, "token", "", "bearer token")
	_ = login.MarkFlagRequired("user")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SyncCLI.Logout(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}

	now := &cobra.Command{
		Use:   "now",
		Short: "Pull every collection from the remote",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SyncCLI.Now(ctx)
				if err != nil {
					return err
				}
				printPull(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show identity, outbox and last pull",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.SyncCLI.Status(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				switch {
				case s.LocalOnly:
					_, _ = fmt.Fprintf(w, "local only: %s\n", s.Reason)
				case s.SignedIn:
					_, _ = fmt.Fprintf(w, "signed in as %s\n", s.UserID)
				default:
					_, _ = fmt.Fprintln(w, "signed out")
				}
				if s.OutboxEnabled {
					_, _ = fmt.Fprintf(w, "outbox: %d pending\n", s.Pending)
				}
				if !s.LastPull.IsZero() {
					_, _ = fmt.Fprintf(w, "last pull: %s\n", s.LastPull.Local().Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	syncCmd.AddCommand(login, logout, now, status)
	return syncCmd
}

func printPull(w io.Writer, out syncdto.PullOutput) {
	for _, c := range out.Collections {
		if c.Error != "" {
			_, _ = fmt.Fprintf(w, "  %-10s failed: %s\n", c.Name, c.Error)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %-10s %d pulled, %d skipped", c.Name, c.Pulled, c.Skipped)
		if c.Held > 0 {
			_, _ = fmt.Fprintf(w, ", %d kept local (queued)", c.Held)
		}
		_, _ = fmt.Fprintln(w)
	}
	if out.Flushed > 0 {
		_, _ = fmt.Fprintf(w, "flushed %d queued writes\n", out.Flushed)
	}
}
