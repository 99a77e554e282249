package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"studyhub/internal/bootstrap"
)

func newBackupCmd(flags *globalFlags) *cobra.Command {
	backup := &cobra.Command{Use: "backup", Short: "Export and import full backups"}

	export := &cobra.Command{
		Use:   "export <path|->",
		Short: "Write every collection and local preference to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.BackupCLI.Export(ctx, args[0], cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if out.Path != "" {
					printCounts(cmd.ErrOrStderr(), "exported", out.Counts, out.Local)
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out.Path)
				}
				return nil
			})
		},
	}

	imp := &cobra.Command{
		Use:   "import <path|->",
		Short: "Merge a backup into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.BackupCLI.Import(ctx, args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				printCounts(cmd.OutOrStdout(), "imported", out.Counts, out.Local)
				return nil
			})
		},
	}

	journal := &cobra.Command{
		Use:   "journal-md <dir>",
		Short: "Write journal entries as dated markdown notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.BackupCLI.JournalMarkdown(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d notes under %s\n", out.Notes, out.Dir)
				return nil
			})
		},
	}

	backup.AddCommand(export, imp, journal)
	return backup
}

func printCounts(w io.Writer, verb string, counts map[string]int, local int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %-10s %d\n", name, counts[name])
	}
	_, _ = fmt.Fprintf(w, "%s %d local keys\n", verb, local)
}
