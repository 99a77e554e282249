package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"studyhub/internal/bootstrap"
	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/platform/clock"
)

func newSessionCmd(flags *globalFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Manage recorded study sessions"}

	var subject, startAt string
	var duration time.Duration
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a session by hand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}
			end := time.Now()
			start := end.Add(-duration)
			if startAt != "" {
				t, err := time.Parse(time.RFC3339, startAt)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				start, end = t, t.Add(duration)
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.RecordCLI.AddSession(ctx, subject, clock.Millis(start), clock.Millis(end))
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added session %s on %s (%s)\n", s.ID, s.DateString, formatMillis(s.DurationMs))
				return nil
			})
		},
	}
	add.Flags().StringVar(&subject, "subject", "", "subject id")
	add.Flags().StringVar(&startAt, "start", "", "start time RFC3339 (default: now minus duration)")
	add.Flags().DurationVar(&duration, "duration", 25*time.Minute, "session length")

	var date string
	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions, optionally for one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				sessions, err := app.RecordCLI.Sessions(ctx, date)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-9s  %s\n", s.ID, s.DateString, formatMillis(s.DurationMs), s.SubjectID)
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&date, "date", "", "YYYY-MM-DD")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				return app.RecordCLI.Delete(ctx, string(recorddto.Sessions), args[0])
			})
		},
	}

	var editSubject, editStart, editEnd string
	var editDuration time.Duration
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a session in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := recorddto.EditSessionInput{ID: args[0]}
			if cmd.Flags().Changed("subject") {
				input.SubjectID = &editSubject
			}
			if editStart != "" {
				t, err := time.Parse(time.RFC3339, editStart)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				ms := clock.Millis(t)
				input.StartTime = &ms
				if editDuration > 0 {
					end := clock.Millis(t.Add(editDuration))
					input.EndTime = &end
				}
			} else if editDuration > 0 {
				return fmt.Errorf("--duration needs --start")
			}
			if editEnd != "" {
				t, err := time.Parse(time.RFC3339, editEnd)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				ms := clock.Millis(t)
				input.EndTime = &ms
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.RecordCLI.EditSession(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated session %s on %s (%s)\n", s.ID, s.DateString, formatMillis(s.DurationMs))
				return nil
			})
		},
	}
	edit.Flags().StringVar(&editSubject, "subject", "", "subject id")
	edit.Flags().StringVar(&editStart, "start", "", "start time RFC3339")
	edit.Flags().StringVar(&editEnd, "end", "", "end time RFC3339")
	edit.Flags().DurationVar(&editDuration, "duration", 0, "length from --start")

	session.AddCommand(add, list, edit, del)
	return session
}

func newRecordCmd(flags *globalFlags) *cobra.Command {
	record := &cobra.Command{Use: "record", Short: "Raw access to any collection"}

	var date string
	list := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print records as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				rows, err := app.RecordCLI.List(ctx, args[0], date)
				if err != nil {
					return err
				}
				for _, row := range rows {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(row))
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (sessions and journal only)")

	var byDate string
	del := &cobra.Command{
		Use:   "delete <collection> [id]",
		Short: "Delete one record, or every record of a day with --date",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				if byDate != "" {
					out, err := app.RecordCLI.DeleteByDate(ctx, args[0], byDate)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d from %s\n", out.Removed, out.Collection)
					return nil
				}
				if len(args) != 2 {
					return fmt.Errorf("an id or --date is required")
				}
				if c, err := recorddto.ParseCollection(args[0]); err == nil && c == recorddto.Categories {
					return deleteCategory(ctx, cmd, app, args[1])
				}
				return app.RecordCLI.Delete(ctx, args[0], args[1])
			})
		},
	}
	del.Flags().StringVar(&byDate, "date", "", "delete every record of this day")

	clearCmd := &cobra.Command{
		Use:   "clear <collection>",
		Short: "Remove every record of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.RecordCLI.Clear(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d from %s\n", out.Removed, out.Collection)
				if out.Archived > 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "archived %d still referenced\n", out.Archived)
				}
				return nil
			})
		},
	}

	put := &cobra.Command{
		Use:   "put <collection> [file|-]",
		Short: "Upsert one record by id from JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 2 {
				src = args[1]
			}
			body, err := readInput(cmd, src)
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				r, err := app.RecordCLI.Put(ctx, args[0], body)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s\n", r.Collection(), r.RecordID())
				return nil
			})
		},
	}

	record.AddCommand(list, put, del, clearCmd)
	return record
}

func readInput(cmd *cobra.Command, src string) ([]byte, error) {
	if src == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(src)
}

func deleteCategory(ctx context.Context, cmd *cobra.Command, app *bootstrap.App, id string) error {
	out, err := app.RecordCLI.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if out.Archived {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "archived %s instead of deleting: %d records refer to it\n", out.ID, out.References)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", out.ID)
	return nil
}

func newCategoryCmd(flags *globalFlags) *cobra.Command {
	category := &cobra.Command{Use: "category", Short: "Manage subjects"}

	category.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List subjects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				cats, err := app.RecordCLI.Categories(ctx)
				if err != nil {
					return err
				}
				for _, c := range cats {
					archived := ""
					if c.IsArchived {
						archived = "  (archived)"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s%s\n", c.ID, c.Name, c.Color.Value(), archived)
				}
				return nil
			})
		},
	})

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				c, err := app.RecordCLI.AddCategory(ctx, strings.Join(args, " "), color)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", c.Name, c.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&color, "color", "lavender", "hex value or palette token")

	category.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subject, or archive it when history refers to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				return deleteCategory(ctx, cmd, app, args[0])
			})
		},
	})

	category.AddCommand(add, &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				c, err := app.RecordCLI.ArchiveCategory(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", c.Name)
				return nil
			})
		},
	})
	return category
}

func newTaskCmd(flags *globalFlags) *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks and goals"}
	var goals bool
	task.PersistentFlags().BoolVar(&goals, "goal", false, "operate on goals instead of tasks")
	collection := func() string {
		if goals {
			return string(recorddto.Goals)
		}
		return string(recorddto.Tasks)
	}

	var priority, status, subject, due string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task or goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				c, err := recorddto.ParseCollection(collection())
				if err != nil {
					return err
				}
				item, err := app.RecordCLI.CreateItem(ctx, recorddto.CreateItemInput{
					Collection: c,
					Title:      strings.Join(args, " "),
					Status:     status,
					Priority:   priority,
					SubjectID:  subject,
					DateString: due,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s %q\n", item.ID, item.Title)
				return nil
			})
		},
	}
	add.Flags().StringVar(&priority, "priority", "", "low|medium|high")
	add.Flags().StringVar(&status, "status", "", "todo|in-progress|done")
	add.Flags().StringVar(&subject, "subject", "", "subject id")
	add.Flags().StringVar(&due, "due", "", "YYYY-MM-DD")

	var order int64
	move := &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move an item to a status column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var orderPtr *int64
			if cmd.Flags().Changed("order") {
				orderPtr = &order
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				c, err := recorddto.ParseCollection(collection())
				if err != nil {
					return err
				}
				item, err := app.RecordCLI.MoveItem(ctx, recorddto.MoveItemInput{Collection: c, ID: args[0], Status: args[1], Order: orderPtr})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", item.Title, item.Status)
				return nil
			})
		},
	}
	move.Flags().Int64Var(&order, "order", 0, "position within the column")

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks or goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.RecordCLI.Items(ctx, collection())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no %s\n", collection())
				}
				for _, it := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]  %-6s  %s\n", it.ID, it.Status, it.Priority, it.Title)
				}
				return nil
			})
		},
	}

	task.AddCommand(add, move, list)
	return task
}

func newJournalCmd(flags *globalFlags) *cobra.Command {
	journal := &cobra.Command{Use: "journal", Short: "Daily reflection"}

	var entry recorddto.JournalEntry
	save := &cobra.Command{
		Use:   "save",
		Short: "Save the entry for a day (replaces that day's entry)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				saved, err := app.RecordCLI.SaveJournal(ctx, entry)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved journal %s for %s\n", saved.ID, saved.DateString)
				return nil
			})
		},
	}
	f := save.Flags()
	f.StringVar(&entry.DateString, "date", "", "YYYY-MM-DD (default today)")
	f.IntVar(&entry.Mood, "mood", 5, "0-10")
	f.IntVar(&entry.Energy, "energy", 5, "0-10")
	f.IntVar(&entry.Stress, "stress", 5, "0-10")
	f.StringArrayVar(&entry.Gratitude, "gratitude", nil, "repeatable")
	f.StringArrayVar(&entry.Wins, "win", nil, "repeatable")
	f.StringArrayVar(&entry.Challenges, "challenge", nil, "repeatable")
	f.StringArrayVar(&entry.Lessons, "lesson", nil, "repeatable")
	f.StringArrayVar(&entry.Highlights, "highlight", nil, "repeatable")
	f.StringVar(&entry.Notes, "notes", "", "free text")
	f.StringVar(&entry.TomorrowFocus, "tomorrow", "", "focus for tomorrow")

	var date string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the entry for a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				e, found, err := app.RecordCLI.Journal(ctx, date)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if !found {
					_, _ = fmt.Fprintln(w, "no entry")
					return nil
				}
				_, _ = fmt.Fprintf(w, "%s  mood %d  energy %d  stress %d\n", e.DateString, e.Mood, e.Energy, e.Stress)
				lists := []struct {
					label string
					items []string
				}{
					{"gratitude", e.Gratitude},
					{"wins", e.Wins},
					{"challenges", e.Challenges},
					{"lessons", e.Lessons},
					{"highlights", e.Highlights},
				}
				for _, l := range lists {
					if len(l.items) > 0 {
						_, _ = fmt.Fprintf(w, "%s: %s\n", l.label, strings.Join(l.items, "; "))
					}
				}
				if e.Notes != "" {
					_, _ = fmt.Fprintf(w, "notes: %s\n", e.Notes)
				}
				if e.TomorrowFocus != "" {
					_, _ = fmt.Fprintf(w, "tomorrow: %s\n", e.TomorrowFocus)
				}
				return nil
			})
		},
	}
	show.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (default today)")

	journal.AddCommand(save, show)
	return journal
}

func newExamCmd(flags *globalFlags) *cobra.Command {
	exam := &cobra.Command{Use: "exam", Short: "Track upcoming exams"}

	var input recorddto.AddExamInput
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an exam",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Title = strings.Join(args, " ")
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				e, err := app.RecordCLI.AddExam(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added exam %s %q on %s\n", e.ID, e.Title, e.Date)
				return nil
			})
		},
	}
	add.Flags().StringVar(&input.Date, "date", "", "YYYY-MM-DD")
	add.Flags().StringVar(&input.SubjectID, "subject", "", "subject id")
	add.Flags().StringVar(&input.Topics, "topics", "", "free text")
	_ = add.MarkFlagRequired("date")

	list := &cobra.Command{
		Use:   "list",
		Short: "List exams",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				exams, err := app.RecordCLI.Exams(ctx)
				if err != nil {
					return err
				}
				if len(exams) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exams")
				}
				for _, e := range exams {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n", e.ID, e.Date, e.Title, e.Topics)
				}
				return nil
			})
		},
	}

	exam.AddCommand(add, list)
	return exam
}

func newChatCmd(flags *globalFlags) *cobra.Command {
	chat := &cobra.Command{Use: "chat", Short: "Append-only assistant chat log"}

	var role string
	appendCmd := &cobra.Command{
		Use:   "append <content>",
		Short: "Append a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				m, err := app.RecordCLI.AppendChat(ctx, recorddto.AppendChatInput{Role: role, Content: strings.Join(args, " ")})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "appended %s\n", m.ID)
				return nil
			})
		},
	}
	appendCmd.Flags().StringVar(&role, "role", "user", "user|assistant")

	log := &cobra.Command{
		Use:   "log",
		Short: "Print the chat log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				msgs, err := app.RecordCLI.Chats(ctx)
				if err != nil {
					return err
				}
				for _, m := range msgs {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", m.Role, m.Content)
				}
				return nil
			})
		},
	}

	chat.AddCommand(appendCmd, log)
	return chat
}
