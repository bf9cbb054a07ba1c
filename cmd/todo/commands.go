package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"myday/internal/reminder"
	"myday/internal/task"
)

func listsCmd(configPath *string) *cobra.Command {
	var showHidden bool
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Print every list with its task count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			out := cmd.OutOrStdout()
			for _, l := range s.app.Lists.System() {
				if l.IsHidden && !showHidden {
					continue
				}
				fmt.Fprintf(out, "%-20s %d\n", l.Name, l.CountOr(0))
			}
			for _, l := range s.app.Lists.User() {
				fmt.Fprintf(out, "%-20s %d\n", l.Name, l.CountOr(0))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHidden, "all", false, "include hidden system lists")
	return cmd
}

func badgeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "badge",
		Short: "Print the number of tasks in My Day or marked important",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			fmt.Fprintln(cmd.OutOrStdout(), s.app.Counts.Badge())
			return nil
		},
	}
}

func remindCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Watch for due reminders and print them until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := open(ctx, *configPath, false)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			out := cmd.OutOrStdout()
			notify := reminder.NotifierFunc(func(ctx context.Context, t task.Task) error {
				s.l.Infof(ctx, "reminder fired for task %s", t.ID)
				_, err := fmt.Fprintf(out, "%s  %s\n", t.ReminderTime.Format("15:04"), t.Content)
				return err
			})
			p := reminder.New(reloadingSource{ctx: ctx, s: s}, notify, s.l, reminder.Config{
				Interval: s.cfg.ReminderInterval(),
				DedupCap: s.cfg.Reminder.DedupCap,
				Clock:    s.app.Tasks.Clock(),
			})
			p.Start(ctx)
			defer p.Stop()

			fmt.Fprintf(out, "checking reminders every %s, ctrl+c to stop\n", s.cfg.ReminderInterval())
			<-ctx.Done()
			return nil
		},
	}
}

// reloadingSource re-reads stored state before each poll so edits made by
// another process are picked up.
type reloadingSource struct {
	ctx context.Context
	s   *session
}

func (r reloadingSource) Active() []task.Task {
	if err := r.s.app.Load(r.ctx); err != nil {
		r.s.l.Warnf(r.ctx, "reload before reminder check: %v", err)
	}
	return r.s.app.Tasks.Active()
}
