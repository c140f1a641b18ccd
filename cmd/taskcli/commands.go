package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tasktracker/client"
	"tasktracker/client/tui"
	"tasktracker/models"
	"tasktracker/utils/token"

	"github.com/spf13/cobra"
)

func (o *cliOptions) apiClient() (*client.APIClient, error) {
	timeout, err := time.ParseDuration(o.timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid --timeout: %w", err)
	}
	return client.NewAPIClient(o.apiURL, o.token, timeout), nil
}

func tuiCmd(o *cliOptions) *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := o.apiClient()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctrl := client.NewController(api, client.Options{
				UndoWindow:          o.cfg.UndoWindow,
				ToastDuration:       o.cfg.ToastDuration,
				CelebrationDuration: o.cfg.CelebrationDuration,
			})
			defer ctrl.Close()

			var events <-chan string
			if live {
				events, err = client.WatchEvents(ctx, o.apiURL, o.token)
				if err != nil {
					log.Printf("Live updates disabled: %v", err)
					events = nil
				}
			}

			// The TUI owns the terminal; keep log output out of it.
			log.SetOutput(io.Discard)
			return tui.Run(ctx, ctrl, events)
		},
	}

	cmd.Flags().BoolVar(&live, "live", true, "Refresh when tasks change elsewhere")
	return cmd
}

func listCmd(o *cliOptions) *cobra.Command {
	var (
		filter string
		search string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := client.ParseFilter(filter)
			if err != nil {
				return err
			}
			api, err := o.apiClient()
			if err != nil {
				return err
			}

			tasks, err := api.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			visible := client.FilterTasks(tasks, f, search)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(visible)
			}

			fmt.Fprintf(out, "%d total, %d active, %d completed (%.0f%%)\n",
				client.TotalCount(tasks), client.ActiveCount(tasks), client.CompletedCount(tasks), client.ProgressPercentage(tasks))
			now := time.Now()
			for _, t := range visible {
				check := " "
				if t.Completed {
					check = "x"
				}
				fmt.Fprintf(out, "[%s] %s  %-40s %-8s %s\n", check, t.ID, t.Title, t.Priority, client.RelativeAge(t.CreatedAt, now))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Filter: all, active, completed")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive title search")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func addCmd(o *cliOptions) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePriority(priority)
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return client.ErrEmptyTitle
			}

			api, err := o.apiClient()
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			task, err := api.CreateTask(cmd.Context(), models.TaskInput{Title: title, Priority: p, CreatedAt: &now})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.DefaultPriority), "Priority: low, medium, high")
	return cmd
}

func toggleCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := o.apiClient()
			if err != nil {
				return err
			}
			task, err := api.ToggleTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "active"
			if task.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", task.Title, state)
			return nil
		},
	}
}

func deleteCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := o.apiClient()
			if err != nil {
				return err
			}
			if err := api.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func tokenCmd(o *cliOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !o.cfg.AuthEnabled() {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = time.Duration(o.cfg.JWTExpirationHours) * time.Hour
			}
			signed, err := token.GenerateToken(subject, []byte(o.cfg.JWTSecret), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "taskcli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default JWT_EXPIRATION_HOURS)")
	return cmd
}
