package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo/internal/domain"
	"github.com/Tomlord1122/todo/internal/service"
)

var errNothingToUpdate = errors.New("nothing to update: pass at least one of --title, --notes, --assigned, --done or --undone")

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q: must be a positive integer", arg)
	}
	return id, nil
}

func newNewCommand(opts *rootOptions) *cobra.Command {
	var req service.CreateTodoRequest

	cmd := &cobra.Command{
		Use:   "new <title words...>",
		Short: "Create a todo; the arguments are joined into its title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = strings.Join(args, " ")
			return opts.withTodoService(cmd, func(ctx context.Context, svc service.TodoService) error {
				todo, err := svc.CreateTodo(ctx, req)
				if err != nil {
					return err
				}
				return opts.print(cmd, todo, func(p *printer) {
					p.linef("Created todo #%d: %s", todo.ID, todo.Title)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&req.Notes, "notes", "n", "", "free-form notes")
	cmd.Flags().StringVarP(&req.Assigned, "assigned", "a", "", "who the todo is assigned to")
	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos ordered by id",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var page domain.Pagination
			if cmd.Flags().Changed("offset") {
				page.Offset = &offset
			}
			if cmd.Flags().Changed("limit") {
				page.Limit = &limit
			}

			return opts.withTodoService(cmd, func(ctx context.Context, svc service.TodoService) error {
				list, err := svc.ListTodos(ctx, page)
				if err != nil {
					return err
				}
				return opts.print(cmd, list, func(p *printer) {
					if list.Total == 0 {
						p.line("No todos")
						return
					}
					p.table([]string{"ID", "DONE", "TITLE", "ASSIGNED"}, func(row func(...string)) {
						for _, todo := range list.Items {
							row(strconv.FormatInt(todo.ID, 10), yesNo(todo.Completed), todo.Title, todo.Assigned)
						}
					})
					p.linef("%d of %d todos", len(list.Items), list.Total)
				})
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "number of todos to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of todos to show")
	return cmd
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withTodoService(cmd, func(ctx context.Context, svc service.TodoService) error {
				todo, err := svc.GetTodoByID(ctx, id)
				if err != nil {
					return err
				}
				return opts.print(cmd, todo, func(p *printer) { printTodo(p, todo) })
			})
		},
	}
}

func newUpdateCommand(opts *rootOptions) *cobra.Command {
	var (
		title, notes, assigned string
		done, undone           bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req service.UpdateTodoRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("notes") {
				req.Notes = &notes
			}
			if flags.Changed("assigned") {
				req.Assigned = &assigned
			}
			switch {
			case flags.Changed("done"):
				req.Completed = &done
			case flags.Changed("undone"):
				completed := !undone
				req.Completed = &completed
			}
			if req == (service.UpdateTodoRequest{}) {
				return errNothingToUpdate
			}

			return opts.withTodoService(cmd, func(ctx context.Context, svc service.TodoService) error {
				todo, err := svc.UpdateTodo(ctx, id, req)
				if err != nil {
					return err
				}
				return opts.print(cmd, todo, func(p *printer) {
					p.linef("Updated todo #%d", todo.ID)
					printTodo(p, todo)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "new notes; pass \"\" to clear")
	cmd.Flags().StringVarP(&assigned, "assigned", "a", "", "new assignee; pass \"\" to clear")
	cmd.Flags().BoolVar(&done, "done", false, "mark the todo completed")
	cmd.Flags().BoolVar(&undone, "undone", false, "mark the todo not completed")
	cmd.MarkFlagsMutuallyExclusive("done", "undone")
	return cmd
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withTodoService(cmd, func(ctx context.Context, svc service.TodoService) error {
				if err := svc.DeleteTodo(ctx, id); err != nil {
					return err
				}
				return opts.print(cmd, map[string]int64{"deleted": id}, func(p *printer) {
					p.linef("Deleted todo #%d", id)
				})
			})
		},
	}
}

func newCleanupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete every todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withTodoService(cmd, func(ctx context.Context, svc service.TodoService) error {
				deleted, err := svc.Cleanup(ctx)
				if err != nil {
					return err
				}
				return opts.print(cmd, map[string]int64{"deleted": deleted}, func(p *printer) {
					p.linef("Deleted %d todos", deleted)
				})
			})
		},
	}
}
