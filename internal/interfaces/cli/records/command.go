// Package records exposes the managed entities as list, create, update and
// delete commands driven through the entity controllers.
package records

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"expopanel/internal/application/entity"
	"expopanel/internal/application/navigation"
	"expopanel/internal/application/table"
	"expopanel/internal/domain/agenda"
	"expopanel/internal/domain/banner"
	"expopanel/internal/domain/exhibitor"
	"expopanel/internal/domain/exhibitoruser"
	"expopanel/internal/interfaces/cli/app"
	"expopanel/internal/interfaces/cli/render"
)

// Resource binds one entity controller to a command name and menu path.
type Resource[T any] struct {
	Use        string
	Aliases    []string
	Short      string
	Path       string
	Controller func(*app.App) *entity.Controller[T]
}

// NewCommands returns one command per managed entity.
func NewCommands(opts *app.Options) []*cobra.Command {
	return []*cobra.Command{
		NewCommand(opts, Resource[exhibitor.Exhibitor]{
			Use:        "exhibitors",
			Aliases:    []string{"exhibitor"},
			Short:      "Manage exhibitors",
			Path:       navigation.PathExhibitors,
			Controller: func(a *app.App) *entity.Controller[exhibitor.Exhibitor] { return a.Exhibitors },
		}),
		NewCommand(opts, Resource[exhibitoruser.User]{
			Use:        "exhibitor-users",
			Aliases:    []string{"users"},
			Short:      "Manage exhibitor staff accounts",
			Path:       navigation.PathExhibitorUsers,
			Controller: func(a *app.App) *entity.Controller[exhibitoruser.User] { return a.ExhibitorUsers },
		}),
		NewCommand(opts, Resource[agenda.Item]{
			Use:        "agenda",
			Short:      "Manage agenda events",
			Path:       navigation.PathAgenda,
			Controller: func(a *app.App) *entity.Controller[agenda.Item] { return a.Agenda },
		}),
		NewCommand(opts, Resource[banner.Banner]{
			Use:        "banners",
			Aliases:    []string{"banner"},
			Short:      "Manage banners",
			Path:       navigation.PathBanners,
			Controller: func(a *app.App) *entity.Controller[banner.Banner] { return a.Banners },
		}),
	}
}

func NewCommand[T any](opts *app.Options, res Resource[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     res.Use,
		Aliases: res.Aliases,
		Short:   res.Short,
	}

	cmd.AddCommand(
		newListCommand(opts, res),
		newFieldsCommand(opts, res),
		newCreateCommand(opts, res),
		newUpdateCommand(opts, res),
		newDeleteCommand(opts, res),
	)

	return cmd
}

// mounted authorizes the session, mounts the controller and runs fn while
// the view is live.
func mounted[T any](
	cmd *cobra.Command,
	opts *app.Options,
	res Resource[T],
	fn func(ctx context.Context, a *app.App, ctrl *entity.Controller[T]) error,
) error {
	return app.Run(cmd, opts, func(ctx context.Context, a *app.App) error {
		if _, err := a.Authorize(res.Path); err != nil {
			return err
		}
		ctrl := res.Controller(a)
		if err := ctrl.Mount(ctx); err != nil {
			return fmt.Errorf("failed to load %s list: %w", ctrl.Spec().Name, err)
		}
		defer ctrl.Unmount()
		return fn(ctx, a, ctrl)
	})
}

func newListCommand[T any](opts *app.Options, res Resource[T]) *cobra.Command {
	var (
		search  string
		sortBy  string
		desc    bool
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			return mounted(cmd, opts, res, func(ctx context.Context, a *app.App, ctrl *entity.Controller[T]) error {
				columns := ctrl.Spec().Columns
				tbl := app.NewTable[T](a, columns, cmd.OutOrStdout(), perPage)
				ctrl.Bind(ctx, tbl)

				if search != "" {
					tbl.SetSearch(search)
				}
				if sortBy != "" {
					accessor, err := resolveColumn(columns, sortBy)
					if err != nil {
						return err
					}
					tbl.SortState(accessor, !desc)
				}
				tbl.GoTo(page - 1)

				return render.Page(cmd.OutOrStdout(), format, columns, tbl.Page())
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive filter across all columns")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Column header or accessor to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, clamped to the available pages")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Rows per page (default: fit the terminal)")

	return cmd
}

func newFieldsCommand[T any](opts *app.Options, res Resource[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Show the form fields accepted by create and update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, opts, func(ctx context.Context, a *app.App) error {
				if _, err := a.Authorize(res.Path); err != nil {
					return err
				}
				form := res.Controller(a).OpenCreate(ctx)
				defer form.Cancel()
				return writeFields(cmd.OutOrStdout(), form)
			})
		},
	}
}

func writeFields[T any](w io.Writer, form *entity.Form[T]) error {
	for _, f := range form.Fields() {
		line := fmt.Sprintf("%-16s %-9s %s", f.Name, f.Kind, f.Label)
		if def := form.Get(f.Name); def != "" {
			line += fmt.Sprintf(" (default %s)", def)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if f.Kind != entity.KindChoice {
			continue
		}
		for _, c := range form.Options(f.Options) {
			fmt.Fprintf(w, "  %-14s %s\n", c.Value, c.Label)
		}
	}
	return nil
}

func newCreateCommand[T any](opts *app.Options, res Resource[T]) *cobra.Command {
	var (
		sets []string
		file string
	)

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a record",
		Example: fmt.Sprintf("  expopanel %s create --set nombre=Acme --set activo=1", res.Use),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			upload, err := readUpload(file)
			if err != nil {
				return err
			}

			return mounted(cmd, opts, res, func(ctx context.Context, a *app.App, ctrl *entity.Controller[T]) error {
				form := ctrl.OpenCreate(ctx)
				if err := checkValues(form, values); err != nil {
					form.Cancel()
					return err
				}
				form.Merge(values)
				if upload != nil {
					form.Attach(upload)
				}
				if err := form.Submit(ctx); err != nil {
					form.Cancel()
					return app.Reported(err)
				}

				rows := ctrl.Rows()
				if len(rows) == 0 {
					return nil
				}
				return render.Rows(cmd.OutOrStdout(), format, ctrl.Spec().Columns, rows[:1])
			})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment key=value (repeatable)")
	cmd.Flags().StringVar(&file, "file", "", "Image to upload with the record")

	return cmd
}

func newUpdateCommand[T any](opts *app.Options, res Resource[T]) *cobra.Command {
	var (
		sets []string
		file string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a record; unset fields keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			upload, err := readUpload(file)
			if err != nil {
				return err
			}

			return mounted(cmd, opts, res, func(ctx context.Context, a *app.App, ctrl *entity.Controller[T]) error {
				row, ok := ctrl.Find(id)
				if !ok {
					return fmt.Errorf("%s %d not found", ctrl.Spec().Name, id)
				}

				form := ctrl.OpenEdit(ctx, row)
				if err := checkValues(form, values); err != nil {
					form.Cancel()
					return err
				}
				form.Merge(values)
				if upload != nil {
					form.Attach(upload)
				}
				if err := form.Submit(ctx); err != nil {
					form.Cancel()
					return app.Reported(err)
				}

				if updated, ok := ctrl.Find(id); ok {
					return render.Rows(cmd.OutOrStdout(), format, ctrl.Spec().Columns, []table.Row[T]{updated})
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment key=value (repeatable)")
	cmd.Flags().StringVar(&file, "file", "", "Replacement image to upload")

	return cmd
}

func newDeleteCommand[T any](opts *app.Options, res Resource[T]) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return mounted(cmd, opts, res, func(ctx context.Context, a *app.App, ctrl *entity.Controller[T]) error {
				row, ok := ctrl.Find(id)
				if !ok {
					return fmt.Errorf("%s %d not found", ctrl.Spec().Name, id)
				}

				dialog := ctrl.OpenDelete(row)
				if !yes {
					ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), dialog.Message())
					if err != nil {
						dialog.Cancel()
						return err
					}
					if !ok {
						dialog.Cancel()
						fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
						return nil
					}
				}
				if err := dialog.Accept(ctx); err != nil {
					dialog.Cancel()
					return app.Reported(err)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
