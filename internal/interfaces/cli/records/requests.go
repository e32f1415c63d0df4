package records

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"expopanel/internal/application/approval"
	"expopanel/internal/application/navigation"
	"expopanel/internal/domain/visitorrequest"
	"expopanel/internal/interfaces/cli/app"
	"expopanel/internal/interfaces/cli/render"
)

// NewRequestsCommand manages visitor requests to join an exhibitor.
func NewRequestsCommand(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"visitor-requests"},
		Short:   "Approve or reject visitor requests to join an exhibitor",
	}

	cmd.AddCommand(
		newRequestsListCommand(opts),
		newRequestsApproveCommand(opts),
		newRequestsDeleteCommand(opts),
	)

	return cmd
}

func withRequests(cmd *cobra.Command, opts *app.Options, fn func(ctx context.Context, a *app.App) error) error {
	return app.Run(cmd, opts, func(ctx context.Context, a *app.App) error {
		if _, err := a.Authorize(navigation.PathExhibitorUsers); err != nil {
			return err
		}
		if err := a.Requests.Mount(ctx); err != nil {
			return fmt.Errorf("failed to load visitor requests: %w", err)
		}
		defer a.Requests.Unmount()
		return fn(ctx, a)
	})
}

func newRequestsListCommand(opts *app.Options) *cobra.Command {
	var (
		search string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending visitor requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			return withRequests(cmd, opts, func(ctx context.Context, a *app.App) error {
				tbl := app.NewTable[visitorrequest.Request](a, approval.Columns, cmd.OutOrStdout(), 0)
				tbl.SetRows(a.Requests.Rows())
				if search != "" {
					tbl.SetSearch(search)
				}
				tbl.GoTo(page - 1)
				return render.Page(cmd.OutOrStdout(), format, approval.Columns, tbl.Page())
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive filter across all columns")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, clamped to the available pages")

	return cmd
}

func newRequestsApproveCommand(opts *app.Options) *cobra.Command {
	var asAdmin bool

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a request and create the exhibitor user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRequests(cmd, opts, func(ctx context.Context, a *app.App) error {
				return app.Reported(a.Requests.Approve(ctx, id, asAdmin))
			})
		},
	}

	cmd.Flags().BoolVar(&asAdmin, "admin", false, "Create the user as exhibitor admin")

	return cmd
}

func newRequestsDeleteCommand(opts *app.Options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Reject and remove a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRequests(cmd, opts, func(ctx context.Context, a *app.App) error {
				if !yes {
					ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete visitor request %d?", id))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
						return nil
					}
				}
				return app.Reported(a.Requests.Delete(ctx, id))
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
