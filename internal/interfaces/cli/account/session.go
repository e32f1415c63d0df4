package account

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"expopanel/internal/application/navigation"
	"expopanel/internal/interfaces/cli/app"
	"expopanel/internal/interfaces/cli/render"
)

func NewLogoutCommand(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.Session.Logout(ctx); err != nil {
					return fmt.Errorf("failed to clear session: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
				return nil
			})
		},
	}
}

type whoami struct {
	ID        string     `json:"id" yaml:"id"`
	Email     string     `json:"email" yaml:"email"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Role      string     `json:"role" yaml:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func NewWhoamiCommand(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			return app.Run(cmd, opts, func(ctx context.Context, a *app.App) error {
				user, err := a.RequireUser()
				if err != nil {
					return err
				}
				view := whoami{
					ID:    string(user.ID),
					Email: user.Email,
					Name:  user.Name,
					Role:  string(user.Role),
				}
				if exp := a.Session.ExpiresAt(); !exp.IsZero() {
					view.ExpiresAt = &exp
				}
				return render.Value(cmd.OutOrStdout(), format, view)
			})
		},
	}
}

type menuSection struct {
	Title string     `json:"title" yaml:"title"`
	Items []menuItem `json:"items" yaml:"items"`
}

type menuItem struct {
	Path  string `json:"path" yaml:"path"`
	Label string `json:"label" yaml:"label"`
}

func NewMenuCommand(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the sections available to your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			return app.Run(cmd, opts, func(ctx context.Context, a *app.App) error {
				user, err := a.RequireUser()
				if err != nil {
					return err
				}
				sections, err := a.Guard.Visible(user.Role)
				if err != nil {
					return err
				}
				if format == render.FormatTable {
					return writeMenu(cmd.OutOrStdout(), sections)
				}
				return render.Value(cmd.OutOrStdout(), format, menuView(sections))
			})
		},
	}
}

func menuView(sections []navigation.Section) []menuSection {
	out := make([]menuSection, 0, len(sections))
	for _, s := range sections {
		items := make([]menuItem, 0, len(s.Items))
		for _, it := range s.Items {
			items = append(items, menuItem{Path: it.Path, Label: it.Label})
		}
		out = append(out, menuSection{Title: s.Title, Items: items})
	}
	return out
}

func writeMenu(w io.Writer, sections []navigation.Section) error {
	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
		for _, it := range s.Items {
			fmt.Fprintf(w, "  %-24s %s\n", it.Path, it.Label)
		}
	}
	return nil
}
