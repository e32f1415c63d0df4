// Package account holds the session commands: login, logout, whoami and
// the role-filtered menu.
package account

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"expopanel/internal/application/login"
	"expopanel/internal/interfaces/cli/app"
	"expopanel/internal/shared/errors"
)

func NewLoginCommand(opts *app.Options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a code sent by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := runLogin(ctx, a.Login, cmd.InOrStdin(), cmd.ErrOrStderr(), email); err != nil {
					return err
				}
				user := a.Session.User()
				if user == nil {
					return errors.NewInternalError("login finished without a session")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", displayName(user.Name, user.Email), user.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email to send the code to (prompted when empty)")

	return cmd
}

// runLogin walks the flow through its steps reading answers from in. At the
// code prompt "r" resends and "e" goes back to the email step.
func runLogin(ctx context.Context, flow *login.Flow, in io.Reader, out io.Writer, email string) error {
	scanner := bufio.NewScanner(in)
	ask := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("login aborted")
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch flow.Step() {
		case login.StepEmail:
			if email == "" {
				answer, err := ask("Email: ")
				if err != nil {
					return err
				}
				email = answer
			}
			flow.SetEmail(email)
			email = ""

			if err := flow.RequestCode(ctx); err != nil {
				if errors.Is(err, login.ErrInvalidEmail) {
					fmt.Fprintln(out, "Enter a valid email address.")
				} else {
					fmt.Fprintln(out, flow.Message())
				}
				continue
			}
			fmt.Fprintf(out, "A code was sent to %s.\n", flow.MaskedEmail())

		case login.StepCode:
			answer, err := ask("Code (r to resend, e to change email): ")
			if err != nil {
				return err
			}

			switch strings.ToLower(answer) {
			case "r":
				if err := flow.Resend(ctx); err != nil {
					if errors.Is(err, login.ErrCooldown) {
						fmt.Fprintf(out, "You can resend in %s.\n", flow.CooldownRemaining().Round(time.Second))
					} else {
						fmt.Fprintln(out, flow.Message())
					}
					continue
				}
				fmt.Fprintf(out, "A new code was sent to %s.\n", flow.MaskedEmail())
				continue
			case "e":
				flow.ChangeEmail()
				continue
			}

			flow.SetCode(answer)
			if err := flow.Verify(ctx); err != nil {
				if errors.Is(err, login.ErrEmptyCode) {
					fmt.Fprintln(out, "Enter the code from the email.")
				} else {
					fmt.Fprintln(out, flow.Message())
				}
				continue
			}
			return nil
		}
	}
}

func displayName(name, email string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return email
}
