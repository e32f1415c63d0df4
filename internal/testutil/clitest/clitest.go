// Package clitest runs CLI commands against a fake backend with an isolated
// config and session file.
package clitest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"expopanel/internal/domain/session"
	"expopanel/internal/interfaces/cli/app"
	"expopanel/internal/shared/authorization"
	"expopanel/internal/testutil/fakeapi"
)

// Options writes a config pointing at baseURL with file session storage in
// a temp dir.
func Options(t *testing.T, baseURL string) *app.Options {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`api:
  base_url: %s/
session:
  storage: file
  file_path: %s
logger:
  level: error
`, baseURL, filepath.Join(dir, "session.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return &app.Options{ConfigFile: path, Output: "table"}
}

// Login stores a session for account as if the login command had run.
func Login(t *testing.T, opts *app.Options, srv *fakeapi.Server, account fakeapi.Account) {
	t.Helper()
	ctx := context.Background()
	a, err := app.New(ctx, opts, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.Close()

	user := &session.User{
		ID:    session.UserID(fmt.Sprint(account.ID)),
		Email: account.Email,
		Name:  account.Name,
		Role:  authorization.ParseUserRole(account.Role),
	}
	require.NoError(t, a.Session.Login(ctx, srv.Sign(account, time.Hour), user))
}

type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Execute runs cmd with args, feeding stdin.
func Execute(cmd *cobra.Command, stdin string, args ...string) Result {
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
