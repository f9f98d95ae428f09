// Package commands implements the boardctl CLI commands. Commands render
// store state and capture user intent; all board and session semantics live
// in the auth and board stores.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/auth"
	"github.com/c360studio/boardctl/board"
	"github.com/c360studio/boardctl/config"
)

// App bundles the configured stores for command handlers. It is built once
// per invocation and injected into every command; there is no package-level
// state.
type App struct {
	Config *config.Config
	Client *api.Client
	Auth   *auth.Store
	Boards *board.Store
	Logger *slog.Logger
	Out    io.Writer
}

// requireAuth fails fast when no session is active, before any API call.
func (a *App) requireAuth() error {
	if !a.Auth.IsAuthenticated() {
		return fmt.Errorf("not logged in (run 'boardctl login')")
	}
	return nil
}
