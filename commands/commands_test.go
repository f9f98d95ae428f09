package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/auth"
	"github.com/c360studio/boardctl/board"
	"github.com/c360studio/boardctl/commands"
	"github.com/c360studio/boardctl/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, handler http.Handler) (*commands.App, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL)
	creds := auth.NewCredentialsFile(filepath.Join(t.TempDir(), "credentials.json"))
	authStore := auth.NewStore(client, creds)
	authStore.Init()

	out := &bytes.Buffer{}
	app := &commands.App{
		Client: client,
		Auth:   authStore,
		Boards: board.NewStore(client),
		Out:    out,
	}
	return app, out
}

func testToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID:   "U1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginCmd(t *testing.T) {
	token := testToken(t)
	app, out := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}))

	cmd := commands.NewLoginCmd(app)
	cmd.SetArgs([]string{"--username", "alice", "--password", "hunter2"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Logged in as alice\n", out.String())
	assert.True(t, app.Auth.IsAuthenticated())
}

func TestLoginCmd_Failure(t *testing.T) {
	app, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid credentials"}`))
	}))

	cmd := commands.NewLoginCmd(app)
	cmd.SetArgs([]string{"--username", "alice", "--password", "wrong"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestWhoamiCmd_NotLoggedIn(t *testing.T) {
	app, _ := newTestApp(t, http.NotFoundHandler())

	cmd := commands.NewWhoamiCmd(app)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestBoardListCmd_RequiresAuth(t *testing.T) {
	app, _ := newTestApp(t, http.NotFoundHandler())

	cmd := commands.NewBoardCmd(app)
	cmd.SetArgs([]string{"list"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestBoardListCmd_RendersBoards(t *testing.T) {
	token := testToken(t)
	app, out := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sessions":
			json.NewEncoder(w).Encode(map[string]string{"token": token})
		case "/boards":
			json.NewEncoder(w).Encode([]model.Board{
				{ID: "B1", Name: "Sprint", IsFavorite: true},
				{ID: "B2", Name: "Backlog", IsArchived: true},
			})
		}
	}))

	require.NoError(t, app.Auth.Login(context.Background(), "alice", "hunter2"))
	out.Reset()

	cmd := commands.NewBoardCmd(app)
	cmd.SetArgs([]string{"list"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Sprint")
	assert.Contains(t, out.String(), "Backlog")
	assert.Contains(t, out.String(), "yes")
}
