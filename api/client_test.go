package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticToken is a fixed-value api.TokenSource for tests.
type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestClient_Login_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/sessions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		// Login must not carry a bearer token
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds api.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds.Username)
		assert.Equal(t, "hunter2", creds.Password)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(staticToken("should-not-be-sent")))

	resp, err := client.Login(context.Background(), api.Credentials{Username: "alice", Password: "hunter2"})

	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.Token)
}

func TestClient_BearerTokenAttached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(staticToken("tok-abc")))

	_, err := client.ListBoards(context.Background())
	require.NoError(t, err)
}

func TestClient_Unauthorized_FiresHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "token expired"}`))
	}))
	defer server.Close()

	var invalidations atomic.Int32
	client := api.NewClient(server.URL)
	client.OnUnauthorized(func() { invalidations.Add(1) })

	_, err := client.ListBoards(context.Background())

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, int32(1), invalidations.Load())
	assert.Equal(t, "token expired", api.ErrorMessage(err, "fallback"))
}

func TestClient_ErrorBodyDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "name is required"}`))
	}))
	defer server.Close()

	client := api.NewClient(server.URL)

	_, err := client.CreateBoard(context.Background(), "", "")

	require.Error(t, err)
	assert.False(t, api.IsUnauthorized(err))
	assert.Equal(t, "name is required", api.ErrorMessage(err, "fallback"))
}

func TestClient_ErrorBodyMissing_UsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := api.NewClient(server.URL)

	_, err := client.ListBoards(context.Background())

	require.Error(t, err)
	assert.Equal(t, "fallback", api.ErrorMessage(err, "fallback"))
}

func TestClient_MoveCard_Request(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/cards/C1/move", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "L2", body["listId"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.Card{ID: "C1", ListID: "L2", Title: "Task"})
	}))
	defer server.Close()

	client := api.NewClient(server.URL)

	card, err := client.MoveCard(context.Background(), "C1", "L2")

	require.NoError(t, err)
	assert.Equal(t, "L2", card.ListID)
}

func TestClient_UpdateCard_OmitsUnsetFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title": "renamed"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.Card{ID: "C1", Title: "renamed"})
	}))
	defer server.Close()

	client := api.NewClient(server.URL)

	title := "renamed"
	card, err := client.UpdateCard(context.Background(), "C1", model.CardPatch{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "renamed", card.Title)
}

func TestClient_AddAttachment_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/cards/C1/attachments", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "notes.txt", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "meeting notes", string(content))

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithTokenSource(staticToken("tok")))

	err := client.AddAttachment(context.Background(), "C1", "notes.txt", strings.NewReader("meeting notes"))
	require.NoError(t, err)
}
