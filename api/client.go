// Package api provides the HTTP client for the kanban REST API.
// It attaches the session bearer token to every authenticated request and
// reports session expiry (401) through a side channel so the auth layer can
// invalidate local state regardless of which call tripped it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c360studio/boardctl/model"
	"github.com/google/uuid"
)

// maxResponseSize limits response bodies to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// TokenSource supplies the current session token. An empty string means
// no session; the request is sent without an Authorization header.
type TokenSource interface {
	Token() string
}

// UnauthorizedFunc is invoked whenever any API call returns 401.
type UnauthorizedFunc func()

// Client is a thin wrapper over the kanban REST API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithTokenSource sets the session token source.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(client *Client) {
		client.tokens = ts
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetTokenSource installs the session token source. Exposed as a setter in
// addition to the option because the auth store and the client reference
// each other and one must be constructed first.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// OnUnauthorized installs the 401 side-channel handler.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.onUnauthorized = fn
}

// do executes a JSON request. body and out may be nil. When authed is
// false the Authorization header is omitted (login/register only).
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, out, authed)
}

// send attaches auth, executes the request, and decodes the response.
func (c *Client) send(req *http.Request, out any, authed bool) error {
	requestID := uuid.New().String()

	if authed && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("Sending API request",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.logger.Debug("Session rejected, invalidating",
			"request_id", requestID,
			"path", req.URL.Path)
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// decodeError builds an *Error from a non-2xx response. The server reports
// failures as {"error": "message"}.
func decodeError(statusCode int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &Error{StatusCode: statusCode, Message: payload.Error}
	}
	return &Error{StatusCode: statusCode}
}

// Credentials is a username/password pair for login and registration.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token returned by Login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token. No bearer token is
// attached.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/sessions", creds, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. No bearer token is attached.
func (c *Client) Register(ctx context.Context, creds Credentials) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/users", creds, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/sessions/logout", nil, nil, true)
}

// ListBoards returns every board visible to the session user.
func (c *Client) ListBoards(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	if err := c.do(ctx, http.MethodGet, "/boards", nil, &boards, true); err != nil {
		return nil, err
	}
	return boards, nil
}

// GetBoard returns a single board.
func (c *Client) GetBoard(ctx context.Context, boardID string) (*model.Board, error) {
	var board model.Board
	if err := c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID), nil, &board, true); err != nil {
		return nil, err
	}
	return &board, nil
}

// CreateBoard creates a board and returns the server's authoritative copy.
func (c *Client) CreateBoard(ctx context.Context, name, background string) (*model.Board, error) {
	body := map[string]string{"name": name, "background": background}
	var board model.Board
	if err := c.do(ctx, http.MethodPost, "/boards", body, &board, true); err != nil {
		return nil, err
	}
	return &board, nil
}

// UpdateBoard applies a partial patch and returns the updated board.
func (c *Client) UpdateBoard(ctx context.Context, boardID string, patch model.BoardPatch) (*model.Board, error) {
	var board model.Board
	if err := c.do(ctx, http.MethodPut, "/boards/"+url.PathEscape(boardID), patch, &board, true); err != nil {
		return nil, err
	}
	return &board, nil
}

// DeleteBoard removes a board.
func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	return c.do(ctx, http.MethodDelete, "/boards/"+url.PathEscape(boardID), nil, nil, true)
}

// SetFavorite flags or unflags a board as a favorite.
func (c *Client) SetFavorite(ctx context.Context, boardID string, favorite bool) error {
	body := map[string]bool{"favorite": favorite}
	return c.do(ctx, http.MethodPost, "/boards/"+url.PathEscape(boardID)+"/favorites", body, nil, true)
}

// SetArchived archives or restores a board.
func (c *Client) SetArchived(ctx context.Context, boardID string, archived bool) error {
	body := map[string]bool{"archived": archived}
	return c.do(ctx, http.MethodPost, "/boards/"+url.PathEscape(boardID)+"/archives", body, nil, true)
}

// ShareBoard grants another user access to a board.
func (c *Client) ShareBoard(ctx context.Context, boardID, userID string, role model.Role) error {
	body := map[string]string{"userId": userID, "role": string(role)}
	return c.do(ctx, http.MethodPost, "/boards/"+url.PathEscape(boardID)+"/shares", body, nil, true)
}

// DuplicateBoard copies a board under a new name, optionally keeping its
// member list, and returns the copy.
func (c *Client) DuplicateBoard(ctx context.Context, boardID, name string, keepMembers bool) (*model.Board, error) {
	body := struct {
		Name        string `json:"name"`
		KeepMembers bool   `json:"keepMembers"`
	}{Name: name, KeepMembers: keepMembers}
	var board model.Board
	if err := c.do(ctx, http.MethodPost, "/boards/"+url.PathEscape(boardID)+"/duplicates", body, &board, true); err != nil {
		return nil, err
	}
	return &board, nil
}

// GetBoardTemplates returns the available board templates.
func (c *Client) GetBoardTemplates(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	if err := c.do(ctx, http.MethodGet, "/board-templates", nil, &boards, true); err != nil {
		return nil, err
	}
	return boards, nil
}

// ListLists returns a board's lists in server order.
func (c *Client) ListLists(ctx context.Context, boardID string) ([]model.List, error) {
	var lists []model.List
	if err := c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID)+"/lists", nil, &lists, true); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateList creates a list under a board.
func (c *Client) CreateList(ctx context.Context, boardID, title string) (*model.List, error) {
	body := map[string]string{"title": title}
	var list model.List
	if err := c.do(ctx, http.MethodPost, "/boards/"+url.PathEscape(boardID)+"/lists", body, &list, true); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateList renames a list and returns the updated copy.
func (c *Client) UpdateList(ctx context.Context, listID, title string) (*model.List, error) {
	body := map[string]string{"title": title}
	var list model.List
	if err := c.do(ctx, http.MethodPut, "/lists/"+url.PathEscape(listID), body, &list, true); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteList removes a list and, server-side, its cards.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	return c.do(ctx, http.MethodDelete, "/lists/"+url.PathEscape(listID), nil, nil, true)
}

// ListCards returns a list's cards in server order.
func (c *Client) ListCards(ctx context.Context, listID string) ([]model.Card, error) {
	var cards []model.Card
	if err := c.do(ctx, http.MethodGet, "/lists/"+url.PathEscape(listID)+"/cards", nil, &cards, true); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard returns a single card with its nested detail.
func (c *Client) GetCard(ctx context.Context, cardID string) (*model.Card, error) {
	var card model.Card
	if err := c.do(ctx, http.MethodGet, "/cards/"+url.PathEscape(cardID), nil, &card, true); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateCard creates a card under a list. Description may be empty.
func (c *Client) CreateCard(ctx context.Context, listID, title, description string) (*model.Card, error) {
	body := struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	}{Title: title, Description: description}
	var card model.Card
	if err := c.do(ctx, http.MethodPost, "/lists/"+url.PathEscape(listID)+"/cards", body, &card, true); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard applies a partial patch and returns the updated card.
func (c *Client) UpdateCard(ctx context.Context, cardID string, patch model.CardPatch) (*model.Card, error) {
	var card model.Card
	if err := c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID), patch, &card, true); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCard removes a card.
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	return c.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(cardID), nil, nil, true)
}

// MoveCard reassigns a card to another list and returns the updated card.
func (c *Client) MoveCard(ctx context.Context, cardID, listID string) (*model.Card, error) {
	body := map[string]string{"listId": listID}
	var card model.Card
	if err := c.do(ctx, http.MethodPatch, "/cards/"+url.PathEscape(cardID)+"/move", body, &card, true); err != nil {
		return nil, err
	}
	return &card, nil
}

// AddComment appends a comment to a card.
func (c *Client) AddComment(ctx context.Context, cardID, text string) error {
	body := map[string]string{"text": text}
	return c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/comments", body, nil, true)
}

// AddChecklist creates a checklist on a card.
func (c *Client) AddChecklist(ctx context.Context, cardID, title string) error {
	body := map[string]string{"title": title}
	return c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/checklist", body, nil, true)
}
