// Package board holds the client-side board state: the board collection,
// the currently open board, its lists, and the list→cards mapping. The
// server is authoritative; every mutation here goes through the API and
// local state only caches its answers.
//
// All operations follow confirm-then-apply — the API call happens first and
// local state changes only on success — with one exception: MoveCard applies
// the move optimistically and reconciles by refetching the whole board when
// the API rejects it.
package board

import (
	"context"
	"log/slog"
	"sync"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/model"
	"golang.org/x/sync/errgroup"
)

// Store is the board state store. Internal state is guarded by a mutex so
// operations issued from concurrent goroutines serialize their writes; API
// calls are made outside the lock.
type Store struct {
	client *api.Client
	logger *slog.Logger

	mu           sync.Mutex
	boards       []model.Board
	currentBoard *model.Board
	lists        []model.List
	cards        map[string][]model.Card
	isLoading    bool
	err          string

	// loadSeq increments on every FetchBoardDetails. A load that finishes
	// after a newer one started discards its result instead of clobbering
	// fresher state.
	loadSeq uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty board store backed by the given API client.
func NewStore(client *api.Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		logger: slog.Default(),
		cards:  make(map[string][]model.Card),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Reset drops all cached state, e.g. on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = nil
	s.currentBoard = nil
	s.lists = nil
	s.cards = make(map[string][]model.Card)
	s.isLoading = false
	s.err = ""
	s.loadSeq++
}

// FetchBoards replaces the board collection wholesale. On failure the
// error is recorded and the prior collection stays intact.
func (s *Store) FetchBoards(ctx context.Context) error {
	s.beginLoad()

	boards, err := s.client.ListBoards(ctx)
	if err != nil {
		s.failLoad(api.ErrorMessage(err, "Failed to fetch boards"))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = boards
	s.isLoading = false
	return nil
}

// FetchBoardDetails loads one board, its lists, and then every list's
// cards concurrently. The cards mapping is installed only after all card
// fetches succeed; any single failure surfaces an error instead of partial
// data. A load superseded by a newer one discards its results.
func (s *Store) FetchBoardDetails(ctx context.Context, boardID string) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()

	boardRes, err := s.client.GetBoard(ctx, boardID)
	if err != nil {
		s.failLoadSeq(seq, api.ErrorMessage(err, "Failed to fetch board details"))
		return err
	}
	if !s.install(seq, func() { s.currentBoard = boardRes }) {
		return nil
	}

	lists, err := s.client.ListLists(ctx, boardID)
	if err != nil {
		s.failLoadSeq(seq, api.ErrorMessage(err, "Failed to fetch board details"))
		return err
	}
	if !s.install(seq, func() { s.lists = lists }) {
		return nil
	}

	// Fan out one card fetch per list; any rejection fails the whole
	// gather so the mapping is never partially populated.
	results := make([][]model.Card, len(lists))
	g, gctx := errgroup.WithContext(ctx)
	for i, list := range lists {
		i, list := i, list
		g.Go(func() error {
			cards, err := s.client.ListCards(gctx, list.ID)
			if err != nil {
				return err
			}
			results[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.failLoadSeq(seq, api.ErrorMessage(err, "Failed to fetch board details"))
		return err
	}

	cardsMap := make(map[string][]model.Card, len(lists))
	for i, list := range lists {
		cardsMap[list.ID] = results[i]
	}

	s.install(seq, func() {
		s.cards = cardsMap
		s.isLoading = false
	})
	return nil
}

// install applies fn under the lock if seq is still the newest load.
// Returns false when the load has been superseded.
func (s *Store) install(seq uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		s.logger.Debug("Discarding stale board load", "seq", seq, "newest", s.loadSeq)
		return false
	}
	fn()
	return true
}

// CreateBoard creates a board and appends the server's authoritative copy
// to the collection. The created board is returned so callers can navigate
// to it; on failure state is untouched and the error is both recorded and
// returned.
func (s *Store) CreateBoard(ctx context.Context, name, background string) (*model.Board, error) {
	s.beginLoad()

	board, err := s.client.CreateBoard(ctx, name, background)
	if err != nil {
		s.failLoad(api.ErrorMessage(err, "Failed to create board"))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = append(s.boards, *board)
	s.isLoading = false
	return board, nil
}

// UpdateBoard applies a partial patch and replaces the local entity with
// the server's returned copy, both in the collection and in the current
// board snapshot when it matches.
func (s *Store) UpdateBoard(ctx context.Context, boardID string, patch model.BoardPatch) error {
	s.beginLoad()

	updated, err := s.client.UpdateBoard(ctx, boardID, patch)
	if err != nil {
		s.failLoad(api.ErrorMessage(err, "Failed to update board"))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.boards {
		if s.boards[i].ID == boardID {
			s.boards[i] = *updated
		}
	}
	if s.currentBoard != nil && s.currentBoard.ID == boardID {
		s.currentBoard = updated
	}
	s.isLoading = false
	return nil
}

// DeleteBoard removes a board from the collection. List and card state for
// the board is not cleaned up here; it is rebuilt on the next
// FetchBoardDetails.
func (s *Store) DeleteBoard(ctx context.Context, boardID string) error {
	s.beginLoad()

	if err := s.client.DeleteBoard(ctx, boardID); err != nil {
		s.failLoad(api.ErrorMessage(err, "Failed to delete board"))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.boards[:0]
	for _, b := range s.boards {
		if b.ID != boardID {
			kept = append(kept, b)
		}
	}
	s.boards = kept
	if s.currentBoard != nil && s.currentBoard.ID == boardID {
		s.currentBoard = nil
	}
	s.isLoading = false
	return nil
}

// ToggleFavorite sets the favorite flag server-side and then patches only
// that flag locally. On failure the flag is left as it was and only the
// error field is set — this mutation is never re-synced from the server.
func (s *Store) ToggleFavorite(ctx context.Context, boardID string, favorite bool) error {
	if err := s.client.SetFavorite(ctx, boardID, favorite); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to update favorite status"))
		return err
	}

	s.patchBoardFlag(boardID, func(b *model.Board) { b.IsFavorite = favorite })
	return nil
}

// ToggleArchive sets the archived flag server-side and then patches only
// that flag locally. Failure semantics match ToggleFavorite.
func (s *Store) ToggleArchive(ctx context.Context, boardID string, archived bool) error {
	if err := s.client.SetArchived(ctx, boardID, archived); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to update archive status"))
		return err
	}

	s.patchBoardFlag(boardID, func(b *model.Board) { b.IsArchived = archived })
	return nil
}

func (s *Store) patchBoardFlag(boardID string, patch func(*model.Board)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.boards {
		if s.boards[i].ID == boardID {
			patch(&s.boards[i])
		}
	}
	if s.currentBoard != nil && s.currentBoard.ID == boardID {
		patch(s.currentBoard)
	}
}

// ShareBoard grants another user access to a board. Membership shown
// locally refreshes on the next board fetch.
func (s *Store) ShareBoard(ctx context.Context, boardID, userID string, role model.Role) error {
	if err := s.client.ShareBoard(ctx, boardID, userID, role); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to share board"))
		return err
	}
	return nil
}

// DuplicateBoard copies a board and appends the copy to the collection,
// returning it for navigation like CreateBoard.
func (s *Store) DuplicateBoard(ctx context.Context, boardID, name string, keepMembers bool) (*model.Board, error) {
	board, err := s.client.DuplicateBoard(ctx, boardID, name, keepMembers)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to duplicate board"))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = append(s.boards, *board)
	return board, nil
}

// FetchBoardTemplates returns the available templates. Templates are not
// part of the user's board collection and are not cached.
func (s *Store) FetchBoardTemplates(ctx context.Context) ([]model.Board, error) {
	boards, err := s.client.GetBoardTemplates(ctx)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch board templates"))
		return nil, err
	}
	return boards, nil
}

func (s *Store) beginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = true
	s.err = ""
}

func (s *Store) failLoad(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	s.err = msg
}

// failLoadSeq records a load failure unless the load was superseded.
func (s *Store) failLoadSeq(seq uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		return
	}
	s.isLoading = false
	s.err = msg
}

func (s *Store) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Boards returns a copy of the board collection.
func (s *Store) Boards() []model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Board, len(s.boards))
	copy(out, s.boards)
	return out
}

// CurrentBoard returns a copy of the open board, or nil.
func (s *Store) CurrentBoard() *model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentBoard == nil {
		return nil
	}
	board := *s.currentBoard
	return &board
}

// Lists returns a copy of the open board's lists.
func (s *Store) Lists() []model.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.List, len(s.lists))
	copy(out, s.lists)
	return out
}

// Cards returns a copy of the list→cards mapping.
func (s *Store) Cards() map[string][]model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]model.Card, len(s.cards))
	for listID, cards := range s.cards {
		cp := make([]model.Card, len(cards))
		copy(cp, cards)
		out[listID] = cp
	}
	return out
}

// CardsIn returns a copy of one list's cards in order.
func (s *Store) CardsIn(listID string) []model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards := s.cards[listID]
	out := make([]model.Card, len(cards))
	copy(out, cards)
	return out
}

// IsLoading reports whether a load or mutation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// Err returns the last recorded error message, empty after a successful
// load.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
