package board

import (
	"context"
	"io"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/model"
)

// CreateCard creates a card under a list and appends the server's copy to
// that list's collection. The created card is returned; on failure state is
// untouched and the error is recorded and returned.
func (s *Store) CreateCard(ctx context.Context, listID, title, description string) (*model.Card, error) {
	card, err := s.client.CreateCard(ctx, listID, title, description)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to create card"))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[listID] = append(s.cards[listID], *card)
	return card, nil
}

// UpdateCard applies a partial patch and replaces the local card with the
// server's returned copy, wherever in the mapping it lives.
func (s *Store) UpdateCard(ctx context.Context, cardID string, patch model.CardPatch) error {
	updated, err := s.client.UpdateCard(ctx, cardID, patch)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to update card"))
		return err
	}

	s.replaceCard(updated)
	return nil
}

// DeleteCard removes a card from whichever list holds it.
func (s *Store) DeleteCard(ctx context.Context, cardID string) error {
	if err := s.client.DeleteCard(ctx, cardID); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to delete card"))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for listID, cards := range s.cards {
		for i := range cards {
			if cards[i].ID == cardID {
				s.cards[listID] = append(cards[:i:i], cards[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// MoveCard moves a card between lists. Equal source and destination is a
// no-op with no API call. The move is applied to local state first and the
// API is called after; a rejected call is not rolled back in place —
// instead the whole open board is refetched so the server's ordering wins.
func (s *Store) MoveCard(ctx context.Context, cardID, sourceListID, destListID string) error {
	if sourceListID == destListID {
		return nil
	}

	s.mu.Lock()
	source := s.cards[sourceListID]
	for i := range source {
		if source[i].ID == cardID {
			moved := source[i]
			moved.ListID = destListID
			s.cards[sourceListID] = append(source[:i:i], source[i+1:]...)
			s.cards[destListID] = append(s.cards[destListID], moved)
			break
		}
	}
	currentID := ""
	if s.currentBoard != nil {
		currentID = s.currentBoard.ID
	}
	s.mu.Unlock()

	if _, err := s.client.MoveCard(ctx, cardID, destListID); err != nil {
		if currentID != "" {
			if ferr := s.FetchBoardDetails(ctx, currentID); ferr != nil {
				s.logger.Warn("Reconciliation refetch failed", "board_id", currentID, "error", ferr)
			}
		}
		// Recorded after the refetch so the message outlives it
		s.setErr(api.ErrorMessage(err, "Failed to move card"))
		return err
	}
	return nil
}

// FetchCard loads one card with its nested detail and refreshes the cached
// copy when the card is present in the mapping.
func (s *Store) FetchCard(ctx context.Context, cardID string) (*model.Card, error) {
	card, err := s.client.GetCard(ctx, cardID)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to fetch card"))
		return nil, err
	}

	s.replaceCard(card)
	return card, nil
}

// AddComment appends a comment to a card server-side, then refreshes the
// card so the cached copy carries the authoritative comment set.
func (s *Store) AddComment(ctx context.Context, cardID, text string) error {
	if err := s.client.AddComment(ctx, cardID, text); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to add comment"))
		return err
	}

	_, err := s.FetchCard(ctx, cardID)
	return err
}

// AddChecklist creates a checklist on a card server-side, then refreshes
// the card.
func (s *Store) AddChecklist(ctx context.Context, cardID, title string) error {
	if err := s.client.AddChecklist(ctx, cardID, title); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to add checklist"))
		return err
	}

	_, err := s.FetchCard(ctx, cardID)
	return err
}

// AddAttachment uploads a file to a card, then refreshes the card.
func (s *Store) AddAttachment(ctx context.Context, cardID, filename string, r io.Reader) error {
	if err := s.client.AddAttachment(ctx, cardID, filename, r); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to add attachment"))
		return err
	}

	_, err := s.FetchCard(ctx, cardID)
	return err
}

// replaceCard swaps in the server's copy of a card wherever its ID appears
// in the mapping. A card not currently cached is left alone.
func (s *Store) replaceCard(card *model.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for listID, cards := range s.cards {
		for i := range cards {
			if cards[i].ID == card.ID {
				s.cards[listID][i] = *card
				return
			}
		}
	}
}
