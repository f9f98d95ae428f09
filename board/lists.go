package board

import (
	"context"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/model"
)

// CreateList creates a list under a board, appends the server's copy, and
// registers an empty entry for it in the cards mapping. The created list is
// returned; on failure state is untouched and the error is recorded and
// returned.
func (s *Store) CreateList(ctx context.Context, boardID, title string) (*model.List, error) {
	list, err := s.client.CreateList(ctx, boardID, title)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to create list"))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, *list)
	s.cards[list.ID] = []model.Card{}
	return list, nil
}

// UpdateList renames a list and replaces the local entity with the
// server's returned copy.
func (s *Store) UpdateList(ctx context.Context, listID, title string) error {
	updated, err := s.client.UpdateList(ctx, listID, title)
	if err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to update list"))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lists {
		if s.lists[i].ID == listID {
			s.lists[i] = *updated
		}
	}
	return nil
}

// DeleteList removes a list and its entry in the cards mapping, so no
// orphaned card collection is left behind.
func (s *Store) DeleteList(ctx context.Context, listID string) error {
	if err := s.client.DeleteList(ctx, listID); err != nil {
		s.setErr(api.ErrorMessage(err, "Failed to delete list"))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.lists[:0]
	for _, l := range s.lists {
		if l.ID != listID {
			kept = append(kept, l)
		}
	}
	s.lists = kept
	delete(s.cards, listID)
	return nil
}
