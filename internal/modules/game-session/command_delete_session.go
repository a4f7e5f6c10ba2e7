package gamesession

import (
	"context"
	"fmt"
)

type DeleteSessionCommand struct {
	ID int64
}

func (c DeleteSessionCommand) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("invalid session id - '%d'", c.ID)
	}

	return nil
}

type DeleteSessionCommandHandler struct {
	sessions *SessionRepository
	cache    ListCache
}

func NewDeleteSessionCommandHandler(sessions *SessionRepository, cache ListCache) *DeleteSessionCommandHandler {
	return &DeleteSessionCommandHandler{sessions, cache}
}

// Handle reports whether the session existed.
func (h *DeleteSessionCommandHandler) Handle(ctx context.Context, request DeleteSessionCommand) (bool, error) {
	deleted, err := h.sessions.Delete(ctx, request.ID)
	if err != nil {
		return false, err
	}

	if deleted {
		InvalidateCache(ctx, h.cache)
	}

	return deleted, nil
}
