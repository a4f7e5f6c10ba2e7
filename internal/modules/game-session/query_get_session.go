package gamesession

import (
	"context"
	"fmt"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"
)

type GetSessionQuery struct {
	ID int64
}

func (q GetSessionQuery) Validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("invalid session id - '%d'", q.ID)
	}

	return nil
}

type GetSessionQueryHandler struct {
	sessions *SessionRepository
}

func NewGetSessionQueryHandler(sessions *SessionRepository) *GetSessionQueryHandler {
	return &GetSessionQueryHandler{sessions}
}

// Handle always reads the store: occupancy is what callers decide to join on.
func (h *GetSessionQueryHandler) Handle(ctx context.Context, request GetSessionQuery) (domain.Session, error) {
	return h.sessions.GetByID(ctx, request.ID)
}
