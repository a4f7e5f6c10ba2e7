package gamesession

import (
	"context"
	"fmt"
	"strings"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"
)

var errInvalidMaxPlayers = fmt.Errorf(
	"maxPlayers must be an integer between %d and %d",
	domain.MinCapacity,
	domain.MaxCapacity,
)

type CreateSessionCommand struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	MaxPlayers *int   `json:"maxPlayers"`
}

func (c CreateSessionCommand) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}

	if c.MaxPlayers != nil && !domain.ValidCapacity(*c.MaxPlayers) {
		errs = append(errs, errInvalidMaxPlayers)
	}

	return core.Validate(errs...)
}

func (c CreateSessionCommand) capacity() int {
	if c.MaxPlayers == nil {
		return domain.DefaultCapacity
	}
	return *c.MaxPlayers
}

type CreateSessionCommandHandler struct {
	sessions *SessionRepository
	cache    ListCache
}

func NewCreateSessionCommandHandler(sessions *SessionRepository, cache ListCache) *CreateSessionCommandHandler {
	return &CreateSessionCommandHandler{sessions, cache}
}

func (h *CreateSessionCommandHandler) Handle(
	ctx context.Context,
	request CreateSessionCommand,
) (domain.Session, error) {
	session, err := h.sessions.Create(
		ctx,
		strings.TrimSpace(request.Name),
		strings.TrimSpace(request.Status),
		request.capacity(),
	)
	if err != nil {
		return domain.Session{}, err
	}

	InvalidateCache(ctx, h.cache)

	return session, nil
}
