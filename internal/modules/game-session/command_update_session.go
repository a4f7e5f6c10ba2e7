package gamesession

import (
	"context"
	"fmt"
	"strings"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"
)

type UpdateSessionCommand struct {
	ID         int64   `json:"-"`
	Name       *string `json:"name"`
	Status     *string `json:"status"`
	MaxPlayers *int    `json:"maxPlayers"`
}

func (c UpdateSessionCommand) Validate() error {
	var errs []error

	if c.ID <= 0 {
		errs = append(errs, fmt.Errorf("invalid session id - '%d'", c.ID))
	}

	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		errs = append(errs, fmt.Errorf("name must not be empty"))
	}

	if c.Status != nil && strings.TrimSpace(*c.Status) == "" {
		errs = append(errs, fmt.Errorf("status must not be empty"))
	}

	if c.MaxPlayers != nil && !domain.ValidCapacity(*c.MaxPlayers) {
		errs = append(errs, errInvalidMaxPlayers)
	}

	return core.Validate(errs...)
}

func (c UpdateSessionCommand) update() domain.SessionUpdate {
	update := domain.SessionUpdate{Capacity: c.MaxPlayers}

	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		update.Name = &name
	}

	if c.Status != nil {
		status := strings.TrimSpace(*c.Status)
		update.Status = &status
	}

	return update
}

type UpdateSessionCommandHandler struct {
	sessions *SessionRepository
	cache    ListCache
}

func NewUpdateSessionCommandHandler(sessions *SessionRepository, cache ListCache) *UpdateSessionCommandHandler {
	return &UpdateSessionCommandHandler{sessions, cache}
}

func (h *UpdateSessionCommandHandler) Handle(
	ctx context.Context,
	request UpdateSessionCommand,
) (domain.Session, error) {
	session, err := h.sessions.Update(ctx, request.ID, request.update())
	if err != nil {
		return domain.Session{}, err
	}

	InvalidateCache(ctx, h.cache)

	return session, nil
}
