package gamesession

import (
	"context"
	"fmt"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
)

type JoinSessionCommand struct {
	SessionID int64
	UserID    int64
}

func (c JoinSessionCommand) Validate() error {
	return validateMembershipIDs(c.SessionID, c.UserID)
}

type JoinSessionCommandHandler struct {
	coordinator *MembershipCoordinator
	cache       ListCache
}

func NewJoinSessionCommandHandler(coordinator *MembershipCoordinator, cache ListCache) *JoinSessionCommandHandler {
	return &JoinSessionCommandHandler{coordinator, cache}
}

func (h *JoinSessionCommandHandler) Handle(ctx context.Context, request JoinSessionCommand) (core.Unit, error) {
	if err := h.coordinator.AddMember(ctx, request.SessionID, request.UserID); err != nil {
		return core.Unit{}, err
	}

	InvalidateCache(ctx, h.cache)

	return core.Unit{}, nil
}

func validateMembershipIDs(sessionID int64, userID int64) error {
	var errs []error

	if sessionID <= 0 {
		errs = append(errs, fmt.Errorf("invalid sessionId - '%d'", sessionID))
	}

	if userID <= 0 {
		errs = append(errs, fmt.Errorf("invalid userId - '%d'", userID))
	}

	return core.Validate(errs...)
}
