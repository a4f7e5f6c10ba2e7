package gamesession

import (
	"context"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
)

type LeaveSessionCommand struct {
	SessionID int64
	UserID    int64
}

func (c LeaveSessionCommand) Validate() error {
	return validateMembershipIDs(c.SessionID, c.UserID)
}

type LeaveSessionCommandHandler struct {
	coordinator *MembershipCoordinator
	cache       ListCache
}

func NewLeaveSessionCommandHandler(coordinator *MembershipCoordinator, cache ListCache) *LeaveSessionCommandHandler {
	return &LeaveSessionCommandHandler{coordinator, cache}
}

func (h *LeaveSessionCommandHandler) Handle(ctx context.Context, request LeaveSessionCommand) (core.Unit, error) {
	if err := h.coordinator.RemoveMember(ctx, request.SessionID, request.UserID); err != nil {
		return core.Unit{}, err
	}

	InvalidateCache(ctx, h.cache)

	return core.Unit{}, nil
}
