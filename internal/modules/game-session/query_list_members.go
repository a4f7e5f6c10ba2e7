package gamesession

import (
	"context"
	"fmt"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"
)

type ListMembersQuery struct {
	SessionID int64
}

func (q ListMembersQuery) Validate() error {
	if q.SessionID <= 0 {
		return fmt.Errorf("invalid session id - '%d'", q.SessionID)
	}

	return nil
}

type ListMembersQueryHandler struct {
	members *MembershipQuery
}

func NewListMembersQueryHandler(members *MembershipQuery) *ListMembersQueryHandler {
	return &ListMembersQueryHandler{members}
}

func (h *ListMembersQueryHandler) Handle(ctx context.Context, request ListMembersQuery) ([]domain.UserSummary, error) {
	return h.members.GetUsers(ctx, request.SessionID)
}
