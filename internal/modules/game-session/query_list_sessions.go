package gamesession

import (
	"context"
	"fmt"
	"strings"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"
)

type ListFilter string

const (
	ListFilterAll       ListFilter = "all"
	ListFilterAvailable ListFilter = "available"
	ListFilterStatus    ListFilter = "status"
)

type ListSessionsQuery struct {
	Filter ListFilter
	Status string
}

func (q ListSessionsQuery) Validate() error {
	switch q.Filter {
	case ListFilterAll, ListFilterAvailable:
		return nil
	case ListFilterStatus:
		if strings.TrimSpace(q.Status) == "" {
			return fmt.Errorf("status is required")
		}
		return nil
	default:
		return fmt.Errorf("invalid filter - '%s'", q.Filter)
	}
}

type ListSessionsQueryHandler struct {
	sessions *SessionRepository
	cache    ListCache
}

func NewListSessionsQueryHandler(sessions *SessionRepository, cache ListCache) *ListSessionsQueryHandler {
	return &ListSessionsQueryHandler{sessions, cache}
}

// Handle lists sessions newest first. Only the plain listings are cached;
// the available listing reads the store so it never offers a full session.
func (h *ListSessionsQueryHandler) Handle(ctx context.Context, request ListSessionsQuery) ([]domain.Session, error) {
	switch request.Filter {
	case ListFilterAvailable:
		return h.sessions.GetAvailable(ctx)
	case ListFilterStatus:
		return Cached(ctx, h.cache, StatusCacheKey(request.Status), func(ctx context.Context) ([]domain.Session, error) {
			return h.sessions.GetByStatus(ctx, request.Status)
		})
	default:
		return Cached(ctx, h.cache, CacheKeyAllSessions, h.sessions.GetAll)
	}
}
