package gamesession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_ListAvailableSessions_Excludes_Session_Filled_Through_Another_Instance(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newTestStore(t)
	session := store.createSession(t, 2)
	users := createUsers(t, 2)

	joinOnA := NewJoinSessionCommandHandler(store.coordinator, NewMemoryListCache(time.Minute))
	listOnB := NewListSessionsQueryHandler(store.sessions, NewMemoryListCache(time.Minute))
	getOnB := NewGetSessionQueryHandler(store.sessions)

	available, err := listOnB.Handle(ctx, ListSessionsQuery{Filter: ListFilterAvailable})
	require.NoError(t, err)
	require.Len(t, available, 1)

	_, err = getOnB.Handle(ctx, GetSessionQuery{ID: session.ID})
	require.NoError(t, err)

	// Act
	for _, userID := range users {
		_, err := joinOnA.Handle(ctx, JoinSessionCommand{SessionID: session.ID, UserID: userID})
		require.NoError(t, err)
	}

	available, err = listOnB.Handle(ctx, ListSessionsQuery{Filter: ListFilterAvailable})
	require.NoError(t, err)
	current, err := getOnB.Handle(ctx, GetSessionQuery{ID: session.ID})
	require.NoError(t, err)

	// Assert
	require.Empty(t, available)
	require.Equal(t, 2, current.Occupancy)
	require.True(t, current.Full())
}

func Test_ListAvailableSessions_Reflects_Join_Without_Invalidation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newTestStore(t)
	session := store.createSession(t, 2)
	users := createUsers(t, 2)

	list := NewListSessionsQueryHandler(store.sessions, NewMemoryListCache(time.Minute))

	_, err := list.Handle(ctx, ListSessionsQuery{Filter: ListFilterAvailable})
	require.NoError(t, err)

	// Act
	for _, userID := range users {
		require.NoError(t, store.coordinator.AddMember(ctx, session.ID, userID))
	}
	available, err := list.Handle(ctx, ListSessionsQuery{Filter: ListFilterAvailable})

	// Assert
	require.NoError(t, err)
	require.Empty(t, available)
}
