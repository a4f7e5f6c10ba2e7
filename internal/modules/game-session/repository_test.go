package gamesession

import (
	"context"
	"testing"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"

	"github.com/stretchr/testify/require"
)

func Test_Create_Applies_Defaults(t *testing.T) {
	// Arrange
	store := newTestStore(t)

	// Act
	session, err := store.sessions.Create(context.Background(), "lobby", "", 0)

	// Assert
	require.NoError(t, err)
	require.Positive(t, session.ID)
	require.Equal(t, "lobby", session.Name)
	require.Equal(t, domain.StatusWaiting, session.Status)
	require.Equal(t, domain.DefaultCapacity, session.Capacity)
	require.Zero(t, session.Occupancy)
	require.False(t, session.CreatedAt.IsZero())
}

func Test_GetByID_Missing_Session_Is_Not_Found(t *testing.T) {
	// Arrange
	store := newTestStore(t)

	// Act
	_, err := store.sessions.GetByID(context.Background(), 42)

	// Assert
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func Test_GetAll_Returns_Newest_First(t *testing.T) {
	// Arrange
	store := newTestStore(t)
	first := store.createSession(t, 2)
	second := store.createSession(t, 3)

	// Act
	sessions, err := store.sessions.GetAll(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, second.ID, sessions[0].ID)
	require.Equal(t, first.ID, sessions[1].ID)
}

func Test_GetAll_Empty_Store_Returns_Empty_List(t *testing.T) {
	// Arrange
	store := newTestStore(t)

	// Act
	sessions, err := store.sessions.GetAll(context.Background())

	// Assert
	require.NoError(t, err)
	require.NotNil(t, sessions)
	require.Empty(t, sessions)
}

func Test_GetAvailable_Excludes_Full_Sessions(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newTestStore(t)
	full := store.createSession(t, 2)
	open := store.createSession(t, 2)
	users := createUsers(t, 3)

	require.NoError(t, store.coordinator.AddMember(ctx, full.ID, users[0]))
	require.NoError(t, store.coordinator.AddMember(ctx, full.ID, users[1]))
	require.NoError(t, store.coordinator.AddMember(ctx, open.ID, users[2]))

	// Act
	sessions, err := store.sessions.GetAvailable(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, open.ID, sessions[0].ID)
	for _, session := range sessions {
		require.Less(t, session.Occupancy, session.Capacity)
	}
}

func Test_GetByStatus_Matches_Exactly(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newTestStore(t)
	waiting := store.createSession(t, 4)
	_, err := store.sessions.Create(ctx, "started", "playing", 4)
	require.NoError(t, err)

	// Act
	sessions, err := store.sessions.GetByStatus(ctx, domain.StatusWaiting)

	// Assert
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, waiting.ID, sessions[0].ID)
}

func Test_Update_Changes_Only_Given_Fields(t *testing.T) {
	// Arrange
	store := newTestStore(t)
	session := store.createSession(t, 4)
	status := "playing"

	// Act
	updated, err := store.sessions.Update(context.Background(), session.ID, domain.SessionUpdate{Status: &status})

	// Assert
	require.NoError(t, err)
	require.Equal(t, "playing", updated.Status)
	require.Equal(t, session.Name, updated.Name)
	require.Equal(t, session.Capacity, updated.Capacity)
	require.False(t, updated.UpdatedAt.Before(session.UpdatedAt))
}

func Test_Update_Missing_Session_Is_Not_Found(t *testing.T) {
	// Arrange
	store := newTestStore(t)
	name := "x"

	// Act
	_, err := store.sessions.Update(context.Background(), 42, domain.SessionUpdate{Name: &name})

	// Assert
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func Test_Update_Refuses_Capacity_Below_Occupancy(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newTestStore(t)
	session := store.createSession(t, 4)
	users := createUsers(t, 3)
	for _, userID := range users {
		require.NoError(t, store.coordinator.AddMember(ctx, session.ID, userID))
	}
	capacity := 2

	// Act
	_, err := store.sessions.Update(ctx, session.ID, domain.SessionUpdate{Capacity: &capacity})

	// Assert
	require.ErrorIs(t, err, domain.ErrCapacityBelowOccupancy)
	current := store.requireConsistent(t, session.ID)
	require.Equal(t, 4, current.Capacity)
}

func Test_Update_Capacity_Equal_To_Occupancy_Fills_Session(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newTestStore(t)
	session := store.createSession(t, 4)
	users := createUsers(t, 3)
	for _, userID := range users[:2] {
		require.NoError(t, store.coordinator.AddMember(ctx, session.ID, userID))
	}
	capacity := 2

	// Act
	updated, err := store.sessions.Update(ctx, session.ID, domain.SessionUpdate{Capacity: &capacity})

	// Assert
	require.NoError(t, err)
	require.Equal(t, 2, updated.Capacity)
	require.ErrorIs(t, store.coordinator.AddMember(ctx, session.ID, users[2]), domain.ErrSessionFull)
}

func Test_Delete_Removes_Session_And_Memberships(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := newTestStore(t)
	session := store.createSession(t, 4)
	users := createUsers(t, 1)
	require.NoError(t, store.coordinator.AddMember(ctx, session.ID, users[0]))

	// Act
	deleted, err := store.sessions.Delete(ctx, session.ID)

	// Assert
	require.NoError(t, err)
	require.True(t, deleted)

	count := memberCount(t, session.ID)
	require.Zero(t, count)

	_, err = store.sessions.GetByID(ctx, session.ID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func Test_Delete_Missing_Session_Returns_False(t *testing.T) {
	// Arrange
	store := newTestStore(t)

	// Act
	deleted, err := store.sessions.Delete(context.Background(), 42)

	// Assert
	require.NoError(t, err)
	require.False(t, deleted)
}
