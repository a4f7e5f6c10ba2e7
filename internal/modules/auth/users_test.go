package auth

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth/commands"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth/domain"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/tests"

	"github.com/stretchr/testify/require"
)

var fixture = tests.NewLocalTestFixture()

func TestMain(m *testing.M) {
	ctx := context.Background()

	fixture.Start(ctx)
	code := m.Run()

	if err := fixture.Stop(ctx); err != nil {
		code = 1
	}

	os.Exit(code)
}

func Test_GuestLogin_Creates_Guest_And_Issues_Token(t *testing.T) {
	// Arrange
	db := fixture.DB(t)
	fixture.Reset(t)

	tokens := domain.NewTokens("secret", time.Hour)
	handler := commands.NewGuestLoginCommandHandler(db, tokens)

	// Act
	response, err := handler.Handle(context.Background(), commands.GuestLoginCommand{})

	// Assert
	require.NoError(t, err)
	require.Positive(t, response.ID)
	require.True(t, strings.HasPrefix(response.Name, "Guest_"))
	require.True(t, response.IsGuest)
	require.True(t, response.Status)
	require.Nil(t, response.Email)

	session, err := tokens.Verify(response.Token)
	require.NoError(t, err)
	require.Equal(t, response.ID, session.UserID)
	require.True(t, session.Guest)
}

func Test_UserDirectory_UserExists(t *testing.T) {
	// Arrange
	db := fixture.DB(t)
	fixture.Reset(t)

	userID := fixture.CreateUser(t, "alice")
	directory := NewUserDirectory()

	// Act
	exists, err := directory.UserExists(context.Background(), db, userID)
	require.NoError(t, err)

	missing, err := directory.UserExists(context.Background(), db, userID+1000)
	require.NoError(t, err)

	// Assert
	require.True(t, exists)
	require.False(t, missing)
}
