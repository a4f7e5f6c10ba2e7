package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Tokens_Verify_Accepts_Issued_Token(t *testing.T) {
	// Arrange
	tokens := NewTokens("secret", time.Hour)

	token, err := tokens.Issue(User{ID: 42, IsGuest: true})
	require.NoError(t, err)

	// Act
	session, err := tokens.Verify(token)

	// Assert
	require.NoError(t, err)
	require.Equal(t, int64(42), session.UserID)
	require.True(t, session.Guest)
}

func Test_Tokens_Verify_Rejects_Expired_Token(t *testing.T) {
	// Arrange
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer := NewTokens("secret", time.Hour, WithClock(func() time.Time { return issuedAt }))

	token, err := issuer.Issue(User{ID: 1})
	require.NoError(t, err)

	// Act
	_, err = NewTokens("secret", time.Hour).Verify(token)

	// Assert
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_Tokens_Verify_Rejects_Foreign_Signature(t *testing.T) {
	// Arrange
	token, err := NewTokens("other", time.Hour).Issue(User{ID: 1})
	require.NoError(t, err)

	// Act
	_, err = NewTokens("secret", time.Hour).Verify(token)

	// Assert
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_Tokens_Verify_Rejects_Garbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Verify("not-a-token")

	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_GuestName_Has_Prefix_And_Random_Suffix(t *testing.T) {
	// Act
	first := GuestName()
	second := GuestName()

	// Assert
	require.True(t, strings.HasPrefix(first, "Guest_"))
	require.Len(t, first, len("Guest_")+8)
	require.NotEqual(t, first, second)
}

func Test_NewGuest_Is_Active_Guest(t *testing.T) {
	guest := NewGuest()

	require.True(t, guest.IsGuest)
	require.True(t, guest.Status)
	require.Nil(t, guest.Email)
}
