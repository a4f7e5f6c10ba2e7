package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	guestNamePrefix = "Guest_"
	guestNameLength = 8
)

type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Status    bool      `db:"status" json:"status"`
	IsGuest   bool      `db:"is_guest" json:"isGuest"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewGuest returns an unsaved guest account with a random name.
func NewGuest() User {
	return User{
		Name:    GuestName(),
		Status:  true,
		IsGuest: true,
	}
}

func GuestName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return guestNamePrefix + suffix[:guestNameLength]
}
