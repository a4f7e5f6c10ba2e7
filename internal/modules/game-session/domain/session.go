package domain

import (
	"time"
)

const (
	StatusWaiting = "waiting"

	MinCapacity     = 2
	MaxCapacity     = 4
	DefaultCapacity = 4
)

// Session is a joinable lobby. Occupancy always equals the number of its
// memberships and never exceeds Capacity.
type Session struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	Capacity  int       `db:"capacity" json:"maxPlayers"`
	Occupancy int       `db:"occupancy" json:"currentPlayers"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (s Session) Full() bool {
	return s.Occupancy >= s.Capacity
}

type UserSummary struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email"`
	Status    bool      `db:"status" json:"status"`
	IsGuest   bool      `db:"is_guest" json:"isGuest"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SessionUpdate holds the fields to change. Nil fields are left untouched.
type SessionUpdate struct {
	Name     *string
	Status   *string
	Capacity *int
}

func ValidCapacity(capacity int) bool {
	return capacity >= MinCapacity && capacity <= MaxCapacity
}
