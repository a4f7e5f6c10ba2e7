package domain

import (
	"errors"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
)

var (
	ErrSessionNotFound = core.NotFound("session").WithMessage("Session not found")
	ErrUserNotFound    = core.NotFound("user").WithMessage("User not found")
	ErrNotAMember      = core.NotFound("membership").WithMessage("User is not in this session")

	ErrAlreadyMember = core.Conflict("already a member").WithMessage("User already in session")
	ErrSessionFull   = core.Conflict("session full").WithMessage("Session is full")

	ErrCapacityBelowOccupancy = core.Conflict("capacity below occupancy").WithMessage(
		"maxPlayers cannot be lower than the current number of players",
	)

	// ErrOccupancyDrift means the occupancy counter no longer matches the
	// membership rows. It is never a client error.
	ErrOccupancyDrift = errors.New("session occupancy does not match its memberships")
)
