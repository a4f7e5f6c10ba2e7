package gamesession

import (
	"context"
	"fmt"
	"time"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/telemetry"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// UserDirectory answers whether a user exists, reading through the caller's
// transaction.
type UserDirectory interface {
	UserExists(ctx context.Context, q sqlx.QueryerContext, userID int64) (bool, error)
}

// MembershipCoordinator adds and removes session members. Every change runs
// in one transaction holding the session row lock, so occupancy and the
// membership rows move together and capacity is never exceeded. Sessions
// are independent: only requests for the same session wait on each other.
type MembershipCoordinator struct {
	db          *sqlx.DB
	users       UserDirectory
	lockTimeout time.Duration
	tracer      trace.Tracer
}

func NewMembershipCoordinator(db *sqlx.DB, users UserDirectory, lockTimeout time.Duration) *MembershipCoordinator {
	return &MembershipCoordinator{
		db:          db,
		users:       users,
		lockTimeout: lockTimeout,
		tracer:      telemetry.Tracer(),
	}
}

func (c *MembershipCoordinator) AddMember(ctx context.Context, sessionID int64, userID int64) (err error) {
	ctx, span := c.tracer.Start(ctx, "MembershipCoordinator.AddMember", membershipAttributes(sessionID, userID))
	defer func() {
		core.RecordSpanError(span, err)
		span.End()
	}()

	return core.Tx(ctx, c.db, func(ctx context.Context, tx *sqlx.Tx) error {
		session, err := lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		exists, err := c.users.UserExists(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}

		member, err := isMember(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if member {
			return domain.ErrAlreadyMember
		}

		if session.Full() {
			return domain.ErrSessionFull
		}

		const insertStmt = `
			INSERT INTO
				session_users (session_id, user_id)
			VALUES
				($1, $2);`
		if _, err := tx.ExecContext(ctx, insertStmt, sessionID, userID); err != nil {
			switch {
			case core.IsUniqueViolation(err):
				return domain.ErrAlreadyMember
			case core.IsForeignKeyViolation(err):
				return domain.ErrUserNotFound
			}
			return err
		}

		const updateStmt = `
			UPDATE
				sessions
			SET
				occupancy = occupancy + 1,
				updated_at = NOW()
			WHERE
				id = $1;`
		if _, err := tx.ExecContext(ctx, updateStmt, sessionID); err != nil {
			return err
		}

		return nil
	}, core.WithLockTimeout(c.lockTimeout))
}

func (c *MembershipCoordinator) RemoveMember(ctx context.Context, sessionID int64, userID int64) (err error) {
	ctx, span := c.tracer.Start(ctx, "MembershipCoordinator.RemoveMember", membershipAttributes(sessionID, userID))
	defer func() {
		core.RecordSpanError(span, err)
		span.End()
	}()

	return core.Tx(ctx, c.db, func(ctx context.Context, tx *sqlx.Tx) error {
		session, err := lockSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		const deleteStmt = `
			DELETE FROM
				session_users
			WHERE
				session_id = $1 AND user_id = $2;`
		result, err := tx.ExecContext(ctx, deleteStmt, sessionID, userID)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotAMember
		}

		// A membership row existed, so occupancy must be positive.
		if session.Occupancy <= 0 {
			core.LogError(ctx, "session occupancy drifted from memberships",
				zap.Int64("session_id", sessionID),
				zap.Int64("user_id", userID),
				zap.Int("occupancy", session.Occupancy),
			)
			return fmt.Errorf("session %d: %w", sessionID, domain.ErrOccupancyDrift)
		}

		const updateStmt = `
			UPDATE
				sessions
			SET
				occupancy = occupancy - 1,
				updated_at = NOW()
			WHERE
				id = $1;`
		if _, err := tx.ExecContext(ctx, updateStmt, sessionID); err != nil {
			return err
		}

		return nil
	}, core.WithLockTimeout(c.lockTimeout))
}

func isMember(ctx context.Context, q sqlx.QueryerContext, sessionID int64, userID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT
				1
			FROM
				session_users
			WHERE
				session_id = $1 AND user_id = $2
		);`

	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, query, sessionID, userID); err != nil {
		return false, err
	}

	return exists, nil
}

func membershipAttributes(sessionID int64, userID int64) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.Int64("session.id", sessionID),
		attribute.Int64("user.id", userID),
	)
}
