package gamesession

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"

	"github.com/jmoiron/sqlx"
)

const sessionColumns = `id, name, status, capacity, occupancy, created_at, updated_at`

// SessionRepository persists sessions. It never touches memberships, and it
// does not validate capacity bounds: callers do.
type SessionRepository struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

func NewSessionRepository(db *sqlx.DB, lockTimeout time.Duration) *SessionRepository {
	return &SessionRepository{db: db, lockTimeout: lockTimeout}
}

func (r *SessionRepository) Create(
	ctx context.Context,
	name string,
	status string,
	capacity int,
) (domain.Session, error) {
	if status == "" {
		status = domain.StatusWaiting
	}

	if capacity == 0 {
		capacity = domain.DefaultCapacity
	}

	const stmt = `
		INSERT INTO
			sessions (name, status, capacity, occupancy)
		VALUES
			($1, $2, $3, 0)
		RETURNING
			id, name, status, capacity, occupancy, created_at, updated_at;`

	var session domain.Session
	if err := r.db.GetContext(ctx, &session, stmt, name, status, capacity); err != nil {
		return domain.Session{}, core.ClassifyStoreError(err)
	}

	return session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (domain.Session, error) {
	const query = `
		SELECT
			` + sessionColumns + `
		FROM
			sessions
		WHERE
			id = $1;`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Session{}, domain.ErrSessionNotFound
	case err != nil:
		return domain.Session{}, core.ClassifyStoreError(err)
	}

	return session, nil
}

func (r *SessionRepository) GetAll(ctx context.Context) ([]domain.Session, error) {
	const query = `
		SELECT
			` + sessionColumns + `
		FROM
			sessions
		ORDER BY
			id DESC;`

	return r.list(ctx, query)
}

// GetAvailable returns sessions with at least one free seat.
func (r *SessionRepository) GetAvailable(ctx context.Context) ([]domain.Session, error) {
	const query = `
		SELECT
			` + sessionColumns + `
		FROM
			sessions
		WHERE
			occupancy < capacity
		ORDER BY
			id DESC;`

	return r.list(ctx, query)
}

func (r *SessionRepository) GetByStatus(ctx context.Context, status string) ([]domain.Session, error) {
	const query = `
		SELECT
			` + sessionColumns + `
		FROM
			sessions
		WHERE
			status = $1
		ORDER BY
			id DESC;`

	return r.list(ctx, query, status)
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Session, error) {
	sessions := []domain.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, core.ClassifyStoreError(err)
	}

	return sessions, nil
}

// Update applies the non-nil fields of update. The row is locked first so a
// capacity change is checked against the occupancy it will actually bound.
func (r *SessionRepository) Update(
	ctx context.Context,
	id int64,
	update domain.SessionUpdate,
) (domain.Session, error) {
	var updated domain.Session

	err := core.Tx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := lockSession(ctx, tx, id)
		if err != nil {
			return err
		}

		if update.Capacity != nil && *update.Capacity < current.Occupancy {
			return domain.ErrCapacityBelowOccupancy
		}

		const stmt = `
			UPDATE
				sessions
			SET
				name = COALESCE($2, name),
				status = COALESCE($3, status),
				capacity = COALESCE($4, capacity),
				updated_at = NOW()
			WHERE
				id = $1
			RETURNING
				id, name, status, capacity, occupancy, created_at, updated_at;`

		if err := tx.GetContext(ctx, &updated, stmt, id, update.Name, update.Status, update.Capacity); err != nil {
			if core.IsCheckViolation(err) {
				return domain.ErrCapacityBelowOccupancy
			}
			return err
		}

		return nil
	}, core.WithLockTimeout(r.lockTimeout))
	if err != nil {
		return domain.Session{}, err
	}

	return updated, nil
}

// Delete removes the session and, through the schema, its memberships. It
// reports whether a session was removed.
func (r *SessionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const stmt = `
		DELETE FROM
			sessions
		WHERE
			id = $1;`

	result, err := r.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return false, core.ClassifyStoreError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, core.ClassifyStoreError(err)
	}

	return affected > 0, nil
}

// lockSession takes the exclusive row lock that serializes every change to a
// session's occupancy.
func lockSession(ctx context.Context, tx *sqlx.Tx, id int64) (domain.Session, error) {
	const query = `
		SELECT
			` + sessionColumns + `
		FROM
			sessions
		WHERE
			id = $1
		FOR UPDATE;`

	var session domain.Session
	err := tx.GetContext(ctx, &session, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Session{}, domain.ErrSessionNotFound
	case err != nil:
		return domain.Session{}, err
	}

	return session, nil
}
