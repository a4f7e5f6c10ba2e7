package gamesession

import (
	"context"
	"database/sql"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"

	"github.com/jmoiron/sqlx"
)

// MembershipQuery reads memberships without taking locks. A listing may lag
// a concurrent join or leave but always reflects a committed state.
type MembershipQuery struct {
	db *sqlx.DB
}

func NewMembershipQuery(db *sqlx.DB) *MembershipQuery {
	return &MembershipQuery{db}
}

// GetUsers returns the members of a session ordered by user id. The existence
// check and the listing read one snapshot.
func (q *MembershipQuery) GetUsers(ctx context.Context, sessionID int64) ([]domain.UserSummary, error) {
	users := []domain.UserSummary{}

	err := core.Tx(ctx, q.db, func(ctx context.Context, tx *sqlx.Tx) error {
		const existsQuery = `
			SELECT EXISTS (
				SELECT
					1
				FROM
					sessions
				WHERE
					id = $1
			);`

		var exists bool
		if err := tx.GetContext(ctx, &exists, existsQuery, sessionID); err != nil {
			return err
		}
		if !exists {
			return domain.ErrSessionNotFound
		}

		const query = `
			SELECT
				u.id, u.name, u.email, u.status, u.is_guest, u.created_at
			FROM
				session_users su
			JOIN
				users u ON u.id = su.user_id
			WHERE
				su.session_id = $1
			ORDER BY
				u.id ASC;`

		return tx.SelectContext(ctx, &users, query, sessionID)
	}, core.WithIsolationLevel(sql.LevelRepeatableRead), core.WithReadOnly())
	if err != nil {
		return nil, err
	}

	return users, nil
}
