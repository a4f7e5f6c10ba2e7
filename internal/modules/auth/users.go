package auth

import (
	"context"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"

	"github.com/jmoiron/sqlx"
)

// UserDirectory answers user existence for the membership coordinator.
type UserDirectory struct{}

func NewUserDirectory() UserDirectory {
	return UserDirectory{}
}

// UserExists reads through q so the check joins the caller's transaction.
func (UserDirectory) UserExists(ctx context.Context, q sqlx.QueryerContext, userID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT
				1
			FROM
				users
			WHERE
				id = $1
		);`

	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, query, userID); err != nil {
		return false, core.ClassifyStoreError(err)
	}

	return exists, nil
}
