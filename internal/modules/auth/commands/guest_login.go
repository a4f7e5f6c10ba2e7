package commands

import (
	"context"
	"errors"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth/domain"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"

	"github.com/jmoiron/sqlx"
)

var errGuestNotReturned = errors.New("guest insert returned no row")

type GuestLoginCommand struct{}

type GuestLoginResponse struct {
	domain.User
	Token string `json:"token"`
}

type GuestLoginCommandHandler struct {
	db     *sqlx.DB
	tokens *domain.Tokens
}

func NewGuestLoginCommandHandler(db *sqlx.DB, tokens *domain.Tokens) *GuestLoginCommandHandler {
	return &GuestLoginCommandHandler{db, tokens}
}

func (h *GuestLoginCommandHandler) Handle(ctx context.Context, _ GuestLoginCommand) (GuestLoginResponse, error) {
	guest := domain.NewGuest()

	const stmt = `
		INSERT INTO
			users (name, email, password, status, is_guest)
		VALUES
			(:name, NULL, NULL, :status, :is_guest)
		RETURNING
			id, name, email, status, is_guest, created_at;`

	rows, err := h.db.NamedQueryContext(ctx, stmt, guest)
	if err != nil {
		return GuestLoginResponse{}, core.ClassifyStoreError(err)
	}
	defer rows.Close()

	user, err := scanInsertedUser(rows)
	if err != nil {
		return GuestLoginResponse{}, err
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return GuestLoginResponse{}, err
	}

	return GuestLoginResponse{User: user, Token: token}, nil
}

type userRows interface {
	Next() bool
	StructScan(dest interface{}) error
	Err() error
}

// scanInsertedUser reads the single row an INSERT ... RETURNING produced.
func scanInsertedUser(rows userRows) (domain.User, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.User{}, core.ClassifyStoreError(err)
		}
		return domain.User{}, errGuestNotReturned
	}

	var user domain.User
	if err := rows.StructScan(&user); err != nil {
		return domain.User{}, err
	}

	if err := rows.Err(); err != nil {
		return domain.User{}, core.ClassifyStoreError(err)
	}

	return user, nil
}
