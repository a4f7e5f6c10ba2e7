package auth

import (
	"net/http"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth/commands"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
)

type AuthHTTPHandler struct {
	m *mediator.Mediator
}

func NewAuthHTTPHandler(m *mediator.Mediator) *AuthHTTPHandler {
	return &AuthHTTPHandler{m}
}

func (h *AuthHTTPHandler) HandleGuestLogin(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[commands.GuestLoginCommand, commands.GuestLoginResponse](
		h.m,
		r.Context(),
		commands.GuestLoginCommand{},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}
