package gamesession

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"

	"github.com/go-chi/chi/v5"
)

var (
	errInvalidJSONBody     = errors.New("Invalid JSON body")
	errInvalidSessionID    = errors.New("Invalid session id")
	errInvalidMembershipID = errors.New("Invalid sessionId or userId")
)

type GameSessionHTTPHandler struct {
	m *mediator.Mediator
}

func NewGameSessionHTTPHandler(m *mediator.Mediator) *GameSessionHTTPHandler {
	return &GameSessionHTTPHandler{m}
}

func (h *GameSessionHTTPHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreateSessionCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, errInvalidJSONBody)
		return
	}

	session, err := mediator.Send[CreateSessionCommand, domain.Session](h.m, r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteCreated(w, r, fmt.Sprintf("/sessions/%d", session.ID), session)
}

func (h *GameSessionHTTPHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		core.WriteBadRequest(w, r, errInvalidSessionID)
		return
	}

	session, err := mediator.Send[GetSessionQuery, domain.Session](h.m, r.Context(), GetSessionQuery{ID: id})
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, session)
}

func (h *GameSessionHTTPHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	h.listSessions(w, r, ListSessionsQuery{Filter: ListFilterAll})
}

func (h *GameSessionHTTPHandler) HandleListAvailableSessions(w http.ResponseWriter, r *http.Request) {
	h.listSessions(w, r, ListSessionsQuery{Filter: ListFilterAvailable})
}

func (h *GameSessionHTTPHandler) HandleListSessionsByStatus(w http.ResponseWriter, r *http.Request) {
	h.listSessions(w, r, ListSessionsQuery{Filter: ListFilterStatus, Status: chi.URLParam(r, "status")})
}

func (h *GameSessionHTTPHandler) listSessions(w http.ResponseWriter, r *http.Request, query ListSessionsQuery) {
	sessions, err := mediator.Send[ListSessionsQuery, []domain.Session](h.m, r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, sessions)
}

func (h *GameSessionHTTPHandler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		core.WriteBadRequest(w, r, errInvalidSessionID)
		return
	}

	command, err := core.RequestBody[UpdateSessionCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, errInvalidJSONBody)
		return
	}
	command.ID = id

	session, err := mediator.Send[UpdateSessionCommand, domain.Session](h.m, r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, session)
}

func (h *GameSessionHTTPHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		core.WriteBadRequest(w, r, errInvalidSessionID)
		return
	}

	deleted, err := mediator.Send[DeleteSessionCommand, bool](h.m, r.Context(), DeleteSessionCommand{ID: id})
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	if !deleted {
		core.WriteNotFound(w, r, domain.ErrSessionNotFound.Error())
		return
	}

	core.WriteSuccess(w, r, "Session deleted successfully")
}

func (h *GameSessionHTTPHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "sessionId")
	if !ok {
		core.WriteBadRequest(w, r, errInvalidSessionID)
		return
	}

	users, err := mediator.Send[ListMembersQuery, []domain.UserSummary](
		h.m,
		r.Context(),
		ListMembersQuery{SessionID: sessionID},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, users)
}

func (h *GameSessionHTTPHandler) HandleJoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := membershipIDs(r)
	if !ok {
		core.WriteBadRequest(w, r, errInvalidMembershipID)
		return
	}

	command := JoinSessionCommand{SessionID: sessionID, UserID: userID}
	if _, err := mediator.Send[JoinSessionCommand, core.Unit](h.m, r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteSuccess(w, r, "User added to session successfully")
}

func (h *GameSessionHTTPHandler) HandleLeaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := membershipIDs(r)
	if !ok {
		core.WriteBadRequest(w, r, errInvalidMembershipID)
		return
	}

	command := LeaveSessionCommand{SessionID: sessionID, UserID: userID}
	if _, err := mediator.Send[LeaveSessionCommand, core.Unit](h.m, r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteSuccess(w, r, "User removed from session successfully")
}

func pathID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func membershipIDs(r *http.Request) (int64, int64, bool) {
	sessionID, ok := pathID(r, "sessionId")
	if !ok {
		return 0, 0, false
	}

	userID, ok := pathID(r, "userId")
	if !ok {
		return 0, 0, false
	}

	return sessionID, userID, true
}
