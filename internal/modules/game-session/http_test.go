package gamesession

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session/domain"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

type stubHandler[TRequest any, TResponse any] struct {
	response TResponse
	err      error
	received *TRequest
}

func (h *stubHandler[TRequest, TResponse]) Handle(_ context.Context, request TRequest) (TResponse, error) {
	h.received = &request
	return h.response, h.err
}

type httpHarness struct {
	router http.Handler

	create *stubHandler[CreateSessionCommand, domain.Session]
	delete *stubHandler[DeleteSessionCommand, bool]
	join   *stubHandler[JoinSessionCommand, core.Unit]
	leave  *stubHandler[LeaveSessionCommand, core.Unit]
	get    *stubHandler[GetSessionQuery, domain.Session]
	list   *stubHandler[ListSessionsQuery, []domain.Session]
}

func newHTTPHarness(t *testing.T) *httpHarness {
	t.Helper()

	m := mediator.New()
	m.RegisterPipelineBehavior(&core.RequestValidationBehavior{})

	h := &httpHarness{
		create: &stubHandler[CreateSessionCommand, domain.Session]{},
		delete: &stubHandler[DeleteSessionCommand, bool]{},
		join:   &stubHandler[JoinSessionCommand, core.Unit]{},
		leave:  &stubHandler[LeaveSessionCommand, core.Unit]{},
		get:    &stubHandler[GetSessionQuery, domain.Session]{},
		list:   &stubHandler[ListSessionsQuery, []domain.Session]{response: []domain.Session{}},
	}

	require.NoError(t, mediator.RegisterRequestHandler[CreateSessionCommand, domain.Session](m, h.create))
	require.NoError(t, mediator.RegisterRequestHandler[DeleteSessionCommand, bool](m, h.delete))
	require.NoError(t, mediator.RegisterRequestHandler[JoinSessionCommand, core.Unit](m, h.join))
	require.NoError(t, mediator.RegisterRequestHandler[LeaveSessionCommand, core.Unit](m, h.leave))
	require.NoError(t, mediator.RegisterRequestHandler[GetSessionQuery, domain.Session](m, h.get))
	require.NoError(t, mediator.RegisterRequestHandler[ListSessionsQuery, []domain.Session](m, h.list))

	handler := NewGameSessionHTTPHandler(m)

	r := chi.NewRouter()
	r.Get("/sessions", handler.HandleListSessions)
	r.Post("/sessions", handler.HandleCreateSession)
	r.Get("/sessions/available", handler.HandleListAvailableSessions)
	r.Get("/sessions/status/{status}", handler.HandleListSessionsByStatus)
	r.Get("/sessions/{id}", handler.HandleGetSession)
	r.Delete("/sessions/{id}", handler.HandleDeleteSession)
	r.Post("/sessions/{sessionId}/users/{userId}", handler.HandleJoinSession)
	r.Delete("/sessions/{sessionId}/users/{userId}", handler.HandleLeaveSession)
	h.router = r

	return h
}

func (h *httpHarness) do(method string, target string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, r)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body core.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body.Message
}

func Test_HandleJoinSession_Succeeds(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)

	// Act
	w := h.do(http.MethodPost, "/sessions/3/users/7", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true,"message":"User added to session successfully"}`, w.Body.String())
	require.Equal(t, JoinSessionCommand{SessionID: 3, UserID: 7}, *h.join.received)
}

func Test_HandleJoinSession_Full_Session_Is_Conflict(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.join.err = domain.ErrSessionFull

	// Act
	w := h.do(http.MethodPost, "/sessions/3/users/7", "")

	// Assert
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "Session is full", decodeMessage(t, w))
}

func Test_HandleJoinSession_Invalid_IDs_Are_Rejected(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)

	// Act
	w := h.do(http.MethodPost, "/sessions/abc/users/7", "")

	// Assert
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid sessionId or userId", decodeMessage(t, w))
	require.Nil(t, h.join.received)
}

func Test_HandleJoinSession_Lock_Timeout_Is_Service_Unavailable(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.join.err = core.Transient(&pq.Error{Code: "55P03"})

	// Act
	w := h.do(http.MethodPost, "/sessions/3/users/7", "")

	// Assert
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func Test_HandleLeaveSession_Non_Member_Is_Not_Found(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.leave.err = domain.ErrNotAMember

	// Act
	w := h.do(http.MethodDelete, "/sessions/3/users/7", "")

	// Assert
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "User is not in this session", decodeMessage(t, w))
}

func Test_HandleLeaveSession_Drift_Is_Internal_Error(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.leave.err = domain.ErrOccupancyDrift

	// Act
	w := h.do(http.MethodDelete, "/sessions/3/users/7", "")

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func Test_HandleCreateSession_Returns_Created_Session(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.create.response = domain.Session{ID: 5, Name: "table", Status: domain.StatusWaiting, Capacity: 2}

	// Act
	w := h.do(http.MethodPost, "/sessions", `{"name":"table","maxPlayers":2}`)

	// Assert
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "/sessions/5", w.Header().Get("Location"))

	var session domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.Equal(t, int64(5), session.ID)
	require.Equal(t, 2, *h.create.received.MaxPlayers)
}

func Test_HandleCreateSession_Rejects_Invalid_Capacity_Before_Handler(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)

	// Act
	w := h.do(http.MethodPost, "/sessions", `{"name":"table","maxPlayers":9}`)

	// Assert
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "maxPlayers must be an integer between 2 and 4", decodeMessage(t, w))
	require.Nil(t, h.create.received)
}

func Test_HandleCreateSession_Rejects_Malformed_JSON(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)

	// Act
	w := h.do(http.MethodPost, "/sessions", `{"name":`)

	// Assert
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid JSON body", decodeMessage(t, w))
}

func Test_HandleDeleteSession_Missing_Session_Is_Not_Found(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.delete.response = false

	// Act
	w := h.do(http.MethodDelete, "/sessions/9", "")

	// Assert
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Session not found", decodeMessage(t, w))
}

func Test_HandleDeleteSession_Succeeds(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.delete.response = true

	// Act
	w := h.do(http.MethodDelete, "/sessions/9", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true,"message":"Session deleted successfully"}`, w.Body.String())
}

func Test_HandleGetSession_Unknown_Error_Is_Internal(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)
	h.get.err = errors.New("boom")

	// Act
	w := h.do(http.MethodGet, "/sessions/1", "")

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func Test_HandleListSessions_Routes_Filters(t *testing.T) {
	// Arrange
	h := newHTTPHarness(t)

	// Act & Assert
	w := h.do(http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
	require.Equal(t, ListFilterAll, h.list.received.Filter)

	h.do(http.MethodGet, "/sessions/available", "")
	require.Equal(t, ListFilterAvailable, h.list.received.Filter)

	h.do(http.MethodGet, "/sessions/status/playing", "")
	require.Equal(t, ListSessionsQuery{Filter: ListFilterStatus, Status: "playing"}, *h.list.received)
}
