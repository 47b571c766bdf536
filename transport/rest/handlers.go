package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

const (
	userHeader    = "X-User-ID"
	sessionCookie = "user_session"
	cookieTTL     = 24 * time.Hour
)

var errMissingIdentity = fmt.Errorf("%w: no %s header or %s cookie", apperror.ErrInvalidArguments, userHeader, sessionCookie)

type sessionUseCase interface {
	GetOrCreateUser(ctx context.Context, id string) (*entity.User, error)
	SetMark(ctx context.Context, userID, mark string) (*entity.User, error)

	Start(ctx context.Context, creatorID string) (*entity.SessionView, error)
	Join(ctx context.Context, sessionID, userID string) (*entity.SessionView, error)
	Move(ctx context.Context, sessionID, userID string, x, y int) (*entity.SessionView, error)
	Resign(ctx context.Context, sessionID, userID string) (*entity.SessionView, error)
	Get(ctx context.Context, sessionID string) (*entity.SessionView, error)
}

type Handlers interface {
	Start(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Join(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
	Resign(w http.ResponseWriter, r *http.Request)

	Me(w http.ResponseWriter, r *http.Request)
	SetMark(w http.ResponseWriter, r *http.Request)
}

type handlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

func NewHandlers(logger *slog.Logger, sessions sessionUseCase) Handlers {
	return &handlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}
}

type moveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type markRequest struct {
	Mark string `json:"mark"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (that *handlers) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := that.identify(w, r)
	if !ok {
		return
	}

	view, err := that.sessions.Start(r.Context(), user.ID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

func (that *handlers) Get(w http.ResponseWriter, r *http.Request) {
	view, err := that.sessions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (that *handlers) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := that.identify(w, r)
	if !ok {
		return
	}

	view, err := that.sessions.Join(r.Context(), mux.Vars(r)["id"], user.ID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (that *handlers) Move(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		that.writeError(w, errMissingIdentity)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.X == nil || req.Y == nil {
		that.writeError(w, fmt.Errorf("%w: body must be {\"x\": int, \"y\": int}", apperror.ErrInvalidArguments))
		return
	}

	view, err := that.sessions.Move(r.Context(), mux.Vars(r)["id"], userID, *req.X, *req.Y)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (that *handlers) Resign(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		that.writeError(w, errMissingIdentity)
		return
	}

	view, err := that.sessions.Resign(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (that *handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := that.identify(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (that *handlers) SetMark(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		that.writeError(w, errMissingIdentity)
		return
	}

	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, fmt.Errorf("%w: body must be {\"mark\": string}", apperror.ErrInvalidArguments))
		return
	}

	user, err := that.sessions.SetMark(r.Context(), userID, req.Mark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// identify - returns the caller, creating a user and setting the session cookie on first contact.
func (that *handlers) identify(w http.ResponseWriter, r *http.Request) (*entity.User, bool) {
	userID := callerID(r)

	user, err := that.sessions.GetOrCreateUser(r.Context(), userID)
	if err != nil {
		that.writeError(w, err)
		return nil, false
	}

	if userID == "" {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    user.ID,
			Path:     "/",
			Expires:  time.Now().Add(cookieTTL),
			HttpOnly: true,
		})
		that.logger.Info("session cookie not found, new one created", "userID", user.ID)
	}

	return user, true
}

func callerID(r *http.Request) string {
	if id := r.Header.Get(userHeader); id != "" {
		return id
	}

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	code := apperror.Code(err)
	status := statusOf(code)

	if !apperror.IsDomain(err) {
		that.logger.Error("request failed", "code", code, "error", err)
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func statusOf(code string) int {
	switch code {
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeNotAParticipant:
		return http.StatusForbidden
	case apperror.CodeOutOfBounds, apperror.CodeInvalidMark, apperror.CodeInvalidArguments:
		return http.StatusBadRequest
	case apperror.CodeCellOccupied, apperror.CodeNotYourTurn, apperror.CodeOpponentMissing:
		return http.StatusUnprocessableEntity
	case apperror.CodeSlotsFull, apperror.CodeMarkCollision, apperror.CodeSessionClosed, apperror.CodeStoreConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// the status is already sent, an encoding error can't be reported
	_ = json.NewEncoder(w).Encode(body)
}
