package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
	"github.com/rocketscienceinc/xox-backend/pkg/httpserver"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type sessionReader interface {
	Get(ctx context.Context, sessionID string) (*entity.SessionView, error)
}

// NewRouter - socket routes served by hub.
func NewRouter(hub *Hub, sessions sessionReader) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws/sessions/{id}", hub.HandleSession(sessions)).Methods(http.MethodGet)

	return router
}

// Start - serves the socket endpoint on port until ctx is done, then closes every socket.
func Start(ctx context.Context, port string, hub *Hub, sessions sessionReader) error {
	defer hub.Close()

	return httpserver.Serve(ctx, httpserver.New(port, NewRouter(hub, sessions)))
}

// HandleSession - subscribes the socket to a session and sends its current view first.
func (that *Hub) HandleSession(sessions sessionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		that.subscribe(w, r, sessions)
	}
}

func (that *Hub) subscribe(w http.ResponseWriter, r *http.Request, sessions sessionReader) {
	sessionID := mux.Vars(r)["id"]
	log := that.logger.With("method", "subscribe", "sessionID", sessionID)

	view, err := sessions.Get(r.Context(), sessionID)
	if errors.Is(err, apperror.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade error", "error", err)
		return
	}

	c := newClient(that, conn, entity.ChannelKey(sessionID))
	that.register(c)

	go c.writePump()

	// read again after registering, so a view broadcast in between can't be missed
	if fresh, err := sessions.Get(r.Context(), sessionID); err == nil {
		view = fresh
	}

	payload, err := json.Marshal(view)
	if err != nil {
		log.Error("failed to marshal view", "error", err)
		that.unregister(c)
		return
	}

	that.deliver(c, view.Version, payload)

	go c.readPump()
}
