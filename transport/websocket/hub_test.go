package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
	"github.com/rocketscienceinc/xox-backend/testing/suite"
)

type fakeSessions struct {
	mu    sync.Mutex
	views map[string]*entity.SessionView
}

func (that *fakeSessions) Get(_ context.Context, sessionID string) (*entity.SessionView, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	view, ok := that.views[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperror.ErrNotFound)
	}

	return view, nil
}

func view(id string, version int64) *entity.SessionView {
	return &entity.SessionView{ID: id, State: entity.StateInProgress, Version: version}
}

func payload(t *testing.T, view *entity.SessionView) []byte {
	t.Helper()

	data, err := json.Marshal(view)
	require.NoError(t, err)

	return data
}

func newHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	sessions := &fakeSessions{views: map[string]*entity.SessionView{"1": view("1", 1)}}
	hub := NewHub(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	server := httptest.NewServer(NewRouter(hub, sessions))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sessions/" + sessionID

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}

	return conn, resp, err
}

func readView(t *testing.T, conn *websocket.Conn) *entity.SessionView {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var received entity.SessionView
	require.NoError(t, conn.ReadJSON(&received))

	return &received
}

func TestHub_HandleSession(t *testing.T) {
	t.Run("Unknown session is refused", func(t *testing.T) {
		_, server := newHub(t)

		_, resp, err := dial(t, server, "404")

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Sends the current view, then newer broadcasts", func(t *testing.T) {
		hub, server := newHub(t)

		// Given: a subscribed socket that received the current view
		conn, _, err := dial(t, server, "1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), readView(t, conn).Version)

		// When: newer and stale views are broadcast
		ctx := context.Background()
		require.NoError(t, hub.Broadcast(ctx, "session:1", payload(t, view("1", 2))))
		require.NoError(t, hub.Broadcast(ctx, "session:1", payload(t, view("1", 1))))
		require.NoError(t, hub.Broadcast(ctx, "session:2", payload(t, view("2", 9))))
		require.NoError(t, hub.Broadcast(ctx, "session:1", payload(t, view("1", 3))))

		// Then: only the newer views of its own session arrive, in order
		assert.Equal(t, int64(2), readView(t, conn).Version)
		assert.Equal(t, int64(3), readView(t, conn).Version)
	})

	t.Run("Fans out to every subscriber", func(t *testing.T) {
		hub, server := newHub(t)

		first, _, err := dial(t, server, "1")
		require.NoError(t, err)
		second, _, err := dial(t, server, "1")
		require.NoError(t, err)

		readView(t, first)
		readView(t, second)
		assert.Equal(t, 2, hub.subscriberCount("session:1"))

		require.NoError(t, hub.Broadcast(context.Background(), "session:1", payload(t, view("1", 2))))

		assert.Equal(t, int64(2), readView(t, first).Version)
		assert.Equal(t, int64(2), readView(t, second).Version)
	})

	t.Run("Unregisters closed sockets", func(t *testing.T) {
		hub, server := newHub(t)

		conn, _, err := dial(t, server, "1")
		require.NoError(t, err)
		readView(t, conn)

		require.NoError(t, conn.Close())

		assert.Eventually(t, func() bool {
			return hub.subscriberCount("session:1") == 0
		}, 5*time.Second, 20*time.Millisecond)
	})

	t.Run("Close disconnects subscribers", func(t *testing.T) {
		hub, server := newHub(t)

		conn, _, err := dial(t, server, "1")
		require.NoError(t, err)
		readView(t, conn)

		hub.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err = conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)
	})
}

func TestHub_Broadcast_InvalidPayload(t *testing.T) {
	hub, _ := newHub(t)

	err := hub.Broadcast(context.Background(), "session:1", []byte("not json"))

	require.Error(t, err)
}

func TestHub_Relay(t *testing.T) {
	ctx, st := suite.New(t)

	hub, server := newHub(t)

	relayCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- hub.Relay(relayCtx, st.Storage)
	}()

	conn, _, err := dial(t, server, "1")
	require.NoError(t, err)
	readView(t, conn)

	// When: another instance publishes a view on redis
	data := payload(t, view("1", 5))
	require.Eventually(t, func() bool {
		return st.Storage.Publish(ctx, "session:1", data).Val() > 0
	}, 10*time.Second, 50*time.Millisecond)

	// Then: the local socket receives it once
	assert.Equal(t, int64(5), readView(t, conn).Version)

	cancel()
	assert.NoError(t, <-done)
}
