package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/xox-backend/pkg/httpserver"
)

// NewRouter - REST routes of the session API.
func NewRouter(logger *slog.Logger, sessions sessionUseCase) *mux.Router {
	handlers := NewHandlers(logger, sessions)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/ping", ping).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/sessions", handlers.Start).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}", handlers.Get).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{id}/join", handlers.Join).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/move", handlers.Move).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/resign", handlers.Resign).Methods(http.MethodPost)

	router.HandleFunc("/users/me", handlers.Me).Methods(http.MethodGet)
	router.HandleFunc("/users/me/mark", handlers.SetMark).Methods(http.MethodPut)

	return router
}

// Start - serves the REST API on port until ctx is done.
func Start(ctx context.Context, logger *slog.Logger, port string, sessions sessionUseCase) error {
	return httpserver.Serve(ctx, httpserver.New(port, NewRouter(logger, sessions)))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (that *statusRecorder) WriteHeader(status int) {
	that.status = status
	that.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	log := logger.With("component", "rest")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			log.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(started))
		})
	}
}
