package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contiene los parámetros del servidor HTTP.
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// Server expone el API del recomendador sobre gorilla/mux.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *handlers
	cfg      Config
}

// NewServer monta las rutas y middleware sobre el servicio dado.
// normalize canonicaliza wallets de los path params antes de tocar el
// servicio (checksum EIP-55, passthrough de ENS).
func NewServer(cfg Config, svc Recommender, normalize func(string) (string, error)) *Server {
	router := mux.NewRouter()

	s := &Server{
		router:   router,
		handlers: newHandlers(svc, normalize),
		cfg:      cfg,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// setupRoutes configura rutas y middleware.
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.timeoutMiddleware)

	s.router.HandleFunc("/health", s.handlers.health).Methods(http.MethodGet)
	s.router.HandleFunc("/ingest/{wallet}", s.handlers.ingest).Methods(http.MethodPost)
	s.router.HandleFunc("/profile/{wallet}", s.handlers.profile).Methods(http.MethodGet)
	s.router.HandleFunc("/markets/index", s.handlers.refreshMarkets).Methods(http.MethodPost)
	s.router.HandleFunc("/recommend/{wallet}", s.handlers.recommend).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Ruta catch-all para preflights: el corsMiddleware responde el 204,
	// pero la ruta tiene que existir para que el middleware corra.
	s.router.PathPrefix("/").Methods(http.MethodOptions).
		HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.notFound)
}

// Run arranca el servidor y lo apaga limpiamente cuando el contexto se
// cancela.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("httpapi.Run: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpapi.Run: shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}
