package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"memorize/internal/config"
	"memorize/internal/session"
)

const shutdownTimeout = 5 * time.Second

// Server ties together HTTP serving and WebSocket handling.
type Server struct {
	handlers *Handlers
	port     int
	static   fs.FS
	log      *slog.Logger
}

// New builds a server. static must hold the page assets under web/static.
func New(cfg *config.Config, static fs.FS, log *slog.Logger) *Server {
	sessions := session.NewManager(session.Settings{
		Pairs:          cfg.Pairs,
		Content:        cfg.Content,
		BonusTimeLimit: cfg.BonusTime,
		Seed:           cfg.Seed,
	})
	return &Server{
		handlers: NewHandlers(sessions, cfg.QRSize, cfg.IdleTimeout, log),
		port:     cfg.Port,
		static:   static,
		log:      log,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	sub, err := fs.Sub(s.static, "web/static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handlers.HandleHealth)
	r.Get("/api/create", s.handlers.HandleCreateGame)
	r.Get("/api/qr", s.handlers.HandleQR)
	r.Get("/ws", s.handlers.HandleWS)
	r.Handle("/*", http.FileServer(http.FS(sub)))
	return r, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("memorize server starting", "addr", "http://localhost"+srv.Addr)
		s.log.Info("open /api/create to start a game", "url", "http://localhost"+srv.Addr+"/api/create")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops every open table.
func (s *Server) Close() {
	s.handlers.Close()
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
