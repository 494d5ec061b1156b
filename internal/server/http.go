package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"gridsync/internal/engine"
	"gridsync/internal/network"
	"gridsync/internal/version"
	"gridsync/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Engine *engine.Instance
	Hub    *network.Hub
	Addr   string
	Debug  bool // /debug/* и pprof
}

func New(engine *engine.Instance, hub *network.Hub, addr string, debug bool) *Server {
	return &Server{
		Engine: engine,
		Hub:    hub,
		Addr:   addr,
		Debug:  debug,
	}
}

// Handler собирает маршруты сервера
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	if s.Debug {
		NewDebugHandler(s.Engine).RegisterRoutes(mux)

		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return mux
}

// Run запускает HTTP сервер и останавливает его при отмене ctx
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithField("addr", s.Addr).Info("gridsync server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с отладочной страницы
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("Upgrade error")
		return
	}

	client := NewClient(s.Engine, s.Hub, conn)
	if err := client.handshake(r.Context()); err != nil {
		client.log.WithError(err).Warn("Handshake rejected")
		if err := conn.Close(); err != nil {
			client.log.WithError(err).Debug("failed to close websocket connection")
		}
		return
	}

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Log.WithError(err).Debug("health write failed")
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(version.Info()); err != nil {
		logger.Log.WithError(err).Debug("version write failed")
	}
}
