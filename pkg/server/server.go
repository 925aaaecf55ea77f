package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"quillcheck/pkg/chains"
	"quillcheck/pkg/flow"
	"quillcheck/pkg/metrics"
	"quillcheck/pkg/report"
	"quillcheck/pkg/selection"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Options configure the headless server.
type Options struct {
	Registry        *chains.Registry
	Dispatcher      *report.Dispatcher
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
	Validator       chains.Validator
	StrictFaults    bool
	RatePerMinute   int
	AllowedOrigins  []string
	Version         string
	RequestDeadline time.Duration
}

type Server struct {
	opts    Options
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *chi.Mux
}

func NewServer(opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = chains.Default()
	}
	if opts.RequestDeadline <= 0 {
		opts.RequestDeadline = report.DefaultTimeout
	}
	s := &Server{
		opts:    opts,
		clients: make(map[*websocket.Conn]bool),
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Use(middleware.RequestID)
	s.mux.Use(s.logRequests)
	s.mux.Use(middleware.Recoverer)
	if s.opts.RatePerMinute > 0 {
		s.mux.Use(httprate.LimitByIP(s.opts.RatePerMinute, time.Minute))
	}

	s.mux.Get("/api/chains", s.handleChains)
	s.mux.Post("/api/check", s.handleCheck)
	s.mux.Get("/api/status", s.handleStatus)
	s.mux.Get("/ws", s.handleWS)
	if s.opts.Metrics != nil {
		s.mux.Handle("/metrics", s.opts.Metrics.Handler())
	}
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.mux)
}

// Start serves on port until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	if s.opts.Dispatcher != nil {
		go s.listenToDispatcher(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.opts.Logger.Info().Int("port", port).Msg("API server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.opts.Logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

type chainRow struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	ChainID       int64  `json:"chain_id"`
	AddressLength string `json:"address_length"`
	Native        bool   `json:"native"`
}

func (s *Server) handleChains(w http.ResponseWriter, r *http.Request) {
	var rows []chainRow
	for _, rule := range s.opts.Registry.Rules() {
		rows = append(rows, chainRow{
			Symbol:        rule.Symbol,
			Name:          rule.Name,
			ChainID:       rule.ChainID,
			AddressLength: rule.Length.String(),
			Native:        rule.Native,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

type checkRequest struct {
	Symbol  string `json:"symbol"`
	Address string `json:"address"`
}

type checkResponse struct {
	Mode      string             `json:"mode"`
	Selection selection.Snapshot `json:"selection"`
	ChainID   int64              `json:"chain_id,omitempty"`
	Report    *report.Report     `json:"report,omitempty"`
	Rows      []report.Row       `json:"rows,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// handleCheck runs one selection through a fresh controller, the same way
// the terminal UI does, and fetches the report synchronously. The outcome is
// also published to websocket clients.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, checkResponse{Mode: flow.Selecting.Name(), Error: "malformed request body"})
		return
	}

	state := selection.New()
	if req.Symbol != "" {
		state.PickChain(req.Symbol)
	}
	state.EditAddress(req.Address)

	ctrl := flow.New(state, s.opts.Registry,
		flow.WithValidator(s.opts.Validator),
		flow.WithLogger(s.opts.Logger),
		flow.WithMetrics(s.opts.Metrics),
		flow.WithStrictFaults(s.opts.StrictFaults),
	)
	mode := ctrl.Submit()

	resp := checkResponse{Mode: mode.Name(), Selection: state.Snapshot()}
	if mode.IsSelecting() {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	resp.ChainID = mode.ChainID

	if s.opts.Dispatcher == nil {
		resp.Error = report.ErrNoDataSource.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestDeadline)
	defer cancel()
	_, rep, err := s.opts.Dispatcher.FetchAndNotify(ctx, report.Request{
		ChainID: mode.ChainID,
		Address: mode.Address,
		Symbol:  mode.Symbol,
		Native:  mode.Kind == flow.Native,
	})
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	resp.Report = &rep
	resp.Rows = rep.Rows()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	clients := len(s.clients)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": s.opts.Version,
		"clients": clients,
		"chains":  s.opts.Registry.Symbols(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	s.clients[conn] = true
	// Send initial state
	err = conn.WriteJSON(map[string]interface{}{
		"type": "initial",
		"data": map[string]interface{}{
			"chains":  s.opts.Registry.Symbols(),
			"version": s.opts.Version,
		},
	})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()
	if err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) listenToDispatcher(ctx context.Context) {
	sub := s.opts.Dispatcher.Subscribe()
	defer s.opts.Dispatcher.Unsubscribe(sub)

	for {
		select {
		case event, ok := <-sub:
			if !ok {
				return
			}
			s.broadcast(event)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) broadcast(event report.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
