package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/config"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/session"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	maxBodyBytes    = 64 << 10
)

type Server struct {
	app            *app.App
	broadcaster    *Broadcaster
	metrics        http.Handler
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	authToken      string
	thinkingDelay  time.Duration
	log            *slog.Logger
}

// NewServer builds the API over a. metrics may be nil to omit /metrics.
func NewServer(a *app.App, broadcaster *Broadcaster, cfg config.ServerConfig, thinkingDelay time.Duration, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		app:            a,
		broadcaster:    broadcaster,
		metrics:        metrics,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      cfg.AuthToken,
		thinkingDelay:  thinkingDelay,
		log:            logger,
	}

	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("GET /api/profile", s.guard(s.handleProfile))
	mux.HandleFunc("PATCH /api/profile", s.guard(s.handleRename))
	mux.HandleFunc("POST /api/profile/reset", s.guard(s.handleReset))

	mux.HandleFunc("GET /api/challenges", s.guard(s.handleChallenges))
	mux.HandleFunc("GET /api/challenges/categories", s.guard(s.handleCategories))
	mux.HandleFunc("GET /api/challenges/{id}", s.guard(s.handleChallenge))
	mux.HandleFunc("POST /api/challenges/{id}/open", s.guard(s.handleOpen))
	mux.HandleFunc("POST /api/challenges/{id}/submit", s.guard(s.handleSubmit))

	mux.HandleFunc("GET /api/achievements", s.guard(s.handleAchievements))
	mux.HandleFunc("GET /api/stats", s.guard(s.handleStats))
	mux.HandleFunc("GET /api/leaderboard", s.guard(s.handleLeaderboard))
	mux.HandleFunc("POST /api/chat", s.guard(s.handleChat))
	mux.HandleFunc("POST /api/terminal", s.guard(s.handleTerminal))

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.guard(s.metrics.ServeHTTP))
	}
}

// Handler returns the routed API wrapped in the security headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(mux)
}

func (s *Server) guard(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorize(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		fn(w, r)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", "error", err)
		return
	}

	c, err := s.broadcaster.AddClient(conn)
	if err != nil {
		s.log.Warn("ws client rejected", "remote", r.RemoteAddr, "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	s.log.Info("websocket client connected", "remote", r.RemoteAddr)

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			s.log.Info("websocket client disconnected", "remote", r.RemoteAddr)
		}()
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Tracker.Profile())
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := s.app.Tracker.Rename(r.Context(), req.Username)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.broadcaster.Publish(MsgProfile, p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.Reset(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info("profile reset")
	s.broadcaster.Publish(MsgProfile, p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Category:   q.Get("category"),
		Difficulty: gamification.Difficulty(q.Get("difficulty")),
		Search:     q.Get("q"),
		Limit:      defaultPageSize,
	}
	var err error
	if v := q.Get("hide_completed"); v != "" {
		if f.HideCompleted, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid hide_completed")
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil || f.Limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = min(f.Limit, maxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil || f.Offset < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
	}
	if f.Difficulty != "" && !f.Difficulty.Valid() {
		writeError(w, http.StatusBadRequest, "unknown difficulty")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Catalog.Filter(f))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Catalog.Categories())
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	ch, err := s.app.Catalog.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	ch, att, err := s.app.Open(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OpenResponse{Challenge: ch, Attempt: att, StarterCode: ch.StarterCode()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	if req.ElapsedSeconds < 0 {
		writeError(w, http.StatusBadRequest, "elapsedSeconds must not be negative")
		return
	}

	res, err := s.app.Submit(r.Context(), r.PathValue("id"), req.ElapsedSeconds)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !res.Success {
		s.broadcaster.Publish(MsgProfile, res.Outcome.Profile)
	}

	unlocked := make([]AchievementPayload, len(res.Outcome.Unlocked))
	for i, a := range res.Outcome.Unlocked {
		unlocked[i] = achievementPayload(a, true)
	}
	writeJSON(w, http.StatusOK, SubmitResponse{SubmitResult: res, Unlocked: unlocked})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	list, progress := s.app.Tracker.Achievements()
	out := make([]AchievementPayload, len(list))
	for i, st := range list {
		out[i] = achievementPayload(st.Achievement, st.Unlocked)
	}
	writeJSON(w, http.StatusOK, AchievementsResponse{Achievements: out, Progress: progress})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Stats())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Leaderboard())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if s.thinkingDelay > 0 {
		t := time.NewTimer(s.thinkingDelay)
		select {
		case <-t.C:
		case <-r.Context().Done():
			t.Stop()
			return
		}
	}
	writeJSON(w, http.StatusOK, s.app.Chat(req.Message, req.ChallengeID))
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	var req TerminalRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.app.Exec(req.Command))
}

// fail maps engine errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrChallengeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrChallengeCompleted), errors.Is(err, session.ErrNotOpen):
		status = http.StatusConflict
	case errors.Is(err, gamification.ErrInvalidUsername), errors.Is(err, gamification.ErrInvalidSubmission):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorPayload{Message: msg})
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if r.Header.Get("X-Arsenal-Token") == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := parsed.Host
	if host == r.Host {
		return true
	}
	return isLoopback(host)
}

func isLoopback(host string) bool {
	for _, h := range []string{"localhost", "127.0.0.1", "[::1]"} {
		if host == h || strings.HasPrefix(host, h+":") {
			return true
		}
	}
	return host == "::1"
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
