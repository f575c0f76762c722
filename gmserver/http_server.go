package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/werewolf-gm/engine"
	"github.com/gosuda/werewolf-gm/journal"
)

// HTTPServer wires the GM control API and the observer websocket to
// the session manager.
type HTTPServer struct {
	mgr      *SessionManager
	journal  *journal.Journal
	upgrader websocket.Upgrader
}

func NewHTTPServer(mgr *SessionManager, jnl *journal.Journal) *HTTPServer {
	return &HTTPServer{
		mgr:     mgr,
		journal: jnl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router exposes the handler used for both the portal relay and the
// optional local serve.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", s.handleWebSocket)
	r.Get("/journal", s.handleJournal)
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{session}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Post("/players", s.handleAddPlayer)
			r.Post("/night", s.handleOpenNight)
			r.Post("/actions", s.handleRegisterAction)
			r.Delete("/actions/{action}", s.handleCancelAction)
			r.Get("/actions", s.handleListActions)
			r.Post("/resolve", s.handleResolve)
			r.Post("/abort", s.handleAbort)
			r.Get("/players/{player}/results", s.handleResults)
			r.Get("/players/{player}/fortune", s.handleFortuneHistory)
			r.Get("/players/{player}/guard", s.handleGuardHistory)
			r.Get("/players/{player}/allowed/{kind}", s.handleAllowed)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("encode response")
	}
}

type errorResponse struct {
	Error string            `json:"error"`
	Code  engine.RejectCode `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var rej *engine.Reject
	if errors.As(err, &rej) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: rej.Message, Code: rej.Code})
		return
	}
	var contract *engine.ContractError
	if errors.As(err, &contract) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: contract.Error()})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *HTTPServer) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	name := chi.URLParam(r, "session")
	sess, ok := s.mgr.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return nil, false
	}
	return sess, true
}

func playerParam(r *http.Request) engine.PlayerID {
	n, _ := strconv.Atoi(chi.URLParam(r, "player"))
	return engine.PlayerID(n)
}

func (s *HTTPServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing session name"})
		return
	}
	sess, err := s.mgr.Create(req.Name, req.Rules)
	if err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	var snap SessionSnapshot
	sess.do(func(sess *Session) { snap = sess.snapshot() })
	writeJSON(w, http.StatusCreated, snap)
}

func (s *HTTPServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var snap SessionSnapshot
	sess.do(func(sess *Session) { snap = sess.snapshot() })
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing player name"})
		return
	}
	var (
		p   *PlayerState
		err error
	)
	sess.do(func(sess *Session) { p, err = sess.addPlayer(req.Name, req.Role) })
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PlayerSnapshot{ID: p.ID, Name: p.Name, Role: p.Role, Alive: p.Alive})
}

func (s *HTTPServer) handleOpenNight(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var night int
	sess.do(func(sess *Session) { night = sess.openNight() })
	writeJSON(w, http.StatusOK, map[string]int{"night": night})
}

func (s *HTTPServer) handleRegisterAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req registerActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed action"})
		return
	}
	var (
		a   *engine.Action
		err error
	)
	sess.do(func(sess *Session) { a, err = sess.registerAction(req.ActionData) })
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       a.ID,
		"type":     a.Kind,
		"actor":    a.Actor,
		"target":   a.Target,
		"night":    a.Night,
		"priority": a.Priority,
	})
}

func (s *HTTPServer) handleCancelAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "action")
	var cancelled bool
	sess.do(func(sess *Session) { cancelled = sess.actions.CancelAction(id) })
	if !cancelled {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "action not cancellable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

func (s *HTTPServer) handleListActions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	turn, _ := strconv.Atoi(r.URL.Query().Get("turn"))
	phase := r.URL.Query().Get("phase")
	type actionView struct {
		ID        string            `json:"id"`
		Kind      engine.ActionKind `json:"type"`
		Actor     engine.PlayerID   `json:"actor"`
		Target    engine.PlayerID   `json:"target"`
		Night     int               `json:"night"`
		Priority  int               `json:"priority"`
		Executed  bool              `json:"executed"`
		Cancelled bool              `json:"cancelled"`
		Result    *engine.Result    `json:"result,omitempty"`
	}
	var out []actionView
	sess.do(func(sess *Session) {
		for _, a := range sess.actions.RegisteredActions(phase, turn) {
			out = append(out, actionView{
				ID: a.ID, Kind: a.Kind, Actor: a.Actor, Target: a.Target,
				Night: a.Night, Priority: a.Priority,
				Executed: a.Executed(), Cancelled: a.Cancelled(), Result: a.Result(),
			})
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var count int
	sess.do(func(sess *Session) { count = sess.resolveNight() })
	writeJSON(w, http.StatusOK, map[string]int{"executedCount": count})
}

func (s *HTTPServer) handleAbort(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.do(func(sess *Session) { sess.abortGame() })
	writeJSON(w, http.StatusOK, map[string]bool{"aborted": true})
}

func (s *HTTPServer) handleResults(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	player := playerParam(r)
	var out []engine.ActionSummary
	sess.do(func(sess *Session) { out = sess.actions.ActionResults(player) })
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleFortuneHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	player := playerParam(r)
	var out []engine.HistoryEntry
	sess.do(func(sess *Session) { out = sess.actions.FortuneHistory(player) })
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleGuardHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	player := playerParam(r)
	var out []engine.HistoryEntry
	sess.do(func(sess *Session) { out = sess.actions.GuardHistory(player) })
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleAllowed(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	player := playerParam(r)
	kind := engine.ActionKind(chi.URLParam(r, "kind"))
	var allowed bool
	sess.do(func(sess *Session) { allowed = sess.actions.IsActionAllowed(player, kind) })
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

func (s *HTTPServer) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.journal.Recent(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *HTTPServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionName := r.URL.Query().Get("session")
	user := r.URL.Query().Get("user")
	if sessionName == "" || user == "" {
		http.Error(w, "missing session or user", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("upgrade websocket")
		return
	}

	client := NewClient(user, conn, s.mgr)
	if err := s.mgr.Attach(sessionName, client); err != nil {
		_ = conn.Close()
		log.Warn().Err(err).Str("session", sessionName).Str("user", user).Msg("attach failed")
		return
	}

	go client.writeLoop()
	client.readLoop()
}
