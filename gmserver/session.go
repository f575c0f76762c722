package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/werewolf-gm/engine"
	"github.com/gosuda/werewolf-gm/engine/roles"
	"github.com/gosuda/werewolf-gm/journal"
)

const (
	PhaseLobby = "lobby"
	PhaseNight = "night"
	PhaseDay   = "day"
)

// Session is one moderated game. A single goroutine owns all session
// state; everything funnels through the commands channel, which is
// also what makes the engine's single-threaded contract hold.
type Session struct {
	name    string
	manager *SessionManager

	observers map[string]*Client

	commands chan func(*Session)
	closing  chan struct{}

	roster  *Roster
	roles   *roles.Directory
	game    *engine.Game
	actions *engine.Manager

	phase string
	night int
}

func NewSession(name string, mgr *SessionManager, rules engine.Rules, jnl *journal.Journal) *Session {
	s := &Session{
		name:      name,
		manager:   mgr,
		observers: make(map[string]*Client),
		commands:  make(chan func(*Session), 256),
		closing:   make(chan struct{}),
		roster:    NewRoster(),
		roles:     roles.NewDirectory(),
		phase:     PhaseLobby,
	}
	var bus engine.EventBus = &sessionBus{s: s}
	if jnl != nil {
		bus = jnl.Wrap(bus)
	}
	s.game = engine.NewGame(s.roster, s.roles, bus, &sessionErrors{s: s}, rules)
	s.actions = engine.NewManager(s.game)
	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.commands:
			fn(s)
		case <-s.closing:
			return
		}
	}
}

func (s *Session) enqueue(fn func(*Session)) {
	select {
	case s.commands <- fn:
	case <-s.closing:
	}
}

// do runs fn on the session loop and waits for it, so HTTP handlers
// get synchronous answers without touching session state themselves.
func (s *Session) do(fn func(*Session)) {
	done := make(chan struct{})
	s.enqueue(func(sess *Session) {
		fn(sess)
		close(done)
	})
	select {
	case <-done:
	case <-s.closing:
	}
}

func (s *Session) close() {
	close(s.closing)
}

// sessionBus fans engine events out to the session's observers.
type sessionBus struct{ s *Session }

func (b *sessionBus) Emit(name string, payload any) {
	log.Debug().Str("session", b.s.name).Str("event", name).Msg("engine event")
	b.s.broadcast(ServerEvent{Type: eventTypeEngine, Session: b.s.name, Name: name, Night: b.s.night, Payload: payload})
}

// sessionErrors reports execution failures to observers and the log.
type sessionErrors struct{ s *Session }

func (e *sessionErrors) HandleError(err error) {
	log.Warn().Err(err).Str("session", e.s.name).Msg("engine reported error")
	e.s.broadcast(ServerEvent{Type: eventTypeLog, Session: e.s.name, Body: fmt.Sprintf("resolution error: %v", err)})
}

func (s *Session) broadcast(ev ServerEvent) {
	for _, c := range s.observers {
		c.push(ev)
	}
}

func (s *Session) addObserver(c *Client) {
	c.session = s
	s.observers[c.name] = c
	s.broadcast(ServerEvent{Type: eventTypeLog, Session: s.name, Body: fmt.Sprintf("%s is now observing (%d watching)", c.name, len(s.observers))})
	s.sendState(c)
}

func (s *Session) removeObserver(c *Client) {
	delete(s.observers, c.name)
	c.session = nil
	if len(s.observers) == 0 && s.phase == PhaseLobby && len(s.roster.order) == 0 {
		s.manager.removeSession(s.name, s)
		s.close()
	}
}

func (s *Session) handleMessage(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "sync":
		s.sendState(c)
	default:
		c.pushSystem("unknown command")
	}
}

func (s *Session) sendState(c *Client) {
	c.push(ServerEvent{Type: eventTypeState, Session: s.name, Phase: s.phase, Night: s.night, Payload: s.snapshot()})
}

func (s *Session) snapshot() SessionSnapshot {
	return SessionSnapshot{
		Name:    s.name,
		Phase:   s.phase,
		Night:   s.night,
		Players: s.roster.Snapshot(),
	}
}

// addPlayer seats a player with the given role.
func (s *Session) addPlayer(name, role string) (*PlayerState, error) {
	if _, ok := roles.Lookup(role); !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	p := s.roster.Add(name, role)
	if err := s.roles.Assign(p.ID, role); err != nil {
		return nil, err
	}
	s.broadcast(ServerEvent{Type: eventTypeLog, Session: s.name, Body: fmt.Sprintf("%s joined as player %d", name, p.ID)})
	return p, nil
}

// openNight advances to the next night window.
func (s *Session) openNight() int {
	s.night++
	s.phase = PhaseNight
	s.broadcast(ServerEvent{Type: eventTypePhase, Session: s.name, Phase: s.phase, Night: s.night, Body: fmt.Sprintf("night %d has begun", s.night)})
	return s.night
}

// registerAction submits one covert act for the current night when the
// submission carries no explicit night.
func (s *Session) registerAction(data engine.ActionData) (*engine.Action, error) {
	if data.Night == 0 && s.night > 0 {
		data.Night = s.night
	}
	return s.actions.RegisterAction(data)
}

// resolveNight runs the engine's resolution batch exactly once for the
// current night, then opens the day.
func (s *Session) resolveNight() int {
	count := s.actions.ExecuteActions(s.phase, s.night)
	s.phase = PhaseDay
	s.broadcast(ServerEvent{
		Type:  eventTypePhase,
		Phase: s.phase,
		Night: s.night,
		Body:  fmt.Sprintf("day %d: %d actions resolved, %d players alive", s.night, count, s.roster.AliveCount()),
	})
	return count
}

// abortGame flags the game as abnormally terminated and sweeps the
// pending actions of the current night.
func (s *Session) abortGame() {
	s.game.Aborted = true
	s.actions.ExecuteActions(s.phase, s.night)
	s.phase = PhaseLobby
}
