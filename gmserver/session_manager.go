package main

import (
	"errors"
	"sync"

	"github.com/gosuda/werewolf-gm/engine"
	"github.com/gosuda/werewolf-gm/journal"
)

var (
	errAlreadyObserving = errors.New("observer already attached to another session")
	errSessionNotFound  = errors.New("session not found")
	errSessionExists    = errors.New("session already exists")
)

// SessionManager keeps the global session registry.
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	observers map[string]*Session

	journal *journal.Journal
}

func NewSessionManager(jnl *journal.Journal) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		observers: make(map[string]*Session),
		journal:   jnl,
	}
}

// Create registers a new session with the given regulation flags.
func (m *SessionManager) Create(name string, rules engine.Rules) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[name]; ok {
		return nil, errSessionExists
	}
	s := NewSession(name, m, rules, m.journal)
	m.sessions[name] = s
	return s, nil
}

// Lookup finds a session by name.
func (m *SessionManager) Lookup(name string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[name]
	return s, ok
}

// Attach connects an observer client to a session.
func (m *SessionManager) Attach(sessionName string, c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.observers[c.name]; ok {
		return errAlreadyObserving
	}
	s, ok := m.sessions[sessionName]
	if !ok {
		return errSessionNotFound
	}
	m.observers[c.name] = s
	s.enqueue(func(sess *Session) {
		sess.addObserver(c)
	})
	return nil
}

// Detach disconnects an observer.
func (m *SessionManager) Detach(c *Client) {
	m.mu.Lock()
	s, ok := m.observers[c.name]
	if ok {
		delete(m.observers, c.name)
	}
	m.mu.Unlock()
	if ok {
		s.enqueue(func(sess *Session) {
			sess.removeObserver(c)
		})
	}
}

// RouteMessage forwards a websocket message to the observer's session.
func (m *SessionManager) RouteMessage(c *Client, msg ClientMessage) {
	m.mu.RLock()
	s := m.observers[c.name]
	m.mu.RUnlock()
	if s == nil {
		c.pushSystem("not observing any session")
		return
	}
	s.enqueue(func(sess *Session) {
		sess.handleMessage(c, msg)
	})
}

// Close shuts down every session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, s := range m.sessions {
		s.close()
		delete(m.sessions, name)
	}
	m.observers = make(map[string]*Session)
}

func (m *SessionManager) removeSession(name string, s *Session) {
	m.mu.Lock()
	if current, ok := m.sessions[name]; ok && current == s {
		delete(m.sessions, name)
	}
	m.mu.Unlock()
}
