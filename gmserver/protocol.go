package main

import "github.com/gosuda/werewolf-gm/engine"

// ClientMessage is the envelope received from websocket observers.
type ClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ServerEvent is pushed to observers for any session update. Engine
// events arrive with Type "engine" and the engine event name in Name.
type ServerEvent struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Name    string `json:"name,omitempty"`
	Body    string `json:"body,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Night   int    `json:"night,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

const (
	eventTypeLog    = "log"
	eventTypePhase  = "phase"
	eventTypeEngine = "engine"
	eventTypeState  = "state"
)

// HTTP request bodies.

type createSessionRequest struct {
	Name  string       `json:"name"`
	Rules engine.Rules `json:"rules"`
}

type addPlayerRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type registerActionRequest struct {
	engine.ActionData
}

// SessionSnapshot is the state view returned to HTTP callers and
// "sync" observers.
type SessionSnapshot struct {
	Name    string           `json:"name"`
	Phase   string           `json:"phase"`
	Night   int              `json:"night"`
	Players []PlayerSnapshot `json:"players"`
}

type PlayerSnapshot struct {
	ID    engine.PlayerID `json:"id"`
	Name  string          `json:"name"`
	Role  string          `json:"role"`
	Alive bool            `json:"alive"`
	Cause string          `json:"cause,omitempty"`
}
