package main

import (
	"fmt"

	"github.com/gosuda/werewolf-gm/engine"
)

// PlayerState is one seated player.
type PlayerState struct {
	ID    engine.PlayerID
	Name  string
	Role  string
	Alive bool
	Cause string
}

// Roster is the session's player registry. It implements
// engine.PlayerDirectory. All access happens on the session loop.
type Roster struct {
	players map[engine.PlayerID]*PlayerState
	order   []engine.PlayerID
	nextID  engine.PlayerID
}

func NewRoster() *Roster {
	return &Roster{players: make(map[engine.PlayerID]*PlayerState)}
}

// Add seats a new player and returns its state.
func (r *Roster) Add(name, role string) *PlayerState {
	r.nextID++
	p := &PlayerState{ID: r.nextID, Name: name, Role: role, Alive: true}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	return p
}

// Player implements engine.PlayerDirectory.
func (r *Roster) Player(id engine.PlayerID) (engine.Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return engine.Player{}, false
	}
	return engine.Player{ID: p.ID, Name: p.Name, Alive: p.Alive}, true
}

// Eliminate implements engine.PlayerDirectory.
func (r *Roster) Eliminate(id engine.PlayerID, cause string) error {
	p, ok := r.players[id]
	if !ok {
		return fmt.Errorf("eliminate: player %d not found", id)
	}
	if !p.Alive {
		return nil
	}
	p.Alive = false
	p.Cause = cause
	return nil
}

// Alive counts the survivors.
func (r *Roster) AliveCount() int {
	n := 0
	for _, p := range r.players {
		if p.Alive {
			n++
		}
	}
	return n
}

// Snapshot returns the roster in seating order.
func (r *Roster) Snapshot() []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		out = append(out, PlayerSnapshot{ID: p.ID, Name: p.Name, Role: p.Role, Alive: p.Alive, Cause: p.Cause})
	}
	return out
}
