package engine

import (
	"fmt"
	"testing"
)

// Test fixtures shared by the engine tests.

type fakePlayers struct {
	players map[PlayerID]*Player
}

func newFakePlayers(ids ...PlayerID) *fakePlayers {
	f := &fakePlayers{players: make(map[PlayerID]*Player)}
	for _, id := range ids {
		f.players[id] = &Player{ID: id, Name: fmt.Sprintf("player-%d", id), Alive: true}
	}
	return f
}

func (f *fakePlayers) Player(id PlayerID) (Player, bool) {
	p, ok := f.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

func (f *fakePlayers) Eliminate(id PlayerID, cause string) error {
	p, ok := f.players[id]
	if !ok {
		return fmt.Errorf("eliminate: player %d not found", id)
	}
	p.Alive = false
	return nil
}

func (f *fakePlayers) kill(id PlayerID) { f.players[id].Alive = false }

func (f *fakePlayers) remove(id PlayerID) { delete(f.players, id) }

type fakeRoles struct {
	// allow restricts kinds per player; a nil map allows everything.
	allow  map[PlayerID][]ActionKind
	traits map[PlayerID]RoleTraits
}

func (f *fakeRoles) CanUseAction(id PlayerID, kind ActionKind) bool {
	if f.allow == nil {
		return true
	}
	for _, k := range f.allow[id] {
		if k == kind {
			return true
		}
	}
	return false
}

func (f *fakeRoles) Traits(id PlayerID) (RoleTraits, bool) {
	t, ok := f.traits[id]
	return t, ok
}

type busEvent struct {
	name    string
	payload any
}

type memoryBus struct {
	events []busEvent
}

func (b *memoryBus) Emit(name string, payload any) {
	b.events = append(b.events, busEvent{name: name, payload: payload})
}

func (b *memoryBus) named(name string) []busEvent {
	var out []busEvent
	for _, e := range b.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

type memorySink struct {
	errs []error
}

func (s *memorySink) HandleError(err error) { s.errs = append(s.errs, err) }

type fixture struct {
	game    *Game
	players *fakePlayers
	roles   *fakeRoles
	bus     *memoryBus
	sink    *memorySink
	mgr     *Manager
}

func newFixture(rules Rules, ids ...PlayerID) *fixture {
	f := &fixture{
		players: newFakePlayers(ids...),
		roles:   &fakeRoles{traits: make(map[PlayerID]RoleTraits)},
		bus:     &memoryBus{},
		sink:    &memorySink{},
	}
	f.game = NewGame(f.players, f.roles, f.bus, f.sink, rules)
	f.mgr = NewManager(f.game)
	return f
}

func (f *fixture) mustRegister(t *testing.T, data ActionData) *Action {
	t.Helper()
	a, err := f.mgr.RegisterAction(data)
	if err != nil {
		t.Fatalf("RegisterAction(%+v): %v", data, err)
	}
	return a
}
