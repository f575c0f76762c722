package engine

// PlayerID identifies a player within one game.
type PlayerID int

// Player is the view of a player this engine needs: identity and
// liveness. The authoritative roster lives with the collaborator.
type Player struct {
	ID    PlayerID
	Name  string
	Alive bool
}

// PlayerDirectory is the player-bookkeeping collaborator.
type PlayerDirectory interface {
	Player(id PlayerID) (Player, bool)
	Eliminate(id PlayerID, cause string) error
}

// RoleTraits are the role-descriptor fields consulted by resolvers.
type RoleTraits struct {
	// Reading is the value a divination of this role returns.
	Reading string
	// AttackImmune marks roles that survive an attack.
	AttackImmune bool
	// CursedByFortune marks roles eliminated as a side effect of
	// being divined.
	CursedByFortune bool
}

// RoleDirectory is the role-capability collaborator.
type RoleDirectory interface {
	CanUseAction(id PlayerID, kind ActionKind) bool
	Traits(id PlayerID) (RoleTraits, bool)
}

// EventBus receives every event the engine emits. Emission is
// fire-and-forget; the engine never consults a return value.
type EventBus interface {
	Emit(name string, payload any)
}

// ErrorSink records execution-time failures without altering control
// flow.
type ErrorSink interface {
	HandleError(err error)
}

// Rules holds the regulation flags consulted at registration and
// execution time.
type Rules struct {
	// ForbidConsecutiveGuard bans protecting the same target on two
	// consecutive nights.
	ForbidConsecutiveGuard bool
	// FirstNightFortuneFixed forces a benign divination reading on
	// night 1 regardless of the target's true role.
	FirstNightFortuneFixed bool
}

// Game bundles the borrowed collaborators plus the transient night
// state the resolvers share. It is attached to every action the
// manager registers; the engine never owns the collaborators.
type Game struct {
	Players PlayerDirectory
	Roles   RoleDirectory
	Bus     EventBus
	Errors  ErrorSink
	Rules   Rules

	// Aborted suppresses all execution for subsequent resolutions.
	Aborted bool

	guarded     map[PlayerID]int
	lastGuarded PlayerID
}

// NewGame builds a collaborator context. Any of the collaborators may
// be nil; the engine degrades to no-ops for missing bus/sink and to
// permissive lookups only where the spec allows it.
func NewGame(players PlayerDirectory, roles RoleDirectory, bus EventBus, sink ErrorSink, rules Rules) *Game {
	return &Game{
		Players: players,
		Roles:   roles,
		Bus:     bus,
		Errors:  sink,
		Rules:   rules,
		guarded: make(map[PlayerID]int),
	}
}

func (g *Game) emit(name string, payload any) {
	if g == nil || g.Bus == nil {
		return
	}
	g.Bus.Emit(name, payload)
}

func (g *Game) reportError(err error) {
	if g == nil || g.Errors == nil || err == nil {
		return
	}
	g.Errors.HandleError(err)
}

// MarkGuarded records a protection on target for the given night.
func (g *Game) MarkGuarded(target PlayerID, night int) {
	if g.guarded == nil {
		g.guarded = make(map[PlayerID]int)
	}
	g.guarded[target] = night
	g.lastGuarded = target
}

// IsGuarded reports whether target is protected on the given night.
func (g *Game) IsGuarded(target PlayerID, night int) bool {
	n, ok := g.guarded[target]
	return ok && n == night
}

// LastGuarded returns the most recently protected player, or 0.
func (g *Game) LastGuarded() PlayerID {
	return g.lastGuarded
}
