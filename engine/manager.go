package engine

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Manager owns the action collection of one game: it validates new
// submissions, resolves a night's batch on demand, and answers history
// queries. Registration order is preserved for stable tie-breaks.
//
// The manager is single-threaded by contract: all calls must come from
// the goroutine that owns the game (the session actor loop in the
// server).
type Manager struct {
	game *Game

	actions []*Action
	byID    map[string]int
	byActor map[PlayerID][]int
}

// NewManager builds a manager bound to the given collaborator context.
func NewManager(g *Game) *Manager {
	return &Manager{
		game:    g,
		byID:    make(map[string]int),
		byActor: make(map[PlayerID][]int),
	}
}

// Game exposes the attached collaborator context.
func (m *Manager) Game() *Game { return m.game }

// RegisterAction validates a submission against the full rule pipeline
// and appends the resulting action. Rejections come back as *Reject
// values with a stable code; malformed input as *ContractError.
func (m *Manager) RegisterAction(data ActionData) (*Action, error) {
	g := m.game
	if g.Players == nil {
		return nil, reject(RejectPlayerNotFound, "no player directory attached")
	}
	actor, ok := g.Players.Player(data.Actor)
	if !ok {
		return nil, reject(RejectPlayerNotFound, fmt.Sprintf("player %d does not exist", data.Actor))
	}
	if _, ok := g.Players.Player(data.Target); !ok {
		return nil, reject(RejectTargetNotFound, fmt.Sprintf("target player %d does not exist", data.Target))
	}
	if !actor.Alive {
		return nil, reject(RejectActorDead, "dead players cannot act")
	}
	if !KnownKind(data.Kind) {
		return nil, reject(RejectUnknownKind, fmt.Sprintf("unknown action type %q", data.Kind))
	}
	if g.Roles != nil && !g.Roles.CanUseAction(data.Actor, data.Kind) {
		return nil, reject(RejectNotAuthorized, fmt.Sprintf("player %d is not authorized to perform %s", data.Actor, data.Kind))
	}
	if data.Kind == KindGuard && g.Rules.ForbidConsecutiveGuard && g.LastGuarded() == data.Target {
		return nil, reject(RejectConsecutiveGuard, "consecutive protection of the same target is forbidden")
	}

	a, err := NewAction(data)
	if err != nil {
		return nil, err
	}
	a.AttachGame(g)

	idx := len(m.actions)
	m.actions = append(m.actions, a)
	m.byID[a.ID] = idx
	m.byActor[a.Actor] = append(m.byActor[a.Actor], idx)

	g.emit(EventActionRegistered, a.eventPayload())
	return a, nil
}

// ExecuteActions resolves one night: plurality-aggregates attacks,
// orders the batch by priority (registration order breaks ties), and
// executes with per-action fault isolation. Returns the number of
// actions that executed successfully.
func (m *Manager) ExecuteActions(phase string, turn int) int {
	g := m.game

	if g.Aborted {
		cancelled := 0
		for _, a := range m.actions {
			if a.Night == turn && a.IsExecutable() {
				if _, err := a.Cancel(); err == nil {
					cancelled++
				}
			}
		}
		g.emit(EventGameAborted, AbortEvent{Turn: turn, Cancelled: cancelled})
		g.emit(EventNightResolved, ResolvedEvent{Phase: phase, Turn: turn, ExecutedCount: 0, Aborted: true})
		return 0
	}

	m.aggregateAttacks(turn)

	batch := make([]*Action, 0, len(m.actions))
	for _, a := range m.actions {
		if a.Night == turn && a.IsExecutable() {
			batch = append(batch, a)
		}
	}
	// Stable sort: among equal priorities registration order decides.
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Priority > batch[j].Priority
	})

	executed := 0
	var attackOutcome *Result
	for _, a := range batch {
		var opts *ExecuteOptions
		if a.Kind == KindAttack && attackOutcome != nil {
			// Share the first attack's conflict-resolution outcome
			// with the remaining co-attackers.
			opts = &ExecuteOptions{CustomResult: attackOutcome}
		}
		res, err := a.Execute(opts)
		if err != nil {
			g.reportError(err)
			log.Error().Err(err).
				Str("action", a.ID).
				Str("kind", string(a.Kind)).
				Int("night", a.Night).
				Msg("action execution failed")
			// A rule violation first detected at resolution time
			// retires the action; other failures leave it pending.
			if RejectCodeOf(err) != "" {
				if _, cerr := a.Cancel(); cerr != nil {
					g.reportError(cerr)
				}
			}
			continue
		}
		if a.Kind == KindAttack && attackOutcome == nil {
			attackOutcome = &res
		}
		executed++
	}

	g.emit(EventNightResolved, ResolvedEvent{Phase: phase, Turn: turn, ExecutedCount: executed})
	return executed
}

// aggregateAttacks tallies attack votes by target for the given night,
// keeps only the plurality winner's attacks, and cancels the rest.
// Ties break to the first-registered target among the tied set.
func (m *Manager) aggregateAttacks(turn int) {
	votes := make(map[PlayerID]int)
	order := make([]PlayerID, 0, 4)
	attacks := make([]*Action, 0, 4)
	for _, a := range m.actions {
		if a.Kind != KindAttack || a.Night != turn || !a.IsExecutable() {
			continue
		}
		attacks = append(attacks, a)
		if _, seen := votes[a.Target]; !seen {
			order = append(order, a.Target)
		}
		votes[a.Target]++
	}
	if len(attacks) == 0 {
		return
	}

	winner := order[0]
	for _, t := range order[1:] {
		if votes[t] > votes[winner] {
			winner = t
		}
	}

	for _, a := range attacks {
		if a.Target == winner {
			continue
		}
		if _, err := a.Cancel(); err != nil {
			m.game.reportError(err)
		}
	}

	m.game.emit(EventAttackTally, TallyEvent{Target: winner, Night: turn, Votes: votes})
}

// CancelAction cancels the action with the given id. Returns false for
// unknown ids or failed cancellations; it never propagates an error.
func (m *Manager) CancelAction(id string) bool {
	idx, ok := m.byID[id]
	if !ok {
		return false
	}
	if _, err := m.actions[idx].Cancel(); err != nil {
		m.game.reportError(err)
		return false
	}
	return true
}

// ActionByID returns a registered action by id.
func (m *Manager) ActionByID(id string) (*Action, bool) {
	idx, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	return m.actions[idx], true
}

// ActionSummary is the reduced view history queries return.
type ActionSummary struct {
	Kind   ActionKind `json:"type"`
	Night  int        `json:"night"`
	Result *Result    `json:"result"`
}

// ActionResults returns the executed actions submitted by player,
// reduced to kind, night, and outcome.
func (m *Manager) ActionResults(player PlayerID) []ActionSummary {
	out := make([]ActionSummary, 0, len(m.byActor[player]))
	for _, idx := range m.byActor[player] {
		a := m.actions[idx]
		if !a.Executed() {
			continue
		}
		out = append(out, ActionSummary{Kind: a.Kind, Night: a.Night, Result: a.Result()})
	}
	return out
}

// RegisteredActions returns the collection filtered by turn when turn
// is positive. The phase parameter is accepted but reserved: no phase
// filtering is applied.
func (m *Manager) RegisteredActions(phase string, turn int) []*Action {
	_ = phase
	out := make([]*Action, 0, len(m.actions))
	for _, a := range m.actions {
		if turn > 0 && a.Night != turn {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ActionsForPlayer returns every action submitted by player, any
// status, in registration order.
func (m *Manager) ActionsForPlayer(player PlayerID) []*Action {
	out := make([]*Action, 0, len(m.byActor[player]))
	for _, idx := range m.byActor[player] {
		out = append(out, m.actions[idx])
	}
	return out
}

// IsActionAllowed reports whether player exists, is alive, and may use
// the kind. It never errors; any failure is false.
func (m *Manager) IsActionAllowed(player PlayerID, kind ActionKind) bool {
	g := m.game
	if g == nil || g.Players == nil {
		return false
	}
	p, ok := g.Players.Player(player)
	if !ok || !p.Alive {
		return false
	}
	if !KnownKind(kind) {
		return false
	}
	if g.Roles == nil {
		return false
	}
	return g.Roles.CanUseAction(player, kind)
}

// HistoryEntry is one executed divination or protection, with the
// target name resolved for display.
type HistoryEntry struct {
	Night      int      `json:"night"`
	Target     PlayerID `json:"targetId"`
	TargetName string   `json:"targetName"`
	Result     *Result  `json:"result"`
}

// FortuneHistory returns the executed divinations of player.
func (m *Manager) FortuneHistory(player PlayerID) []HistoryEntry {
	return m.kindHistory(player, KindFortune)
}

// GuardHistory returns the executed protections of player.
func (m *Manager) GuardHistory(player PlayerID) []HistoryEntry {
	return m.kindHistory(player, KindGuard)
}

const unknownPlayerName = "unknown"

func (m *Manager) kindHistory(player PlayerID, kind ActionKind) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(m.byActor[player]))
	for _, idx := range m.byActor[player] {
		a := m.actions[idx]
		if a.Kind != kind || !a.Executed() {
			continue
		}
		name := unknownPlayerName
		if m.game.Players != nil {
			if p, ok := m.game.Players.Player(a.Target); ok {
				name = p.Name
			}
		}
		out = append(out, HistoryEntry{Night: a.Night, Target: a.Target, TargetName: name, Result: a.Result()})
	}
	return out
}
