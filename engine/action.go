package engine

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Result is the outcome payload of one executed action.
type Result struct {
	Success bool     `json:"success"`
	Reason  string   `json:"reason,omitempty"`
	Killed  bool     `json:"killed,omitempty"`
	Reading string   `json:"reading,omitempty"`
	Target  PlayerID `json:"target,omitempty"`
}

// Result reasons shared by the effect resolvers.
const (
	ReasonTargetNotFound = "TARGET_NOT_FOUND"
	ReasonTargetDead     = "TARGET_DEAD"
	ReasonTargetAlive    = "TARGET_ALIVE"
	ReasonAlreadyDead    = "ALREADY_DEAD"
	ReasonGuarded        = "GUARDED"
	ReasonResistant      = "RESISTANT"
	ReasonFirstNight     = "FIRST_NIGHT"
)

// ActionData is the raw submission RegisterAction and NewAction accept.
// Night defaults to 1 and Priority to the kind default when zero.
type ActionData struct {
	Kind     ActionKind `json:"type"`
	Actor    PlayerID   `json:"actor"`
	Target   PlayerID   `json:"target"`
	Night    int        `json:"night,omitempty"`
	Priority int        `json:"priority,omitempty"`
}

// Action is one submitted covert act. Once executed or cancelled it is
// immutable; it is retained for history queries, never destroyed.
type Action struct {
	ID       string
	Kind     ActionKind
	Actor    PlayerID
	Target   PlayerID
	Night    int
	Priority int

	executed  bool
	cancelled bool
	result    *Result

	game *Game
}

var actionSeq atomic.Int64

// nextActionID yields timestamp plus zero-padded counter; ids
// string-sort by creation time.
func nextActionID() string {
	return time.Now().Format("20060102150405") + "-" + fmt.Sprintf("%06d", actionSeq.Add(1))
}

// NewAction validates the construction contract and builds a pending
// action. Unknown kinds and non-positive actor/target ids fail with a
// *ContractError.
func NewAction(data ActionData) (*Action, error) {
	if data.Kind == "" {
		return nil, &ContractError{Field: "type", Detail: "is required"}
	}
	spec, ok := LookupKind(data.Kind)
	if !ok {
		return nil, &ContractError{Field: "type", Detail: fmt.Sprintf("%q is not a registered kind", data.Kind)}
	}
	if data.Actor <= 0 {
		return nil, &ContractError{Field: "actor", Detail: "must be a positive player id"}
	}
	if data.Target <= 0 {
		return nil, &ContractError{Field: "target", Detail: "must be a positive player id"}
	}
	a := &Action{
		ID:       nextActionID(),
		Kind:     data.Kind,
		Actor:    data.Actor,
		Target:   data.Target,
		Night:    data.Night,
		Priority: data.Priority,
	}
	if a.Night <= 0 {
		a.Night = 1
	}
	if a.Priority == 0 {
		a.Priority = spec.Priority
	}
	return a, nil
}

// AttachGame wires the borrowed collaborator context. Returns the
// action for chaining.
func (a *Action) AttachGame(g *Game) *Action {
	a.game = g
	return a
}

// IsExecutable reports whether the action is still pending.
func (a *Action) IsExecutable() bool {
	return !a.executed && !a.cancelled
}

// Executed reports whether the action reached the executed state.
func (a *Action) Executed() bool { return a.executed }

// Cancelled reports whether the action reached the cancelled state.
func (a *Action) Cancelled() bool { return a.cancelled }

// Result returns the stored outcome, or nil while pending.
func (a *Action) Result() *Result {
	return a.result
}

// ExecuteOptions tweak a single Execute call.
type ExecuteOptions struct {
	// Game overrides the attached collaborator context.
	Game *Game
	// CustomResult becomes the stored result verbatim, skipping the
	// permission/regulation checks and the effect resolver. The
	// manager uses it to share one conflict-resolution outcome across
	// co-actors.
	CustomResult *Result
}

// Execute resolves the action exactly once. On the computed path it
// runs the role-permission check, the regulation check, and the
// kind-specific effect resolver, then emits the execution events.
func (a *Action) Execute(opts *ExecuteOptions) (Result, error) {
	if a.executed {
		return Result{}, ErrAlreadyExecuted
	}
	if a.cancelled {
		return Result{}, ErrCancelled
	}
	g := a.game
	if opts != nil && opts.Game != nil {
		g = opts.Game
	}
	if g == nil {
		return Result{}, ErrNoGame
	}
	a.game = g

	if opts != nil && opts.CustomResult != nil {
		res := *opts.CustomResult
		a.executed = true
		a.result = &res
		a.emitExecuteEvent()
		return res, nil
	}

	if g.Roles != nil && !g.Roles.CanUseAction(a.Actor, a.Kind) {
		return Result{}, reject(RejectNotAuthorized, fmt.Sprintf("player %d is not authorized to perform %s", a.Actor, a.Kind))
	}
	if err := a.checkRegulations(g); err != nil {
		return Result{}, err
	}

	spec, ok := LookupKind(a.Kind)
	if !ok {
		return Result{}, &ContractError{Field: "type", Detail: fmt.Sprintf("%q is not a registered kind", a.Kind)}
	}
	res, err := spec.Resolve(a, g)
	if err != nil {
		return Result{}, err
	}
	a.executed = true
	a.result = &res
	a.emitExecuteEvent()
	return res, nil
}

// checkRegulations re-validates regulation flags at execution time.
// Registration already enforces them, but the game state may have
// moved between submission and resolution.
func (a *Action) checkRegulations(g *Game) error {
	if a.Kind == KindGuard && g.Rules.ForbidConsecutiveGuard && g.LastGuarded() == a.Target {
		return reject(RejectConsecutiveGuard, "consecutive protection of the same target is forbidden")
	}
	return nil
}

// CancelAck acknowledges a successful cancellation.
type CancelAck struct {
	Success   bool `json:"success"`
	Cancelled bool `json:"cancelled"`
}

// Cancel moves a pending action to the cancelled state and emits the
// cancellation event. Executed actions cannot be cancelled.
func (a *Action) Cancel() (CancelAck, error) {
	if a.executed {
		return CancelAck{}, fmt.Errorf("%w: cannot be cancelled", ErrAlreadyExecuted)
	}
	if a.cancelled {
		return CancelAck{}, ErrAlreadyCancelled
	}
	a.cancelled = true
	if a.game != nil {
		a.game.emit(EventActionCancelled, a.eventPayload())
	}
	return CancelAck{Success: true, Cancelled: true}, nil
}

// KindInfo returns the static metadata of this action's kind.
func (a *Action) KindInfo() KindInfo {
	spec, _ := LookupKind(a.Kind)
	return KindInfo{
		Name:        spec.Name,
		DisplayName: spec.DisplayName,
		Priority:    spec.Priority,
		Phase:       spec.Phase,
	}
}

func (a *Action) eventPayload() ActionEvent {
	return ActionEvent{
		ID:     a.ID,
		Kind:   a.Kind,
		Actor:  a.Actor,
		Target: a.Target,
		Night:  a.Night,
		Result: a.result,
	}
}

// emitExecuteEvent emits one generic and one kind-qualified execution
// event. No-op without an attached game.
func (a *Action) emitExecuteEvent() {
	if a.game == nil {
		return
	}
	payload := a.eventPayload()
	a.game.emit(EventActionExecuted, payload)
	a.game.emit(EventActionExecuted+"."+string(a.Kind), payload)
}
