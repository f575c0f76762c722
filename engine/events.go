package engine

// Event names emitted by the engine. Kind-qualified execution events
// are derived as EventActionExecuted + "." + kind.
const (
	EventActionRegistered = "action.registered"
	EventActionExecuted   = "action.executed"
	EventActionCancelled  = "action.cancelled"
	EventGuardApplied     = "guard.applied"
	EventFortuneCursed    = "fortune.cursed"
	EventAttackTally      = "attack.tally"
	EventNightResolved    = "night.resolved"
	EventGameAborted      = "game.aborted"
)

// ActionEvent is the payload of registration, execution, and
// cancellation events.
type ActionEvent struct {
	ID     string     `json:"id"`
	Kind   ActionKind `json:"type"`
	Actor  PlayerID   `json:"actor"`
	Target PlayerID   `json:"target"`
	Night  int        `json:"night"`
	Result *Result    `json:"result,omitempty"`
}

// GuardEvent reports a protection applied for one night.
type GuardEvent struct {
	Actor  PlayerID `json:"actor"`
	Target PlayerID `json:"target"`
	Night  int      `json:"night"`
}

// CurseEvent reports an elimination triggered by divining a cursed
// role.
type CurseEvent struct {
	Actor  PlayerID `json:"actor"`
	Target PlayerID `json:"target"`
	Night  int      `json:"night"`
}

// TallyEvent reports the plurality aggregation of attack votes.
type TallyEvent struct {
	Target PlayerID         `json:"targetId"`
	Night  int              `json:"night"`
	Votes  map[PlayerID]int `json:"votes"`
}

// ResolvedEvent reports the completion of one resolution batch.
type ResolvedEvent struct {
	Phase         string `json:"phase"`
	Turn          int    `json:"turn"`
	ExecutedCount int    `json:"executedCount"`
	Aborted       bool   `json:"aborted,omitempty"`
}

// AbortEvent reports the cancellation sweep of an abnormally
// terminated game.
type AbortEvent struct {
	Turn      int `json:"turn"`
	Cancelled int `json:"cancelled"`
}
