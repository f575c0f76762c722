package engine

import "fmt"

// Divination readings used when no role directory is consulted.
const (
	ReadingHuman    = "human"
	ReadingWerewolf = "werewolf"
)

// lookupTarget applies the shared resolver preconditions. A non-nil
// Result short-circuits the kind logic.
func lookupTarget(g *Game, id PlayerID) (Player, *Result) {
	if g.Players == nil {
		return Player{}, &Result{Success: false, Reason: ReasonTargetNotFound, Target: id}
	}
	p, ok := g.Players.Player(id)
	if !ok {
		return Player{}, &Result{Success: false, Reason: ReasonTargetNotFound, Target: id}
	}
	return p, nil
}

// resolveFortune divines the target's role-defined reading. On night 1
// the first-night regulation may force a benign reading. Divining a
// cursed role additionally eliminates the target.
func resolveFortune(a *Action, g *Game) (Result, error) {
	target, fail := lookupTarget(g, a.Target)
	if fail != nil {
		return *fail, nil
	}
	if !target.Alive {
		return Result{Success: false, Reason: ReasonTargetDead, Target: a.Target}, nil
	}
	if g.Rules.FirstNightFortuneFixed && a.Night == 1 {
		return Result{Success: true, Reason: ReasonFirstNight, Reading: ReadingHuman, Target: a.Target}, nil
	}
	reading := ReadingHuman
	var (
		traits RoleTraits
		ok     bool
	)
	if g.Roles != nil {
		traits, ok = g.Roles.Traits(a.Target)
	}
	if ok && traits.Reading != "" {
		reading = traits.Reading
	}
	if ok && traits.CursedByFortune {
		// The curse kills, the reading is unaffected.
		if err := g.Players.Eliminate(a.Target, "curse"); err != nil {
			return Result{}, fmt.Errorf("curse elimination of player %d: %w", a.Target, err)
		}
		g.emit(EventFortuneCursed, CurseEvent{Actor: a.Actor, Target: a.Target, Night: a.Night})
	}
	return Result{Success: true, Reading: reading, Target: a.Target}, nil
}

// resolveGuard protects the target for the current night and records
// the consecutive-guard regulation state.
func resolveGuard(a *Action, g *Game) (Result, error) {
	target, fail := lookupTarget(g, a.Target)
	if fail != nil {
		return *fail, nil
	}
	if !target.Alive {
		return Result{Success: false, Reason: ReasonTargetDead, Target: a.Target}, nil
	}
	g.MarkGuarded(a.Target, a.Night)
	g.emit(EventGuardApplied, GuardEvent{Actor: a.Actor, Target: a.Target, Night: a.Night})
	return Result{Success: true, Target: a.Target}, nil
}

// resolveAttack eliminates the target unless it is protected this
// night, attack-immune, or already dead. Attacking a dead target is a
// successful no-op.
func resolveAttack(a *Action, g *Game) (Result, error) {
	target, fail := lookupTarget(g, a.Target)
	if fail != nil {
		return *fail, nil
	}
	if !target.Alive {
		return Result{Success: true, Killed: false, Reason: ReasonAlreadyDead, Target: a.Target}, nil
	}
	if g.IsGuarded(a.Target, a.Night) {
		return Result{Success: true, Killed: false, Reason: ReasonGuarded, Target: a.Target}, nil
	}
	if g.Roles != nil {
		if traits, ok := g.Roles.Traits(a.Target); ok && traits.AttackImmune {
			return Result{Success: true, Killed: false, Reason: ReasonResistant, Target: a.Target}, nil
		}
	}
	if err := g.Players.Eliminate(a.Target, "attack"); err != nil {
		return Result{}, fmt.Errorf("eliminate player %d: %w", a.Target, err)
	}
	return Result{Success: true, Killed: true, Target: a.Target}, nil
}

// resolveMedium reads a dead target. The inverse of the shared
// liveness precondition: seance only works on the departed.
func resolveMedium(a *Action, g *Game) (Result, error) {
	target, fail := lookupTarget(g, a.Target)
	if fail != nil {
		return *fail, nil
	}
	if target.Alive {
		return Result{Success: false, Reason: ReasonTargetAlive, Target: a.Target}, nil
	}
	reading := ReadingHuman
	if g.Roles != nil {
		if traits, ok := g.Roles.Traits(a.Target); ok && traits.Reading != "" {
			reading = traits.Reading
		}
	}
	return Result{Success: true, Reading: reading, Target: a.Target}, nil
}
