// Package roles defines the role descriptors of the default game set
// and a per-game directory binding players to roles. The directory
// implements the engine's role collaborator.
package roles

import (
	"fmt"
	"sort"

	"github.com/gosuda/werewolf-gm/engine"
)

// Team represents the alignment of a role.
type Team string

const (
	TeamVillage  Team = "village"
	TeamWerewolf Team = "werewolf"
	TeamNeutral  Team = "neutral"
)

// Spec describes a playable role.
type Spec struct {
	Name        string
	DisplayName string
	Team        Team
	Desc        string

	// Reading is the value a divination or seance of this role
	// returns.
	Reading string
	// AttackImmune roles survive a night attack.
	AttackImmune bool
	// CursedByFortune roles die when divined.
	CursedByFortune bool

	Actions []engine.ActionKind
}

// CanUse reports whether the role may submit the given action kind.
func (s Spec) CanUse(kind engine.ActionKind) bool {
	for _, k := range s.Actions {
		if k == kind {
			return true
		}
	}
	return false
}

// Traits reduces the spec to the fields the engine resolvers consult.
func (s Spec) Traits() engine.RoleTraits {
	return engine.RoleTraits{
		Reading:         s.Reading,
		AttackImmune:    s.AttackImmune,
		CursedByFortune: s.CursedByFortune,
	}
}

var defaultSpecs = map[string]Spec{
	"villager": {
		Name:        "villager",
		DisplayName: "Villager",
		Team:        TeamVillage,
		Desc:        "No night ability. Finds the werewolves by daylight reasoning.",
		Reading:     engine.ReadingHuman,
	},
	"werewolf": {
		Name:        "werewolf",
		DisplayName: "Werewolf",
		Team:        TeamWerewolf,
		Desc:        "Votes each night on one villager to attack.",
		Reading:     engine.ReadingWerewolf,
		Actions:     []engine.ActionKind{engine.KindAttack},
	},
	"seer": {
		Name:        "seer",
		DisplayName: "Seer",
		Team:        TeamVillage,
		Desc:        "Divines one player each night and learns their reading.",
		Reading:     engine.ReadingHuman,
		Actions:     []engine.ActionKind{engine.KindFortune},
	},
	"bodyguard": {
		Name:        "bodyguard",
		DisplayName: "Bodyguard",
		Team:        TeamVillage,
		Desc:        "Protects one player each night from the attack.",
		Reading:     engine.ReadingHuman,
		Actions:     []engine.ActionKind{engine.KindGuard},
	},
	"medium": {
		Name:        "medium",
		DisplayName: "Medium",
		Team:        TeamVillage,
		Desc:        "Learns the reading of a player who has died.",
		Reading:     engine.ReadingHuman,
		Actions:     []engine.ActionKind{engine.KindMedium},
	},
	"fox": {
		Name:            "fox",
		DisplayName:     "Fox",
		Team:            TeamNeutral,
		Desc:            "Survives attacks but dies when divined.",
		Reading:         engine.ReadingHuman,
		AttackImmune:    true,
		CursedByFortune: true,
	},
	"soldier": {
		Name:         "soldier",
		DisplayName:  "Soldier",
		Team:         TeamVillage,
		Desc:         "Shrugs off the werewolves' attack.",
		Reading:      engine.ReadingHuman,
		AttackImmune: true,
	},
}

// Lookup returns the default spec for a role name.
func Lookup(name string) (Spec, bool) {
	s, ok := defaultSpecs[name]
	return s, ok
}

// Names lists the default role names in sorted order.
func Names() []string {
	out := make([]string, 0, len(defaultSpecs))
	for name := range defaultSpecs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Directory binds player ids to role specs for one game. It implements
// engine.RoleDirectory.
type Directory struct {
	assign map[engine.PlayerID]Spec
}

func NewDirectory() *Directory {
	return &Directory{assign: make(map[engine.PlayerID]Spec)}
}

// Assign gives player the named role.
func (d *Directory) Assign(player engine.PlayerID, role string) error {
	spec, ok := Lookup(role)
	if !ok {
		return fmt.Errorf("assign role: unknown role %q", role)
	}
	d.assign[player] = spec
	return nil
}

// AssignSpec gives player a role outside the default set.
func (d *Directory) AssignSpec(player engine.PlayerID, spec Spec) {
	d.assign[player] = spec
}

// RoleOf returns the spec assigned to player.
func (d *Directory) RoleOf(player engine.PlayerID) (Spec, bool) {
	s, ok := d.assign[player]
	return s, ok
}

// CanUseAction implements engine.RoleDirectory.
func (d *Directory) CanUseAction(player engine.PlayerID, kind engine.ActionKind) bool {
	s, ok := d.assign[player]
	return ok && s.CanUse(kind)
}

// Traits implements engine.RoleDirectory.
func (d *Directory) Traits(player engine.PlayerID) (engine.RoleTraits, bool) {
	s, ok := d.assign[player]
	if !ok {
		return engine.RoleTraits{}, false
	}
	return s.Traits(), true
}
