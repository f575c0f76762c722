package engine

import (
	"fmt"
	"strings"
	"sync"
)

// ActionKind identifies one covert action type.
type ActionKind string

const (
	KindFortune ActionKind = "fortune"
	KindGuard   ActionKind = "guard"
	KindAttack  ActionKind = "attack"
	KindMedium  ActionKind = "medium"

	// CustomKindPrefix is the namespace reserved for externally
	// registered kinds.
	CustomKindPrefix = "custom_"
)

// Resolver computes the effect of one action against the game state.
type Resolver func(a *Action, g *Game) (Result, error)

// KindSpec describes one registered action kind.
type KindSpec struct {
	Name        ActionKind
	DisplayName string
	Priority    int
	Phase       string
	Resolve     Resolver
}

// KindInfo is the static per-kind metadata exposed for UI/debugging.
type KindInfo struct {
	Name        ActionKind `json:"name"`
	DisplayName string     `json:"displayName"`
	Priority    int        `json:"priority"`
	Phase       string     `json:"phase"`
}

var builtinKinds = []ActionKind{KindFortune, KindGuard, KindAttack, KindMedium}

var (
	kindMu sync.RWMutex
	kinds  = mustKindRegistry()
)

func mustKindRegistry() map[ActionKind]KindSpec {
	reg := map[ActionKind]KindSpec{
		KindFortune: {Name: KindFortune, DisplayName: "Divination", Priority: 100, Phase: "night", Resolve: resolveFortune},
		KindGuard:   {Name: KindGuard, DisplayName: "Protection", Priority: 80, Phase: "night", Resolve: resolveGuard},
		KindAttack:  {Name: KindAttack, DisplayName: "Attack", Priority: 60, Phase: "night", Resolve: resolveAttack},
		KindMedium:  {Name: KindMedium, DisplayName: "Seance", Priority: 70, Phase: "night", Resolve: resolveMedium},
	}
	if err := validateKindRegistry(reg, builtinKinds); err != nil {
		panic(err)
	}
	return reg
}

// validateKindRegistry checks that the resolver table covers exactly the
// supported kind list, with no unhandled kind and no orphan entry.
func validateKindRegistry(reg map[ActionKind]KindSpec, supported []ActionKind) error {
	allowed := make(map[ActionKind]struct{}, len(supported))
	for _, k := range supported {
		if k == "" {
			return fmt.Errorf("kind registry: empty supported kind")
		}
		if _, ok := allowed[k]; ok {
			return fmt.Errorf("kind registry: duplicate supported kind %q", k)
		}
		allowed[k] = struct{}{}
	}
	if len(reg) != len(allowed) {
		return fmt.Errorf("kind registry size mismatch: got=%d want=%d", len(reg), len(allowed))
	}
	for k, spec := range reg {
		if _, ok := allowed[k]; !ok {
			return fmt.Errorf("kind registry has unsupported kind %q", k)
		}
		if spec.Resolve == nil {
			return fmt.Errorf("kind registry: kind %q has no resolver", k)
		}
	}
	return nil
}

// RegisterKind adds an externally defined action kind. The name must live
// under the custom_ namespace and carry a resolver.
func RegisterKind(spec KindSpec) error {
	if !strings.HasPrefix(string(spec.Name), CustomKindPrefix) {
		return fmt.Errorf("register kind %q: name must start with %q", spec.Name, CustomKindPrefix)
	}
	if spec.Resolve == nil {
		return fmt.Errorf("register kind %q: resolver is required", spec.Name)
	}
	if spec.Phase == "" {
		spec.Phase = "night"
	}
	kindMu.Lock()
	defer kindMu.Unlock()
	if _, ok := kinds[spec.Name]; ok {
		return fmt.Errorf("register kind %q: already registered", spec.Name)
	}
	kinds[spec.Name] = spec
	return nil
}

// LookupKind returns the spec for a registered kind.
func LookupKind(kind ActionKind) (KindSpec, bool) {
	kindMu.RLock()
	defer kindMu.RUnlock()
	spec, ok := kinds[kind]
	return spec, ok
}

// KnownKind reports whether the kind is registered.
func KnownKind(kind ActionKind) bool {
	_, ok := LookupKind(kind)
	return ok
}
