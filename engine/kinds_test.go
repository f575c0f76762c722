package engine

import (
	"strings"
	"testing"
)

func TestBuiltinKindDefaults(t *testing.T) {
	cases := []struct {
		kind     ActionKind
		priority int
	}{
		{KindFortune, 100},
		{KindGuard, 80},
		{KindMedium, 70},
		{KindAttack, 60},
	}
	for _, tc := range cases {
		spec, ok := LookupKind(tc.kind)
		if !ok {
			t.Fatalf("kind %s not registered", tc.kind)
		}
		if spec.Priority != tc.priority {
			t.Errorf("kind %s priority = %d, want %d", tc.kind, spec.Priority, tc.priority)
		}
		if spec.Resolve == nil {
			t.Errorf("kind %s has no resolver", tc.kind)
		}
		if spec.Phase != "night" {
			t.Errorf("kind %s phase = %q, want night", tc.kind, spec.Phase)
		}
	}
}

func TestRegisterKindNamespace(t *testing.T) {
	noop := func(a *Action, g *Game) (Result, error) { return Result{Success: true}, nil }

	err := RegisterKind(KindSpec{Name: "poison", Resolve: noop})
	if err == nil || !strings.Contains(err.Error(), CustomKindPrefix) {
		t.Errorf("out-of-namespace registration err = %v, want custom_ complaint", err)
	}

	if err := RegisterKind(KindSpec{Name: "custom_noresolver"}); err == nil {
		t.Error("registration without resolver must fail")
	}

	if err := RegisterKind(KindSpec{Name: "custom_poison", DisplayName: "Poison", Priority: 65, Resolve: noop}); err != nil {
		t.Fatalf("RegisterKind: %v", err)
	}
	if err := RegisterKind(KindSpec{Name: "custom_poison", Resolve: noop}); err == nil {
		t.Error("duplicate registration must fail")
	}
	if !KnownKind("custom_poison") {
		t.Error("registered custom kind not known")
	}
	if spec, _ := LookupKind("custom_poison"); spec.Phase != "night" {
		t.Errorf("custom kind phase = %q, want defaulted night", spec.Phase)
	}
}

func TestCustomKindFlowsThroughManager(t *testing.T) {
	kind := ActionKind("custom_ritual")
	if err := RegisterKind(KindSpec{
		Name:        kind,
		DisplayName: "Ritual",
		Priority:    55,
		Resolve: func(a *Action, g *Game) (Result, error) {
			return Result{Success: true, Target: a.Target}, nil
		},
	}); err != nil {
		t.Fatalf("RegisterKind: %v", err)
	}

	f := newFixture(Rules{}, 1, 2)
	a := f.mustRegister(t, ActionData{Kind: kind, Actor: 1, Target: 2, Night: 1})
	if a.Priority != 55 {
		t.Errorf("priority = %d, want registered default 55", a.Priority)
	}
	if count := f.mgr.ExecuteActions("night", 1); count != 1 {
		t.Fatalf("executedCount = %d, want 1", count)
	}
	if res := a.Result(); res == nil || !res.Success || res.Target != 2 {
		t.Errorf("result = %+v, want custom resolver output", res)
	}
}

func TestValidateKindRegistry(t *testing.T) {
	noop := func(a *Action, g *Game) (Result, error) { return Result{}, nil }
	good := map[ActionKind]KindSpec{"a": {Name: "a", Resolve: noop}}

	if err := validateKindRegistry(good, []ActionKind{"a"}); err != nil {
		t.Errorf("valid registry rejected: %v", err)
	}
	if err := validateKindRegistry(good, []ActionKind{"a", "b"}); err == nil {
		t.Error("missing resolver entry must fail validation")
	}
	if err := validateKindRegistry(good, []ActionKind{"b"}); err == nil {
		t.Error("orphan resolver entry must fail validation")
	}
	if err := validateKindRegistry(map[ActionKind]KindSpec{"a": {Name: "a"}}, []ActionKind{"a"}); err == nil {
		t.Error("nil resolver must fail validation")
	}
	if err := validateKindRegistry(good, []ActionKind{"a", "a"}); err == nil {
		t.Error("duplicate supported kind must fail validation")
	}
}
