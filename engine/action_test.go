package engine

import (
	"errors"
	"testing"
)

func TestNewActionDefaults(t *testing.T) {
	a, err := NewAction(ActionData{Kind: KindFortune, Actor: 1, Target: 2})
	if err != nil {
		t.Fatalf("NewAction: %v", err)
	}
	if a.ID == "" {
		t.Error("expected a generated id")
	}
	if a.Night != 1 {
		t.Errorf("Night = %d, want default 1", a.Night)
	}
	if a.Priority != 100 {
		t.Errorf("Priority = %d, want fortune default 100", a.Priority)
	}
	if !a.IsExecutable() {
		t.Error("new action should be executable")
	}
}

func TestNewActionPriorityOverride(t *testing.T) {
	a, err := NewAction(ActionData{Kind: KindGuard, Actor: 1, Target: 2, Priority: 95, Night: 3})
	if err != nil {
		t.Fatalf("NewAction: %v", err)
	}
	if a.Priority != 95 {
		t.Errorf("Priority = %d, want override 95", a.Priority)
	}
	if a.Night != 3 {
		t.Errorf("Night = %d, want 3", a.Night)
	}
}

func TestNewActionContract(t *testing.T) {
	cases := []struct {
		name string
		data ActionData
	}{
		{"missing kind", ActionData{Actor: 1, Target: 2}},
		{"unknown kind", ActionData{Kind: "teleport", Actor: 1, Target: 2}},
		{"missing actor", ActionData{Kind: KindAttack, Target: 2}},
		{"missing target", ActionData{Kind: KindAttack, Actor: 1}},
		{"negative actor", ActionData{Kind: KindAttack, Actor: -4, Target: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAction(tc.data)
			var contract *ContractError
			if !errors.As(err, &contract) {
				t.Fatalf("NewAction(%+v) err = %v, want *ContractError", tc.data, err)
			}
		})
	}
}

func TestExecuteWithoutGame(t *testing.T) {
	a, _ := NewAction(ActionData{Kind: KindGuard, Actor: 1, Target: 2})
	if _, err := a.Execute(nil); !errors.Is(err, ErrNoGame) {
		t.Fatalf("Execute err = %v, want ErrNoGame", err)
	}
}

func TestExecuteWithOptionGame(t *testing.T) {
	f := newFixture(Rules{}, 1, 2)
	a, _ := NewAction(ActionData{Kind: KindGuard, Actor: 1, Target: 2})
	res, err := a.Execute(&ExecuteOptions{Game: f.game})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Errorf("result = %+v, want success", res)
	}
}

func TestExecuteTerminalStates(t *testing.T) {
	f := newFixture(Rules{}, 1, 2)
	a, _ := NewAction(ActionData{Kind: KindGuard, Actor: 1, Target: 2})
	a.AttachGame(f.game)

	if _, err := a.Execute(nil); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if a.IsExecutable() {
		t.Error("executed action reported executable")
	}
	if _, err := a.Execute(nil); !errors.Is(err, ErrAlreadyExecuted) {
		t.Errorf("second Execute err = %v, want ErrAlreadyExecuted", err)
	}
	if _, err := a.Cancel(); !errors.Is(err, ErrAlreadyExecuted) {
		t.Errorf("Cancel after execute err = %v, want ErrAlreadyExecuted", err)
	}
}

func TestCancelTerminalStates(t *testing.T) {
	f := newFixture(Rules{}, 1, 2)
	a, _ := NewAction(ActionData{Kind: KindAttack, Actor: 1, Target: 2})
	a.AttachGame(f.game)

	ack, err := a.Cancel()
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !ack.Success || !ack.Cancelled {
		t.Errorf("ack = %+v, want success and cancelled", ack)
	}
	if a.IsExecutable() {
		t.Error("cancelled action reported executable")
	}
	if _, err := a.Cancel(); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("second Cancel err = %v, want ErrAlreadyCancelled", err)
	}
	if _, err := a.Execute(nil); !errors.Is(err, ErrCancelled) {
		t.Errorf("Execute after Cancel err = %v, want ErrCancelled", err)
	}
	if got := len(f.bus.named(EventActionCancelled)); got != 1 {
		t.Errorf("cancellation events = %d, want 1", got)
	}
}

func TestExecuteCustomResult(t *testing.T) {
	f := newFixture(Rules{}, 1, 2)
	a, _ := NewAction(ActionData{Kind: KindAttack, Actor: 1, Target: 2})
	a.AttachGame(f.game)

	want := Result{Success: true, Killed: false, Reason: ReasonGuarded, Target: 2}
	res, err := a.Execute(&ExecuteOptions{CustomResult: &want})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if !a.Executed() {
		t.Error("custom-result execution must mark the action executed")
	}
	// The override skips the resolver: nobody died.
	if p, _ := f.players.Player(2); !p.Alive {
		t.Error("custom result must not run the attack effect")
	}
}

func TestExecuteEmitsKindQualifiedEvent(t *testing.T) {
	f := newFixture(Rules{}, 1, 2)
	a, _ := NewAction(ActionData{Kind: KindGuard, Actor: 1, Target: 2})
	a.AttachGame(f.game)
	if _, err := a.Execute(nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := len(f.bus.named(EventActionExecuted)); got != 1 {
		t.Errorf("generic execution events = %d, want 1", got)
	}
	if got := len(f.bus.named(EventActionExecuted + ".guard")); got != 1 {
		t.Errorf("kind-qualified execution events = %d, want 1", got)
	}
}

func TestKindInfo(t *testing.T) {
	a, _ := NewAction(ActionData{Kind: KindAttack, Actor: 1, Target: 2, Priority: 10})
	info := a.KindInfo()
	if info.Name != KindAttack || info.Priority != 60 || info.Phase != "night" {
		t.Errorf("KindInfo = %+v, want static attack metadata", info)
	}
	if info.DisplayName == "" {
		t.Error("KindInfo missing display name")
	}
}
