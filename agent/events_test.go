package agent

import (
	"testing"

	"github.com/nstehr/prospector/model"
	"github.com/nstehr/prospector/rules"
)

// baseWorld returns a 16×16 world with four owned units and one enemy far away.
func baseWorld(turn int) *model.World {
	w := model.NewWorld(0, 400, model.MapData{Width: 16, Height: 16})
	w.Apply(model.TurnData{
		Turn:    turn,
		Players: []model.PlayerData{{ID: 0, Shipyard: model.Position{X: 0, Y: 0}}, {ID: 1, Shipyard: model.Position{X: 8, Y: 8}}},
		Units: []model.UnitData{
			{ID: 10, Owner: 0, X: 1, Y: 1},
			{ID: 11, Owner: 0, X: 2, Y: 1},
			{ID: 12, Owner: 0, X: 3, Y: 1},
			{ID: 13, Owner: 0, X: 4, Y: 1},
			{ID: 20, Owner: 1, X: 10, Y: 10},
		},
	})
	return w
}

func kinds(events []Event) map[EventKind]bool {
	out := make(map[EventKind]bool)
	for _, e := range events {
		out[e.Kind] = true
	}
	return out
}

func TestDetectEvents_NoEvents(t *testing.T) {
	tu := rules.DefaultTuning()
	w := baseWorld(10)
	_, prev := detectEvents(w, tu, nil)

	w2 := baseWorld(11)
	events, _ := detectEvents(w2, tu, &prev)
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d: %+v", len(events), events)
	}
}

func TestDetectEvents_NilPrev(t *testing.T) {
	events, snap := detectEvents(baseWorld(1), rules.DefaultTuning(), nil)
	if events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
	if snap.fleet != 4 {
		t.Errorf("snapshot fleet = %d, want 4", snap.fleet)
	}
}

func TestDetectEvents_UnitLostAndDevastated(t *testing.T) {
	tu := rules.DefaultTuning()
	_, prev := detectEvents(baseWorld(10), tu, nil)

	w := baseWorld(10)
	w.Apply(model.TurnData{
		Turn:  11,
		Units: []model.UnitData{{ID: 10, Owner: 0, X: 1, Y: 1}, {ID: 20, Owner: 1, X: 10, Y: 10}},
	})
	got := kinds(mustEvents(t, w, tu, &prev))
	if !got[EventUnitLost] {
		t.Error("missing unit_lost")
	}
	if !got[EventFleetDevastated] {
		t.Error("missing fleet_devastated")
	}
}

func TestDetectEvents_SingleLossNotDevastated(t *testing.T) {
	tu := rules.DefaultTuning()
	_, prev := detectEvents(baseWorld(10), tu, nil)

	w := baseWorld(10)
	w.Apply(model.TurnData{
		Turn: 11,
		Units: []model.UnitData{
			{ID: 10, Owner: 0, X: 1, Y: 1},
			{ID: 11, Owner: 0, X: 2, Y: 1},
			{ID: 12, Owner: 0, X: 3, Y: 1},
		},
	})
	got := kinds(mustEvents(t, w, tu, &prev))
	if !got[EventUnitLost] || got[EventFleetDevastated] {
		t.Errorf("events = %v", got)
	}
}

func TestDetectEvents_DepotBuilt(t *testing.T) {
	tu := rules.DefaultTuning()
	w := baseWorld(10)
	_, prev := detectEvents(w, tu, nil)

	w.Apply(model.TurnData{
		Turn:       11,
		Structures: []model.StructureData{{ID: 99, Owner: 0, X: 4, Y: 1}},
		Units:      []model.UnitData{{ID: 10, Owner: 0, X: 1, Y: 1}, {ID: 11, Owner: 0, X: 2, Y: 1}, {ID: 12, Owner: 0, X: 3, Y: 1}},
	})
	got := mustEvents(t, w, tu, &prev)
	found := false
	for _, e := range got {
		if e.Kind == EventDepotBuilt && e.Detail == "Depot 99 built" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing depot_built: %+v", got)
	}
}

func TestDetectEvents_FirstContactOnce(t *testing.T) {
	tu := rules.DefaultTuning()
	_, prev := detectEvents(baseWorld(10), tu, nil)

	near := func(turn int) *model.World {
		w := baseWorld(turn)
		w.Apply(model.TurnData{Turn: turn, Units: []model.UnitData{
			{ID: 10, Owner: 0, X: 1, Y: 1}, {ID: 11, Owner: 0, X: 2, Y: 1},
			{ID: 12, Owner: 0, X: 3, Y: 1}, {ID: 13, Owner: 0, X: 4, Y: 1},
			{ID: 20, Owner: 1, X: 4, Y: 2},
		}})
		return w
	}

	events, snap := detectEvents(near(11), tu, &prev)
	if !kinds(events)[EventFirstContact] {
		t.Fatalf("missing first_contact: %+v", events)
	}
	events, _ = detectEvents(near(12), tu, &snap)
	if kinds(events)[EventFirstContact] {
		t.Error("first_contact fired twice")
	}
}

func TestDetectEvents_FirstContactOnOpeningSnapshot(t *testing.T) {
	tu := rules.DefaultTuning()
	w := baseWorld(1)
	w.Apply(model.TurnData{Turn: 1, Units: []model.UnitData{
		{ID: 10, Owner: 0, X: 1, Y: 1},
		{ID: 20, Owner: 1, X: 2, Y: 2},
	}})

	events, snap := detectEvents(w, tu, nil)
	if len(events) != 1 || events[0].Kind != EventFirstContact {
		t.Fatalf("events = %+v, want only first_contact", events)
	}
	events, _ = detectEvents(w, tu, &snap)
	if kinds(events)[EventFirstContact] {
		t.Error("first_contact fired again on the next turn")
	}
}

func TestDetectEvents_Endgame(t *testing.T) {
	tu := rules.DefaultTuning()
	_, prev := detectEvents(baseWorld(400-tu.LowTurns), tu, nil)

	events, _ := detectEvents(baseWorld(401-tu.LowTurns), tu, &prev)
	if !kinds(events)[EventEndgame] {
		t.Errorf("missing endgame: %+v", events)
	}
}

func mustEvents(t *testing.T, w *model.World, tu rules.Tuning, prev *stateSnapshot) []Event {
	t.Helper()
	events, _ := detectEvents(w, tu, prev)
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	return events
}
