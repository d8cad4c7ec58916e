package rules

import (
	"testing"

	"github.com/nstehr/prospector/model"
)

// newTestWorld builds a w×h world owned by player 0 with a shipyard at
// (0,0), the given stockpile and turn budget.
func newTestWorld(w, h, stock, turn, maxTurns int) *model.World {
	world := model.NewWorld(0, maxTurns, model.MapData{Width: w, Height: h})
	world.Turn = turn
	world.Players[0] = &model.Player{ID: 0, Halite: stock}
	world.AddStructure(&model.Structure{ID: -1, Owner: 0, Kind: model.Shipyard, Pos: model.Position{}})
	return world
}

func addUnit(w *model.World, id, owner, x, y, cargo int) *model.Unit {
	u := &model.Unit{ID: id, Owner: owner, Pos: model.Position{X: x, Y: y}, Halite: cargo}
	w.AddUnit(u)
	return u
}

func setHalite(w *model.World, x, y, amount int) {
	w.Grid.At(model.Position{X: x, Y: y}).Halite = amount
}

func newTestEngine(t testing.TB) *Engine {
	t.Helper()
	e, err := NewDefaultEngine(DefaultTuning())
	if err != nil {
		t.Fatalf("NewDefaultEngine: %v", err)
	}
	return e
}
