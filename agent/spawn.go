package agent

import (
	"log/slog"

	"github.com/nstehr/prospector/model"
	"github.com/nstehr/prospector/rules"
)

// shouldSpawn is the fleet-level economy policy: build a unit while the
// match is young, the stockpile covers both the ship and the reserve, the
// shipyard cell is free after this turn's claims, and the fleet is under cap.
func shouldSpawn(w *model.World, stock int, t rules.Tuning) bool {
	me := w.Me()
	switch {
	case w.Turn > t.SpawnLastTurn:
		return false
	case stock < t.ShipCost || stock < t.SpawnReserve:
		return false
	case w.FleetSize() >= t.MaxFleet:
		return false
	case !hasShipyard(w, me):
		return false
	case w.Grid.IsOccupied(me.Shipyard):
		slog.Debug("shipyard blocked, skipping spawn", "turn", w.Turn)
		return false
	}
	return true
}

func hasShipyard(w *model.World, p *model.Player) bool {
	s := w.Grid.At(p.Shipyard).Structure
	return s != nil && s.Owner == p.ID && s.Kind == model.Shipyard
}
