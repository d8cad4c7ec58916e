package rules

import (
	"math"

	"github.com/nstehr/prospector/model"
)

// far stands in for "no such thing on the map" in distance helpers so
// conditions like `ThreatDistance() <= 2` stay false without a nil check.
const far = math.MaxInt32

// TurnState is fleet-wide scratch state for one turn, reset by BeginTurn.
type TurnState struct {
	Turn                int
	Stock               int // stockpile left after this turn's commitments
	ConversionCommitted bool
}

// UnitEnv wraps the world and one unit and exposes helper methods callable
// from expr expressions.
type UnitEnv struct {
	World  *model.World
	Unit   *model.Unit
	Memory *UnitMemory
	State  *TurnState
	Tuning Tuning
}

func (e UnitEnv) Cargo() int    { return e.Unit.Halite }
func (e UnitEnv) Capacity() int { return e.Tuning.Capacity }

func (e UnitEnv) FleetSize() int { return e.World.FleetSize() }

func (e UnitEnv) Stock() int { return e.State.Stock }

func (e UnitEnv) TurnNumber() int     { return e.World.Turn }
func (e UnitEnv) TurnsRemaining() int { return e.World.TurnsRemaining() }

func (e UnitEnv) ConversionCommitted() bool { return e.State.ConversionCommitted }

func (e UnitEnv) Returning() bool { return e.Memory != nil && e.Memory.Returning }

func (e UnitEnv) CurrentCellResource() int {
	return e.World.Grid.At(e.Unit.Pos).Halite
}

// NearestEnemy returns the closest hostile unit, first in roster order on ties.
func (e UnitEnv) NearestEnemy() *model.Unit {
	var nearest *model.Unit
	best := far
	for _, u := range e.World.Units {
		if u.Owner == e.Unit.Owner {
			continue
		}
		if d := e.World.Grid.Distance(e.Unit.Pos, u.Pos); d < best {
			best = d
			nearest = u
		}
	}
	return nearest
}

func (e UnitEnv) ThreatDistance() int {
	enemy := e.NearestEnemy()
	if enemy == nil {
		return far
	}
	return e.World.Grid.Distance(e.Unit.Pos, enemy.Pos)
}

func (e UnitEnv) ThreatCargo() int {
	enemy := e.NearestEnemy()
	if enemy == nil {
		return 0
	}
	return enemy.Halite
}

// NearestStructure scans owned structures in row-major order and keeps the
// first one at minimum distance. nil if the player owns nothing.
func (e UnitEnv) NearestStructure() *model.Structure {
	var nearest *model.Structure
	best := far
	for _, s := range e.World.OwnedStructures(e.Unit.Owner) {
		if d := e.World.Grid.Distance(e.Unit.Pos, s.Pos); d < best {
			best = d
			nearest = s
		}
	}
	return nearest
}

func (e UnitEnv) NearestStructureDistance() int {
	s := e.NearestStructure()
	if s == nil {
		return far
	}
	return e.World.Grid.Distance(e.Unit.Pos, s.Pos)
}

// Interest scores a cell for collection: resource richness times proximity,
// each normalized to [0,1].
func Interest(halite, distance int, t Tuning) float64 {
	richness := clamp(invLerp(0, float64(t.InterestSaturation), float64(halite)), 0, 1)
	proximity := clamp(1-invLerp(0, float64(t.InterestMaxDistance), float64(distance)), 0, 1)
	return richness * proximity
}

// bestCollectionTarget returns the cell with strictly greatest interest.
// Cells are scanned column by column (x outer, y inner) and the first one
// found wins a tie. When nothing within reach scores above zero it falls
// back to the richest cell on the map, under the same scan order.
func bestCollectionTarget(e UnitEnv) (model.Position, bool) {
	g := e.World.Grid
	var (
		best      model.Position
		bestScore float64
		found     bool

		richest     model.Position
		richestHal  int
		richestSeen bool
	)
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			c := g.At(model.Position{X: x, Y: y})
			score := Interest(c.Halite, g.Distance(c.Pos, e.Unit.Pos), e.Tuning)
			if score > bestScore {
				bestScore = score
				best = c.Pos
				found = true
			}
			if c.Halite > richestHal {
				richestHal = c.Halite
				richest = c.Pos
				richestSeen = true
			}
		}
	}
	if found {
		return best, true
	}
	return richest, richestSeen
}

// CurrentCellRich reports whether the unit's cell holds more than the
// richness threshold. A cell sitting exactly on the threshold is not rich.
func (e UnitEnv) CurrentCellRich() bool {
	return e.CurrentCellResource() > e.Tuning.RichCellThreshold
}
