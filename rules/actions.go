package rules

import (
	"log/slog"

	"github.com/nstehr/prospector/model"
)

// DecideFlee moves directly away from the nearest enemy by mirroring the
// toroidal displacement toward it.
func DecideFlee(env UnitEnv) (Intent, bool) {
	enemy := env.NearestEnemy()
	if enemy == nil {
		return Intent{}, false
	}
	dx, dy := env.World.Grid.Offset(env.Unit.Pos, enemy.Pos)
	target := env.World.Grid.Normalize(model.Position{X: env.Unit.Pos.X - dx, Y: env.Unit.Pos.Y - dy})
	slog.Debug("fleeing", "unit", env.Unit.ID, "enemy", enemy.ID, "target", target)
	return Intent{Kind: IntentFlee, Target: target, Threat: enemy}, true
}

// DecideAttack heads for the nearest enemy's cell.
func DecideAttack(env UnitEnv) (Intent, bool) {
	enemy := env.NearestEnemy()
	if enemy == nil {
		return Intent{}, false
	}
	slog.Debug("attacking", "unit", env.Unit.ID, "enemy", enemy.ID, "cargo", enemy.Halite)
	return Intent{Kind: IntentAttack, Target: enemy.Pos, Threat: enemy}, true
}

// DecideConvert commits the fleet-wide conversion guard and debits the
// working stock by what the conversion costs after the unit's cargo and the
// cell's resource are credited.
func DecideConvert(env UnitEnv) (Intent, bool) {
	if env.State.ConversionCommitted {
		return Intent{}, false
	}
	cost := max(env.Tuning.DepotCost-env.Unit.Halite-env.CurrentCellResource(), 0)
	if env.State.Stock < cost {
		return Intent{}, false
	}
	env.State.ConversionCommitted = true
	env.State.Stock -= cost
	slog.Info("converting to depot", "unit", env.Unit.ID, "pos", env.Unit.Pos, "cost", cost)
	return Intent{Kind: IntentConvert, Target: env.Unit.Pos}, true
}

// DecideReturn routes to the nearest owned structure and latches the
// returning flag. With no structure at all the unit stays put.
func DecideReturn(env UnitEnv) (Intent, bool) {
	s := env.NearestStructure()
	if s == nil {
		slog.Warn("no drop point to return to", "unit", env.Unit.ID)
		return Intent{Kind: IntentStay, Target: env.Unit.Pos}, true
	}
	if env.Memory != nil {
		env.Memory.Returning = true
		env.Memory.Goal = s.Pos
		env.Memory.HasGoal = true
	}
	return Intent{Kind: IntentReturn, Target: s.Pos}, true
}

func DecideExtract(env UnitEnv) (Intent, bool) {
	return Intent{Kind: IntentExtract, Target: env.Unit.Pos}, true
}

// DecideCollect heads for the highest-interest cell on the map.
func DecideCollect(env UnitEnv) (Intent, bool) {
	target, ok := bestCollectionTarget(env)
	if !ok {
		return Intent{}, false
	}
	if env.Memory != nil {
		env.Memory.Goal = target
		env.Memory.HasGoal = true
	}
	return Intent{Kind: IntentCollect, Target: target}, true
}
