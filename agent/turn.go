package agent

import (
	"context"
	"log/slog"

	"github.com/nstehr/prospector/ipc"
	"github.com/nstehr/prospector/model"
	"github.com/nstehr/prospector/nav"
	"github.com/nstehr/prospector/rules"
)

// UnitPlan records what one unit decided and the move it was given.
type UnitPlan struct {
	UnitID    int              `json:"unitId"`
	Intent    rules.IntentKind `json:"intent"`
	Rule      string           `json:"rule,omitempty"`
	Target    model.Position   `json:"target"`
	Direction string           `json:"direction,omitempty"`
}

// TurnResult is everything one turn produced.
type TurnResult struct {
	Session  string        `json:"session,omitempty"`
	Turn     int           `json:"turn"`
	Stock    int           `json:"stock"` // working stock after this turn's commitments
	Commands []ipc.Command `json:"commands"`
	Plans    []UnitPlan    `json:"plans"`
	Spawned  bool          `json:"spawned"`
	Events   []Event       `json:"events,omitempty"`
	Degraded bool          `json:"degraded,omitempty"` // deadline hit before every unit was planned
}

// Batch is the wire reply for the host.
func (r TurnResult) Batch() ipc.CommandBatch {
	return ipc.CommandBatch{Turn: r.Turn, Commands: r.Commands}
}

// PlayTurn plans every owned unit in roster order and emits exactly one
// command per unit. Each resolved move claims its cell before the next unit
// is planned. Once ctx expires the remaining units hold still.
func PlayTurn(ctx context.Context, w *model.World, e *rules.Engine) TurnResult {
	e.BeginTurn(w)
	tuning := e.Tuning()

	res := TurnResult{Turn: w.Turn}
	mine := w.MyUnits()
	for i, u := range mine {
		if ctx.Err() != nil {
			slog.Warn("turn deadline reached, holding remaining units", "turn", w.Turn, "remaining", len(mine)-i)
			for _, rest := range mine[i:] {
				res.add(ipc.MoveCommand(rest.ID, model.Still), UnitPlan{UnitID: rest.ID, Intent: rules.IntentStay, Target: rest.Pos})
			}
			res.Degraded = true
			break
		}

		intent := e.Decide(w, u)
		cmd := resolve(w, u, intent, tuning.TraversalWeight)
		res.add(cmd, UnitPlan{UnitID: u.ID, Intent: intent.Kind, Rule: intent.Rule, Target: intent.Target, Direction: cmd.Direction})
	}

	res.Stock = e.Turn().Stock
	if shouldSpawn(w, res.Stock, tuning) {
		res.Commands = append(res.Commands, ipc.SpawnCommand())
		res.Spawned = true
		res.Stock -= tuning.ShipCost
	}
	return res
}

func (r *TurnResult) add(cmd ipc.Command, plan UnitPlan) {
	r.Commands = append(r.Commands, cmd)
	r.Plans = append(r.Plans, plan)
}

// resolve turns an intent into a concrete command and claims the cell the
// unit will end the turn on.
func resolve(w *model.World, u *model.Unit, intent rules.Intent, weight float64) ipc.Command {
	switch {
	case intent.Kind == rules.IntentConvert:
		return ipc.ConvertCommand(u.ID)
	case intent.Moves():
		return ipc.MoveCommand(u.ID, nav.Navigate(w.Grid, u, intent.Target, weight))
	default:
		w.Grid.MarkUnsafe(u.Pos, u)
		return ipc.MoveCommand(u.ID, model.Still)
	}
}
