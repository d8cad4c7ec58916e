package rules

import "github.com/nstehr/prospector/model"

// UnitMemory is the only state a unit carries between turns.
type UnitMemory struct {
	Returning bool
	Goal      model.Position
	HasGoal   bool
}

// pruneMemory drops entries for units no longer in the roster, the same way
// squads shed dead members, and clears the returning flag of units that
// reached a drop point.
func pruneMemory(mem map[int]*UnitMemory, w *model.World) {
	alive := make(map[int]*model.Unit, len(w.Units))
	for _, u := range w.Units {
		if u.Owner == w.MyID {
			alive[u.ID] = u
		}
	}
	for id, m := range mem {
		u, ok := alive[id]
		if !ok {
			delete(mem, id)
			continue
		}
		if m.Returning && arrived(w, u, m) {
			m.Returning = false
			m.HasGoal = false
		}
	}
}

func arrived(w *model.World, u *model.Unit, m *UnitMemory) bool {
	if m.HasGoal && u.Pos == m.Goal {
		return true
	}
	s := w.Grid.At(u.Pos).Structure
	return s != nil && s.Owner == u.Owner
}
