package nav

import (
	"log/slog"

	"github.com/nstehr/prospector/model"
)

// NaiveNavigate greedily steps u toward dest and claims the cell it picks.
// Distance-reducing moves are tried first; if all of them are blocked every
// cardinal is tried in canonical order. Still when u is already at dest or
// boxed in.
func NaiveNavigate(g *model.Grid, u *model.Unit, dest model.Position) model.Direction {
	moves := g.UnsafeMoves(u.Pos, dest)
	if len(moves) == 0 {
		return model.Still
	}
	for _, d := range moves {
		if claim(g, u, d) {
			return d
		}
	}
	for _, d := range model.Cardinals {
		if claim(g, u, d) {
			return d
		}
	}
	return model.Still
}

func claim(g *model.Grid, u *model.Unit, d model.Direction) bool {
	target := u.Pos.DirectionalOffset(d)
	if g.IsOccupied(target) {
		return false
	}
	g.MarkUnsafe(target, u)
	return true
}

// Navigate resolves a move toward dest using A* for the route and the naive
// walker as the fallback. The chosen cell is claimed before returning so
// units planned later this turn route around it. A hostile unit standing on
// dest may be stepped onto; a friendly claim never is.
func Navigate(g *model.Grid, u *model.Unit, dest model.Position, weight float64) model.Direction {
	dest = g.Normalize(dest)
	if g.Normalize(u.Pos) == dest {
		return model.Still
	}

	step, ok := FindStep(u.Pos, dest, g, weight)
	if !ok {
		slog.Debug("no path, falling back to naive navigation", "unit", u.ID, "from", u.Pos, "to", dest)
		return NaiveNavigate(g, u, dest)
	}

	cell := g.At(step.Next)
	if cell.Occupant == nil || (step.Next == dest && cell.Occupant.Owner != u.Owner) {
		g.MarkUnsafe(step.Next, u)
		return step.Dir
	}
	return NaiveNavigate(g, u, dest)
}
