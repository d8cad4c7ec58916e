// Package nav plans single steps across the toroidal grid.
//
// FindStep runs A* from a unit to its target and hands back only the first
// move; occupancy changes every turn so nothing is cached. Navigate layers
// the same-turn claim protocol on top and degrades to NaiveNavigate whenever
// the search cannot produce a usable step.
package nav

import (
	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/nstehr/prospector/model"
)

// DefaultTraversalWeight scales a cell's resource into extra step cost.
const DefaultTraversalWeight = 0.1

// Step is the first move of a planned path.
type Step struct {
	Dir    model.Direction
	Next   model.Position // normalized cell the unit moves into
	Cost   float64        // estimated total cost of the full path
	Length int            // number of moves in the full path
}

// node is an arena entry. parent is an arena index, -1 at the root.
type node struct {
	pos    model.Position
	g, h   float64
	parent int
	dir    model.Direction // move taken from parent
	closed bool
}

// entry is what sits in the open set; g is the cost at push time so stale
// entries can be skipped after a cheaper route was found.
type entry struct {
	node int
	f, g float64
	seq  int
}

func byPriority(a, b interface{}) int {
	ea, eb := a.(entry), b.(entry)
	switch {
	case ea.f < eb.f:
		return -1
	case ea.f > eb.f:
		return 1
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	}
	return 0
}

// StepCost is the price of entering c.
func StepCost(c *model.Cell, weight float64) float64 {
	return 1 + weight*float64(c.Halite)
}

// FindStep searches from -> to and returns the first step of the cheapest
// path. ok is false when from and to coincide or when every route is blocked.
// Occupied cells are impassable except the destination itself.
func FindStep(from, to model.Position, g *model.Grid, weight float64) (Step, bool) {
	from, to = g.Normalize(from), g.Normalize(to)
	if from == to {
		return Step{Dir: model.Still, Next: from}, false
	}

	arena := []node{{pos: from, h: float64(g.Distance(from, to)), parent: -1, dir: model.Still}}
	index := make(map[int]int, 64) // grid index -> arena index
	index[g.Index(from)] = 0

	open := priorityqueue.NewWith(byPriority)
	seq := 0
	open.Enqueue(entry{node: 0, f: arena[0].h, seq: seq})

	for !open.Empty() {
		v, _ := open.Dequeue()
		e := v.(entry)
		cur := &arena[e.node]
		if cur.closed || e.g > cur.g {
			continue
		}
		cur.closed = true

		if cur.pos == to {
			return unwind(arena, e.node), true
		}

		curIdx, curPos, curG := e.node, cur.pos, cur.g
		for _, d := range model.Cardinals {
			next := g.Normalize(curPos.DirectionalOffset(d))
			cell := g.At(next)
			if cell.IsOccupied() && next != to {
				continue
			}
			ng := curG + StepCost(cell, weight)

			ci := g.Index(next)
			ni, seen := index[ci]
			if seen {
				n := &arena[ni]
				if n.closed || ng >= n.g {
					continue
				}
				n.g, n.parent, n.dir = ng, curIdx, d
			} else {
				ni = len(arena)
				arena = append(arena, node{pos: next, g: ng, h: float64(g.Distance(next, to)), parent: curIdx, dir: d})
				index[ci] = ni
			}
			seq++
			open.Enqueue(entry{node: ni, f: ng + arena[ni].h, g: ng, seq: seq})
		}
	}
	return Step{Dir: model.Still, Next: from}, false
}

// unwind follows parent links from the goal back to the child of the root.
func unwind(arena []node, goal int) Step {
	length := 0
	first := goal
	for i := goal; arena[i].parent >= 0; i = arena[i].parent {
		first = i
		length++
	}
	return Step{
		Dir:    arena[first].dir,
		Next:   arena[first].pos,
		Cost:   arena[goal].g,
		Length: length,
	}
}

// PathCost estimates what it costs to travel from -> to. ok is false when no
// path exists; travelling to the same cell is free.
func PathCost(g *model.Grid, from, to model.Position, weight float64) (float64, bool) {
	if g.Normalize(from) == g.Normalize(to) {
		return 0, true
	}
	s, ok := FindStep(from, to, g, weight)
	if !ok {
		return 0, false
	}
	return s.Cost, true
}
