package model

// Direction is a single-step move on the grid. Still is the no-op move.
type Direction byte

const (
	North Direction = iota
	East
	South
	West
	Still
)

// Cardinals is the canonical order used whenever every direction is tried.
var Cardinals = [4]Direction{North, East, South, West}

// String returns the wire letter the game host expects.
func (d Direction) String() string {
	switch d {
	case North:
		return "n"
	case East:
		return "e"
	case South:
		return "s"
	case West:
		return "w"
	default:
		return "o"
	}
}

// Invert returns the opposite direction. Still inverts to itself.
func (d Direction) Invert() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return Still
	}
}

// ParseDirection maps a wire letter back to a Direction. Unknown letters are Still.
func ParseDirection(s string) Direction {
	switch s {
	case "n":
		return North
	case "e":
		return East
	case "s":
		return South
	case "w":
		return West
	default:
		return Still
	}
}

// Position is an unnormalized grid coordinate. North decreases Y.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DirectionalOffset returns the position one step in d. The result is not
// normalized; pass it through Grid.Normalize before indexing.
func (p Position) DirectionalOffset(d Direction) Position {
	switch d {
	case North:
		return Position{X: p.X, Y: p.Y - 1}
	case East:
		return Position{X: p.X + 1, Y: p.Y}
	case South:
		return Position{X: p.X, Y: p.Y + 1}
	case West:
		return Position{X: p.X - 1, Y: p.Y}
	default:
		return p
	}
}

// Cell is one square of the map. Occupant is only valid for the current turn.
type Cell struct {
	Pos       Position
	Halite    int
	Occupant  *Unit
	Structure *Structure
}

// IsOccupied reports whether any unit holds or has claimed the cell this turn.
func (c *Cell) IsOccupied() bool { return c.Occupant != nil }

// HasStructure reports whether a base or depot sits on the cell.
func (c *Cell) HasStructure() bool { return c.Structure != nil }

// Grid is a closed torus: every coordinate maps to a cell after normalization.
type Grid struct {
	Width  int
	Height int
	Cells  []Cell // row-major: Cells[y*Width + x]
}

// NewGrid allocates a width x height grid. halite is row-major and may be
// shorter than the grid; missing entries are zero and negative ones clamp to zero.
func NewGrid(width, height int, halite []int) *Grid {
	g := &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			g.Cells[i].Pos = Position{X: x, Y: y}
			if i < len(halite) {
				g.Cells[i].Halite = max(halite[i], 0)
			}
		}
	}
	return g
}

// Normalize wraps p into [0,Width) x [0,Height), including negative inputs.
func (g *Grid) Normalize(p Position) Position {
	return Position{
		X: ((p.X % g.Width) + g.Width) % g.Width,
		Y: ((p.Y % g.Height) + g.Height) % g.Height,
	}
}

// Index returns the row-major index of the normalized position.
func (g *Grid) Index(p Position) int {
	n := g.Normalize(p)
	return n.Y*g.Width + n.X
}

// At returns the cell at p after normalization.
func (g *Grid) At(p Position) *Cell {
	return &g.Cells[g.Index(p)]
}

// Distance is the toroidal Manhattan distance between a and b.
func (g *Grid) Distance(a, b Position) int {
	na, nb := g.Normalize(a), g.Normalize(b)
	dx := abs(na.X - nb.X)
	dy := abs(na.Y - nb.Y)
	return min(dx, g.Width-dx) + min(dy, g.Height-dy)
}

// Offset returns the shortest signed displacement from src to dst on each axis.
// When both ways around are equally long the direct displacement is returned.
func (g *Grid) Offset(src, dst Position) (int, int) {
	ns, nd := g.Normalize(src), g.Normalize(dst)
	return wrapDelta(nd.X-ns.X, g.Width), wrapDelta(nd.Y-ns.Y, g.Height)
}

func wrapDelta(d, size int) int {
	switch {
	case d > size/2:
		return d - size
	case d < -size/2:
		return d + size
	}
	return d
}

// IsOccupied reports whether a unit holds or has claimed p this turn.
func (g *Grid) IsOccupied(p Position) bool {
	return g.At(p).IsOccupied()
}

// MarkUnsafe claims p for u for the rest of the turn.
func (g *Grid) MarkUnsafe(p Position, u *Unit) {
	g.At(p).Occupant = u
}

// ClearOccupancy drops every occupant so the roster can be re-placed.
func (g *Grid) ClearOccupancy() {
	for i := range g.Cells {
		g.Cells[i].Occupant = nil
	}
}

// UnsafeMoves returns at most one horizontal and one vertical direction that
// bring src closer to dst, ignoring occupancy. An exact tie between going
// around and going direct resolves to East or South.
func (g *Grid) UnsafeMoves(src, dst Position) []Direction {
	ns, nd := g.Normalize(src), g.Normalize(dst)
	dx := abs(ns.X - nd.X)
	dy := abs(ns.Y - nd.Y)
	wrappedDX := g.Width - dx
	wrappedDY := g.Height - dy

	var moves []Direction
	switch {
	case ns.X < nd.X:
		moves = append(moves, pick(dx > wrappedDX, West, East))
	case ns.X > nd.X:
		moves = append(moves, pick(dx < wrappedDX, West, East))
	}
	switch {
	case ns.Y < nd.Y:
		moves = append(moves, pick(dy > wrappedDY, North, South))
	case ns.Y > nd.Y:
		moves = append(moves, pick(dy < wrappedDY, North, South))
	}
	return moves
}

// TotalHalite sums the resource left on the map.
func (g *Grid) TotalHalite() int {
	n := 0
	for i := range g.Cells {
		n += g.Cells[i].Halite
	}
	return n
}

func pick(cond bool, a, b Direction) Direction {
	if cond {
		return a
	}
	return b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
