package model

import "sort"

// StructureKind distinguishes the home base from player-built depots.
type StructureKind string

const (
	Shipyard StructureKind = "shipyard"
	Dropoff  StructureKind = "dropoff"
)

// Structure is a fixed drop point. Never mutated once placed.
type Structure struct {
	ID    int
	Owner int
	Kind  StructureKind
	Pos   Position
}

// Unit is one ship as reported by the snapshot.
type Unit struct {
	ID     int
	Owner  int
	Pos    Position
	Halite int
}

// Player holds a player's stockpile and home base.
type Player struct {
	ID       int
	Halite   int
	Shipyard Position
}

// Constants are host-supplied game parameters sent with the hello. Zero
// fields mean "use the configured default".
type Constants struct {
	ShipCost    int `json:"shipCost,omitempty"`
	DropoffCost int `json:"dropoffCost,omitempty"`
	MaxHalite   int `json:"maxHalite,omitempty"`
	MaxTurns    int `json:"maxTurns,omitempty"`
}

// MapData is the initial full map sent with the hello handshake.
type MapData struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Halite []int `json:"halite"` // row-major
}

type PlayerData struct {
	ID       int      `json:"id"`
	Halite   int      `json:"halite"`
	Shipyard Position `json:"shipyard"`
}

type UnitData struct {
	ID     int `json:"id"`
	Owner  int `json:"owner"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Halite int `json:"halite"`
}

type StructureData struct {
	ID    int `json:"id"`
	Owner int `json:"owner"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// CellUpdate is a per-cell resource delta: the new absolute amount at (X,Y).
type CellUpdate struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Halite int `json:"halite"`
}

// TurnData is the per-turn snapshot. Units is the complete roster; a unit
// missing from it is gone. Structures carries only newly built depots.
type TurnData struct {
	Turn        int             `json:"turn"`
	Players     []PlayerData    `json:"players"`
	Units       []UnitData      `json:"units"`
	Structures  []StructureData `json:"structures"`
	CellUpdates []CellUpdate    `json:"cellUpdates"`
}

// World is the agent's view of the match, refreshed once per turn.
type World struct {
	Grid       *Grid
	Turn       int
	MaxTurns   int
	MyID       int
	Players    map[int]*Player
	Units      []*Unit // roster order, as received
	Structures []*Structure

	byID map[int]*Unit
}

// NewWorld bootstraps a world from the hello map. Shipyards are placed once
// players are known, on the first Apply.
func NewWorld(myID, maxTurns int, m MapData) *World {
	return &World{
		Grid:     NewGrid(m.Width, m.Height, m.Halite),
		MaxTurns: maxTurns,
		MyID:     myID,
		Players:  make(map[int]*Player),
		byID:     make(map[int]*Unit),
	}
}

// Apply refreshes the world from a turn snapshot: resource deltas, new
// structures, the full roster, and a rebuilt occupancy map.
func (w *World) Apply(td TurnData) {
	w.Turn = td.Turn

	for _, pd := range td.Players {
		p, ok := w.Players[pd.ID]
		if !ok {
			p = &Player{ID: pd.ID, Shipyard: w.Grid.Normalize(pd.Shipyard)}
			w.Players[pd.ID] = p
			w.addStructure(&Structure{ID: -1 - pd.ID, Owner: pd.ID, Kind: Shipyard, Pos: p.Shipyard})
		}
		p.Halite = pd.Halite
	}

	for _, cu := range td.CellUpdates {
		w.Grid.At(Position{X: cu.X, Y: cu.Y}).Halite = max(cu.Halite, 0)
	}

	for _, sd := range td.Structures {
		w.addStructure(&Structure{ID: sd.ID, Owner: sd.Owner, Kind: Dropoff, Pos: w.Grid.Normalize(Position{X: sd.X, Y: sd.Y})})
	}

	w.Units = w.Units[:0]
	clear(w.byID)
	w.Grid.ClearOccupancy()
	for _, ud := range td.Units {
		u := &Unit{ID: ud.ID, Owner: ud.Owner, Pos: w.Grid.Normalize(Position{X: ud.X, Y: ud.Y}), Halite: ud.Halite}
		w.Units = append(w.Units, u)
		w.byID[u.ID] = u
		w.Grid.MarkUnsafe(u.Pos, u)
	}
}

// AddUnit places u in the roster and on the grid. Used to build synthetic worlds.
func (w *World) AddUnit(u *Unit) {
	u.Pos = w.Grid.Normalize(u.Pos)
	w.Units = append(w.Units, u)
	if w.byID == nil {
		w.byID = make(map[int]*Unit)
	}
	w.byID[u.ID] = u
	w.Grid.MarkUnsafe(u.Pos, u)
}

// AddStructure places s on the grid. Structures on an already built cell are ignored.
func (w *World) AddStructure(s *Structure) {
	s.Pos = w.Grid.Normalize(s.Pos)
	w.addStructure(s)
}

func (w *World) addStructure(s *Structure) {
	c := w.Grid.At(s.Pos)
	if c.Structure != nil {
		return
	}
	c.Structure = s
	w.Structures = append(w.Structures, s)
}

// Unit looks up a unit by id for the current turn.
func (w *World) Unit(id int) (*Unit, bool) {
	u, ok := w.byID[id]
	return u, ok
}

// Me returns the controlling player, creating an empty record if the host
// has not reported one yet.
func (w *World) Me() *Player {
	p, ok := w.Players[w.MyID]
	if !ok {
		p = &Player{ID: w.MyID}
		w.Players[w.MyID] = p
	}
	return p
}

// MyUnits returns owned units in roster order.
func (w *World) MyUnits() []*Unit {
	var out []*Unit
	for _, u := range w.Units {
		if u.Owner == w.MyID {
			out = append(out, u)
		}
	}
	return out
}

// EnemyUnits returns every unit not owned by the controlling player.
func (w *World) EnemyUnits() []*Unit {
	var out []*Unit
	for _, u := range w.Units {
		if u.Owner != w.MyID {
			out = append(out, u)
		}
	}
	return out
}

// FleetSize counts owned units.
func (w *World) FleetSize() int {
	n := 0
	for _, u := range w.Units {
		if u.Owner == w.MyID {
			n++
		}
	}
	return n
}

// TurnsRemaining is never negative.
func (w *World) TurnsRemaining() int {
	return max(w.MaxTurns-w.Turn, 0)
}

// OwnedStructures returns the owner's drop points in row-major scan order,
// which is the tie-break order for nearest-structure searches.
func (w *World) OwnedStructures(owner int) []*Structure {
	var out []*Structure
	for _, s := range w.Structures {
		if s.Owner == owner {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return w.Grid.Index(out[i].Pos) < w.Grid.Index(out[j].Pos)
	})
	return out
}
