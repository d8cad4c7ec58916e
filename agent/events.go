package agent

import (
	"fmt"

	"github.com/nstehr/prospector/model"
	"github.com/nstehr/prospector/rules"
)

// EventKind identifies a notable change between two consecutive turns.
type EventKind string

const (
	EventUnitLost        EventKind = "unit_lost"
	EventFleetDevastated EventKind = "fleet_devastated"
	EventDepotBuilt      EventKind = "depot_built"
	EventFirstContact    EventKind = "first_contact"
	EventEndgame         EventKind = "endgame"
)

// Event is a significant match event detected by diffing consecutive
// snapshots. Events are logged and shipped with the turn result so replays
// and observers can show why the fleet changed behavior.
type Event struct {
	Kind   EventKind `json:"kind"`
	Turn   int       `json:"turn"`
	Detail string    `json:"detail"`
}

// stateSnapshot captures the diffable fields from one turn.
type stateSnapshot struct {
	unitIDs     map[int]bool // owned units
	depotIDs    map[int]bool // owned dropoffs
	fleet       int
	contact     bool // an enemy has been within flee range of an owned unit
	endgame     bool
	contactSeen bool // carried forward so first_contact fires once
}

func takeSnapshot(w *model.World, t rules.Tuning) stateSnapshot {
	snap := stateSnapshot{
		unitIDs:  make(map[int]bool),
		depotIDs: make(map[int]bool),
		endgame:  w.TurnsRemaining() < t.LowTurns,
	}
	for _, u := range w.MyUnits() {
		snap.unitIDs[u.ID] = true
		snap.fleet++
	}
	for _, s := range w.OwnedStructures(w.MyID) {
		if s.Kind == model.Dropoff {
			snap.depotIDs[s.ID] = true
		}
	}
	snap.contact = enemyWithin(w, t.FleeDistance)
	return snap
}

func enemyWithin(w *model.World, radius int) bool {
	mine := w.MyUnits()
	for _, e := range w.EnemyUnits() {
		for _, u := range mine {
			if w.Grid.Distance(u.Pos, e.Pos) <= radius {
				return true
			}
		}
	}
	return false
}

// detectEvents compares the current world against the previous snapshot and
// returns any triggered events plus the snapshot to keep for next turn.
// With a nil prev (first turn) only first_contact can fire.
func detectEvents(w *model.World, t rules.Tuning, prev *stateSnapshot) ([]Event, stateSnapshot) {
	cur := takeSnapshot(w, t)
	var events []Event

	// first_contact: an enemy came within flee range for the first time,
	// including on the opening snapshot
	seen := prev != nil && prev.contactSeen
	if !seen && cur.contact {
		events = append(events, Event{
			Kind:   EventFirstContact,
			Turn:   w.Turn,
			Detail: "Enemy within flee range",
		})
	}
	cur.contactSeen = seen || cur.contact

	if prev == nil {
		return events, cur
	}

	// 1. unit_lost: owned units present last turn are gone
	lost := countMissing(prev.unitIDs, cur.unitIDs)
	if lost > 0 {
		events = append(events, Event{
			Kind:   EventUnitLost,
			Turn:   w.Turn,
			Detail: fmt.Sprintf("Lost %d unit(s)", lost),
		})
	}

	// 2. fleet_devastated: more than half the fleet gone in one turn (floor of 4)
	if prev.fleet >= 4 && lost > 0 && float64(lost)/float64(prev.fleet) > 0.5 {
		events = append(events, Event{
			Kind:   EventFleetDevastated,
			Turn:   w.Turn,
			Detail: fmt.Sprintf("Fleet devastated: %d→%d units", prev.fleet, cur.fleet),
		})
	}

	// 3. depot_built: a conversion landed
	for id := range cur.depotIDs {
		if !prev.depotIDs[id] {
			events = append(events, Event{
				Kind:   EventDepotBuilt,
				Turn:   w.Turn,
				Detail: fmt.Sprintf("Depot %d built", id),
			})
		}
	}

	// 4. endgame: turns remaining dropped below the recall threshold
	if !prev.endgame && cur.endgame {
		events = append(events, Event{
			Kind:   EventEndgame,
			Turn:   w.Turn,
			Detail: fmt.Sprintf("%d turns remaining", w.TurnsRemaining()),
		})
	}

	return events, cur
}

// countMissing returns how many IDs in prev are absent from cur.
func countMissing(prev, cur map[int]bool) int {
	n := 0
	for id := range prev {
		if !cur[id] {
			n++
		}
	}
	return n
}
