package rules

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/prospector/model"
)

// Tuning holds every threshold the rule compiler interpolates into
// conditions. Loaded from YAML over DefaultTuning; host constants from the
// hello handshake override the cost fields.
type Tuning struct {
	Capacity              int     `yaml:"capacity"`
	StorageThreshold      int     `yaml:"storage_threshold"`
	FleeDistance          int     `yaml:"flee_distance"`
	AttackDistance        int     `yaml:"attack_distance"`
	MinFleetSize          int     `yaml:"min_fleet_size"`
	MinEnemyWorth         int     `yaml:"min_enemy_worth"`
	AttackReserve         int     `yaml:"attack_reserve"`
	DepotCost             int     `yaml:"depot_cost"`
	DepotTurnMargin       int     `yaml:"depot_turn_margin"`
	DepotSpacing          int     `yaml:"depot_spacing"`
	RichCellThreshold     int     `yaml:"rich_cell_threshold"`
	LowTurns              int     `yaml:"low_turns"`
	LowTurnsCargoFraction float64 `yaml:"low_turns_cargo_fraction"`
	InterestSaturation    int     `yaml:"interest_saturation"`
	InterestMaxDistance   int     `yaml:"interest_max_distance"`
	TraversalWeight       float64 `yaml:"traversal_weight"`

	ShipCost      int `yaml:"ship_cost"`
	SpawnReserve  int `yaml:"spawn_reserve"`
	SpawnLastTurn int `yaml:"spawn_last_turn"`
	MaxFleet      int `yaml:"max_fleet"`
}

// DefaultTuning returns the baseline parameters.
func DefaultTuning() Tuning {
	return Tuning{
		Capacity:              1000,
		StorageThreshold:      800,
		FleeDistance:          2,
		AttackDistance:        1,
		MinFleetSize:          3,
		MinEnemyWorth:         300,
		AttackReserve:         2000,
		DepotCost:             4000,
		DepotTurnMargin:       100,
		DepotSpacing:          12,
		RichCellThreshold:     100,
		LowTurns:              30,
		LowTurnsCargoFraction: 0.5,
		InterestSaturation:    1000,
		InterestMaxDistance:   10,
		TraversalWeight:       0.1,
		ShipCost:              1000,
		SpawnReserve:          1500,
		SpawnLastTurn:         350,
		MaxFleet:              7,
	}
}

// Validate clamps all parameters to their valid ranges.
func (t *Tuning) Validate() {
	t.Capacity = clampInt(t.Capacity, 1, math.MaxInt32)
	t.StorageThreshold = clampInt(t.StorageThreshold, 0, t.Capacity)
	t.FleeDistance = clampInt(t.FleeDistance, 0, 32)
	t.AttackDistance = clampInt(t.AttackDistance, 0, t.FleeDistance)
	t.MinFleetSize = clampInt(t.MinFleetSize, 0, 1000)
	t.MinEnemyWorth = clampInt(t.MinEnemyWorth, 0, t.Capacity)
	t.AttackReserve = clampInt(t.AttackReserve, 0, math.MaxInt32)
	t.DepotCost = clampInt(t.DepotCost, 0, math.MaxInt32)
	t.DepotTurnMargin = clampInt(t.DepotTurnMargin, 0, 10000)
	t.DepotSpacing = clampInt(t.DepotSpacing, 0, 1000)
	t.RichCellThreshold = clampInt(t.RichCellThreshold, 1, math.MaxInt32)
	t.LowTurns = clampInt(t.LowTurns, 0, 10000)
	t.LowTurnsCargoFraction = clamp(t.LowTurnsCargoFraction, 0, 1)
	t.InterestSaturation = clampInt(t.InterestSaturation, 1, math.MaxInt32)
	t.InterestMaxDistance = clampInt(t.InterestMaxDistance, 1, 1000)
	t.TraversalWeight = clamp(t.TraversalWeight, 0, 10)
	t.ShipCost = clampInt(t.ShipCost, 0, math.MaxInt32)
	t.SpawnReserve = clampInt(t.SpawnReserve, 0, math.MaxInt32)
	t.SpawnLastTurn = clampInt(t.SpawnLastTurn, 0, math.MaxInt32)
	t.MaxFleet = clampInt(t.MaxFleet, 0, 1000)
}

// LowTurnsCargo is the cargo above which a unit heads home near the end.
func (t Tuning) LowTurnsCargo() int {
	return int(math.Round(float64(t.Capacity) * t.LowTurnsCargoFraction))
}

// ApplyConstants overrides the cost fields with non-zero host constants.
func (t Tuning) ApplyConstants(c model.Constants) Tuning {
	if c.ShipCost > 0 {
		t.ShipCost = c.ShipCost
	}
	if c.DropoffCost > 0 {
		t.DepotCost = c.DropoffCost
	}
	if c.MaxHalite > 0 {
		t.Capacity = c.MaxHalite
		t.InterestSaturation = c.MaxHalite
	}
	t.Validate()
	return t
}

// LoadTuning reads a YAML file over DefaultTuning. Fields absent from the
// file keep their defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("parse tuning %s: %w", path, err)
	}
	t.Validate()
	return t, nil
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// invLerp maps v from [a, b] onto [0, 1] without clamping.
func invLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return (v - a) / (b - a)
}
