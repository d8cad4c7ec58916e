package rules

import "fmt"

// CompileTuning generates the per-unit rule list from tuning parameters.
// All conditions are built via fmt.Sprintf with interpolated integers, so
// the compiler never generates invalid expr. Order matters: each rule
// assumes every higher-priority rule did not fire.
func CompileTuning(t Tuning) []*Rule {
	t.Validate()
	var rules []*Rule

	// --- Threat response ---

	rules = append(rules, &Rule{
		Name:     "avoid-threat",
		Priority: 500,
		Category: "threat",
		ConditionSrc: fmt.Sprintf(`ThreatDistance() <= %d && (ThreatCargo() < Cargo() || Cargo() > %d || FleetSize() < %d)`,
			t.FleeDistance, t.StorageThreshold, t.MinFleetSize),
		Decide: DecideFlee,
	})

	rules = append(rules, &Rule{
		Name:     "attack-rich-enemy",
		Priority: 400,
		Category: "threat",
		ConditionSrc: fmt.Sprintf(`ThreatDistance() <= %d && ThreatCargo() > Cargo() && ThreatCargo() > %d && Stock() >= %d`,
			t.AttackDistance, t.MinEnemyWorth, t.AttackReserve),
		Decide: DecideAttack,
	})

	// --- Expansion ---

	rules = append(rules, &Rule{
		Name:     "convert-depot",
		Priority: 300,
		Category: "expansion",
		ConditionSrc: fmt.Sprintf(`Stock() > %d && TurnsRemaining() > %d && NearestStructureDistance() > %d && !ConversionCommitted()`,
			t.DepotCost, t.DepotTurnMargin, t.DepotSpacing),
		Decide: DecideConvert,
	})

	// --- Economy ---

	rules = append(rules, &Rule{
		Name:     "return-cargo",
		Priority: 200,
		Category: "economy",
		ConditionSrc: fmt.Sprintf(`Cargo() > %d || Returning() || (TurnsRemaining() < %d && Cargo() > %d && !CurrentCellRich())`,
			t.StorageThreshold, t.LowTurns, t.LowTurnsCargo()),
		Decide: DecideReturn,
	})

	rules = append(rules, &Rule{
		Name:         "extract-in-place",
		Priority:     110,
		Category:     "economy",
		ConditionSrc: `CurrentCellRich()`,
		Decide:       DecideExtract,
	})

	rules = append(rules, &Rule{
		Name:         "collect-resource",
		Priority:     100,
		Category:     "economy",
		ConditionSrc: `!CurrentCellRich()`,
		Decide:       DecideCollect,
	})

	return rules
}
