package rules

import (
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/prospector/model"
)

// IntentKind is the high-level goal a unit picked for the turn.
type IntentKind string

const (
	IntentStay    IntentKind = "stay"
	IntentFlee    IntentKind = "flee"
	IntentAttack  IntentKind = "attack"
	IntentConvert IntentKind = "convert"
	IntentReturn  IntentKind = "return"
	IntentCollect IntentKind = "collect"
	IntentExtract IntentKind = "extract"
)

// Intent is what the engine hands the orchestrator. Target is meaningful for
// movement kinds only; Threat is set by threat-driven rules and lives for
// the current turn.
type Intent struct {
	Kind   IntentKind
	Target model.Position
	Threat *model.Unit
	Rule   string
}

// Moves reports whether the intent needs a path step.
func (i Intent) Moves() bool {
	switch i.Kind {
	case IntentFlee, IntentAttack, IntentReturn, IntentCollect:
		return true
	}
	return false
}

// IntentFunc turns a matched rule into an intent. Returning false lets the
// next rule in priority order try.
type IntentFunc func(env UnitEnv) (Intent, bool)

// Rule is a condition → intent pair. The engine walks rules by priority and
// the first one whose condition holds and whose Decide succeeds wins.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for logs
	ConditionSrc string      // expr source (preserved for serialization)
	program      *vm.Program // compiled bytecode
	Decide       IntentFunc
}
