package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/nstehr/prospector/model"
)

// Engine runs compiled rules against one unit at a time. Rules form a
// selector over (condition, decide) sequences in priority order, so the
// first rule that matches and decides wins the unit's turn.
type Engine struct {
	mu     sync.RWMutex
	rules  []*Rule
	tuning Tuning

	memMu  sync.Mutex // guards memory and turn
	memory map[int]*UnitMemory
	turn   TurnState
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule, t Tuning) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	t.Validate()
	return &Engine{
		rules:  compiled,
		tuning: t,
		memory: make(map[int]*UnitMemory),
	}, nil
}

// NewDefaultEngine builds an engine from the rule list compiled out of t.
func NewDefaultEngine(t Tuning) (*Engine, error) {
	return NewEngine(CompileTuning(t), t)
}

// BeginTurn resets the fleet-wide conversion guard, seeds the working stock
// from the player's stockpile and prunes memory of dead units.
func (e *Engine) BeginTurn(w *model.World) {
	e.memMu.Lock()
	defer e.memMu.Unlock()

	e.turn = TurnState{Turn: w.Turn, Stock: w.Me().Halite}
	pruneMemory(e.memory, w)
}

// Decide picks the intent for u. Falls back to Stay when no rule fires.
func (e *Engine) Decide(w *model.World, u *model.Unit) Intent {
	e.mu.RLock()
	rules, tuning := e.rules, e.tuning
	e.mu.RUnlock()

	e.memMu.Lock()
	defer e.memMu.Unlock()

	env := UnitEnv{World: w, Unit: u, Memory: e.memoryFor(u.ID), State: &e.turn, Tuning: tuning}

	var picked Intent
	children := make([]bt.Node, 0, len(rules))
	for _, r := range rules {
		children = append(children, bt.New(bt.Sequence, condition(r, env), decision(r, env, &picked)))
	}
	status, err := bt.New(bt.Selector, children...).Tick()
	if err != nil {
		slog.Error("decision tree error", "unit", u.ID, "error", err)
	}
	if err != nil || status != bt.Success {
		return Intent{Kind: IntentStay, Target: u.Pos}
	}
	slog.Debug("rule fired", "rule", picked.Rule, "unit", u.ID, "intent", picked.Kind, "target", picked.Target)
	return picked
}

// condition evaluates the rule's compiled expr. Runtime errors are logged and
// count as no match so one bad rule never stalls the tree.
func condition(r *Rule, env UnitEnv) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "unit", env.Unit.ID, "error", err)
			return bt.Failure, nil
		}
		if match, ok := result.(bool); ok && match {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

func decision(r *Rule, env UnitEnv, out *Intent) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if r.Decide == nil {
			return bt.Failure, nil
		}
		intent, ok := r.Decide(env)
		if !ok {
			return bt.Failure, nil
		}
		intent.Rule = r.Name
		*out = intent
		return bt.Success, nil
	})
}

func (e *Engine) memoryFor(id int) *UnitMemory {
	m, ok := e.memory[id]
	if !ok {
		m = &UnitMemory{}
		e.memory[id] = m
	}
	return m
}

// Swap atomically replaces the rule set and tuning (called when the host's
// constants arrive). Compiles first; if compilation fails the old rules
// remain active. Unit memory survives the swap.
func (e *Engine) Swap(newRules []*Rule, t Tuning) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	t.Validate()
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.tuning = t
	e.mu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// Tuning returns the parameters the current rule set was compiled with.
func (e *Engine) Tuning() Tuning {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tuning
}

// Memory returns a copy of the unit's persisted state.
func (e *Engine) Memory(id int) (UnitMemory, bool) {
	e.memMu.Lock()
	defer e.memMu.Unlock()
	m, ok := e.memory[id]
	if !ok {
		return UnitMemory{}, false
	}
	return *m, true
}

// Turn returns a copy of the fleet-wide state for the current turn.
func (e *Engine) Turn() TurnState {
	e.memMu.Lock()
	defer e.memMu.Unlock()
	return e.turn
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(UnitEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
