package domain

import (
	"context"
	"sync"
)

// RuleView provides read-only access to park state for rule evaluation.
type RuleView interface {
	ListZones() []Zone
	FindZone(name string) (Zone, bool)
	FindDinosaur(name string) (Dinosaur, string, bool)
}

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation. It is safe to register rules
// while transactions are being evaluated.
type RulesEngine struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
}

// Replace installs rule in place of every rule registered under the same
// name, keeping the first one's position. The rule is appended when no rule
// by that name exists.
func (e *RulesEngine) Replace(rule Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.rules[:0:0]
	replaced := false
	for _, r := range e.rules {
		if r.Name() != rule.Name() {
			kept = append(kept, r)
			continue
		}
		if !replaced {
			kept = append(kept, rule)
			replaced = true
		}
	}
	if !replaced {
		kept = append(kept, rule)
	}
	e.rules = kept
}

// Rules returns the registered rule names in evaluation order.
func (e *RulesEngine) Rules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.Name())
	}
	return names
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	e.mu.RLock()
	rules := append([]Rule(nil), e.rules...)
	e.mu.RUnlock()

	var combined Result
	for _, rule := range rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
