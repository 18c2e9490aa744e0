package core

import "parkcore/internal/catalog"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// A nil evaluator selects the heuristic evaluator over the default catalog.
func NewDefaultRulesEngine(evaluator catalog.Evaluator) *RulesEngine {
	if evaluator == nil {
		evaluator = catalog.HeuristicEvaluator{Catalog: catalog.Default()}
	}
	engine := NewRulesEngine()
	engine.Register(NewZoneCompatibilityRule(evaluator))
	return engine
}

