package catalog

import (
	"fmt"

	"parkcore/pkg/domain"
)

// Mode selects how unknown species are scored.
type Mode string

const (
	// ModeHeuristic scores unknown species as weight 0.
	ModeHeuristic Mode = "heuristic"
	// ModeStrict fails with UnknownSpecies for names outside the catalog.
	ModeStrict Mode = "strict"
)

// Evaluator decides whether two species may share an enclosure. Verdicts are
// pairwise: a zone is never scored as a whole.
type Evaluator interface {
	CanCoexist(a, b string) (bool, error)
	Mode() Mode
}

// NewEvaluator returns the evaluator for mode backed by c.
func NewEvaluator(mode Mode, c *Catalog) (Evaluator, error) {
	switch mode {
	case ModeHeuristic, "":
		return HeuristicEvaluator{Catalog: c}, nil
	case ModeStrict:
		return StrictEvaluator{Catalog: c}, nil
	default:
		return nil, fmt.Errorf("unknown compatibility mode %q", mode)
	}
}

// HeuristicEvaluator sums catalog weights, treating unknown species as 0.
type HeuristicEvaluator struct {
	Catalog *Catalog
}

// CanCoexist reports weight(a)+weight(b) >= 0. It never fails.
func (e HeuristicEvaluator) CanCoexist(a, b string) (bool, error) {
	return e.Catalog.Weight(a)+e.Catalog.Weight(b) >= 0, nil
}

// Mode implements Evaluator.
func (HeuristicEvaluator) Mode() Mode { return ModeHeuristic }

// StrictEvaluator requires both species to be catalogued.
type StrictEvaluator struct {
	Catalog *Catalog
}

// CanCoexist fails with UnknownSpecies for the first uncatalogued name,
// otherwise applies the same sum rule as HeuristicEvaluator.
func (e StrictEvaluator) CanCoexist(a, b string) (bool, error) {
	sa, err := e.Catalog.Lookup(a)
	if err != nil {
		return false, err
	}
	sb, err := e.Catalog.Lookup(b)
	if err != nil {
		return false, err
	}
	return sa.CompatibilityWeight+sb.CompatibilityWeight >= 0, nil
}

// Mode implements Evaluator.
func (StrictEvaluator) Mode() Mode { return ModeStrict }

// CanDinosaursCoexist evaluates two dinosaurs by species.
func CanDinosaursCoexist(e Evaluator, a, b domain.Dinosaur) (bool, error) {
	return e.CanCoexist(a.Species, b.Species)
}
