package catalog

import (
	"errors"
	"testing"

	"parkcore/pkg/domain"
)

func TestCanCoexistScenarios(t *testing.T) {
	c := Default()
	cases := []struct {
		a, b string
		want bool
	}{
		{"T-Rex", "Velociraptor", false},     // -10 + -5
		{"Velociraptor", "Triceratops", true}, // -5 + 5 == 0 boundary
		{"T-Rex", "Triceratops", false},
		{"Triceratops", "Triceratops", true},
		{"T-Rex", "T-Rex", false},
		{"Brachiosaurus", "Compsognathus", true},
		{"Stegosaurus", "Dilophosaurus", true}, // 3 + -3
		{"Gallimimus", "Pteranodon", false},
	}
	for _, mode := range []Mode{ModeHeuristic, ModeStrict} {
		eval, err := NewEvaluator(mode, c)
		if err != nil {
			t.Fatalf("new evaluator: %v", err)
		}
		for _, tc := range cases {
			got, err := eval.CanCoexist(tc.a, tc.b)
			if err != nil {
				t.Fatalf("%s %s/%s: %v", mode, tc.a, tc.b, err)
			}
			if got != tc.want {
				t.Fatalf("%s %s/%s = %v, want %v", mode, tc.a, tc.b, got, tc.want)
			}
		}
	}
}

func TestCanCoexistSymmetric(t *testing.T) {
	c := Default()
	names := []string{"Unknownosaurus"}
	for _, s := range c.List() {
		names = append(names, s.Name)
	}
	eval := HeuristicEvaluator{Catalog: c}
	for _, a := range names {
		for _, b := range names {
			ab, _ := eval.CanCoexist(a, b)
			ba, _ := eval.CanCoexist(b, a)
			if ab != ba {
				t.Fatalf("asymmetric verdict for %s/%s", a, b)
			}
		}
	}
}

func TestUnknownSpeciesHandling(t *testing.T) {
	c := Default()

	heuristic := HeuristicEvaluator{Catalog: c}
	if ok, err := heuristic.CanCoexist("Dodo", "Mammoth"); err != nil || !ok {
		t.Fatalf("heuristic: two unknowns score 0, want true/nil, got %v/%v", ok, err)
	}
	if ok, _ := heuristic.CanCoexist("Dodo", "T-Rex"); ok {
		t.Fatalf("heuristic: unknown + T-Rex scores -10, want false")
	}
	if ok, _ := heuristic.CanCoexist("Dodo", "Triceratops"); !ok {
		t.Fatalf("heuristic: unknown + Triceratops scores 5, want true")
	}

	strict := StrictEvaluator{Catalog: c}
	for _, pair := range [][2]string{{"Dodo", "Triceratops"}, {"Triceratops", "Dodo"}, {"Dodo", "Mammoth"}} {
		if _, err := strict.CanCoexist(pair[0], pair[1]); !errors.Is(err, domain.ErrUnknownSpecies) {
			t.Fatalf("strict %v: expected UnknownSpecies, got %v", pair, err)
		}
	}
}

func TestNewEvaluatorModes(t *testing.T) {
	c := Default()
	e, err := NewEvaluator("", c)
	if err != nil || e.Mode() != ModeHeuristic {
		t.Fatalf("empty mode should default to heuristic, got %v/%v", e, err)
	}
	e, err = NewEvaluator(ModeStrict, c)
	if err != nil || e.Mode() != ModeStrict {
		t.Fatalf("expected strict evaluator, got %v/%v", e, err)
	}
	if _, err := NewEvaluator("fuzzy", c); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestCanDinosaursCoexist(t *testing.T) {
	eval := HeuristicEvaluator{Catalog: Default()}
	ok, err := CanDinosaursCoexist(eval,
		domain.Dinosaur{Name: "Blue", Species: "Velociraptor"},
		domain.Dinosaur{Name: "Bucky", Species: "Triceratops"})
	if err != nil || !ok {
		t.Fatalf("expected compatible, got %v/%v", ok, err)
	}
}
