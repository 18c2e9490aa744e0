package domain

import (
	"testing"
	"time"
)

func TestZoneStatsAndLookup(t *testing.T) {
	zone := Zone{
		Name:   "Paddock",
		IsOpen: true,
		Dinosaurs: []Dinosaur{
			{Name: "Rex", Species: "T-Rex", Diet: DietCarnivore},
			{Name: "Bucky", Species: "Triceratops", Diet: DietHerbivore, IsSick: true},
			{Name: "Stego", Species: "Stegosaurus", Diet: DietHerbivore},
		},
	}
	if got := zone.IndexOf("Bucky"); got != 1 {
		t.Fatalf("expected Bucky at index 1, got %d", got)
	}
	if zone.Contains("Blue") {
		t.Fatalf("did not expect Blue in zone")
	}
	stats := zone.Stats()
	want := ZoneStats{Total: 3, Carnivores: 1, Herbivores: 2, Sick: 1}
	if stats != want {
		t.Fatalf("unexpected stats %+v, want %+v", stats, want)
	}
	if zone.Status() != ZoneOpen {
		t.Fatalf("expected open status")
	}
	zone.IsOpen = false
	if zone.Status() != ZoneClosed {
		t.Fatalf("expected closed status")
	}
}

func TestZoneCloneDoesNotAlias(t *testing.T) {
	zone := Zone{Name: "A", Dinosaurs: []Dinosaur{{Name: "Rex"}}}
	cp := zone.Clone()
	cp.Dinosaurs[0].Name = "Changed"
	cp.Dinosaurs = append(cp.Dinosaurs, Dinosaur{Name: "Extra"})
	if zone.Dinosaurs[0].Name != "Rex" || len(zone.Dinosaurs) != 1 {
		t.Fatalf("clone aliases original: %+v", zone.Dinosaurs)
	}
}

func TestDinosaurFeedingAndHealth(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		lastFed time.Time
		hungry  bool
	}{
		{"just fed", now, false},
		{"exactly interval", now.Add(-FeedingInterval), false},
		{"past interval", now.Add(-FeedingInterval - time.Minute), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Dinosaur{Name: "Rex", LastFed: tc.lastFed}
			if got := d.NeedsFeeding(now); got != tc.hungry {
				t.Fatalf("NeedsFeeding = %v, want %v", got, tc.hungry)
			}
		})
	}
	if (Dinosaur{IsSick: true}).Health() != HealthSick {
		t.Fatalf("expected sick health")
	}
	if (Dinosaur{}).Health() != HealthHealthy {
		t.Fatalf("expected healthy health")
	}
}

func TestSummarizePark(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	zones := []Zone{
		{Name: "A", IsOpen: true, Dinosaurs: []Dinosaur{
			{Name: "Rex", Diet: DietCarnivore, LastFed: now.Add(-10 * time.Hour)},
			{Name: "Bucky", Diet: DietHerbivore, LastFed: now, IsSick: true},
		}},
		{Name: "B", IsOpen: false},
	}
	got := SummarizePark(zones, now)
	want := ParkStatus{Zones: 2, OpenZones: 1, Dinosaurs: 2, Carnivores: 1, Herbivores: 1, Sick: 1, Hungry: 1}
	if got != want {
		t.Fatalf("unexpected status %+v, want %+v", got, want)
	}
}

func TestResultBlocking(t *testing.T) {
	var res Result
	res.Merge(Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}})
	if res.HasBlocking() {
		t.Fatalf("warn should not block")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock, Message: "nope"}}})
	if !res.HasBlocking() {
		t.Fatalf("expected blocking")
	}
	if got := res.Blocking(); len(got) != 1 || got[0].Rule != "b" {
		t.Fatalf("unexpected blocking list %+v", got)
	}
	err := RuleViolationError{Result: res}
	if err.Error() != "transaction blocked by rules: nope" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if (RuleViolationError{}).Error() != "transaction blocked by rules" {
		t.Fatalf("unexpected empty message")
	}
}
