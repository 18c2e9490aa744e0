// Package domain defines the park entities, value types, error kinds and
// rule evaluation primitives used by parkcore.
package domain

import "time"

// EntityType identifies the type of record stored in the park.
type EntityType string

// Supported entity type identifiers used in Change records and violations.
const (
	// EntityZone identifies a zone (enclosure) record.
	EntityZone EntityType = "zone"
	// EntityDinosaur identifies a dinosaur record.
	EntityDinosaur EntityType = "dinosaur"
	// EntitySpecies identifies a species catalog entry.
	EntitySpecies EntityType = "species"
)

// Diet classifies a species' feeding habits.
type Diet string

// Supported diets.
const (
	DietCarnivore Diet = "carnivore"
	DietHerbivore Diet = "herbivore"
)

// HealthStatus is the display form of a dinosaur's sick flag.
type HealthStatus string

// Health statuses.
const (
	HealthHealthy HealthStatus = "healthy"
	HealthSick    HealthStatus = "sick"
)

// ZoneStatus is the display form of a zone's access gate.
type ZoneStatus string

// Zone statuses.
const (
	ZoneOpen   ZoneStatus = "open"
	ZoneClosed ZoneStatus = "closed"
)

// FeedingInterval is the maximum time a dinosaur may go unfed before it is
// reported as needing feeding.
const FeedingInterval = 8 * time.Hour

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Species is an immutable catalog entry.
type Species struct {
	Name                string `json:"name" yaml:"name"`
	Diet                Diet   `json:"diet" yaml:"diet"`
	CompatibilityWeight int    `json:"compatibility_weight" yaml:"compatibility_weight"`
}

// IsCarnivore reports whether the species eats meat.
func (s Species) IsCarnivore() bool { return s.Diet == DietCarnivore }

// Dinosaur is an individual animal. Its name is unique across the park.
type Dinosaur struct {
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Diet      Diet      `json:"diet"`
	IsSick    bool      `json:"is_sick"`
	LastFed   time.Time `json:"last_fed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCarnivore reports whether the dinosaur's species is carnivorous.
func (d Dinosaur) IsCarnivore() bool { return d.Diet == DietCarnivore }

// Health returns the display health status.
func (d Dinosaur) Health() HealthStatus {
	if d.IsSick {
		return HealthSick
	}
	return HealthHealthy
}

// NeedsFeeding reports whether the dinosaur was last fed more than
// FeedingInterval before now.
func (d Dinosaur) NeedsFeeding(now time.Time) bool {
	return now.Sub(d.LastFed) > FeedingInterval
}

// Zone is a named enclosure. Dinosaurs keeps insertion order.
type Zone struct {
	Name      string     `json:"name"`
	IsOpen    bool       `json:"is_open"`
	Dinosaurs []Dinosaur `json:"dinosaurs"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Status returns the display form of IsOpen.
func (z Zone) Status() ZoneStatus {
	if z.IsOpen {
		return ZoneOpen
	}
	return ZoneClosed
}

// IndexOf returns the position of the named dinosaur or -1.
func (z Zone) IndexOf(name string) int {
	for i, d := range z.Dinosaurs {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Contains reports whether the zone holds the named dinosaur.
func (z Zone) Contains(name string) bool { return z.IndexOf(name) >= 0 }

// Clone returns a deep copy whose dinosaur slice does not alias z.
func (z Zone) Clone() Zone {
	cp := z
	if z.Dinosaurs != nil {
		cp.Dinosaurs = append(make([]Dinosaur, 0, len(z.Dinosaurs)), z.Dinosaurs...)
	}
	return cp
}

// ZoneStats summarizes a zone's population.
type ZoneStats struct {
	Total      int `json:"total"`
	Carnivores int `json:"carnivores"`
	Herbivores int `json:"herbivores"`
	Sick       int `json:"sick"`
}

// Stats counts the zone's occupants by diet and health.
func (z Zone) Stats() ZoneStats {
	stats := ZoneStats{Total: len(z.Dinosaurs)}
	for _, d := range z.Dinosaurs {
		if d.IsCarnivore() {
			stats.Carnivores++
		} else {
			stats.Herbivores++
		}
		if d.IsSick {
			stats.Sick++
		}
	}
	return stats
}

// ParkStatus aggregates population and access counts across all zones.
type ParkStatus struct {
	Zones      int `json:"zones"`
	OpenZones  int `json:"open_zones"`
	Dinosaurs  int `json:"dinosaurs"`
	Carnivores int `json:"carnivores"`
	Herbivores int `json:"herbivores"`
	Sick       int `json:"sick"`
	Hungry     int `json:"hungry"`
}

// SummarizePark computes a ParkStatus over zones at the given instant.
func SummarizePark(zones []Zone, now time.Time) ParkStatus {
	var status ParkStatus
	for _, z := range zones {
		status.Zones++
		if z.IsOpen {
			status.OpenZones++
		}
		stats := z.Stats()
		status.Dinosaurs += stats.Total
		status.Carnivores += stats.Carnivores
		status.Herbivores += stats.Herbivores
		status.Sick += stats.Sick
		for _, d := range z.Dinosaurs {
			if d.NeedsFeeding(now) {
				status.Hungry++
			}
		}
	}
	return status
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType `json:"entity"`
	Action Action     `json:"action"`
	// Zone is the zone the change landed in; for moves it is the destination.
	Zone     string `json:"zone"`
	FromZone string `json:"from_zone,omitempty"`
	Before   any    `json:"before,omitempty"`
	After    any    `json:"after,omitempty"`
}

// Action indicates the type of modification performed.
type Action string

// Change actions captured in transactions.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionMove indicates a dinosaur changed zones.
	ActionMove Action = "move"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity"`
	EntityID string     `json:"entity_id"`
	// Zone names the zone the violation was detected in, when relevant.
	Zone string `json:"zone,omitempty"`
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Blocking returns the blocking violations in evaluation order.
func (r Result) Blocking() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	blocking := e.Result.Blocking()
	if len(blocking) == 0 {
		return "transaction blocked by rules"
	}
	return "transaction blocked by rules: " + blocking[0].Message
}
