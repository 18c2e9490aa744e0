package core

import (
	"context"
	"fmt"

	"parkcore/internal/catalog"
	"parkcore/pkg/domain"
)

// ZoneCompatibilityRuleName identifies violations raised by the zone compatibility rule.
const ZoneCompatibilityRuleName = "zone_compatibility"

// NewZoneCompatibilityRule returns the in-transaction rule that blocks a
// dinosaur from landing next to an occupant it cannot coexist with.
func NewZoneCompatibilityRule(evaluator catalog.Evaluator) domain.Rule {
	return zoneCompatibilityRule{evaluator: evaluator}
}

type zoneCompatibilityRule struct {
	evaluator catalog.Evaluator
}

func (zoneCompatibilityRule) Name() string { return ZoneCompatibilityRuleName }

// Evaluate checks only dinosaurs that were admitted or moved in this
// transaction; existing groupings are not re-validated.
func (r zoneCompatibilityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityDinosaur {
			continue
		}
		if change.Action != domain.ActionCreate && change.Action != domain.ActionMove {
			continue
		}
		arriving, ok := change.After.(domain.Dinosaur)
		if !ok {
			continue
		}
		zone, ok := view.FindZone(change.Zone)
		if !ok {
			continue
		}
		for _, occupant := range zone.Dinosaurs {
			if occupant.Name == arriving.Name {
				continue
			}
			compatible, err := catalog.CanDinosaursCoexist(r.evaluator, arriving, occupant)
			if err != nil {
				return domain.Result{}, err
			}
			if compatible {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     ZoneCompatibilityRuleName,
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("dinosaur %q cannot coexist with %q in zone %q", arriving.Name, occupant.Name, zone.Name),
				Entity:   domain.EntityDinosaur,
				EntityID: arriving.Name,
				Zone:     zone.Name,
			})
			break
		}
	}
	return res, nil
}
