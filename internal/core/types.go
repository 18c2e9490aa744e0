package core

import "parkcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Zone               = domain.Zone
	Dinosaur           = domain.Dinosaur
	Species            = domain.Species
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	RulesEngine        = domain.RulesEngine
	Rule               = domain.Rule
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
	Snapshot           = domain.Snapshot
)

const (
	EntityZone     = domain.EntityZone
	EntityDinosaur = domain.EntityDinosaur
	EntitySpecies  = domain.EntitySpecies
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
	ActionMove   = domain.ActionMove
)

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
