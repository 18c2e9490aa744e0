package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures returned by the park engine.
type ErrorKind string

// Error kinds surfaced to callers. The HTTP shell maps each to a status code.
const (
	KindZoneAlreadyExists      ErrorKind = "ZONE_ALREADY_EXISTS"
	KindZoneNotFound           ErrorKind = "ZONE_NOT_FOUND"
	KindZoneUnavailable        ErrorKind = "ZONE_UNAVAILABLE"
	KindDuplicateDinosaur      ErrorKind = "DUPLICATE_DINOSAUR"
	KindDinosaurNotFound       ErrorKind = "DINOSAUR_NOT_FOUND"
	KindCompatibilityViolation ErrorKind = "DINOSAUR_COMPATIBILITY_VIOLATION"
	KindUnknownSpecies         ErrorKind = "UNKNOWN_SPECIES"
	KindInvalidArgument        ErrorKind = "INVALID_ARGUMENT"
)

// Error is the typed failure returned by park operations. Callers match on
// Kind through errors.Is against the sentinel values below, never on Message.
type Error struct {
	Kind    ErrorKind
	Entity  EntityType
	Name    string
	Zone    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrZoneAlreadyExists      = &Error{Kind: KindZoneAlreadyExists}
	ErrZoneNotFound           = &Error{Kind: KindZoneNotFound}
	ErrZoneUnavailable        = &Error{Kind: KindZoneUnavailable}
	ErrDuplicateDinosaur      = &Error{Kind: KindDuplicateDinosaur}
	ErrDinosaurNotFound       = &Error{Kind: KindDinosaurNotFound}
	ErrCompatibilityViolation = &Error{Kind: KindCompatibilityViolation}
	ErrUnknownSpecies         = &Error{Kind: KindUnknownSpecies}
	ErrInvalidArgument        = &Error{Kind: KindInvalidArgument}
)

// KindOf extracts the error kind, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// ZoneAlreadyExists reports a duplicate zone name.
func ZoneAlreadyExists(name string) error {
	return &Error{Kind: KindZoneAlreadyExists, Entity: EntityZone, Name: name,
		Message: fmt.Sprintf("zone %q already exists", name)}
}

// ZoneNotFound reports a missing zone.
func ZoneNotFound(name string) error {
	return &Error{Kind: KindZoneNotFound, Entity: EntityZone, Name: name,
		Message: fmt.Sprintf("zone %q does not exist", name)}
}

// ZoneUnavailable reports a zone that is closed or does not exist. The two
// conditions are deliberately indistinguishable to callers of admit and move.
func ZoneUnavailable(name string) error {
	return &Error{Kind: KindZoneUnavailable, Entity: EntityZone, Name: name,
		Message: fmt.Sprintf("zone %q is closed or does not exist", name)}
}

// DuplicateDinosaur reports a dinosaur name already present in the park.
func DuplicateDinosaur(name, zone string) error {
	return &Error{Kind: KindDuplicateDinosaur, Entity: EntityDinosaur, Name: name, Zone: zone,
		Message: fmt.Sprintf("dinosaur %q already exists in zone %q", name, zone)}
}

// DinosaurNotFound reports a dinosaur absent from the expected zone. zone may
// be empty when the lookup was park-wide.
func DinosaurNotFound(name, zone string) error {
	msg := fmt.Sprintf("dinosaur %q not found", name)
	if zone != "" {
		msg = fmt.Sprintf("dinosaur %q not found in zone %q", name, zone)
	}
	return &Error{Kind: KindDinosaurNotFound, Entity: EntityDinosaur, Name: name, Zone: zone, Message: msg}
}

// CompatibilityViolation reports that name cannot share zone with occupant.
func CompatibilityViolation(name, occupant, zone string) error {
	return &Error{Kind: KindCompatibilityViolation, Entity: EntityDinosaur, Name: name, Zone: zone,
		Message: fmt.Sprintf("dinosaur %q cannot coexist with %q in zone %q", name, occupant, zone)}
}

// UnknownSpecies reports a species missing from the catalog.
func UnknownSpecies(name string) error {
	return &Error{Kind: KindUnknownSpecies, Entity: EntitySpecies, Name: name,
		Message: fmt.Sprintf("unknown species %q", name)}
}

// InvalidArgument reports a malformed request such as an empty name.
func InvalidArgument(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}
