package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
		kind     ErrorKind
	}{
		{ZoneAlreadyExists("A"), ErrZoneAlreadyExists, KindZoneAlreadyExists},
		{ZoneNotFound("A"), ErrZoneNotFound, KindZoneNotFound},
		{ZoneUnavailable("A"), ErrZoneUnavailable, KindZoneUnavailable},
		{DuplicateDinosaur("Rex", "A"), ErrDuplicateDinosaur, KindDuplicateDinosaur},
		{DinosaurNotFound("Rex", "A"), ErrDinosaurNotFound, KindDinosaurNotFound},
		{CompatibilityViolation("Rex", "Blue", "A"), ErrCompatibilityViolation, KindCompatibilityViolation},
		{UnknownSpecies("Dodo"), ErrUnknownSpecies, KindUnknownSpecies},
		{InvalidArgument("bad %s", "input"), ErrInvalidArgument, KindInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			if !errors.Is(tc.err, tc.sentinel) {
				t.Fatalf("expected %v to match sentinel", tc.err)
			}
			wrapped := fmt.Errorf("outer: %w", tc.err)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Fatalf("expected wrapped error to match sentinel")
			}
			if KindOf(wrapped) != tc.kind {
				t.Fatalf("KindOf = %q, want %q", KindOf(wrapped), tc.kind)
			}
		})
	}
}

func TestErrorKindsDoNotCrossMatch(t *testing.T) {
	if errors.Is(ZoneNotFound("A"), ErrZoneUnavailable) {
		t.Fatalf("not found must not match unavailable")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no kind")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := ZoneUnavailable("Paddock B").Error(); got != `zone "Paddock B" is closed or does not exist` {
		t.Fatalf("unexpected message %q", got)
	}
	if got := DinosaurNotFound("Rex", "").Error(); got != `dinosaur "Rex" not found` {
		t.Fatalf("unexpected message %q", got)
	}
	inner := errors.New("boom")
	e := &Error{Kind: KindInvalidArgument, Err: inner}
	if e.Error() != "INVALID_ARGUMENT: boom" {
		t.Fatalf("unexpected message %q", e.Error())
	}
	if !errors.Is(e, inner) {
		t.Fatalf("expected unwrap to inner error")
	}
}
