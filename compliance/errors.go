/*
errors.go - Centralized error types for the compliance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine itself is total for well-formed input - accounting functions
  never fail. The errors here cover the edges of the engine: unknown
  policies, malformed trip requests, and ingestion-side validation that
  callers (API, store) surface to users.

USAGE:
  if errors.Is(err, compliance.ErrPolicyUnknown) {
      // country needs manual review, not a default allowance
  }

SEE ALSO:
  - resolver.go: returns nil rather than error for unknown policy; the
    sentinel exists for callers that must propagate the condition
  - validator.go: rejects inverted trip dates before any accounting
*/
package compliance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPolicyUnknown is returned when no policy exists for a country.
	// Callers must treat this as "needs manual review", never as an
	// implicit zero- or infinite-day allowance.
	ErrPolicyUnknown = errors.New("no policy for country")

	// ErrInvalidTripDates is returned when a planned trip's exit is on or
	// before its entry. Rejected before the accounting pipeline runs.
	ErrInvalidTripDates = errors.New("trip exit must be after entry")

	// ErrMalformedStay is returned at ingestion when a stay's exit
	// precedes its entry.
	ErrMalformedStay = errors.New("stay exit before entry")

	// ErrStayNotFound is returned when a referenced stay doesn't exist.
	ErrStayNotFound = errors.New("stay not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PolicyUnknownError names the country that has no resolvable policy.
type PolicyUnknownError struct {
	CountryCode string
}

func (e *PolicyUnknownError) Error() string {
	return fmt.Sprintf("no policy for country %s: manual review required", e.CountryCode)
}

func (e *PolicyUnknownError) Unwrap() error { return ErrPolicyUnknown }

// MalformedStayError carries the offending dates.
type MalformedStayError struct {
	CountryCode string
	Entry       Date
	Exit        Date
}

func (e *MalformedStayError) Error() string {
	return fmt.Sprintf("malformed stay in %s: exit %s before entry %s",
		e.CountryCode, e.Exit, e.Entry)
}

func (e *MalformedStayError) Unwrap() error { return ErrMalformedStay }
