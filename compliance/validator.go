/*
validator.go - Pre-booking validation of a hypothetical future trip

PURPOSE:
  Answers "can I take this trip?" before it is booked. The planned stay
  is synthesized, appended to the real history, and the full pipeline is
  re-run with the planned entry as the reference date - the state of the
  world at trip time, not today.

EDGE CASES:
  - exit <= entry: rejected immediately, the accounting pipeline never
    runs (no negative-duration arithmetic).
  - unknown country: invalid, with the manual-review message; a missing
    policy is never treated as an unlimited allowance.
*/
package compliance

import "fmt"

// TripValidation is the answer to a future-trip check.
type TripValidation struct {
	IsValid       bool
	RemainingDays int
	Message       string
	Violations    []StayViolation
	Result        *CountryTrackerResult
}

// plannedStayID marks the synthesized record in the validation result.
const plannedStayID = "planned"

// ValidateFutureTrip checks a hypothetical stay against the traveler's
// history. The trip is valid when the re-run pipeline produces no
// violations.
func (e *Engine) ValidateFutureTrip(stays []StayRecord, countryCode string, plannedEntry, plannedExit Date, profile UserProfile) TripValidation {
	if plannedExit.BeforeOrEqual(plannedEntry) {
		return TripValidation{
			IsValid: false,
			Message: ErrInvalidTripDates.Error(),
		}
	}

	exit := plannedExit
	hypothetical := append(append([]StayRecord{}, stays...), StayRecord{
		ID:          plannedStayID,
		CountryCode: countryCode,
		EntryDate:   plannedEntry,
		ExitDate:    &exit,
		Purpose:     "planned trip",
	})

	result := e.EvaluateCountry(hypothetical, countryCode, profile, plannedEntry)
	if result == nil {
		return TripValidation{
			IsValid: false,
			Message: (&PolicyUnknownError{CountryCode: countryCode}).Error(),
		}
	}

	tripDays := InclusiveDays(plannedEntry, plannedExit)
	valid := len(result.Violations) == 0

	message := fmt.Sprintf(
		"%d-day trip to %s leaves %d days remaining (%s).",
		tripDays, countryCode, result.Status.DaysRemaining, result.Status.WarningLevel)
	if !valid {
		message = fmt.Sprintf(
			"%d-day trip to %s exceeds the allowance by %d days.",
			tripDays, countryCode, result.Violations[0].DaysOver)
	}

	return TripValidation{
		IsValid:       valid,
		RemainingDays: result.Status.DaysRemaining,
		Message:       message,
		Violations:    result.Violations,
		Result:        result,
	}
}
