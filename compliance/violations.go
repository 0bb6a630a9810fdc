/*
violations.go - Violation detection and guidance text

PURPOSE:
  Turns an evaluated status into diagnostics: a violation when the limit
  is actually breached, and method-specific recommendation text telling
  the traveler what the accounting means for them (when the counter
  resets, when a window frees up, when a fixed window ends).

VIOLATION RULE:
  Emitted iff daysUsed > maxDays.
  severity = critical when daysUsed exceeds 120% of the limit, else major.
  daysOver = daysUsed - maxDays.

RECOMMENDATIONS:
  per_entry       exit and re-entry resets the counter
  calendar_year   remaining days this year + the next Jan 1 reset
  entry_based     the exact date the fixed 365-day window ends
  rolling_window  the next date usage drops back under the limit
  visa_validity   the visa validity end date
  Policy restrictions are always appended verbatim as guidance bullets.
*/
package compliance

import (
	"fmt"
	"time"
)

// Diagnose produces violations and recommendations for an evaluated
// country. stays is the full history (the rolling-window recovery date
// needs completed stays, not just the ones inside the current window).
func Diagnose(status StayStatus, resolved ResolvedPolicy, stays []StayRecord, ref Date) ([]StayViolation, []string) {
	maxDays := EffectiveMaxDays(resolved.Policy)

	var violations []StayViolation
	if maxDays > 0 && status.DaysUsed > maxDays {
		violations = append(violations, StayViolation{
			Type:        ViolationTypeOverstay,
			Severity:    overstaySeverity(status.DaysUsed, maxDays),
			Description: fmt.Sprintf("%s: %d days used against the %d-day limit (%s)", status.CountryCode, status.DaysUsed, maxDays, status.Method),
			Date:        ref,
			DaysOver:    status.DaysUsed - maxDays,
		})
	}

	recs := recommend(status, resolved, stays, ref, maxDays)
	recs = append(recs, resolved.Policy.Restrictions...)

	return violations, recs
}

// overstaySeverity escalates to critical above 120% of the limit.
// Integer arithmetic: used > max*6/5 <=> used*5 > max*6.
func overstaySeverity(daysUsed, maxDays int) ViolationSeverity {
	if daysUsed*5 > maxDays*6 {
		return SeverityCritical
	}
	return SeverityMajor
}

func recommend(status StayStatus, resolved ResolvedPolicy, stays []StayRecord, ref Date, maxDays int) []string {
	switch status.Method {
	case MethodPerEntry:
		return []string{fmt.Sprintf(
			"Exiting and re-entering %s resets the counter: each new entry grants up to %d days.",
			status.CountryCode, maxDays)}

	case MethodCalendarYear:
		reset := NewDate(ref.Year()+1, time.January, 1)
		return []string{fmt.Sprintf(
			"%d of %d days remain in %s for %d; the allowance resets on %s.",
			status.DaysRemaining, maxDays, status.CountryCode, ref.Year(), reset)}

	case MethodEntryBased:
		if status.CurrentPeriodEnd == nil {
			return nil
		}
		return []string{fmt.Sprintf(
			"The fixed 365-day window for %s ends on %s; days outside it do not count.",
			status.CountryCode, *status.CurrentPeriodEnd)}

	case MethodRollingWindow:
		return recommendRolling(status, resolved, stays, ref, maxDays)

	case MethodVisaValidity:
		if resolved.Custom != nil && resolved.Custom.ValidUntil != nil {
			return []string{fmt.Sprintf(
				"The visa for %s is valid until %s.", status.CountryCode, *resolved.Custom.ValidUntil)}
		}
		return nil

	case MethodCustom:
		if resolved.Custom != nil && resolved.Custom.Label != "" {
			return []string{fmt.Sprintf(
				"%s is covered by a special arrangement (%s); verify its terms before traveling.",
				status.CountryCode, resolved.Custom.Label)}
		}
		return nil

	default:
		return nil
	}
}

func recommendRolling(status StayStatus, resolved ResolvedPolicy, stays []StayRecord, ref Date, maxDays int) []string {
	periodDays := resolved.Policy.PeriodDays
	if periodDays <= 0 {
		periodDays = DefaultRollingPeriodDays
	}

	if status.DaysRemaining > 0 {
		return []string{fmt.Sprintf(
			"%d of %d days remain in the current %d-day window for %s.",
			status.DaysRemaining, maxDays, periodDays, status.CountryCode)}
	}

	if next, ok := rollingRecoveryDate(stays, status.CountryCode, ref, periodDays, maxDays); ok {
		return []string{fmt.Sprintf(
			"Usage in %s drops back under the %d-in-%d limit on %s, assuming no further presence.",
			status.CountryCode, maxDays, periodDays, next)}
	}
	return []string{fmt.Sprintf(
		"The %d-in-%d limit for %s is exhausted for the whole look-back horizon.",
		maxDays, periodDays, status.CountryCode)}
}

// rollingRecoveryDate finds the first future date whose look-back window
// has at least one free day, assuming the traveler is absent from ref+1
// onward (ongoing stays are closed at ref for the projection).
func rollingRecoveryDate(stays []StayRecord, countryCode string, ref Date, periodDays, maxDays int) (Date, bool) {
	closed := make([]StayRecord, 0, len(stays))
	for _, s := range stays {
		if s.ExitDate == nil {
			exit := ref
			s.ExitDate = &exit
		}
		closed = append(closed, s)
	}

	// Old presence ages out one day at a time, so scanning one window
	// length past ref always finds the answer when one exists.
	for d := ref.AddDays(1); d.BeforeOrEqual(ref.AddDays(periodDays)); d = d.AddDays(1) {
		usage := Accumulate(closed, countryCode, MethodRollingWindow, d, periodDays)
		if usage.DaysUsed < maxDays {
			return d, true
		}
	}
	return Date{}, false
}
