/*
evaluator.go - Usage to days-remaining and warning level

PURPOSE:
  Converts raw day usage into a StayStatus: the applicable day limit,
  days remaining, the accounting period, and a coarse warning level from
  the percentage of allowance consumed.

LIMIT SELECTION:
  per_entry          -> MaxDaysPerStay (the limit resets each entry)
  everything else    -> MaxDaysPerPeriod, falling back to MaxDaysPerStay
                        when the period limit is unset

THRESHOLDS (inclusive, most specific wins):
  1. User-supplied thresholds on the custom policy
  2. per_entry fixed:  caution 60%, warning 80%, danger 95%
  3. period fixed:     caution 70%, warning 85%, danger 100%

  Percentages are computed in decimal arithmetic so the boundary cases
  (59.9% vs exactly 60%) compare exactly, never through float rounding.
*/
package compliance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Evaluate turns a Usage into a StayStatus under the resolved policy.
func Evaluate(usage Usage, resolved ResolvedPolicy, countryCode string) StayStatus {
	policy := resolved.Policy
	maxDays := EffectiveMaxDays(policy)

	remaining := maxDays - usage.DaysUsed
	if remaining < 0 {
		remaining = 0
	}

	return StayStatus{
		CountryCode:        countryCode,
		Method:             policy.Method,
		DaysUsed:           usage.DaysUsed,
		DaysRemaining:      remaining,
		MaxDaysPerStay:     policy.MaxDaysPerStay,
		MaxDaysPerPeriod:   policy.MaxDaysPerPeriod,
		CurrentPeriodStart: usage.PeriodStart,
		CurrentPeriodEnd:   usage.PeriodEnd,
		WarningLevel:       warningLevel(usage.DaysUsed, maxDays, thresholdsFor(resolved)),
	}
}

// EffectiveMaxDays selects the day limit the method accounts against.
func EffectiveMaxDays(policy CountryPolicy) int {
	if policy.Method == MethodPerEntry {
		return policy.MaxDaysPerStay
	}
	if policy.MaxDaysPerPeriod > 0 {
		return policy.MaxDaysPerPeriod
	}
	return policy.MaxDaysPerStay
}

func thresholdsFor(resolved ResolvedPolicy) WarningThresholds {
	if resolved.Custom != nil && resolved.Custom.Thresholds != nil {
		return *resolved.Custom.Thresholds
	}
	if resolved.Policy.Method == MethodPerEntry {
		return PerEntryThresholds
	}
	return PeriodThresholds
}

// warningLevel maps percentage-of-allowance-used to a level. Comparisons
// are inclusive: usage at exactly the caution percentage is caution.
func warningLevel(daysUsed, maxDays int, t WarningThresholds) WarningLevel {
	if maxDays <= 0 {
		// No limit to measure against (unlimited or misconfigured
		// arrangement): nothing to warn about.
		return LevelSafe
	}

	pct := decimal.NewFromInt(int64(daysUsed)).Mul(hundred).Div(decimal.NewFromInt(int64(maxDays)))

	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(t.DangerPct))):
		return LevelDanger
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(t.WarningPct))):
		return LevelWarning
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(t.CautionPct))):
		return LevelCaution
	default:
		return LevelSafe
	}
}
