/*
calculator.go - Day accounting for every calculation method

PURPOSE:
  Computes how many allowance days a traveler has consumed in the period a
  policy defines. This is the core of the engine: each CalculationMethod
  variant maps to one accounting function, dispatched by an exhaustive
  switch so a new method cannot silently fall through to a wrong default.

METHOD SEMANTICS:
  per_entry       Only the stay covering the reference date counts; a
                  completed stay followed by a new entry resets usage.
  calendar_year   Sum of inclusive overlaps with Jan 1 - Dec 31 of the
                  reference date's year.
  entry_based     Sum of overlaps with a fixed 365-day window anchored at
                  the first-ever entry. The anchor never slides, and never
                  re-anchors after the window elapses.
  rolling_window  Sum of overlaps with the look-back window ending at the
                  reference date (90-in-180 style rules).
  visa_validity   Not generically computable: needs a policy validity
                  window. Handled in custom.go; zero usage here.
  custom          Same - zero usage from the generic path.

CLIPPING RULE (uniform across methods):
  effective start = max(stay.entry, window.start)
  effective end   = min(stay.exit ?? referenceDate, window.end)
  contribute InclusiveDays(start, end) only if start <= end

  Ongoing stays substitute the reference date for the missing exit.
  Malformed stays (exit < entry) are excluded entirely.

SEE ALSO:
  - custom.go: visa_validity and the conservative fallback path
  - date.go: InclusiveDays, Window
*/
package compliance

// =============================================================================
// USAGE - Calculator output
// =============================================================================

// Usage is what one accounting pass produces: days consumed, the period
// they were counted in (absent for methods without a fixed period), and
// the stays that contributed.
type Usage struct {
	DaysUsed      int
	PeriodStart   *Date
	PeriodEnd     *Date
	RelevantStays []StayRecord
}

// =============================================================================
// ACCUMULATE - Generic per-method dispatch
// =============================================================================

// Accumulate computes days used for countryCode under the given method.
// periodDays configures the rolling_window look-back; 0 applies
// DefaultRollingPeriodDays. Total for well-formed input: never fails,
// malformed stays are skipped.
func Accumulate(stays []StayRecord, countryCode string, method CalculationMethod, ref Date, periodDays int) Usage {
	countryStays := filterCountry(stays, countryCode)

	switch method {
	case MethodPerEntry:
		return accumulatePerEntry(countryStays, ref)

	case MethodCalendarYear:
		return accumulateWindow(countryStays, CalendarYearWindow(ref), ref)

	case MethodEntryBased:
		return accumulateEntryBased(countryStays, ref)

	case MethodRollingWindow:
		if periodDays <= 0 {
			periodDays = DefaultRollingPeriodDays
		}
		window := Window{Start: ref.AddDays(-(periodDays - 1)), End: ref}
		return accumulateWindow(countryStays, window, ref)

	case MethodVisaValidity, MethodCustom:
		// Not generically computable: these need the policy validity
		// window or bespoke rules, both carried only by custom policies.
		return Usage{}

	default:
		// Unknown method string from external data. Zero usage, no
		// period - the resolver validates methods before we get here.
		return Usage{}
	}
}

// =============================================================================
// PER-ENTRY - Allowance resets on every new entry
// =============================================================================

func accumulatePerEntry(stays []StayRecord, ref Date) Usage {
	current, ok := currentStay(stays, ref)
	if !ok {
		// Not in the country on ref: usage is zero by definition.
		return Usage{}
	}

	end := MinDate(current.exitOr(ref), ref)
	start := current.EntryDate
	return Usage{
		DaysUsed:      InclusiveDays(start, end),
		PeriodStart:   &start,
		RelevantStays: []StayRecord{current},
	}
}

// currentStay locates the single stay covering ref, if any.
func currentStay(stays []StayRecord, ref Date) (StayRecord, bool) {
	for _, s := range stays {
		if s.Covers(ref) {
			return s, true
		}
	}
	return StayRecord{}, false
}

// =============================================================================
// ENTRY-BASED - Fixed 365-day window anchored at the first-ever entry
// =============================================================================

func accumulateEntryBased(stays []StayRecord, ref Date) Usage {
	anchor, ok := firstEntry(stays)
	if !ok {
		return Usage{}
	}

	// Single fixed anchor: the window never slides and never restarts
	// after it elapses. Whether a new 365-day block should begin is a
	// pending product decision; until confirmed, usage outside the
	// window simply contributes nothing.
	window := Window{Start: anchor, End: anchor.AddDays(364)}
	return accumulateWindow(stays, window, ref)
}

func firstEntry(stays []StayRecord) (Date, bool) {
	var first Date
	found := false
	for _, s := range stays {
		if !s.WellFormed() {
			continue
		}
		if !found || s.EntryDate.Before(first) {
			first = s.EntryDate
			found = true
		}
	}
	return first, found
}

// =============================================================================
// WINDOW OVERLAP - Shared by calendar_year, entry_based, rolling_window
// =============================================================================

func accumulateWindow(stays []StayRecord, window Window, ref Date) Usage {
	total := 0
	var relevant []StayRecord
	for _, s := range stays {
		days := overlapDays(s, window, ref)
		if days > 0 {
			total += days
			relevant = append(relevant, s)
		}
	}
	start, end := window.Start, window.End
	return Usage{
		DaysUsed:      total,
		PeriodStart:   &start,
		PeriodEnd:     &end,
		RelevantStays: relevant,
	}
}

// overlapDays applies the uniform clipping rule for one stay.
func overlapDays(s StayRecord, window Window, ref Date) int {
	if !s.WellFormed() {
		return 0
	}
	effStart := MaxDate(s.EntryDate, window.Start)
	effEnd := MinDate(s.exitOr(ref), window.End)
	if effStart.After(effEnd) {
		return 0
	}
	return InclusiveDays(effStart, effEnd)
}

func filterCountry(stays []StayRecord, countryCode string) []StayRecord {
	var out []StayRecord
	for _, s := range stays {
		if s.CountryCode == countryCode {
			out = append(out, s)
		}
	}
	return out
}
