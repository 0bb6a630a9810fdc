/*
Package compliance implements the stay compliance engine.

PURPOSE:
  Given a traveler's recorded border crossings and a country's accounting
  policy, the engine computes days used, days remaining, a warning level,
  and violations - and can pre-validate a hypothetical future trip before
  it is booked. Four materially different government accounting algorithms
  are supported (independent per-entry reset, calendar-year quota, anchored
  365-day window, and rolling look-back window as used by 90/180 rules),
  plus a policy-override layer for user-specific special arrangements.

KEY CONCEPTS IN THIS FILE (types.go):
  - StayRecord: A contiguous period of presence in one country
  - CalculationMethod: Closed enum of accounting algorithms
  - StayStatus: Computed usage state for one country
  - StayViolation: A breached limit, with severity and days over
  - CountryTrackerResult: The full per-country pipeline output

DESIGN PRINCIPLES:
  1. Purity: every function takes immutable inputs and returns fresh
     results. No I/O, no clocks, no hidden state - safe to call
     concurrently without locks.
  2. Exhaustiveness: method dispatch switches over every CalculationMethod
     variant explicitly; a new method cannot silently fall through.
  3. One counting primitive: all methods count days with InclusiveDays
     (date.go), so rounding semantics are identical everywhere.
  4. Typed absence: an unknown country policy is a nil resolution, never a
     zero- or infinite-day default.

SEE ALSO:
  - policy.go: CountryPolicy, override patches, custom policies
  - calculator.go: the per-method day accounting
  - evaluator.go: warning levels and thresholds
  - tracker.go: the multi-country pipeline
*/
package compliance

// =============================================================================
// CALCULATION METHOD - Closed enum of accounting algorithms
// =============================================================================

// CalculationMethod identifies which government accounting algorithm
// applies. The set is closed: dispatch sites switch over every variant.
type CalculationMethod string

const (
	// MethodPerEntry resets the allowance fully on every new entry.
	MethodPerEntry CalculationMethod = "per_entry"

	// MethodCalendarYear caps total days within Jan 1 - Dec 31.
	MethodCalendarYear CalculationMethod = "calendar_year"

	// MethodEntryBased caps days within a single fixed 365-day window
	// anchored at the first-ever entry to the country.
	MethodEntryBased CalculationMethod = "entry_based"

	// MethodRollingWindow caps days within a look-back window ending at
	// the reference date (e.g. the Schengen 90-in-180 rule).
	MethodRollingWindow CalculationMethod = "rolling_window"

	// MethodVisaValidity accounts days within a visa's validity window.
	// Only computable through a custom policy that carries the window.
	MethodVisaValidity CalculationMethod = "visa_validity"

	// MethodCustom marks arrangements with no generic calculation.
	MethodCustom CalculationMethod = "custom"
)

// KnownMethod reports whether m is one of the defined variants.
func KnownMethod(m CalculationMethod) bool {
	switch m {
	case MethodPerEntry, MethodCalendarYear, MethodEntryBased,
		MethodRollingWindow, MethodVisaValidity, MethodCustom:
		return true
	}
	return false
}

// DefaultRollingPeriodDays is the look-back length used when a
// rolling_window policy does not specify one (the Schengen 180).
const DefaultRollingPeriodDays = 180

// =============================================================================
// STAY RECORD - A contiguous presence in one country
// =============================================================================

// StayRecord is one border-crossing interval. Records are immutable once
// confirmed; the only permitted mutation is filling ExitDate on return.
type StayRecord struct {
	ID          string
	CountryCode string
	EntryDate   Date
	ExitDate    *Date // nil = still in the country
	Purpose     string
}

// Ongoing reports whether the traveler has not yet exited.
func (s StayRecord) Ongoing() bool { return s.ExitDate == nil }

// WellFormed reports whether the record can be accounted. A stay whose
// exit precedes its entry is excluded from every calculation rather than
// producing negative day counts.
func (s StayRecord) WellFormed() bool {
	return s.ExitDate == nil || s.EntryDate.BeforeOrEqual(*s.ExitDate)
}

// Covers reports whether the traveler was in the country on ref.
func (s StayRecord) Covers(ref Date) bool {
	if s.EntryDate.After(ref) {
		return false
	}
	return s.ExitDate == nil || s.ExitDate.AfterOrEqual(ref)
}

// exitOr returns the exit date, or fallback for an ongoing stay.
func (s StayRecord) exitOr(fallback Date) Date {
	if s.ExitDate == nil {
		return fallback
	}
	return *s.ExitDate
}

// Duration is the inclusive day span of the stay, counting an ongoing stay
// up to asOf.
func (s StayRecord) Duration(asOf Date) int {
	return InclusiveDays(s.EntryDate, s.exitOr(asOf))
}

// =============================================================================
// WARNING LEVEL - Coarse severity bucket from percentage of allowance used
// =============================================================================

type WarningLevel string

const (
	LevelSafe    WarningLevel = "safe"
	LevelCaution WarningLevel = "caution"
	LevelWarning WarningLevel = "warning"
	LevelDanger  WarningLevel = "danger"
)

// =============================================================================
// STATUS, VIOLATIONS, RESULT
// =============================================================================

// StayStatus is the computed usage state for one country.
type StayStatus struct {
	CountryCode        string
	Method             CalculationMethod
	DaysUsed           int
	DaysRemaining      int
	MaxDaysPerStay     int
	MaxDaysPerPeriod   int
	CurrentPeriodStart *Date
	CurrentPeriodEnd   *Date
	WarningLevel       WarningLevel
}

// ViolationSeverity distinguishes an overstay from a gross overstay.
type ViolationSeverity string

const (
	SeverityMajor    ViolationSeverity = "major"
	SeverityCritical ViolationSeverity = "critical"
)

// ViolationTypeOverstay is the only violation type the engine emits today;
// the field is typed so ingestion-side violations can share the shape.
const ViolationTypeOverstay = "overstay"

// StayViolation reports a breached limit.
type StayViolation struct {
	Type        string
	Severity    ViolationSeverity
	Description string
	Date        Date
	DaysOver    int
}

// CountryTrackerResult aggregates the full pipeline output for a country.
type CountryTrackerResult struct {
	CountryCode     string
	Status          StayStatus
	Stays           []StayRecord
	Violations      []StayViolation
	Recommendations []string
	PolicySource    PolicySource
}

/// UserProfile carries the traveler attributes the engine reads: their
// nationality (for nationality-specific policy patches) and any special
// arrangements that override generic country policies.
type UserProfile struct {
	Nationality     string
	SpecialStatuses []CustomStayPolicy
}
