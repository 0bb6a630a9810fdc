/*
policy.go - Country policies, override patches, and custom arrangements

PURPOSE:
  Defines the accounting rules a country applies to a traveler:
  which CalculationMethod, the per-stay and per-period day limits, and
  any restrictions. Policies are static reference data - loaded once,
  treated as immutable, and injected into the engine.

OVERRIDE LAYERS:
  Base policies can be adjusted two ways, both as explicit data:
  - PolicyPatch: a nationality-specific adjustment merged onto the base
    policy by Apply(). The merge is a pure function so precedence is
    auditable and testable independent of the accounting logic.
  - CustomStayPolicy: a full policy with a validity window, representing
    a user-specific or special-case arrangement (long-term residency,
    working-holiday visa). Supersedes the base policy while active.

SEE ALSO:
  - resolver.go: precedence between these layers
  - custom.go: accounting for custom policies (incl. visa_validity)
*/
package compliance

// =============================================================================
// COUNTRY POLICY - Base accounting rules for a country
// =============================================================================

// CountryPolicy is the generic accounting rule set for one country.
// Zero-valued optional fields mean "unset": MaxDaysPerPeriod 0 falls back
// to MaxDaysPerStay at evaluation, PeriodDays 0 uses the rolling default.
type CountryPolicy struct {
	CountryCode      string
	Method           CalculationMethod
	MaxDaysPerStay   int
	MaxDaysPerPeriod int
	PeriodDays       int

	// NationalityOverrides patches the base policy for specific passport
	// holders, keyed by ISO country code of the nationality.
	NationalityOverrides map[string]PolicyPatch

	Restrictions []string
	Description  string
}

// ForNationality returns the policy adjusted by the nationality-specific
// patch, if one exists. The receiver is never mutated.
func (p CountryPolicy) ForNationality(nationality string) CountryPolicy {
	patch, ok := p.NationalityOverrides[nationality]
	if !ok {
		return p
	}
	return Apply(p, patch)
}

// =============================================================================
// POLICY PATCH - Explicit base + override merge
// =============================================================================

// PolicyPatch is a partial policy: nil fields leave the base value alone.
type PolicyPatch struct {
	Method           *CalculationMethod
	MaxDaysPerStay   *int
	MaxDaysPerPeriod *int
	PeriodDays       *int
	Restrictions     []string // replaces the base list when non-nil
	Description      *string
}

// Apply merges a patch onto a base policy and returns the result. Pure:
// neither input is modified.
func Apply(base CountryPolicy, patch PolicyPatch) CountryPolicy {
	merged := base
	if patch.Method != nil {
		merged.Method = *patch.Method
	}
	if patch.MaxDaysPerStay != nil {
		merged.MaxDaysPerStay = *patch.MaxDaysPerStay
	}
	if patch.MaxDaysPerPeriod != nil {
		merged.MaxDaysPerPeriod = *patch.MaxDaysPerPeriod
	}
	if patch.PeriodDays != nil {
		merged.PeriodDays = *patch.PeriodDays
	}
	if patch.Restrictions != nil {
		merged.Restrictions = patch.Restrictions
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	return merged
}

// =============================================================================
// WARNING THRESHOLDS - Percentage cutoffs for warning levels
// =============================================================================

// WarningThresholds are the inclusive percentage cutoffs at which usage
// escalates. A custom policy may carry its own set; otherwise the
// evaluator applies the fixed defaults for the method.
type WarningThresholds struct {
	CautionPct int
	WarningPct int
	DangerPct  int
}

// Fixed threshold sets (evaluator.go). Per-entry policies warn earlier
// because the traveler controls the reset; period policies allow running
// the allowance to 100%.
var (
	PerEntryThresholds = WarningThresholds{CautionPct: 60, WarningPct: 80, DangerPct: 95}
	PeriodThresholds   = WarningThresholds{CautionPct: 70, WarningPct: 85, DangerPct: 100}
)

// =============================================================================
// CUSTOM STAY POLICY - User-specific or special-case arrangement
// =============================================================================

// CustomStayPolicy is a CountryPolicy with an activity window and the
// documents the arrangement requires. It models long-term-resident
// arrangements, working-holiday visas, and user-entered special statuses.
type CustomStayPolicy struct {
	CountryPolicy

	ID         string
	Label      string
	ValidFrom  *Date // nil = open-ended
	ValidUntil *Date // nil = open-ended

	RequiredDocuments []string

	// Thresholds, when set, replace the fixed warning thresholds.
	Thresholds *WarningThresholds
}

// ActiveAt reports whether the arrangement is in force on ref. Missing
// bounds are open-ended.
func (c CustomStayPolicy) ActiveAt(ref Date) bool {
	if c.ValidFrom != nil && ref.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && ref.After(*c.ValidUntil) {
		return false
	}
	return true
}

// ValidityWindow returns the [ValidFrom, ValidUntil] window when both
// bounds are present; ok is false otherwise.
func (c CustomStayPolicy) ValidityWindow() (Window, bool) {
	if c.ValidFrom == nil || c.ValidUntil == nil {
		return Window{}, false
	}
	return Window{Start: *c.ValidFrom, End: *c.ValidUntil}, true
}
