/*
resolver.go - Policy precedence resolution

PURPOSE:
  Selects the single policy that governs a country/traveler/date triple.
  Exactly one policy wins per resolution, and which layer it came from is
  recorded so the choice is auditable.

PRECEDENCE (highest first):
  1. special_status   A user-specific arrangement active at the reference
                      date (validity bounds optional = open-ended).
  2. predefined       The built-in special-case table for the country
                      (e.g. long-term-resident arrangements).
  3. special_visa     The country's special-visa list, filtered to entries
                      valid at the reference date.
  4. base             The country's base policy, adjusted by the
                      nationality-specific patch when one exists.

  No base policy -> nil. Callers must treat nil as "policy unknown, needs
  manual review", never as an implicit zero- or infinite-day allowance.

CATALOG:
  The tables behind layers 2-4 live behind the Catalog interface. The
  built-in catalog (policy package) is loaded once at startup and never
  mutated; tests inject synthetic catalogs.
*/
package compliance

// =============================================================================
// CATALOG - Read-only policy reference data
// =============================================================================

// Catalog provides the static policy tables. Implementations must be
// read-only after construction: the engine calls them concurrently.
type Catalog interface {
	// BasePolicy returns the country's base policy, or nil when the
	// country is unknown.
	BasePolicy(countryCode string) *CountryPolicy

	// PredefinedSpecialCase returns the built-in special-case arrangement
	// for the country, or nil.
	PredefinedSpecialCase(countryCode string) *CustomStayPolicy

	// SpecialVisaPolicies returns the country's special-visa arrangements
	// (unfiltered; the resolver applies validity windows).
	SpecialVisaPolicies(countryCode string) []CustomStayPolicy
}

// =============================================================================
// RESOLUTION RESULT
// =============================================================================

// PolicySource names the precedence layer a resolution came from.
type PolicySource string

const (
	SourceSpecialStatus PolicySource = "special_status"
	SourcePredefined    PolicySource = "predefined"
	SourceSpecialVisa   PolicySource = "special_visa"
	SourceBase          PolicySource = "base"
)

// ResolvedPolicy is the winning policy plus where it came from. Custom is
// non-nil for the three special layers; accounting then goes through
// AccumulateCustom instead of the generic calculator.
type ResolvedPolicy struct {
	Policy CountryPolicy
	Custom *CustomStayPolicy
	Source PolicySource
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver selects the applicable policy from the catalog and the
// traveler's own special statuses.
type Resolver struct {
	Catalog Catalog
}

// Resolve returns the winning policy for a country/traveler/date, or nil
// when no policy exists for the country.
func (r *Resolver) Resolve(countryCode, nationality string, specialStatuses []CustomStayPolicy, ref Date) *ResolvedPolicy {
	// 1. User-specific special status active at ref.
	for i := range specialStatuses {
		s := specialStatuses[i]
		if s.CountryCode == countryCode && s.ActiveAt(ref) {
			return &ResolvedPolicy{Policy: s.CountryPolicy, Custom: &s, Source: SourceSpecialStatus}
		}
	}

	if r.Catalog == nil {
		return nil
	}

	// 2. Predefined special-case table.
	if pre := r.Catalog.PredefinedSpecialCase(countryCode); pre != nil && pre.ActiveAt(ref) {
		c := *pre
		return &ResolvedPolicy{Policy: c.CountryPolicy, Custom: &c, Source: SourcePredefined}
	}

	// 3. Special-visa list filtered to entries valid at ref.
	for _, visa := range r.Catalog.SpecialVisaPolicies(countryCode) {
		if visa.ActiveAt(ref) {
			c := visa
			return &ResolvedPolicy{Policy: c.CountryPolicy, Custom: &c, Source: SourceSpecialVisa}
		}
	}

	// 4. Base policy, patched for the traveler's nationality.
	base := r.Catalog.BasePolicy(countryCode)
	if base == nil {
		return nil
	}
	policy := base.ForNationality(nationality)
	return &ResolvedPolicy{Policy: policy, Source: SourceBase}
}
