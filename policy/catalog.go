/*
Package policy provides the country policy reference data.

PURPOSE:
  Holds the statically maintained accounting rules per country: base
  CountryPolicy entries, the predefined special-case table, and the
  per-country special-visa lists. The engine consumes all of it through
  the compliance.Catalog interface, so tests can substitute synthetic
  tables and the built-in data stays an immutable singleton.

DATA MAINTENANCE:
  Visa rules change. The built-in tables are a best-effort snapshot of
  common visa-free arrangements; deployments that need current or
  extended data load a JSON document over them (factory.go) instead of
  editing code.

KEY CONCEPTS:
  - Catalog: immutable map-backed compliance.Catalog implementation
  - Builtin(): the default table, constructed once
  - Schengen: member states share one rolling 90-in-180 policy shape

SEE ALSO:
  - factory.go: JSON to policy table conversion
  - compliance/resolver.go: precedence between the catalog layers
*/
package policy

import (
	"github.com/taco0513/dinotrack/compliance"
)

// =============================================================================
// CATALOG - Immutable compliance.Catalog implementation
// =============================================================================

// Catalog is a map-backed policy table. Construct via Builtin or the
// factory's ParseCatalog; treat as read-only afterwards.
type Catalog struct {
	base       map[string]compliance.CountryPolicy
	predefined map[string]compliance.CustomStayPolicy
	visas      map[string][]compliance.CustomStayPolicy
}

// BasePolicy returns the base policy for a country, or nil when the
// country is not in the table.
func (c *Catalog) BasePolicy(countryCode string) *compliance.CountryPolicy {
	if p, ok := c.base[countryCode]; ok {
		return &p
	}
	return nil
}

// PredefinedSpecialCase returns the built-in special arrangement for a
// country, or nil.
func (c *Catalog) PredefinedSpecialCase(countryCode string) *compliance.CustomStayPolicy {
	if p, ok := c.predefined[countryCode]; ok {
		return &p
	}
	return nil
}

// SpecialVisaPolicies returns the country's special-visa arrangements.
func (c *Catalog) SpecialVisaPolicies(countryCode string) []compliance.CustomStayPolicy {
	return c.visas[countryCode]
}

// Countries lists every country with a base policy.
func (c *Catalog) Countries() []string {
	codes := make([]string, 0, len(c.base))
	for code := range c.base {
		codes = append(codes, code)
	}
	return codes
}

// =============================================================================
// BUILT-IN TABLE
// =============================================================================

// SchengenMembers are the states sharing the 90-in-180 rolling rule.
var SchengenMembers = []string{
	"AT", "BE", "BG", "CH", "CZ", "DE", "DK", "EE", "ES", "FI", "FR",
	"GR", "HR", "HU", "IS", "IT", "LI", "LT", "LU", "LV", "MT", "NL",
	"NO", "PL", "PT", "RO", "SE", "SI", "SK",
}

// Builtin returns the default policy table. Construct once at startup
// and share; the catalog is never mutated after this returns.
func Builtin() *Catalog {
	base := make(map[string]compliance.CountryPolicy)

	for _, code := range SchengenMembers {
		base[code] = compliance.CountryPolicy{
			CountryCode:      code,
			Method:           compliance.MethodRollingWindow,
			MaxDaysPerStay:   90,
			MaxDaysPerPeriod: 90,
			PeriodDays:       180,
			Description:      "Schengen Area: 90 days in any 180-day period, counted across all member states.",
			Restrictions: []string{
				"Days in any Schengen member state count against the shared 90-day allowance.",
			},
		}
	}

	base["JP"] = compliance.CountryPolicy{
		CountryCode:    "JP",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 90,
		Description:    "Japan visa exemption: 90 days per entry.",
		Restrictions: []string{
			"Frequent consecutive visa-free entries may be refused at immigration.",
		},
	}

	base["KR"] = compliance.CountryPolicy{
		CountryCode:    "KR",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 90,
		Description:    "South Korea visa exemption: 90 days per entry (K-ETA required for most nationalities).",
		Restrictions: []string{
			"K-ETA must be approved before boarding.",
		},
		NationalityOverrides: map[string]compliance.PolicyPatch{
			"CA": {MaxDaysPerStay: intp(180)},
		},
	}

	base["US"] = compliance.CountryPolicy{
		CountryCode:    "US",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 90,
		Description:    "US Visa Waiver Program: 90 days per entry under ESTA.",
		Restrictions: []string{
			"ESTA approval required before boarding.",
			"VWP stays cannot be extended or adjusted.",
		},
	}

	base["GB"] = compliance.CountryPolicy{
		CountryCode:    "GB",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 180,
		Description:    "United Kingdom visitor: up to 180 days per entry.",
		Restrictions: []string{
			"Repeated back-to-back visits may be treated as de facto residence.",
		},
	}

	base["TH"] = compliance.CountryPolicy{
		CountryCode:    "TH",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 30,
		Description:    "Thailand visa exemption: 30 days per entry for most nationalities.",
		NationalityOverrides: map[string]compliance.PolicyPatch{
			"KR": {MaxDaysPerStay: intp(90), Description: strp("Thailand-Korea bilateral agreement: 90 days per entry.")},
			"BR": {MaxDaysPerStay: intp(90)},
			"AR": {MaxDaysPerStay: intp(90)},
		},
		Restrictions: []string{
			"Land-border visa-exempt entries are limited to two per calendar year.",
		},
	}

	base["AU"] = compliance.CountryPolicy{
		CountryCode:      "AU",
		Method:           compliance.MethodEntryBased,
		MaxDaysPerStay:   90,
		MaxDaysPerPeriod: 90,
		Description:      "Australia ETA: visits of up to 3 months within the 12 months from first arrival.",
	}

	base["NZ"] = compliance.CountryPolicy{
		CountryCode:      "NZ",
		Method:           compliance.MethodEntryBased,
		MaxDaysPerStay:   90,
		MaxDaysPerPeriod: 180,
		Description:      "New Zealand NZeTA: up to 6 months total within 12 months of first arrival.",
	}

	base["CA"] = compliance.CountryPolicy{
		CountryCode:    "CA",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 180,
		Description:    "Canada visitor: up to 180 days per entry (eTA required for air arrival).",
	}

	base["MX"] = compliance.CountryPolicy{
		CountryCode:    "MX",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 180,
		Description:    "Mexico visitor (FMM): up to 180 days per entry, at immigration's discretion.",
	}

	base["AE"] = compliance.CountryPolicy{
		CountryCode:      "AE",
		Method:           compliance.MethodCalendarYear,
		MaxDaysPerStay:   90,
		MaxDaysPerPeriod: 180,
		Description:      "UAE visit visa: aggregate stay capped within the calendar year.",
	}

	base["SG"] = compliance.CountryPolicy{
		CountryCode:    "SG",
		Method:         compliance.MethodPerEntry,
		MaxDaysPerStay: 90,
		Description:    "Singapore visa-free visit: up to 90 days per entry.",
	}

	return &Catalog{
		base:       base,
		predefined: builtinSpecialCases(),
		visas:      builtinSpecialVisas(),
	}
}

// builtinSpecialCases is the predefined special-case table. Special
// cases (long-term-resident arrangements and the like) describe one
// deployment's traveler, so the built-in table ships empty; deployments
// load theirs from the JSON policy document (factory.go).
func builtinSpecialCases() map[string]compliance.CustomStayPolicy {
	return map[string]compliance.CustomStayPolicy{}
}

// builtinSpecialVisas is empty for the same reason as the special-case
// table: a special visa in the resolver's path supersedes the base
// policy, so listing one here would apply it to travelers who don't
// hold it. Deployments declare held visas in the JSON document.
func builtinSpecialVisas() map[string][]compliance.CustomStayPolicy {
	return map[string][]compliance.CustomStayPolicy{}
}

func intp(n int) *int    { return &n }
func strp(s string) *string { return &s }
