/*
factory.go - JSON to policy table conversion

PURPOSE:
  Converts JSON policy documents into compliance policies and catalogs.
  This enables policy maintenance without code changes - the country
  table is reference data that changes when governments change rules,
  and a deployment's special cases are its own data, not the module's.

JSON SCHEMA:
  {
    "countries": [
      {
        "country_code": "FR",
        "method": "rolling_window",
        "max_days_per_stay": 90,
        "max_days_per_period": 90,
        "period_days": 180,
        "nationality_overrides": {
          "KR": {"max_days_per_stay": 180}
        },
        "restrictions": ["..."],
        "description": "..."
      }
    ],
    "special_cases": [ <custom policy> ],
    "special_visas": [ <custom policy> ]
  }

  <custom policy> adds to the country fields:
    "id", "label", "valid_from", "valid_until" (ISO dates),
    "required_documents": [...],
    "thresholds": {"caution_pct": 50, "warning_pct": 70, "danger_pct": 90}

KEY FEATURES:
  - Validates method names against the closed enum
  - Applies the rolling-window default period
  - Parsed documents overlay the built-in table, country by country

USAGE:
  f := policy.NewFactory()
  catalog, err := f.ParseCatalog(jsonBytes, policy.Builtin())

SEE ALSO:
  - catalog.go: the Catalog type and built-in table
  - compliance/policy.go: the policy types being produced
*/
package policy

import (
	"encoding/json"
	"fmt"

	"github.com/taco0513/dinotrack/compliance"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CountryPolicyJSON is the JSON representation of a base policy.
type CountryPolicyJSON struct {
	CountryCode          string                     `json:"country_code"`
	Method               string                     `json:"method"`
	MaxDaysPerStay       int                        `json:"max_days_per_stay,omitempty"`
	MaxDaysPerPeriod     int                        `json:"max_days_per_period,omitempty"`
	PeriodDays           int                        `json:"period_days,omitempty"`
	NationalityOverrides map[string]PolicyPatchJSON `json:"nationality_overrides,omitempty"`
	Restrictions         []string                   `json:"restrictions,omitempty"`
	Description          string                     `json:"description,omitempty"`
}

// PolicyPatchJSON is a partial policy adjustment.
type PolicyPatchJSON struct {
	Method           *string  `json:"method,omitempty"`
	MaxDaysPerStay   *int     `json:"max_days_per_stay,omitempty"`
	MaxDaysPerPeriod *int     `json:"max_days_per_period,omitempty"`
	PeriodDays       *int     `json:"period_days,omitempty"`
	Restrictions     []string `json:"restrictions,omitempty"`
	Description      *string  `json:"description,omitempty"`
}

// CustomPolicyJSON is the JSON representation of a custom arrangement.
type CustomPolicyJSON struct {
	CountryPolicyJSON

	ID                string          `json:"id"`
	Label             string          `json:"label,omitempty"`
	ValidFrom         string          `json:"valid_from,omitempty"`
	ValidUntil        string          `json:"valid_until,omitempty"`
	RequiredDocuments []string        `json:"required_documents,omitempty"`
	Thresholds        *ThresholdsJSON `json:"thresholds,omitempty"`
}

// ThresholdsJSON carries user-supplied warning thresholds.
type ThresholdsJSON struct {
	CautionPct int `json:"caution_pct"`
	WarningPct int `json:"warning_pct"`
	DangerPct  int `json:"danger_pct"`
}

// CatalogJSON is a full policy document.
type CatalogJSON struct {
	Countries    []CountryPolicyJSON `json:"countries"`
	SpecialCases []CustomPolicyJSON  `json:"special_cases,omitempty"`
	SpecialVisas []CustomPolicyJSON  `json:"special_visas,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON policy documents into compliance types.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

// ParseCatalog parses a policy document and overlays it on base
// (country by country; documents replace, never merge, a country's base
// entry). base may be nil for a document-only catalog.
func (f *Factory) ParseCatalog(data []byte, base *Catalog) (*Catalog, error) {
	var doc CatalogJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}

	catalog := &Catalog{
		base:       make(map[string]compliance.CountryPolicy),
		predefined: make(map[string]compliance.CustomStayPolicy),
		visas:      make(map[string][]compliance.CustomStayPolicy),
	}
	if base != nil {
		for code, p := range base.base {
			catalog.base[code] = p
		}
		for code, p := range base.predefined {
			catalog.predefined[code] = p
		}
		for code, v := range base.visas {
			catalog.visas[code] = v
		}
	}

	for _, cj := range doc.Countries {
		policy, err := f.parseCountryPolicy(cj)
		if err != nil {
			return nil, err
		}
		catalog.base[policy.CountryCode] = policy
	}
	for _, sj := range doc.SpecialCases {
		custom, err := f.ParseCustomPolicy(sj)
		if err != nil {
			return nil, err
		}
		catalog.predefined[custom.CountryCode] = *custom
	}
	for _, vj := range doc.SpecialVisas {
		custom, err := f.ParseCustomPolicy(vj)
		if err != nil {
			return nil, err
		}
		catalog.visas[custom.CountryCode] = append(catalog.visas[custom.CountryCode], *custom)
	}

	return catalog, nil
}

func (f *Factory) parseCountryPolicy(cj CountryPolicyJSON) (compliance.CountryPolicy, error) {
	if cj.CountryCode == "" {
		return compliance.CountryPolicy{}, fmt.Errorf("policy missing country_code")
	}
	method := compliance.CalculationMethod(cj.Method)
	if !compliance.KnownMethod(method) {
		return compliance.CountryPolicy{}, fmt.Errorf("policy %s: unknown method %q", cj.CountryCode, cj.Method)
	}
	if cj.MaxDaysPerStay < 0 || cj.MaxDaysPerPeriod < 0 || cj.PeriodDays < 0 {
		return compliance.CountryPolicy{}, fmt.Errorf("policy %s: negative day limits", cj.CountryCode)
	}

	policy := compliance.CountryPolicy{
		CountryCode:      cj.CountryCode,
		Method:           method,
		MaxDaysPerStay:   cj.MaxDaysPerStay,
		MaxDaysPerPeriod: cj.MaxDaysPerPeriod,
		PeriodDays:       cj.PeriodDays,
		Restrictions:     cj.Restrictions,
		Description:      cj.Description,
	}
	if method == compliance.MethodRollingWindow && policy.PeriodDays == 0 {
		policy.PeriodDays = compliance.DefaultRollingPeriodDays
	}

	if len(cj.NationalityOverrides) > 0 {
		policy.NationalityOverrides = make(map[string]compliance.PolicyPatch, len(cj.NationalityOverrides))
		for nat, pj := range cj.NationalityOverrides {
			patch, err := f.parsePatch(cj.CountryCode, pj)
			if err != nil {
				return compliance.CountryPolicy{}, err
			}
			policy.NationalityOverrides[nat] = patch
		}
	}
	return policy, nil
}

func (f *Factory) parsePatch(countryCode string, pj PolicyPatchJSON) (compliance.PolicyPatch, error) {
	patch := compliance.PolicyPatch{
		MaxDaysPerStay:   pj.MaxDaysPerStay,
		MaxDaysPerPeriod: pj.MaxDaysPerPeriod,
		PeriodDays:       pj.PeriodDays,
		Restrictions:     pj.Restrictions,
		Description:      pj.Description,
	}
	if pj.Method != nil {
		method := compliance.CalculationMethod(*pj.Method)
		if !compliance.KnownMethod(method) {
			return compliance.PolicyPatch{}, fmt.Errorf("patch for %s: unknown method %q", countryCode, *pj.Method)
		}
		patch.Method = &method
	}
	return patch, nil
}

// ParseCustomPolicy converts a custom-policy JSON object. Also used by
// the API when a traveler registers a special status.
func (f *Factory) ParseCustomPolicy(cj CustomPolicyJSON) (*compliance.CustomStayPolicy, error) {
	base, err := f.parseCountryPolicy(cj.CountryPolicyJSON)
	if err != nil {
		return nil, err
	}

	custom := &compliance.CustomStayPolicy{
		CountryPolicy:     base,
		ID:                cj.ID,
		Label:             cj.Label,
		RequiredDocuments: cj.RequiredDocuments,
	}

	if cj.ValidFrom != "" {
		from, err := compliance.ParseDate(cj.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("custom policy %s: %w", cj.ID, err)
		}
		custom.ValidFrom = &from
	}
	if cj.ValidUntil != "" {
		until, err := compliance.ParseDate(cj.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("custom policy %s: %w", cj.ID, err)
		}
		custom.ValidUntil = &until
	}
	if custom.ValidFrom != nil && custom.ValidUntil != nil && custom.ValidUntil.Before(*custom.ValidFrom) {
		return nil, fmt.Errorf("custom policy %s: valid_until before valid_from", cj.ID)
	}

	if cj.Thresholds != nil {
		t := compliance.WarningThresholds{
			CautionPct: cj.Thresholds.CautionPct,
			WarningPct: cj.Thresholds.WarningPct,
			DangerPct:  cj.Thresholds.DangerPct,
		}
		if t.CautionPct <= 0 || t.WarningPct < t.CautionPct || t.DangerPct < t.WarningPct {
			return nil, fmt.Errorf("custom policy %s: thresholds must be positive and ascending", cj.ID)
		}
		custom.Thresholds = &t
	}

	return custom, nil
}
