package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taco0513/dinotrack/compliance"
	"github.com/taco0513/dinotrack/policy"
)

const sampleDocument = `{
  "countries": [
    {
      "country_code": "VN",
      "method": "per_entry",
      "max_days_per_stay": 45,
      "description": "Vietnam visa exemption",
      "nationality_overrides": {
        "US": {"max_days_per_stay": 90}
      }
    },
    {
      "country_code": "FR",
      "method": "rolling_window",
      "max_days_per_period": 90
    }
  ],
  "special_cases": [
    {
      "id": "kr-long-term-resident",
      "label": "Korea long-term resident",
      "country_code": "KR",
      "method": "visa_validity",
      "max_days_per_period": 365,
      "valid_from": "2024-01-01",
      "valid_until": "2026-12-31",
      "required_documents": ["Alien Registration Card"]
    }
  ],
  "special_visas": [
    {
      "id": "jp-working-holiday",
      "country_code": "JP",
      "method": "visa_validity",
      "max_days_per_period": 365,
      "valid_from": "2024-04-01",
      "valid_until": "2025-03-31",
      "thresholds": {"caution_pct": 50, "warning_pct": 75, "danger_pct": 95}
    }
  ]
}`

func TestParseCatalog_DocumentOverlaysBuiltin(t *testing.T) {
	f := policy.NewFactory()

	catalog, err := f.ParseCatalog([]byte(sampleDocument), policy.Builtin())
	require.NoError(t, err)

	// New country added.
	vn := catalog.BasePolicy("VN")
	require.NotNil(t, vn)
	assert.Equal(t, 45, vn.MaxDaysPerStay)
	assert.Equal(t, 90, vn.ForNationality("US").MaxDaysPerStay)

	// Existing country replaced, and the rolling default filled in.
	fr := catalog.BasePolicy("FR")
	require.NotNil(t, fr)
	assert.Equal(t, 180, fr.PeriodDays, "rolling_window defaults period_days to 180")
	assert.Empty(t, fr.Restrictions, "document replaces the base entry outright")

	// Built-in countries not in the document survive.
	assert.NotNil(t, catalog.BasePolicy("JP"))

	// Special layers came through.
	kr := catalog.PredefinedSpecialCase("KR")
	require.NotNil(t, kr)
	assert.Equal(t, compliance.MethodVisaValidity, kr.Method)
	assert.Equal(t, []string{"Alien Registration Card"}, kr.RequiredDocuments)

	visas := catalog.SpecialVisaPolicies("JP")
	require.Len(t, visas, 1)
	require.NotNil(t, visas[0].Thresholds)
	assert.Equal(t, 75, visas[0].Thresholds.WarningPct)
}

func TestParseCatalog_ResolverPrecedenceEndToEnd(t *testing.T) {
	f := policy.NewFactory()
	catalog, err := f.ParseCatalog([]byte(sampleDocument), policy.Builtin())
	require.NoError(t, err)
	engine := compliance.NewEngine(catalog)

	// Inside the special-case validity window the predefined arrangement
	// beats Korea's base per-entry policy.
	resolved := engine.Resolve("KR", "US", nil, compliance.NewDate(2025, time.June, 1))
	require.NotNil(t, resolved)
	assert.Equal(t, compliance.SourcePredefined, resolved.Source)

	// After it expires the base policy is back.
	resolved = engine.Resolve("KR", "US", nil, compliance.NewDate(2027, time.June, 1))
	require.NotNil(t, resolved)
	assert.Equal(t, compliance.SourceBase, resolved.Source)
}

func TestParseCatalog_RejectsUnknownMethod(t *testing.T) {
	f := policy.NewFactory()
	_, err := f.ParseCatalog([]byte(`{"countries":[{"country_code":"XX","method":"lunar_cycle"}]}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method")
}

func TestParseCatalog_RejectsMissingCountryCode(t *testing.T) {
	f := policy.NewFactory()
	_, err := f.ParseCatalog([]byte(`{"countries":[{"method":"per_entry"}]}`), nil)
	require.Error(t, err)
}

func TestParseCustomPolicy_Validation(t *testing.T) {
	f := policy.NewFactory()

	// Inverted validity window.
	_, err := f.ParseCustomPolicy(policy.CustomPolicyJSON{
		CountryPolicyJSON: policy.CountryPolicyJSON{CountryCode: "JP", Method: "visa_validity"},
		ID:                "bad-window",
		ValidFrom:         "2025-01-01",
		ValidUntil:        "2024-01-01",
	})
	require.Error(t, err)

	// Descending thresholds.
	_, err = f.ParseCustomPolicy(policy.CustomPolicyJSON{
		CountryPolicyJSON: policy.CountryPolicyJSON{CountryCode: "JP", Method: "custom"},
		ID:                "bad-thresholds",
		Thresholds:        &policy.ThresholdsJSON{CautionPct: 80, WarningPct: 60, DangerPct: 95},
	})
	require.Error(t, err)
}
