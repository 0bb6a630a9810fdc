/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	travel histories for testing and demos. Each scenario creates stays, a
	profile, and sometimes special statuses that demonstrate a specific
	accounting method.

AVAILABLE SCENARIOS:

	digital-nomad:     Schengen rolling window, approaching the 90-day limit
	schengen-overstay: Rolling window already exceeded (violation + recovery)
	asia-hopper:       Per-entry resets across JP/TH/SG
	working-holiday:   Special status (visa_validity) overriding AU's base rule

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save the traveler profile
 3. Insert stays relative to today so the numbers stay live
 4. Optionally register special statuses

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "digital-nomad"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - policy/catalog.go: The built-in rules these scenarios exercise
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/taco0513/dinotrack/compliance"
	"github.com/taco0513/dinotrack/policy"
	"github.com/taco0513/dinotrack/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "digital-nomad",
		Name:        "Digital Nomad",
		Description: "Schengen rolling window with 80 of 90 days used",
		Category:    "rolling_window",
	},
	{
		ID:          "schengen-overstay",
		Name:        "Schengen Overstay",
		Description: "Rolling window exceeded, showing violation and recovery date",
		Category:    "rolling_window",
	},
	{
		ID:          "asia-hopper",
		Name:        "Asia Hopper",
		Description: "Per-entry resets across Japan, Thailand, and Singapore",
		Category:    "per_entry",
	},
	{
		ID:          "working-holiday",
		Name:        "Working Holiday",
		Description: "Visa-validity special status overriding Australia's entry-based rule",
		Category:    "special_status",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "digital-nomad":
		err = h.loadDigitalNomadScenario(ctx)
	case "schengen-overstay":
		err = h.loadSchengenOverstayScenario(ctx)
	case "asia-hopper":
		err = h.loadAsiaHopperScenario(ctx)
	case "working-holiday":
		err = h.loadWorkingHolidayScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadDigitalNomadScenario: three Schengen trips in the last 180 days
// totaling 80 of 90 rolling-window days. The overview should show a
// warning-level status without any violation.
func (h *Handler) loadDigitalNomadScenario(ctx context.Context) error {
	today := compliance.Today()

	if err := h.Store.SaveProfile(ctx, sqlite.Profile{Nationality: "US"}); err != nil {
		return err
	}

	trips := []struct {
		country     string
		startOffset int // days before today
		days        int
		purpose     string
	}{
		{"PT", 170, 30, "remote work"},
		{"ES", 120, 30, "remote work"},
		{"FR", 25, 20, "remote work"},
	}
	for _, t := range trips {
		if err := h.saveTrip(ctx, t.country, today.AddDays(-t.startOffset), t.days, t.purpose); err != nil {
			return err
		}
	}
	return nil
}

// loadSchengenOverstayScenario: a single 100-day ongoing stay, 10 days
// over the rolling allowance. Shows the violation and the recovery date.
func (h *Handler) loadSchengenOverstayScenario(ctx context.Context) error {
	today := compliance.Today()

	if err := h.Store.SaveProfile(ctx, sqlite.Profile{Nationality: "US"}); err != nil {
		return err
	}

	// Ongoing: entered 99 days ago, still in country (100 inclusive days).
	return h.Store.SaveStay(ctx, compliance.StayRecord{
		ID:          uuid.NewString(),
		CountryCode: "DE",
		EntryDate:   today.AddDays(-99),
		Purpose:     "extended stay",
	})
}

// loadAsiaHopperScenario: repeated short entries where every border
// crossing resets the per-entry clock.
func (h *Handler) loadAsiaHopperScenario(ctx context.Context) error {
	today := compliance.Today()

	if err := h.Store.SaveProfile(ctx, sqlite.Profile{Nationality: "US"}); err != nil {
		return err
	}

	trips := []struct {
		country     string
		startOffset int
		days        int
		purpose     string
	}{
		{"JP", 200, 85, "tourism"},
		{"TH", 110, 25, "tourism"},
		{"SG", 80, 10, "tourism"},
		{"JP", 60, 40, "tourism"},
	}
	for _, t := range trips {
		if err := h.saveTrip(ctx, t.country, today.AddDays(-t.startOffset), t.days, t.purpose); err != nil {
			return err
		}
	}

	// Currently back in Japan, 15 days into a fresh entry.
	return h.Store.SaveStay(ctx, compliance.StayRecord{
		ID:          uuid.NewString(),
		CountryCode: "JP",
		EntryDate:   today.AddDays(-14),
		Purpose:     "tourism",
	})
}

// loadWorkingHolidayScenario: a visa-validity special status for AU that
// overrides the entry-based base rule for this traveler only.
func (h *Handler) loadWorkingHolidayScenario(ctx context.Context) error {
	today := compliance.Today()

	if err := h.Store.SaveProfile(ctx, sqlite.Profile{Nationality: "KR"}); err != nil {
		return err
	}

	validFrom := today.AddDays(-120)
	validUntil := validFrom.AddDays(364)

	config := policy.CustomPolicyJSON{
		CountryPolicyJSON: policy.CountryPolicyJSON{
			CountryCode:      "AU",
			Method:           string(compliance.MethodVisaValidity),
			MaxDaysPerPeriod: 365,
			Description:      "Working Holiday visa (subclass 417)",
		},
		ID:                uuid.NewString(),
		Label:             "Working Holiday Visa",
		ValidFrom:         validFrom.String(),
		ValidUntil:        validUntil.String(),
		RequiredDocuments: []string{"passport", "visa grant notice"},
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return err
	}

	if err := h.Store.SaveSpecialStatus(ctx, sqlite.SpecialStatusRecord{
		ID:          config.ID,
		CountryCode: "AU",
		Label:       config.Label,
		ConfigJSON:  string(configJSON),
	}); err != nil {
		return err
	}

	// In Australia since the visa started.
	return h.Store.SaveStay(ctx, compliance.StayRecord{
		ID:          uuid.NewString(),
		CountryCode: "AU",
		EntryDate:   validFrom,
		Purpose:     "working holiday",
	})
}

// saveTrip inserts a closed stay of the given inclusive length.
func (h *Handler) saveTrip(ctx context.Context, country string, entry compliance.Date, days int, purpose string) error {
	exit := entry.AddDays(days - 1)
	return h.Store.SaveStay(ctx, compliance.StayRecord{
		ID:          uuid.NewString(),
		CountryCode: country,
		EntryDate:   entry,
		ExitDate:    &exit,
		Purpose:     purpose,
	})
}
