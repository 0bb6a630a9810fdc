/*
scenarios_test.go - Tests for demo scenario loading

Tests for:
- Scenario listing and current-scenario tracking
- Loading each scenario and inspecting the resulting overview
*/
package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taco0513/dinotrack/compliance"
)

func TestListScenarios(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]ScenarioDTO](t, rec)
	require.Len(t, list, 4)

	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	assert.Contains(t, ids, "digital-nomad")
	assert.Contains(t, ids, "schengen-overstay")
	assert.Contains(t, ids, "asia-hopper")
	assert.Contains(t, ids, "working-holiday")
}

func TestLoadScenario_Unknown(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "time-machine"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadScenario_DigitalNomad(t *testing.T) {
	// GIVEN: The digital nomad scenario (80 Schengen days in the window)
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "digital-nomad"})
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN: Asking for the overview as of today
	rec = doJSON(t, router, http.MethodGet, "/api/compliance/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode[OverviewResponse](t, rec)

	// THEN: Each visited member state reports its in-window days; none of
	// the three trips exceeds the allowance on its own
	require.Contains(t, overview.Countries, "FR")
	fr := overview.Countries["FR"]
	assert.Equal(t, 20, fr.Status.DaysUsed)
	assert.Empty(t, fr.Violations)
}

func TestLoadScenario_SchengenOverstay(t *testing.T) {
	// GIVEN: A 100-day ongoing stay in Germany
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "schengen-overstay"})
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN: Asking for the overview
	rec = doJSON(t, router, http.MethodGet, "/api/compliance/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode[OverviewResponse](t, rec)

	// THEN: 100 of 90 days used, a violation, and the danger level
	require.Contains(t, overview.Countries, "DE")
	de := overview.Countries["DE"]
	assert.Equal(t, 100, de.Status.DaysUsed)
	assert.Equal(t, string(compliance.LevelDanger), de.Status.WarningLevel)
	require.NotEmpty(t, de.Violations)
	assert.Equal(t, 10, de.Violations[0].DaysOver)
}

func TestLoadScenario_WorkingHoliday(t *testing.T) {
	// GIVEN: The working holiday scenario (visa-validity special status)
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "working-holiday"})
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN: Asking for the overview
	rec = doJSON(t, router, http.MethodGet, "/api/compliance/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode[OverviewResponse](t, rec)

	// THEN: The special status resolves for Australia
	require.Contains(t, overview.Countries, "AU")
	au := overview.Countries["AU"]
	assert.Equal(t, string(compliance.SourceSpecialStatus), au.PolicySource)
	assert.Equal(t, "visa_validity", au.Status.Method)
	assert.Equal(t, 121, au.Status.DaysUsed)
}

func TestCurrentScenario_Tracking(t *testing.T) {
	_, router := newTestRouter(t)

	// Nothing loaded yet
	rec := doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "asia-hopper"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[ScenarioDTO](t, rec)
	assert.Equal(t, "asia-hopper", current.ID)

	// Reset clears the tracked scenario
	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}
