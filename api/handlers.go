/*
handlers.go - HTTP API handlers for the stay compliance engine

PURPOSE:
  Exposes the compliance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Compliance:
    POST   /api/compliance/status        Status for one country
    POST   /api/compliance/validate-trip Pre-validate a planned trip
    GET    /api/compliance/overview      Status for every tracked country

  Stays:
    GET    /api/stays                    List stay history
    POST   /api/stays                    Record a stay
    POST   /api/stays/{id}/close         Fill the exit date
    DELETE /api/stays/{id}               Remove a stay (corrections only)

  Policies:
    GET    /api/policies                 List built-in country policies
    GET    /api/policies/{code}          One country's policy

  Profile:
    GET    /api/profile                  Traveler profile
    PUT    /api/profile                  Set nationality
    GET    /api/profile/statuses         List special statuses
    POST   /api/profile/statuses         Register a special status
    DELETE /api/profile/statuses/{id}    Remove a special status

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/load           Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Catalog/Engine: Policy table and the pure compliance pipeline
  - Factory: JSON to policy conversion for special statuses

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Assemble stays + profile from the store
  4. Call the engine
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, malformed stays
  - 404: Resource not found, unresolvable country policy
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taco0513/dinotrack/compliance"
	"github.com/taco0513/dinotrack/policy"
	"github.com/taco0513/dinotrack/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Catalog *policy.Catalog
	Engine  *compliance.Engine
	Factory *policy.Factory
	Logger  *zap.Logger
	Metrics *Metrics

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given store and catalog.
func NewHandler(store *sqlite.Store, catalog *policy.Catalog, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   store,
		Catalog: catalog,
		Engine:  compliance.NewEngine(catalog),
		Factory: policy.NewFactory(),
		Logger:  logger,
	}
}

// loadProfile assembles the engine's view of the traveler: nationality
// plus every parseable special status. Statuses with invalid config are
// skipped rather than failing the whole request.
func (h *Handler) loadProfile(ctx context.Context) (compliance.UserProfile, error) {
	var profile compliance.UserProfile

	p, err := h.Store.GetProfile(ctx)
	if err != nil {
		return profile, err
	}
	if p != nil {
		profile.Nationality = p.Nationality
	}

	records, err := h.Store.ListSpecialStatuses(ctx)
	if err != nil {
		return profile, err
	}
	for _, rec := range records {
		var cj policy.CustomPolicyJSON
		if err := json.Unmarshal([]byte(rec.ConfigJSON), &cj); err != nil {
			h.Logger.Warn("skipping special status with invalid config",
				zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		custom, err := h.Factory.ParseCustomPolicy(cj)
		if err != nil {
			h.Logger.Warn("skipping unparseable special status",
				zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		if custom.ID == "" {
			custom.ID = rec.ID
		}
		profile.SpecialStatuses = append(profile.SpecialStatuses, *custom)
	}
	return profile, nil
}

func (h *Handler) referenceDate(raw string) (compliance.Date, error) {
	if raw == "" {
		return compliance.Today(), nil
	}
	return compliance.ParseDate(raw)
}

// =============================================================================
// COMPLIANCE HANDLERS
// =============================================================================

// CountryStatus computes the compliance status for one country.
func (h *Handler) CountryStatus(w http.ResponseWriter, r *http.Request) {
	var req CountryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CountryCode == "" {
		writeError(w, http.StatusBadRequest, "country_code is required", nil)
		return
	}

	ref, err := h.referenceDate(req.ReferenceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference_date format (use YYYY-MM-DD)", err)
		return
	}

	stays, profile, err := h.loadWorld(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load traveler data", err)
		return
	}

	result := h.Engine.EvaluateCountry(stays, req.CountryCode, profile, ref)
	if result == nil {
		writeError(w, http.StatusNotFound,
			(&compliance.PolicyUnknownError{CountryCode: req.CountryCode}).Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, toCountryResultDTO(result))
}

// ValidateTrip pre-validates a planned future trip.
func (h *Handler) ValidateTrip(w http.ResponseWriter, r *http.Request) {
	var req ValidateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CountryCode == "" {
		writeError(w, http.StatusBadRequest, "country_code is required", nil)
		return
	}

	entry, err := compliance.ParseDate(req.EntryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry_date format (use YYYY-MM-DD)", err)
		return
	}
	exit, err := compliance.ParseDate(req.ExitDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exit_date format (use YYYY-MM-DD)", err)
		return
	}

	stays, profile, err := h.loadWorld(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load traveler data", err)
		return
	}

	validation := h.Engine.ValidateFutureTrip(stays, req.CountryCode, entry, exit, profile)
	if h.Metrics != nil {
		h.Metrics.ObserveTripValidation(validation.IsValid)
	}

	dto := TripValidationDTO{
		IsValid:       validation.IsValid,
		RemainingDays: validation.RemainingDays,
		Message:       validation.Message,
		Violations:    toViolationDTOs(validation.Violations),
	}
	if validation.Result != nil {
		result := toCountryResultDTO(validation.Result)
		dto.Result = &result
	}

	writeJSON(w, http.StatusOK, dto)
}

// Overview computes the compliance status for every tracked country.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ref, err := h.referenceDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	stays, profile, err := h.loadWorld(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load traveler data", err)
		return
	}

	results := h.Engine.EvaluateAll(stays, profile, ref)
	countries := make(map[string]CountryResultDTO, len(results))
	for code, result := range results {
		countries[code] = toCountryResultDTO(result)
	}

	writeJSON(w, http.StatusOK, OverviewResponse{
		ReferenceDate: ref.String(),
		Countries:     countries,
	})
}

func (h *Handler) loadWorld(ctx context.Context) ([]compliance.StayRecord, compliance.UserProfile, error) {
	stays, err := h.Store.ListStays(ctx)
	if err != nil {
		return nil, compliance.UserProfile{}, err
	}
	profile, err := h.loadProfile(ctx)
	if err != nil {
		return nil, compliance.UserProfile{}, err
	}
	return stays, profile, nil
}

// =============================================================================
// STAY HANDLERS
// =============================================================================

// ListStays returns the stay history.
func (h *Handler) ListStays(w http.ResponseWriter, r *http.Request) {
	stays, err := h.Store.ListStays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list stays", err)
		return
	}

	dtos := make([]StayDTO, len(stays))
	for i, s := range stays {
		dtos[i] = toStayDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStay records a stay.
func (h *Handler) CreateStay(w http.ResponseWriter, r *http.Request) {
	var req CreateStayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CountryCode == "" {
		writeError(w, http.StatusBadRequest, "country_code is required", nil)
		return
	}

	entry, err := compliance.ParseDate(req.EntryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry_date format (use YYYY-MM-DD)", err)
		return
	}

	stay := compliance.StayRecord{
		ID:          uuid.NewString(),
		CountryCode: req.CountryCode,
		EntryDate:   entry,
		Purpose:     req.Purpose,
	}
	if req.ExitDate != "" {
		exit, err := compliance.ParseDate(req.ExitDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid exit_date format (use YYYY-MM-DD)", err)
			return
		}
		stay.ExitDate = &exit
	}

	if err := h.Store.SaveStay(r.Context(), stay); err != nil {
		var malformed *compliance.MalformedStayError
		if errors.As(err, &malformed) {
			writeError(w, http.StatusBadRequest, "Exit date precedes entry date", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save stay", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStayDTO(stay))
}

// CloseStay fills the exit date of an ongoing stay.
func (h *Handler) CloseStay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CloseStayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	exit, err := compliance.ParseDate(req.ExitDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exit_date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.CloseStay(r.Context(), id, exit); err != nil {
		switch {
		case errors.Is(err, compliance.ErrStayNotFound):
			writeError(w, http.StatusNotFound, "Stay not found", nil)
		default:
			var malformed *compliance.MalformedStayError
			if errors.As(err, &malformed) {
				writeError(w, http.StatusBadRequest, "Exit date precedes entry date", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to close stay", err)
		}
		return
	}

	stay, err := h.Store.GetStay(r.Context(), id)
	if err != nil || stay == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload stay", err)
		return
	}
	writeJSON(w, http.StatusOK, toStayDTO(*stay))
}

// DeleteStay removes a stay record.
func (h *Handler) DeleteStay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteStay(r.Context(), id); err != nil {
		if errors.Is(err, compliance.ErrStayNotFound) {
			writeError(w, http.StatusNotFound, "Stay not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete stay", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns every built-in country policy.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	codes := h.Catalog.Countries()
	sort.Strings(codes)

	dtos := make([]PolicyDTO, 0, len(codes))
	for _, code := range codes {
		if p := h.Catalog.BasePolicy(code); p != nil {
			dtos = append(dtos, toPolicyDTO(*p))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPolicy returns one country's policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	p := h.Catalog.BasePolicy(code)
	if p == nil {
		writeError(w, http.StatusNotFound,
			(&compliance.PolicyUnknownError{CountryCode: code}).Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(*p))
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// GetProfile returns the traveler profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProfile(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get profile", err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusOK, ProfileDTO{})
		return
	}
	writeJSON(w, http.StatusOK, ProfileDTO{
		Nationality: p.Nationality,
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	})
}

// UpdateProfile sets the traveler's nationality.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Nationality == "" {
		writeError(w, http.StatusBadRequest, "nationality is required", nil)
		return
	}

	if err := h.Store.SaveProfile(r.Context(), sqlite.Profile{Nationality: req.Nationality}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileDTO{Nationality: req.Nationality})
}

// ListSpecialStatuses returns the registered special statuses.
func (h *Handler) ListSpecialStatuses(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListSpecialStatuses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list special statuses", err)
		return
	}

	dtos := make([]SpecialStatusDTO, 0, len(records))
	for _, rec := range records {
		dto := SpecialStatusDTO{
			ID:          rec.ID,
			CountryCode: rec.CountryCode,
			Label:       rec.Label,
			CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
		}
		// Config is stored as validated JSON; a decode failure here means
		// manual database edits, so surface the raw record anyway.
		json.Unmarshal([]byte(rec.ConfigJSON), &dto.Config)
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSpecialStatus registers a special status for the traveler.
func (h *Handler) CreateSpecialStatus(w http.ResponseWriter, r *http.Request) {
	var req CreateSpecialStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	custom, err := h.Factory.ParseCustomPolicy(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid special status config", err)
		return
	}

	configJSON, err := json.Marshal(req.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode config", err)
		return
	}

	rec := sqlite.SpecialStatusRecord{
		ID:          uuid.NewString(),
		CountryCode: custom.CountryCode,
		Label:       custom.Label,
		ConfigJSON:  string(configJSON),
	}
	if err := h.Store.SaveSpecialStatus(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save special status", err)
		return
	}

	writeJSON(w, http.StatusCreated, SpecialStatusDTO{
		ID:          rec.ID,
		CountryCode: rec.CountryCode,
		Label:       rec.Label,
		Config:      req.Config,
	})
}

// DeleteSpecialStatus removes a special status.
func (h *Handler) DeleteSpecialStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteSpecialStatus(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "Special status not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
