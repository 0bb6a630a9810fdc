/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Stays:
    StayDTO, CreateStayRequest, CloseStayRequest

  Compliance:
    CountryStatusRequest, CountryResultDTO, StayStatusDTO, ViolationDTO,
    ValidateTripRequest, TripValidationDTO

  Policies:
    PolicyDTO

  Profile:
    ProfileDTO, UpdateProfileRequest,
    SpecialStatusDTO, CreateSpecialStatusRequest (wraps policy.CustomPolicyJSON)

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - policy/factory.go: CustomPolicyJSON type
*/
package api

import (
	"github.com/taco0513/dinotrack/compliance"
	"github.com/taco0513/dinotrack/policy"
)

// =============================================================================
// STAY TYPES
// =============================================================================

// StayDTO represents a stay in API responses.
type StayDTO struct {
	ID          string `json:"id"`
	CountryCode string `json:"country_code"`
	EntryDate   string `json:"entry_date"`
	ExitDate    string `json:"exit_date,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	Ongoing     bool   `json:"ongoing"`
}

// CreateStayRequest is the request to record a stay.
type CreateStayRequest struct {
	CountryCode string `json:"country_code"`
	EntryDate   string `json:"entry_date"`
	ExitDate    string `json:"exit_date,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
}

// CloseStayRequest fills the exit date of an ongoing stay.
type CloseStayRequest struct {
	ExitDate string `json:"exit_date"`
}

// =============================================================================
// COMPLIANCE TYPES
// =============================================================================

// CountryStatusRequest asks for the compliance status of one country.
type CountryStatusRequest struct {
	CountryCode   string `json:"country_code"`
	ReferenceDate string `json:"reference_date,omitempty"`
}

// StayStatusDTO is the accounting summary for one country.
type StayStatusDTO struct {
	CountryCode        string `json:"country_code"`
	Method             string `json:"calculation_method"`
	DaysUsed           int    `json:"days_used"`
	DaysRemaining      int    `json:"days_remaining"`
	MaxDaysPerStay     int    `json:"max_days_per_stay,omitempty"`
	MaxDaysPerPeriod   int    `json:"max_days_per_period,omitempty"`
	CurrentPeriodStart string `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   string `json:"current_period_end,omitempty"`
	WarningLevel       string `json:"warning_level"`
}

// ViolationDTO represents a detected violation.
type ViolationDTO struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Date        string `json:"date"`
	DaysOver    int    `json:"days_over"`
}

// CountryResultDTO is the full tracker output for one country.
type CountryResultDTO struct {
	CountryCode     string         `json:"country_code"`
	Status          StayStatusDTO  `json:"status"`
	Stays           []StayDTO      `json:"stays"`
	Violations      []ViolationDTO `json:"violations"`
	Recommendations []string       `json:"recommendations"`
	PolicySource    string         `json:"policy_source"`
}

// OverviewResponse maps country codes to their tracker results.
type OverviewResponse struct {
	ReferenceDate string                      `json:"reference_date"`
	Countries     map[string]CountryResultDTO `json:"countries"`
}

// ValidateTripRequest asks whether a planned trip is allowed.
type ValidateTripRequest struct {
	CountryCode string `json:"country_code"`
	EntryDate   string `json:"entry_date"`
	ExitDate    string `json:"exit_date"`
}

// TripValidationDTO is the answer to a trip validation.
type TripValidationDTO struct {
	IsValid       bool              `json:"is_valid"`
	RemainingDays int               `json:"remaining_days"`
	Message       string            `json:"message"`
	Violations    []ViolationDTO    `json:"violations"`
	Result        *CountryResultDTO `json:"result,omitempty"`
}

// =============================================================================
// POLICY TYPES
// =============================================================================

// PolicyDTO represents a country policy in API responses.
type PolicyDTO struct {
	CountryCode      string   `json:"country_code"`
	Method           string   `json:"calculation_method"`
	MaxDaysPerStay   int      `json:"max_days_per_stay,omitempty"`
	MaxDaysPerPeriod int      `json:"max_days_per_period,omitempty"`
	PeriodDays       int      `json:"period_days,omitempty"`
	Restrictions     []string `json:"restrictions,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// =============================================================================
// PROFILE TYPES
// =============================================================================

// ProfileDTO represents the traveler profile.
type ProfileDTO struct {
	Nationality string `json:"nationality"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// UpdateProfileRequest sets the traveler's nationality.
type UpdateProfileRequest struct {
	Nationality string `json:"nationality"`
}

// SpecialStatusDTO represents a registered special status.
type SpecialStatusDTO struct {
	ID          string                  `json:"id"`
	CountryCode string                  `json:"country_code"`
	Label       string                  `json:"label,omitempty"`
	Config      policy.CustomPolicyJSON `json:"config"`
	CreatedAt   string                  `json:"created_at,omitempty"`
}

// CreateSpecialStatusRequest registers a special status.
type CreateSpecialStatusRequest struct {
	Config policy.CustomPolicyJSON `json:"config"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toStayDTO(s compliance.StayRecord) StayDTO {
	dto := StayDTO{
		ID:          s.ID,
		CountryCode: s.CountryCode,
		EntryDate:   s.EntryDate.String(),
		Purpose:     s.Purpose,
		Ongoing:     s.Ongoing(),
	}
	if s.ExitDate != nil {
		dto.ExitDate = s.ExitDate.String()
	}
	return dto
}

func toStatusDTO(s compliance.StayStatus) StayStatusDTO {
	dto := StayStatusDTO{
		CountryCode:      s.CountryCode,
		Method:           string(s.Method),
		DaysUsed:         s.DaysUsed,
		DaysRemaining:    s.DaysRemaining,
		MaxDaysPerStay:   s.MaxDaysPerStay,
		MaxDaysPerPeriod: s.MaxDaysPerPeriod,
		WarningLevel:     string(s.WarningLevel),
	}
	if s.CurrentPeriodStart != nil {
		dto.CurrentPeriodStart = s.CurrentPeriodStart.String()
	}
	if s.CurrentPeriodEnd != nil {
		dto.CurrentPeriodEnd = s.CurrentPeriodEnd.String()
	}
	return dto
}

func toViolationDTOs(violations []compliance.StayViolation) []ViolationDTO {
	dtos := make([]ViolationDTO, len(violations))
	for i, v := range violations {
		dtos[i] = ViolationDTO{
			Type:        v.Type,
			Severity:    string(v.Severity),
			Description: v.Description,
			Date:        v.Date.String(),
			DaysOver:    v.DaysOver,
		}
	}
	return dtos
}

func toCountryResultDTO(r *compliance.CountryTrackerResult) CountryResultDTO {
	stays := make([]StayDTO, len(r.Stays))
	for i, s := range r.Stays {
		stays[i] = toStayDTO(s)
	}
	recommendations := r.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}
	return CountryResultDTO{
		CountryCode:     r.CountryCode,
		Status:          toStatusDTO(r.Status),
		Stays:           stays,
		Violations:      toViolationDTOs(r.Violations),
		Recommendations: recommendations,
		PolicySource:    string(r.PolicySource),
	}
}

func toPolicyDTO(p compliance.CountryPolicy) PolicyDTO {
	return PolicyDTO{
		CountryCode:      p.CountryCode,
		Method:           string(p.Method),
		MaxDaysPerStay:   p.MaxDaysPerStay,
		MaxDaysPerPeriod: p.MaxDaysPerPeriod,
		PeriodDays:       p.PeriodDays,
		Restrictions:     p.Restrictions,
		Description:      p.Description,
	}
}
