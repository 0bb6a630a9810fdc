package compliance_test

import (
	"testing"
	"time"

	"github.com/taco0513/dinotrack/compliance"
)

func visaPolicy(country string, from, until compliance.Date, maxPeriod int) compliance.CustomStayPolicy {
	return compliance.CustomStayPolicy{
		CountryPolicy: compliance.CountryPolicy{
			CountryCode:      country,
			Method:           compliance.MethodVisaValidity,
			MaxDaysPerPeriod: maxPeriod,
		},
		ID:         "visa-" + country,
		ValidFrom:  &from,
		ValidUntil: &until,
	}
}

func TestCustomVisaValidity_PeriodIsValidityWindow(t *testing.T) {
	// GIVEN: a working-holiday visa valid Apr 1 2024 - Mar 31 2025
	policy := visaPolicy("JP", date(2024, time.April, 1), date(2025, time.March, 31), 365)
	stays := []compliance.StayRecord{
		stay("JP", date(2024, time.May, 1), datePtr(2024, time.May, 30)),   // 30, entry in window
		stay("JP", date(2024, time.February, 1), datePtr(2024, time.February, 10)), // entry before window
	}

	usage := compliance.AccumulateCustom(stays, policy, date(2024, time.August, 1))

	if usage.DaysUsed != 30 {
		t.Errorf("daysUsed = %d, want 30 (pre-window entry excluded)", usage.DaysUsed)
	}
	if usage.PeriodStart == nil || !usage.PeriodStart.Equal(date(2024, time.April, 1)) {
		t.Errorf("periodStart = %v, want visa validFrom", usage.PeriodStart)
	}
	if usage.PeriodEnd == nil || !usage.PeriodEnd.Equal(date(2025, time.March, 31)) {
		t.Errorf("periodEnd = %v, want visa validUntil", usage.PeriodEnd)
	}
}

func TestCustomVisaValidity_ExitClippedToValidUntil(t *testing.T) {
	// A stay running past the visa's end only counts up to validUntil.
	policy := visaPolicy("JP", date(2024, time.April, 1), date(2024, time.June, 30), 90)
	stays := []compliance.StayRecord{
		stay("JP", date(2024, time.June, 21), datePtr(2024, time.July, 15)),
	}
	usage := compliance.AccumulateCustom(stays, policy, date(2024, time.August, 1))
	if usage.DaysUsed != 10 {
		t.Errorf("daysUsed = %d, want 10 (Jun 21-30)", usage.DaysUsed)
	}
}

func TestCustomVisaValidity_OngoingStayClippedToReference(t *testing.T) {
	policy := visaPolicy("JP", date(2024, time.April, 1), date(2025, time.March, 31), 365)
	stays := []compliance.StayRecord{stay("JP", date(2024, time.July, 1), nil)}
	usage := compliance.AccumulateCustom(stays, policy, date(2024, time.July, 10))
	if usage.DaysUsed != 10 {
		t.Errorf("daysUsed = %d, want 10", usage.DaysUsed)
	}
}

func TestCustomKnownMethodsDelegateToGenericCalculator(t *testing.T) {
	policy := compliance.CustomStayPolicy{
		CountryPolicy: compliance.CountryPolicy{
			CountryCode:      "FR",
			Method:           compliance.MethodRollingWindow,
			MaxDaysPerPeriod: 90,
			PeriodDays:       180,
		},
	}
	ref := date(2024, time.June, 30)
	stays := []compliance.StayRecord{stay("FR", ref.AddDays(-9), nil)}

	usage := compliance.AccumulateCustom(stays, policy, ref)
	if usage.DaysUsed != 10 {
		t.Errorf("daysUsed = %d, want 10", usage.DaysUsed)
	}
}

func TestCustomUnrecognizedMethodFallsBackToCurrentStay(t *testing.T) {
	// GIVEN: a policy with a method the engine does not recognize
	policy := compliance.CustomStayPolicy{
		CountryPolicy: compliance.CountryPolicy{
			CountryCode: "KR",
			Method:      compliance.CalculationMethod("bilateral_agreement"),
		},
	}
	stays := []compliance.StayRecord{stay("KR", date(2024, time.June, 1), nil)}

	// WHEN: accounting runs
	usage := compliance.AccumulateCustom(stays, policy, date(2024, time.June, 15))

	// THEN: the current stay is counted - conservative, never silently zero
	if usage.DaysUsed != 15 {
		t.Errorf("daysUsed = %d, want 15 (per-entry fallback)", usage.DaysUsed)
	}
}
