package compliance_test

import (
	"strings"
	"testing"
	"time"

	"github.com/taco0513/dinotrack/compliance"
)

func diagnose(daysUsed int, policy compliance.CountryPolicy, stays []compliance.StayRecord, ref compliance.Date) ([]compliance.StayViolation, []string) {
	resolved := resolvedBase(policy)
	status := compliance.Evaluate(compliance.Usage{DaysUsed: daysUsed}, resolved, policy.CountryCode)
	return compliance.Diagnose(status, resolved, stays, ref)
}

// =============================================================================
// VIOLATION EMISSION
// =============================================================================

func TestDiagnose_ViolationOnlyWhenOverLimit(t *testing.T) {
	ref := date(2024, time.June, 30)
	policy := compliance.CountryPolicy{
		CountryCode: "FR", Method: compliance.MethodRollingWindow,
		MaxDaysPerPeriod: 90, PeriodDays: 180,
	}

	// Exactly at the limit: zero remaining but no violation.
	violations, _ := diagnose(90, policy, nil, ref)
	if len(violations) != 0 {
		t.Fatalf("at-limit violations = %d, want 0", len(violations))
	}

	// One day over: a major violation with daysOver = 1.
	violations, _ = diagnose(91, policy, nil, ref)
	if len(violations) != 1 {
		t.Fatalf("over-limit violations = %d, want 1", len(violations))
	}
	v := violations[0]
	if v.DaysOver != 1 {
		t.Errorf("daysOver = %d, want 1", v.DaysOver)
	}
	if v.Severity != compliance.SeverityMajor {
		t.Errorf("severity = %s, want major", v.Severity)
	}
	if !strings.Contains(v.Description, "FR") || !strings.Contains(v.Description, "90") {
		t.Errorf("description %q should name country and limit", v.Description)
	}
}

func TestDiagnose_CriticalAbove120Percent(t *testing.T) {
	policy := compliance.CountryPolicy{
		CountryCode: "JP", Method: compliance.MethodPerEntry, MaxDaysPerStay: 90,
	}
	ref := date(2024, time.June, 30)

	// 108 = exactly 120%: still major (strictly greater escalates).
	violations, _ := diagnose(108, policy, nil, ref)
	if violations[0].Severity != compliance.SeverityMajor {
		t.Errorf("120%% severity = %s, want major", violations[0].Severity)
	}

	violations, _ = diagnose(109, policy, nil, ref)
	if violations[0].Severity != compliance.SeverityCritical {
		t.Errorf("121%% severity = %s, want critical", violations[0].Severity)
	}
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

func TestRecommend_PerEntryExplainsReset(t *testing.T) {
	policy := compliance.CountryPolicy{
		CountryCode: "JP", Method: compliance.MethodPerEntry, MaxDaysPerStay: 90,
	}
	_, recs := diagnose(30, policy, nil, date(2024, time.June, 1))
	if len(recs) == 0 || !strings.Contains(recs[0], "re-entering") {
		t.Errorf("recs = %v, want re-entry reset guidance", recs)
	}
}

func TestRecommend_CalendarYearNamesNextReset(t *testing.T) {
	policy := compliance.CountryPolicy{
		CountryCode: "TH", Method: compliance.MethodCalendarYear, MaxDaysPerPeriod: 60,
	}
	_, recs := diagnose(20, policy, nil, date(2024, time.June, 1))
	if len(recs) == 0 || !strings.Contains(recs[0], "2025-01-01") {
		t.Errorf("recs = %v, want the Jan 1 reset date", recs)
	}
}

func TestRecommend_EntryBasedNamesWindowEnd(t *testing.T) {
	stays := []compliance.StayRecord{
		stay("AU", date(2024, time.March, 1), datePtr(2024, time.March, 30)),
	}
	policy := compliance.CountryPolicy{
		CountryCode: "AU", Method: compliance.MethodEntryBased, MaxDaysPerPeriod: 90,
	}
	resolved := resolvedBase(policy)
	usage := compliance.Accumulate(stays, "AU", compliance.MethodEntryBased, date(2024, time.June, 1), 0)
	status := compliance.Evaluate(usage, resolved, "AU")
	_, recs := compliance.Diagnose(status, resolved, stays, date(2024, time.June, 1))

	if len(recs) == 0 || !strings.Contains(recs[0], "2025-02-28") {
		t.Errorf("recs = %v, want the fixed window end date", recs)
	}
}

func TestRecommend_RollingWindowRecoveryDate(t *testing.T) {
	// GIVEN: 90 consecutive days ending at ref - the window is full
	ref := date(2024, time.June, 30)
	entry := ref.AddDays(-89)
	stays := []compliance.StayRecord{stay("FR", entry, datePtr2(ref))}
	policy := compliance.CountryPolicy{
		CountryCode: "FR", Method: compliance.MethodRollingWindow,
		MaxDaysPerPeriod: 90, PeriodDays: 180,
	}
	resolved := resolvedBase(policy)
	usage := compliance.Accumulate(stays, "FR", compliance.MethodRollingWindow, ref, 180)
	status := compliance.Evaluate(usage, resolved, "FR")

	// WHEN: diagnosing with zero days remaining
	_, recs := compliance.Diagnose(status, resolved, stays, ref)

	// THEN: the guidance names the first date the window frees a day.
	// The entry day ages out of the look-back window 180 days after it,
	// i.e. on entry+180.
	want := entry.AddDays(180).String()
	if len(recs) == 0 || !strings.Contains(recs[0], want) {
		t.Errorf("recs = %v, want recovery date %s", recs, want)
	}
}

func TestDiagnose_RestrictionsAppendedVerbatim(t *testing.T) {
	policy := compliance.CountryPolicy{
		CountryCode: "US", Method: compliance.MethodPerEntry, MaxDaysPerStay: 90,
		Restrictions: []string{"ESTA approval required before boarding."},
	}
	_, recs := diagnose(10, policy, nil, date(2024, time.June, 1))
	found := false
	for _, r := range recs {
		if r == "ESTA approval required before boarding." {
			found = true
		}
	}
	if !found {
		t.Errorf("recs = %v, want the restriction appended verbatim", recs)
	}
}
