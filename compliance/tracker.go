/*
tracker.go - The per-country pipeline and the multi-country aggregator

PURPOSE:
  Wires the components into the full pipeline:

    Resolver -> Calculator -> Evaluator -> Generator

  EvaluateCountry runs it for one country; EvaluateAll runs it for every
  country the traveler has history or an active special status in. The
  engine is pure: it holds only the immutable catalog, so one Engine can
  serve concurrent callers without locks.
*/
package compliance

import "sort"

// Engine is the stay compliance engine. Construct once with a read-only
// catalog and share freely.
type Engine struct {
	resolver Resolver
}

// NewEngine creates an engine over the given policy catalog.
func NewEngine(catalog Catalog) *Engine {
	return &Engine{resolver: Resolver{Catalog: catalog}}
}

// Resolve exposes policy resolution for callers that need the winning
// policy without running the accounting (catalog inspection, admin UI).
func (e *Engine) Resolve(countryCode, nationality string, specialStatuses []CustomStayPolicy, ref Date) *ResolvedPolicy {
	return e.resolver.Resolve(countryCode, nationality, specialStatuses, ref)
}

// EvaluateCountry runs the full pipeline for one country. Returns nil
// when no policy resolves: the caller must surface "policy unknown,
// manual review" rather than defaulting an allowance.
func (e *Engine) EvaluateCountry(stays []StayRecord, countryCode string, profile UserProfile, ref Date) *CountryTrackerResult {
	resolved := e.resolver.Resolve(countryCode, profile.Nationality, profile.SpecialStatuses, ref)
	if resolved == nil {
		return nil
	}

	var usage Usage
	if resolved.Custom != nil {
		usage = AccumulateCustom(stays, *resolved.Custom, ref)
	} else {
		usage = Accumulate(stays, countryCode, resolved.Policy.Method, ref, resolved.Policy.PeriodDays)
	}

	status := Evaluate(usage, *resolved, countryCode)
	violations, recommendations := Diagnose(status, *resolved, stays, ref)

	return &CountryTrackerResult{
		CountryCode:     countryCode,
		Status:          status,
		Stays:           usage.RelevantStays,
		Violations:      violations,
		Recommendations: recommendations,
		PolicySource:    resolved.Source,
	}
}

// EvaluateAll runs the pipeline for the union of countries in the stay
// history and countries with an active special status - the latter makes
// an upcoming arrangement visible before its first use. Countries with no
// resolvable policy are omitted, not defaulted.
func (e *Engine) EvaluateAll(stays []StayRecord, profile UserProfile, ref Date) map[string]*CountryTrackerResult {
	results := make(map[string]*CountryTrackerResult)
	for _, code := range relevantCountries(stays, profile, ref) {
		if result := e.EvaluateCountry(stays, code, profile, ref); result != nil {
			results[code] = result
		}
	}
	return results
}

func relevantCountries(stays []StayRecord, profile UserProfile, ref Date) []string {
	seen := make(map[string]bool)
	for _, s := range stays {
		seen[s.CountryCode] = true
	}
	for _, status := range profile.SpecialStatuses {
		if status.ActiveAt(ref) {
			seen[status.CountryCode] = true
		}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
