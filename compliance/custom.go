/*
custom.go - Day accounting for custom (override) policies

PURPOSE:
  Custom policies dispatch through the same method switch as the generic
  calculator, with two differences:
  - visa_validity becomes computable: the policy carries the validity
    window that defines the accounting period.
  - An unrecognized method falls back to a per_entry-style calculation of
    the current stay. Conservative by construction: the traveler sees
    their real current usage rather than a silent zero.

VISA VALIDITY SEMANTICS:
  period = [policy.validFrom, policy.validUntil]
  A stay is included when its entry falls inside the window; the exit is
  clipped to validUntil (or the reference date while ongoing). This
  matches how validity-bounded visas are audited: days are charged to the
  visa the entry was made under.

SEE ALSO:
  - calculator.go: the generic dispatch and clipping rule
  - policy.go: CustomStayPolicy and its validity window
*/
package compliance

// AccumulateCustom computes days used under a custom policy. Same shape
// as Accumulate, with visa_validity supported and a conservative
// per_entry fallback for methods the engine does not recognize.
func AccumulateCustom(stays []StayRecord, policy CustomStayPolicy, ref Date) Usage {
	switch policy.Method {
	case MethodPerEntry, MethodCalendarYear, MethodEntryBased, MethodRollingWindow:
		return Accumulate(stays, policy.CountryCode, policy.Method, ref, policy.PeriodDays)

	case MethodVisaValidity:
		return accumulateVisaValidity(stays, policy, ref)

	case MethodCustom:
		// Bespoke arrangements without a defined algorithm: account the
		// current stay so usage is never silently zero.
		return accumulatePerEntry(filterCountry(stays, policy.CountryCode), ref)

	default:
		return accumulatePerEntry(filterCountry(stays, policy.CountryCode), ref)
	}
}

func accumulateVisaValidity(stays []StayRecord, policy CustomStayPolicy, ref Date) Usage {
	window, ok := policy.ValidityWindow()
	if !ok {
		// An open-ended visa_validity policy has no accounting period;
		// fall back to the current stay, as for unrecognized methods.
		return accumulatePerEntry(filterCountry(stays, policy.CountryCode), ref)
	}

	total := 0
	var relevant []StayRecord
	for _, s := range filterCountry(stays, policy.CountryCode) {
		if !s.WellFormed() || !window.Contains(s.EntryDate) {
			continue
		}
		end := MinDate(s.exitOr(ref), window.End)
		days := InclusiveDays(s.EntryDate, end)
		if days > 0 {
			total += days
			relevant = append(relevant, s)
		}
	}

	start, end := window.Start, window.End
	return Usage{
		DaysUsed:      total,
		PeriodStart:   &start,
		PeriodEnd:     &end,
		RelevantStays: relevant,
	}
}
