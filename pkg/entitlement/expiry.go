package entitlement

import "time"

const day = 24 * time.Hour

var tierDurations = map[Tier]time.Duration{
	TierMonthly:    30 * day,
	TierQuarterly:  90 * day,
	TierSemiannual: 180 * day,
	TierAnnual:     365 * day,
}

// DurationFor returns how long a tier stays valid. Unknown tiers get the
// monthly duration and ok=false so callers can flag the fallback.
func DurationFor(t Tier) (time.Duration, bool) {
	if d, ok := tierDurations[t]; ok {
		return d, true
	}
	return tierDurations[TierMonthly], false
}

// ExpiryFrom is now + DurationFor(t).
func ExpiryFrom(now time.Time, t Tier) (time.Time, bool) {
	d, ok := DurationFor(t)
	return now.Add(d), ok
}
