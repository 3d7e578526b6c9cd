package entitlement

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier is a subscription level. Higher values unlock a superset of lower ones.
type Tier int

const (
	TierUnknown Tier = iota
	TierMonthly
	TierQuarterly
	TierSemiannual
	TierAnnual
)

// Tiers returns every known tier, lowest first.
func Tiers() []Tier {
	return []Tier{TierMonthly, TierQuarterly, TierSemiannual, TierAnnual}
}

func (t Tier) String() string {
	switch t {
	case TierMonthly:
		return "monthly"
	case TierQuarterly:
		return "quarterly"
	case TierSemiannual:
		return "semiannual"
	case TierAnnual:
		return "annual"
	default:
		return "unknown"
	}
}

// DisplayName is the name the plan is sold under.
func (t Tier) DisplayName() string {
	switch t {
	case TierMonthly:
		return "Plano Mensal"
	case TierQuarterly:
		return "Plano Trimestral"
	case TierSemiannual:
		return "Plano Semestral"
	case TierAnnual:
		return "Plano Anual"
	default:
		return ""
	}
}

var tierAliases = map[string]Tier{
	"mensal":      TierMonthly,
	"monthly":     TierMonthly,
	"trimestral":  TierQuarterly,
	"quarterly":   TierQuarterly,
	"semestral":   TierSemiannual,
	"semiannual":  TierSemiannual,
	"semi-annual": TierSemiannual,
	"anual":       TierAnnual,
	"annual":      TierAnnual,
	"yearly":      TierAnnual,
}

// ParseTier maps a plan name to its tier. Matching is exact on the
// normalized name ("Plano Anual", "anual", "Annual plan"); a name that merely
// contains a tier word is not accepted.
func ParseTier(name string) (Tier, bool) {
	key := normalizeTierName(name)
	key = strings.TrimPrefix(key, "plano ")
	key = strings.TrimPrefix(key, "plan ")
	key = strings.TrimSuffix(key, " plan")

	t, ok := tierAliases[key]
	return t, ok
}

func normalizeTierName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, name)
	if err != nil {
		out = name
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
