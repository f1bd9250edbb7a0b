package classifier

import "github.com/kibbyd/lifequest/internal/ability"

// #region tiers

// Tier is the effort magnitude of one classified activity.
type Tier string

const (
	TierTrivial  Tier = "trivial"
	TierMinor    Tier = "minor"
	TierStandard Tier = "standard"
	TierMajor    Tier = "major"
	TierEpic     Tier = "epic"
)

// Amount converts a tier into legacy progress points.
func (t Tier) Amount() float64 {
	switch t {
	case TierTrivial:
		return 1
	case TierMinor:
		return 10
	case TierStandard:
		return 50
	case TierMajor:
		return 250
	case TierEpic:
		return 1000
	default:
		return 10
	}
}

// IsTier reports whether s names a known tier.
func IsTier(s string) bool {
	switch Tier(s) {
	case TierTrivial, TierMinor, TierStandard, TierMajor, TierEpic:
		return true
	}
	return false
}

// #endregion tiers

// #region classification

// Classification is the outcome of classifying one activity description.
type Classification struct {
	Stat       ability.StatKey `json:"stat"`
	Tier       Tier            `json:"tier"`
	Confidence float64         `json:"confidence"`
}

// #endregion classification
