// Package classifier turns free-text activity descriptions into a target
// stat and effort tier. The remote endpoint is authoritative; the keyword
// fallback keeps the pipeline working offline.
package classifier

import (
	"strings"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region keywords

var powerKeywords = []string{
	"lift", "gym", "workout", "run", "ran", "sprint", "push-up", "pushup",
	"deadlift", "squat", "swim", "bike", "hike", "climb", "carried", "moved furniture",
}

var accuracyKeywords = []string{
	"practice", "drill", "aim", "typing", "piano", "guitar", "sketch",
	"drawing", "calligraphy", "darts", "archery", "precision", "rehears",
}

var gritKeywords = []string{
	"fast", "fasted", "cold shower", "endurance", "marathon", "kept going",
	"pushed through", "chores", "cleaned", "woke up early", "no sugar",
	"streak", "resisted",
}

var cognitionKeywords = []string{
	"read", "studied", "study", "math", "coded", "coding", "puzzle",
	"chess", "learned", "course", "lecture", "research", "wrote an essay",
}

var planningKeywords = []string{
	"planned", "plan", "budget", "schedule", "organized", "taxes",
	"itinerary", "checklist", "prioritized", "sorted out", "prepared",
}

var socialKeywords = []string{
	"called", "met", "meeting", "party", "friend", "networking",
	"presentation", "presented", "date", "conversation", "talked to",
	"hosted", "volunteered",
}

var epicKeywords = []string{
	"marathon", "launched", "shipped", "graduated", "competition",
	"finished the project", "completed the project", "all day",
}

var majorKeywords = []string{
	"hours", "finished", "completed", "deep work", "long session",
	"big", "major",
}

var trivialKeywords = []string{
	"quick", "tiny", "briefly", "a minute", "small", "short",
}

// #endregion keywords

// #region fallback

// Fallback classifies an activity by keyword heuristics. No network call.
// Descriptions that match nothing land on grit at minimal confidence, so
// generic effort still earns generic credit.
func Fallback(text string) Classification {
	lower := strings.ToLower(strings.TrimSpace(text))

	stat, matched := matchStat(lower)
	confidence := 0.6
	if !matched {
		stat = ability.Grit
		confidence = 0.25
	}

	return Classification{
		Stat:       stat,
		Tier:       matchTier(lower),
		Confidence: confidence,
	}
}

func matchStat(lower string) (ability.StatKey, bool) {
	groups := []struct {
		stat     ability.StatKey
		keywords []string
	}{
		{ability.Power, powerKeywords},
		{ability.Accuracy, accuracyKeywords},
		{ability.Grit, gritKeywords},
		{ability.Cognition, cognitionKeywords},
		{ability.Planning, planningKeywords},
		{ability.Social, socialKeywords},
	}

	best := ability.Grit
	bestCount := 0
	for _, group := range groups {
		count := 0
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			best = group.stat
			bestCount = count
		}
	}
	return best, bestCount > 0
}

func matchTier(lower string) Tier {
	for _, kw := range epicKeywords {
		if strings.Contains(lower, kw) {
			return TierEpic
		}
	}
	for _, kw := range majorKeywords {
		if strings.Contains(lower, kw) {
			return TierMajor
		}
	}
	for _, kw := range trivialKeywords {
		if strings.Contains(lower, kw) {
			return TierTrivial
		}
	}
	// Longer descriptions usually mean a real session, not a note.
	if len(strings.Fields(lower)) >= 8 {
		return TierStandard
	}
	return TierMinor
}

// #endregion fallback
