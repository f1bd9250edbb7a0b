package legacy

import "math"

// #region character-level

// DeriveCharacterLevel converts lifetime stat points into a character level.
// Level 1 at zero points, one level per 10 points after that.
func DeriveCharacterLevel(totalStatPoints int) int {
	if totalStatPoints <= 0 {
		return 1
	}
	return maxInt(1, totalStatPoints/StatPointsPerCharacterLevel+1)
}

// #endregion character-level

// #region progress

// EmptyProgress returns the starting character progress.
func EmptyProgress() CharacterProgress {
	return CharacterProgress{CharacterLevel: 1}
}

// NormalizeProgress repairs a persisted character progress: the level is
// always re-derived from the sanitized point total, and the milestone
// watermark clamps into [0, characterLevel].
func NormalizeProgress(progress CharacterProgress) CharacterProgress {
	total := maxInt(0, progress.TotalStatPointsEarned)
	level := DeriveCharacterLevel(total)
	return CharacterProgress{
		CharacterLevel:        level,
		TotalStatPointsEarned: total,
		LastMilestoneLevel:    clampInt(progress.LastMilestoneLevel, 0, level),
	}
}

// SanitizeProgressValues builds a repaired progress from loosely typed
// persisted numbers, mirroring the per-stat load repair.
func SanitizeProgressValues(totalStatPoints, lastMilestone float64) CharacterProgress {
	total := 0
	if finite(totalStatPoints) {
		total = maxInt(0, int(math.Floor(totalStatPoints)))
	}
	milestone := 0
	if finite(lastMilestone) {
		milestone = maxInt(0, int(math.Floor(lastMilestone)))
	}
	return NormalizeProgress(CharacterProgress{
		TotalStatPointsEarned: total,
		LastMilestoneLevel:    milestone,
	})
}

// AddStatPoints advances the progress track by freshly earned stat points.
func AddStatPoints(progress CharacterProgress, points int) CharacterProgress {
	base := NormalizeProgress(progress)
	if points <= 0 {
		return base
	}
	total := base.TotalStatPointsEarned + points
	return CharacterProgress{
		CharacterLevel:        DeriveCharacterLevel(total),
		TotalStatPointsEarned: total,
		LastMilestoneLevel:    base.LastMilestoneLevel,
	}
}

// #endregion progress
