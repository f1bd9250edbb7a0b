package ability

// #region stat-keys
// StatKey identifies one of the six ability dimensions.
type StatKey string

const (
	Power     StatKey = "pwr"
	Accuracy  StatKey = "acc"
	Grit      StatKey = "grt"
	Cognition StatKey = "cog"
	Planning  StatKey = "pln"
	Social    StatKey = "soc"
)

// StatKeys lists every stat in canonical order. All per-stat iteration goes
// through this slice so output ordering never depends on map iteration.
var StatKeys = [6]StatKey{Power, Accuracy, Grit, Cognition, Planning, Social}

// IsStatKey reports whether s is one of the six known stat tags.
func IsStatKey(s string) bool {
	for _, k := range StatKeys {
		if string(k) == s {
			return true
		}
	}
	return false
}

// #endregion stat-keys

// #region bounds
const (
	MinStat  = 1.0
	MaxStat  = 20.0
	MinTotal = 6.0
	MaxTotal = 120.0
)

// #endregion bounds

// #region snapshot
// Snapshot is one stat's current value and evidence confidence.
type Snapshot struct {
	Value      float64 `json:"value"`      // [1, 20]
	Confidence float64 `json:"confidence"` // [0, 1]
}

// #endregion snapshot

// #region ability
// Ability is the derived composite profile. It is never persisted on its own;
// it is recomputed from the stat snapshots whenever they change.
type Ability struct {
	Stats      map[StatKey]Snapshot `json:"stats"`
	Total      float64              `json:"total"`        // [6, 120]
	Level      int                  `json:"level_0to100"` // [0, 100]
	Progress01 float64              `json:"progress_01"`  // fractional remainder toward the next level
}

// #endregion ability
