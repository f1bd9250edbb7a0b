package evidence

import "time"

// #region capture-record

// CaptureRecord is one raw effort sample as captured by a device or app,
// before any validation. Stat and Quality are untrusted.
type CaptureRecord struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Stat       string    `json:"stat,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Quality    float64   `json:"quality"`
	Load       float64   `json:"load"`
	PayloadRef string    `json:"payload_ref,omitempty"`
}

// #endregion capture-record

// #region config

// ProducerConfig holds tuning knobs for evidence aggregation.
type ProducerConfig struct {
	DefaultQuality float64 // assumed when a record carries no quality
	MaxDailyLoad   float64 // per-stat training load cap
}

// DefaultProducerConfig returns sensible defaults.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		DefaultQuality: 0.5,
		MaxDailyLoad:   12,
	}
}

// #endregion config
