// Package evidence converts raw capture records into a day's tick input:
// per-stat training load plus evidence tokens. Captures are untrusted;
// everything is clamped or dropped here so the tick never sees garbage.
package evidence

import (
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/dynamics"
)

// #region producer

// Producer aggregates capture records into tick inputs.
type Producer struct {
	config ProducerConfig
}

// NewProducer creates a Producer with the given configuration.
func NewProducer(config ProducerConfig) *Producer {
	if config.DefaultQuality <= 0 || config.DefaultQuality > 1 {
		config.DefaultQuality = DefaultProducerConfig().DefaultQuality
	}
	if config.MaxDailyLoad <= 0 {
		config.MaxDailyLoad = DefaultProducerConfig().MaxDailyLoad
	}
	return &Producer{config: config}
}

// #endregion producer

// #region produce

// Produce builds one day's tick input. Records tagged with a known stat
// contribute training load to it and a hinted token; untagged records still
// contribute a token (their quality informs the tick) but no load. Per-stat
// load is capped so a runaway capture source cannot fake a training spike.
func (p *Producer) Produce(records []CaptureRecord, injuryOrIllness bool) dynamics.TickInput {
	load := make(map[ability.StatKey]float64)
	tokens := make([]dynamics.EvidenceToken, 0, len(records))

	for _, rec := range records {
		quality := p.recordQuality(rec)

		token := dynamics.EvidenceToken{
			ID:         rec.ID,
			Source:     dynamics.EvidenceSource(rec.Source),
			StartedAt:  rec.StartedAt,
			EndedAt:    rec.EndedAt,
			Quality:    quality,
			PayloadRef: rec.PayloadRef,
		}

		if ability.IsStatKey(rec.Stat) {
			key := ability.StatKey(rec.Stat)
			token.StatHint = &key
			load[key] = math.Min(p.config.MaxDailyLoad, load[key]+recordLoad(rec))
		}

		tokens = append(tokens, token)
	}

	return dynamics.TickInput{
		TrainingLoad:    load,
		Tokens:          tokens,
		InjuryOrIllness: injuryOrIllness,
	}
}

// recordQuality clamps a capture's quality, substituting the default when
// the capture carries none.
func (p *Producer) recordQuality(rec CaptureRecord) float64 {
	q := rec.Quality
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return p.config.DefaultQuality
	}
	return math.Min(1, q)
}

// recordLoad reads the explicit load, falling back to session duration in
// hours when the capture reports none.
func recordLoad(rec CaptureRecord) float64 {
	if !math.IsNaN(rec.Load) && !math.IsInf(rec.Load, 0) && rec.Load > 0 {
		return rec.Load
	}
	if rec.EndedAt.After(rec.StartedAt) {
		return rec.EndedAt.Sub(rec.StartedAt).Hours()
	}
	return 0
}

// #endregion produce
