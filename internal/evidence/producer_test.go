package evidence

import (
	"math"
	"testing"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
)

var captureStart = time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)

func TestProduceAggregatesLoadPerStat(t *testing.T) {
	p := NewProducer(DefaultProducerConfig())

	input := p.Produce([]CaptureRecord{
		{ID: "a", Source: "wearable", Stat: "pwr", Quality: 0.8, Load: 2},
		{ID: "b", Source: "wearable", Stat: "pwr", Quality: 0.7, Load: 1.5},
		{ID: "c", Source: "calendar", Stat: "cog", Quality: 0.9, Load: 1},
	}, false)

	if input.TrainingLoad[ability.Power] != 3.5 {
		t.Fatalf("expected power load 3.5, got %v", input.TrainingLoad[ability.Power])
	}
	if input.TrainingLoad[ability.Cognition] != 1 {
		t.Fatalf("expected cognition load 1, got %v", input.TrainingLoad[ability.Cognition])
	}
	if len(input.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(input.Tokens))
	}
	if input.Tokens[0].StatHint == nil || *input.Tokens[0].StatHint != ability.Power {
		t.Fatalf("expected pwr hint, got %+v", input.Tokens[0].StatHint)
	}
}

func TestProduceCapsDailyLoad(t *testing.T) {
	p := NewProducer(ProducerConfig{DefaultQuality: 0.5, MaxDailyLoad: 4})

	input := p.Produce([]CaptureRecord{
		{ID: "a", Stat: "pwr", Quality: 0.8, Load: 3},
		{ID: "b", Stat: "pwr", Quality: 0.8, Load: 3},
	}, false)

	if input.TrainingLoad[ability.Power] != 4 {
		t.Fatalf("load should cap at 4, got %v", input.TrainingLoad[ability.Power])
	}
}

func TestProduceUnknownStatKeepsTokenDropsLoad(t *testing.T) {
	p := NewProducer(DefaultProducerConfig())

	input := p.Produce([]CaptureRecord{
		{ID: "a", Stat: "luck", Quality: 0.8, Load: 5},
	}, false)

	if len(input.TrainingLoad) != 0 {
		t.Fatalf("unknown stat must not receive load, got %+v", input.TrainingLoad)
	}
	if len(input.Tokens) != 1 || input.Tokens[0].StatHint != nil {
		t.Fatalf("token should survive without a hint, got %+v", input.Tokens)
	}
}

func TestProduceQualityDefaults(t *testing.T) {
	p := NewProducer(DefaultProducerConfig())

	input := p.Produce([]CaptureRecord{
		{ID: "a", Stat: "pwr", Quality: math.NaN(), Load: 1},
		{ID: "b", Stat: "pwr", Quality: 3, Load: 1},
	}, false)

	if input.Tokens[0].Quality != 0.5 {
		t.Fatalf("NaN quality should take the default, got %v", input.Tokens[0].Quality)
	}
	if input.Tokens[1].Quality != 1 {
		t.Fatalf("quality should clamp to 1, got %v", input.Tokens[1].Quality)
	}
}

func TestProduceDurationFallbackLoad(t *testing.T) {
	p := NewProducer(DefaultProducerConfig())

	input := p.Produce([]CaptureRecord{
		{
			ID:        "a",
			Stat:      "grt",
			Quality:   0.6,
			StartedAt: captureStart,
			EndedAt:   captureStart.Add(90 * time.Minute),
		},
	}, false)

	if input.TrainingLoad[ability.Grit] != 1.5 {
		t.Fatalf("90 minutes should derive 1.5 load, got %v", input.TrainingLoad[ability.Grit])
	}
}

func TestProducePassesInjuryFlag(t *testing.T) {
	p := NewProducer(DefaultProducerConfig())
	if !p.Produce(nil, true).InjuryOrIllness {
		t.Fatal("injury flag should pass through")
	}
}

func TestNewProducerRepairsConfig(t *testing.T) {
	p := NewProducer(ProducerConfig{DefaultQuality: -1, MaxDailyLoad: 0})
	if p.config.DefaultQuality != 0.5 || p.config.MaxDailyLoad != 12 {
		t.Fatalf("bad config should reset to defaults, got %+v", p.config)
	}
}
