package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/profile"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string           `json:"description"`
	Start       profile.Profile  `json:"start"`
	Days        []FixtureDay     `json:"days"`
	Expected    []FixtureOutcome `json:"expected,omitempty"`
}

// FixtureDay is one recorded day in fixture form.
type FixtureDay struct {
	Date   string         `json:"date"`
	Grants []FixtureGrant `json:"grants,omitempty"`
	Tick   *FixtureTick   `json:"tick,omitempty"`
}

// FixtureGrant mirrors Grant with JSON tags and an untrusted stat string.
type FixtureGrant struct {
	Stat   string  `json:"stat"`
	Amount float64 `json:"amount"`
}

// FixtureTick is one day's tick input in fixture form.
type FixtureTick struct {
	TrainingLoad    map[string]float64 `json:"training_load,omitempty"`
	Tokens          []FixtureToken     `json:"tokens,omitempty"`
	InjuryOrIllness bool               `json:"injury_or_illness,omitempty"`
}

// FixtureToken is a trimmed evidence token: only the fields the tick reads.
type FixtureToken struct {
	ID      string  `json:"id"`
	Source  string  `json:"source,omitempty"`
	Stat    string  `json:"stat,omitempty"`
	Quality float64 `json:"quality"`
}

// FixtureOutcome captures the expected action of one replay step.
type FixtureOutcome struct {
	Date   string `json:"date"`
	Kind   string `json:"kind"`
	Action string `json:"action"`
}

// #endregion fixture-types

// #region fixture-io

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-io

// #region conversion

// ToDays converts the fixture's recorded days into replay inputs. Training
// load entries with unknown stat tags are dropped; grant stat validation is
// left to the pipeline, which treats unknown stats as no-ops.
func (f *Fixture) ToDays() []Day {
	days := make([]Day, 0, len(f.Days))
	for _, fd := range f.Days {
		day := Day{Date: fd.Date}

		for _, g := range fd.Grants {
			day.Grants = append(day.Grants, Grant{Stat: ability.StatKey(g.Stat), Amount: g.Amount})
		}

		if fd.Tick != nil {
			tick := dynamics.TickInput{
				TrainingLoad:    make(map[ability.StatKey]float64, len(fd.Tick.TrainingLoad)),
				InjuryOrIllness: fd.Tick.InjuryOrIllness,
			}
			for stat, load := range fd.Tick.TrainingLoad {
				if ability.IsStatKey(stat) {
					tick.TrainingLoad[ability.StatKey(stat)] = load
				}
			}
			for _, tok := range fd.Tick.Tokens {
				token := dynamics.EvidenceToken{
					ID:      tok.ID,
					Source:  dynamics.EvidenceSource(tok.Source),
					Quality: tok.Quality,
				}
				if ability.IsStatKey(tok.Stat) {
					key := ability.StatKey(tok.Stat)
					token.StatHint = &key
				}
				tick.Tokens = append(tick.Tokens, token)
			}
			day.Tick = &tick
		}

		days = append(days, day)
	}
	return days
}

// #endregion conversion
