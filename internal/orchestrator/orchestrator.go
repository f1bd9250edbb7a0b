// Package orchestrator coordinates the full engine loop: classify recorded
// activities, apply grants and daily ticks through the pure pipelines,
// validate every candidate transition, and commit versioned profiles with
// provenance. All state changes flow through here.
package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/classifier"
	"github.com/kibbyd/lifequest/internal/currency"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/eval"
	"github.com/kibbyd/lifequest/internal/evidence"
	"github.com/kibbyd/lifequest/internal/logging"
	"github.com/kibbyd/lifequest/internal/notes"
	"github.com/kibbyd/lifequest/internal/perks"
	"github.com/kibbyd/lifequest/internal/profile"
	"github.com/kibbyd/lifequest/internal/progression"
	"github.com/kibbyd/lifequest/internal/records"
	"github.com/kibbyd/lifequest/internal/score"
)

// #endregion imports

// #region orchestrator

// Orchestrator drives profile transitions against a versioned store.
type Orchestrator struct {
	store    *profile.Store
	memory   *ObservationMemory
	notes    *notes.Store
	records  *records.Tracker
	producer *evidence.Producer
	remote   RemoteClassifier
	scorer   dynamics.Scorer
	config   Config
}

// NewOrchestrator wires the orchestrator onto an open store. remote may be
// nil, in which case every activity goes through the keyword fallback;
// scorer may be nil to skip legacy score recomputation on ticks.
func NewOrchestrator(store *profile.Store, remote RemoteClassifier, scorer dynamics.Scorer, config Config) (*Orchestrator, error) {
	memory, err := NewObservationMemory(store.DB())
	if err != nil {
		return nil, err
	}
	noteStore, err := notes.NewStore(store.DB())
	if err != nil {
		return nil, err
	}
	tracker, err := records.NewTracker(store.DB())
	if err != nil {
		return nil, err
	}
	if config.RecalWindowDays <= 0 {
		config.RecalWindowDays = DefaultConfig().RecalWindowDays
	}
	return &Orchestrator{
		store:    store,
		memory:   memory,
		notes:    noteStore,
		records:  tracker,
		producer: evidence.NewProducer(evidence.DefaultProducerConfig()),
		remote:   remote,
		scorer:   scorer,
		config:   config,
	}, nil
}

// Notes exposes the recalibration note store for read-side callers.
func (o *Orchestrator) Notes() *notes.Store {
	return o.notes
}

// #endregion orchestrator

// #region activity

// ProcessActivity classifies one free-text activity and commits the
// resulting grant as a new profile version.
func (o *Orchestrator) ProcessActivity(ctx context.Context, text string, now time.Time) (ActivityOutcome, error) {
	class, usedFallback := o.classify(ctx, text)
	log.Printf("[ORCH] activity classified as %s/%s (conf %.2f, fallback=%v)",
		class.Stat, class.Tier, class.Confidence, usedFallback)

	cur, err := o.store.Current()
	if err != nil {
		return ActivityOutcome{}, fmt.Errorf("load current profile: %w", err)
	}

	amount := class.Tier.Amount()
	out := progression.Grant(progression.GrantInput{
		Legacy:        cur.Profile.Legacy,
		Ability:       cur.Profile.Ability(),
		Progress:      cur.Profile.Progress,
		Wallet:        cur.Profile.Wallet,
		Perks:         cur.Profile.Perks,
		Activity:      cur.Profile.Activity,
		Stat:          class.Stat,
		Amount:        amount,
		Now:           now,
		QuarterlyDays: o.config.QuarterlyDays,
		AnnualDays:    o.config.AnnualDays,
		Milestones:    o.config.Milestones,
	})

	next := cur.Profile
	next.Stats = out.Ability.Stats
	next.Legacy = out.Legacy
	next.Progress = out.Progress
	next.Wallet = out.Wallet
	next.Perks = out.Perks
	next.Activity = out.Activity

	trans := logging.TransitionRecord{
		Trigger:          logging.TriggerGrant,
		Day:              now.UTC().Format("2006-01-02"),
		Stat:             string(class.Stat),
		Amount:           amount,
		LevelsGained:     out.LevelsGained,
		Milestones:       out.MilestonesTriggered,
		QuarterlyAwarded: out.QuarterlyAwarded,
		AnnualAwarded:    out.AnnualAwarded,
		AbilityLevel:     out.Ability.Level,
	}
	child, err := o.commit(cur, next, logging.TriggerGrant, trans, now)
	if err != nil {
		return ActivityOutcome{}, err
	}

	return ActivityOutcome{
		VersionID:      child.VersionID,
		Classification: class,
		Fallback:       usedFallback,
		Amount:         amount,
		LevelsGained:   out.LevelsGained,
		Milestones:     out.MilestonesTriggered,
		AbilityLevel:   out.Ability.Level,
	}, nil
}

// classify asks the remote classifier first and falls back to keyword
// matching on any failure. The fallback never errors, so neither does this.
func (o *Orchestrator) classify(ctx context.Context, text string) (classifier.Classification, bool) {
	if o.remote != nil {
		class, err := o.remote.Classify(ctx, text)
		if err == nil {
			return class, false
		}
		log.Printf("[ORCH] remote classifier failed, using fallback: %v", err)
	}
	return classifier.Fallback(text), true
}

// #endregion activity

// #region tick

// DailyTick aggregates the day's capture records, advances dynamics by one
// day, scores the period, and commits the result. Each stat's load, value
// delta, and evidence quality are also recorded as observations for later
// recalibration.
func (o *Orchestrator) DailyTick(captures []evidence.CaptureRecord, injuryOrIllness bool, now time.Time) (TickOutcome, error) {
	cur, err := o.store.Current()
	if err != nil {
		return TickOutcome{}, fmt.Errorf("load current profile: %w", err)
	}

	input := o.producer.Produce(captures, injuryOrIllness)
	out := progression.TickDay(progression.TickDayInput{
		Stats:       cur.Profile.Stats,
		Dynamics:    cur.Profile.Dynamics,
		LegacyScore: cur.Profile.LegacyScore,
		Input:       input,
		Perks:       cur.Profile.Perks,
		Wallet:      cur.Profile.Wallet,
		Now:         now,
	})

	next := cur.Profile
	next.Stats = out.Tick.UpdatedStats
	next.Perks = out.Perks
	next.Wallet = out.Wallet

	day := now.UTC().Format("2006-01-02")
	statValues := make(map[ability.StatKey]float64, len(ability.StatKeys))
	values := make(map[string]float64, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		statValues[key] = out.Tick.UpdatedStats[key].Value
		values[string(key)] = out.Tick.UpdatedStats[key].Value
	}

	scored, err := o.scoreTick(cur.Profile, out.Tick, input, statValues, day)
	if err != nil {
		return TickOutcome{}, err
	}
	if scored != nil {
		next.LegacyScore = scored.Score
	}
	trans := logging.TransitionRecord{
		Trigger:      logging.TriggerTick,
		Day:          day,
		StatValues:   values,
		AbilityLevel: out.Tick.Ability.Level,
		LegacyScore:  next.LegacyScore,
	}
	child, err := o.commit(cur, next, logging.TriggerTick, trans, now)
	if err != nil {
		return TickOutcome{}, err
	}

	quality := averageQuality(input.Tokens)
	for _, key := range ability.StatKeys {
		obs := DailyObservation{
			Stat:    key,
			Day:     day,
			Load:    input.TrainingLoad[key],
			Delta:   out.Tick.UpdatedStats[key].Value - cur.Profile.Stats[key].Value,
			Quality: quality,
		}
		if err := o.memory.Record(obs); err != nil {
			log.Printf("[ORCH] failed to record observation for %s: %v", key, err)
		}
	}

	return TickOutcome{
		VersionID: child.VersionID,
		Ability:   out.Tick.Ability,
		Score:     scored,
	}, nil
}

// scoreTick recomputes the legacy score across the tick, folding in the
// day's PRs, streak, and badges from the records tracker. Nil scorer means
// no score; the profile keeps its previous value.
func (o *Orchestrator) scoreTick(prev profile.Profile, tick dynamics.TickResult, input dynamics.TickInput, statValues map[ability.StatKey]float64, day string) (*score.Result, error) {
	if o.scorer == nil {
		return nil, nil
	}

	active := len(input.Tokens) > 0
	for _, load := range input.TrainingLoad {
		if load > 0 {
			active = true
		}
	}
	outcome, err := o.records.RecordDay(day, statValues, active)
	if err != nil {
		return nil, fmt.Errorf("record day: %w", err)
	}
	if len(outcome.NewBadges) > 0 {
		log.Printf("[ORCH] badges earned: %v", outcome.NewBadges)
	}

	qualities := make([]float64, 0, len(input.Tokens))
	for _, token := range input.Tokens {
		qualities = append(qualities, token.Quality)
	}

	scored := o.scorer.Score(score.Inputs{
		AbilityBefore:  tick.AbilityBefore,
		AbilityAfter:   tick.Ability,
		TrainingLoad:   []map[ability.StatKey]float64{input.TrainingLoad},
		TokenQualities: qualities,
		PREvents:       outcome.PREvents,
		Streaks:        []score.Streak{{Days: outcome.Streak}},
		Badges:         outcome.NewBadges,
		PreviousScore:  prev.LegacyScore,
	})
	return &scored, nil
}

func averageQuality(tokens []dynamics.EvidenceToken) float64 {
	if len(tokens) == 0 {
		return 0.4
	}
	var sum float64
	for _, tok := range tokens {
		sum += tok.Quality
	}
	return sum / float64(len(tokens))
}

// #endregion tick

// #region perks

// AssignPerk spends one perk point to take ownership of a catalog perk and
// commits the result. Assigning an already-owned perk is a no-op that keeps
// the current version.
func (o *Orchestrator) AssignPerk(perk perks.Definition, now time.Time) (string, error) {
	cur, err := o.store.Current()
	if err != nil {
		return "", fmt.Errorf("load current profile: %w", err)
	}

	for _, entry := range cur.Profile.Perks {
		if entry.Perk.ID == perk.ID && entry.Owned {
			return cur.VersionID, nil
		}
	}

	values := perks.StatValues(cur.Profile.Stats)
	assigned := perks.Assign(perk, cur.Profile.Perks, cur.Profile.Wallet.PerkPoints, values)
	if !assigned.OK {
		return "", fmt.Errorf("assign %s: no perk points available", perk.ID)
	}
	wallet, ok := currency.SpendPerkPoint(cur.Profile.Wallet, perk.ID, now)
	if !ok {
		return "", fmt.Errorf("assign %s: no perk points available", perk.ID)
	}

	next := cur.Profile
	next.Perks = assigned.State
	next.Wallet = wallet

	trans := logging.TransitionRecord{
		Trigger:      logging.TriggerPerk,
		Day:          now.UTC().Format("2006-01-02"),
		Perk:         perk.ID,
		AbilityLevel: cur.Profile.Ability().Level,
	}
	child, err := o.commit(cur, next, logging.TriggerPerk, trans, now)
	if err != nil {
		return "", err
	}
	log.Printf("[ORCH] perk %s assigned, %d points left", perk.ID, wallet.PerkPoints)
	return child.VersionID, nil
}

// TogglePerk sets an owned perk's desired activation and commits the
// result. Activation past an unmet gate is silently refused by the state
// machine.
func (o *Orchestrator) TogglePerk(perkID string, active bool, now time.Time) (string, error) {
	cur, err := o.store.Current()
	if err != nil {
		return "", fmt.Errorf("load current profile: %w", err)
	}

	next := cur.Profile
	next.Perks = perks.Toggle(perkID, active, cur.Profile.Perks, perks.StatValues(cur.Profile.Stats))

	trans := logging.TransitionRecord{
		Trigger:      logging.TriggerPerk,
		Day:          now.UTC().Format("2006-01-02"),
		Perk:         perkID,
		AbilityLevel: cur.Profile.Ability().Level,
	}
	child, err := o.commit(cur, next, logging.TriggerPerk, trans, now)
	if err != nil {
		return "", err
	}
	return child.VersionID, nil
}

// #endregion perks

// #region recalibration

// RunRecalibration aggregates the recent observation window, nudges the
// dynamics parameters toward what was observed, and commits the adjusted
// parameter set as a new version.
func (o *Orchestrator) RunRecalibration(now time.Time) (RecalOutcome, error) {
	cur, err := o.store.Current()
	if err != nil {
		return RecalOutcome{}, fmt.Errorf("load current profile: %w", err)
	}

	since := now.AddDate(0, 0, -o.config.RecalWindowDays)
	aggs, err := o.memory.AggregateSince(since)
	if err != nil {
		return RecalOutcome{}, err
	}
	if len(aggs) == 0 {
		return RecalOutcome{}, fmt.Errorf("no observations in the last %d days", o.config.RecalWindowDays)
	}

	// Reconstruct the window-start ability by backing the observed deltas
	// out of the current values.
	prevStats := make(map[ability.StatKey]ability.Snapshot, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		prevStats[key] = cur.Profile.Stats[key]
	}
	observations := make([]dynamics.Observation, 0, len(aggs))
	for _, agg := range aggs {
		if !ability.IsStatKey(string(agg.Stat)) {
			continue
		}
		snap := prevStats[agg.Stat]
		snap.Value = ability.ClampStatValue(snap.Value - agg.TotalDelta)
		prevStats[agg.Stat] = snap

		params := cur.Profile.Dynamics[agg.Stat]
		value := cur.Profile.Stats[agg.Stat].Value
		maintenance := params.TL0 + params.Beta*math.Max(0, value-params.SFloor)
		observations = append(observations, dynamics.Observation{
			Stat:             agg.Stat,
			AverageLoad:      agg.AverageLoad,
			MaintenanceGuess: maintenance,
			ObservedDelta:    agg.TotalDelta,
			Days:             float64(agg.Days),
			Quality:          agg.AvgQuality,
		})
	}

	recent := cur.Profile.Ability()
	result := dynamics.Recalibrate(dynamics.RecalInput{
		PreviousAbility: ability.Calculate(prevStats),
		RecentAbility:   recent,
		Observations:    observations,
		PrevDynamics:    cur.Profile.Dynamics,
	})
	log.Printf("[ORCH] recalibration produced %d notes", len(result.Notes))

	next := cur.Profile
	next.Dynamics = result.Dynamics

	trans := logging.TransitionRecord{
		Trigger:      logging.TriggerRecalibrate,
		Day:          now.UTC().Format("2006-01-02"),
		AbilityLevel: recent.Level,
		RecalNotes:   result.Notes,
	}
	child, err := o.commit(cur, next, logging.TriggerRecalibrate, trans, now)
	if err != nil {
		return RecalOutcome{}, err
	}
	if err := o.notes.Save(child.VersionID, result.Notes); err != nil {
		log.Printf("[ORCH] failed to save recal notes: %v", err)
	}

	return RecalOutcome{
		VersionID: child.VersionID,
		Dynamics:  result.Dynamics,
		Notes:     result.Notes,
	}, nil
}

// #endregion recalibration

// #region rollback

// Rollback moves the active pointer to an earlier version and records the
// move in the provenance log.
func (o *Orchestrator) Rollback(targetVersionID string) error {
	if err := o.store.Rollback(targetVersionID); err != nil {
		return err
	}
	log.Printf("[ORCH] rolled back to version %s", targetVersionID)
	return logging.LogDecision(o.store.DB(), logging.ProvenanceEntry{
		VersionID:   targetVersionID,
		TriggerType: logging.TriggerRollback,
		Decision:    logging.DecisionCommit,
		Reason:      "manual rollback",
	})
}

// #endregion rollback

// #region commit

// commit validates a candidate transition and, if it passes, persists it as
// a child version with provenance. A failed validation is logged against
// the parent version and nothing is committed.
func (o *Orchestrator) commit(cur profile.Record, next profile.Profile, trigger string, trans logging.TransitionRecord, now time.Time) (profile.Record, error) {
	result := eval.Run(next, &cur.Profile)
	if !result.Passed {
		if err := logging.LogDecision(o.store.DB(), logging.ProvenanceEntry{
			VersionID:   cur.VersionID,
			TriggerType: trigger,
			Decision:    logging.DecisionReject,
			Reason:      result.Reason,
		}); err != nil {
			log.Printf("[ORCH] failed to log rejection: %v", err)
		}
		return profile.Record{}, fmt.Errorf("%s rejected: %s", trigger, result.Reason)
	}

	child := profile.NextRecord(cur, next, now)
	if err := o.store.Commit(child); err != nil {
		return profile.Record{}, fmt.Errorf("commit %s: %w", trigger, err)
	}

	signals, err := json.Marshal(trans)
	if err != nil {
		signals = nil
	}
	if err := logging.LogDecision(o.store.DB(), logging.ProvenanceEntry{
		VersionID:   child.VersionID,
		TriggerType: trigger,
		SignalsJSON: string(signals),
		Decision:    logging.DecisionCommit,
		Reason:      result.Reason,
	}); err != nil {
		log.Printf("[ORCH] failed to log commit: %v", err)
	}
	return child, nil
}

// #endregion commit
