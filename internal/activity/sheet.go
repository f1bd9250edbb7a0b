package activity

import (
	"fmt"
	"math"
	"strings"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/legacy"
	"github.com/kibbyd/lifequest/internal/profile"
)

// #region sheet

// statLabels maps stat keys to their display names, in sheet order.
var statLabels = []struct {
	key   ability.StatKey
	label string
}{
	{ability.Power, "Power"},
	{ability.Accuracy, "Accuracy"},
	{ability.Grit, "Grit"},
	{ability.Cognition, "Cognition"},
	{ability.Planning, "Planning"},
	{ability.Social, "Social"},
}

// RenderSheet builds the character sheet text block for one profile.
func RenderSheet(p profile.Profile) string {
	sheet := p.Ability()

	var b strings.Builder
	b.WriteString("[CHARACTER SHEET]\n")
	for _, s := range statLabels {
		snap := p.Stats[s.key]
		entry := p.Legacy.Stats[s.key]
		b.WriteString(fmt.Sprintf("  %-10s %5.1f  (legacy L%d, %d/%d, confidence %.0f%%)\n",
			s.label, snap.Value, entry.Level, entry.Counter, legacy.RolloverThreshold,
			math.Round(snap.Confidence*100)))
	}

	b.WriteString(fmt.Sprintf("\n  Ability     %d / 100 (total %.1f)\n", sheet.Level, sheet.Total))
	b.WriteString(fmt.Sprintf("  Character   level %d (%d stat points earned)\n",
		p.Progress.CharacterLevel, p.Progress.TotalStatPointsEarned))
	b.WriteString(fmt.Sprintf("  Perk points %d\n", p.Wallet.PerkPoints))
	if p.LegacyScore > 0 {
		b.WriteString(fmt.Sprintf("  Score       %.1f\n", p.LegacyScore))
	}

	if active := activePerkNames(p); len(active) > 0 {
		b.WriteString(fmt.Sprintf("  Perks       %s\n", strings.Join(active, ", ")))
	}
	return b.String()
}

func activePerkNames(p profile.Profile) []string {
	var names []string
	for _, entry := range p.Perks {
		if entry.Active {
			names = append(names, entry.Perk.Name)
		}
	}
	return names
}

// #endregion sheet
