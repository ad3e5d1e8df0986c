package records

import (
	"slices"
	"strings"
)

// Flat stats print as whole numbers; every other field is a fraction.
var flatFields = map[string]bool{
	"hp":  true,
	"atk": true,
	"def": true,
	"spd": true,
}

// fieldOrder is the row order of the character stat sheet.
var fieldOrder = []string{
	"hp", "atk", "def", "spd",
	"crit_rate", "crit_dmg", "break_dmg", "heal_rate", "sp_rate",
	"effect_hit", "effect_res",
	"physical_dmg", "fire_dmg", "ice_dmg", "lightning_dmg", "wind_dmg", "quantum_dmg", "imaginary_dmg",
	"all_dmg",
	"physical_res", "fire_res", "ice_res", "lightning_res", "wind_res", "quantum_res", "imaginary_res",
}

// IsFlatField reports whether field is printed as a whole number.
func IsFlatField(field string) bool { return flatFields[field] }

// Aggregate sums stats of the same field across every list and returns the
// fields with a strictly positive total. Known fields come first in stat
// sheet order, unknown ones after them in the order first seen. Name and
// Icon come from the first entry of each field.
func Aggregate(lists ...[]Stat) []Stat {
	totals := make(map[string]*Stat)
	var seen []string
	for _, list := range lists {
		for _, s := range list {
			if agg, ok := totals[s.Field]; ok {
				agg.Value += s.Value
				continue
			}
			agg := s
			agg.Display = ""
			agg.Percent = !IsFlatField(s.Field)
			totals[s.Field] = &agg
			seen = append(seen, s.Field)
		}
	}

	out := make([]Stat, 0, len(totals))
	emit := func(field string) {
		if s, ok := totals[field]; ok && s.Value > 0 {
			out = append(out, *s)
			delete(totals, field)
		}
	}
	for _, f := range fieldOrder {
		emit(f)
	}
	for _, f := range seen {
		emit(f)
	}
	return out
}

// sortNodesByIcon orders trace nodes by icon path.
func sortNodesByIcon(nodes []SkillTreeNode) {
	slices.SortStableFunc(nodes, func(a, b SkillTreeNode) int {
		return strings.Compare(a.Icon, b.Icon)
	})
}
