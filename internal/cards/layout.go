// layout.go holds the size calculations the composers run before drawing,
// kept free of canvas access so they can be checked on their own.

package cards

import (
	"unicode/utf8"

	"github.com/qingque-bot/qingque/internal/records"
)

// ///////////////////////////////////////////////
// Character Sheet
// ///////////////////////////////////////////////

const (
	// statRows is the number of stat rows that fit without extending.
	statRows = 10
	// statRowHeight is the height of one stat row including spacing.
	statRowHeight = 34
	// maxIndicatorRunes is the widest text a slot indicator box holds.
	maxIndicatorRunes = 3
)

// StatExtension returns how far the character canvas must grow to fit n
// stat rows.
func StatExtension(n int) int {
	if n <= statRows {
		return 0
	}
	return (n - statRows) * statRowHeight
}

// checkIndicator rejects indicator text that overflows its box.
func checkIndicator(text string) error {
	if utf8.RuneCountInString(text) > maxIndicatorRunes {
		return &LayoutError{Kind: "indicator", Value: text}
	}
	return nil
}

// skillsWidth is the band the skill icons share; skillBox is one icon cell.
const (
	skillsWidth = 448
	skillBox    = 84
)

// SkillSpacing returns the horizontal step between n skill icons.
func SkillSpacing(n int) int {
	return skillsWidth - skillBox*n + skillBox/2 + 8
}

// GroupRelicSets keeps one bonus per set: the variant with the highest piece
// requirement. Sets keep their first-seen order.
func GroupRelicSets(sets []records.RelicSet) []records.RelicSet {
	var order []string
	best := make(map[string]records.RelicSet, len(sets))
	for _, s := range sets {
		cur, ok := best[s.ID]
		if !ok {
			order = append(order, s.ID)
		}
		if !ok || s.Num > cur.Num {
			best[s.ID] = s
		}
	}
	out := make([]records.RelicSet, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

// SetBonusHeight returns the vertical space the grouped set bonuses need.
func SetBonusHeight(groups []records.RelicSet) int {
	h := 0
	for _, g := range groups {
		h += 26 + 8
		if len(g.Properties) > 0 {
			h += 26 + 2
		}
	}
	return h
}

// ///////////////////////////////////////////////
// Wrapping
// ///////////////////////////////////////////////

// WrapWidths splits items into lines. Each item takes its width plus margin;
// an item that would bring the running width to maxWidth or beyond starts a
// new line. The result holds item indices per line. A line always holds at
// least one item.
func WrapWidths(widths []int, margin, maxWidth int) [][]int {
	var lines [][]int
	var line []int
	run := 0
	for i, w := range widths {
		run += w + margin
		if run >= maxWidth && len(line) > 0 {
			lines = append(lines, line)
			line = nil
			run = w + margin
		}
		line = append(line, i)
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// Chunk splits n items into rows of at most per items and returns the row
// lengths.
func Chunk(n, per int) []int {
	if n <= 0 || per <= 0 {
		return nil
	}
	rows := make([]int, 0, (n+per-1)/per)
	for n > 0 {
		k := min(n, per)
		rows = append(rows, k)
		n -= k
	}
	return rows
}

// IconsPerRow returns how many icons of size icon separated by gap fit on a
// row that starts at left and must stay below right.
func IconsPerRow(left, right, icon, gap int) int {
	n := 0
	for left+n*(icon+gap) < right {
		n++
	}
	return max(n, 1)
}

// ///////////////////////////////////////////////
// Sub-stat Rolls
// ///////////////////////////////////////////////

// rollAlpha maps a relic rarity and a sub-stat roll count to the opacity of
// the roll marker. Higher counts are more opaque; a maxed stat is fully
// opaque.
var rollAlpha = map[int]map[int]float64{
	2: {1: 1},
	3: {1: 0.5, 2: 1},
	4: {1: 0.5, 2: 0.75, 3: 1},
	5: {1: 0.5, 2: 0.67, 3: 0.84, 4: 1},
}

// RollAlpha returns the roll marker opacity, 1 for unknown combinations.
func RollAlpha(rarity, count int) float64 {
	if a, ok := rollAlpha[rarity][count]; ok {
		return a
	}
	return 1
}

// ///////////////////////////////////////////////
// Chronicle Blocks
// ///////////////////////////////////////////////

const (
	// blessingLineHeight is the step between wrapped blessing lines.
	blessingLineHeight = 30
	// blessingGroupGap separates two blessing paths.
	blessingGroupGap = 65
	// curioHeader is the space above the first curio row.
	curioHeader = 55
	// curioStep is one curio icon plus its margin.
	curioStep = 60
	// curioTail pads the last curio row.
	curioTail = 10
)

// BlessingGroupHeight returns the vertical space of one blessing path whose
// chips wrap onto lines lines.
func BlessingGroupHeight(lines int) int {
	if lines <= 0 {
		return 0
	}
	return blessingLineHeight*(lines-1) + blessingGroupGap
}

// CurioBlockHeight returns the vertical space of rows curio rows with their
// header.
func CurioBlockHeight(rows int) int {
	if rows <= 0 {
		return 0
	}
	return curioHeader + curioStep*(rows-1) + curioTail
}

// Overflow returns how far content ending at bottom runs past the limit of a
// canvas of the given height, or 0 when it fits.
func Overflow(bottom, height, margin int) int {
	return max(0, bottom-(height-margin))
}
