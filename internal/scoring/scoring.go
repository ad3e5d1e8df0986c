// Package scoring grades equipped relics against per-character weight
// tables.
//
// A score sheet is a JSON object keyed by character id:
//
//	{"1102": {"main": {"1": {"HPDelta": 1}, ...}, "weight": {"CriticalChanceBase": 1}, "max": 10.8, "sets": []}}
//
// "main" holds the main-stat weights per slot ("1" head through "6" link
// rope), "weight" the sub-stat weights shared by every slot, and "max" the
// best sub-stat total the character can roll, used to normalise.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/qingque-bot/qingque/internal/records"
)

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

// ErrMissingScoringEntry matches every [*MissingEntryError].
var ErrMissingScoringEntry = errors.New("character is not in the score sheet")

// MissingEntryError reports a character without a weight table.
type MissingEntryError struct {
	CharacterID string
	Name        string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("character <%s %s> is not in the score sheet", e.Name, e.CharacterID)
}

// Is makes errors.Is(err, ErrMissingScoringEntry) hold.
func (e *MissingEntryError) Is(target error) bool { return target == ErrMissingScoringEntry }

// ///////////////////////////////////////////////
// Sheet
// ///////////////////////////////////////////////

// Weights maps a property type ("HPDelta", "CriticalDamageBase", ...) to
// its weight, usually between 0 and 1.
type Weights map[string]float64

// Weight is the scoring table of one character. It is not modified after
// the sheet is decoded.
type Weight struct {
	// Main holds main-stat weights keyed by slot order ("1" to "6").
	Main map[string]Weights `json:"main"`
	// Sub holds sub-stat weights.
	Sub Weights `json:"weight"`
	// Max is the normalisation maximum of the sub-stat total.
	Max float64 `json:"max"`
	// Sets lists recommended relic set ids.
	Sets []string `json:"sets"`
}

// MainWeight returns the weight of a main stat on slot t.
func (w *Weight) MainWeight(t records.RelicType, property string) float64 {
	return w.Main[strconv.Itoa(t.Order())][property]
}

// Sheet is a decoded score sheet.
type Sheet map[string]*Weight

// ParseSheet decodes a score sheet.
func ParseSheet(data []byte) (Sheet, error) {
	var s Sheet
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode score sheet: %w", err)
	}
	for id, w := range s {
		if w == nil {
			return nil, fmt.Errorf("score sheet: character %s has no table", id)
		}
	}
	return s, nil
}

// ///////////////////////////////////////////////
// Rank
// ///////////////////////////////////////////////

// rankSteps are checked top down; the first threshold at or below the score
// names it.
var rankSteps = []struct {
	min  float64
	name string
}{
	{90, "OP"},
	{85, "SSS"},
	{80, "SS"},
	{70, "S"},
	{60, "A"},
	{50, "B"},
	{40, "C"},
}

// NoRank is the grade of a score below every threshold.
const NoRank = "N/A"

// Rank grades a 0-100 score.
func Rank(score float64) string {
	for _, s := range rankSteps {
		if score >= s.min {
			return s.name
		}
	}
	return NoRank
}

// ///////////////////////////////////////////////
// Calculator
// ///////////////////////////////////////////////

// RelicScore is the grade of one relic.
type RelicScore struct {
	ID    string
	Type  records.RelicType
	Score int
	Rank  string
}

// Result is the grade of a character's full relic loadout.
type Result struct {
	// Relics holds one score per equipped relic, keyed by relic id.
	Relics map[string]RelicScore
	// Score is the mean over six slots; empty slots count as zero.
	Score float64
	Rank  string
	// Max echoes the sheet's normalisation maximum.
	Max float64
}

// ForSlot returns the score of the relic equipped in slot t.
func (r *Result) ForSlot(t records.RelicType) (RelicScore, bool) {
	for _, s := range r.Relics {
		if s.Type == t {
			return s, true
		}
	}
	return RelicScore{}, false
}

// Calculator grades characters against a sheet.
type Calculator struct {
	sheet Sheet
}

// NewCalculator returns a calculator over sheet.
func NewCalculator(sheet Sheet) *Calculator {
	return &Calculator{sheet: sheet}
}

// Has reports whether the sheet covers the character.
func (c *Calculator) Has(characterID string) bool {
	_, ok := c.sheet[characterID]
	return ok
}

// Calculate grades every relic of ch. Relic slot types must be filled in.
func (c *Calculator) Calculate(ch *records.Character) (*Result, error) {
	w, ok := c.sheet[ch.ID]
	if !ok {
		return nil, &MissingEntryError{CharacterID: ch.ID, Name: ch.Name}
	}

	res := &Result{Relics: make(map[string]RelicScore, len(ch.Relics)), Max: w.Max}
	total := 0
	for _, relic := range ch.Relics {
		score := ScoreRelic(w, relic)
		res.Relics[relic.ID] = RelicScore{
			ID:    relic.ID,
			Type:  relic.Type,
			Score: score,
			Rank:  Rank(float64(score)),
		}
		total += score
	}
	res.Score = float64(total) / 6
	res.Rank = Rank(res.Score)
	return res, nil
}

// ScoreRelic returns the 0-100 score of one relic.
func ScoreRelic(w *Weight, relic records.Relic) int {
	main := MainScore(w.MainWeight(relic.Type, relic.Main.Type), relic.Level)
	sub := SubScore(w, relic.Subs)
	return int(math.Round((main/2 + sub/2) * 100))
}

// MainScore scales a main-stat weight by the relic's upgrade level, rounded
// to two decimals.
func MainScore(weight float64, level int) float64 {
	if weight == 0 {
		return 0
	}
	return round2(float64(level+1) / 16 * weight)
}

// SubScore sums the weighted roll counts of subs and normalises them by the
// character's maximum.
func SubScore(w *Weight, subs []records.Affix) float64 {
	if w.Max <= 0 {
		return 0
	}
	var sum float64
	for _, s := range subs {
		sum += (float64(s.Count) + float64(s.Step)*0.1) * w.Sub[s.Type]
	}
	return sum / w.Max
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
