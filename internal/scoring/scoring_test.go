package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qingque-bot/qingque/internal/records"
)

const seeleSheet = `{
	"1102": {
		"main": {"1": {"HPDelta": 1}, "3": {"CriticalDamageBase": 1}},
		"weight": {"CriticalChanceBase": 1, "CriticalDamageBase": 1, "HPAddedRatio": 0},
		"max": 10,
		"sets": ["108"]
	}
}`

func mustSheet(t *testing.T, body string) Sheet {
	t.Helper()
	s, err := ParseSheet([]byte(body))
	if err != nil {
		t.Fatalf("ParseSheet: %v", err)
	}
	return s
}

// ///////////////////////////////////////////////
// Rank
// ///////////////////////////////////////////////

func TestRank(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "OP"},
		{90, "OP"},
		{89.999, "SSS"},
		{85, "SSS"},
		{80, "SS"},
		{79.5, "S"},
		{70, "S"},
		{60, "A"},
		{50, "B"},
		{40, "C"},
		{39.999, NoRank},
		{0, NoRank},
	}
	for _, tt := range tests {
		if got := Rank(tt.score); got != tt.want {
			t.Errorf("Rank(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Calculator
// ///////////////////////////////////////////////

func TestMainScore(t *testing.T) {
	tests := []struct {
		weight float64
		level  int
		want   float64
	}{
		{0, 15, 0},
		{1, 15, 1},
		{1, 0, 0.06},
		{0.5, 7, 0.25},
	}
	for _, tt := range tests {
		if got := MainScore(tt.weight, tt.level); got != tt.want {
			t.Errorf("MainScore(%v, %d) = %v, want %v", tt.weight, tt.level, got, tt.want)
		}
	}
}

func TestSubScoreZeroMax(t *testing.T) {
	w := &Weight{Sub: Weights{"CriticalChanceBase": 1}}
	subs := []records.Affix{{Type: "CriticalChanceBase", Count: 5}}
	if got := SubScore(w, subs); got != 0 {
		t.Errorf("SubScore with max 0 = %v, want 0", got)
	}
}

func TestCalculate(t *testing.T) {
	calc := NewCalculator(mustSheet(t, seeleSheet))
	ch := &records.Character{
		ID:   "1102",
		Name: "Seele",
		Relics: []records.Relic{
			{
				ID: "61011", Type: records.RelicHead, Level: 15,
				Main: records.Affix{Type: "HPDelta"},
				Subs: []records.Affix{
					{Type: "CriticalChanceBase", Count: 3, Step: 2},
					{Type: "CriticalDamageBase", Count: 2},
					{Type: "HPAddedRatio", Count: 4},
				},
			},
			{
				ID: "61012", Type: records.RelicHand, Level: 0,
				Main: records.Affix{Type: "AttackDelta"},
			},
		},
	}

	res, err := calc.Calculate(ch)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	head, ok := res.ForSlot(records.RelicHead)
	if !ok {
		t.Fatal("no score for head slot")
	}
	// main 16/16*1 = 1, sub (3.2+2)/10 = 0.52, (1/2 + 0.52/2) * 100 = 76.
	if head.Score != 76 || head.Rank != "S" {
		t.Errorf("head = %+v, want 76 S", head)
	}
	if hand := res.Relics["61012"]; hand.Score != 0 || hand.Rank != NoRank {
		t.Errorf("hand = %+v, want 0 N/A", hand)
	}
	if want := 76.0 / 6; math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("overall = %v, want %v", res.Score, want)
	}
	if res.Rank != NoRank {
		t.Errorf("overall rank = %q, want %q", res.Rank, NoRank)
	}
	if res.Max != 10 {
		t.Errorf("max = %v, want 10", res.Max)
	}
}

func TestCalculateAllZero(t *testing.T) {
	calc := NewCalculator(mustSheet(t, `{"1001": {"main": {}, "weight": {}, "max": 5}}`))
	ch := &records.Character{ID: "1001"}
	for _, rt := range append(append([]records.RelicType{}, records.Cavern...), records.Planar...) {
		ch.Relics = append(ch.Relics, records.Relic{
			ID:   string(rt),
			Type: rt,
			Main: records.Affix{Type: "HPDelta"},
			Subs: []records.Affix{{Type: "SpeedDelta"}},
		})
	}
	res, err := calc.Calculate(ch)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Score != 0 || res.Rank != NoRank {
		t.Errorf("got %v %q, want 0 %q", res.Score, res.Rank, NoRank)
	}
	for id, s := range res.Relics {
		if s.Score != 0 {
			t.Errorf("relic %s score = %d, want 0", id, s.Score)
		}
	}
}

func TestCalculateMissingCharacter(t *testing.T) {
	calc := NewCalculator(mustSheet(t, seeleSheet))
	_, err := calc.Calculate(&records.Character{ID: "1005", Name: "Kafka"})
	if !errors.Is(err, ErrMissingScoringEntry) {
		t.Fatalf("err = %v, want ErrMissingScoringEntry", err)
	}
	var me *MissingEntryError
	if !errors.As(err, &me) || me.CharacterID != "1005" {
		t.Errorf("err = %#v, want character 1005", err)
	}
	if calc.Has("1005") || !calc.Has("1102") {
		t.Error("Has disagrees with the sheet")
	}
}

func TestParseSheetRejectsNull(t *testing.T) {
	if _, err := ParseSheet([]byte(`{"1102": null}`)); err == nil {
		t.Error("expected error for null character table")
	}
	if _, err := ParseSheet([]byte(`[`)); err == nil {
		t.Error("expected decode error")
	}
}

// ///////////////////////////////////////////////
// Store
// ///////////////////////////////////////////////

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.json")
	s := NewStore(path)
	if _, err := s.Calculator(); !errors.Is(err, ErrNoSheet) {
		t.Fatalf("err = %v, want ErrNoSheet", err)
	}
	if err := s.Reload(); err == nil {
		t.Fatal("expected error for missing sheet")
	}

	if err := os.WriteFile(path, []byte(seeleSheet), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	calc, err := s.Calculator()
	if err != nil || !calc.Has("1102") {
		t.Fatalf("Calculator = %v, %v", calc, err)
	}

	// A broken file keeps the previous sheet.
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err == nil {
		t.Fatal("expected decode error")
	}
	calc, err = s.Calculator()
	if err != nil || !calc.Has("1102") {
		t.Errorf("previous sheet lost: %v, %v", calc, err)
	}
}

func TestStoreDigest(t *testing.T) {
	s := NewStore("")
	if got := s.Digest(); got != "" {
		t.Errorf("empty store digest = %q, want empty", got)
	}

	compact, err := ParseSheet([]byte(seeleSheet))
	if err != nil {
		t.Fatal(err)
	}
	s.Set(compact)
	first := s.Digest()
	if len(first) != 64 {
		t.Fatalf("digest = %q, want 64 hex chars", first)
	}

	// Layout alone does not change the digest.
	var indented bytes.Buffer
	if err := json.Indent(&indented, []byte(seeleSheet), "", "    "); err != nil {
		t.Fatal(err)
	}
	reformatted, err := ParseSheet(indented.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	s.Set(reformatted)
	if got := s.Digest(); got != first {
		t.Errorf("reformatted sheet digest = %q, want %q", got, first)
	}

	compact["1102"].Max++
	s.Set(compact)
	if got := s.Digest(); got == first {
		t.Error("changed weights kept the digest")
	}
}

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "score.json"))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWatcherFollowReloads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watcher timing test in short mode")
	}
	path := filepath.Join(t.TempDir(), "score.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	w.pollInterval = 50 * time.Millisecond
	go s.Follow(w, nil)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(seeleSheet), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if calc, err := s.Calculator(); err == nil && calc.Has("1102") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("sheet was not reloaded after the file changed")
}
