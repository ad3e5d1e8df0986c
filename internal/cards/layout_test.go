package cards

import (
	"errors"
	"reflect"
	"testing"

	"github.com/qingque-bot/qingque/internal/records"
)

func TestStatExtension(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 0},
		{10, 0},
		{11, 34},
		{13, 102},
	}
	for _, tt := range tests {
		if got := StatExtension(tt.n); got != tt.want {
			t.Errorf("StatExtension(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestCheckIndicator(t *testing.T) {
	for _, ok := range []string{"S1", "+15", "E6"} {
		if err := checkIndicator(ok); err != nil {
			t.Errorf("checkIndicator(%q) = %v, want nil", ok, err)
		}
	}
	err := checkIndicator("+100")
	if !errors.Is(err, ErrLayout) {
		t.Fatalf("got %v, want ErrLayout", err)
	}
	var le *LayoutError
	if !errors.As(err, &le) || le.Value != "+100" {
		t.Errorf("got %+v, want indicator +100", le)
	}
}

func TestSkillSpacing(t *testing.T) {
	if got := SkillSpacing(5); got != 78 {
		t.Errorf("SkillSpacing(5) = %d, want 78", got)
	}
	if SkillSpacing(4) <= SkillSpacing(5) {
		t.Error("fewer skills should spread wider")
	}
}

func TestGroupRelicSets(t *testing.T) {
	sets := []records.RelicSet{
		{ID: "101", Num: 2},
		{ID: "305", Num: 2},
		{ID: "101", Num: 4},
	}
	got := GroupRelicSets(sets)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].ID != "101" || got[0].Num != 4 {
		t.Errorf("group 0 = %s/%d, want 101/4", got[0].ID, got[0].Num)
	}
	if got[1].ID != "305" || got[1].Num != 2 {
		t.Errorf("group 1 = %s/%d, want 305/2", got[1].ID, got[1].Num)
	}
}

func TestSetBonusHeight(t *testing.T) {
	groups := []records.RelicSet{
		{ID: "101", Properties: []records.Affix{{Type: "SpeedDelta"}}},
		{ID: "305"},
	}
	if got := SetBonusHeight(groups); got != 96 {
		t.Errorf("SetBonusHeight = %d, want 96", got)
	}
	if got := SetBonusHeight(nil); got != 0 {
		t.Errorf("SetBonusHeight(nil) = %d, want 0", got)
	}
}

func TestWrapWidths(t *testing.T) {
	tests := []struct {
		name   string
		widths []int
		want   [][]int
	}{
		{"empty", nil, nil},
		{"fits", []int{50, 50}, [][]int{{0, 1}}},
		{"wraps", []int{100, 100, 100}, [][]int{{0, 1}, {2}}},
		{"oversized item alone", []int{300, 20}, [][]int{{0}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapWidths(tt.widths, 10, 250)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		n, per int
		want   []int
	}{
		{0, 10, nil},
		{7, 10, []int{7}},
		{10, 10, []int{10}},
		{25, 10, []int{10, 10, 5}},
		{3, 0, nil},
	}
	for _, tt := range tests {
		if got := Chunk(tt.n, tt.per); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Chunk(%d, %d) = %v, want %v", tt.n, tt.per, got, tt.want)
		}
	}
}

func TestIconsPerRow(t *testing.T) {
	if got := IconsPerRow(75, 1915, 50, 10); got != 31 {
		t.Errorf("IconsPerRow = %d, want 31", got)
	}
	if got := IconsPerRow(100, 50, 50, 10); got != 1 {
		t.Errorf("IconsPerRow on a too-narrow row = %d, want 1", got)
	}
}

func TestRollAlpha(t *testing.T) {
	tests := []struct {
		rarity, count int
		want          float64
	}{
		{5, 1, 0.5},
		{5, 4, 1},
		{4, 2, 0.75},
		{5, 9, 1},
		{1, 1, 1},
	}
	for _, tt := range tests {
		if got := RollAlpha(tt.rarity, tt.count); got != tt.want {
			t.Errorf("RollAlpha(%d, %d) = %v, want %v", tt.rarity, tt.count, got, tt.want)
		}
	}
}

func TestBlockHeights(t *testing.T) {
	if got := BlessingGroupHeight(0); got != 0 {
		t.Errorf("BlessingGroupHeight(0) = %d, want 0", got)
	}
	if got := BlessingGroupHeight(3); got != 125 {
		t.Errorf("BlessingGroupHeight(3) = %d, want 125", got)
	}
	if got := CurioBlockHeight(0); got != 0 {
		t.Errorf("CurioBlockHeight(0) = %d, want 0", got)
	}
	if got := CurioBlockHeight(2); got != 125 {
		t.Errorf("CurioBlockHeight(2) = %d, want 125", got)
	}
}

func TestOverflow(t *testing.T) {
	if got := Overflow(900, 1125, 75); got != 0 {
		t.Errorf("Overflow within bounds = %d, want 0", got)
	}
	if got := Overflow(1100, 1125, 75); got != 50 {
		t.Errorf("Overflow = %d, want 50", got)
	}
}

func TestRosterExtension(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 0},
		{20, 0},
		{25, 35},
		{40, 265},
	}
	for _, tt := range tests {
		if got := RosterExtension(tt.n); got != tt.want {
			t.Errorf("RosterExtension(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestWhiteVariant(t *testing.T) {
	if got := whiteVariant("icon/rogue/Block.png"); got != "icon/rogue/BlockWhite.png" {
		t.Errorf("got %q, want icon/rogue/BlockWhite.png", got)
	}
}

func TestElementIcon(t *testing.T) {
	tests := map[string]string{
		"Thunder": "icon/element/LightningWhite.png",
		"Quantum": "icon/element/QuantumWhite.png",
	}
	for id, want := range tests {
		if got := elementIcon(id); got != want {
			t.Errorf("elementIcon(%q) = %q, want %q", id, got, want)
		}
	}
}
