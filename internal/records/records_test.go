package records

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

// ///////////////////////////////////////////////
// Aggregate
// ///////////////////////////////////////////////

func TestAggregateSumsByField(t *testing.T) {
	attrs := []Stat{
		{Field: "atk", Name: "ATK", Value: 500},
		{Field: "crit_rate", Name: "CRIT Rate", Value: 0.05, Percent: true},
		{Field: "hp", Name: "HP", Value: 1000},
	}
	adds := []Stat{
		{Field: "atk", Value: 250},
		{Field: "crit_rate", Value: 0.25},
		{Field: "fire_dmg", Name: "Fire DMG Boost", Value: 0.388},
		{Field: "ice_res", Value: 0},
	}

	got := Aggregate(attrs, adds)

	wantFields := []string{"hp", "atk", "crit_rate", "fire_dmg"}
	if len(got) != len(wantFields) {
		t.Fatalf("got %d stats, want %d: %+v", len(got), len(wantFields), got)
	}
	for i, f := range wantFields {
		if got[i].Field != f {
			t.Errorf("stat %d field = %q, want %q", i, got[i].Field, f)
		}
	}
	if got[1].Value != 750 || got[1].Name != "ATK" {
		t.Errorf("atk = %+v, want 750 named ATK", got[1])
	}
	if math.Abs(got[2].Value-0.30) > 1e-9 || !got[2].Percent {
		t.Errorf("crit_rate = %+v, want 0.30 percent", got[2])
	}
}

func TestAggregateTotalsMatchInputs(t *testing.T) {
	attrs := []Stat{{Field: "spd", Value: 101}, {Field: "def", Value: 400}}
	adds := []Stat{{Field: "spd", Value: 24.5}, {Field: "def", Value: 12}, {Field: "spd", Value: 2}}

	sums := map[string]float64{}
	for _, s := range append(append([]Stat{}, attrs...), adds...) {
		sums[s.Field] += s.Value
	}
	for _, s := range Aggregate(attrs, adds) {
		if s.Value != sums[s.Field] {
			t.Errorf("%s = %v, want %v", s.Field, s.Value, sums[s.Field])
		}
	}
	// Aggregating the output again changes nothing.
	once := Aggregate(attrs, adds)
	twice := Aggregate(once)
	for i := range once {
		if once[i].Value != twice[i].Value {
			t.Errorf("re-aggregated %s = %v, want %v", once[i].Field, twice[i].Value, once[i].Value)
		}
	}
}

func TestAggregateUnknownFieldsLast(t *testing.T) {
	got := Aggregate([]Stat{{Field: "mystery", Value: 1}, {Field: "atk", Value: 1}})
	if len(got) != 2 || got[0].Field != "atk" || got[1].Field != "mystery" {
		t.Fatalf("got %+v, want atk then mystery", got)
	}
}

func TestStatFormat(t *testing.T) {
	tests := []struct {
		stat Stat
		want string
	}{
		{Stat{Value: 3512.6}, "3513"},
		{Stat{Value: 0.6543, Percent: true}, "65.4%"},
		{Stat{Value: 1.2, Percent: true}, "120.0%"},
	}
	for _, tt := range tests {
		if got := tt.stat.Format(); got != tt.want {
			t.Errorf("Format(%+v) = %q, want %q", tt.stat, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Character
// ///////////////////////////////////////////////

func TestRelicTypeOrder(t *testing.T) {
	order := append(append([]RelicType{}, Cavern...), Planar...)
	for i, rt := range order {
		if rt.Order() != i+1 {
			t.Errorf("%s order = %d, want %d", rt, rt.Order(), i+1)
		}
		if rt.IsPlanar() != (i >= 4) {
			t.Errorf("%s planar = %v", rt, rt.IsPlanar())
		}
	}
	if RelicType("WAIST").Order() != 0 {
		t.Error("unknown slot should have order 0")
	}
}

func TestDisplaySkillsDedupes(t *testing.T) {
	c := Character{Skills: []Skill{
		{ID: "1", Type: SkillNormal},
		{ID: "2", Type: SkillBattle},
		{ID: "3", Type: SkillUltimate},
		{ID: "4", Type: SkillTalent},
		{ID: "5", Type: SkillMazeNormal},
		{ID: "6", Type: SkillTechnique},
		{ID: "7", Type: SkillBattle},
	}}
	got := c.DisplaySkills()
	want := []string{"1", "2", "3", "4", "6"}
	if len(got) != len(want) {
		t.Fatalf("got %d skills, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("skill %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestDisplaySkillsOrdered(t *testing.T) {
	c := Character{Skills: []Skill{
		{ID: "talent", Type: SkillTalent},
		{ID: "odd", Type: "Unknown"},
		{ID: "tech", Type: SkillTechnique},
		{ID: "ult", Type: SkillUltimate},
		{ID: "basic", Type: SkillNormal},
		{ID: "skill", Type: SkillBattle},
	}}
	got := c.DisplaySkills()
	want := []string{"basic", "skill", "ult", "talent", "tech", "odd"}
	if len(got) != len(want) {
		t.Fatalf("got %d skills, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("skill %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestMajorTracesSorted(t *testing.T) {
	c := Character{SkillTrees: []SkillTreeNode{
		{ID: "c", Icon: "icon/skilltree/1102/3.png"},
		{ID: "x", Icon: "icon/property/IconAttack.png"},
		{ID: "a", Icon: "icon/skilltree/1102/1.png"},
		{ID: "b", Icon: "icon/skilltree/1102/2.png"},
	}}
	got := c.MajorTraces()
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("got %+v, want a, b, c", got)
	}
}

func TestChallengeNormalized(t *testing.T) {
	tests := []struct {
		name        string
		in          ChallengeData
		memory, moc int
	}{
		{"regular", ChallengeData{PreMazeGroupIndex: 15, MazeGroupIndex: 10, MazeGroupID: 1008}, 15, 10},
		{"swapped", ChallengeData{PreMazeGroupIndex: 1008, MazeGroupIndex: 15, MazeGroupID: 10}, 15, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlayerInfo{SpaceInfo: SpaceInfo{Challenge: tt.in}}
			if got := p.MemoryFloor(); got != tt.memory {
				t.Errorf("MemoryFloor = %d, want %d", got, tt.memory)
			}
			if got := p.ChaosFloor(); got != tt.moc {
				t.Errorf("ChaosFloor = %d, want %d", got, tt.moc)
			}
		})
	}
}

func TestRegionKey(t *testing.T) {
	tests := map[string]string{
		"100000001": "region.short.china",
		"600000001": "region.short.na",
		"700000001": "region.short.eur",
		"800000001": "region.short.asia",
		"900000001": "region.short.taiwan",
		"300000001": "",
		"":          "",
	}
	for uid, want := range tests {
		if got := RegionKey(uid); got != want {
			t.Errorf("RegionKey(%q) = %q, want %q", uid, got, want)
		}
	}
}

func TestDecodeRelic(t *testing.T) {
	raw := `{"id":"61011","set_id":"101","rarity":5,"level":15,
		"main_affix":{"type":"HPDelta","field":"hp","value":705.6},
		"sub_affix":[{"type":"CriticalChanceBase","field":"crit_rate","value":0.058,"percent":true,"count":2,"step":3}]}`
	var r Relic
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Main.Type != "HPDelta" || r.Main.Field != "hp" {
		t.Errorf("main = %+v", r.Main)
	}
	if len(r.Subs) != 1 || r.Subs[0].Count != 2 || r.Subs[0].Step != 3 || !r.Subs[0].Percent {
		t.Errorf("subs = %+v", r.Subs)
	}
}

// ///////////////////////////////////////////////
// Chronicle
// ///////////////////////////////////////////////

func TestChronicleDateIsUTCPlus8(t *testing.T) {
	d := ChronicleDate{Year: 2023, Month: 9, Day: 16, Hour: 4, Minute: 30}
	got := d.Time().UTC()
	want := time.Date(2023, 9, 15, 20, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestElementIcon(t *testing.T) {
	tests := map[string]string{
		"lightning": "icon/element/Lightning.png",
		"Quantum":   "icon/element/Quantum.png",
		"":          "icon/element/None.png",
	}
	for in, want := range tests {
		if got := ElementIcon(in); got != want {
			t.Errorf("ElementIcon(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBlessingTypeIcon(t *testing.T) {
	tests := map[BlessingType]string{
		BlessingRemembrance: "icon/path/Memory.png",
		BlessingElation:     "icon/path/Joy.png",
		BlessingPropagation: "icon/path/None.png",
		BlessingHunt:        "icon/path/Hunt.png",
		BlessingType(999):   "icon/path/None.png",
	}
	for bt, want := range tests {
		if got := bt.Icon(); got != want {
			t.Errorf("%d icon = %q, want %q", bt, got, want)
		}
	}
}

func TestStripRichText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<color=#f29e38ff>Ice</color> DMG", "Ice DMG"},
		{"≪Lament≫", "<<Lament>>"},
		{"a < b > c", "a < b > c"},
		{"<b>bold</b> <unknown>", "bold <unknown>"},
	}
	for _, tt := range tests {
		if got := StripRichText(tt.in); got != tt.want {
			t.Errorf("StripRichText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
