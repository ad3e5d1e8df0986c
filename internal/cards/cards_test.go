package cards_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"testing"

	"github.com/qingque-bot/qingque/internal/cards"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
	"github.com/qingque-bot/qingque/internal/render/rendertest"
)

// decoAssets are the ornaments every chronicle card draws.
var decoAssets = []string{
	"icon/deco/DecoShortLineRing177R@3x.png",
	"icon/deco/DialogFrameDeco1.png",
	"icon/deco/DialogFrameDeco1@3x.png",
	"icon/deco/NewSystemDecoLine.png",
}

const catalog = `{
	"chronicles": {"level_short": "Lv. {0}", "credits": "Data from HoYoLAB"},
	"mihomo": {"level": "Level", "tb_name": "{0}", "credits": "Data from Mihomo"},
	"moc_floor": "Stage {0}"
}`

// fixture writes an asset tree with the given index tables and a 40x40
// bitmap at every path, and returns a render context over it.
func fixture(t *testing.T, tables map[string]string, paths ...string) *render.Context {
	t.Helper()
	root := rendertest.Assets(t, tables)
	rendertest.Images(t, root, 40, 40, paths...)
	return rendertest.Context(t, root, catalog)
}

func members(n int) ([]records.Member, []string) {
	out := make([]records.Member, n)
	var paths []string
	for i := range out {
		out[i] = records.Member{ID: 1001 + i, Level: 80, Rarity: 4 + i%2, Rank: i % 7, Element: "fire"}
		paths = append(paths, out[i].AvatarIcon())
	}
	return out, append(paths, "icon/element/Fire.png")
}

func size(t *testing.T, out []byte) image.Point {
	t.Helper()
	return rendertest.Decode(t, out).Bounds().Size()
}

// ///////////////////////////////////////////////
// Roster
// ///////////////////////////////////////////////

func TestRosterCardExtendsForRows(t *testing.T) {
	tests := []struct {
		n          int
		wantHeight int
	}{
		{12, 1080},
		{25, 1115},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.n), func(t *testing.T) {
			ms, paths := members(tt.n)
			rc := fixture(t, nil, append(paths, decoAssets...)...)
			roster := records.Roster{User: records.UserInfo{Nickname: "Trailblazer", Level: 70}}
			for _, m := range ms {
				roster.Characters = append(roster.Characters, records.RosterCharacter{Member: m})
			}

			out, err := cards.NewRosterCard(rc, roster).Create(context.Background())
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if got := size(t, out); got != image.Pt(1920, tt.wantHeight) {
				t.Errorf("size = %v, want 1920x%d", got, tt.wantHeight)
			}
		})
	}
}

func TestRosterCardMissingAsset(t *testing.T) {
	ms, paths := members(3)
	rc := fixture(t, nil, paths...)
	roster := records.Roster{Characters: []records.RosterCharacter{{Member: ms[0]}}}

	if _, err := cards.NewRosterCard(rc, roster).Create(context.Background()); err == nil {
		t.Fatal("want an error for the missing decoration")
	}
	if got := rc.Registry.Holders(rc.Tag); got != 0 {
		t.Errorf("holders after failure = %d, want 0", got)
	}
}

func TestRosterCardCancelled(t *testing.T) {
	rc := fixture(t, nil, decoAssets...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cards.NewRosterCard(rc, records.Roster{}).Create(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

// ///////////////////////////////////////////////
// Forgotten Hall
// ///////////////////////////////////////////////

func TestForgottenHallCard(t *testing.T) {
	ms, paths := members(8)
	paths = append(paths, "image/backdrops/BackdropAbyss.png", "icon/deco/StarBig.png")
	rc := fixture(t, nil, paths...)

	for _, stars := range []int{0, 3} {
		floor := records.HallFloor{
			Name:   "Memory of Chaos (I)",
			Rounds: 4,
			Stars:  stars,
			Node1:  records.HallNode{Avatars: ms[:4], ChallengeTime: records.ChronicleDate{Year: 2024, Month: 1, Day: 2}},
			Node2:  records.HallNode{Avatars: ms[4:]},
		}
		out, err := cards.NewForgottenHallCard(rc, floor).Create(context.Background())
		if err != nil {
			t.Fatalf("stars %d: %v", stars, err)
		}
		img := rendertest.Decode(t, out)
		if got := img.Bounds().Size(); got != image.Pt(1920, 665) {
			t.Errorf("stars %d: size = %v, want 1920x665", stars, got)
		}
		if !rendertest.Opaque(img) {
			t.Errorf("stars %d: card has transparent pixels", stars)
		}
	}
}

// ///////////////////////////////////////////////
// Chronicle
// ///////////////////////////////////////////////

func TestChronicleCard(t *testing.T) {
	paths := append([]string{
		"image/backdrops/BackdropLoadingV2.png",
		"icon/sign/CommonTabIcon.png",
		"icon/sign/AvatarIcon.png",
		"icon/sign/AchievementIcon.png",
		"icon/sign/AbyssIcon02.png",
		"icon/sign/DailyQuestIcon.png",
		"icon/sign/CocoonIcon.png",
		"icon/item/11.png",
		"icon/item/12.png",
	}, decoAssets...)
	rc := fixture(t, nil, paths...)

	overview := records.Overview{Stats: records.OverviewStats{ActiveDays: 120, Avatars: 30, Achievements: 1234, AbyssProcess: "Stage 10"}}
	notes := records.Notes{Stamina: 120, MaxStamina: 240, ReserveStamina: 2400, TrainScore: 500, MaxTrainScore: 500, WeeklyCocoonCount: 1, WeeklyCocoonLimit: 3}
	out, err := cards.NewChronicleCard(rc, records.UserInfo{Nickname: "Stelle", Level: 70}, overview, notes).Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := size(t, out); got != image.Pt(1600, 900) {
		t.Errorf("size = %v, want 1600x900", got)
	}
}

// ///////////////////////////////////////////////
// Simulated Universe
// ///////////////////////////////////////////////

func TestSimulatedUniverseCard(t *testing.T) {
	ms, paths := members(4)
	run := records.RogueRun{Progress: 6, Difficulty: 3, Score: 5000, Lineup: ms}
	for i := range 40 {
		run.Curios = append(run.Curios, records.Curio{ID: 100 + i, Icon: "icon/curio/Curio.png"})
	}
	run.Blessings = []records.Blessings{
		{Kind: records.BlessingKind{ID: records.BlessingHunt, Name: "The Hunt"}, Items: []records.BlessingItem{
			{ID: 1, Name: "Swift Strike", Rank: 1},
			{ID: 2, Name: "Arrow Rain", Rank: 3, Enhanced: true},
		}},
		{Kind: records.BlessingKind{ID: records.BlessingNihility, Name: "Nihility"}},
	}
	paths = append(paths, decoAssets...)
	paths = append(paths, run.WorldIcon(), "icon/curio/Curio.png", records.BlessingHunt.Icon())
	rc := fixture(t, nil, paths...)

	out, err := cards.NewSimulatedUniverseCard(rc, records.UserInfo{Nickname: "Stelle"}, run).Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := size(t, out); got != image.Pt(2000, 1125) {
		t.Errorf("size = %v, want 2000x1125", got)
	}
}

// ///////////////////////////////////////////////
// Character Sheet
// ///////////////////////////////////////////////

// characterFixture returns a context with every asset the Seele sheet uses.
func characterFixture(t *testing.T) (*render.Context, records.Character) {
	t.Helper()
	tables := map[string]string{
		"characters": `{"1102": {"id": "1102", "name": "Seele", "tag": "seele", "rarity": 5,
			"path": "Rogue", "element": "Quantum", "ranks": ["110201", "110202"]}}`,
		"character_ranks": `{
			"110201": {"id": "110201", "name": "Fleeting", "rank": 1, "icon": "icon/skill/110201.png"},
			"110202": {"id": "110202", "name": "Dance", "rank": 2, "icon": "icon/skill/110202.png"}}`,
	}
	ch := records.Character{
		ID:      "1102",
		Name:    "Seele",
		Rarity:  5,
		Level:   80,
		Preview: "image/character_preview/1102.png",
		Path:    records.Ref{ID: "Rogue", Name: "The Hunt", Icon: "icon/path/Rogue.png"},
		Element: records.ElementRef{ID: "Quantum", Name: "Quantum"},
		LightCone: &records.LightCone{
			ID: "23001", Name: "In the Night", Rarity: 5, Rank: 1, Level: 80, Icon: "icon/light_cone/23001.png",
			Attributes: []records.Stat{{Field: "atk", Name: "ATK", Icon: "icon/property/IconAttack.png", Value: 582}},
		},
		Attributes: []records.Stat{
			{Field: "hp", Name: "HP", Icon: "icon/property/IconMaxHP.png", Value: 931},
			{Field: "atk", Name: "ATK", Icon: "icon/property/IconAttack.png", Value: 640},
		},
		Additions: []records.Stat{
			{Field: "crit_rate", Name: "CRIT Rate", Icon: "icon/property/IconCriticalChance.png", Value: 0.5, Percent: true},
		},
		Skills: []records.Skill{
			{ID: "110201", Type: records.SkillNormal, Level: 6, Icon: "icon/skill/1102_basic_atk.png"},
			{ID: "110202", Type: records.SkillBattle, Level: 10, Icon: "icon/skill/1102_skill.png"},
			{ID: "110207", Type: records.SkillTechnique, Level: 0, Icon: "icon/skill/1102_technique.png"},
		},
		SkillTrees: []records.SkillTreeNode{
			{ID: "1102101", Level: 1, Icon: "icon/skilltree/1102_a2.png"},
			{ID: "1102102", Level: 0, Icon: "icon/skilltree/1102_a4.png"},
		},
		RelicSets: []records.RelicSet{
			{ID: "108", Name: "Genius of Brilliant Stars", Num: 2, Properties: []records.Affix{{Type: "QuantumAddedRatio", Stat: records.Stat{Name: "Quantum DMG Boost", Value: 0.1, Percent: true}}}},
			{ID: "108", Name: "Genius of Brilliant Stars", Num: 4},
		},
	}
	relic := func(id string, typ records.RelicType, level int) records.Relic {
		return records.Relic{
			ID: id, Type: typ, Rarity: 5, Level: level, Icon: "icon/relic/" + id + ".png",
			Main: records.Affix{Stat: records.Stat{Field: "atk", Name: "ATK", Icon: "icon/property/IconAttack.png", Value: 352}},
			Subs: []records.Affix{
				{Stat: records.Stat{Field: "crit_rate", Name: "CRIT Rate", Icon: "icon/property/IconCriticalChance.png", Value: 0.06, Percent: true}, Count: 2},
				{Stat: records.Stat{Field: "spd", Name: "SPD", Value: 4}, Count: 1},
			},
		}
	}
	ch.Relics = []records.Relic{
		relic("61081", records.RelicHead, 15),
		relic("61082", records.RelicHand, 12),
		relic("63085", records.RelicSphere, 15),
	}

	paths := []string{
		ch.Preview, ch.Path.Icon, ch.LightCone.Icon,
		"icon/element/QuantumWhite.png",
		"icon/deco/StarBig_WhiteGlow.png",
		"icon/character/None.png",
		"icon/avatar/201102.png",
		"icon/property/IconMaxHP.png",
		"icon/property/IconAttack.png",
		"icon/property/IconCriticalChance.png",
		"icon/skill/110201.png",
		"icon/skill/110202.png",
	}
	for _, r := range ch.Relics {
		paths = append(paths, r.Icon)
	}
	for _, s := range ch.Skills {
		paths = append(paths, s.Icon)
	}
	for _, n := range ch.SkillTrees {
		paths = append(paths, n.Icon)
	}
	return fixture(t, tables, paths...), ch
}

func testPlayer() records.PlayerInfo {
	return records.PlayerInfo{
		UID:      "800123456",
		Nickname: "Stelle",
		Level:    70,
		Avatar:   records.Ref{Icon: "icon/avatar/201102.png"},
		SpaceInfo: records.SpaceInfo{
			AchievementCount: 500,
			Challenge:        records.ChallengeData{PreMazeGroupIndex: 15, MazeGroupIndex: 10},
		},
	}
}

func TestCharacterCardFramesSheet(t *testing.T) {
	tests := []struct {
		name       string
		rank       int
		wantHeight int
	}{
		{"no eidolons", 0, 910 + 90},
		{"eidolons", 1, 910 + 55 + 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, ch := characterFixture(t)
			ch.Rank = tt.rank
			out, err := cards.NewCharacterCard(rc, ch, testPlayer(), cards.CharacterOptions{Detailed: true}).Create(context.Background())
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			img := rendertest.Decode(t, out)
			if got := img.Bounds().Size(); got != image.Pt(1600, tt.wantHeight) {
				t.Errorf("size = %v, want 1600x%d", got, tt.wantHeight)
			}
			if !rendertest.Opaque(img) {
				t.Error("card has transparent pixels")
			}
		})
	}
}

func TestCharacterCardExtendsForStats(t *testing.T) {
	rc, ch := characterFixture(t)
	for i := range 12 {
		ch.Additions = append(ch.Additions, records.Stat{
			Field: fmt.Sprintf("extra_%d", i), Name: "Extra", Icon: "icon/property/IconAttack.png", Value: 1,
		})
	}
	// HP, ATK, CRIT Rate and twelve extras make 15 rows, five past the limit.
	out, err := cards.NewCharacterCard(rc, ch, testPlayer(), cards.CharacterOptions{}).Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := size(t, out); got != image.Pt(1600, 910+5*34+90) {
		t.Errorf("size = %v, want 1600x%d", got, 910+5*34+90)
	}
}

func TestCharacterCardRejectsWideIndicator(t *testing.T) {
	rc, ch := characterFixture(t)
	ch.Relics[0].Level = 100

	_, err := cards.NewCharacterCard(rc, ch, testPlayer(), cards.CharacterOptions{}).Create(context.Background())
	if !errors.Is(err, cards.ErrLayout) {
		t.Fatalf("got %v, want ErrLayout", err)
	}
}

// Slot geometry of the character sheet, in framed-card pixels.
const (
	frameInset   = 16
	relicColumn  = 62
	planarColumn = 542
	slotPitch    = 163
)

// slotIcon returns the colour at the centre of the item icon in slot pos of
// the column at left.
func slotIcon(img image.Image, pos, left int) color.NRGBA {
	x := frameInset + left + 21 + 48
	y := frameInset + pos*slotPitch + 21 + 48
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestCharacterCardEmptySlots(t *testing.T) {
	tests := []struct {
		name      string
		lightCone bool
	}{
		{"light cone equipped", true},
		{"nothing equipped", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, ch := characterFixture(t)
			ch.Relics = nil
			if !tt.lightCone {
				ch.LightCone = nil
			}
			out, err := cards.NewCharacterCard(rc, ch, testPlayer(), cards.CharacterOptions{}).Create(context.Background())
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			img := rendertest.Decode(t, out)

			empty := slotIcon(img, 1, relicColumn)
			for pos := 2; pos <= 4; pos++ {
				if got := slotIcon(img, pos, relicColumn); got != empty {
					t.Errorf("cavern slot %d = %v, want placeholder %v", pos, got, empty)
				}
			}
			for pos := 2; pos <= 3; pos++ {
				if got := slotIcon(img, pos, planarColumn); got != empty {
					t.Errorf("planar slot %d = %v, want placeholder %v", pos, got, empty)
				}
			}
			lc := slotIcon(img, 1, planarColumn)
			if tt.lightCone && lc == empty {
				t.Errorf("light cone slot drew a placeholder")
			}
			if !tt.lightCone && lc != empty {
				t.Errorf("light cone slot = %v, want placeholder %v", lc, empty)
			}
		})
	}
}

func TestCharacterCardPlaceholdersOnlyWhereEmpty(t *testing.T) {
	rc, ch := characterFixture(t)
	out, err := cards.NewCharacterCard(rc, ch, testPlayer(), cards.CharacterOptions{}).Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	img := rendertest.Decode(t, out)

	// The fixture equips head, hand and sphere.
	head, body, feet := slotIcon(img, 1, relicColumn), slotIcon(img, 3, relicColumn), slotIcon(img, 4, relicColumn)
	if body != feet {
		t.Errorf("empty body %v and feet %v differ", body, feet)
	}
	if head == feet {
		t.Error("equipped head slot drew a placeholder")
	}
	if sphere, rope := slotIcon(img, 2, planarColumn), slotIcon(img, 3, planarColumn); sphere == rope || rope != feet {
		t.Errorf("sphere %v, rope %v: want only the rope empty like feet %v", sphere, rope, feet)
	}
}

func TestCharacterCardLightConeIndicator(t *testing.T) {
	rc, ch := characterFixture(t)
	ch.Relics = nil
	ch.LightCone.Rank = 1000

	_, err := cards.NewCharacterCard(rc, ch, testPlayer(), cards.CharacterOptions{}).Create(context.Background())
	var le *cards.LayoutError
	if !errors.As(err, &le) || le.Value != "S1000" {
		t.Fatalf("got %v, want a layout error for S1000", err)
	}
}

// ///////////////////////////////////////////////
// Player Summary
// ///////////////////////////////////////////////

func TestPlayerCard(t *testing.T) {
	masks := []string{
		"images/MihomoCardMask.png",
		"images/StarrailStartBG.jpg",
		"images/MihomoCardFrostMask.png",
		"images/MihomoCardCharMask.png",
		"images/MihomoCardDeco.png",
		"images/MihomoCardStarfaringMask.png",
	}
	icons := []string{
		"icon/deco/StarBig.png",
		"icon/deco/IconCompassDeco.png",
		"icon/sign/CommonTabIcon.png",
		"icon/sign/AchievementIcon.png",
		"icon/sign/DataBankAvatarIcon.png",
		"icon/sign/DataBankLightConeIcon.png",
		"icon/sign/NoviceRogueIcon.png",
		"icon/sign/AbyssIcon01.png",
		"icon/sign/AbyssIcon02.png",
	}
	character := func(id string) records.Character {
		return records.Character{
			ID: id, Name: "Char " + id, Rarity: 5, Level: 80, Rank: 2,
			Icon:     "icon/character/" + id + ".png",
			Portrait: "image/character_portrait/" + id + ".png",
			Path:     records.Ref{ID: "Rogue", Name: "The Hunt", Icon: "icon/path/Rogue.png"},
			Element:  records.ElementRef{ID: "Quantum", Name: "Quantum", Icon: "icon/element/Quantum.png"},
		}
	}
	chars := []records.Character{character("1102"), character("1205"), character("1208")}
	for _, ch := range chars {
		icons = append(icons, ch.Icon, ch.Portrait)
	}
	icons = append(icons, chars[0].Path.Icon, chars[0].Element.Icon)

	root := rendertest.Assets(t, nil)
	rendertest.Images(t, root, 1000, 500, masks...)
	rendertest.Images(t, root, 40, 40, icons...)
	rc := rendertest.Context(t, root, catalog)

	player := testPlayer()
	player.Signature = "Hello"
	player.SpaceInfo.PassAreaProgress = 6

	for _, n := range []int{0, 1, 3} {
		profile := records.Profile{Player: player, Characters: chars[:n]}
		out, err := cards.NewPlayerCard(rc, profile).Create(context.Background())
		if err != nil {
			t.Fatalf("%d characters: %v", n, err)
		}
		if got := size(t, out); got != image.Pt(1000, 500) {
			t.Errorf("%d characters: size = %v, want 1000x500", n, got)
		}
	}
}
