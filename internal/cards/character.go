package cards

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strconv"
	"strings"

	"github.com/qingque-bot/qingque/internal/assets"
	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
	"github.com/qingque-bot/qingque/internal/scoring"
)

// ///////////////////////////////////////////////
// Character Sheet
// ///////////////////////////////////////////////

const (
	characterWidth  = 1568
	characterHeight = 910
	// outerWidth is the framed card; the sheet sits 16px inside it.
	outerWidth  = 1600
	outerFooter = 90
	outerInset  = 16

	// The preview panel on the right.
	charTop    = 164
	charBottom = charTop + 352
	charLeft   = 1006
	charRight  = charLeft + 500

	// relicLeft is the cavern relic column; planarLeft holds the light
	// cone and the planar ornaments.
	relicLeft  = 62
	slotBox    = 138
	slotMargin = 25
	slotStep   = slotBox + slotMargin
	slotPanel  = 254
	planarLeft = relicLeft + slotBox + 28 + slotPanel + 60

	// setBonusTop is the first relic set line, below the cavern column.
	setBonusTop = 4*slotStep + 132 + 26
	// eidolonShift moves skills and traces down when eidolons are shown.
	eidolonShift = 65 + 40
	// eidolonExtension is the canvas growth eidolons need in total.
	eidolonExtension = 55

	starGlow   = "icon/deco/StarBig_WhiteGlow.png"
	noneIcon   = "icon/character/None.png"
	nicknameID = "{NICKNAME}"
)

// CharacterOptions tunes the character sheet.
type CharacterOptions struct {
	// HideUID drops the UID and region from the frame footer.
	HideUID bool
	// Detailed adds sub stat roll counts.
	Detailed bool
}

// CharacterCard is the showcase sheet of one character: preview, stats,
// relics with their scores, light cone, set bonuses, eidolons, skills and
// traces, framed with the owner's profile line.
type CharacterCard struct {
	rc        *render.Context
	character records.Character
	player    records.PlayerInfo
	opts      CharacterOptions

	// colors is resolved in Prepare.
	colors ColorPair
}

// NewCharacterCard returns a character sheet composer.
func NewCharacterCard(rc *render.Context, character records.Character, player records.PlayerInfo, opts CharacterOptions) *CharacterCard {
	return &CharacterCard{rc: rc, character: character, player: player, opts: opts}
}

// Create renders the card to PNG.
func (c *CharacterCard) Create(ctx context.Context) ([]byte, error) {
	return render.Run(ctx, c.rc, c)
}

func (c *CharacterCard) Kind() string { return "character" }

func (c *CharacterCard) Subject() string {
	return fmt.Sprintf("UID-%s/C-%s", c.player.UID, c.character.ID)
}

// CharacterID returns the id of the character drawn.
func (c *CharacterCard) CharacterID() string { return c.character.ID }

func (c *CharacterCard) Prepare(j *render.Job) (render.Frame, error) {
	pair, ok := LookupColors(c.character.ID)
	if !ok {
		preview, err := j.Image(c.character.Preview)
		if err != nil {
			return render.Frame{}, fmt.Errorf("load preview: %w", err)
		}
		pair = ResolveColors(c.character.ID, preview)
		j.Log.Debug("derived card colours", "background", pair.Background, "foreground", pair.Foreground)
	}
	c.colors = pair
	return render.Frame{
		Width:      characterWidth,
		Height:     characterHeight,
		Background: pair.Background,
		Foreground: pair.Foreground,
	}, nil
}

func (c *CharacterCard) Draw(j *render.Job, canvas *drawing.Canvas) error {
	p := newPainter(j, canvas)

	ch := c.character
	relics, err := ResolveRelicTypes(j.Index, ch.Relics)
	if err != nil {
		return err
	}
	ch.Relics = relics
	meta, err := j.Index.Character(ch.ID)
	if err != nil {
		return err
	}
	scores := c.relicScores(j, &ch)

	if p.section("player") {
		c.drawPlayer(p)
	}
	if p.section("header") {
		c.drawHeader(p, meta)
	}
	if p.section("stats") {
		c.drawStats(p)
	}
	cavern, planar := LayoutRelics(ch.Relics)
	if p.section("relics") {
		for i, slot := range cavern {
			c.drawSlot(p, i+1, relicLeft, slot, scores)
		}
	}
	if p.section("light cone") {
		c.drawLightCone(p)
		for i, slot := range planar {
			c.drawSlot(p, i+2, planarLeft, slot, scores)
		}
	}
	if p.section("set bonus") {
		c.drawSetBonus(p)
	}
	if p.section("eidolons") {
		c.drawEidolons(p, meta)
	}
	if p.section("skills") {
		c.drawSkills(p)
	}

	if p.section("footer") {
		p.supportedBy(128)
		p.credits("mihomo.credits", image.Pt(canvas.Width()-20, canvas.Height()-20), "rs", 20, 128)
	}
	return p.Err()
}

// relicScores grades the relics. A missing sheet or a character the sheet
// does not cover yields nil, which hides the score boxes.
func (c *CharacterCard) relicScores(j *render.Job, ch *records.Character) *scoring.Result {
	store := j.Scores()
	if store == nil {
		return nil
	}
	calc, err := store.Calculator()
	if err != nil {
		j.Log.Debug("relic scores unavailable", "error", err)
		return nil
	}
	res, err := calc.Calculate(ch)
	if errors.Is(err, scoring.ErrMissingScoringEntry) {
		j.Log.Debug("character not scored", "id", ch.ID)
		return nil
	}
	if err != nil {
		j.Log.Warn("relic scoring failed", "error", err)
		return nil
	}
	return res
}

// ///////////////////////////////////////////////
// Header
// ///////////////////////////////////////////////

func (c *CharacterCard) drawPlayer(p *painter) {
	p.text(c.player.Nickname, drawing.TextStyle{
		Pos: image.Pt(relicLeft+140, charTop-charTop/2), Size: 72, Anchor: "lm",
	})
	p.paste(p.icon(c.player.Avatar.Icon, 120), relicLeft, charTop-144)
	p.ring(relicLeft, charTop-144, relicLeft+120, charTop-24, 4, p.c.Foreground())
}

// characterName returns the index name of a character, substituting the
// player's nickname for the trailblazer placeholder.
func (p *painter) characterName(meta assets.CharacterMeta, nickname string) string {
	if !strings.Contains(meta.Name, nicknameID) {
		return meta.Name
	}
	key := "mihomo.tb_name"
	if meta.IsFemaleTrailblazer() {
		key = "mihomo.tb_name_female"
	}
	return p.j.T.T(key, nickname)
}

// elementIcon returns the white element icon; the lightning element is
// stored under its in-game name.
func elementIcon(id string) string {
	if id == "Thunder" {
		id = "Lightning"
	}
	return "icon/element/" + id + "White.png"
}

func (c *CharacterCard) drawHeader(p *painter, meta assets.CharacterMeta) {
	ch := &c.character
	fg, bg := p.c.Foreground(), p.c.Background()

	p.text(p.characterName(meta, c.player.Nickname), drawing.TextStyle{
		Pos: image.Pt(charRight-4, charTop-30), Size: 46, Anchor: "rs",
	})

	p.box(charLeft, charTop, charRight, charBottom, fg)
	if preview := p.image(ch.Preview); preview != nil {
		cropped := drawing.Crop(preview, image.Rect(0, 20, preview.Rect.Dx(), 322))
		p.paste(cropped, charLeft+4, charTop+4)
	}

	p.text(p.j.T.T("mihomo.level"), drawing.TextStyle{
		Pos: image.Pt(charLeft+14, charBottom-22), Size: 24, Anchor: "lm", Color: bg,
	})
	p.text(twoDigits(ch.Level), drawing.TextStyle{
		Pos: image.Pt(charRight-14, charBottom-22), Size: 24, Anchor: "rm", Color: bg,
	})

	p.paste(p.tinted(elementIcon(ch.Element.ID), 96, bg), charRight-108, charTop+64)
	p.paste(p.tinted(ch.Path.Icon, 96, bg), charRight-108, charTop+176)

	element, path := ch.Element.Name, ch.Path.Name
	if m, err := p.j.Index.Element(ch.Element.ID); err == nil {
		element = m.Name
	}
	if m, err := p.j.Index.Path(ch.Path.ID); err == nil {
		path = m.Name
	}
	label := element + " / " + path
	w := p.measure(label, 20)
	p.box(charRight-w-6, charTop, charRight, charTop+32, drawing.WithAlphaOf(fg, alpha(0.75)))
	p.text(label, drawing.TextStyle{Pos: image.Pt(charRight-4, charTop+22), Size: 20, Anchor: "rs", Color: bg})

	star := p.tinted(starGlow, 24, bg)
	for i := range ch.Rarity {
		p.paste(star, charRight-28-i*24, charTop+32)
	}
}

// ///////////////////////////////////////////////
// Stats
// ///////////////////////////////////////////////

func (c *CharacterCard) drawStats(p *painter) {
	const size = 32
	stats := c.character.Stats()
	p.extendDown(StatExtension(len(stats)))

	fg := p.c.Foreground()
	for i, s := range stats {
		top := charBottom - 22 + (i+1)*size
		name, icon := s.Name, s.Icon
		if prop, err := p.j.Index.PropertyByField(s.Field); err == nil {
			name, icon = prop.Name, prop.Icon
		}
		p.paste(p.tinted(icon, size, fg), charLeft, top)
		p.text(name, drawing.TextStyle{Pos: image.Pt(charLeft+size+4, top+size/2+2), Size: 20, Anchor: "lm"})
		p.text(s.Format(), drawing.TextStyle{Pos: image.Pt(charRight, top+size/2+2), Size: 20, Anchor: "rm"})
	}
}

// ///////////////////////////////////////////////
// Slots
// ///////////////////////////////////////////////

// statLine is one row of a slot panel.
type statLine struct {
	name  string
	icon  string
	value string
	// cutOff lets an overlong name end in the truncation marker.
	cutOff bool
	// rolls is the sub stat roll count, -1 when not applicable.
	rolls int
}

func affixLine(p *painter, a records.Affix, rolls int) statLine {
	return statLine{name: statName(p.j, a.Stat), icon: a.Icon, value: a.Stat.Format(), rolls: rolls}
}

// panelSpec is a framed item with its stat panel.
type panelSpec struct {
	icon   string
	rarity int
	main   statLine
	subs   []statLine
	// indicator is the top-left badge, at most three runes.
	indicator string
	// score is the top-right relic rank; empty hides it.
	score string
}

func (c *CharacterCard) drawSlot(p *painter, pos, left int, slot Slot, scores *scoring.Result) {
	e, ok := slot.(Equipped)
	if !ok {
		p.placeholder(pos, left, p.j.T.T("mihomo.no_relic"))
		return
	}
	r := e.Relic
	panel := panelSpec{
		icon:      r.Icon,
		rarity:    r.Rarity,
		main:      affixLine(p, r.Main, -1),
		indicator: "+" + strconv.Itoa(r.Level),
	}
	for _, sub := range r.Subs {
		panel.subs = append(panel.subs, affixLine(p, sub, sub.Count))
	}
	if scores != nil {
		if s, ok := scores.Relics[r.ID]; ok {
			panel.score = s.Rank
		}
	}
	p.statsPanel(pos, left, panel, c.opts.Detailed)
}

func (c *CharacterCard) drawLightCone(p *painter) {
	lc := c.character.LightCone
	if lc == nil {
		p.placeholder(1, planarLeft, p.j.T.T("mihomo.no_weapon"))
		return
	}
	name := lc.Name
	if m, err := p.j.Index.LightCone(lc.ID); err == nil {
		name = m.Name
	}
	panel := panelSpec{
		icon:      lc.Icon,
		rarity:    lc.Rarity,
		main:      statLine{name: name, cutOff: true, rolls: -1},
		indicator: "S" + strconv.Itoa(lc.Rank),
		subs: []statLine{{
			name: p.j.T.T("mihomo.level"), value: strconv.Itoa(lc.Level), cutOff: true, rolls: -1,
		}},
	}
	for _, s := range lc.Attributes {
		panel.subs = append(panel.subs, statLine{name: statName(p.j, s), icon: s.Icon, value: s.Format(), rolls: -1})
	}
	p.statsPanel(1, planarLeft, panel, false)
}

// placeholder draws an empty slot frame with a label.
func (p *painter) placeholder(pos, left int, label string) {
	top := pos * slotStep
	fg, bg := p.c.Foreground(), p.c.Background()
	p.outline(left, top, left+slotBox, top+slotBox, 8, fg)
	p.paste(p.tinted(noneIcon, 96, fg), left+21, top+21)
	p.box(left+slotBox+25, top+5, left+slotBox+25+slotPanel, top+30, fg)
	p.text(label, drawing.TextStyle{Pos: image.Pt(left+slotBox+29, top+10), Size: 20, Anchor: "lt", Color: bg})
}

// statsPanel draws a framed item at slot position pos with its main stat on
// the header bar and sub stats below.
func (p *painter) statsPanel(pos, left int, panel panelSpec, detailed bool) {
	if panel.indicator != "" {
		if err := checkIndicator(panel.indicator); err != nil {
			p.fail(err)
			return
		}
	}
	top := pos * slotStep
	fg, bg := p.c.Foreground(), p.c.Background()
	panelLeft := left + slotBox + 25

	p.outline(left, top, left+slotBox, top+slotBox, 8, fg)
	p.paste(p.icon(panel.icon, 96), left+21, top+21)
	p.box(panelLeft, top+5, panelLeft+slotPanel, top+30, fg)

	if panel.indicator != "" {
		p.box(left+4, top+4, left+44, top+24, fg)
		p.text(panel.indicator, drawing.TextStyle{Pos: image.Pt(left+24, top+14), Size: 16, Anchor: "mm", Color: bg})
	}
	if panel.score != "" {
		sw := p.measure(panel.score, 15)
		p.box(left+slotBox-4-sw-12, top+4, left+slotBox-4, top+24, fg)
		p.text(panel.score, drawing.TextStyle{
			Pos: image.Pt(left+slotBox-8-sw+sw/2, top+14), Size: 15, Anchor: "mm", Color: bg,
		})
	}

	nameWidth := slotPanel
	if panel.main.value != "" {
		nameWidth = 156
	}
	p.text(panel.main.name, drawing.TextStyle{
		Pos:        image.Pt(panelLeft+4, top+25),
		Right:      left + slotBox + 28 + nameWidth - 4,
		Size:       20,
		Anchor:     "ls",
		Color:      bg,
		NoEllipsis: !panel.main.cutOff,
	})
	if panel.main.value != "" {
		p.text(panel.main.value, drawing.TextStyle{
			Pos: image.Pt(panelLeft+slotPanel-4, top+10), Size: 20, Anchor: "rt", Color: bg,
		})
	}

	star := p.tinted(starGlow, 14, fg)
	for i := range panel.rarity {
		p.paste(star, left+slotBox-22-i*12, top+slotBox-22)
	}

	for i, sub := range panel.subs {
		row := (i + 1) * 26
		if sub.icon != "" {
			p.paste(p.tinted(sub.icon, 32, fg), left+slotBox+20, top+6+row)
			p.text(sub.name, drawing.TextStyle{Pos: image.Pt(left+slotBox+54, top+29+row), Size: 16, Anchor: "ls"})
		} else {
			p.text(sub.name, drawing.TextStyle{Pos: image.Pt(left+slotBox+24, top+8+row), Size: 20})
		}
		if sub.value == "" {
			continue
		}
		vw := p.text(sub.value, drawing.TextStyle{Pos: image.Pt(panelLeft+slotPanel, top+13+row), Size: 20, Anchor: "rt"})
		if detailed && sub.rolls >= 0 {
			p.text("+"+strconv.Itoa(sub.rolls)+" |", drawing.TextStyle{
				Pos:    image.Pt(panelLeft+slotPanel-vw-4, top+22+row),
				Size:   12,
				Anchor: "rm",
				Alpha:  alpha(RollAlpha(panel.rarity, sub.rolls)),
			})
		}
	}
}

// ///////////////////////////////////////////////
// Set Bonus
// ///////////////////////////////////////////////

func (c *CharacterCard) drawSetBonus(p *painter) {
	groups := GroupRelicSets(c.character.RelicSets)
	p.extendDown(Overflow(setBonusTop+SetBonusHeight(groups), p.c.Height(), 30))

	bg := p.c.Background()
	top := setBonusTop
	for _, g := range groups {
		p.box(relicLeft, top, relicLeft+20, top+20, p.c.Foreground())
		p.text(strconv.Itoa(g.Num), drawing.TextStyle{Pos: image.Pt(relicLeft+10, top+10), Size: 16, Anchor: "mm", Color: bg})

		name := g.Name
		if m, err := p.j.Index.RelicSet(g.ID); err == nil {
			name = m.Name
		}
		p.text(name, drawing.TextStyle{Pos: image.Pt(relicLeft+29, top+10), Size: 16, Anchor: "lm"})

		if len(g.Properties) > 0 {
			props := make([]string, len(g.Properties))
			for i, prop := range g.Properties {
				label := prop.Name
				if m, err := p.j.Index.Property(prop.Type); err == nil {
					label = m.Name
				}
				props[i] = label + " " + prop.Stat.Format()
			}
			p.text("("+strings.Join(props, ", ")+")", drawing.TextStyle{
				Pos: image.Pt(relicLeft+29, top+36), Size: 16, Anchor: "lm",
			})
			top += 26
		}
		top += 26
	}
}

// ///////////////////////////////////////////////
// Eidolons, Skills and Traces
// ///////////////////////////////////////////////

func (c *CharacterCard) drawEidolons(p *painter, meta assets.CharacterMeta) {
	if c.character.Rank == 0 {
		return
	}
	const (
		top  = 670
		icon = 65
	)
	fg, bg := p.c.Foreground(), p.c.Background()
	label := p.j.T.T("mihomo.eidolons")
	w := p.measure(label, 18)
	p.box(planarLeft, top-29, planarLeft+w+10, top-7, fg)
	p.text(label, drawing.TextStyle{Pos: image.Pt(planarLeft+5, top-11), Size: 18, Anchor: "ls", Color: bg})

	eidolons := make([]assets.EidolonMeta, 0, len(meta.Ranks))
	for _, id := range meta.Ranks {
		e, err := p.j.Index.Eidolon(id)
		if err != nil {
			p.fail(err)
			return
		}
		eidolons = append(eidolons, e)
	}
	slices.SortStableFunc(eidolons, func(a, b assets.EidolonMeta) int { return a.Rank - b.Rank })

	for i, e := range eidolons {
		img := p.tinted(e.Icon, icon, fg)
		x := planarLeft + (icon+6)*i
		if e.Rank <= c.character.Rank {
			p.paste(img, x, top)
		} else {
			p.pasteAlpha(img, x, top, 128)
		}
	}
}

// skillLabels names the skill types on the sheet.
var skillLabels = map[records.SkillType]string{
	records.SkillNormal:    "mihomo.basic_atk",
	records.SkillBattle:    "mihomo.skill",
	records.SkillUltimate:  "mihomo.ultimate",
	records.SkillTalent:    "mihomo.talent",
	records.SkillTechnique: "mihomo.technique",
}

func (c *CharacterCard) drawSkills(p *painter) {
	ch := &c.character
	fg, bg := p.c.Foreground(), p.c.Background()

	top := 658
	if ch.Rank > 0 {
		top += eidolonShift
		p.extendDown(eidolonExtension - p.c.ExtendedDown())
		lineLeft := planarLeft
		lineRight := lineLeft + (65+5)*6
		p.line(lineLeft-2, top-18, lineRight-2, top-18, 2, fg)
	}

	skills := ch.DisplaySkills()
	spacing := SkillSpacing(len(skills))
	for i, s := range skills {
		x := 552 + i*spacing + 2
		opacity := 1.0
		if s.Type == records.SkillTechnique && s.Level == 0 {
			opacity = 0.5
		}
		p.pasteAlpha(p.tinted(s.Icon, skillBox-4, fg), x, top, alpha(opacity))

		if s.Type != records.SkillTechnique {
			p.box(x, top, x+34, top+20, fg)
			p.text(twoDigits(s.Level), drawing.TextStyle{Pos: image.Pt(x+17, top+11), Size: 16, Anchor: "mm", Color: bg})
		}
		label := s.TypeText
		if key, ok := skillLabels[s.Type]; ok {
			label = p.j.T.T(key)
		}
		p.text(label, drawing.TextStyle{
			Pos: image.Pt(x+(skillBox-4)/2, top+skillBox+4), Size: 14, Anchor: "mm", Alpha: alpha(opacity),
		})
	}

	const traceIcon = 44
	traceTop := 760
	if ch.Rank > 0 {
		traceTop += eidolonShift
	}
	for i, t := range ch.MajorTraces() {
		x := 648 + i*78 + 2
		opacity := 1.0
		if t.Level < 1 {
			opacity = 0.5
		}
		p.pasteAlpha(p.tinted(t.Icon, traceIcon, fg), x, traceTop, alpha(opacity))
		p.text("A"+strconv.Itoa((i+1)*2), drawing.TextStyle{
			Pos: image.Pt(x+traceIcon/2, traceTop+traceIcon+10), Size: 13, Anchor: "mm", Alpha: alpha(opacity),
		})
	}
}

// ///////////////////////////////////////////////
// Frame
// ///////////////////////////////////////////////

// Finish frames the sheet in the foreground colour and writes the owner's
// profile line below it.
func (c *CharacterCard) Finish(j *render.Job, inner *drawing.Canvas) (*drawing.Canvas, error) {
	outer := drawing.New(outerWidth, inner.Height()+outerFooter, drawing.Options{
		Background: c.colors.Foreground,
		Foreground: c.colors.Background,
		Faces:      j.Faces,
		Logger:     j.Log,
	})
	outer.Paste(inner.Image(), image.Pt(outerInset, outerInset))
	p := newPainter(j, outer)

	t := j.T
	level := t.T("mihomo.level") + ": " + twoDigits(c.player.Level)
	left := "UID: " + c.player.UID
	if key := records.RegionKey(c.player.UID); key != "" {
		left += " | " + t.T("mihomo.region") + ": " + t.T(key)
	}
	left += " | " + level
	if c.opts.HideUID {
		left = level
	}
	right := t.T("chronicles.achievements") + ": " + strconv.Itoa(c.player.SpaceInfo.AchievementCount)
	if floor := c.player.ChaosFloor(); floor > 0 {
		right = t.T("mihomo.moc") + ": " + t.T("moc_floor", strconv.Itoa(floor)) + " | " + right
	}

	mid := inner.Height() + (outer.Height()-inner.Height())/2 + 8
	p.text(left, drawing.TextStyle{Pos: image.Pt(75, mid), Size: 30, Anchor: "lm"})
	p.text(right, drawing.TextStyle{Pos: image.Pt(outer.Width()-75, mid), Size: 30, Anchor: "rm"})
	return outer, p.Err()
}
