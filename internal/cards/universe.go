package cards

import (
	"context"
	"image"
	"image/color"
	"path"
	"strconv"
	"strings"

	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
)

// ///////////////////////////////////////////////
// Simulated Universe
// ///////////////////////////////////////////////

const (
	universeWidth  = 2000
	universeHeight = 1125
	universeMargin = 75

	// universeLineupTop is the top edge of the final lineup and of the
	// swarm side panels.
	universeLineupTop = universeMargin + 240
	// universeBlessingTop is where the blessing paths start. Curios follow
	// them, or start here when no blessing was obtained.
	universeBlessingTop = universeMargin + 450

	blessingIcon     = 50
	blessingTextSize = 20
	blessingChipGap  = 13
	// blessingMaxWidth bounds one line of blessing chips.
	blessingMaxWidth = universeWidth - universeMargin - blessingIcon*2 - 60

	curioIcon = 50
	curioGap  = 10
)

var (
	// striderBox backs pathstrider levels and ordinary domain counts.
	striderBox = drawing.RGBA(189, 172, 255, 64)
	// bossDomainBox backs the boss domain counts.
	bossDomainBox = drawing.RGBA(61, 21, 29, 204)
	white         = drawing.RGB(255, 255, 255)
)

// SimulatedUniverseCard shows one finished simulated universe run: world,
// difficulty, final lineup, blessings by path and curios. Swarm disaster
// runs add the pathstrider levels and the domains crossed.
type SimulatedUniverseCard struct {
	rc   *render.Context
	user records.UserInfo
	run  records.RogueRun

	// swarm marks a swarm disaster run.
	swarm    bool
	blocks   []records.DomainCount
	striders []records.Pathstrider
}

// NewSimulatedUniverseCard returns a composer for a weekly period run.
func NewSimulatedUniverseCard(rc *render.Context, user records.UserInfo, run records.RogueRun) *SimulatedUniverseCard {
	return &SimulatedUniverseCard{rc: rc, user: user, run: run}
}

// NewSwarmCard returns a composer for a swarm disaster run.
func NewSwarmCard(rc *render.Context, s records.Swarm) *SimulatedUniverseCard {
	return &SimulatedUniverseCard{
		rc:       rc,
		user:     s.User,
		run:      s.Run.RogueRun,
		swarm:    true,
		blocks:   s.Run.Blocks,
		striders: s.Striders,
	}
}

// Create renders the card to PNG.
func (c *SimulatedUniverseCard) Create(ctx context.Context) ([]byte, error) {
	return render.Run(ctx, c.rc, c)
}

func (c *SimulatedUniverseCard) Kind() string {
	if c.swarm {
		return "swarm"
	}
	return "simulated-universe"
}

func (c *SimulatedUniverseCard) Subject() string { return c.user.Nickname + "/" + c.run.Name }

func (c *SimulatedUniverseCard) Prepare(*render.Job) (render.Frame, error) {
	pal := chroniclePalette
	if c.swarm {
		pal = swarmPalette
	}
	return render.Frame{
		Width:      universeWidth,
		Height:     universeHeight,
		Background: pal.Background,
		Foreground: pal.Foreground,
	}, nil
}

func (c *SimulatedUniverseCard) Draw(j *render.Job, canvas *drawing.Canvas) error {
	p := newPainter(j, canvas)

	var (
		groups []blessingGroup
		rows   []int
	)
	if p.section("layout") {
		groups = c.layoutBlessings(p)
		rows = Chunk(len(c.run.Curios), IconsPerRow(universeMargin, universeWidth-universeMargin-curioGap, curioIcon, curioGap))
		bottom := universeBlessingTop
		for _, g := range groups {
			bottom += BlessingGroupHeight(len(g.lines))
		}
		bottom += CurioBlockHeight(len(rows))
		p.extendDown(Overflow(bottom+65, canvas.Height(), universeMargin))
	}

	p.decorate()

	if p.section("header") {
		c.drawHeader(p)
	}
	right := universeMargin
	if p.section("lineup") {
		right = p.lineup(c.run.Lineup, lineupStyle{Left: universeMargin, Top: universeLineupTop, Spacing: 190, Icon: 150})
	}
	top := universeBlessingTop
	if p.section("blessings") {
		top = c.drawBlessings(p, groups)
	}
	if p.section("curios") {
		c.drawCurios(p, rows, top)
	}
	if c.swarm && p.section("swarm") {
		c.drawStriders(p, right)
		c.drawDomains(p, right)
	}

	if p.section("footer") {
		w, h := canvas.Width(), canvas.Height()
		p.supportedBy(128)
		p.credits("chronicles.credits", image.Pt(w/2, h-20), "ms", 16, 128)
		if !c.run.FinishTime.IsZero() {
			p.timestamp(c.run.FinishTime.Time(), image.Pt(20, 20), "lt", alpha(0.35))
		}
	}
	return p.Err()
}

func (c *SimulatedUniverseCard) drawHeader(p *painter) {
	t := p.j.T
	icon := c.run.WorldIcon()
	if c.swarm {
		icon = records.SwarmWorldIcon
	}
	p.paste(p.icon(icon, 200), universeMargin, universeMargin)

	difficulty := lang.Numeral(c.run.Difficulty, p.j.Tag)
	subtitle := t.T("chronicles.rogue.title_locust")
	if !c.swarm {
		subtitle = t.T("rogue_world", strconv.Itoa(c.run.Progress)) + " - " + difficulty
	}
	mid := universeMargin + 100
	p.text(t.T("chronicles.rogue.title"), drawing.TextStyle{Pos: image.Pt(universeMargin+235, mid-20), Size: 70, Anchor: "ls"})
	p.text(subtitle, drawing.TextStyle{Pos: image.Pt(universeMargin+235, mid+60), Size: 50, Anchor: "ls"})

	right := p.c.Width() - universeMargin
	if c.swarm {
		p.text(difficulty, drawing.TextStyle{Pos: image.Pt(right, mid+30), Size: 100, Anchor: "rs"})
		return
	}
	p.text(t.T("chronicles.rogue.score_high"), drawing.TextStyle{Pos: image.Pt(right, mid-20), Size: 70, Anchor: "rs"})
	p.text(lang.Thousands(c.run.Score, p.j.Tag), drawing.TextStyle{Pos: image.Pt(right, mid+60), Size: 50, Anchor: "rs"})
}

// ///////////////////////////////////////////////
// Blessings
// ///////////////////////////////////////////////

// blessingChip is one blessing label with its measured width.
type blessingChip struct {
	name     string
	width    int
	rank     int
	enhanced bool
}

// blessingGroup is the blessings of one path wrapped into lines.
type blessingGroup struct {
	name  string
	icon  string
	chips []blessingChip
	lines [][]int
}

// layoutBlessings resolves and measures every obtained blessing. Paths
// without blessings are left out.
func (c *SimulatedUniverseCard) layoutBlessings(p *painter) []blessingGroup {
	var groups []blessingGroup
	for _, b := range c.run.Blessings {
		if len(b.Items) == 0 {
			continue
		}
		g := blessingGroup{name: b.Kind.Name, icon: b.Kind.ID.Icon()}
		if meta, err := p.j.Index.BlessingType(strconv.Itoa(int(b.Kind.ID))); err == nil {
			g.name, g.icon = meta.Name, meta.Icon
		}
		widths := make([]int, len(b.Items))
		for i, item := range b.Items {
			name := item.Name
			if meta, err := p.j.Index.Blessing(strconv.Itoa(item.ID)); err == nil {
				name = meta.Name
			}
			name = records.StripRichText(name)
			chip := blessingChip{name: name, width: p.measure(name, blessingTextSize), rank: item.Rank, enhanced: item.Enhanced}
			g.chips = append(g.chips, chip)
			widths[i] = chip.width
		}
		g.lines = WrapWidths(widths, blessingChipGap, blessingMaxWidth)
		groups = append(groups, g)
	}
	return groups
}

// drawBlessings writes each path header followed by its chips and returns
// the top edge of whatever follows.
func (c *SimulatedUniverseCard) drawBlessings(p *painter, groups []blessingGroup) int {
	top := universeBlessingTop
	left := universeMargin + 60
	for _, g := range groups {
		p.paste(p.icon(g.icon, blessingIcon), universeMargin, top)
		p.text(g.name, drawing.TextStyle{Pos: image.Pt(left, top+18), Size: 18, Anchor: "ls"})

		for _, line := range g.lines {
			x := left
			for _, i := range line {
				chip := g.chips[i]
				fill, grad := blessingFill(chip.rank)
				if chip.enhanced {
					p.gradient(x, top+28, x+chip.width+6, top+52, grad, drawing.Horizontal)
				} else {
					p.box(x, top+28, x+chip.width+6, top+52, fill)
				}
				p.text(chip.name, drawing.TextStyle{
					Pos: image.Pt(x+3, top+46), Size: blessingTextSize, Anchor: "ls", Color: white,
				})
				x += chip.width + blessingChipGap
			}
			top += blessingLineHeight
		}
		top += blessingGroupGap - blessingLineHeight
	}
	return top
}

// ///////////////////////////////////////////////
// Curios
// ///////////////////////////////////////////////

func (c *SimulatedUniverseCard) drawCurios(p *painter, rows []int, top int) {
	if len(rows) == 0 {
		return
	}
	p.text(p.j.T.T("chronicles.rogue.curios"), drawing.TextStyle{
		Pos: image.Pt(universeMargin, top+30), Size: 20, Anchor: "ls",
	})
	top += curioHeader
	curios := c.run.Curios
	for _, n := range rows {
		for i, curio := range curios[:n] {
			icon := curio.Icon
			if meta, err := p.j.Index.Curio(strconv.Itoa(curio.ID)); err == nil {
				icon = meta.Icon
			}
			p.paste(p.icon(icon, curioIcon), universeMargin+i*(curioIcon+curioGap), top)
		}
		curios = curios[n:]
		top += curioStep
	}
}

// ///////////////////////////////////////////////
// Swarm Disaster
// ///////////////////////////////////////////////

func (c *SimulatedUniverseCard) drawStriders(p *painter, left int) {
	if len(c.striders) == 0 {
		return
	}
	top := universeLineupTop
	p.text(p.j.T.T("chronicles.rogue.locust_narrow"), drawing.TextStyle{
		Pos: image.Pt(left, top+16), Size: 20, Anchor: "ls",
	})
	for i, s := range c.striders {
		x := left + 100*i
		p.countChip(x, top, twoDigits(s.Level), striderBox, p.icon(s.Type.Icon(), 25))
	}
}

func (c *SimulatedUniverseCard) drawDomains(p *painter, left int) {
	top := universeLineupTop
	if len(c.striders) > 0 {
		top += 80
	}
	p.text(p.j.T.T("chronicles.rogue.locust_domain"), drawing.TextStyle{
		Pos: image.Pt(left, top+16), Size: 20, Anchor: "ls",
	})
	for i, b := range c.blocks {
		box := striderBox
		if b.IsBoss() {
			box = bossDomainBox
		}
		var icon *image.NRGBA
		if meta, err := p.j.Index.LocustBlock(strconv.Itoa(b.ID)); err == nil {
			icon = p.image(whiteVariant(meta.Icon))
			if col, err := drawing.ParseHexColor(meta.Color); err == nil && !drawing.IsWhite(col) {
				icon = p.tint(icon, col)
			}
			icon = p.resize(icon, 25, 25)
		} else {
			p.j.Log.Debug("domain block not indexed", "id", b.ID)
		}
		p.countChip(left+90*i, top, twoDigits(b.Count), box, icon)
	}
}

// countChip draws a translucent plate with a small icon and a count, used
// by pathstriders and domains.
func (p *painter) countChip(x, top int, count string, fill color.NRGBA, icon *image.NRGBA) {
	tw := p.measure(count, 20)
	p.box(x, top+30, x+50+tw, top+60, fill)
	p.paste(icon, x+4, top+33)
	p.text(count, drawing.TextStyle{
		Pos: image.Pt(x+50, top+46), Size: 20, Anchor: "mm", Color: white, Alpha: alpha(0.75),
	})
}

// whiteVariant returns the white icon next to p: "a/Block.png" gives
// "a/BlockWhite.png".
func whiteVariant(p string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + "White" + ext
}
