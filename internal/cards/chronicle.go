package cards

import (
	"context"
	"fmt"
	"image"

	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
)

// ///////////////////////////////////////////////
// Battle Chronicle
// ///////////////////////////////////////////////

const (
	chronicleWidth    = 1600
	chronicleHeight   = 900
	chronicleBackdrop = "image/backdrops/BackdropLoadingV2.png"
	// chronicleCropBottom trims the loading bar baked into the backdrop.
	chronicleCropBottom = 27
	chronicleMargin     = 75
	// chronicleIconGap separates an icon from its label.
	chronicleIconGap = 10
)

// ChronicleCard summarises the battle chronicle: account counters on the
// left and real-time notes on the right.
type ChronicleCard struct {
	rc       *render.Context
	user     records.UserInfo
	overview records.Overview
	notes    records.Notes
}

// NewChronicleCard returns a chronicle composer.
func NewChronicleCard(rc *render.Context, user records.UserInfo, overview records.Overview, notes records.Notes) *ChronicleCard {
	return &ChronicleCard{rc: rc, user: user, overview: overview, notes: notes}
}

// Create renders the card to PNG.
func (c *ChronicleCard) Create(ctx context.Context) ([]byte, error) {
	return render.Run(ctx, c.rc, c)
}

func (c *ChronicleCard) Kind() string    { return "chronicle" }
func (c *ChronicleCard) Subject() string { return c.user.Nickname }

// ClockStamped reports whether the card prints the render time, which
// happens when the notes carry no request time of their own.
func (c *ChronicleCard) ClockStamped() bool {
	return c.notes.RequestedAt.IsZero() && !c.rc.HideTimestamp
}

func (c *ChronicleCard) Prepare(*render.Job) (render.Frame, error) {
	return render.Frame{
		Width:      chronicleWidth,
		Height:     chronicleHeight,
		Background: chroniclePalette.Background,
		Foreground: chroniclePalette.Foreground,
	}, nil
}

func (c *ChronicleCard) Draw(j *render.Job, canvas *drawing.Canvas) error {
	p := newPainter(j, canvas)

	if p.section("backdrop") {
		p.backdrop(chronicleBackdrop, chronicleCropBottom)
	}
	p.decorate()

	if p.section("header") {
		p.text(c.user.Nickname, drawing.TextStyle{Pos: image.Pt(chronicleMargin, 75), Size: 86, Anchor: "lt"})
	}
	if p.section("overview") {
		c.drawOverview(p)
	}
	if p.section("notes") {
		c.drawNotes(p)
	}

	if p.section("footer") {
		p.supportedBy(128)
		at := c.notes.RequestedAt
		if at.IsZero() {
			at = j.Now()
		}
		p.timestamp(at, image.Pt(20, 20), "lt", alpha(0.2))
		p.credits("chronicles.credits", image.Pt(canvas.Width()/2, canvas.Height()-20), "ms", 16, 128)
	}
	return p.Err()
}

// backdrop crops the bottom rows off path, centre-crops it to 16:9 and
// stretches it over the canvas.
func (p *painter) backdrop(path string, cropBottom int) {
	img := p.image(path)
	if img == nil {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()-cropBottom
	left := max(0, (w-h*16/9)/2)
	cropped := drawing.Crop(img, image.Rect(left, 0, w-left, h))
	p.paste(drawing.Resize(cropped, p.c.Width(), p.c.Height()), 0, 0)
}

// counter is one labelled figure in a chronicle column.
type counter struct {
	icon  string
	label string
	value string
	// iconTop is the icon's top edge; the label baseline and value top
	// follow from it.
	iconTop int
	// labelDrop and valueDrop offset the label baseline and value top from
	// iconTop.
	labelDrop int
	valueDrop int
	// valueSize is the value font size, 40 when zero.
	valueSize float64
}

func (c *ChronicleCard) drawOverview(p *painter) {
	t, tag := p.j.T, p.j.Tag
	stats := c.overview.Stats
	items := []counter{
		{icon: "icon/sign/CommonTabIcon.png", label: t.T("chronicles.days_active"), value: lang.Thousands(stats.ActiveDays, tag), iconTop: 200},
		{icon: "icon/sign/AvatarIcon.png", label: t.T("chronicles.characters"), value: lang.Thousands(stats.Avatars, tag), iconTop: 350},
		{icon: "icon/sign/AchievementIcon.png", label: t.T("chronicles.achievements"), value: lang.Thousands(stats.Achievements, tag), iconTop: 500},
	}
	if stats.AbyssProcess != "" {
		items = append(items, counter{
			icon: "icon/sign/AbyssIcon02.png", label: t.T("chronicles.moc"), value: stats.AbyssProcess,
			iconTop: 650, labelDrop: 50, valueDrop: 75, valueSize: 24,
		})
	}

	fg := p.c.Foreground()
	for _, it := range items {
		icon := p.tint(p.image(it.icon), fg)
		if icon == nil {
			return
		}
		p.paste(icon, chronicleMargin-5, it.iconTop)
		x := chronicleMargin + chronicleIconGap + icon.Rect.Dx()
		p.counterText(it, x, "l")
	}
}

func (c *ChronicleCard) drawNotes(p *painter) {
	t, tag, n := p.j.T, p.j.Tag, c.notes
	fg, w := p.c.Foreground(), p.c.Width()
	ratio := func(cur, limit int) string {
		return fmt.Sprintf("%s/%s", lang.Thousands(cur, tag), lang.Thousands(limit, tag))
	}

	// Trailblaze power keeps its own colours; its width also aligns the
	// reserve row, whose icon is shrunk.
	power := p.image("icon/item/11.png")
	if power == nil {
		return
	}
	pw := power.Rect.Dx()
	p.paste(power, w-pw-chronicleMargin+5, 200)
	textX := w - pw - chronicleMargin - chronicleIconGap
	p.counterText(counter{label: t.T("chronicles.tb_power"), value: ratio(n.Stamina, n.MaxStamina), iconTop: 200, valueDrop: 70}, textX, "r")

	if reserve := p.resize(p.image("icon/item/12.png"), 112, 112); reserve != nil {
		p.paste(reserve, w-112-chronicleMargin-5, 345)
	}
	p.counterText(counter{label: t.T("chronicles.reserve_tb_power"), value: lang.Thousands(n.ReserveStamina, tag), iconTop: 335, valueDrop: 70}, textX, "r")

	rest := []counter{
		{icon: "icon/sign/DailyQuestIcon.png", label: t.T("chronicles.daily_quest"), value: ratio(n.TrainScore, n.MaxTrainScore), iconTop: 480},
		{icon: "icon/sign/CocoonIcon.png", label: t.T("chronicles.echo_of_war"), value: ratio(n.WeeklyCocoonCount, n.WeeklyCocoonLimit), iconTop: 630},
	}
	for _, it := range rest {
		icon := p.tint(p.image(it.icon), fg)
		if icon == nil {
			return
		}
		iw := icon.Rect.Dx()
		p.paste(icon, w-iw-chronicleMargin+5, it.iconTop)
		p.counterText(it, w-iw-chronicleMargin-chronicleIconGap, "r")
	}
}

// counterText writes a counter's dimmed label and its value at x, aligned on
// side "l" or "r".
func (p *painter) counterText(it counter, x int, side string) {
	labelDrop, valueDrop, size := it.labelDrop, it.valueDrop, it.valueSize
	if labelDrop == 0 {
		labelDrop = 45
	}
	if valueDrop == 0 {
		valueDrop = 70
	}
	if size == 0 {
		size = 40
	}
	p.text(it.label, drawing.TextStyle{
		Pos: image.Pt(x, it.iconTop+labelDrop), Size: 30, Anchor: side + "s", Alpha: alpha(0.75),
	})
	p.text(it.value, drawing.TextStyle{
		Pos: image.Pt(x, it.iconTop+valueDrop), Size: size, Anchor: side + "t",
	})
}
