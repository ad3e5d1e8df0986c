package cards

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/image/font"

	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/fonts"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
)

// ///////////////////////////////////////////////
// Player Summary
// ///////////////////////////////////////////////

const (
	playerMask        = "images/MihomoCardMask.png"
	playerBackdrop    = "images/StarrailStartBG.jpg"
	playerFrostMask   = "images/MihomoCardFrostMask.png"
	playerCharMask    = "images/MihomoCardCharMask.png"
	playerDeco        = "images/MihomoCardDeco.png"
	starfaringMask    = "images/MihomoCardStarfaringMask.png"
	playerMargin      = 30
	playerBackdropTop = 300
	// playerInfoLeft is the text edge of the progression column; icons sit
	// to its left.
	playerInfoLeft = 636
	playerIcon     = 64
	playerIconGap  = 7
	playerRowStep  = 70

	companionLeft   = 1500
	companionAvatar = 200
	companionStep   = 250
	companionIcon   = 50
	companionStar   = 25
)

var (
	playerStroke = drawing.RGB(0, 0, 0)
	playerText   = drawing.RGB(255, 255, 255)
)

// PlayerCard is the profile summary: the first showcased character as the
// support, the player's progression and the remaining showcase characters as
// starfaring companions.
type PlayerCard struct {
	rc      *render.Context
	profile records.Profile
}

// NewPlayerCard returns a player summary composer.
func NewPlayerCard(rc *render.Context, profile records.Profile) *PlayerCard {
	return &PlayerCard{rc: rc, profile: profile}
}

// Create renders the card to PNG.
func (c *PlayerCard) Create(ctx context.Context) ([]byte, error) {
	return render.Run(ctx, c.rc, c)
}

func (c *PlayerCard) Kind() string    { return "player" }
func (c *PlayerCard) Subject() string { return "UID-" + c.profile.Player.UID }

// Prepare sizes the card after its mask; the canvas starts transparent.
func (c *PlayerCard) Prepare(j *render.Job) (render.Frame, error) {
	mask, err := j.Image(playerMask)
	if err != nil {
		return render.Frame{}, fmt.Errorf("load card mask: %w", err)
	}
	return render.Frame{
		Width:      mask.Rect.Dx(),
		Height:     mask.Rect.Dy(),
		Foreground: playerText,
	}, nil
}

func (c *PlayerCard) Draw(j *render.Job, canvas *drawing.Canvas) error {
	p := newPainter(j, canvas)
	w, h := canvas.Width(), canvas.Height()

	if p.section("backdrop") {
		c.drawBackdrop(p)
	}
	if p.section("decoration") {
		if deco := p.image(playerDeco); deco != nil {
			p.paste(drawing.WithAlpha(deco, alpha(0.5)), 0, 0)
		}
	}

	if p.section("header") {
		pl := c.profile.Player
		p.text("UID: "+pl.UID, drawing.TextStyle{
			Pos: image.Pt(playerMargin+20, h-playerMargin-20), Size: 24, Anchor: "ls", Stroke: 3, StrokeColor: playerStroke,
		})
		p.text(pl.Nickname, drawing.TextStyle{
			Pos: image.Pt(playerMargin+20, h-playerMargin-55), Size: 30, Anchor: "ls", Stroke: 3, StrokeColor: playerStroke,
		})
	}

	if p.section("progression") {
		c.drawProgression(p)
	}

	if len(c.profile.Characters) > 1 && p.section("companions") {
		c.drawCompanions(p)
	}

	if p.section("footer") {
		p.text(supportedByLine, drawing.TextStyle{
			Pos:    image.Pt(w-playerMargin*2, h-playerMargin*2),
			Size:   20,
			Family: fonts.Universe,
			Anchor: "rs",
			Alpha:  alpha(0.35),
		})
	}
	return p.Err()
}

// drawBackdrop masks a blurred slice of the start screen to the card shape,
// frosts the info panel and, when a support character is shown, places its
// portrait in the character window.
func (c *PlayerCard) drawBackdrop(p *painter) {
	mask, bg, frost := p.image(playerMask), p.image(playerBackdrop), p.image(playerFrostMask)
	if mask == nil || bg == nil || frost == nil {
		return
	}
	w, h := p.c.Width(), p.c.Height()

	bg = drawing.ResizeWidth(bg, 3000)
	mid := bg.Rect.Dx() / 2
	slice := drawing.Crop(bg, image.Rect(mid-w/2, playerBackdropTop, mid+w/2, playerBackdropTop+h))
	p.pasteMasked(drawing.Blur(slice, 5), mask, 0, 0)

	if len(c.profile.Characters) > 0 {
		support := c.profile.Characters[0]
		charMask := p.image(playerCharMask)
		portrait := p.image(support.Portrait)
		if charMask == nil || portrait == nil {
			return
		}
		window := drawing.New(charMask.Rect.Dx(), charMask.Rect.Dy(), drawing.Options{})
		window.Paste(slice, image.Point{})
		window.Paste(drawing.ResizeHeight(portrait, h), image.Pt(-200, 0))
		p.pasteMasked(window.Image(), charMask, 0, 0)
		p.pasteMasked(drawing.Blur(window.Image(), 20), frost, 0, 0)
	} else {
		p.pasteMasked(drawing.Blur(slice, 20), frost, 0, 0)
	}

	shade := drawing.New(w, h, drawing.Options{Background: playerStroke})
	p.pasteMasked(shade.Image(), drawing.WithAlpha(frost, alpha(0.7)), 0, 0)
}

// infoRow writes one progression line with its icon to the left of the
// text column. top is the text baseline.
func (p *painter) infoRow(icon, content string, top int) {
	p.paste(p.icon(icon, playerIcon), playerInfoLeft-playerIcon-playerIconGap, top-42)
	p.text(content, drawing.TextStyle{
		Pos: image.Pt(playerInfoLeft+2, top), Size: 30, Anchor: "ls", Stroke: 2, StrokeColor: playerStroke,
	})
}

func (c *PlayerCard) drawProgression(p *painter) {
	t, tag := p.j.T, p.j.Tag
	pl := &c.profile.Player
	top := playerMargin + 30
	bigText := func(content string, baseline int, size float64, stroke int) int {
		return p.text(content, drawing.TextStyle{
			Pos: image.Pt(playerInfoLeft, baseline), Size: size, Anchor: "ls", Stroke: stroke, StrokeColor: playerStroke,
		})
	}
	sideIcon := func(path string, y int) {
		p.paste(p.icon(path, playerIcon), playerInfoLeft-playerIcon-playerIconGap, y)
	}
	level := t.T("mihomo.level") + ": " + twoDigits(pl.Level)
	equilibrium := t.T("mihomo.eq_level") + ": " + strconv.Itoa(pl.WorldLevel)

	if len(c.profile.Characters) == 0 {
		bigText(level, top+45, 40, 3)
		sideIcon("icon/deco/IconCompassDeco.png", top+60)
		bigText(equilibrium, top+105, 40, 3)
		top += 200
	} else {
		support := c.profile.Characters[0]
		name := support.Name
		if meta, err := p.j.Index.Character(support.ID); err == nil {
			name = p.characterName(meta, pl.Nickname)
		}
		nameWidth := bigText(name, top+45, 40, 3)
		bigText(t.T("chronicles.level_short", twoDigits(support.Level)), top+90, 30, 2)
		sideIcon(support.Element.Icon, top+50)
		sideIcon(support.Path.Icon, top+50+playerIcon+10)
		bigText(t.T("mihomo.eidolons")+": "+strconv.Itoa(support.Rank), top+135, 30, 2)

		element, path := support.Element.Name, support.Path.Name
		if m, err := p.j.Index.Element(support.Element.ID); err == nil {
			element = m.Name
		}
		if m, err := p.j.Index.Path(support.Path.ID); err == nil {
			path = m.Name
		}
		bigText(element+" / "+path, top+175, 28, 2)

		star := p.icon(hallStar, 30)
		for i := range support.Rarity {
			p.paste(star, playerInfoLeft+nameWidth+15+i*30, top+20)
		}
		top += 250

		p.infoRow("icon/sign/CommonTabIcon.png", level, top)
		top += playerRowStep
		p.infoRow("icon/deco/IconCompassDeco.png", equilibrium, top)
		top += playerRowStep
	}

	space := pl.SpaceInfo
	p.infoRow("icon/sign/AchievementIcon.png", t.T("chronicles.achievements")+": "+lang.Thousands(space.AchievementCount, tag), top)
	top += playerRowStep
	p.infoRow("icon/sign/DataBankAvatarIcon.png", t.T("chronicles.characters")+": "+lang.Thousands(space.AvatarCount, tag), top)
	top += playerRowStep
	p.infoRow("icon/sign/DataBankLightConeIcon.png", t.T("light_cones")+": "+lang.Thousands(space.LightConeCount, tag), top)
	top += playerRowStep
	if world := space.PassAreaProgress; world > 0 {
		p.infoRow("icon/sign/NoviceRogueIcon.png", t.T("rogue")+": "+t.T("rogue_world", strconv.Itoa(world)), top)
		top += playerRowStep
	}
	if floor := pl.MemoryFloor(); floor > 0 {
		p.infoRow("icon/sign/AbyssIcon01.png", t.T("abyss")+": "+t.T("moc_floor", strconv.Itoa(floor)), top)
		top += playerRowStep
	}
	if floor := pl.ChaosFloor(); floor > 0 {
		p.infoRow("icon/sign/AbyssIcon02.png", t.T("abyss_hard")+": "+t.T("moc_floor", strconv.Itoa(floor)), top)
	}

	if pl.Signature != "" {
		p.text(pl.Signature, drawing.TextStyle{
			Pos: image.Pt(playerInfoLeft, p.c.Height()-playerMargin-30), Size: 19, Anchor: "ls", Stroke: 1, StrokeColor: playerStroke,
		})
	}
}

// ///////////////////////////////////////////////
// Companions
// ///////////////////////////////////////////////

// companionWidth returns the info box width a companion needs: room for its
// name, its level line and the path and element icons.
func companionWidth(faces *fonts.Faces, name, level string) (int, error) {
	nameFace, err := faces.Face(fonts.UI, 32)
	if err != nil {
		return 0, err
	}
	levelFace, err := faces.Face(fonts.UI, 18)
	if err != nil {
		return 0, err
	}
	icons := 20 + 10 + companionIcon*2
	return max(
		font.MeasureString(nameFace, name).Round(),
		font.MeasureString(levelFace, level).Round(),
		icons,
	) + 40, nil
}

// companionWidths measures every companion in its own goroutine. Each
// goroutine uses a private face cache since faces are not shareable.
func (c *PlayerCard) companionWidths(p *painter, names []string, companions []records.Character) (int, error) {
	widths := make([]int, len(companions))
	errs := make([]error, len(companions))
	var wg sync.WaitGroup
	for i, ch := range companions {
		level := p.j.T.T("chronicles.level_short", twoDigits(ch.Level))
		wg.Go(func() {
			faces := c.rc.Fonts.Faces()
			defer faces.Close()
			widths[i], errs[i] = companionWidth(faces, names[i], level)
		})
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return 0, fmt.Errorf("measure companions: %w", err)
	}
	return slices.Max(widths), nil
}

func (c *PlayerCard) drawCompanions(p *painter) {
	companions := c.profile.Characters[1:]
	top := playerMargin + 30
	p.text(p.j.T.T("mihomo.starfaring"), drawing.TextStyle{
		Pos: image.Pt(companionLeft, top+45), Size: 40, Anchor: "ls", Stroke: 3, StrokeColor: playerStroke,
	})
	top += 100

	names := make([]string, len(companions))
	for i, ch := range companions {
		names[i] = ch.Name
		if meta, err := p.j.Index.Character(ch.ID); err == nil {
			names[i] = p.characterName(meta, c.profile.Player.Nickname)
		}
	}
	boxWidth, err := c.companionWidths(p, names, companions)
	if err != nil {
		p.fail(err)
		return
	}

	mask := p.image(starfaringMask)
	for i, ch := range companions {
		c.drawCompanion(p, ch, names[i], mask, top, boxWidth)
		top += companionStep
	}
}

func (c *PlayerCard) drawCompanion(p *painter, ch records.Character, name string, mask *image.NRGBA, top, boxWidth int) {
	const left = companionLeft
	if icon := p.image(ch.Icon); icon != nil && mask != nil {
		avatar := drawing.New(icon.Rect.Dx(), icon.Rect.Dy(), drawing.Options{Background: playerStroke})
		avatar.PasteMasked(icon, image.Point{}, mask)
		p.paste(drawing.Resize(avatar.Image(), companionAvatar, companionAvatar), left, top)
	}
	right := left + companionAvatar

	p.box(right, top, right+boxWidth, top+companionAvatar, drawing.WithAlphaOf(playerStroke, alpha(0.5)))
	p.text(name, drawing.TextStyle{
		Pos: image.Pt(right+20, top+50), Size: 32, Anchor: "ls", Stroke: 2, StrokeColor: playerStroke,
	})
	p.text(p.j.T.T("chronicles.level_short", twoDigits(ch.Level)), drawing.TextStyle{
		Pos: image.Pt(right+20, top+85), Size: 18, Anchor: "ls", Stroke: 2, StrokeColor: playerStroke,
	})
	p.paste(p.icon(ch.Path.Icon, companionIcon), right+20, top+120)
	p.paste(p.icon(ch.Element.Icon, companionIcon), right+companionIcon+25, top+120)

	const shift = 2
	starTop := top + companionAvatar - companionStar - 6
	p.box(shift+right-companionStar*ch.Rarity-10, starTop, shift+right-7, top+companionAvatar-6,
		drawing.WithAlphaOf(playerStroke, alpha(0.25)))
	star := p.icon(hallStar, companionStar)
	for i := range ch.Rarity {
		p.paste(star, shift+right-companionStar*(i+1)-10, starTop)
	}

	p.text("E"+strconv.Itoa(ch.Rank), drawing.TextStyle{
		Pos: image.Pt(left+15, top+15), Size: 18, Anchor: "ls", Stroke: 2, StrokeColor: playerStroke,
	})
}
