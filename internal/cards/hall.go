package cards

import (
	"context"
	"image"

	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
)

// ///////////////////////////////////////////////
// Forgotten Hall
// ///////////////////////////////////////////////

const (
	hallWidth    = 1920
	hallHeight   = 665
	hallBackdrop = "image/backdrops/BackdropAbyss.png"
	hallMargin   = 75
	hallStar     = "icon/deco/StarBig.png"
	// hallLineupTop is the top edge of both node lineups.
	hallLineupTop = hallMargin + 260
	// hallNodeWidth is the width reserved for one four-member lineup.
	hallNodeWidth = 4 * (150 + 30)
)

// ForgottenHallCard shows one cleared memory of chaos floor: its name, the
// stars earned, the cycles used and both node lineups.
type ForgottenHallCard struct {
	rc    *render.Context
	floor records.HallFloor
}

// NewForgottenHallCard returns a forgotten hall composer.
func NewForgottenHallCard(rc *render.Context, floor records.HallFloor) *ForgottenHallCard {
	return &ForgottenHallCard{rc: rc, floor: floor}
}

// Create renders the card to PNG.
func (c *ForgottenHallCard) Create(ctx context.Context) ([]byte, error) {
	return render.Run(ctx, c.rc, c)
}

func (c *ForgottenHallCard) Kind() string    { return "forgotten-hall" }
func (c *ForgottenHallCard) Subject() string { return c.floor.Name }

func (c *ForgottenHallCard) Prepare(*render.Job) (render.Frame, error) {
	return render.Frame{
		Width:      hallWidth,
		Height:     hallHeight,
		Background: hallPalette.Background,
		Foreground: hallPalette.Foreground,
	}, nil
}

func (c *ForgottenHallCard) Draw(j *render.Job, canvas *drawing.Canvas) error {
	p := newPainter(j, canvas)
	w, h := canvas.Width(), canvas.Height()

	if p.section("backdrop") {
		if img := p.image(hallBackdrop); img != nil {
			p.paste(drawing.Darken(img, 0.5), 0, 0)
		}
	}

	if p.section("header") {
		p.text(j.T.T("chronicles.moc"), drawing.TextStyle{
			Pos: image.Pt(hallMargin, hallMargin+72), Size: 75, Anchor: "ls", Alpha: alpha(0.95),
		})
		p.text(c.floor.Name, drawing.TextStyle{
			Pos: image.Pt(hallMargin, hallMargin+155), Size: 42, Anchor: "ls", Alpha: alpha(0.9),
		})
	}

	if p.section("nodes") {
		c.drawNode(p, c.floor.Node1, j.T.T("chronicles.moc_top"), hallMargin)
		c.drawNode(p, c.floor.Node2, j.T.T("chronicles.moc_bottom"), w-hallMargin-hallNodeWidth+30)
	}

	if p.section("stars") {
		marginal := 100
		if c.floor.Stars > 0 {
			star := p.icon(hallStar, 120)
			for i := range c.floor.Stars {
				p.paste(star, w-172-i*120, hallMargin)
			}
		} else {
			marginal = 80
			p.text(j.T.T("chronicles.moc_no_stars"), drawing.TextStyle{
				Pos: image.Pt(w-hallMargin, hallMargin+76), Size: 60, Anchor: "rs", Alpha: alpha(0.85),
			})
		}
		p.text(j.T.T("chronicles.moc_cycles", lang.Thousands(c.floor.Rounds, j.Tag)), drawing.TextStyle{
			Pos: image.Pt(w-hallMargin, hallMargin+76+marginal), Size: 42, Anchor: "rs", Alpha: alpha(0.8),
		})
	}

	if p.section("footer") {
		p.supportedBy(alpha(0.35))
		p.credits("chronicles.credits", image.Pt(w-20, h-20), "rs", 16, alpha(0.35))
		if at := c.floor.Node1.ChallengeTime; !at.IsZero() {
			p.timestamp(at.Time(), image.Pt(w/2, h-20), "ms", alpha(0.35))
		}
	}
	return p.Err()
}

// drawNode writes a node label above its lineup.
func (c *ForgottenHallCard) drawNode(p *painter, node records.HallNode, label string, left int) {
	p.text(label, drawing.TextStyle{
		Pos: image.Pt(left, hallLineupTop-25), Size: 32, Anchor: "ls", Alpha: alpha(0.85),
	})
	p.lineup(node.Avatars, lineupStyle{
		Left:    left,
		Top:     hallLineupTop,
		Spacing: 180,
		Icon:    150,
		Box:     drawing.WithAlphaOf(p.c.Background(), alpha(0.65)),
		Text:    p.c.Foreground(),
	})
}
