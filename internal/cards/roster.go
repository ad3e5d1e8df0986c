package cards

import (
	"context"
	"image"

	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
)

// ///////////////////////////////////////////////
// Character Roster
// ///////////////////////////////////////////////

const (
	rosterWidth  = 1920
	rosterHeight = 1080
	rosterMargin = 75
	// rosterTop is the top edge of the first portrait row.
	rosterTop = rosterMargin + 200
	// rosterPerRow is the number of portraits in a full row.
	rosterPerRow = 10
	rosterIcon   = 150
	// rosterRowHeight is one portrait with its level plate and the gap
	// below it.
	rosterRowHeight = rosterIcon + 30 + 50
)

// RosterExtension returns how far the roster canvas must grow to fit n
// characters.
func RosterExtension(n int) int {
	rows := len(Chunk(n, rosterPerRow))
	return Overflow(rosterTop+rows*rosterRowHeight, rosterHeight, rosterMargin*2)
}

// RosterCard lists every owned character in rows of ten.
type RosterCard struct {
	rc     *render.Context
	roster records.Roster
}

// NewRosterCard returns a roster composer.
func NewRosterCard(rc *render.Context, roster records.Roster) *RosterCard {
	return &RosterCard{rc: rc, roster: roster}
}

// Create renders the card to PNG.
func (c *RosterCard) Create(ctx context.Context) ([]byte, error) {
	return render.Run(ctx, c.rc, c)
}

func (c *RosterCard) Kind() string    { return "roster" }
func (c *RosterCard) Subject() string { return c.roster.User.Nickname }

func (c *RosterCard) Prepare(*render.Job) (render.Frame, error) {
	return render.Frame{
		Width:      rosterWidth,
		Height:     rosterHeight,
		Background: chroniclePalette.Background,
		Foreground: chroniclePalette.Foreground,
	}, nil
}

func (c *RosterCard) Draw(j *render.Job, canvas *drawing.Canvas) error {
	p := newPainter(j, canvas)
	members := make([]records.Member, len(c.roster.Characters))
	for i, ch := range c.roster.Characters {
		members[i] = ch.Member
	}

	if p.section("layout") {
		p.extendDown(RosterExtension(len(members)))
	}
	p.decorate()

	if p.section("header") {
		user := c.roster.User
		w := p.text(user.Nickname, drawing.TextStyle{Pos: image.Pt(rosterMargin, rosterMargin+68), Size: 86, Anchor: "ls"})
		p.text("("+j.T.T("chronicles.level_short", twoDigits(user.Level))+")", drawing.TextStyle{
			Pos: image.Pt(rosterMargin+w+20, rosterMargin+68), Size: 54, Anchor: "ls",
		})
	}

	if p.section("characters") {
		p.text(j.T.T("chronicles.characters"), drawing.TextStyle{
			Pos: image.Pt(rosterMargin, rosterTop-30), Size: 36, Anchor: "ls",
		})
		top := rosterTop
		for _, n := range Chunk(len(members), rosterPerRow) {
			p.lineup(members[:n], lineupStyle{Left: rosterMargin, Top: top, Spacing: 180, Icon: rosterIcon})
			members = members[n:]
			top += rosterRowHeight
		}
	}

	if p.section("footer") {
		p.supportedBy(128)
		p.credits("chronicles.credits", image.Pt(canvas.Width()/2, canvas.Height()-20), "ms", 16, 128)
	}
	return p.Err()
}
