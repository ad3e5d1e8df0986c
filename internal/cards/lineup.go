package cards

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/records"
)

// ///////////////////////////////////////////////
// Lineup
// ///////////////////////////////////////////////

// lineupStyle places a row of character portraits.
type lineupStyle struct {
	// Left and Top locate the first portrait.
	Left int
	Top  int
	// Spacing is the horizontal step between portraits.
	Spacing int
	// Icon is the portrait side length.
	Icon int
	// Box fills the level and eidolon plates. Zero uses the foreground,
	// with the eidolon plate at 80% opacity.
	Box color.NRGBA
	// Text colours the plate labels. Zero uses the background.
	Text color.NRGBA
}

// lineup draws members as portraits over their rarity gradient, each with a
// level plate below, an eidolon plate in the top right corner and the element
// badge in the top left. It returns the x coordinate just past the last
// portrait slot.
func (p *painter) lineup(members []records.Member, st lineupStyle) int {
	fg, bg := p.c.Foreground(), p.c.Background()
	levelBox, rankBox, text := st.Box, st.Box, st.Text
	if levelBox == (color.NRGBA{}) {
		levelBox = fg
		rankBox = drawing.WithAlphaOf(fg, alpha(0.8))
	}
	if text == (color.NRGBA{}) {
		text = bg
	}
	badge := int(math.Round(28 * float64(st.Icon) / 150))

	for i, m := range members {
		if p.err != nil {
			break
		}
		x, top, size := st.Left+st.Spacing*i, st.Top, st.Icon
		portrait, element := p.memberAssets(m)

		p.gradient(x, top, x+size, top+size, rarityGradient(m.Rarity), drawing.Vertical)
		p.paste(p.icon(portrait, size), x, top)

		p.box(x, top+size, x+size, top+size+30, levelBox)
		p.text(p.j.T.T("chronicles.level_short", twoDigits(m.Level)), drawing.TextStyle{
			Pos: image.Pt(x+size/2, top+size+22), Size: 20, Anchor: "ms", Color: text,
		})

		p.box(x+size-31, top, x+size-1, top+30, rankBox)
		p.text("E"+strconv.Itoa(m.Rank), drawing.TextStyle{
			Pos: image.Pt(x+size-16, top+22), Size: 20, Anchor: "ms", Color: text,
		})

		p.circle(x+2, top+2, x+33, top+33, drawing.WithAlphaOf(bg, 128))
		p.paste(p.icon(element, badge), x+3, top+3)
	}
	return st.Left + st.Spacing*len(members)
}

// memberAssets returns the portrait and element badge of a lineup member,
// preferring the index entry and falling back to the chronicle fields.
func (p *painter) memberAssets(m records.Member) (portrait, element string) {
	portrait, element = m.AvatarIcon(), records.ElementIcon(m.Element)
	meta, err := p.j.Index.Character(strconv.Itoa(m.ID))
	if err != nil {
		p.j.Log.Debug("lineup member not indexed", "id", m.ID)
		return portrait, element
	}
	if meta.Icon != "" {
		portrait = meta.Icon
	}
	if el, err := p.j.Index.Element(meta.Element); err == nil && el.Icon != "" {
		element = el.Icon
	}
	return portrait, element
}
