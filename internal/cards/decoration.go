package cards

// ///////////////////////////////////////////////
// Decoration
// ///////////////////////////////////////////////

const (
	decoRing       = "icon/deco/DecoShortLineRing177R@3x.png"
	decoFrame      = "icon/deco/DialogFrameDeco1.png"
	decoFrameLarge = "icon/deco/DialogFrameDeco1@3x.png"
	decoLine       = "icon/deco/NewSystemDecoLine.png"
)

// decorate tints the chronicle ornaments with the foreground and places
// them: a ring in the top right corner, frame pieces in both bottom corners
// and a rule above the footer. The rule sits higher when credits are shown.
func (p *painter) decorate() {
	if !p.section("decoration") {
		return
	}
	fg := p.c.Foreground()
	w, h := p.c.Width(), p.c.Height()

	if ring := p.tint(p.image(decoRing), fg); ring != nil {
		p.paste(ring, w-ring.Rect.Dx(), 0)
	}

	p.paste(p.resize(p.tint(p.image(decoFrame), fg), 160, 200), 0, h-200)

	if frame := p.tint(p.image(decoFrameLarge), fg); frame != nil {
		fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
		mid := fh/2 - fh/6
		p.paste(frame, w-fw+mid, h-fh+mid)
	}

	if line := p.tint(p.image(decoLine), fg); line != nil {
		lw, lh := line.Rect.Dx(), line.Rect.Dy()
		top := h - lh - 35
		if !p.j.HideCredits() {
			top -= 10
		}
		p.paste(line, w/2-lw/2, top)
	}
}

