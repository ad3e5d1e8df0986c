package cards

import (
	"image"
	"image/color"

	"github.com/qingque-bot/qingque/internal/drawing"
)

// ///////////////////////////////////////////////
// Character Colours
// ///////////////////////////////////////////////

// ColorPair is the background and foreground of a character card.
type ColorPair struct {
	Background color.NRGBA
	Foreground color.NRGBA
}

// pairOf builds a pair from one or two table colours. A lone colour gets its
// inversion as foreground.
func pairOf(cols ...color.NRGBA) ColorPair {
	if len(cols) > 1 {
		return ColorPair{Background: cols[0], Foreground: cols[1]}
	}
	return ColorPair{Background: cols[0], Foreground: drawing.Invert(cols[0])}
}

// dominantColors holds the hand-picked card colours per character id.
var dominantColors = map[string][]color.NRGBA{
	"1001": {drawing.RGB(230, 160, 205), drawing.RGB(202, 253, 250)},
	"1002": {drawing.RGB(155, 89, 83)},
	"1003": {drawing.RGB(191, 42, 48), drawing.RGB(212, 192, 210)},
	"1004": {drawing.RGB(88, 85, 82)},
	"1005": {drawing.RGB(67, 52, 63)},
	"1006": {drawing.RGB(43, 65, 112)},
	"1008": {drawing.RGB(59, 61, 100)},
	"1009": {drawing.RGB(132, 94, 115), drawing.RGB(197, 169, 210)},
	"1013": {drawing.RGB(71, 58, 85)},
	"1101": {drawing.RGB(34, 58, 137), drawing.RGB(104, 188, 181)},
	"1102": {drawing.RGB(78, 53, 161), drawing.RGB(218, 231, 255)},
	"1103": {drawing.RGB(53, 49, 68)},
	"1104": {drawing.RGB(70, 83, 139)},
	"1105": {drawing.RGB(181, 172, 159)},
	"1106": {drawing.RGB(57, 85, 151)},
	"1107": {drawing.RGB(63, 57, 82)},
	"1108": {drawing.RGB(96, 90, 136)},
	"1109": {drawing.RGB(190, 144, 54), drawing.RGB(252, 235, 149)},
	"1110": {drawing.RGB(34, 83, 172)},
	"1111": {drawing.RGB(130, 25, 45), drawing.RGB(220, 206, 199)},
	"1112": {drawing.RGB(173, 46, 92), drawing.RGB(246, 194, 98)},
	"1201": {drawing.RGB(55, 86, 93)},
	"1202": {drawing.RGB(239, 211, 148), drawing.RGB(206, 60, 49)},
	"1203": {drawing.RGB(81, 99, 93)},
	"1204": {drawing.RGB(201, 186, 170)},
	"1205": {drawing.RGB(69, 52, 62)},
	"1206": {drawing.RGB(204, 200, 188)},
	"1207": {drawing.RGB(144, 163, 152), drawing.RGB(55, 86, 93)},
	"1208": {drawing.RGB(77, 54, 91), drawing.RGB(230, 131, 204)},
	"1209": {drawing.RGB(49, 109, 173)},
	"1210": {drawing.RGB(255, 166, 132), drawing.RGB(129, 21, 39)},
	"1211": {drawing.RGB(75, 102, 163), drawing.RGB(205, 176, 219)},
	"1212": {drawing.RGB(16, 22, 75), drawing.RGB(178, 213, 254)},
	"1213": {drawing.RGB(34, 42, 46), drawing.RGB(94, 255, 255)},
	"8001": {drawing.RGB(48, 44, 62)},
	"8002": {drawing.RGB(48, 44, 62)},
	"8003": {drawing.RGB(234, 149, 56), drawing.RGB(49, 42, 42)},
	"8004": {drawing.RGB(234, 149, 56), drawing.RGB(49, 42, 42)},
}

// LookupColors returns the table colours of a character.
func LookupColors(characterID string) (ColorPair, bool) {
	cols, ok := dominantColors[characterID]
	if !ok || len(cols) == 0 {
		return ColorPair{}, false
	}
	return pairOf(cols...), true
}

// ResolveColors returns the table colours of a character, or colours derived
// from the dominant colour of preview when the table has no entry. A nil or
// fully transparent preview yields the chronicle palette.
func ResolveColors(characterID string, preview image.Image) ColorPair {
	if pair, ok := LookupColors(characterID); ok {
		return pair
	}
	if preview != nil {
		if c, ok := drawing.DominantColor(preview); ok {
			return pairOf(c)
		}
	}
	return chroniclePalette
}

// ///////////////////////////////////////////////
// Palettes
// ///////////////////////////////////////////////

var (
	// chroniclePalette is the dark gold scheme of the HoyoLab cards.
	chroniclePalette = ColorPair{Background: drawing.RGB(18, 18, 18), Foreground: drawing.RGB(219, 194, 145)}
	// swarmPalette is used for swarm disaster runs.
	swarmPalette = ColorPair{Background: drawing.RGB(26, 27, 51), Foreground: drawing.RGB(250, 250, 250)}
	// hallPalette is the forgotten hall scheme over its dimmed backdrop.
	hallPalette = ColorPair{Background: drawing.RGB(0, 0, 0), Foreground: drawing.RGB(255, 255, 255)}
)

// Gradient is a two-colour fill.
type Gradient struct {
	From color.NRGBA
	To   color.NRGBA
}

var (
	fiveStarGradient = Gradient{drawing.RGB(117, 70, 66), drawing.RGB(201, 164, 104)}
	fourStarGradient = Gradient{drawing.RGB(55, 53, 87), drawing.RGB(134, 89, 204)}
)

// rarityGradient returns the portrait backdrop of a character rarity.
func rarityGradient(rarity int) Gradient {
	if rarity == 5 {
		return fiveStarGradient
	}
	return fourStarGradient
}

// blessingColors and blessingGradients fill blessing chips by rank; the
// gradient marks an enhanced blessing.
var (
	blessingColors = map[int]color.NRGBA{
		1: drawing.RGB(83, 85, 95),
		2: drawing.RGB(52, 75, 123),
		3: drawing.RGB(152, 108, 82),
	}
	blessingGradients = map[int]Gradient{
		1: {drawing.RGB(49, 51, 64), drawing.RGB(130, 131, 138)},
		2: {drawing.RGB(45, 47, 81), drawing.RGB(68, 116, 187)},
		3: fiveStarGradient,
	}
)

// blessingFill returns the chip colour of a blessing rank, clamped to the
// known ranks.
func blessingFill(rank int) (color.NRGBA, Gradient) {
	rank = min(max(rank, 1), 3)
	return blessingColors[rank], blessingGradients[rank]
}
