// Package lang defines the canonical language tag used across the renderer
// and the tables that map other code spaces onto it.
//
// A [Tag] is the directory code of the asset index (e.g. "en", "cn", "jp").
// External codes (Mihomo codes, HoyoLab locales, Discord locales) are folded
// into a Tag with [FromExternal]; [Tag.Locale] gives the display locale used
// by the UI string catalogs.
package lang

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ///////////////////////////////////////////////
// Tag
// ///////////////////////////////////////////////

// Tag is a canonical language identifier. Its value names the per-language
// index directory.
type Tag string

const (
	CHT Tag = "cht"
	CHS Tag = "cn"
	DE  Tag = "de"
	EN  Tag = "en"
	ES  Tag = "es"
	FR  Tag = "fr"
	ID  Tag = "id"
	JP  Tag = "jp"
	KR  Tag = "kr"
	PT  Tag = "pt"
	RU  Tag = "ru"
	TH  Tag = "th"
	VI  Tag = "vi"
)

// Default is the language used when a lookup falls through.
const Default = EN

// all lists every supported tag in a stable order.
var all = []Tag{CHT, CHS, DE, EN, ES, FR, ID, JP, KR, PT, RU, TH, VI}

// All returns every supported tag.
func All() []Tag {
	out := make([]Tag, len(all))
	copy(out, all)
	return out
}

// String returns the index directory code.
func (t Tag) String() string { return string(t) }

// IndexDir returns the asset index directory name for t.
func (t Tag) IndexDir() string { return string(t) }

// Valid reports whether t is one of the supported tags.
func (t Tag) Valid() bool {
	_, ok := displayLocales[t]
	return ok
}

// Locale returns the display locale of t (e.g. "en-US"). Unknown tags map to
// the locale of [Default].
func (t Tag) Locale() string {
	if l, ok := displayLocales[t]; ok {
		return l
	}
	return displayLocales[Default]
}

// Parse returns the tag whose index code is s.
func Parse(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// ///////////////////////////////////////////////
// Mapping Tables
// ///////////////////////////////////////////////

// displayLocales maps each tag to the locale naming its UI string catalog.
var displayLocales = map[Tag]string{
	CHT: "zh-TW",
	CHS: "zh-CN",
	DE:  "de-DE",
	EN:  "en-US",
	ES:  "es-ES",
	FR:  "fr-FR",
	ID:  "id-ID",
	JP:  "ja-JP",
	KR:  "ko-KR",
	PT:  "pt-PT",
	RU:  "ru-RU",
	TH:  "th-TH",
	VI:  "vi-VN",
}

// externalCodes maps lowercased codes from upstream services to a tag. Index
// codes and display locales are folded in at init.
var externalCodes = map[string]Tag{
	// Mihomo API
	"chs": CHS,
	"it":  EN,
	// HoyoLab
	"zh-cn": CHS,
	"zh-tw": CHT,
	"de-de": DE,
	"en-us": EN,
	"es-es": ES,
	"fr-fr": FR,
	"id-id": ID,
	"ja-jp": JP,
	"ko-kr": KR,
	"pt-pt": PT,
	"ru-ru": RU,
	"th-th": TH,
	"vi-vn": VI,
	// Discord locales that differ from both of the above
	"en-gb": EN,
	"ja":    JP,
	"ko":    KR,
	"pt-br": PT,
}

func init() {
	for t, locale := range displayLocales {
		externalCodes[string(t)] = t
		externalCodes[strings.ToLower(locale)] = t
	}
}

// FromExternal maps a code from any upstream service to a tag. The second
// return is false when the code is unknown, in which case [Default] is
// returned.
func FromExternal(code string) (Tag, bool) {
	key := strings.ToLower(strings.TrimSpace(code))
	key = strings.ReplaceAll(key, "_", "-")
	if t, ok := externalCodes[key]; ok {
		return t, true
	}
	return Default, false
}

// ///////////////////////////////////////////////
// Numerals
// ///////////////////////////////////////////////

var (
	latinNumerals    = []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}
	chineseNumerals  = []string{"一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}
	taiwanNumerals   = []string{"壹", "貳", "參", "肆", "伍", "陸", "柒", "捌", "玖", "拾"}
	koreanNumerals   = []string{"일", "이", "삼", "사", "오", "육", "칠", "팔", "구", "십"}
	cyrillicNumerals = []string{"А", "Б", "Г", "Д", "Е", "Ѕ", "З", "И", "І", "І"}
	thaiNumerals     = []string{"๑", "๒", "๓", "๔", "๕", "๖", "๗", "๘", "๙", "๑๐"}
)

// Numeral renders n (1-10) in the numeral style of t, used for world and
// difficulty labels. Values outside 1-10 are printed as decimal.
func Numeral(n int, t Tag) string {
	if n < 1 || n > 10 {
		return strconv.Itoa(n)
	}
	table := latinNumerals
	switch t {
	case JP, CHS:
		table = chineseNumerals
	case CHT:
		table = taiwanNumerals
	case KR:
		table = koreanNumerals
	case RU:
		table = cyrillicNumerals
	case TH:
		table = thaiNumerals
	}
	return table[n-1]
}

// Thousands formats n with the digit grouping of t's display locale
// ("14,000" in English, "14.000" in German).
func Thousands(n int, t Tag) string {
	return message.NewPrinter(language.Make(t.Locale())).Sprintf("%d", n)
}
