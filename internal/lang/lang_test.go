package lang

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Tag
		wantOK bool
	}{
		{"en", EN, true},
		{" CN ", CHS, true},
		{"cht", CHT, true},
		{"en-US", Tag("en-us"), false},
		{"", Tag(""), false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFromExternal(t *testing.T) {
	tests := []struct {
		in     string
		want   Tag
		wantOK bool
	}{
		{"zh-cn", CHS, true},
		{"zh_TW", CHT, true},
		{"en-GB", EN, true},
		{"ja", JP, true},
		{"ja-JP", JP, true},
		{"pt-BR", PT, true},
		{"kr", KR, true},
		{"it", EN, true},
		{"xx", EN, false},
	}
	for _, tt := range tests {
		got, ok := FromExternal(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FromExternal(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLocaleRoundTripsThroughExternal(t *testing.T) {
	for _, tag := range All() {
		got, ok := FromExternal(tag.Locale())
		if !ok || got != tag {
			t.Errorf("FromExternal(%q) = (%q, %v), want %q", tag.Locale(), got, ok, tag)
		}
	}
}

func TestLocaleUnknownFallsBack(t *testing.T) {
	if got := Tag("zz").Locale(); got != "en-US" {
		t.Errorf("got %q, want en-US", got)
	}
}

func TestNumeral(t *testing.T) {
	tests := []struct {
		n    int
		tag  Tag
		want string
	}{
		{4, EN, "IV"},
		{3, CHS, "三"},
		{3, JP, "三"},
		{9, CHT, "玖"},
		{10, TH, "๑๐"},
		{11, EN, "11"},
		{0, KR, "0"},
	}
	for _, tt := range tests {
		if got := Numeral(tt.n, tt.tag); got != tt.want {
			t.Errorf("Numeral(%d, %q) = %q, want %q", tt.n, tt.tag, got, tt.want)
		}
	}
}

func TestThousands(t *testing.T) {
	tests := []struct {
		n    int
		tag  Tag
		want string
	}{
		{14000, EN, "14,000"},
		{999, EN, "999"},
		{1234567, EN, "1,234,567"},
	}
	for _, tt := range tests {
		if got := Thousands(tt.n, tt.tag); got != tt.want {
			t.Errorf("Thousands(%d, %s) = %q, want %q", tt.n, tt.tag, got, tt.want)
		}
	}
}
