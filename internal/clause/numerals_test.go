package clause

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"3", 3, true},
		{"42", 42, true},
		{"一", 1, true},
		{"十", 10, true},
		{"十二", 12, true},
		{"二十三", 23, true},
		{"一百", 100, true},
		{"三百零五", 305, true},
		{"一千零一", 1001, true},
		{"两", 2, true},
		{"壹佰", 100, true},
		{"叁拾柒", 37, true},
		{"〇", 0, true},
		{"", 0, false},
		{"条", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseLooseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"3.", 3, true},
		{"（12）", 12, true},
		{"十五", 15, true},
		{"第x页", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLooseNumber(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLooseNumber(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToChinese(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "零"},
		{1, "一"},
		{10, "十"},
		{11, "十一"},
		{20, "二十"},
		{23, "二十三"},
		{100, "一百"},
		{103, "一百零三"},
		{110, "一百一十"},
		{305, "三百零五"},
		{1001, "一千零一"},
		{10000, "一万"},
	}
	for _, tt := range tests {
		if got := ToChinese(tt.input); got != tt.want {
			t.Errorf("ToChinese(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToChineseRoundTrip(t *testing.T) {
	for n := 1; n <= 300; n++ {
		text := ToChinese(n)
		back, ok := ParseNumber(text)
		if !ok || back != n {
			t.Fatalf("round trip %d -> %q -> (%d, %v)", n, text, back, ok)
		}
	}
}
