package translation

import "testing"

func TestShouldSkip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		source, target string
		want           bool
	}{
		{"en", "en", true},
		{"pt", "PT", true},
		{"pt-BR", "pt_br", true},
		{"en-GB", "en", true},
		{"zh", "zh-TW", false},
		{"zh", "zh-Hant", false},
		{"sr", "sr-Latn", false},
		{"pt", "pt-BR", false},
		{"zh-CN", "zh-TW", false},
		{"und", "en", false},
		{"", "en", false},
		{"pt", "en", false},
	}
	for _, tc := range cases {
		if got := ShouldSkip(tc.source, tc.target); got != tc.want {
			t.Fatalf("ShouldSkip(%q, %q) = %v, want %v", tc.source, tc.target, got, tc.want)
		}
	}
}
