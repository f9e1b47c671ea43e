package language

import "testing"

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	if got := NormalizeTag(" EN_us "); got != "en-us" {
		t.Fatalf("unexpected normalized tag: %q", got)
	}
	if got := NormalizeTag("zh-Hans"); got != "zh-hans" {
		t.Fatalf("unexpected normalized tag: %q", got)
	}
	if got := NormalizeTag("en--US"); got != "en-us" {
		t.Fatalf("unexpected collapsed tag: %q", got)
	}
	if got := NormalizeTag("en_123"); got != "" {
		t.Fatalf("expected invalid tag to normalize to empty string, got %q", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	if got := NormalizeCode(" EN-us "); got != "en" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode("zh"); got != "zh" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode(" "); got != "" {
		t.Fatalf("expected empty code for blank input, got %q", got)
	}
}

func TestSameLanguage(t *testing.T) {
	t.Parallel()

	if !SameLanguage("pt-BR", "pt") {
		t.Fatalf("expected pt-BR and pt to match")
	}
	if !SameLanguage("EN", "en_us") {
		t.Fatalf("expected EN and en_us to match")
	}
	if SameLanguage("en", "es") {
		t.Fatalf("did not expect en and es to match")
	}
	if SameLanguage("", "") {
		t.Fatalf("did not expect blank tags to match")
	}
}

func TestRegion(t *testing.T) {
	t.Parallel()

	if got := Region("en_GB"); got != "gb" {
		t.Fatalf("unexpected region: %q", got)
	}
	if got := Region("zh-hans-cn"); got != "cn" {
		t.Fatalf("unexpected region for script tag: %q", got)
	}
	if got := Region("en"); got != "" {
		t.Fatalf("expected no region, got %q", got)
	}
}
