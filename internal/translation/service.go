package translation

import (
	"context"

	"horse.fit/pdfdesk/internal/language"
)

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Name() string
	SupportedLanguages() []string
}

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // ISO 639-1 (for example: "pt", "en"); empty lets the provider detect
	TargetLang string
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	LatencyMs    int64
}

// ShouldSkip reports whether text already in sourceLang needs no translation
// into targetLang. Unknown sources are always translated. A target with a
// region or script ("zh-TW", "pt-BR", "sr-Latn") is skipped only when the
// source names the same full tag.
func ShouldSkip(sourceLang, targetLang string) bool {
	source := language.NormalizeTag(sourceLang)
	if source == "" || source == "und" || !language.SameLanguage(source, targetLang) {
		return false
	}
	target := language.NormalizeTag(targetLang)
	return target == source || target == language.NormalizeCode(target)
}

func normalizeLangCode(raw string) string {
	return language.NormalizeCode(raw)
}
