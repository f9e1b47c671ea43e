package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Undetermined is reported when the detector has no answer for a sample.
const Undetermined = "und"

const minLetters = 6

// Detector identifies the language of extracted document text.
type Detector struct {
	languages []lingua.Language

	once     sync.Once
	detector lingua.LanguageDetector
}

// New returns a detector limited to the given ISO 639-1 codes. Unknown codes
// are ignored; fewer than two known codes means every supported language.
func New(codes []string) *Detector {
	return &Detector{languages: resolveLanguages(codes)}
}

// DetectISO6391 returns the lowercase ISO 639-1 code of text, or "" when the
// sample is too short or no language can be determined.
func (d *Detector) DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
			if letterCount >= minLetters {
				break
			}
		}
	}
	if letterCount < minLetters {
		return ""
	}

	language, exists := d.get().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// Warm builds the underlying models ahead of the first request.
func (d *Detector) Warm() {
	_ = d.get()
}

func (d *Detector) get() lingua.LanguageDetector {
	d.once.Do(func() {
		builder := lingua.NewLanguageDetectorBuilder()
		if len(d.languages) >= 2 {
			builder = builder.FromLanguages(d.languages...)
		} else {
			builder = builder.FromAllLanguages()
		}
		d.detector = builder.WithPreloadedLanguageModels().Build()
	})
	return d.detector
}

func resolveLanguages(codes []string) []lingua.Language {
	if len(codes) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		normalized := strings.ToLower(strings.TrimSpace(code))
		if normalized != "" {
			wanted[normalized] = struct{}{}
		}
	}

	languages := make([]lingua.Language, 0, len(wanted))
	for _, language := range lingua.AllLanguages() {
		code := strings.ToLower(language.IsoCode639_1().String())
		if _, ok := wanted[code]; ok {
			languages = append(languages, language)
		}
	}
	return languages
}
