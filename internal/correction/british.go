package correction

import (
	"context"
	"fmt"
	"sync"

	"github.com/sammcj/m2e/pkg/converter"

	"horse.fit/pdfdesk/internal/language"
)

// britishRegions are the English variants that use British spelling.
var britishRegions = map[string]struct{}{
	"gb": {},
	"uk": {},
	"au": {},
	"nz": {},
	"ie": {},
	"za": {},
}

// BritishSpelling converts American spellings for British-family English
// requests and leaves every other language untouched.
type BritishSpelling struct {
	once sync.Once
	conv *converter.Converter
	err  error
}

func NewBritishSpelling() *BritishSpelling {
	return &BritishSpelling{}
}

func (b *BritishSpelling) Name() string {
	return "m2e"
}

// Applies reports whether lang requests British spelling.
func (b *BritishSpelling) Applies(lang string) bool {
	if language.NormalizeCode(lang) != "en" {
		return false
	}
	_, ok := britishRegions[language.Region(lang)]
	return ok
}

func (b *BritishSpelling) Correct(_ context.Context, text, lang string) (string, error) {
	if !b.Applies(lang) || text == "" {
		return text, nil
	}
	b.once.Do(func() {
		b.conv, b.err = converter.NewConverter()
	})
	if b.err != nil {
		return "", fmt.Errorf("initialise spelling converter: %w", b.err)
	}
	// Smart quotes are part of the document and stay as extracted.
	return b.conv.ConvertToBritish(text, false), nil
}
