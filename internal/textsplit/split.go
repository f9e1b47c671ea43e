// Package textsplit cuts long texts into upstream-sized pieces without losing layout.
package textsplit

import (
	"strings"
	"unicode/utf8"
)

// chunkSeparators are tried in order, coarsest first.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// Chunk splits text into pieces of at most maxChars runes whose concatenation
// is exactly text. Paragraph breaks are preferred over line breaks, line
// breaks over sentence ends and sentence ends over spaces; a single word
// longer than maxChars is cut at rune boundaries.
func Chunk(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	if maxChars <= 0 {
		return []string{text}
	}
	return splitWith(text, maxChars, chunkSeparators)
}

func splitWith(text string, maxChars int, separators []string) []string {
	if utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}
	if len(separators) == 0 {
		return hardSplit(text, maxChars)
	}

	parts := strings.SplitAfter(text, separators[0])
	chunks := make([]string, 0, len(parts))
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, part := range parts {
		if part == "" {
			continue
		}
		partLen := utf8.RuneCountInString(part)
		if partLen > maxChars {
			flush()
			chunks = append(chunks, splitWith(part, maxChars, separators[1:])...)
			continue
		}
		if currentLen+partLen > maxChars {
			flush()
		}
		current.WriteString(part)
		currentLen += partLen
	}
	flush()
	return chunks
}

func hardSplit(text string, maxChars int) []string {
	chunks := make([]string, 0, utf8.RuneCountInString(text)/maxChars+1)
	for len(text) > 0 {
		end := 0
		for i := 0; i < maxChars && end < len(text); i++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		chunks = append(chunks, text[:end])
		text = text[end:]
	}
	return chunks
}

// SplitPadding separates leading and trailing whitespace from a chunk so the
// upstream only sees the words and the layout survives the round trip.
func SplitPadding(chunk string) (string, string, string) {
	core := strings.TrimSpace(chunk)
	if core == "" {
		return chunk, "", ""
	}
	start := strings.Index(chunk, core)
	return chunk[:start], core, chunk[start+len(core):]
}
