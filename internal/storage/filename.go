package storage

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SecureFilename reduces a client-supplied filename to a flat ASCII name that
// is safe to join under a storage root. It returns "" when nothing usable is
// left, for example for "../..".
//
//	SecureFilename("../../etc/passwd") == "etc_passwd"
//	SecureFilename("My cool movie.mov") == "My_cool_movie.mov"
//	SecureFilename("relatório é.pdf") == "relatorio_e.pdf"
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var ascii strings.Builder
	ascii.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			ascii.WriteRune(r)
		}
	}

	flat := strings.NewReplacer("/", " ", "\\", " ").Replace(ascii.String())
	joined := strings.Join(strings.Fields(flat), "_")
	cleaned := strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
	if cleaned == "" {
		return ""
	}

	stem := strings.ToUpper(strings.SplitN(cleaned, ".", 2)[0])
	if _, reserved := windowsDeviceNames[stem]; reserved {
		cleaned = "_" + cleaned
	}
	return cleaned
}
