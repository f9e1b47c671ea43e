package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildPDF renders a minimal uncompressed PDF with one line of text per page.
func buildPDF(pages []string) []byte {
	var buf bytes.Buffer
	var offsets []int

	addObject := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1 catalog, 2 pages, 3 font, then a page/content pair per page.
	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+i*2))
	}
	addObject("<< /Type /Catalog /Pages 2 0 R >>")
	addObject(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	addObject("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		contentID := 5 + i*2
		addObject(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentID,
		))
		stream := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", text)
		addObject(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset)
	return buf.Bytes()
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExtract_CountsPagesAndReadsText(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "three.pdf", buildPDF([]string{"Hello first", "Hello second", "Hello third"}))

	doc, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.NumPages != 3 {
		t.Fatalf("unexpected page count: got %d want 3", doc.NumPages)
	}
	if !strings.Contains(doc.Text, "Hello") {
		t.Fatalf("expected extracted text to contain page text, got %q", doc.Text)
	}
}

func TestExtract_RejectsGarbage(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "garbage.pdf", []byte("this is not a pdf at all"))

	_, err := NewExtractor().Extract(path)
	if err == nil {
		t.Fatalf("expected extraction error")
	}
	if !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewExtractor().Extract(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("missing file should not be reported as an invalid pdf: %v", err)
	}
}
