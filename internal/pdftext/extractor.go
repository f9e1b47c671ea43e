// Package pdftext turns a PDF on disk into plain text and a page count.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidPDF wraps every failure caused by the document itself.
var ErrInvalidPDF = errors.New("invalid pdf")

var disableConfigDir sync.Once

// Document is the extraction result for one file.
type Document struct {
	Text     string
	NumPages int
}

// Extractor reads page counts with pdfcpu and text with ledongthuc/pdf.
type Extractor struct {
	conf *model.Configuration
}

func NewExtractor() *Extractor {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{conf: conf}
}

// Extract returns the page count and the full plain text of the PDF at path.
func (e *Extractor) Extract(path string) (Document, error) {
	if strings.TrimSpace(path) == "" {
		return Document{}, fmt.Errorf("pdf path is empty")
	}

	numPages, err := e.PageCount(path)
	if err != nil {
		return Document{}, err
	}

	text, err := e.Text(path)
	if err != nil {
		return Document{}, err
	}

	return Document{Text: text, NumPages: numPages}, nil
}

// PageCount returns the number of pages in the PDF at path.
func (e *Extractor) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	count, err := api.PageCount(f, e.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: count pages: %v", ErrInvalidPDF, err)
	}
	return count, nil
}

// Text returns the plain text of every page, NFC-normalized.
func (e *Extractor) Text(path string) (text string, err error) {
	// ledongthuc/pdf panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: extract text: %v", ErrInvalidPDF, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open: %v", ErrInvalidPDF, err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract text: %v", ErrInvalidPDF, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("read text buffer: %w", err)
	}

	return strings.TrimRightFunc(norm.NFC.String(buf.String()), isSpace), nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\r' || r == '\t' || r == '\f'
}
