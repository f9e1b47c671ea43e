// Package document runs the extract, detect and translate or correct
// pipeline over one uploaded PDF.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/pdfdesk/internal/correction"
	"horse.fit/pdfdesk/internal/langdetect"
	"horse.fit/pdfdesk/internal/language"
	"horse.fit/pdfdesk/internal/pdftext"
	"horse.fit/pdfdesk/internal/storage"
	"horse.fit/pdfdesk/internal/translation"
)

type Extractor interface {
	Extract(path string) (pdftext.Document, error)
}

type Detector interface {
	DetectISO6391(text string) string
}

type Translator interface {
	Translate(ctx context.Context, opts translation.RunOptions) (translation.RunResult, error)
}

type Corrector interface {
	Correct(ctx context.Context, req correction.Request) (correction.Result, error)
}

type ScratchStore interface {
	CreateScratch(r io.Reader) (*storage.Scratch, error)
}

// Upload is one client-supplied PDF.
type Upload struct {
	Filename string
	Body     io.Reader
}

type Options struct {
	Extractor  Extractor
	Detector   Detector
	Translator Translator
	Corrector  Corrector
	Scratch    ScratchStore
	Logger     zerolog.Logger
}

type Service struct {
	extractor  Extractor
	detector   Detector
	translator Translator
	corrector  Corrector
	scratch    ScratchStore
	logger     zerolog.Logger
}

func NewService(opts Options) *Service {
	return &Service{
		extractor:  opts.Extractor,
		detector:   opts.Detector,
		translator: opts.Translator,
		corrector:  opts.Corrector,
		scratch:    opts.Scratch,
		logger:     opts.Logger,
	}
}

// TranslateResult is the /translate-pdf response body.
type TranslateResult struct {
	OriginalText     string `json:"originalText"`
	TranslatedText   string `json:"translatedText"`
	OriginalLanguage string `json:"originalLanguage"`
	NumPages         int    `json:"numPages"`

	Skipped  bool   `json:"-"`
	Provider string `json:"-"`
	Chunks   int    `json:"-"`
}

// CorrectResult is the /correct-text response body.
type CorrectResult struct {
	OriginalText     string `json:"originalText"`
	CorrectedText    string `json:"correctedText"`
	OriginalLanguage string `json:"originalLanguage"`
	NumPages         int    `json:"numPages"`

	Language string   `json:"-"`
	Steps    []string `json:"-"`
}

type extracted struct {
	doc      pdftext.Document
	language string
}

// Translate translates upload into target with the default provider.
func (s *Service) Translate(ctx context.Context, upload Upload, target string) (TranslateResult, error) {
	return s.TranslateVia(ctx, upload, target, "")
}

// TranslateVia is Translate with an explicit provider name; "" selects the default.
func (s *Service) TranslateVia(ctx context.Context, upload Upload, target, provider string) (TranslateResult, error) {
	if s == nil || s.translator == nil {
		return TranslateResult{}, newError(KindInternal, MsgInternal, nil)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return TranslateResult{}, newError(KindInvalidInput, MsgNoTargetLanguage, nil)
	}
	if language.NormalizeCode(target) == "" {
		return TranslateResult{}, newError(KindInvalidInput, MsgInvalidTargetLanguage, nil)
	}

	in, err := s.extract(upload)
	if err != nil {
		return TranslateResult{}, err
	}

	run, err := s.translator.Translate(ctx, translation.RunOptions{
		Text:       in.doc.Text,
		SourceLang: in.language,
		TargetLang: target,
		Provider:   provider,
	})
	if err != nil {
		if errors.Is(err, translation.ErrTargetRequired) {
			return TranslateResult{}, newError(KindInvalidInput, MsgNoTargetLanguage, err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, translation.ErrUnknownProvider) {
			return TranslateResult{}, newError(KindInternal, MsgInternal, err)
		}
		return TranslateResult{}, newError(KindUpstreamFailed, MsgTranslationFailed, err)
	}

	return TranslateResult{
		OriginalText:     in.doc.Text,
		TranslatedText:   run.Text,
		OriginalLanguage: in.language,
		NumPages:         in.doc.NumPages,
		Skipped:          run.Skipped,
		Provider:         run.ProviderName,
		Chunks:           run.Chunks,
	}, nil
}

// Correct runs the correction pipeline over the text of upload.
// sourceLanguage may be "auto".
func (s *Service) Correct(ctx context.Context, upload Upload, sourceLanguage string) (CorrectResult, error) {
	if s == nil || s.corrector == nil {
		return CorrectResult{}, newError(KindInternal, MsgInternal, nil)
	}
	sourceLanguage = strings.TrimSpace(sourceLanguage)
	if sourceLanguage == "" {
		return CorrectResult{}, newError(KindInvalidInput, MsgNoSourceLanguage, nil)
	}

	in, err := s.extract(upload)
	if err != nil {
		return CorrectResult{}, err
	}

	fixed, err := s.corrector.Correct(ctx, correction.Request{
		Text:             in.doc.Text,
		SourceLanguage:   sourceLanguage,
		DetectedLanguage: in.language,
	})
	if err != nil {
		var stepErr *correction.StepError
		if errors.As(err, &stepErr) && stepErr.Upstream {
			return CorrectResult{}, newError(KindUpstreamFailed, MsgCorrectionFailed, err)
		}
		return CorrectResult{}, newError(KindInternal, MsgInternal, err)
	}

	return CorrectResult{
		OriginalText:     in.doc.Text,
		CorrectedText:    fixed.Text,
		OriginalLanguage: in.language,
		NumPages:         in.doc.NumPages,
		Language:         fixed.Language,
		Steps:            fixed.Steps,
	}, nil
}

// extract copies the upload to scratch, reads it, and removes the scratch
// file before returning on every path.
func (s *Service) extract(upload Upload) (extracted, error) {
	if upload.Body == nil {
		return extracted{}, newError(KindInvalidInput, MsgNoFile, nil)
	}
	if s.scratch == nil || s.extractor == nil {
		return extracted{}, newError(KindInternal, MsgInternal, nil)
	}

	scratch, err := s.scratch.CreateScratch(upload.Body)
	if err != nil {
		return extracted{}, newError(KindInternal, MsgInternal, err)
	}
	defer func() {
		if err := scratch.Release(); err != nil {
			s.logger.Warn().Err(err).Str("path", scratch.Path).Msg("release scratch file failed")
		}
	}()

	doc, err := s.extractor.Extract(scratch.Path)
	if err != nil {
		if errors.Is(err, pdftext.ErrInvalidPDF) {
			return extracted{}, newError(KindExtractionFailed, MsgUnreadablePDF, err)
		}
		return extracted{}, newError(KindInternal, MsgUnreadablePDF, fmt.Errorf("extract %s: %w", upload.Filename, err))
	}

	detected := langdetect.Undetermined
	if s.detector != nil {
		if code := s.detector.DetectISO6391(doc.Text); code != "" {
			detected = code
		}
	}

	return extracted{doc: doc, language: detected}, nil
}
