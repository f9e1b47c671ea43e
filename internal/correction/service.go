// Package correction fixes spelling and grammar of extracted document text.
package correction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/pdfdesk/internal/language"
	"horse.fit/pdfdesk/internal/textsplit"
)

// defaultModelChunkChars keeps inputs inside small seq2seq context windows.
const defaultModelChunkChars = 2000

// Corrector is one correction pass over text written in lang.
type Corrector interface {
	Name() string
	Correct(ctx context.Context, text, lang string) (string, error)
}

// StepError identifies the pass that failed.
type StepError struct {
	Step     string
	Upstream bool
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s correction: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Options configures the correction pipeline. Grammar and Spelling are optional.
type Options struct {
	Model           Corrector
	Grammar         Corrector
	Spelling        Corrector
	DefaultLanguage string
	ModelChunkChars int
	Logger          *zerolog.Logger
}

// Service runs the model pass, then the grammar checker, then regional spelling.
type Service struct {
	model           Corrector
	grammar         Corrector
	spelling        Corrector
	defaultLanguage string
	modelChunkChars int
	logger          zerolog.Logger
}

func NewService(opts Options) *Service {
	chunkChars := opts.ModelChunkChars
	if chunkChars <= 0 {
		chunkChars = defaultModelChunkChars
	}
	defaultLanguage := language.NormalizeTag(opts.DefaultLanguage)
	if defaultLanguage == "" {
		defaultLanguage = "en-us"
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Service{
		model:           opts.Model,
		grammar:         opts.Grammar,
		spelling:        opts.Spelling,
		defaultLanguage: defaultLanguage,
		modelChunkChars: chunkChars,
		logger:          logger,
	}
}

// Request is one correction job.
type Request struct {
	Text             string
	SourceLanguage   string
	DetectedLanguage string
}

// Result is the corrected text and the passes that ran over it.
type Result struct {
	Text     string   `json:"text"`
	Language string   `json:"language"`
	Steps    []string `json:"steps"`
}

func (s *Service) Correct(ctx context.Context, req Request) (Result, error) {
	if s == nil || s.model == nil {
		return Result{}, fmt.Errorf("correction service is not initialized")
	}

	lang := ResolveLanguage(req.SourceLanguage, req.DetectedLanguage, s.defaultLanguage)
	result := Result{Text: req.Text, Language: lang}
	if strings.TrimSpace(req.Text) == "" {
		return result, nil
	}

	corrected, err := s.runModel(ctx, req.Text, lang)
	if err != nil {
		return Result{}, &StepError{Step: s.model.Name(), Upstream: true, Err: err}
	}
	result.Steps = append(result.Steps, s.model.Name())

	if s.grammar != nil {
		checked, err := s.grammar.Correct(ctx, corrected, lang)
		switch {
		case err == nil:
			corrected = checked
			result.Steps = append(result.Steps, s.grammar.Name())
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return Result{}, &StepError{Step: s.grammar.Name(), Upstream: true, Err: err}
		default:
			// The grammar pass is best-effort: the model output stands.
			s.logger.Warn().Err(err).Str("step", s.grammar.Name()).Str("language", lang).Msg("grammar pass skipped")
		}
	}

	if s.spelling != nil {
		spelled, err := s.spelling.Correct(ctx, corrected, lang)
		if err != nil {
			return Result{}, &StepError{Step: s.spelling.Name(), Err: err}
		}
		if spelled != corrected {
			result.Steps = append(result.Steps, s.spelling.Name())
		}
		corrected = spelled
	}

	result.Text = corrected
	return result, nil
}

func (s *Service) runModel(ctx context.Context, text, lang string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))
	for _, chunk := range textsplit.Chunk(text, s.modelChunkChars) {
		lead, core, trail := textsplit.SplitPadding(chunk)
		if core == "" {
			b.WriteString(lead)
			continue
		}
		corrected, err := s.model.Correct(ctx, core, lang)
		if err != nil {
			return "", err
		}
		b.WriteString(lead)
		b.WriteString(corrected)
		b.WriteString(trail)
	}
	return b.String(), nil
}

// ResolveLanguage picks the language the checkers run in: an explicit
// requested tag, then the detected language, then the configured default.
// "auto" and invalid tags count as not requested.
func ResolveLanguage(requested, detected, fallback string) string {
	if !strings.EqualFold(strings.TrimSpace(requested), "auto") {
		if tag := language.NormalizeTag(requested); tag != "" {
			return tag
		}
	}
	if code := language.NormalizeCode(detected); code != "" && code != "und" {
		return code
	}
	return language.NormalizeTag(fallback)
}
