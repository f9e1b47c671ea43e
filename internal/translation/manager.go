package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"horse.fit/pdfdesk/internal/textsplit"
)

// DefaultChunkChars keeps each upstream call well below the public
// endpoint's request size limit.
const DefaultChunkChars = 4500

var ErrTargetRequired = errors.New("target language is required")

// RunOptions controls one document translation.
type RunOptions struct {
	Text       string
	SourceLang string
	TargetLang string
	Provider   string
}

// RunResult reports the translated text and how it was produced.
type RunResult struct {
	Text         string `json:"text"`
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	ProviderName string `json:"provider_name,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	Skipped      bool   `json:"skipped"`
	Chunks       int    `json:"chunks"`
	LatencyMs    int64  `json:"latency_ms"`
}

// Manager coordinates provider selection and chunked translation of long texts.
type Manager struct {
	registry   *Registry
	chunkChars int
}

func NewManager(registry *Registry, chunkChars int) *Manager {
	if chunkChars <= 0 {
		chunkChars = DefaultChunkChars
	}
	return &Manager{registry: registry, chunkChars: chunkChars}
}

// Translate returns opts.Text unchanged when it is already in the target
// language, otherwise translates it chunk by chunk and reassembles the
// result with the original whitespace between chunks.
func (m *Manager) Translate(ctx context.Context, opts RunOptions) (RunResult, error) {
	if m == nil || m.registry == nil {
		return RunResult{}, fmt.Errorf("translation manager is not initialized")
	}
	if strings.TrimSpace(opts.TargetLang) == "" {
		return RunResult{}, ErrTargetRequired
	}

	result := RunResult{
		Text:       opts.Text,
		SourceLang: normalizeLangCode(opts.SourceLang),
		TargetLang: normalizeLangCode(opts.TargetLang),
	}
	if ShouldSkip(opts.SourceLang, opts.TargetLang) || strings.TrimSpace(opts.Text) == "" {
		result.Skipped = true
		return result, nil
	}

	provider, err := m.resolveProvider(opts.Provider)
	if err != nil {
		return RunResult{}, err
	}
	result.ProviderName = provider.Name()
	result.ModelName = modelNameFromProvider(provider)

	var b strings.Builder
	b.Grow(len(opts.Text))
	for _, chunk := range textsplit.Chunk(opts.Text, m.chunkChars) {
		lead, core, trail := textsplit.SplitPadding(chunk)
		if core == "" {
			b.WriteString(lead)
			continue
		}

		resp, err := provider.Translate(ctx, TranslateRequest{
			Text:       core,
			SourceLang: opts.SourceLang,
			TargetLang: opts.TargetLang,
		})
		if err != nil {
			return RunResult{}, fmt.Errorf("translate chunk %d with %s: %w", result.Chunks+1, provider.Name(), err)
		}
		if resp == nil {
			return RunResult{}, fmt.Errorf("translate chunk %d with %s: empty response", result.Chunks+1, provider.Name())
		}

		b.WriteString(lead)
		b.WriteString(resp.Text)
		b.WriteString(trail)
		result.Chunks++
		result.LatencyMs += resp.LatencyMs
		if result.SourceLang == "" || result.SourceLang == "und" {
			result.SourceLang = normalizeLangCode(resp.SourceLang)
		}
	}

	result.Text = b.String()
	return result, nil
}

func (m *Manager) resolveProvider(requested string) (Provider, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("translation registry is not initialized")
	}
	return m.registry.Provider(requested)
}

type modelNameProvider interface {
	ModelName() string
}

func modelNameFromProvider(provider Provider) string {
	namedProvider, ok := provider.(modelNameProvider)
	if !ok {
		return ""
	}
	return strings.TrimSpace(namedProvider.ModelName())
}
