package translation

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubProvider struct {
	name     string
	calls    int
	requests []TranslateRequest
	err      error
}

func (p *stubProvider) Translate(_ context.Context, req TranslateRequest) (*TranslateResponse, error) {
	p.calls++
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &TranslateResponse{
		Text:         strings.ToUpper(req.Text),
		SourceLang:   "pt",
		TargetLang:   req.TargetLang,
		ProviderName: p.name,
		LatencyMs:    3,
	}, nil
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) SupportedLanguages() []string {
	return []string{"en", "pt"}
}

func newStubManager(t *testing.T, provider *stubProvider, chunkChars int) *Manager {
	t.Helper()
	registry := NewRegistry(provider.name)
	if err := registry.Register(provider); err != nil {
		t.Fatalf("register provider: %v", err)
	}
	return NewManager(registry, chunkChars)
}

func TestManagerTranslate_SkipsSameLanguage(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub"}
	manager := newStubManager(t, provider, 0)

	result, err := manager.Translate(context.Background(), RunOptions{
		Text:       "Already english text.",
		SourceLang: "en",
		TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !result.Skipped {
		t.Fatalf("expected skipped result")
	}
	if result.Text != "Already english text." {
		t.Fatalf("expected passthrough text, got %q", result.Text)
	}
	if provider.calls != 0 {
		t.Fatalf("expected no provider calls, got %d", provider.calls)
	}
}

func TestManagerTranslate_ChunksAndPreservesLayout(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub"}
	manager := newStubManager(t, provider, 100)

	first := strings.Repeat("um ", 25)
	second := strings.Repeat("dois ", 15)
	text := "  " + first + "\n\n" + second + "\n"

	result, err := manager.Translate(context.Background(), RunOptions{
		Text:       text,
		SourceLang: "pt",
		TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected two provider calls, got %d", provider.calls)
	}
	if result.Chunks != 2 {
		t.Fatalf("unexpected chunk count: %d", result.Chunks)
	}
	if result.Text != strings.ToUpper(text) {
		t.Fatalf("unexpected reassembled text: %q", result.Text)
	}
	for _, req := range provider.requests {
		if req.Text != strings.TrimSpace(req.Text) {
			t.Fatalf("expected trimmed chunk, got %q", req.Text)
		}
	}
	if result.ProviderName != "stub" || result.LatencyMs != 6 {
		t.Fatalf("unexpected metadata: %#v", result)
	}
}

func TestManagerTranslate_UnknownSourceUsesProviderDetection(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub"}
	manager := newStubManager(t, provider, 0)

	result, err := manager.Translate(context.Background(), RunOptions{Text: "olá", SourceLang: "und", TargetLang: "en"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.SourceLang != "pt" {
		t.Fatalf("expected provider-detected source, got %q", result.SourceLang)
	}
}

func TestManagerTranslate_WrapsProviderError(t *testing.T) {
	t.Parallel()

	upstream := errors.New("connection reset")
	provider := &stubProvider{name: "stub", err: upstream}
	manager := newStubManager(t, provider, 0)

	_, err := manager.Translate(context.Background(), RunOptions{Text: "texto", SourceLang: "pt", TargetLang: "en"})
	if !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestManagerTranslate_RequiresTarget(t *testing.T) {
	t.Parallel()

	manager := newStubManager(t, &stubProvider{name: "stub"}, 0)
	if _, err := manager.Translate(context.Background(), RunOptions{Text: "x"}); !errors.Is(err, ErrTargetRequired) {
		t.Fatalf("expected ErrTargetRequired, got %v", err)
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	t.Parallel()

	manager := newStubManager(t, &stubProvider{name: "stub"}, 0)
	_, err := manager.Translate(context.Background(), RunOptions{Text: "x y z", SourceLang: "pt", TargetLang: "en", Provider: "deepl"})
	if !errors.Is(err, ErrUnknownProvider) || !strings.Contains(err.Error(), "stub") {
		t.Fatalf("expected unregistered provider error, got %v", err)
	}
}

func TestNewRegistryFromOptions_FallsBackToGoogle(t *testing.T) {
	t.Parallel()

	registry := NewRegistryFromOptions(RegistryOptions{DefaultProvider: "deepl", RateLimit: 1})
	if registry.DefaultProvider() != "google" {
		t.Fatalf("unexpected default provider: %q", registry.DefaultProvider())
	}
	if names := registry.ProviderNames(); len(names) != 2 || names[0] != "google" || names[1] != "local" {
		t.Fatalf("unexpected provider names: %#v", names)
	}
}
