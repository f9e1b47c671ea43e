package translation

import (
	"context"
	"errors"
	"testing"
)

func TestRateLimited_WaitsForToken(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: "stub"}
	limited := NewRateLimited(stub, 0.001)
	if limited.Name() != "stub" || len(limited.SupportedLanguages()) != 2 {
		t.Fatalf("wrapper should expose the wrapped provider")
	}

	if _, err := limited.Translate(context.Background(), TranslateRequest{Text: "olá", TargetLang: "en"}); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := limited.Translate(ctx, TranslateRequest{Text: "olá", TargetLang: "en"})
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled wait, got %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("limited call must not reach the provider, calls=%d", stub.calls)
	}
}

func TestRateLimited_DisabledLimit(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: "stub"}
	limited := NewRateLimited(stub, 0)
	for i := 0; i < 5; i++ {
		if _, err := limited.Translate(context.Background(), TranslateRequest{Text: "x", TargetLang: "en"}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if stub.calls != 5 {
		t.Fatalf("expected 5 calls, got %d", stub.calls)
	}
}
