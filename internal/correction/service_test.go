package correction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeCorrector struct {
	name  string
	calls []string
	langs []string
	fn    func(string) string
	err   error
}

func (f *fakeCorrector) Name() string {
	return f.name
}

func (f *fakeCorrector) Correct(_ context.Context, text, lang string) (string, error) {
	f.calls = append(f.calls, text)
	f.langs = append(f.langs, lang)
	if f.err != nil {
		return "", f.err
	}
	if f.fn != nil {
		return f.fn(text), nil
	}
	return text, nil
}

func TestService_RunsPassesInOrder(t *testing.T) {
	t.Parallel()

	model := &fakeCorrector{name: "model", fn: func(s string) string { return strings.ReplaceAll(s, "teh", "the") }}
	grammar := &fakeCorrector{name: "languagetool", fn: func(s string) string { return strings.ReplaceAll(s, "are", "is") }}
	spelling := &fakeCorrector{name: "m2e"}

	svc := NewService(Options{Model: model, Grammar: grammar, Spelling: spelling, DefaultLanguage: "en-US"})
	result, err := svc.Correct(context.Background(), Request{
		Text:             "teh color are nice",
		SourceLanguage:   "en-GB",
		DetectedLanguage: "en",
	})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if result.Text != "the color is nice" {
		t.Fatalf("unexpected corrected text: %q", result.Text)
	}
	if result.Language != "en-gb" {
		t.Fatalf("unexpected language: %q", result.Language)
	}
	if len(grammar.langs) != 1 || grammar.langs[0] != "en-gb" {
		t.Fatalf("expected grammar pass in requested language, got %#v", grammar.langs)
	}
	if strings.Join(result.Steps, ",") != "model,languagetool" {
		t.Fatalf("unexpected steps: %#v", result.Steps)
	}
}

func TestService_ModelFailureIsUpstream(t *testing.T) {
	t.Parallel()

	cause := errors.New("model offline")
	svc := NewService(Options{Model: &fakeCorrector{name: "model", err: cause}})

	_, err := svc.Correct(context.Background(), Request{Text: "x y z"})
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if !stepErr.Upstream || stepErr.Step != "model" || !errors.Is(err, cause) {
		t.Fatalf("unexpected step error: %#v", stepErr)
	}
}

func TestService_GrammarFailureKeepsModelOutput(t *testing.T) {
	t.Parallel()

	model := &fakeCorrector{name: "model", fn: func(s string) string { return strings.ReplaceAll(s, "teh", "the") }}
	grammar := &fakeCorrector{name: "languagetool", err: errors.New("languagetool status 400: unsupported language ko")}
	svc := NewService(Options{Model: model, Grammar: grammar})

	result, err := svc.Correct(context.Background(), Request{Text: "teh 문서", SourceLanguage: "ko"})
	if err != nil {
		t.Fatalf("grammar failure should not fail the request: %v", err)
	}
	if result.Text != "the 문서" {
		t.Fatalf("expected model output, got %q", result.Text)
	}
	if strings.Join(result.Steps, ",") != "model" {
		t.Fatalf("grammar step should not be reported, got %#v", result.Steps)
	}
	if len(grammar.calls) != 1 {
		t.Fatalf("expected one grammar attempt, got %d", len(grammar.calls))
	}
}

func TestService_GrammarCancelStillFails(t *testing.T) {
	t.Parallel()

	grammar := &fakeCorrector{name: "languagetool", err: context.Canceled}
	svc := NewService(Options{Model: &fakeCorrector{name: "model"}, Grammar: grammar})

	_, err := svc.Correct(context.Background(), Request{Text: "x y z"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

func TestService_ChunksModelInput(t *testing.T) {
	t.Parallel()

	model := &fakeCorrector{name: "model"}
	svc := NewService(Options{Model: model, ModelChunkChars: 20})

	text := strings.Repeat("word ", 10) + "\n\n" + strings.Repeat("more ", 3)
	result, err := svc.Correct(context.Background(), Request{Text: text})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if result.Text != text {
		t.Fatalf("identity corrector should preserve text, got %q", result.Text)
	}
	if len(model.calls) < 3 {
		t.Fatalf("expected chunked model calls, got %d", len(model.calls))
	}
}

func TestService_EmptyTextSkipsPasses(t *testing.T) {
	t.Parallel()

	model := &fakeCorrector{name: "model"}
	svc := NewService(Options{Model: model})
	result, err := svc.Correct(context.Background(), Request{Text: "  \n"})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if result.Text != "  \n" || len(model.calls) != 0 {
		t.Fatalf("expected untouched empty text, got %q with %d calls", result.Text, len(model.calls))
	}
}

func TestResolveLanguage(t *testing.T) {
	t.Parallel()

	if got := ResolveLanguage("pt_BR", "es", "en-us"); got != "pt-br" {
		t.Fatalf("expected requested tag, got %q", got)
	}
	if got := ResolveLanguage("auto", "es", "en-us"); got != "es" {
		t.Fatalf("expected detected language, got %q", got)
	}
	if got := ResolveLanguage("??", "", "en-US"); got != "en-us" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestModelCorrector_TakesFirstChoice(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"t5-small",
			"choices":[
				{"index":0,"message":{"role":"assistant","content":" This is fine. "},"finish_reason":"stop"},
				{"index":1,"message":{"role":"assistant","content":"ignored"},"finish_reason":"stop"}
			]
		}`))
	}))
	defer srv.Close()

	corrector := NewModelCorrector(ModelOptions{Endpoint: srv.URL + "/v1", HTTPClient: srv.Client()})
	got, err := corrector.Correct(context.Background(), "Thsi is fine.", "en")
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if got != "This is fine." {
		t.Fatalf("unexpected corrected text: %q", got)
	}
	if body["model"] != DefaultModel {
		t.Fatalf("unexpected model in request: %#v", body["model"])
	}
}

func TestModelCorrector_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	corrector := NewModelCorrector(ModelOptions{Endpoint: srv.URL, HTTPClient: srv.Client()})
	if _, err := corrector.Correct(context.Background(), "text", "en"); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestBritishSpelling(t *testing.T) {
	t.Parallel()

	spelling := NewBritishSpelling()
	if spelling.Applies("en-US") || spelling.Applies("pt-BR") || spelling.Applies("en") {
		t.Fatalf("did not expect British spelling for non-British tags")
	}
	if !spelling.Applies("en_GB") || !spelling.Applies("en-au") {
		t.Fatalf("expected British spelling for en-GB and en-AU")
	}

	untouched, err := spelling.Correct(context.Background(), "The color is gray.", "en-us")
	if err != nil || untouched != "The color is gray." {
		t.Fatalf("expected untouched text, got %q (%v)", untouched, err)
	}

	converted, err := spelling.Correct(context.Background(), "The color of the organization.", "en-gb")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(converted, "colour") {
		t.Fatalf("expected British spelling, got %q", converted)
	}
}
