package translation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleProvider_TranslateConcatenatesSegments(t *testing.T) {
	t.Parallel()

	var gotQuery, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotQuery = r.URL.Query().Get("sl") + ">" + r.URL.Query().Get("tl")
		gotText = r.PostForm.Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["Hello world. ","Olá mundo. ",null,null,10],["Bye.","Tchau.",null,null,10]],null,"pt",null,null,null,1]`))
	}))
	defer srv.Close()

	provider := NewGoogleProvider(srv.URL, srv.Client())
	resp, err := provider.Translate(context.Background(), TranslateRequest{
		Text:       "Olá mundo. Tchau.",
		TargetLang: "EN_us",
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if gotQuery != "auto>en" {
		t.Fatalf("unexpected language query: %q", gotQuery)
	}
	if gotText != "Olá mundo. Tchau." {
		t.Fatalf("unexpected posted text: %q", gotText)
	}
	if resp.Text != "Hello world. Bye." {
		t.Fatalf("unexpected translated text: %q", resp.Text)
	}
	if resp.SourceLang != "pt" {
		t.Fatalf("unexpected detected source: %q", resp.SourceLang)
	}
	if resp.ProviderName != "google" {
		t.Fatalf("unexpected provider name: %q", resp.ProviderName)
	}
}

func TestGoogleProvider_UpstreamErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	provider := NewGoogleProvider(srv.URL, srv.Client())
	if _, err := provider.Translate(context.Background(), TranslateRequest{Text: "hi there", SourceLang: "en", TargetLang: "pt"}); err == nil {
		t.Fatalf("expected upstream error")
	}
}

func TestGoogleLangTag(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"zh_CN":   "zh-CN",
		"zh-Hant": "zh-TW",
		"pt-BR":   "pt",
		" EN ":    "en",
		"":        "",
	}
	for input, want := range cases {
		if got := googleLangTag(input); got != want {
			t.Fatalf("googleLangTag(%q) = %q, want %q", input, got, want)
		}
	}
}
