package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"horse.fit/pdfdesk/internal/language"
)

// DefaultGoogleEndpoint is the public web translation endpoint.
const DefaultGoogleEndpoint = "https://translate.googleapis.com"

// GoogleProvider calls the keyless translate_a/single endpoint used by the
// Google Translate web clients.
type GoogleProvider struct {
	endpointURL string
	client      *http.Client
}

func NewGoogleProvider(endpoint string, client *http.Client) *GoogleProvider {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if base == "" {
		base = DefaultGoogleEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &GoogleProvider{
		endpointURL: base + "/translate_a/single",
		client:      client,
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) SupportedLanguages() []string {
	return SupportedTranslationLanguageCodes()
}

func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("google provider is nil")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}

	targetLang := googleLangTag(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}
	sourceLang := googleLangTag(req.SourceLang)
	if sourceLang == "" || sourceLang == "und" {
		sourceLang = "auto"
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", sourceLang)
	query.Set("tl", targetLang)
	query.Set("dt", "t")
	form := url.Values{}
	form.Set("q", req.Text)

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.endpointURL+"?"+query.Encode(),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("translation endpoint status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	translated, detected, err := parseGoogleResponse(respBody)
	if err != nil {
		return nil, err
	}
	if sourceLang != "auto" || detected == "" {
		detected = sourceLang
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   normalizeLangCode(detected),
		TargetLang:   normalizeLangCode(targetLang),
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

// parseGoogleResponse reads the nested array payload:
// [[["translated","original",...],...],null,"detected-lang",...]
func parseGoogleResponse(body []byte) (string, string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", fmt.Errorf("decode translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", "", fmt.Errorf("translation response was empty")
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", "", fmt.Errorf("decode translation segments: %w", err)
	}

	var b strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if text, ok := segment[0].(string); ok {
			b.WriteString(text)
		}
	}
	if b.Len() == 0 {
		return "", "", fmt.Errorf("translation response missing segments")
	}

	detected := ""
	if len(payload) > 2 {
		_ = json.Unmarshal(payload[2], &detected)
	}
	return b.String(), detected, nil
}

// googleLangTag keeps the region for the Chinese scripts Google distinguishes
// and reduces everything else to the primary subtag.
func googleLangTag(raw string) string {
	tag := language.NormalizeTag(raw)
	switch tag {
	case "zh-cn", "zh-sg", "zh-hans":
		return "zh-CN"
	case "zh-tw", "zh-hk", "zh-hant":
		return "zh-TW"
	}
	return language.NormalizeCode(tag)
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
