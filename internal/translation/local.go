package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultLocalEndpoint is an OpenAI-compatible server on the same host.
	DefaultLocalEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultLocalModel is the HY-MT checkpoint the prompts below are written for.
	DefaultLocalModel = "tencent/HY-MT1.5-7B"

	localTemperature = 0.7
	localTopP        = 0.6
	maxLocalReply    = 8 << 20
)

// LocalProvider sends each chunk as a single-turn chat completion.
type LocalProvider struct {
	chatURL string
	model   string
	client  *http.Client
}

// NewLocalProvider builds a local provider. A nil client gets a dedicated
// one with a generous timeout since page-sized chunks are slow on CPU.
func NewLocalProvider(endpoint, model string, client *http.Client) *LocalProvider {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultLocalModel
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &LocalProvider{
		chatURL: resolveChatURL(endpoint),
		model:   model,
		client:  client,
	}
}

func (p *LocalProvider) Name() string { return "local" }

// ModelName returns the configured model identifier.
func (p *LocalProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *LocalProvider) SupportedLanguages() []string {
	return SupportedTranslationLanguageCodes()
}

func (p *LocalProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, errors.New("local provider is nil")
	}
	chunk := strings.TrimSpace(req.Text)
	if chunk == "" {
		return nil, errors.New("text is required")
	}
	target := normalizeLangCode(req.TargetLang)
	if target == "" {
		return nil, errors.New("target language is required")
	}
	source := normalizeLangCode(req.SourceLang)

	started := time.Now()
	reply, err := p.complete(ctx, chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: localPrompt(chunk, source, target)}},
		Temperature: localTemperature,
		TopP:        localTopP,
	})
	if err != nil {
		return nil, err
	}

	if source == "und" {
		source = ""
	}
	return &TranslateResponse{
		Text:         reply,
		SourceLang:   source,
		TargetLang:   target,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

// complete posts one chat request and returns the first choice, trimmed.
func (p *LocalProvider) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.chatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call local model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLocalReply))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var reply chatReply
	decodeErr := json.Unmarshal(raw, &reply)
	if resp.StatusCode/100 != 2 {
		if decodeErr == nil && reply.Error != nil && strings.TrimSpace(reply.Error.Message) != "" {
			return "", fmt.Errorf("local model status %d: %s", resp.StatusCode, strings.TrimSpace(reply.Error.Message))
		}
		return "", fmt.Errorf("local model status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(raw)), 200))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}

	for _, choice := range reply.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", errors.New("local model returned no text")
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReply struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// resolveChatURL turns host, host/v1 or a full completions URL into the
// completions URL. Unparseable input falls back to the default endpoint.
func resolveChatURL(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		endpoint = DefaultLocalEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		parsed, _ = url.Parse(DefaultLocalEndpoint)
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
	case strings.HasSuffix(path, "/v1"):
		path += "/chat/completions"
	default:
		path += "/v1/chat/completions"
	}
	parsed.Path = path
	return parsed.String()
}

// localPrompt follows the HY-MT prompt templates. Chinese on either side
// uses the zh template; document chunks keep their line breaks.
func localPrompt(text, source, target string) string {
	targetLabel := labelFor(target)
	if source == "zh" || target == "zh" {
		return fmt.Sprintf("将以下文本翻译为%s，注意只需要输出翻译后的结果，不要额外解释：\n\n%s", targetLabel.chinese, text)
	}
	if sourceLabel, ok := translationLanguageLabels[source]; ok {
		return fmt.Sprintf("Translate the following segment from %s into %s, keeping the line breaks, without additional explanation.\n\n%s",
			sourceLabel.english, targetLabel.english, text)
	}
	return fmt.Sprintf("Translate the following segment into %s, keeping the line breaks, without additional explanation.\n\n%s",
		targetLabel.english, text)
}

func labelFor(code string) languageLabel {
	if label, ok := translationLanguageLabels[code]; ok {
		return label
	}
	name := strings.TrimSpace(code)
	if name == "" {
		name = "English"
	}
	return languageLabel{english: name, native: name, chinese: name}
}
