package correction

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultModelEndpoint points to a local OpenAI-compatible inference server.
	DefaultModelEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultModel is the text2text model the service was built around.
	DefaultModel = "t5-small"
)

const correctionInstruction = "Correct the spelling and grammar of the user's text. " +
	"Reply with the corrected text only, in the same language, keeping the line breaks."

// ModelOptions configures the generative corrector.
type ModelOptions struct {
	Endpoint   string
	Model      string
	APIKey     string
	HTTPClient *http.Client
	MaxRetries int
}

// ModelCorrector rewrites text through a pretrained generative model served
// behind an OpenAI-compatible chat completions API.
type ModelCorrector struct {
	client *openai.Client
	model  string
}

func NewModelCorrector(opts ModelOptions) *ModelCorrector {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultModelEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		// Local servers ignore the key but the client always sends one.
		apiKey = "unused"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	requestOpts := []option.RequestOption{
		option.WithBaseURL(endpoint),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(opts.MaxRetries),
	}
	client := openai.NewClient(requestOpts...)

	return &ModelCorrector{
		client: &client,
		model:  model,
	}
}

func (c *ModelCorrector) Name() string {
	return "model"
}

// ModelName returns the configured model identifier.
func (c *ModelCorrector) ModelName() string {
	return c.model
}

// Correct asks the model for a single completion and returns its first choice.
func (c *ModelCorrector) Correct(ctx context.Context, text, _ string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(correctionInstruction),
			openai.UserMessage(text),
		},
		N:           openai.Int(1),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("correction model request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("correction model returned no choices")
	}

	corrected := strings.TrimSpace(resp.Choices[0].Message.Content)
	if corrected == "" {
		return "", fmt.Errorf("correction model returned empty text")
	}
	return corrected, nil
}
