package correction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf16"

	"golang.org/x/time/rate"

	"horse.fit/pdfdesk/internal/language"
	"horse.fit/pdfdesk/internal/textsplit"
)

const (
	// DefaultGrammarEndpoint is the LanguageTool public API.
	DefaultGrammarEndpoint = "https://api.languagetool.org/v2"
	// defaultGrammarChunkChars stays below the public API's per-request text limit.
	defaultGrammarChunkChars = 10000
)

// GrammarOptions configures the LanguageTool client.
type GrammarOptions struct {
	Endpoint   string
	HTTPClient *http.Client
	RateLimit  float64
	ChunkChars int
}

// GrammarChecker applies the first suggestion of every LanguageTool match.
type GrammarChecker struct {
	checkURL   string
	client     *http.Client
	limiter    *rate.Limiter
	chunkChars int
}

func NewGrammarChecker(opts GrammarOptions) *GrammarChecker {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultGrammarEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	chunkChars := opts.ChunkChars
	if chunkChars <= 0 {
		chunkChars = defaultGrammarChunkChars
	}
	return &GrammarChecker{
		checkURL:   endpoint + "/check",
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		chunkChars: chunkChars,
	}
}

func (g *GrammarChecker) Name() string {
	return "languagetool"
}

type grammarResponse struct {
	Matches []grammarMatch `json:"matches"`
}

type grammarMatch struct {
	Message      string `json:"message"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
}

// Correct checks text in lang ("auto" lets the checker decide) and applies
// the suggested replacements.
func (g *GrammarChecker) Correct(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	ltLang := checkerLanguage(lang)

	var b strings.Builder
	b.Grow(len(text))
	for _, chunk := range textsplit.Chunk(text, g.chunkChars) {
		lead, core, trail := textsplit.SplitPadding(chunk)
		if core == "" {
			b.WriteString(lead)
			continue
		}
		matches, err := g.check(ctx, core, ltLang)
		if err != nil {
			return "", err
		}
		b.WriteString(lead)
		b.WriteString(applyMatches(core, matches))
		b.WriteString(trail)
	}
	return b.String(), nil
}

func (g *GrammarChecker) check(ctx context.Context, text, lang string) ([]grammarMatch, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for grammar rate limit: %w", err)
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.checkURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build grammar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send grammar request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read grammar response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, fmt.Errorf("grammar endpoint status %d: %s", resp.StatusCode, snippet)
	}

	var parsed grammarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode grammar response: %w", err)
	}
	return parsed.Matches, nil
}

// applyMatches rewrites text back to front so earlier offsets stay valid.
// Offsets are UTF-16 code units, as reported by LanguageTool. Overlapping
// matches after the first applied one are ignored.
func applyMatches(text string, matches []grammarMatch) string {
	if len(matches) == 0 {
		return text
	}

	candidates := make([]grammarMatch, 0, len(matches))
	for _, m := range matches {
		if len(m.Replacements) == 0 || m.Offset < 0 || m.Length < 0 {
			continue
		}
		candidates = append(candidates, m)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Offset > candidates[j].Offset
	})

	units := utf16.Encode([]rune(text))
	limit := len(units)
	for _, m := range candidates {
		end := m.Offset + m.Length
		if end > limit {
			continue
		}
		replacement := utf16.Encode([]rune(m.Replacements[0].Value))
		next := make([]uint16, 0, len(units)-m.Length+len(replacement))
		next = append(next, units[:m.Offset]...)
		next = append(next, replacement...)
		next = append(next, units[end:]...)
		units = next
		limit = m.Offset
	}
	return string(utf16.Decode(units))
}

// checkerLanguage formats a tag the way LanguageTool expects ("en-US", "pt").
func checkerLanguage(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "auto") {
		return "auto"
	}
	tag := language.NormalizeTag(raw)
	if tag == "" {
		return "auto"
	}
	code := language.NormalizeCode(tag)
	if region := language.Region(tag); region != "" {
		return code + "-" + strings.ToUpper(region)
	}
	return code
}
