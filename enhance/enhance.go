// Package enhance augments bullet-point content through the Gemini
// generateContent API. The call is strictly best-effort: any failure returns
// the original content unchanged so note creation never depends on the
// external service being up.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// Kind selects the prompt template. Unknown values fall back to KindExplain.
type Kind string

const (
	KindExplain Kind = "explain"
	KindExample Kind = "example"
	KindCode    Kind = "code"
)

var prompts = map[Kind]string{
	KindExplain: "Explain this in 1-2 simple sentences only: %s",
	KindExample: "Give just 1 short example to understand this better: %s",
	KindCode:    "Give only a very short code snippet (if possible) for this, and explain it in 1 sentence max: %s",
}

// Enhancer calls the Gemini API. A zero APIKey disables enhancement entirely.
type Enhancer struct {
	APIKey string
	Model  string

	// Endpoint overrides the Gemini URL, mainly for tests. It must contain
	// one %s verb for the model name.
	Endpoint   string
	HTTPClient *http.Client

	// Timeout bounds the external call so bullet-point creation is never
	// blocked indefinitely. A timeout counts as a soft failure.
	Timeout time.Duration
}

func New(apiKey, model string) *Enhancer {
	return &Enhancer{
		APIKey:     apiKey,
		Model:      model,
		Endpoint:   defaultEndpoint,
		HTTPClient: &http.Client{},
		Timeout:    10 * time.Second,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Enhance returns the content folded together with the generated elaboration,
// or the content unchanged when the external call fails for any reason.
func (e *Enhancer) Enhance(ctx context.Context, text string, kind Kind) string {
	if e == nil || e.APIKey == "" {
		return text
	}

	generated, err := e.generate(ctx, text, kind)
	if err != nil {
		log.Printf("enhance: %v", err)
		return text
	}

	if kind == KindCode {
		generated = formatCodeBlocks(generated)
	}
	return fmt.Sprintf("**%s**\n\n%s", text, generated)
}

func (e *Enhancer) generate(ctx context.Context, text string, kind Kind) (string, error) {
	template, ok := prompts[kind]
	if !ok {
		template = prompts[KindExplain]
	}
	prompt := fmt.Sprintf(template, text)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf(e.Endpoint, e.Model) + "?key=" + e.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}

	generated := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if generated == "" {
		return "", fmt.Errorf("empty response")
	}
	return generated, nil
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`import\s+[\w.]+`),
	regexp.MustCompile(`from\s+[\w.]+\s+import\s+`),
	regexp.MustCompile(`def\s+\w+\s*\([^)]*\)\s*:`),
	regexp.MustCompile(`class\s+\w+\s*(\([^)]*\))?\s*:`),
	regexp.MustCompile(`func\s+\w+\s*\(`),
	regexp.MustCompile(`\w+\s*:?=\s*\S+`),
}

// formatCodeBlocks wraps a bare snippet in a fence so clients render it as
// code. Text that already carries fences passes through untouched.
func formatCodeBlocks(text string) string {
	if strings.Contains(text, "```") {
		return text
	}
	for _, pattern := range codePatterns {
		if pattern.MatchString(text) {
			return fmt.Sprintf("```\n%s\n```", text)
		}
	}
	return text
}
