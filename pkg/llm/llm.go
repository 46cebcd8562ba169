// Package llm talks to an OpenAI-compatible chat completion API to
// generate concept graphs and node deep-dives. The default provider is
// Groq's OpenAI-compatible endpoint; any server speaking the same
// protocol works via Config.BaseURL.
package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/mindweave/mindweave/pkg/concept"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/httputil"
)

// Generator produces raw graphs and explanations from a model. The
// pipeline depends on this interface so tests can substitute a fake.
type Generator interface {
	// Generate asks the model for a concept graph on the given topic.
	// The result is unsanitized model output.
	Generate(ctx context.Context, prompt string) (concept.RawGraph, error)

	// Explain asks for a short technical deep-dive into nodeLabel as it
	// relates to topic. The result is markdown text.
	Explain(ctx context.Context, topic, nodeLabel string) (string, error)
}

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel balances structure-following with latency.
	DefaultModel = "openai/gpt-oss-120b"

	// temperature stays low so the model sticks to the tree contract.
	temperature = 0.2
)

const generateSystemPrompt = `You are an expert technical tutor creating a highly structured concept map. Your logic must be flawless.

CRITICAL TREE STRUCTURE RULES:
1. STRICT 1-TO-MANY HIERARCHY: You are building a perfect Tree. Root -> Categories -> Specific Examples.
2. ONE PARENT ONLY: A child node can ONLY belong to ONE parent category. NEVER connect a leaf node (like a specific city, tool, or command) to multiple categories. Pick the single most relevant category and put it there.
3. NO DEAD ENDS: Every category node MUST have at least two specific child nodes branching off it. If you cannot provide specific children for a category, DO NOT create that category.
4. HIGH-VALUE LABELS: Edge labels must be exactly 2 to 4 words explaining the relationship (e.g., "major port city", "compiles down to"). Do NOT use generic words like "includes" or "example of".
5. CONCRETE LEAVES: The lowest level of your tree must be tangible, real-world examples.
6. SIZE: Generate between 15 and 25 nodes total.

Return ONLY valid JSON in this exact format:
{
  "nodes": [{"id": "1", "label": "Topic", "summary": "1-sentence summary"}],
  "edges": [{"id": "e1-2", "source": "1", "target": "2", "label": "max 4 words"}]
}`

const explainSystemPrompt = `You are an expert technical tutor. A user is learning about %q.
They asked for a detailed, highly technical deep-dive into the specific sub-concept: %q.

Provide a clear, highly informative explanation.

RULES:
1. Keep it strictly under 3 short paragraphs.
2. Use bullet points for key technical facts.
3. BE CONCRETE. Give real-world examples, specific commands, or exact historical/technical facts. Do not be vague.
4. Format with standard bold/italic markdown. Do NOT use markdown code blocks.`

// Config holds provider settings. Zero values select the defaults
// above; APIKey is required.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client is the production Generator backed by go-openai.
type Client struct {
	api    *openai.Client
	model  string
	cache  *httputil.Cache
	logger *log.Logger
}

// NewClient builds a Client from cfg. cache may be nil to disable
// response caching.
func NewClient(cfg Config, cache *httputil.Cache, logger *log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "model API key is not configured")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = cfg.BaseURL
	if conf.BaseURL == "" {
		conf.BaseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:    openai.NewClientWithConfig(conf),
		model:  model,
		cache:  cache,
		logger: logger,
	}, nil
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (concept.RawGraph, error) {
	var raw concept.RawGraph
	if c.cached(ctx, "generate:", prompt, &raw) {
		return raw, nil
	}

	c.logger.Debug("generating concept map", "model", c.model, "prompt", prompt)
	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generateSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Topic: " + prompt},
		},
	})
	if err != nil {
		return raw, err
	}

	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return raw, errors.Wrap(errors.ErrCodeInternal, err, "model returned malformed graph JSON")
	}
	c.store(ctx, "generate:", prompt, raw)
	return raw, nil
}

// Explain implements Generator.
func (c *Client) Explain(ctx context.Context, topic, nodeLabel string) (string, error) {
	key := topic + "\x00" + nodeLabel
	var text string
	if c.cached(ctx, "explain:", key, &text) {
		return text, nil
	}

	c.logger.Debug("generating explanation", "topic", topic, "node", nodeLabel)
	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(explainSystemPrompt, topic, nodeLabel)},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Explain %s in the context of %s", nodeLabel, topic)},
		},
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	c.store(ctx, "explain:", key, text)
	return text, nil
}

// complete runs one chat completion, retrying transient provider
// failures with backoff.
func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var content string
	err := httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return errors.New(errors.ErrCodeInternal, "model returned no content")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	return content, err
}

// classify maps provider errors onto the module's error codes and tags
// retryable ones for the backoff loop.
func classify(err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return errors.Wrap(errors.ErrCodeUnauthorized, err, "model API rejected the configured key")
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500:
			return &httputil.RetryableError{
				Err: errors.Wrap(errors.ErrCodeNetwork, err, "model API unavailable"),
			}
		default:
			return errors.Wrap(errors.ErrCodeInternal, err, "model API request failed")
		}
	}
	return &httputil.RetryableError{
		Err: errors.Wrap(errors.ErrCodeNetwork, err, "connect to model API"),
	}
}

func (c *Client) cached(_ context.Context, namespace, key string, v any) bool {
	if c.cache == nil {
		return false
	}
	ok, err := c.cache.Namespace(namespace).Get(key, v)
	if err != nil && !stderrors.Is(err, httputil.ErrExpired) {
		c.logger.Debug("cache read failed", "error", err)
	}
	return ok
}

func (c *Client) store(_ context.Context, namespace, key string, v any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Namespace(namespace).Set(key, v); err != nil {
		c.logger.Debug("cache write failed", "error", err)
	}
}

// DefaultCache returns the standard response cache: one day TTL in the
// user cache directory.
func DefaultCache() (*httputil.Cache, error) {
	return httputil.NewCache("", 24*time.Hour)
}
