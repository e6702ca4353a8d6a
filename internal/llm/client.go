package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
	"github.com/mehdi-chebbi/k8s-chat/internal/kube"
	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

// Hard caps on model-suggested commands, applied regardless of what the
// model returns.
const (
	maxPrimaryCommands  = 3
	maxFollowUpCommands = 2
)

const defaultHistoryWindow = 10

// Provider is the diagnostic model surface the orchestrator consumes. No
// method returns an error: a failed backend call degrades to an empty
// suggestion list or a canned analysis instead of failing the turn.
type Provider interface {
	SuggestCommands(ctx context.Context, question string, history []chat.Turn) []string
	AnalyzeOutputs(ctx context.Context, question string, outputs *kube.OutputSet, history []chat.Turn) string
	SuggestFollowUps(ctx context.Context, question string, outputs *kube.OutputSet, history []chat.Turn) []string
	TestConnection(ctx context.Context) ConnectionStatus
}

// ConnectionStatus reports a provider connectivity probe.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client talks to one configured backend. Both provider kinds share this
// implementation; New picks the transport from the config.
type Client struct {
	api        chatCompleter
	cfg        Config
	timeouts   Timeouts
	window     int
	logger     *logging.Logger
	onFallback func(operation string)
}

var _ Provider = (*Client)(nil)

type Option func(*Client)

func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.timeouts = t }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHistoryWindow bounds how many prior turns are carried into prompts.
func WithHistoryWindow(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.window = n
		}
	}
}

// WithFallbackHook registers a callback fired whenever an operation degrades
// to its fallback path. Used for metrics.
func WithFallbackHook(fn func(operation string)) Option {
	return func(c *Client) { c.onFallback = fn }
}

func WithCompleter(api chatCompleter) Option {
	return func(c *Client) { c.api = api }
}

func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		timeouts: DefaultTimeouts(),
		window:   defaultHistoryWindow,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		c.api = newCompleter(cfg)
	}
	return c
}

// SuggestCommands asks the model for kubectl invocations relevant to the
// question. Returns at most 3; nil when the backend is unavailable.
func (c *Client) SuggestCommands(ctx context.Context, question string, history []chat.Turn) []string {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: suggestSystemPrompt},
	}
	msgs = append(msgs, c.historyMessages(history)...)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	content, err := c.complete(ctx, c.timeouts.Suggest, msgs, 400)
	if err != nil {
		c.degrade("suggest", err)
		return nil
	}
	return ExtractCommands(content, maxPrimaryCommands)
}

// SuggestFollowUps proposes deeper commands based on what the initial
// investigation found. Returns at most 2; nil on backend failure.
func (c *Client) SuggestFollowUps(ctx context.Context, question string, outputs *kube.OutputSet, history []chat.Turn) []string {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: followUpSystemPrompt},
	}
	msgs = append(msgs, c.historyMessages(history)...)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		Content: fmt.Sprintf("Original question: %s\n\nInitial investigation results:%s",
			question, formatOutputs(outputs)),
	})

	content, err := c.complete(ctx, c.timeouts.FollowUp, msgs, 300)
	if err != nil {
		c.degrade("follow_up", err)
		return nil
	}
	return ExtractCommands(content, maxFollowUpCommands)
}

// AnalyzeOutputs turns collected command results into an answer. On backend
// failure it returns a canned response matched to the question so the turn
// still completes.
func (c *Client) AnalyzeOutputs(ctx context.Context, question string, outputs *kube.OutputSet, history []chat.Turn) string {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: analyzeSystemPrompt},
	}
	msgs = append(msgs, c.historyMessages(history)...)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: analysisUserMessage(question, outputs),
	})

	content, err := c.complete(ctx, c.timeouts.Analyze, msgs, 1500)
	if err != nil {
		c.degrade("analyze", err)
		return fallbackAnalysis(question)
	}
	return content
}

// TestConnection sends a minimal completion and reports round-trip health.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{Provider: c.cfg.Provider, Model: c.cfg.Model}

	start := time.Now()
	_, err := c.complete(ctx, c.timeouts.Connect, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "test"},
	}, 10)
	status.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Connected = true
	return status
}

func (c *Client) complete(ctx context.Context, timeout time.Duration, msgs []openai.ChatCompletionMessage, maxTokens int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		Messages:  msgs,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: backend returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) degrade(operation string, err error) {
	c.logger.Warn("llm call failed, degrading",
		"operation", operation,
		"provider", c.cfg.Provider,
		"error", err)
	if c.onFallback != nil {
		c.onFallback(operation)
	}
}

// historyMessages maps the last turns of the conversation into completion
// messages, newest last. Bounded to keep prompts inside context limits.
func (c *Client) historyMessages(history []chat.Turn) []openai.ChatCompletionMessage {
	if len(history) > c.window {
		history = history[len(history)-c.window:]
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Message})
	}
	return msgs
}
