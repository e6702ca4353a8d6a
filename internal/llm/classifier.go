package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mehdi-chebbi/k8s-chat/internal/classify"
)

// SuggestClassification asks the model to size the investigation for a
// question. Satisfies classify.Advisor; errors here are expected and handled
// by the hybrid classifier's heuristic fallback.
func (c *Client) SuggestClassification(ctx context.Context, message string, history []classify.Message) (classify.Classification, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
	}
	start := 0
	if len(history) > c.window {
		start = len(history) - c.window
	}
	for _, m := range history[start:] {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	content, err := c.complete(ctx, c.timeouts.Suggest, msgs, 200)
	if err != nil {
		return classify.Classification{}, err
	}
	return parseClassification(content)
}

var _ classify.Advisor = (*Client)(nil)

func parseClassification(content string) (classify.Classification, error) {
	// Models like to wrap JSON in fences or prose.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return classify.Classification{}, fmt.Errorf("llm: no JSON object in classification response")
	}
	var c classify.Classification
	if err := json.Unmarshal([]byte(content[start:end+1]), &c); err != nil {
		return classify.Classification{}, fmt.Errorf("llm: decode classification: %w", err)
	}
	return c, nil
}
