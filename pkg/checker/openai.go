package checker

import (
	"encoding/json"
	"strings"
)

// Chat completions wire format.

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	N         int           `json:"n,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func buildChatRequest(model string, maxTokens int, req Request) *chatRequest {
	return &chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: req.Content},
		},
		MaxTokens: maxTokens,
		N:         1,
	}
}

func toResponse(resp *chatResponse) (*Response, error) {
	if len(resp.Choices) == 0 {
		return nil, &RequestError{Kind: KindParse, Message: "no choices in response"}
	}
	choice := resp.Choices[0]
	return &Response{
		Text:         choice.Message.Content,
		Model:        resp.Model,
		FinishReason: normalizeFinishReason(choice.FinishReason),
		Usage: Usage{
			Input:  resp.Usage.PromptTokens,
			Output: resp.Usage.CompletionTokens,
		},
	}, nil
}

func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop", "end_turn":
		return "stop"
	case "length", "max_tokens":
		return "length"
	default:
		return reason
	}
}

const maxErrorMessage = 512

// errorMessage extracts the message of an OpenAI-style error body, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if r := []rune(msg); len(r) > maxErrorMessage {
		msg = string(r[:maxErrorMessage])
	}
	return msg
}
