package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shanehull/digmap/internal/types"
)

// ChatCompletions talks to an OpenAI-compatible /chat/completions endpoint such
// as OpenRouter.
type ChatCompletions struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *ChatCompletions) Complete(ctx context.Context, req Request) (string, error) {
	const source = "chat-completions"

	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages, Temperature: req.Temperature})
	if err != nil {
		return "", types.NewUnavailable(source, types.ReasonMalformed, fmt.Errorf("encode request: %w", err))
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", types.NewUnavailable(source, types.ReasonMalformed, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	hc := c.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(httpReq)
	if err != nil {
		return "", types.NewUnavailable(source, types.ReasonNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", types.NewUnavailable(source, types.ReasonStatus, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", types.NewUnavailable(source, types.ReasonMalformed, fmt.Errorf("decode response: %w", err))
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil || out.Choices[0].Message.Content == nil {
		return "", types.NewUnavailable(source, types.ReasonMalformed, errors.New("response has no choices[0].message.content"))
	}
	return *out.Choices[0].Message.Content, nil
}
