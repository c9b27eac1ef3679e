package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

const (
	groqBaseURL    = "https://api.groq.com/openai/v1"
	mistralBaseURL = "https://api.mistral.ai/v1"
)

// chatClient speaks the OpenAI chat-completions dialect shared by Groq,
// Mistral, LM Studio and friends.
type chatClient struct {
	provider string
	baseURL  string
	model    string
	http     *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *chatClient) Provider() string { return c.provider }

func (c *chatClient) Complete(ctx context.Context, prompt, credential string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", eris.Wrapf(err, "%s: marshal request", c.provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrapf(err, "%s: create request", c.provider)
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "%s: send request", c.provider)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrapf(err, "%s: read response", c.provider)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: c.provider, StatusCode: resp.StatusCode, Body: truncateBody(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrapf(err, "%s: unmarshal response", c.provider)
	}
	if len(result.Choices) == 0 {
		return "", eris.Errorf("%s: empty response", c.provider)
	}

	return result.Choices[0].Message.Content, nil
}
