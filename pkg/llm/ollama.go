package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

// ollamaClient calls a local Ollama server's generate endpoint. No
// credential is used.
type ollamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *ollamaClient) Provider() string { return "ollama" }

func (c *ollamaClient) Complete(ctx context.Context, prompt, _ string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: completionTemperature},
	})
	if err != nil {
		return "", eris.Wrap(err, "ollama: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "ollama: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "ollama: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "ollama: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "ollama", StatusCode: resp.StatusCode, Body: truncateBody(respBody)}
	}

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "ollama: unmarshal response")
	}

	return result.Response, nil
}
