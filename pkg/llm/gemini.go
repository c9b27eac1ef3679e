package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Extraction wants deterministic output; all providers use the same low
// temperature and output cap.
const (
	completionTemperature = 0.1
	completionMaxTokens   = 2048
)

// geminiClient calls the Gemini generateContent endpoint. The credential is
// passed as a query parameter, per the API.
type geminiClient struct {
	model   string
	baseURL string // test override
	http    *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig geminiGenSettings `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenSettings struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) Provider() string { return "gemini" }

func (c *geminiClient) Complete(ctx context.Context, prompt, credential string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenSettings{
			Temperature:     completionTemperature,
			MaxOutputTokens: completionMaxTokens,
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "gemini: marshal request")
	}

	base := c.baseURL
	if base == "" {
		base = geminiBaseURL
	}
	url := base + "/models/" + c.model + ":generateContent?key=" + credential

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "gemini: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "gemini: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "gemini: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "gemini", StatusCode: resp.StatusCode, Body: truncateBody(respBody)}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "gemini: unmarshal response")
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", eris.New("gemini: empty response")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
