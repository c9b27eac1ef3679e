// Package extract turns assembled page content into a structured card
// record via a completion provider, rotating through a credential pool on
// transient failures.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cardninja/cardsync/internal/model"
	"github.com/cardninja/cardsync/pkg/llm"
)

// ErrNoCredentials means a cloud provider was selected with an empty pool.
// Checked before any network call.
var ErrNoCredentials = errors.New("extract: no credentials configured")

// ErrMalformedReply means a reply was received but its payload did not
// parse. Not retried with another credential: the model answered, the answer
// is just unusable.
var ErrMalformedReply = errors.New("extract: malformed reply")

// ErrPoolExhausted means every credential in the pool failed.
var ErrPoolExhausted = errors.New("extract: credential pool exhausted")

// Client runs one extraction attempt per credential until one succeeds.
type Client struct {
	completer llm.Completer
	pool      []string
	now       func() time.Time
}

// NewClient creates an extraction client over the given completer and
// ordered credential pool.
func NewClient(completer llm.Completer, pool []string) *Client {
	return &Client{completer: completer, pool: pool, now: time.Now}
}

// Extract sends the assembled content to the completion provider and parses
// the structured reply. Rate limits, service outages and timeouts advance to
// the next credential; a malformed payload aborts immediately.
func (c *Client) Extract(ctx context.Context, content, cardName, issuer string) (*model.ExtractionResult, error) {
	if content == "" {
		return nil, eris.New("extract: empty content")
	}
	if llm.IsCloudProvider(c.completer.Provider()) && len(c.pool) == 0 {
		return nil, ErrNoCredentials
	}

	pool := c.pool
	if len(pool) == 0 {
		// Local provider: run the loop once with an empty credential.
		pool = []string{""}
	}

	prompt := BuildPrompt(content, cardName, issuer, c.now())

	for i, credential := range pool {
		keyLog := zap.String("key", keyLabel(i, len(pool)))

		reply, err := c.completer.Complete(ctx, prompt, credential)
		if err != nil {
			switch {
			case llm.IsRateLimited(err):
				zap.L().Warn("extract: rate limited, rotating credential", keyLog)
			case llm.IsUnavailable(err):
				zap.L().Warn("extract: service unavailable, rotating credential", keyLog)
			case llm.IsNotFound(err):
				// Usually a misconfigured model or endpoint; keep the body
				// for diagnosis but rotate anyway.
				ae, _ := llm.AsAPIError(err)
				zap.L().Warn("extract: endpoint or model not found",
					keyLog,
					zap.String("response", ae.Body),
				)
			case llm.IsTimeout(err):
				zap.L().Warn("extract: completion timed out, rotating credential", keyLog)
			default:
				zap.L().Warn("extract: completion failed, rotating credential", keyLog, zap.Error(err))
			}
			continue
		}

		result, perr := ParseReply(reply)
		if perr != nil {
			zap.L().Warn("extract: reply is not valid JSON", keyLog, zap.Error(perr))
			return nil, ErrMalformedReply
		}
		return result, nil
	}

	if len(pool) > 1 {
		zap.L().Error("extract: all credentials exhausted", zap.Int("pool_size", len(pool)))
	} else {
		zap.L().Error("extract: extraction failed")
	}
	return nil, ErrPoolExhausted
}

func keyLabel(i, n int) string {
	if n <= 1 {
		return "API"
	}
	return fmt.Sprintf("key %d/%d", i+1, n)
}

// ParseReply cleans and parses a model reply into an ExtractionResult with
// defaults applied.
func ParseReply(reply string) (*model.ExtractionResult, error) {
	cleaned := cleanReply(reply)

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, eris.Wrap(err, "extract: parse reply")
	}

	result.Normalize()
	return &result, nil
}

// cleanReply tolerates commentary around the payload: markdown fences are
// stripped, then the reply is sliced from the first '{' to the last '}'.
func cleanReply(reply string) string {
	s := strings.TrimSpace(reply)

	if strings.HasPrefix(s, "```") {
		parts := strings.Split(s, "```")
		if len(parts) > 1 {
			s = strings.TrimPrefix(parts[1], "json")
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}

	return strings.TrimSpace(s)
}
