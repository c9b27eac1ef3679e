// Package pipeline drives one card at a time through fetch, assembly,
// extraction and checkpointed persistence.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cardninja/cardsync/internal/fetch"
)

const (
	// subPageTextLimit caps each sub-page's contribution to the assembled
	// content.
	subPageTextLimit = 1500
	// totalContentLimit caps the combined document handed to the completion
	// service.
	totalContentLimit = 6000
	// subLinkInterval spaces sub-link requests to go easy on issuer servers.
	subLinkInterval = 500 * time.Millisecond
)

// Assembler combines main-page text with sub-page contributions under the
// per-source and global size caps.
type Assembler struct {
	fetcher *fetch.Fetcher
	limiter *rate.Limiter
}

// NewAssembler creates an Assembler over the given fetcher.
func NewAssembler(fetcher *fetch.Fetcher) *Assembler {
	return &Assembler{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Every(subLinkInterval), 1),
	}
}

// Assemble fetches each relevant link sequentially and appends its labeled,
// truncated text to the main content. A failed sub-link is skipped, never
// fatal. The combined result is clamped to the global cap.
func (a *Assembler) Assemble(ctx context.Context, mainContent string, links []fetch.Link) string {
	if len(links) == 0 {
		return clamp(mainContent, totalContentLimit)
	}

	var parts []string
	for _, link := range links {
		if err := a.limiter.Wait(ctx); err != nil {
			break
		}

		text, _ := a.fetcher.Fetch(ctx, link.URL, false)
		if text == "" {
			zap.L().Warn("assemble: sub-link fetch failed, skipping",
				zap.String("url", link.URL),
			)
			continue
		}

		parts = append(parts, fmt.Sprintf("\n--- %s ---\n%s", link.Label, clamp(text, subPageTextLimit)))
	}

	if len(parts) == 0 {
		return clamp(mainContent, totalContentLimit)
	}

	combined := mainContent + "\n\n=== ADDITIONAL DETAILS FROM SUB-PAGES ===\n" + strings.Join(parts, "\n")
	return clamp(combined, totalContentLimit)
}

func clamp(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
