// Package fetch retrieves issuer card pages and picks out the handful of
// internal links worth a deeper look.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxPageText caps how much visible text one page contributes.
const maxPageText = 4000

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 512 * 1024

// nonContentSelectors lists elements stripped before extracting page text.
const nonContentSelectors = "script, style, nav, footer, header"

// Fetcher retrieves a page's visible text and, optionally, its relevant
// internal links. Fetch failures are soft: the caller gets empty content,
// never an error.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher with the given timeout and user agent.
// Redirects are followed (default http.Client policy).
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Fetch GETs the URL and returns its stripped visible text, truncated to
// 4000 characters. With extractLinks set, relevant internal links are
// collected from the original markup before stripping. Transport failures
// and non-success statuses return ("", nil).
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, extractLinks bool) (string, []Link) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		zap.L().Warn("fetch: page unavailable",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		zap.L().Warn("fetch: parse html", zap.String("url", pageURL), zap.Error(err))
		return "", nil
	}

	var links []Link
	if extractLinks {
		links = RelevantLinks(doc, pageURL)
	}

	doc.Find(nonContentSelectors).Remove()
	text := collapseWhitespace(doc.Find("body").Text())
	if text == "" {
		text = collapseWhitespace(doc.Text())
	}
	if len(text) > maxPageText {
		text = text[:maxPageText]
	}

	return text, links
}

func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	return body, nil
}

var spaceRe = regexp.MustCompile(`\s+`)

// collapseWhitespace flattens runs of whitespace to single spaces so the
// extracted text reads like the rendered page.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
