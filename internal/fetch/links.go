package fetch

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxRelevantLinks caps how many sub-links are followed per card page.
const maxRelevantLinks = 3

// maxLabelLen truncates anchor text used as a content label.
const maxLabelLen = 50

// relevantKeywords mark anchors pointing at reward, benefit or terms
// content.
var relevantKeywords = []string{
	"benefit", "reward", "earn", "point", "cashback", "cash-back",
	"rate", "category", "bonus", "offer", "feature", "detail",
	"fee", "apr", "term", "condition", "faq", "exclusion",
}

// Link is a relevant internal link: absolute URL plus the anchor text it was
// found under.
type Link struct {
	URL   string
	Label string
}

// RelevantLinks walks the document's anchors in order and keeps same-host
// links whose text or resolved URL mentions a relevant keyword. Fragment,
// javascript and mailto hrefs are skipped, duplicates are dropped, and the
// first 3 qualifying links win.
func RelevantLinks(doc *goquery.Document, baseURL string) []Link {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []Link
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return true
		}

		absolute := resolved.String()
		if seen[absolute] {
			return true
		}
		seen[absolute] = true

		text := strings.TrimSpace(sel.Text())
		if !mentionsKeyword(strings.ToLower(text), strings.ToLower(absolute)) {
			return true
		}

		label := text
		if len(label) > maxLabelLen {
			label = label[:maxLabelLen]
		}
		links = append(links, Link{URL: absolute, Label: label})

		return len(links) < maxRelevantLinks
	})

	return links
}

func mentionsKeyword(text, absURL string) bool {
	for _, kw := range relevantKeywords {
		if strings.Contains(text, kw) || strings.Contains(absURL, kw) {
			return true
		}
	}
	return false
}
