package crawler

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/feedscout/feedscout/app/retry"
	"github.com/feedscout/feedscout/app/urlutil"
)

const faviconLinkSelector = `head link[rel*="icon"]`

// DiscoverFavicon locates the site's favicon: every icon link in the HTML
// head is resolved and probed, and the first candidate that responds wins.
// An empty string means no candidate responded; probe failures are never
// surfaced as errors.
func (c *Crawler) DiscoverFavicon(url string) (string, error) {
	target := urlutil.ReplaceBaseUrls(url, c.urlReplacement)

	var candidates []string
	err := retry.Do(func() error {
		resp, err := c.httpClient.Get(target)
		if err != nil {
			return err
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			return err
		}

		candidates = candidates[:0]
		doc.Find(faviconLinkSelector).Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok && href != "" {
				candidates = append(candidates, urlutil.TransformUrl(target, href))
			}
		})

		return nil
	}, c.retryDelay, c.retryCount)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", target, err)
	}

	for _, candidate := range candidates {
		resp, err := c.httpClient.Get(candidate)
		if err != nil {
			c.logger.Debug("Favicon probe failed", "url", candidate, "error", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return candidate, nil
		}
	}

	return "", nil
}
