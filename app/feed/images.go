package feed

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/feedscout/feedscout/app/httpclient"
	"github.com/feedscout/feedscout/app/urlutil"
)

// maxImageURLs caps how many embedded images are extracted per item. Feed
// content rarely carries more than a hero image plus tracking pixels, so
// anything beyond the first few is noise.
const maxImageURLs = 3

const DefaultProbeFanOut = 4

var imgSrcRe = regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*["']([^"']+)["']`)

// ExtractImageUrls scans decoded item content for <img> src attributes,
// resolves them against the item's permalink host and returns the first
// maxImageURLs distinct URLs in document order. This is a plain attribute
// scan, not an HTML parse; feed content is frequently not well-formed enough
// for the latter.
func ExtractImageUrls(permalink, content string) []string {
	matches := imgSrcRe.FindAllStringSubmatch(content, -1)

	var urls []string
	seen := make(map[string]struct{})

	for _, match := range matches {
		if len(urls) == maxImageURLs {
			break
		}

		src := strings.TrimSpace(match[1])
		if src == "" {
			continue
		}

		resolved := urlutil.TransformUrl(permalink, src)
		if _, ok := seen[resolved]; ok {
			continue
		}

		seen[resolved] = struct{}{}
		urls = append(urls, resolved)
	}

	return urls
}

// FilterImageUrls probes every candidate concurrently with a bounded fan-out
// and keeps, in input order, those that respond with a non-GIF image content
// type. GIFs are excluded because in feed content they are overwhelmingly
// tracking pixels. A candidate that errors or times out is dropped, never
// surfaced as a failure.
func FilterImageUrls(client httpclient.Client, urls []string, fanOut int) []string {
	if len(urls) == 0 {
		return nil
	}
	if fanOut <= 0 {
		fanOut = DefaultProbeFanOut
	}

	keep := make([]bool, len(urls))
	sem := make(chan struct{}, fanOut)

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			resp, err := client.Get(url)
			if err != nil {
				slog.Debug("Image probe failed", "url", url, "error", err)
				return
			}

			if strings.HasPrefix(resp.ContentType(), "image/gif") {
				return
			}

			keep[i] = true
		}(i, url)
	}
	wg.Wait()

	var filtered []string
	for i, url := range urls {
		if keep[i] {
			filtered = append(filtered, url)
		}
	}

	return filtered
}
