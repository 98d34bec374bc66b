package discovery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/feedscout/feedscout/app/httpclient"
	"github.com/feedscout/feedscout/app/urlutil"
)

// ByHTMLAnchorElements scans every anchor on the page and keeps the hrefs
// whose resolved URL contains the literal substring "rss". A crude heuristic,
// but it catches the visible "RSS" footer links of sites that do not
// advertise feeds in their head.
type ByHTMLAnchorElements struct{}

func NewByHTMLAnchorElements() *ByHTMLAnchorElements {
	return &ByHTMLAnchorElements{}
}

func (d *ByHTMLAnchorElements) Discover(client httpclient.Client, rc *ResponseContainer) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rc.Response.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	var urls []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		resolved := urlutil.TransformUrl(rc.RequestURL, href)
		if strings.Contains(resolved, "rss") {
			urls = append(urls, resolved)
		}
	})

	return urls, nil
}
