package discovery

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/feedscout/feedscout/app/httpclient"
	"github.com/feedscout/feedscout/app/urlutil"
)

const headLinkSelector = `head > link[type="application/rss+xml"], head > link[type="application/atom+xml"]`

// ByHTMLHeadElements finds the feed URLs a site advertises through <link>
// elements in its HTML head. This is the well-behaved announcement mechanism
// and ranks directly after the content type check.
type ByHTMLHeadElements struct{}

func NewByHTMLHeadElements() *ByHTMLHeadElements {
	return &ByHTMLHeadElements{}
}

func (d *ByHTMLHeadElements) Discover(client httpclient.Client, rc *ResponseContainer) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rc.Response.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	var urls []string
	doc.Find(headLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			urls = append(urls, urlutil.TransformUrl(rc.RequestURL, href))
		}
	})

	return urls, nil
}
