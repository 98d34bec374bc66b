// Package discovery contains the feed URL discovery strategies. Strategies
// are run in a fixed priority order by the crawler; the first one returning a
// non-empty result wins.
package discovery

import (
	"github.com/feedscout/feedscout/app/httpclient"
)

// ResponseContainer bundles the originally requested URL with its fetched
// response. It is constructed once per discovery run and shared by every
// strategy, so no strategy ever refetches the entry page.
type ResponseContainer struct {
	RequestURL string
	Response   *httpclient.Response
}

func NewResponseContainer(requestURL string, response *httpclient.Response) *ResponseContainer {
	return &ResponseContainer{
		RequestURL: requestURL,
		Response:   response,
	}
}

// Discoverer is one technique for locating feed URLs from a website's
// response. Implementations return resolved absolute URLs; an empty result
// means "nothing found here, try the next strategy". Errors are treated by
// the chain as empty results.
type Discoverer interface {
	Discover(client httpclient.Client, rc *ResponseContainer) ([]string, error)
}

// feedMIMETypes are the Content-Type prefixes recognized as feed formats.
var feedMIMETypes = []string{
	"application/rss+xml",
	"application/atom+xml",
}
