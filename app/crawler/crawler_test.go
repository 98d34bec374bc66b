package crawler

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/feedscout/feedscout/app/discovery"
	"github.com/feedscout/feedscout/app/httpclient"
	"github.com/feedscout/feedscout/app/urlutil"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Feed</title>
  <link>https://example.com</link>
  <description>An example feed</description>
  <item>
    <title>First post</title>
    <link>https://example.com/posts/1</link>
    <guid>https://example.com/posts/1</guid>
    <pubDate>Sun, 22 Dec 2019 18:28:44 GMT</pubDate>
  </item>
</channel>
</rss>`

type fakeClient struct {
	mu        sync.Mutex
	responses map[string]*httpclient.Response
	failures  map[string]int
	requests  []string
}

func (c *fakeClient) Get(url string) (*httpclient.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, url)
	if c.failures[url] > 0 {
		c.failures[url]--
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", httpclient.ErrConnection, url)
	}
	c.mu.Unlock()

	if resp, ok := c.responses[url]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("%w: %s", httpclient.ErrConnection, url)
}

func (c *fakeClient) requestCount(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, r := range c.requests {
		if r == url {
			count++
		}
	}
	return count
}

func htmlResponse(body string) *httpclient.Response {
	return &httpclient.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       []byte(body),
	}
}

func rssResponse(body string) *httpclient.Response {
	return &httpclient.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/rss+xml; charset=utf-8"}},
		Body:       []byte(body),
	}
}

func TestDiscoverFeedUrlsDirectFeed(t *testing.T) {
	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com/feed": rssResponse(sampleRSS),
	}}

	urls, err := New(client).DiscoverFeedUrls("https://example.com/feed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/feed" {
		t.Errorf("expected the feed url itself, got %v", urls)
	}
}

func TestDiscoverFeedUrlsFirstStrategyWins(t *testing.T) {
	// The head link must win even though anchors also point at feeds.
	body := `<html><head>
		<link rel="alternate" type="application/rss+xml" href="/feed">
	</head><body>
		<a href="/other/rss.xml">RSS</a>
	</body></html>`

	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse(body),
	}}

	urls, err := New(client).DiscoverFeedUrls("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 1 {
		t.Fatalf("expected 1 url, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://example.com/feed" {
		t.Errorf("expected head link to win, got %q", urls[0])
	}
}

func TestDiscoverFeedUrlsAnchorFallback(t *testing.T) {
	body := `<html><head></head><body>
		<a href="/rss.xml">RSS</a>
	</body></html>`

	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse(body),
	}}

	urls, err := New(client).DiscoverFeedUrls("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/rss.xml" {
		t.Errorf("expected anchor fallback, got %v", urls)
	}
}

func TestDiscoverFeedUrlsNormalizesAndDeduplicates(t *testing.T) {
	// Both hrefs resolve to the same feed after normalization.
	body := `<html><head>
		<link rel="alternate" type="application/rss+xml" href="/feed">
		<link rel="alternate" type="application/rss+xml" href="/feed/">
	</head><body></body></html>`

	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse(body),
	}}

	urls, err := New(client).DiscoverFeedUrls("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("expected duplicates collapsed, got %v", urls)
	}
}

func TestDiscoverFeedUrlsAppliesReplacementMap(t *testing.T) {
	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://old.reddit.com/r/golang/.rss": rssResponse(sampleRSS),
	}}

	urls, err := New(client).DiscoverFeedUrls("https://www.reddit.com/r/golang/.rss")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://old.reddit.com/r/golang/.rss" {
		t.Errorf("expected replaced base url, got %v", urls)
	}
	if client.requestCount("https://www.reddit.com/r/golang/.rss") != 0 {
		t.Error("expected the original url never to be fetched")
	}
}

func TestDiscoverFeedUrlsFetchFailure(t *testing.T) {
	client := &fakeClient{}

	_, err := New(client).DiscoverFeedUrls("https://unreachable.example.com")
	if err == nil {
		t.Error("expected error when the site is unreachable")
	}
}

func TestDiscoverFeedUrlsRetries(t *testing.T) {
	url := "https://example.com/feed"
	client := &fakeClient{
		responses: map[string]*httpclient.Response{url: rssResponse(sampleRSS)},
		failures:  map[string]int{url: 2},
	}

	c := New(client,
		WithRetryCount(2),
		WithRetryDelay(time.Millisecond),
	)

	urls, err := c.DiscoverFeedUrls(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("expected success after retries, got %v", urls)
	}
	if got := client.requestCount(url); got != 3 {
		t.Errorf("expected 3 fetch attempts, got %d", got)
	}
}

func TestSetDiscoverers(t *testing.T) {
	c := New(&fakeClient{})

	if err := c.SetDiscoverers(nil); err == nil {
		t.Error("expected error for empty discoverer list")
	}
	if err := c.SetDiscoverers([]discovery.Discoverer{discovery.NewByContentType(), nil}); err == nil {
		t.Error("expected error for nil discoverer entry")
	}
	if err := c.SetDiscoverers([]discovery.Discoverer{discovery.NewByContentType()}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSetDiscoverersReplacesChain(t *testing.T) {
	body := `<html><head>
		<link rel="alternate" type="application/rss+xml" href="/feed">
	</head></html>`

	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse(body),
	}}

	c := New(client)
	if err := c.SetDiscoverers([]discovery.Discoverer{discovery.NewByContentType()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the content type strategy remains, so the head link is ignored.
	urls, err := c.DiscoverFeedUrls("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("expected no urls with reduced chain, got %v", urls)
	}
}

func TestParseFeed(t *testing.T) {
	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com/feed": rssResponse(sampleRSS),
	}}

	f, err := New(client).ParseFeed("https://example.com/feed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f == nil {
		t.Fatal("expected a parsed feed")
	}
	if f.Title != "Example Feed" {
		t.Errorf("unexpected title %q", f.Title)
	}
	if len(f.FeedItems) != 1 {
		t.Fatalf("expected 1 item, got %d", len(f.FeedItems))
	}
	if f.FeedItems[0].Checksum == "" {
		t.Error("expected item checksum to be set")
	}
}

func TestParseFeedNotAFeed(t *testing.T) {
	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse("<html><body>not a feed</body></html>"),
	}}

	f, err := New(client).ParseFeed("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil feed for unparseable content, got %+v", f)
	}
}

func TestDiscoverAndParseFeeds(t *testing.T) {
	body := `<html><head>
		<link rel="alternate" type="application/rss+xml" href="/feed">
	</head></html>`

	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com":      htmlResponse(body),
		"https://example.com/feed": rssResponse(sampleRSS),
	}}

	feeds, err := New(client).DiscoverAndParseFeeds("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feeds) != 1 {
		t.Fatalf("expected 1 feed, got %d", len(feeds))
	}
	if feeds[0].Title != "Example Feed" {
		t.Errorf("unexpected title %q", feeds[0].Title)
	}
}

func TestCheckIfConsumableFeed(t *testing.T) {
	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com/feed": rssResponse(sampleRSS),
		"https://example.com":      htmlResponse("<html></html>"),
	}}

	c := New(client)
	if !c.CheckIfConsumableFeed("https://example.com/feed") {
		t.Error("expected feed url to be consumable")
	}
	if c.CheckIfConsumableFeed("https://example.com") {
		t.Error("expected html page not to be consumable")
	}
	if c.CheckIfConsumableFeed("https://unreachable.example.com") {
		t.Error("expected unreachable url not to be consumable")
	}
}

func TestSetUrlReplacementMap(t *testing.T) {
	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://mirror.example.com/feed": rssResponse(sampleRSS),
	}}

	c := New(client)
	c.SetUrlReplacementMap(urlutil.ReplacementMap{
		{Old: "https://site.example.com/", New: "https://mirror.example.com/"},
	})

	f, err := c.ParseFeed("https://site.example.com/feed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f == nil {
		t.Fatal("expected feed fetched through the mirror")
	}
}

func TestDiscoverFavicon(t *testing.T) {
	body := `<html><head>
		<link rel="icon" href="/broken.ico">
		<link rel="shortcut icon" href="/favicon.ico">
	</head></html>`

	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse(body),
		"https://example.com/favicon.ico": {
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"image/x-icon"}},
		},
	}}

	faviconURL, err := New(client).DiscoverFavicon("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if faviconURL != "https://example.com/favicon.ico" {
		t.Errorf("expected first responding candidate, got %q", faviconURL)
	}
}

func TestDiscoverFaviconNoneRespond(t *testing.T) {
	body := `<html><head>
		<link rel="icon" href="/broken.ico">
	</head></html>`

	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse(body),
	}}

	faviconURL, err := New(client).DiscoverFavicon("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if faviconURL != "" {
		t.Errorf("expected empty favicon url, got %q", faviconURL)
	}
}

func TestDiscoverFaviconNoIconLinks(t *testing.T) {
	client := &fakeClient{responses: map[string]*httpclient.Response{
		"https://example.com": htmlResponse("<html><head></head></html>"),
	}}

	faviconURL, err := New(client).DiscoverFavicon("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if faviconURL != "" {
		t.Errorf("expected empty favicon url, got %q", faviconURL)
	}
}
