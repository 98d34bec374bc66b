// Package crawler is the caller-facing engine: it chains the discovery
// strategies, wraps fetches in retries and hands fetched feeds to the
// canonicalizer.
package crawler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/feedscout/feedscout/app/discovery"
	"github.com/feedscout/feedscout/app/feed"
	"github.com/feedscout/feedscout/app/feedly"
	"github.com/feedscout/feedscout/app/httpclient"
	"github.com/feedscout/feedscout/app/retry"
	"github.com/feedscout/feedscout/app/urlutil"
)

const DefaultRetryDelay = time.Second

// DefaultReplacementMap rewrites hosts that are known to reject crawlers
// while a mirror of the same content does not.
var DefaultReplacementMap = urlutil.ReplacementMap{
	{Old: "https://www.reddit.com/", New: "https://old.reddit.com/"},
}

// Crawler discovers, parses and fingerprints feeds. Configuration is meant
// to happen at construction time; concurrent use is safe as long as setters
// are not interleaved with calls.
type Crawler struct {
	httpClient     httpclient.Client
	canonicalizer  *feed.Canonicalizer
	extractor      *feed.ContentExtractor
	discoverers    []discovery.Discoverer
	retryCount     int
	retryDelay     time.Duration
	urlReplacement urlutil.ReplacementMap
	logger         *slog.Logger
}

// New creates a crawler with the default strategy chain (content type, HTML
// head elements, HTML anchor elements, Feedly search), no retries and the
// default URL replacement map.
func New(httpClient httpclient.Client, opts ...Option) *Crawler {
	feedlyClient := feedly.NewClient(httpClient, "")

	c := &Crawler{
		httpClient:    httpClient,
		canonicalizer: feed.NewCanonicalizer(httpClient),
		extractor:     feed.NewContentExtractor(),
		discoverers: []discovery.Discoverer{
			discovery.NewByContentType(),
			discovery.NewByHTMLHeadElements(),
			discovery.NewByHTMLAnchorElements(),
			discovery.NewByFeedly(feedlyClient),
		},
		retryCount:     0,
		retryDelay:     DefaultRetryDelay,
		urlReplacement: DefaultReplacementMap,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Option configures a Crawler at construction time.
type Option func(*Crawler)

func WithRetryCount(count int) Option {
	return func(c *Crawler) {
		if count >= 0 {
			c.retryCount = count
		}
	}
}

func WithRetryDelay(delay time.Duration) Option {
	return func(c *Crawler) {
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithProbeFanOut(fanOut int) Option {
	return func(c *Crawler) {
		c.canonicalizer.SetProbeFanOut(fanOut)
	}
}

// SetRetryCount sets how often failed fetches are retried. 0 means a single
// attempt.
func (c *Crawler) SetRetryCount(count int) {
	if count >= 0 {
		c.retryCount = count
	}
}

// SetUrlReplacementMap replaces the base URL replacement list applied before
// every fetch.
func (c *Crawler) SetUrlReplacementMap(replacements urlutil.ReplacementMap) {
	c.urlReplacement = replacements
}

// SetDiscoverers replaces the strategy chain wholesale. The list must be
// non-empty and free of nil entries; invalid configuration fails here, never
// at discovery time.
func (c *Crawler) SetDiscoverers(discoverers []discovery.Discoverer) error {
	if len(discoverers) == 0 {
		return fmt.Errorf("at least one feed discoverer is required")
	}

	for i, d := range discoverers {
		if d == nil {
			return fmt.Errorf("feed discoverer at position %d is nil", i)
		}
	}

	c.discoverers = discoverers
	return nil
}

// DiscoverFeedUrls fetches url and runs the strategy chain against the
// response: the first strategy producing a non-empty result wins, later ones
// never run. The returned URLs are normalized and deduplicated in first-seen
// order. Fetch failures propagate after retries are exhausted.
func (c *Crawler) DiscoverFeedUrls(url string) ([]string, error) {
	target := urlutil.ReplaceBaseUrls(url, c.urlReplacement)

	var discovered []string
	err := retry.Do(func() error {
		resp, err := c.httpClient.Get(target)
		if err != nil {
			return err
		}

		discovered = c.runDiscoverers(discovery.NewResponseContainer(target, resp))
		return nil
	}, c.retryDelay, c.retryCount)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}

	return normalizeUrlSet(discovered), nil
}

func (c *Crawler) runDiscoverers(rc *discovery.ResponseContainer) []string {
	for _, d := range c.discoverers {
		urls, err := d.Discover(c.httpClient, rc)
		if err != nil {
			c.logger.Error("Feed discovery strategy failed",
				"strategy", fmt.Sprintf("%T", d),
				"url", rc.RequestURL,
				"error", err)
			continue
		}

		if len(urls) > 0 {
			return urls
		}
	}

	return nil
}

// ParseFeed fetches url and canonicalizes the response. It returns nil
// without an error when the content is not a consumable feed; transport
// failures propagate after retries.
func (c *Crawler) ParseFeed(url string) (*feed.Feed, error) {
	target := urlutil.ReplaceBaseUrls(url, c.urlReplacement)

	var resp *httpclient.Response
	err := retry.Do(func() error {
		var fetchErr error
		resp, fetchErr = c.httpClient.Get(target)
		return fetchErr
	}, c.retryDelay, c.retryCount)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}

	f, err := c.canonicalizer.Run(resp.Body)
	if err != nil {
		c.logger.Error("Failed to parse feed", "url", target, "error", err)
		return nil, nil
	}

	return f, nil
}

// DiscoverAndParseFeeds discovers all feed URLs for url and parses each,
// silently dropping candidates that turn out not to be consumable feeds.
func (c *Crawler) DiscoverAndParseFeeds(url string) ([]*feed.Feed, error) {
	feedUrls, err := c.DiscoverFeedUrls(url)
	if err != nil {
		return nil, err
	}

	var feeds []*feed.Feed
	for _, feedUrl := range feedUrls {
		f, err := c.ParseFeed(feedUrl)
		if err != nil {
			return nil, err
		}
		if f != nil {
			feeds = append(feeds, f)
		}
	}

	return feeds, nil
}

// CheckIfConsumableFeed reports whether url serves content the feed parser
// accepts. Any failure, transport or parse, counts as "not consumable".
func (c *Crawler) CheckIfConsumableFeed(url string) bool {
	f, err := c.ParseFeed(url)
	return err == nil && f != nil
}

// ExtractReadableContent fetches the item's permalink and replaces its
// content with the readable article body. Item checksums do not cover
// content, so backfilling keeps the fingerprint stable.
func (c *Crawler) ExtractReadableContent(item *feed.FeedItem) error {
	if item.Permalink == "" {
		return fmt.Errorf("feed item has no permalink")
	}

	resp, err := c.httpClient.Get(item.Permalink)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", item.Permalink, err)
	}

	content, err := c.extractor.Run(resp.Body, item.Permalink)
	if err != nil {
		return err
	}

	item.Content = content
	return nil
}

// GenerateChecksumForFeedItem computes a feed item fingerprint; see the feed
// package for delimiter and algorithm options.
func (c *Crawler) GenerateChecksumForFeedItem(item *feed.FeedItem, opts ...feed.ChecksumOption) (string, error) {
	return feed.GenerateChecksumForFeedItem(item, opts...)
}

// GenerateChecksumForFeed computes a feed fingerprint; see the feed package
// for delimiter and algorithm options.
func (c *Crawler) GenerateChecksumForFeed(f *feed.Feed, opts ...feed.ChecksumOption) (string, error) {
	return feed.GenerateChecksumForFeed(f, opts...)
}

// normalizeUrlSet normalizes every URL and removes duplicates, keeping
// first-seen order.
func normalizeUrlSet(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	result := make([]string, 0, len(urls))

	for _, u := range urls {
		normalized := urlutil.NormalizeUrl(u)
		if _, ok := seen[normalized]; ok {
			continue
		}

		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	return result
}
