package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/feedscout/feedscout/app/httpclient"
)

var (
	xmlEncodingRe = regexp.MustCompile(`(?i)<\?xml[^>]*\bencoding=["']([^"']+)["']`)
	rssItemRe     = regexp.MustCompile(`(?s)<item[\s>].*?</item>`)
	atomEntryRe   = regexp.MustCompile(`(?s)<entry[\s>].*?</entry>`)
)

// Canonicalizer turns raw feed bytes into the canonical Feed model: fields
// trimmed, blanks nulled out, HTML entities decoded, embedded image URLs
// extracted and probed, and checksums attached to every item and to the feed
// itself.
type Canonicalizer struct {
	parser      *gofeed.Parser
	client      httpclient.Client
	probeFanOut int
}

// NewCanonicalizer creates a canonicalizer. client is used to probe extracted
// image URLs; a nil client skips probing and keeps all extracted URLs.
func NewCanonicalizer(client httpclient.Client) *Canonicalizer {
	return &Canonicalizer{
		parser:      gofeed.NewParser(),
		client:      client,
		probeFanOut: DefaultProbeFanOut,
	}
}

// SetProbeFanOut bounds the number of concurrent image probes per item.
func (c *Canonicalizer) SetProbeFanOut(fanOut int) {
	if fanOut > 0 {
		c.probeFanOut = fanOut
	}
}

// Run parses data and canonicalizes it. A parse failure means the content is
// not a consumable feed.
func (c *Canonicalizer) Run(data []byte) (*Feed, error) {
	parsed, err := c.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	encoding := declaredEncoding(data)
	typeTag := feedTypeTag(parsed)
	rawItems := rawItemXML(data, len(parsed.Items))

	f := &Feed{
		Categories:  trimStringSlice(parsed.Categories),
		Authors:     canonicalAuthors(parsed.Authors),
		Title:       strings.TrimSpace(parsed.Title),
		Copyright:   strings.TrimSpace(parsed.Copyright),
		CreatedAt:   canonicalTime(parsed.PublishedParsed, parsed.Published),
		UpdatedAt:   canonicalTime(parsed.UpdatedParsed, parsed.Updated),
		Description: strings.TrimSpace(parsed.Description),
		FeedURL:     strings.TrimSpace(parsed.FeedLink),
		ID:          strings.TrimSpace(cmp.Or(parsed.Link, parsed.FeedLink)),
		Language:    strings.TrimSpace(parsed.Language),
		URL:         strings.TrimSpace(parsed.Link),
	}

	for i, parsedItem := range parsed.Items {
		item := c.canonicalizeItem(parsedItem, encoding, typeTag)
		if i < len(rawItems) {
			item.XML = strings.TrimSpace(rawItems[i])
		}

		if err := item.GenerateChecksum(); err != nil {
			return nil, err
		}

		f.FeedItems = append(f.FeedItems, item)
	}

	if err := f.GenerateChecksum(); err != nil {
		return nil, err
	}

	return f, nil
}

func (c *Canonicalizer) canonicalizeItem(parsed *gofeed.Item, encoding, typeTag string) *FeedItem {
	content := strings.TrimSpace(html.UnescapeString(parsed.Content))
	permalink := strings.TrimSpace(parsed.Link)

	var imageURLs []string
	if permalink != "" && content != "" {
		imageURLs = ExtractImageUrls(permalink, content)
		if c.client != nil {
			imageURLs = FilterImageUrls(c.client, imageURLs, c.probeFanOut)
		}
	}

	item := &FeedItem{
		Categories:      trimStringSlice(parsed.Categories),
		Authors:         canonicalAuthors(itemAuthors(parsed)),
		Title:           strings.TrimSpace(parsed.Title),
		CommentCount:    slashCommentCount(parsed),
		CommentFeedLink: strings.TrimSpace(commentFeedLink(parsed)),
		Content:         content,
		CreatedAt:       canonicalTime(parsed.PublishedParsed, parsed.Published),
		UpdatedAt:       canonicalTime(parsed.UpdatedParsed, parsed.Updated),
		Description:     strings.TrimSpace(parsed.Description),
		ImageURLs:       imageURLs,
		Encoding:        encoding,
		ID:              strings.TrimSpace(parsed.GUID),
		Links:           trimStringSlice(parsed.Links),
		Permalink:       permalink,
		Type:            typeTag,
	}

	if len(parsed.Enclosures) > 0 && parsed.Enclosures[0] != nil {
		item.EnclosureURL = strings.TrimSpace(parsed.Enclosures[0].URL)
	}

	return item
}

func itemAuthors(item *gofeed.Item) []*gofeed.Person {
	if len(item.Authors) > 0 {
		return item.Authors
	}
	if item.Author != nil {
		return []*gofeed.Person{item.Author}
	}
	return nil
}

// canonicalAuthors formats each author as "Name <email>" when both parts are
// present, or whichever part exists. Blank entries are dropped.
func canonicalAuthors(authors []*gofeed.Person) []string {
	var result []string

	for _, author := range authors {
		if author == nil {
			continue
		}

		name := strings.TrimSpace(author.Name)
		email := strings.TrimSpace(author.Email)

		var formatted string
		switch {
		case name != "" && email != "":
			formatted = fmt.Sprintf("%s <%s>", name, email)
		case name != "":
			formatted = name
		default:
			formatted = email
		}

		if formatted != "" {
			result = append(result, formatted)
		}
	}

	return result
}

func trimStringSlice(values []string) []string {
	var result []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// canonicalTime prefers the parser's parsed timestamp and falls back to
// best-effort parsing of the raw date string. Unparseable dates become nil
// rather than errors.
func canonicalTime(parsed *time.Time, raw string) *time.Time {
	if parsed != nil {
		return parsed
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}

	return &t
}

// declaredEncoding reads the encoding attribute of the XML declaration,
// canonicalized through the IANA names the HTML spec knows, defaulting to
// UTF-8.
func declaredEncoding(data []byte) string {
	name := "UTF-8"
	if match := xmlEncodingRe.FindSubmatch(data); match != nil {
		name = string(match[1])
	}

	if enc, err := htmlindex.Get(name); err == nil {
		if canonical, err := htmlindex.Name(enc); err == nil {
			name = canonical
		}
	}

	return strings.ToUpper(strings.TrimSpace(name))
}

// feedTypeTag derives the source format tag, e.g. "rss-20" or "atom-10".
func feedTypeTag(parsed *gofeed.Feed) string {
	feedType := strings.ToLower(strings.TrimSpace(parsed.FeedType))
	version := strings.ReplaceAll(strings.TrimSpace(parsed.FeedVersion), ".", "")

	if feedType == "" {
		return ""
	}
	if version == "" {
		return feedType
	}

	return feedType + "-" + version
}

// rawItemXML slices the raw per-entry XML out of the document. The slices are
// only trusted when their count matches the parsed item count; otherwise raw
// XML is omitted entirely.
func rawItemXML(data []byte, itemCount int) []string {
	if itemCount == 0 {
		return nil
	}

	matches := rssItemRe.FindAll(data, -1)
	if len(matches) != itemCount {
		matches = atomEntryRe.FindAll(data, -1)
	}
	if len(matches) != itemCount {
		return nil
	}

	result := make([]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, string(m))
	}

	return result
}

func slashCommentCount(item *gofeed.Item) int {
	if values, ok := item.Extensions["slash"]["comments"]; ok && len(values) > 0 {
		if count, err := strconv.Atoi(strings.TrimSpace(values[0].Value)); err == nil {
			return count
		}
	}
	return 0
}

// commentFeedLink reads the wfw:commentRss extension carried by most blog
// engines. The plain RSS <comments> element is not exposed by the parser, so
// CommentLink stays empty for RSS sources.
func commentFeedLink(item *gofeed.Item) string {
	if values, ok := item.Extensions["wfw"]["commentRss"]; ok && len(values) > 0 {
		return values[0].Value
	}
	return ""
}
