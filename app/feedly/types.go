package feedly

import (
	"strings"
	"time"
)

// Result is a single feed returned by the Feedly search API.
type Result struct {
	FeedID        string   `json:"feedId"`
	Title         string   `json:"title"`
	Website       string   `json:"website"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	LastUpdated   int64    `json:"lastUpdated"` // milliseconds since epoch
	Velocity      float64  `json:"velocity"`
	Subscribers   int      `json:"subscribers"`
	Curated       bool     `json:"curated"`
	Featured      bool     `json:"featured"`
	Partial       bool     `json:"partial"`
	ContentType   string   `json:"contentType"`
	IconURL       string   `json:"iconUrl"`
	VisualURL     string   `json:"visualUrl"`
	CoverURL      string   `json:"coverUrl"`
	Logo          string   `json:"logo"`
	CoverColor    string   `json:"coverColor"`
	DeliciousTags []string `json:"deliciousTags"`
}

// FeedUrl derives the feed URL from the Feedly feed id, which is prefixed
// with "feed/".
func (r *Result) FeedUrl() string {
	return strings.TrimPrefix(r.FeedID, "feed/")
}

// LastUpdatedTime converts the millisecond timestamp into a time.Time. The
// zero time is returned when Feedly reported no update timestamp.
func (r *Result) LastUpdatedTime() time.Time {
	if r.LastUpdated == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.LastUpdated).UTC()
}

// SearchResponse is the Feedly search envelope.
type SearchResponse struct {
	Hint    string   `json:"hint"`
	Related []string `json:"related"`
	Results []Result `json:"results"`
}

// FeedUrls collects the feed URL of every result in response order.
func (r *SearchResponse) FeedUrls() []string {
	urls := make([]string, 0, len(r.Results))
	for i := range r.Results {
		urls = append(urls, r.Results[i].FeedUrl())
	}
	return urls
}
