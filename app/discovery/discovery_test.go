package discovery

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/feedscout/feedscout/app/feedly"
	"github.com/feedscout/feedscout/app/httpclient"
)

type fakeClient struct {
	responses map[string]*httpclient.Response
}

func (c *fakeClient) Get(url string) (*httpclient.Response, error) {
	if resp, ok := c.responses[url]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("%w: %s", httpclient.ErrConnection, url)
}

func htmlResponse(body string) *httpclient.Response {
	return &httpclient.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       []byte(body),
	}
}

func feedResponse(contentType string) *httpclient.Response {
	return &httpclient.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       []byte(`<?xml version="1.0"?><rss version="2.0"><channel></channel></rss>`),
	}
}

func TestByContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expected    int
	}{
		{"rss", "application/rss+xml", 1},
		{"rss with charset", "application/rss+xml; charset=utf-8", 1},
		{"atom", "application/atom+xml", 1},
		{"html", "text/html; charset=utf-8", 0},
		{"plain xml", "text/xml", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := NewResponseContainer("https://example.com/feed", feedResponse(tt.contentType))

			urls, err := NewByContentType().Discover(&fakeClient{}, rc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(urls) != tt.expected {
				t.Fatalf("expected %d urls, got %d", tt.expected, len(urls))
			}
			if tt.expected == 1 && urls[0] != "https://example.com/feed" {
				t.Errorf("expected request url returned, got %q", urls[0])
			}
		})
	}
}

func TestByHTMLHeadElements(t *testing.T) {
	body := `<html><head>
		<link rel="alternate" type="application/rss+xml" href="/feed">
		<link rel="alternate" type="application/atom+xml" href="https://example.com/atom.xml">
		<link rel="stylesheet" href="/style.css">
	</head><body>
		<link type="application/rss+xml" href="/not-in-head">
	</body></html>`

	rc := NewResponseContainer("https://example.com/blog", htmlResponse(body))

	urls, err := NewByHTMLHeadElements().Discover(&fakeClient{}, rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://example.com/feed" {
		t.Errorf("expected relative href resolved against host, got %q", urls[0])
	}
	if urls[1] != "https://example.com/atom.xml" {
		t.Errorf("expected absolute href kept, got %q", urls[1])
	}
}

func TestByHTMLHeadElementsNoLinks(t *testing.T) {
	rc := NewResponseContainer("https://example.com", htmlResponse("<html><head></head><body></body></html>"))

	urls, err := NewByHTMLHeadElements().Discover(&fakeClient{}, rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("expected no urls, got %v", urls)
	}
}

func TestByHTMLAnchorElements(t *testing.T) {
	body := `<html><body>
		<a href="/rss.xml">RSS</a>
		<a href="https://example.com/feeds/rss">Feed</a>
		<a href="/about">About</a>
		<a>no href</a>
	</body></html>`

	rc := NewResponseContainer("https://example.com", htmlResponse(body))

	urls, err := NewByHTMLAnchorElements().Discover(&fakeClient{}, rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://example.com/rss.xml" {
		t.Errorf("unexpected first url %q", urls[0])
	}
	if urls[1] != "https://example.com/feeds/rss" {
		t.Errorf("unexpected second url %q", urls[1])
	}
}

func TestByFeedly(t *testing.T) {
	searchBody := `{
		"hint": "zeit.de",
		"results": [
			{"feedId": "feed/https://newsfeed.zeit.de/index", "title": "ZEIT ONLINE"},
			{"feedId": "feed/https://newsfeed.zeit.de/politik/index", "title": "ZEIT ONLINE: Politik"}
		]
	}`

	query := "https://www.zeit.de"
	searchURL := feedly.DefaultBaseURL + "/search/feeds?query=" + "https%3A%2F%2Fwww.zeit.de"

	client := &fakeClient{responses: map[string]*httpclient.Response{
		searchURL: {
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       []byte(searchBody),
		},
	}}

	rc := NewResponseContainer(query, htmlResponse("<html></html>"))

	urls, err := NewByFeedly(feedly.NewClient(client, "")).Discover(client, rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://newsfeed.zeit.de/index" {
		t.Errorf("expected feed/ prefix stripped, got %q", urls[0])
	}
}

func TestByFeedlySearchFailure(t *testing.T) {
	client := &fakeClient{}
	rc := NewResponseContainer("https://unreachable.example.com", htmlResponse("<html></html>"))

	_, err := NewByFeedly(feedly.NewClient(client, "")).Discover(client, rc)
	if err == nil {
		t.Error("expected error when the search API is unreachable")
	}
	if !strings.Contains(err.Error(), "unreachable.example.com") {
		t.Errorf("expected url in error, got %v", err)
	}
}
