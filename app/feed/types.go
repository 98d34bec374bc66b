// Package feed holds the canonical feed model produced by the canonicalizer
// plus the checksum and similarity machinery built on top of it.
package feed

import (
	"time"
)

// Feed is the canonical representation of a syndication feed. A Feed is
// constructed by the Canonicalizer with its Checksum already computed. Fields
// may be mutated directly afterwards; callers doing so must call
// GenerateChecksum before reading the Checksum again.
type Feed struct {
	Checksum    string      `json:"checksum"`
	Categories  []string    `json:"categories"`
	Authors     []string    `json:"authors"`
	Title       string      `json:"title"`
	Copyright   string      `json:"copyright"`
	CreatedAt   *time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time  `json:"updatedAt"`
	Description string      `json:"description"`
	FeedURL     string      `json:"feedUrl"`
	ID          string      `json:"id"`
	Language    string      `json:"language"`
	URL         string      `json:"url"`
	FeedItems   []*FeedItem `json:"feedItems"`
}

// FeedItem is the canonical representation of one feed entry.
//
// Title, Permalink and ID are required fields that may still legally be empty
// strings: some upstream feeds omit them and such entries are canonicalized,
// not discarded. Optional string fields use the empty string for "absent".
type FeedItem struct {
	Checksum        string     `json:"checksum"`
	Categories      []string   `json:"categories"`
	Authors         []string   `json:"authors"`
	Title           string     `json:"title"`
	CommentCount    int        `json:"commentCount"`
	CommentFeedLink string     `json:"commentFeedLink"`
	CommentLink     string     `json:"commentLink"`
	Content         string     `json:"content"`
	CreatedAt       *time.Time `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
	Description     string     `json:"description"`
	EnclosureURL    string     `json:"enclosureUrl"`
	ImageURLs       []string   `json:"imageUrls"`
	Encoding        string     `json:"encoding"`
	ID              string     `json:"id"`
	Links           []string   `json:"links"`
	Permalink       string     `json:"permalink"`
	Type            string     `json:"type"`
	XML             string     `json:"xml"`
}
