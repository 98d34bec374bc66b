package database

import (
	"time"
)

// ChangeStatus classifies the outcome of storing a crawled feed relative to
// the previous crawl.
type ChangeStatus string

const (
	StatusNew       ChangeStatus = "new"
	StatusChanged   ChangeStatus = "changed"
	StatusUnchanged ChangeStatus = "unchanged"
)

// Feed is a stored crawl snapshot of a feed.
type Feed struct {
	ID            int64
	SiteURL       string
	FeedURL       string
	Title         string
	Description   string
	Language      string
	Checksum      string
	LastCrawledAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item is a stored snapshot of one feed item, identified by its checksum.
type Item struct {
	ID          int64
	FeedID      int64
	GUID        string
	Title       string
	Permalink   string
	Checksum    string
	FirstSeenAt time.Time
}
