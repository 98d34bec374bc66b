package database

// FeedRepository persists crawled feeds keyed by feed URL.
type FeedRepository interface {
	GetFeed(feedURL string) (*Feed, error)
	GetAllFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	// UpsertFeed stores the current crawl snapshot and reports whether the
	// feed is new, changed (checksum differs from the stored one) or
	// unchanged.
	UpsertFeed(siteURL, feedURL, title, description, language, checksum string) (int64, ChangeStatus, error)
}

// ItemRepository persists crawled feed items keyed by checksum.
type ItemRepository interface {
	GetItems(feedID int64) ([]Item, error)
	GetItemCount(feedID int64) (int, error)

	CheckDuplicate(feedID int64, checksum string) (bool, error)

	// UpsertItem stores an item snapshot; it reports true when the checksum
	// was not seen before for this feed.
	UpsertItem(feedID int64, guid, title, permalink, checksum string) (bool, error)
}
