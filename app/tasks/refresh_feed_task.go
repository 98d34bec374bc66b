package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feedscout/feedscout/app/database"
)

// RefreshFeedTask re-fetches a stored feed, writes the new snapshot and logs
// whether the feed's fingerprint changed since the previous crawl.
type RefreshFeedTask struct {
	Task
	siteURL  string
	crawler  FeedCrawler
	feedRepo database.FeedRepository
	itemRepo database.ItemRepository
}

func NewRefreshFeedTask(siteURL, feedURL string, crawler FeedCrawler,
	feedRepo database.FeedRepository, itemRepo database.ItemRepository) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:     NewTask(TaskTypeRefreshFeed, feedURL),
		siteURL:  siteURL,
		crawler:  crawler,
		feedRepo: feedRepo,
		itemRepo: itemRepo,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := t.crawler.ParseFeed(t.FeedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed %s: %w", t.FeedURL, err)
	}
	if f == nil {
		return fmt.Errorf("feed %s is no longer consumable", t.FeedURL)
	}

	feedID, status, err := t.feedRepo.UpsertFeed(t.siteURL, t.FeedURL, f.Title,
		f.Description, f.Language, f.Checksum)
	if err != nil {
		return fmt.Errorf("failed to store feed %s: %w", t.FeedURL, err)
	}

	newItems := 0
	for _, item := range f.FeedItems {
		inserted, err := t.itemRepo.UpsertItem(feedID, item.ID, item.Title,
			item.Permalink, item.Checksum)
		if err != nil {
			return fmt.Errorf("failed to store item for feed %s: %w", t.FeedURL, err)
		}
		if inserted {
			newItems++
		}
	}

	if status == database.StatusUnchanged {
		slog.Debug("Feed unchanged", "feed_url", t.FeedURL, "duration", t.GetDuration().String())
	} else {
		slog.Info("Feed refreshed",
			"feed_url", t.FeedURL,
			"status", string(status),
			"new_items", newItems,
			"duration", t.GetDuration().String())
	}

	return nil
}
