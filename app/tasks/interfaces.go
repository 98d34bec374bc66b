package tasks

import (
	"github.com/feedscout/feedscout/app/feed"
)

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application to manage the re-crawl worker pool.
// Example usage:
//
//	scheduler := NewScheduler(feedCrawler, feedRepo, itemRepo)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// FeedCrawler is the crawling capability tasks depend on.
type FeedCrawler interface {
	ParseFeed(url string) (*feed.Feed, error)
}
