package api

import (
	"github.com/feedscout/feedscout/app/crawler"
	"github.com/feedscout/feedscout/app/database"
	"github.com/feedscout/feedscout/app/feed"
	"github.com/feedscout/feedscout/app/tasks"
)

type CrawlerInterface interface {
	DiscoverFeedUrls(url string) ([]string, error)
	ParseFeed(url string) (*feed.Feed, error)
	DiscoverAndParseFeeds(url string) ([]*feed.Feed, error)
	DiscoverFavicon(url string) (string, error)
	ExtractReadableContent(item *feed.FeedItem) error
}

var _ CrawlerInterface = (*crawler.Crawler)(nil)

type Handler struct {
	crawler        CrawlerInterface
	feedRepo       database.FeedRepository
	itemRepo       database.ItemRepository
	scheduler      tasks.TaskSchedulerInterface
	extractContent bool
}
