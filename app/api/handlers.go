package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/feedscout/feedscout/app/database"
	"github.com/feedscout/feedscout/app/tasks"
	"github.com/gin-gonic/gin"
)

func NewHandler(crawler CrawlerInterface, feedRepo database.FeedRepository,
	itemRepo database.ItemRepository, scheduler tasks.TaskSchedulerInterface,
	extractContent bool) *Handler {
	return &Handler{
		crawler:        crawler,
		feedRepo:       feedRepo,
		itemRepo:       itemRepo,
		scheduler:      scheduler,
		extractContent: extractContent,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

// GetDiscover runs the discovery strategy chain against the URL given in the
// "url" query parameter and returns the normalized feed URL candidates.
func (h *Handler) GetDiscover(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	urls, err := h.crawler.DiscoverFeedUrls(url)
	if err != nil {
		slog.Error("Feed discovery failed", "url", url, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Feed discovery failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       url,
		"feed_urls": urls,
		"total":     len(urls),
	})
}

func (h *Handler) GetFavicon(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	faviconURL, err := h.crawler.DiscoverFavicon(url)
	if err != nil {
		slog.Error("Favicon discovery failed", "url", url, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Favicon discovery failed"})
		return
	}

	if faviconURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No favicon found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":         url,
		"favicon_url": faviconURL,
	})
}

// GetParse fetches the URL given in the "url" query parameter and returns the
// canonicalized feed with checksums. The URL must point at a feed directly;
// use GetDiscover first for site URLs.
func (h *Handler) GetParse(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	parsed, err := h.crawler.ParseFeed(url)
	if err != nil {
		slog.Error("Feed fetch failed", "url", url, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Feed fetch failed"})
		return
	}

	if parsed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "URL is not a consumable feed"})
		return
	}

	c.JSON(http.StatusOK, parsed)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	storedFeeds, err := h.feedRepo.GetAllFeeds()
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	feeds := make([]map[string]interface{}, 0, len(storedFeeds))
	for _, f := range storedFeeds {
		feedInfo := map[string]interface{}{
			"id":              f.ID,
			"site_url":        f.SiteURL,
			"feed_url":        f.FeedURL,
			"title":           f.Title,
			"language":        f.Language,
			"checksum":        f.Checksum,
			"last_crawled_at": f.LastCrawledAt,
			"updated_at":      f.UpdatedAt,
		}

		if itemCount, err := h.itemRepo.GetItemCount(f.ID); err == nil {
			feedInfo["item_count"] = itemCount
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

// APICrawl discovers and parses all feeds at the given site URL, stores a
// snapshot of each and reports per feed whether it is new, changed or
// unchanged since the previous crawl.
func (h *Handler) APICrawl(c *gin.Context) {
	siteURL := c.Query("url")
	if siteURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	parsedFeeds, err := h.crawler.DiscoverAndParseFeeds(siteURL)
	if err != nil {
		slog.Error("Crawl failed", "url", siteURL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Crawl failed"})
		return
	}

	if len(parsedFeeds) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No feeds discovered"})
		return
	}

	results := make([]gin.H, 0, len(parsedFeeds))
	for _, f := range parsedFeeds {
		if h.extractContent {
			for _, item := range f.FeedItems {
				if err := h.crawler.ExtractReadableContent(item); err != nil {
					slog.Warn("Content extraction failed", "permalink", item.Permalink, "error", err)
				}
			}
		}

		feedID, status, err := h.feedRepo.UpsertFeed(siteURL, f.FeedURL, f.Title,
			f.Description, f.Language, f.Checksum)
		if err != nil {
			slog.Error("Database error", "operation", "upsert_feed", "feed_url", f.FeedURL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		newItems := 0
		for _, item := range f.FeedItems {
			inserted, err := h.itemRepo.UpsertItem(feedID, item.ID, item.Title,
				item.Permalink, item.Checksum)
			if err != nil {
				slog.Error("Database error", "operation", "upsert_item", "feed_url", f.FeedURL, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
				return
			}
			if inserted {
				newItems++
			}
		}

		results = append(results, gin.H{
			"feed_url":  f.FeedURL,
			"title":     f.Title,
			"status":    status,
			"items":     len(f.FeedItems),
			"new_items": newItems,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"site_url": siteURL,
		"feeds":    results,
		"total":    len(results),
	})
}

// APIRefresh enqueues a background refresh task for every stored feed and
// returns immediately. Refreshing happens when the caller asks for it, never
// on a timer.
func (h *Handler) APIRefresh(c *gin.Context) {
	storedFeeds, err := h.feedRepo.GetAllFeeds()
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	enqueued := 0
	for _, f := range storedFeeds {
		task := tasks.NewRefreshFeedTask(f.SiteURL, f.FeedURL, h.crawler, h.feedRepo, h.itemRepo)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue refresh task", "feed_url", f.FeedURL, "error", err)
			continue
		}
		enqueued++
	}

	c.JSON(http.StatusAccepted, gin.H{
		"enqueued": enqueued,
		"total":    len(storedFeeds),
	})
}
