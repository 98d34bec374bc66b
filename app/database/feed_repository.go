package database

import (
	"database/sql"
	"fmt"
)

// FeedRepo handles database operations for feeds.
type FeedRepo struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

func (r *FeedRepo) GetFeed(feedURL string) (*Feed, error) {
	var f Feed
	err := r.db.QueryRow(`
		SELECT id, site_url, feed_url, title, description, language, checksum,
		       last_crawled_at, created_at, updated_at
		FROM feeds
		WHERE feed_url = ?
	`, feedURL).Scan(&f.ID, &f.SiteURL, &f.FeedURL, &f.Title, &f.Description,
		&f.Language, &f.Checksum, &f.LastCrawledAt, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return &f, nil
}

func (r *FeedRepo) GetAllFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT id, site_url, feed_url, title, description, language, checksum,
		       last_crawled_at, created_at, updated_at
		FROM feeds
		ORDER BY feed_url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.ID, &f.SiteURL, &f.FeedURL, &f.Title, &f.Description,
			&f.Language, &f.Checksum, &f.LastCrawledAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}

	return feeds, rows.Err()
}

func (r *FeedRepo) GetFeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

func (r *FeedRepo) UpsertFeed(siteURL, feedURL, title, description, language, checksum string) (int64, ChangeStatus, error) {
	existing, err := r.GetFeed(feedURL)
	if err != nil {
		return 0, "", fmt.Errorf("failed to check existing feed: %w", err)
	}

	if existing == nil {
		result, err := r.db.Exec(`
			INSERT INTO feeds (site_url, feed_url, title, description, language, checksum, last_crawled_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, siteURL, feedURL, title, description, language, checksum)
		if err != nil {
			return 0, "", fmt.Errorf("failed to insert feed: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return 0, "", fmt.Errorf("failed to read feed id: %w", err)
		}

		return id, StatusNew, nil
	}

	status := StatusUnchanged
	if existing.Checksum != checksum {
		status = StatusChanged
	}

	_, err = r.db.Exec(`
		UPDATE feeds
		SET site_url = ?, title = ?, description = ?, language = ?, checksum = ?,
		    last_crawled_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, siteURL, title, description, language, checksum, existing.ID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to update feed: %w", err)
	}

	return existing.ID, status, nil
}
