package database

import (
	"fmt"
)

// ItemRepo handles database operations for stored feed items.
type ItemRepo struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

func (r *ItemRepo) GetItems(feedID int64) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT id, feed_id, guid, title, permalink, checksum, first_seen_at
		FROM feed_items
		WHERE feed_id = ?
		ORDER BY first_seen_at DESC, id DESC
	`, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.FeedID, &it.GUID, &it.Title, &it.Permalink,
			&it.Checksum, &it.FirstSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (r *ItemRepo) GetItemCount(feedID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM feed_items WHERE feed_id = ?`, feedID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (r *ItemRepo) CheckDuplicate(feedID int64, checksum string) (bool, error) {
	var exists int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM feed_items WHERE feed_id = ? AND checksum = ?
	`, feedID, checksum).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return exists > 0, nil
}

func (r *ItemRepo) UpsertItem(feedID int64, guid, title, permalink, checksum string) (bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO feed_items (feed_id, guid, title, permalink, checksum)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (feed_id, checksum) DO NOTHING
	`, feedID, guid, title, permalink, checksum)
	if err != nil {
		return false, fmt.Errorf("failed to upsert item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read upsert result: %w", err)
	}

	return affected > 0, nil
}
