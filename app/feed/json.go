package feed

import (
	"encoding/json"
	"fmt"
)

// ToJSON serializes the item with lower-camel-case keys, the persisted form
// feed items round-trip through.
func (item *FeedItem) ToJSON() ([]byte, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize feed item: %w", err)
	}

	return data, nil
}

// FeedItemFromJSON reconstructs a feed item from its persisted JSON form and
// recomputes its checksum, so a round-tripped item fingerprints identically
// to the original.
func FeedItemFromJSON(data []byte) (*FeedItem, error) {
	var item FeedItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to deserialize feed item: %w", err)
	}

	if err := item.GenerateChecksum(); err != nil {
		return nil, err
	}

	return &item, nil
}
