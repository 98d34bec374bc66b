package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// comparisonPayload is the reduced field subset two items are serialized to
// before computing their textual similarity. Fields excluded here (links,
// image URLs, enclosures and the like) deliberately do not influence the
// score.
type comparisonPayload struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	Description string     `json:"description"`
	Permalink   string     `json:"permalink"`
}

// CompareTo returns the similarity between two feed items as a percentage
// between 0 and 100. Items with equal, non-empty checksums score 100.0
// without further comparison; otherwise a normalized common-substring metric
// is computed over the serialized comparison subset, catching near-duplicates
// such as an item republished with a corrected title.
func (item *FeedItem) CompareTo(other *FeedItem) (float64, error) {
	if item.Checksum != "" && item.Checksum == other.Checksum {
		return 100.0, nil
	}

	a, err := json.Marshal(comparisonPayloadOf(item))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize feed item for comparison: %w", err)
	}

	b, err := json.Marshal(comparisonPayloadOf(other))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize feed item for comparison: %w", err)
	}

	return similarText(a, b), nil
}

// IsSimilarTo reports whether the similarity to other reaches
// minimumPercentage.
func (item *FeedItem) IsSimilarTo(minimumPercentage float64, other *FeedItem) (bool, error) {
	similarity, err := item.CompareTo(other)
	if err != nil {
		return false, err
	}

	return similarity >= minimumPercentage, nil
}

func comparisonPayloadOf(item *FeedItem) comparisonPayload {
	return comparisonPayload{
		Title:       item.Title,
		Content:     item.Content,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		Description: item.Description,
		Permalink:   item.Permalink,
	}
}

// similarText returns the percentage of characters the two byte strings have
// in common: the longest common substring is located, the count recurses into
// the unmatched prefixes and suffixes, and twice the total is normalized by
// the combined length. The metric is symmetric.
func similarText(a, b []byte) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 100.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	common := commonChars(a, b)

	return float64(2*common) * 100.0 / float64(len(a)+len(b))
}

func commonChars(a, b []byte) int {
	max, posA, posB := 0, 0, 0

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			length := 0
			for i+length < len(a) && j+length < len(b) && a[i+length] == b[j+length] {
				length++
			}
			if length > max {
				max, posA, posB = length, i, j
			}
		}
	}

	if max == 0 {
		return 0
	}

	return max +
		commonChars(a[:posA], b[:posB]) +
		commonChars(a[posA+max:], b[posB+max:])
}
