package feed

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
	"time"
)

// Algorithm selects the digest used for checksums.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA224 Algorithm = "sha224"
	SHA256 Algorithm = "sha256"
	SHA384 Algorithm = "sha384"
	SHA512 Algorithm = "sha512"
)

const (
	DefaultDelimiter   = "|"
	DefaultAlgorithm   = SHA256
	listSeparator      = ","
	checksumTimeFormat = time.RFC3339
)

// ChecksumOption overrides the delimiter or algorithm of a checksum run.
type ChecksumOption func(*checksumConfig)

type checksumConfig struct {
	delimiter string
	algorithm Algorithm
}

func WithDelimiter(delimiter string) ChecksumOption {
	return func(c *checksumConfig) {
		c.delimiter = delimiter
	}
}

func WithAlgorithm(algorithm Algorithm) ChecksumOption {
	return func(c *checksumConfig) {
		c.algorithm = algorithm
	}
}

// itemChecksumValues returns the checksummed fields of a FeedItem in their
// frozen order: categories, authors, title, createdAt, updatedAt, encoding,
// links, permalink, type. The order and the field set are part of the
// fingerprint format and must never change: identical canonical field values
// have to yield identical digests across runs and implementations.
func itemChecksumValues(item *FeedItem) []string {
	return []string{
		strings.Join(item.Categories, listSeparator),
		strings.Join(item.Authors, listSeparator),
		item.Title,
		formatChecksumTime(item.CreatedAt),
		formatChecksumTime(item.UpdatedAt),
		item.Encoding,
		strings.Join(item.Links, listSeparator),
		item.Permalink,
		item.Type,
	}
}

// feedChecksumValues returns the checksummed fields of a Feed in their frozen
// order: categories, authors, title, copyright, createdAt, updatedAt,
// feedUrl, id, language, url, feedItems. Items are folded in through their
// own checksums, making the feed fingerprint a recursive, content-addressed
// composition: it changes when any item fingerprint changes, or when the item
// count changes.
func feedChecksumValues(f *Feed, cfg checksumConfig) ([]string, error) {
	itemChecksums := make([]string, 0, len(f.FeedItems))
	for _, item := range f.FeedItems {
		checksum, err := checksumForValues(itemChecksumValues(item), cfg)
		if err != nil {
			return nil, err
		}
		itemChecksums = append(itemChecksums, checksum)
	}

	return []string{
		strings.Join(f.Categories, listSeparator),
		strings.Join(f.Authors, listSeparator),
		f.Title,
		f.Copyright,
		formatChecksumTime(f.CreatedAt),
		formatChecksumTime(f.UpdatedAt),
		f.FeedURL,
		f.ID,
		f.Language,
		f.URL,
		strings.Join(itemChecksums, listSeparator),
	}, nil
}

// GenerateChecksumForFeedItem computes the deterministic fingerprint of a
// feed item. The default delimiter is "|" and the default algorithm SHA-256;
// both are load-bearing: changing either changes the digest.
func GenerateChecksumForFeedItem(item *FeedItem, opts ...ChecksumOption) (string, error) {
	return checksumForValues(itemChecksumValues(item), newChecksumConfig(opts))
}

// GenerateChecksumForFeed computes the deterministic fingerprint of a feed,
// folding in the fingerprint of every contained item.
func GenerateChecksumForFeed(f *Feed, opts ...ChecksumOption) (string, error) {
	cfg := newChecksumConfig(opts)

	values, err := feedChecksumValues(f, cfg)
	if err != nil {
		return "", err
	}

	return checksumForValues(values, cfg)
}

// GenerateChecksum recomputes and stores the checksum with the default
// delimiter and algorithm. Must be called after mutating any field.
func (item *FeedItem) GenerateChecksum() error {
	checksum, err := GenerateChecksumForFeedItem(item)
	if err != nil {
		return err
	}

	item.Checksum = checksum
	return nil
}

// GenerateChecksum recomputes and stores the checksum with the default
// delimiter and algorithm. Must be called after mutating any field or any
// contained item.
func (f *Feed) GenerateChecksum() error {
	checksum, err := GenerateChecksumForFeed(f)
	if err != nil {
		return err
	}

	f.Checksum = checksum
	return nil
}

func newChecksumConfig(opts []ChecksumOption) checksumConfig {
	cfg := checksumConfig{
		delimiter: DefaultDelimiter,
		algorithm: DefaultAlgorithm,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func checksumForValues(values []string, cfg checksumConfig) (string, error) {
	if cfg.delimiter == "" {
		return "", fmt.Errorf("checksum delimiter must not be empty")
	}

	hasher, err := newHasher(cfg.algorithm)
	if err != nil {
		return "", err
	}

	joined := strings.Join(values, cfg.delimiter)
	for strings.HasPrefix(joined, cfg.delimiter) {
		joined = strings.TrimPrefix(joined, cfg.delimiter)
	}
	for strings.HasSuffix(joined, cfg.delimiter) {
		joined = strings.TrimSuffix(joined, cfg.delimiter)
	}

	hasher.Write([]byte(joined))

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func newHasher(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA224:
		return sha256.New224(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", algorithm)
	}
}

func formatChecksumTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(checksumTimeFormat)
}
