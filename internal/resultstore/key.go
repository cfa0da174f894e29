package resultstore

import (
	"crypto/sha1" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ResultExt is the file extension of stored audit results.
const ResultExt = ".json"

// DefaultStripSubdomain is the subdomain label removed before hashing.
const DefaultStripSubdomain = "www"

// Key is the composite identity of one stored audit result. It is
// encoded in the file basename as {siteId}-{device}-{urlHash}-{run}.json
// and is the only join between a file and its logical job. Encoding and
// decoding live here so the writer and both readers cannot drift.
type Key struct {
	SiteID  int64
	Device  string
	URLHash string
	Run     int
}

// Filename returns the basename encoding the key.
func (k Key) Filename() string {
	return fmt.Sprintf("%d-%s-%s-%d%s", k.SiteID, k.Device, k.URLHash, k.Run, ResultExt)
}

// ParseKey decodes a result file path back into its key.
func ParseKey(path string) (Key, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, ResultExt)
	if name == base {
		return Key{}, fmt.Errorf("parse result key %q: not a %s file", base, ResultExt)
	}

	parts := strings.Split(name, "-")
	if len(parts) < 4 {
		return Key{}, fmt.Errorf("parse result key %q: want 4 segments, got %d", base, len(parts))
	}

	siteID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("parse result key %q: site id: %w", base, err)
	}

	run, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return Key{}, fmt.Errorf("parse result key %q: run index: %w", base, err)
	}

	// Device labels may themselves contain dashes; the hash and run
	// index are always the last two segments.
	return Key{
		SiteID:  siteID,
		Device:  strings.Join(parts[1:len(parts)-2], "-"),
		URLHash: parts[len(parts)-2],
		Run:     run,
	}, nil
}

// CanonicalizeURL strips an http:// or https:// scheme and, if present,
// one leading subdomain label from a URL. Canonicalization applies to
// file-key hashing only, so that http://www.x.com/a and https://x.com/a
// name the same result file.
func CanonicalizeURL(rawURL, stripSubdomain string) string {
	u := strings.TrimPrefix(rawURL, "https://")
	u = strings.TrimPrefix(u, "http://")
	if stripSubdomain != "" {
		u = strings.TrimPrefix(u, stripSubdomain+".")
	}
	return u
}

// URLHash returns the hex SHA-1 of the canonicalized URL, the third
// segment of the file key.
func URLHash(rawURL string) string {
	sum := sha1.Sum([]byte(CanonicalizeURL(rawURL, DefaultStripSubdomain))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
