package database

import (
	"context"
	"crypto/sha1" //nolint:gosec // catalogue join key, not security
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// actionTypePageURL filters the catalogue to page URL entries.
const actionTypePageURL = 1

// ErrInvalidFetchType marks a lookup called with a fetch selector
// outside the supported set. The pipeline always requests FetchID, so
// hitting this is a programming error, not an operational one.
var ErrInvalidFetchType = errors.New("invalid action fetch type")

// FetchType selects which catalogue addressing mode a lookup uses.
type FetchType int

const (
	// FetchID addresses actions by their numeric identifier.
	FetchID FetchType = iota
	// FetchURL addresses actions by their full URL.
	FetchURL
	// FetchURLPrefix addresses actions by their URL prefix.
	FetchURLPrefix
)

func (t FetchType) valid() bool {
	return t >= FetchID && t <= FetchURLPrefix
}

// Action is one catalogue row matched by a hash lookup.
type Action struct {
	ID        int64         `db:"id"`
	URL       string        `db:"url"`
	URLPrefix sql.NullInt64 `db:"url_prefix"`
	Hash      string        `db:"hash"`
}

// ActionRepository resolves page URLs to the host catalogue's stable
// numeric action identifiers via a SHA-1 join on the stored name.
type ActionRepository struct {
	db *sqlx.DB
}

// NewActionRepository creates a new action repository.
func NewActionRepository(db *sqlx.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Resolve maps each URL's SHA-1 to its action id. The requested URLs
// are hashed as raw strings, with no scheme or subdomain stripping: the
// join targets the catalogue's stored name, which the host platform
// already normalizes. URLs absent from the catalogue are simply absent
// from the map.
func (r *ActionRepository) Resolve(ctx context.Context, urls []string, fetch FetchType) (map[string]int64, error) {
	hashes := make([]string, 0, len(urls))
	for _, url := range urls {
		hashes = append(hashes, HashName(url))
	}

	return r.ResolveHashes(ctx, hashes, fetch)
}

// ResolveHashes is Resolve for callers that already hold SHA-1 hashes,
// such as the result writer whose group keys come from file names.
func (r *ActionRepository) ResolveHashes(ctx context.Context, hashes []string, fetch FetchType) (map[string]int64, error) {
	if !fetch.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFetchType, fetch)
	}

	resolved := make(map[string]int64, len(hashes))
	if len(hashes) == 0 {
		return resolved, nil
	}

	query, args, err := sqlx.In(`
		SELECT idaction AS id, name AS url, url_prefix,
		       encode(digest(name, 'sha1'), 'hex') AS hash
		FROM log_action
		WHERE type = ? AND encode(digest(name, 'sha1'), 'hex') IN (?)
	`, actionTypePageURL, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to build action lookup: %w", err)
	}

	var actions []Action
	if err := r.db.SelectContext(ctx, &actions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to look up actions: %w", err)
	}

	for _, action := range actions {
		resolved[action.Hash] = action.ID
	}

	return resolved, nil
}

// HashName returns the hex SHA-1 of a catalogue name, matching the
// database-side digest in the lookup join.
func HashName(name string) string {
	sum := sha1.Sum([]byte(name)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
