// Package cache memoizes rescale results in SQLite, keyed by a digest of the
// input and the geometry it was rescaled with.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/pathfit/internal/db"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// Kind says what an entry holds.
type Kind string

const (
	KindPath Kind = "path"
	KindSVG  Kind = "svg"
)

// Stats summarizes the cache contents.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int   `json:"hits"`
	Bytes   int64 `json:"bytes"`
}

// Store reads and writes cached rescale results.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Key returns the cache key for rescaling input of the given kind from vb
// into f. Documents carry their own viewbox; pass the zero ViewBox for them.
// Strict results are keyed apart since lenient output may hide failures.
func Key(kind Kind, input []byte, vb pathdata.ViewBox, f pathdata.Frame, strict bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%t\x00%g %g %g %g\x00%g %g %g %g\x00", kind, strict,
		vb.X, vb.Y, vb.Width, vb.Height, f.Width, f.Height, f.OffsetX, f.OffsetY)
	h.Write(input)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached output for key. The bool is false on a miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT output FROM rescale_cache WHERE key = ?`, key).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE rescale_cache SET hits = hits + 1, last_used_at = datetime('now') WHERE key = ?`, key); err != nil {
		return nil, false, fmt.Errorf("touching cache entry: %w", err)
	}
	return out, true, nil
}

// Put stores output under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, kind Kind, output []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rescale_cache (key, id, kind, output) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET output = excluded.output, last_used_at = datetime('now')`,
		key, uuid.New().String(), string(kind), output)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Stats returns entry count, total hits, and total cached bytes.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(hits), 0), COALESCE(SUM(LENGTH(output)), 0)
		FROM rescale_cache`).Scan(&st.Entries, &st.Hits, &st.Bytes)
	if err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	return st, nil
}

// Purge removes entries not used within olderThan. A non-positive duration
// removes everything. Returns the number of deleted rows.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if olderThan <= 0 {
		res, err = s.db.ExecContext(ctx, `DELETE FROM rescale_cache`)
	} else {
		cutoff := time.Now().Add(-olderThan).UTC().Format(time.DateTime)
		res, err = s.db.ExecContext(ctx, `DELETE FROM rescale_cache WHERE last_used_at < ?`, cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

// RescalePath rescales d with r, serving and filling the cache. Strict
// failures are returned and never cached.
func (s *Store) RescalePath(ctx context.Context, r *pathdata.Rescaler, d string, strict bool) (out string, hit bool, err error) {
	key := Key(KindPath, []byte(d), r.ViewBox(), r.Frame(), strict)
	if cached, ok, err := s.Get(ctx, key); err != nil {
		return "", false, err
	} else if ok {
		return string(cached), true, nil
	}

	if strict {
		out, err = r.RescaleStrict(d)
		if err != nil {
			return "", false, err
		}
	} else {
		out = r.Rescale(d)
	}

	if err := s.Put(ctx, key, KindPath, []byte(out)); err != nil {
		return "", false, err
	}
	return out, false, nil
}
