// Package store persists longitude samples and search results in a local
// bbolt database so repeated queries do not recompute or refetch them.
//
// Buckets:
//
//	longitudes - oracle samples keyed by source, body and Unix second
//	results    - search results keyed by a canonical query key
//	_meta      - internal: schema version, created_at
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/thurmanmarka/retroglide/internal/solver"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

var (
	bucketLongitudes = []byte("longitudes")
	bucketResults    = []byte("results")
	bucketInternal   = []byte("_meta")
)

// AllBuckets lists every user-facing bucket for stats and clear operations.
var AllBuckets = []string{"longitudes", "results"}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path, creating parent
// directories, and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketLongitudes, bucketResults, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(strconv.Itoa(schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// Meta returns the internal metadata entries.
func (s *Store) Meta() (map[string]string, error) {
	out := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInternal).ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	return out, err
}

// ─── Longitudes ───────────────────────────────────────────────────────────────

// Sample is one stored oracle answer.
type Sample struct {
	Body      string
	Time      time.Time
	Longitude float64
}

// longitudeKey is source|body|unix-seconds. Samples never carry sub-second
// precision, so the second is the identity of an instant.
func longitudeKey(source, body string, t time.Time) []byte {
	return []byte(source + "|" + body + "|" + strconv.FormatInt(t.Unix(), 10))
}

func encodeFloat(v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func decodeFloat(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("corrupt longitude value: %d bytes", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// PutLongitudes writes samples for source in a single transaction.
func (s *Store) PutLongitudes(source string, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLongitudes)
		for _, smp := range samples {
			if err := b.Put(longitudeKey(source, smp.Body, smp.Time), encodeFloat(smp.Longitude)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetLongitude returns (lon, true, nil) if a sample is stored and
// (0, false, nil) if not.
func (s *Store) GetLongitude(source, body string, t time.Time) (float64, bool, error) {
	var (
		lon   float64
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketLongitudes).Get(longitudeKey(source, body, t))
		if v == nil {
			return nil
		}
		var err error
		lon, err = decodeFloat(v)
		found = err == nil
		return err
	})
	return lon, found, err
}

// ─── Results ──────────────────────────────────────────────────────────────────

// ResultKey builds the canonical key for a search result.
// Format: kind:<k>|source:<s>|body:<b>|time:<unix>|direction:<d>|regime:<r>
// Empty optional fields are omitted.
func ResultKey(kind, source, body string, t time.Time, direction, regime string) string {
	parts := []string{
		"kind:" + kind,
		"source:" + source,
		"body:" + body,
		"time:" + strconv.FormatInt(t.Unix(), 10),
	}
	if direction != "" {
		parts = append(parts, "direction:"+direction)
	}
	if regime != "" {
		parts = append(parts, "regime:"+regime)
	}
	return strings.Join(parts, "|")
}

// storedResult is the on-disk envelope for a search result.
type storedResult struct {
	Result   solver.Result `json:"result"`
	StoredAt time.Time     `json:"stored_at"`
}

// PutResult stores a search result under key.
func (s *Store) PutResult(key string, r solver.Result) error {
	b, err := json.Marshal(storedResult{Result: r, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Put([]byte(key), b)
	})
}

// GetResult returns (result, true, nil) if key is stored and
// (zero, false, nil) if not.
func (s *Store) GetResult(key string) (solver.Result, bool, error) {
	var (
		env   storedResult
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketResults).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &env)
	})
	if err != nil {
		return solver.Result{}, false, err
	}
	return env.Result, found, nil
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Bytes int64  `json:"bytes"`
}

// Stats returns row counts and approximate sizes for all user-facing
// buckets, sorted by name.
func (s *Store) Stats() ([]BucketStats, error) {
	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			st := BucketStats{Name: name}
			if err := b.ForEach(func(k, v []byte) error {
				st.Count++
				st.Bytes += int64(len(k) + len(v))
				return nil
			}); err != nil {
				return err
			}
			stats = append(stats, st)
		}
		return nil
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, err
}

// ClearBucket deletes all entries in the named user-facing bucket.
func (s *Store) ClearBucket(name string) error {
	known := false
	for _, b := range AllBuckets {
		known = known || b == name
	}
	if !known {
		return fmt.Errorf("unknown bucket %q: want one of %s", name, strings.Join(AllBuckets, ", "))
	}

	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}
