package extractor

import (
	"fmt"
	"os"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// DefaultCacheCapacity is the number of files whose records a RecordCache keeps.
const DefaultCacheCapacity = 10_000

type cacheEntry struct {
	modTime time.Time
	size    int64
	records []extraction.MethodRecord
}

// RecordCache remembers the records of unchanged files between runs of the same job,
// keyed by absolute path and validated by size and modification time.
// Trees are never cached, only the records visited from them.
type RecordCache struct {
	cache otter.Cache[string, cacheEntry]
}

// NewRecordCache creates a cache holding up to capacity files.
func NewRecordCache(capacity int) (*RecordCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	c, err := otter.MustBuilder[string, cacheEntry](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build record cache: %w", err)
	}
	return &RecordCache{cache: c}, nil
}

// Get returns cached records for path if info still matches the cached file.
func (rc *RecordCache) Get(path string, info os.FileInfo) ([]extraction.MethodRecord, bool) {
	entry, ok := rc.cache.Get(path)
	if !ok {
		return nil, false
	}
	if entry.size != info.Size() || !entry.modTime.Equal(info.ModTime()) {
		rc.cache.Delete(path)
		return nil, false
	}
	out := make([]extraction.MethodRecord, len(entry.records))
	copy(out, entry.records)
	return out, true
}

// Set stores the records produced for path.
func (rc *RecordCache) Set(path string, info os.FileInfo, records []extraction.MethodRecord) {
	stored := make([]extraction.MethodRecord, len(records))
	copy(stored, records)
	rc.cache.Set(path, cacheEntry{
		modTime: info.ModTime(),
		size:    info.Size(),
		records: stored,
	})
}

// Invalidate drops the entries for paths.
func (rc *RecordCache) Invalidate(paths ...string) {
	for _, p := range paths {
		rc.cache.Delete(p)
	}
}

// Len returns the number of cached files.
func (rc *RecordCache) Len() int {
	return rc.cache.Size()
}

// Close stops the cache's background work.
func (rc *RecordCache) Close() {
	rc.cache.Close()
}
