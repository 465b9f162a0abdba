// Package stores provides concrete cache store implementations
package stores

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
)

type pageCacheKey struct {
	key     string
	variant repositories.Variant
}

type pageEntry struct {
	raw     []byte // JSON of the PageRecord; decoded on every hit
	expires time.Time
}

type keysEntry struct {
	keys    []string
	expires time.Time
}

// PageStoreStats is a point-in-time view of the store.
type PageStoreStats struct {
	Pages  int   `json:"pages"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// PageStore caches serialized page records with a TTL.
type PageStore struct {
	ttl  time.Duration
	now  func() time.Time
	mu   sync.RWMutex
	page map[pageCacheKey]pageEntry
	keys map[repositories.Variant]keysEntry

	statsMu sync.Mutex
	hits    int64
	misses  int64
}

// NewPageStore creates a page store. A ttl <= 0 disables expiry.
func NewPageStore(ttl time.Duration) *PageStore {
	return &PageStore{
		ttl:  ttl,
		now:  time.Now,
		page: make(map[pageCacheKey]pageEntry),
		keys: make(map[repositories.Variant]keysEntry),
	}
}

func (ps *PageStore) expiry() time.Time {
	if ps.ttl <= 0 {
		return time.Time{}
	}
	return ps.now().Add(ps.ttl)
}

func (ps *PageStore) live(expires time.Time) bool {
	return expires.IsZero() || ps.now().Before(expires)
}

func (ps *PageStore) count(hit bool) {
	ps.statsMu.Lock()
	if hit {
		ps.hits++
	} else {
		ps.misses++
	}
	ps.statsMu.Unlock()
}

// GetPage returns a copy of the cached record.
func (ps *PageStore) GetPage(key string, variant repositories.Variant) (*repositories.PageRecord, bool) {
	ps.mu.RLock()
	entry, ok := ps.page[pageCacheKey{key, variant}]
	ps.mu.RUnlock()

	if !ok || !ps.live(entry.expires) {
		ps.count(false)
		return nil, false
	}

	var rec repositories.PageRecord
	if err := json.Unmarshal(entry.raw, &rec); err != nil {
		ps.count(false)
		return nil, false
	}
	ps.count(true)
	return &rec, true
}

// SetPage stores a copy of record under (key, record.Variant). A key the
// cached listing does not know yet drops that listing.
func (ps *PageStore) SetPage(key string, record *repositories.PageRecord) {
	if record == nil {
		return
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.page[pageCacheKey{key, record.Variant}] = pageEntry{raw: raw, expires: ps.expiry()}
	if k, ok := ps.keys[record.Variant]; ok && !slices.Contains(k.keys, key) {
		delete(ps.keys, record.Variant)
	}
}

// GetPageKeys returns the cached key listing for variant.
func (ps *PageStore) GetPageKeys(variant repositories.Variant) ([]string, bool) {
	ps.mu.RLock()
	entry, ok := ps.keys[variant]
	ps.mu.RUnlock()

	if !ok || !ps.live(entry.expires) {
		ps.count(false)
		return nil, false
	}
	ps.count(true)
	return append([]string(nil), entry.keys...), true
}

// SetPageKeys caches the key listing for variant.
func (ps *PageStore) SetPageKeys(variant repositories.Variant, keys []string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.keys[variant] = keysEntry{keys: append([]string(nil), keys...), expires: ps.expiry()}
}

// InvalidatePage drops every variant of key and the key listings.
func (ps *PageStore) InvalidatePage(key string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for ck := range ps.page {
		if ck.key == key {
			delete(ps.page, ck)
		}
	}
	clear(ps.keys)
}

// InvalidateAll empties the store.
func (ps *PageStore) InvalidateAll() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	clear(ps.page)
	clear(ps.keys)
}

// PurgeExpired removes expired entries and returns how many were dropped.
func (ps *PageStore) PurgeExpired() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	purged := 0
	for ck, e := range ps.page {
		if !ps.live(e.expires) {
			delete(ps.page, ck)
			purged++
		}
	}
	for v, e := range ps.keys {
		if !ps.live(e.expires) {
			delete(ps.keys, v)
			purged++
		}
	}
	return purged
}

// Stats reports entry count and hit ratio inputs.
func (ps *PageStore) Stats() PageStoreStats {
	ps.mu.RLock()
	n := len(ps.page)
	ps.mu.RUnlock()
	ps.statsMu.Lock()
	defer ps.statsMu.Unlock()
	return PageStoreStats{Pages: n, Hits: ps.hits, Misses: ps.misses}
}
