// Package cache provides read-through caches over stored records. Records
// are immutable once written, so cached entries never go stale in content;
// the TTL only bounds memory.
package cache

import (
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropanchorapp/anchorpds/internal/domain"
)

const recordTTL = 10 * time.Minute

// MemcachedRecords caches records in a shared memcached cluster.
type MemcachedRecords struct {
	mc *memcache.Client
}

func NewMemcachedRecords(mc *memcache.Client) *MemcachedRecords {
	return &MemcachedRecords{mc: mc}
}

func (c *MemcachedRecords) Get(uri string) (*domain.StoredCheckin, bool) {
	item, err := c.mc.Get(recordKey(uri))
	if err != nil {
		return nil, false
	}

	var checkin domain.StoredCheckin
	if err := json.Unmarshal(item.Value, &checkin); err != nil {
		return nil, false
	}
	return &checkin, true
}

func (c *MemcachedRecords) Set(uri string, checkin domain.StoredCheckin) {
	encoded, err := json.Marshal(checkin)
	if err != nil {
		return
	}
	_ = c.mc.Set(&memcache.Item{
		Key:        recordKey(uri),
		Value:      encoded,
		Expiration: int32(recordTTL / time.Second),
	})
}

func recordKey(uri string) string {
	return "record:" + uri
}

// LocalRecords is the in-process fallback used when no memcached address is
// configured.
type LocalRecords struct {
	cache *gocache.Cache
}

func NewLocalRecords() *LocalRecords {
	return &LocalRecords{
		cache: gocache.New(recordTTL, 15*time.Minute),
	}
}

func (c *LocalRecords) Get(uri string) (*domain.StoredCheckin, bool) {
	x, found := c.cache.Get(recordKey(uri))
	if !found {
		return nil, false
	}
	checkin := x.(domain.StoredCheckin)
	return &checkin, true
}

func (c *LocalRecords) Set(uri string, checkin domain.StoredCheckin) {
	c.cache.Set(recordKey(uri), checkin, gocache.DefaultExpiration)
}
