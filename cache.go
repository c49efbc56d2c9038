package comicshelf

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const catalogKey = "catalog"

// CatalogLister is the subset of Store the catalog cache reads from.
type CatalogLister interface {
	ListComics(ctx context.Context) ([]Comic, error)
	CatalogVersion(ctx context.Context) (int64, error)
}

// catalogEntry is a cached comic list and the catalog version it was read at.
type catalogEntry struct {
	version int64
	comics  []Comic
}

// CatalogCache keeps the comic list in memory with a TTL. Every read checks
// the store's catalog version, so writes from other processes (such as
// "comicshelf import") show up on the next request. Concurrent misses share
// a single store query.
type CatalogCache struct {
	store CatalogLister
	items *cache.Cache
	group singleflight.Group
}

// NewCatalogCache creates a CatalogCache backed by the given store.
func NewCatalogCache(s CatalogLister, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		store: s,
		items: cache.New(ttl, 2*ttl),
	}
}

// ListComics returns all comics ordered by title.
func (c *CatalogCache) ListComics(ctx context.Context) ([]Comic, error) {
	version, err := c.store.CatalogVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog version: %w", err)
	}
	if v, ok := c.items.Get(catalogKey); ok {
		if e := v.(catalogEntry); e.version == version {
			return e.comics, nil
		}
	}
	// The shared load must outlive the request that started it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(fmt.Sprintf("%s@%d", catalogKey, version), func() (any, error) {
		comics, err := c.store.ListComics(loadCtx)
		if err != nil {
			return nil, err
		}
		if comics == nil {
			comics = []Comic{}
		}
		c.items.SetDefault(catalogKey, catalogEntry{version: version, comics: comics})
		return comics, nil
	})
	if err != nil {
		return nil, err
	}
	comics, ok := v.([]Comic)
	if !ok {
		return nil, fmt.Errorf("catalog cache: unexpected type %T", v)
	}
	return comics, nil
}

// Sections splits comics into those available to read and those marked
// coming soon, preserving order.
func Sections(comics []Comic) (available, comingSoon []Comic) {
	for _, c := range comics {
		if c.ComingSoon {
			comingSoon = append(comingSoon, c)
		} else {
			available = append(available, c)
		}
	}
	return available, comingSoon
}
