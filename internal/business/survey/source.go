package survey

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// RecordSource reads the full record collection. Implementations fail open:
// any failure yields an empty slice.
type RecordSource interface {
	FetchAllRecords(ctx context.Context) []model.SurveyRecord
}

const recordsCacheKey = "records:all"

// CachedSource memoizes the record collection for a short TTL so page views
// don't each hit the sheet. A TTL of zero disables caching.
type CachedSource struct {
	source RecordSource
	cache  *cache.Cache
	ttl    time.Duration
}

func NewCachedSource(source RecordSource, ttl time.Duration) *CachedSource {
	cleanup := 2 * ttl
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &CachedSource{
		source: source,
		cache:  cache.New(ttl, cleanup),
		ttl:    ttl,
	}
}

// Records returns the record collection, bypassing the cache when reload is set.
// Empty results are never cached so a transient upstream failure is retried on the next view.
func (s *CachedSource) Records(ctx context.Context, reload bool) []model.SurveyRecord {
	if s.ttl > 0 && !reload {
		if v, ok := s.cache.Get(recordsCacheKey); ok {
			return v.([]model.SurveyRecord)
		}
	}
	records := s.source.FetchAllRecords(ctx)
	if s.ttl > 0 && len(records) > 0 {
		s.cache.Set(recordsCacheKey, records, s.ttl)
	}
	return records
}

// FetchAllRecords lets a CachedSource stand in wherever a RecordSource is expected.
func (s *CachedSource) FetchAllRecords(ctx context.Context) []model.SurveyRecord {
	return s.Records(ctx, false)
}

// Invalidate drops the cached collection; the next read goes upstream.
func (s *CachedSource) Invalidate() {
	s.cache.Delete(recordsCacheKey)
}
