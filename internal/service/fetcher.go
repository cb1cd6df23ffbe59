package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/trotyl/uestc-sdk-go/internal/models"
)

// Fetcher performs live searches against the portal.
type Fetcher interface {
	SearchForCourses(ctx context.Context, opt models.SearchOption) ([]models.Course, error)
	SearchForPeople(ctx context.Context, opt models.SearchOption) ([]models.Person, error)
}

// SnapshotFetcher decorates a Fetcher: identical concurrent searches share one portal call, and
// results are kept as short-lived snapshots so bursts of the same search skip the portal.
type SnapshotFetcher struct {
	next    Fetcher
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	group   singleflight.Group
}

// NewSnapshotFetcher wraps next. A disabled cache service leaves only call collapsing.
func NewSnapshotFetcher(next Fetcher, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SnapshotFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotFetcher{next: next, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// SearchForCourses implements Fetcher.
func (f *SnapshotFetcher) SearchForCourses(ctx context.Context, opt models.SearchOption) ([]models.Course, error) {
	return snapshotFetch(ctx, f, models.KindCourses, opt, f.next.SearchForCourses)
}

// SearchForPeople implements Fetcher.
func (f *SnapshotFetcher) SearchForPeople(ctx context.Context, opt models.SearchOption) ([]models.Person, error) {
	return snapshotFetch(ctx, f, models.KindPeople, opt, f.next.SearchForPeople)
}

func snapshotFetch[T any](ctx context.Context, f *SnapshotFetcher, kind string, opt models.SearchOption,
	call func(context.Context, models.SearchOption) ([]T, error)) ([]T, error) {
	key := opt.Fingerprint(kind)

	var cached []T
	hit, err := f.cache.Get(ctx, key, &cached)
	switch {
	case err == nil && hit:
		f.logger.Debug("served search from snapshot", zap.String("key", key))
		return cached, nil
	case err != nil && ctx.Err() == nil:
		// An unreadable snapshot is dropped so the live result can replace it.
		_ = f.cache.Invalidate(ctx, key)
	}

	// The shared call outlives any single caller; each caller only stops waiting on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (interface{}, error) {
		start := time.Now()
		result, err := call(shared, opt)
		f.metrics.ObserveFetch(kind, time.Since(start))
		if err != nil {
			return nil, err
		}
		_ = f.cache.Set(shared, key, result, f.ttl)
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			f.logger.Debug("collapsed concurrent search", zap.String("key", key))
		}
		return res.Val.([]T), nil
	}
}
