package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trotyl/uestc-sdk-go/internal/models"
)

func TestSnapshotFetcherServesRepeatsFromSnapshot(t *testing.T) {
	next := &fakeFetcher{courses: portalCourses()}
	repo := &stubCacheRepo{}
	metrics := NewMetricsService(nil)
	cacheSvc := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	fetcher := NewSnapshotFetcher(next, cacheSvc, metrics, 0, zap.NewNop())
	opt := models.SearchOption{Filters: map[string]string{"teacher": "zhang"}}

	first, err := fetcher.SearchForCourses(context.Background(), opt)
	require.NoError(t, err)
	second, err := fetcher.SearchForCourses(context.Background(), opt)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.courseCalls)
	assert.Equal(t, 1, repo.sets)
	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.SnapshotHits)
	assert.Equal(t, uint64(1), snapshot.SnapshotMisses)
}

func TestSnapshotFetcherDisabledPassesThrough(t *testing.T) {
	next := &fakeFetcher{people: portalPeople()}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	fetcher := NewSnapshotFetcher(next, cacheSvc, nil, time.Minute, nil)

	for i := 0; i < 3; i++ {
		people, err := fetcher.SearchForPeople(context.Background(), models.SearchOption{})
		require.NoError(t, err)
		assert.Len(t, people, 2)
	}
	assert.Equal(t, 3, next.peopleCalls)
}

func TestSnapshotFetcherDoesNotStoreFailures(t *testing.T) {
	next := &fakeFetcher{err: errors.New("portal down")}
	repo := &stubCacheRepo{}
	cacheSvc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	fetcher := NewSnapshotFetcher(next, cacheSvc, nil, time.Minute, nil)

	_, err := fetcher.SearchForCourses(context.Background(), models.SearchOption{})

	assert.EqualError(t, err, "portal down")
	assert.Zero(t, repo.sets)
}

// gatedFetcher blocks every course search until release is closed and reports the
// context state seen by the portal call.
type gatedFetcher struct {
	fakeFetcher
	started     chan struct{}
	release     chan struct{}
	startedOnce sync.Once
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		fakeFetcher: fakeFetcher{courses: portalCourses()},
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedFetcher) SearchForCourses(ctx context.Context, opt models.SearchOption) ([]models.Course, error) {
	g.startedOnce.Do(func() { close(g.started) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.fakeFetcher.SearchForCourses(ctx, opt)
}

func TestSnapshotFetcherCancellationStaysWithCaller(t *testing.T) {
	next := newGatedFetcher()
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	fetcher := NewSnapshotFetcher(next, cacheSvc, nil, time.Minute, nil)
	opt := models.SearchOption{Filters: map[string]string{"teacher": "zhang"}}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := fetcher.SearchForCourses(ctxA, opt)
		errA <- err
	}()
	<-next.started

	type outcome struct {
		courses []models.Course
		err     error
	}
	resultB := make(chan outcome, 1)
	go func() {
		courses, err := fetcher.SearchForCourses(context.Background(), opt)
		resultB <- outcome{courses: courses, err: err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(next.release)
	b := <-resultB
	require.NoError(t, b.err)
	assert.Equal(t, []string{"c-1", "c-3"}, courseIDs(b.courses))
	assert.LessOrEqual(t, next.calls(), 2)
}

func TestSnapshotFetcherReplacesUnreadableSnapshot(t *testing.T) {
	next := &fakeFetcher{courses: portalCourses()}
	opt := models.SearchOption{}
	key := opt.Fingerprint(models.KindCourses)
	repo := &stubCacheRepo{store: map[string][]byte{key: []byte("{not json")}}
	cacheSvc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	fetcher := NewSnapshotFetcher(next, cacheSvc, nil, time.Minute, nil)

	courses, err := fetcher.SearchForCourses(context.Background(), opt)
	require.NoError(t, err)

	assert.Len(t, courses, 3)
	assert.Equal(t, 1, repo.deletes)
	assert.Equal(t, 1, repo.sets)
	assert.Equal(t, 1, next.courseCalls)
}
