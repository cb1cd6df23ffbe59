package service

import (
	"context"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trotyl/uestc-sdk-go/internal/models"
	"github.com/trotyl/uestc-sdk-go/internal/repository"
	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

// IdentityProvider exposes the user confirmed for the current session, or nil.
type IdentityProvider interface {
	Current() *models.User
}

// RecordStore is the write side of the record cache used for write-through.
type RecordStore interface {
	Put(key string, value any)
}

// SearchService runs a live search and falls back to the record cache when the portal fails.
type SearchService struct {
	fetcher   Fetcher
	seeker    *Seeker
	store     RecordStore
	identity  IdentityProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSearchService wires the search collaborators.
func NewSearchService(fetcher Fetcher, seeker *Seeker, store RecordStore, identity IdentityProvider, metrics *MetricsService, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		fetcher:   fetcher,
		seeker:    seeker,
		store:     store,
		identity:  identity,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
	}
}

// SearchCourses returns matching courses and whether they came from the cache fallback.
func (s *SearchService) SearchCourses(ctx context.Context, opt models.SearchOption) ([]models.Course, bool, error) {
	return search(ctx, s, models.KindCourses, opt, s.fetcher.SearchForCourses, s.seeker.SearchForCourses)
}

// SearchPeople returns matching people and whether they came from the cache fallback.
func (s *SearchService) SearchPeople(ctx context.Context, opt models.SearchOption) ([]models.Person, bool, error) {
	return search(ctx, s, models.KindPeople, opt, s.fetcher.SearchForPeople, s.seeker.SearchForPeople)
}

func (s *SearchService) authorize(kind string) error {
	if s.identity == nil || !s.identity.Current().IsConfirmed() {
		s.metrics.RecordSearch(kind, OutcomeDenied)
		return appErrors.Clone(appErrors.ErrAuthorizationRequired, "register a confirmed student before searching "+kind)
	}
	return nil
}

func search[T any](ctx context.Context, s *SearchService, kind string, opt models.SearchOption,
	live func(context.Context, models.SearchOption) ([]T, error),
	offline func(models.SearchOption) []T) ([]T, bool, error) {
	if err := s.validator.Struct(opt.Normalised()); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search option")
	}
	if err := s.authorize(kind); err != nil {
		return nil, false, err
	}

	result, err := live(ctx, opt)
	if err == nil {
		if result == nil {
			result = []T{}
		}
		s.store.Put(repository.SearchKey(kind, opt), slices.Clone(result))
		s.metrics.RecordSearch(kind, OutcomeLive)
		return result, false, nil
	}

	// A caller that gave up gets its own error back instead of cached results.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}

	s.logger.Warn("live search failed, using record cache",
		zap.String("kind", kind),
		zap.String("key", repository.SearchKey(kind, opt)),
		zap.Error(err))
	s.metrics.RecordSearch(kind, OutcomeFallback)
	return offline(opt), true, nil
}
