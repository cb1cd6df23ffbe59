package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "courses?", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "courses?", []string{"x"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "courses?"))
	assert.NoError(t, repo.Close())
}
