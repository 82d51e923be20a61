package cache

import (
	"context"

	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	basecache "github.com/riskibarqy/fitcoach-api/internal/platform/cache"
)

const userListKey = "user:list"

// UserRepository serves List from the TTL store and drops the cached list on
// every successful Create.
type UserRepository struct {
	next  user.Repository
	cache *basecache.Store
}

func NewUserRepository(next user.Repository, cache *basecache.Store) *UserRepository {
	return &UserRepository{next: next, cache: cache}
}

func (r *UserRepository) Create(ctx context.Context, profile user.Profile) (user.Profile, error) {
	created, err := r.next.Create(ctx, profile)
	if err != nil {
		return user.Profile{}, err
	}

	r.cache.Delete(ctx, userListKey)
	return created, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.Profile, error) {
	v, err := r.cache.GetOrLoad(ctx, userListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]user.Profile(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]user.Profile)
	return append([]user.Profile{}, items...), nil
}
