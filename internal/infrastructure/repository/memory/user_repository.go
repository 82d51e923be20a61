package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	idgen "github.com/riskibarqy/fitcoach-api/internal/platform/id"
)

// UserRepository keeps profiles in insertion order. It stands in for the
// document store in tests and when USER_STORE=memory.
type UserRepository struct {
	mu    sync.RWMutex
	items []user.Profile
	ids   idgen.Generator
	now   func() time.Time
}

func NewUserRepository(ids idgen.Generator) *UserRepository {
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}

	return &UserRepository{
		ids: ids,
		now: time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, profile user.Profile) (user.Profile, error) {
	if err := profile.Validate(); err != nil {
		return user.Profile{}, err
	}

	id, err := r.ids.NewID()
	if err != nil {
		return user.Profile{}, fmt.Errorf("generate user id: %w", err)
	}
	profile.ID = id
	profile.CreatedAt = r.now().UTC()

	r.mu.Lock()
	r.items = append(r.items, profile)
	r.mu.Unlock()

	return profile, nil
}

func (r *UserRepository) List(_ context.Context) ([]user.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.Profile, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
