package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/riskibarqy/fitcoach-api/internal/infrastructure/repository/memory"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func aliceInput() CreateUserInput {
	return CreateUserInput{
		Name:   ptr("Alice"),
		Email:  ptr("a@x.com"),
		Age:    ptr(30.0),
		Height: ptr(170.0),
		Weight: ptr(65.0),
		Goal:   ptr("lose weight"),
	}
}

func TestUserService_CreateThenList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewUserService(memory.NewUserRepository(nil), nil)

	created, err := service.Create(ctx, aliceInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, 30.0, created.Age)
	assert.Equal(t, 170.0, created.Height)
	assert.Equal(t, 65.0, created.Weight)
	assert.Equal(t, "lose weight", created.Goal)

	items, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created, items[0])
}

func TestUserService_CreateMissingFieldsPersistsNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewUserRepository(nil)
	service := NewUserService(repo, nil)

	_, err := service.Create(ctx, CreateUserInput{Name: ptr("Bob")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var verr *user.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 5)
	assert.NotContains(t, verr.Fields, user.FieldName)

	items, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUserService_CreateZeroNumbersAreValid(t *testing.T) {
	t.Parallel()

	input := aliceInput()
	input.Age = ptr(0.0)

	created, err := NewUserService(memory.NewUserRepository(nil), nil).Create(context.Background(), input)
	require.NoError(t, err)
	assert.Zero(t, created.Age)
}

func TestUserService_ListEmptyIsNonNil(t *testing.T) {
	t.Parallel()

	items, err := NewUserService(memory.NewUserRepository(nil), nil).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestUserService_ListIsStable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewUserService(memory.NewUserRepository(nil), nil)
	for i := 0; i < 3; i++ {
		input := aliceInput()
		input.Name = ptr("user-" + strconv.Itoa(i))
		_, err := service.Create(ctx, input)
		require.NoError(t, err)
	}

	first, err := service.List(ctx)
	require.NoError(t, err)
	second, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "user-0", first[0].Name)
	assert.Equal(t, "user-2", first[2].Name)
}

func TestUserService_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewUserService(memory.NewUserRepository(nil), nil)

	const n = 32
	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, n)
		wg  conc.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Go(func() {
			created, err := service.Create(ctx, aliceInput())
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			mu.Lock()
			ids[created.ID] = struct{}{}
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Len(t, ids, n)
	items, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, n)
}

func TestUserService_RepositoryErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("server selection timeout")
	service := NewUserService(brokenRepository{err: storeErr}, nil)

	_, err := service.Create(context.Background(), aliceInput())
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	_, err = service.List(context.Background())
	assert.ErrorIs(t, err, storeErr)
}

type brokenRepository struct {
	err error
}

func (r brokenRepository) Create(context.Context, user.Profile) (user.Profile, error) {
	return user.Profile{}, r.err
}

func (r brokenRepository) List(context.Context) ([]user.Profile, error) {
	return nil, r.err
}
