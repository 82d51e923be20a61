package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
)

// CreateUserInput holds the raw profile fields; nil means absent.
type CreateUserInput struct {
	Name   *string
	Email  *string
	Age    *float64
	Height *float64
	Weight *float64
	Goal   *string
}

type UserService struct {
	repo   user.Repository
	logger *logging.Logger
}

func NewUserService(repo user.Repository, logger *logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Default()
	}

	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (user.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Create")
	defer span.End()

	draft := user.Draft{
		Name:   input.Name,
		Email:  input.Email,
		Age:    input.Age,
		Height: input.Height,
		Weight: input.Weight,
		Goal:   input.Goal,
	}
	if err := draft.Validate(); err != nil {
		return user.Profile{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	created, err := s.repo.Create(ctx, draft.Profile())
	if err != nil {
		return user.Profile{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.DebugContext(ctx, "user created", "user_id", created.ID)
	return created, nil
}

func (s *UserService) List(ctx context.Context) ([]user.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if items == nil {
		items = []user.Profile{}
	}

	return items, nil
}
