package category

import (
	"context"
	"fmt"

	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/user"
)

type Service interface {
	GetAll(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, category Category) (Category, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Create(ctx context.Context, category Category) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if category.Priority != "" && !category.Priority.IsValid() {
		return Category{}, fmt.Errorf("%w: %s", priority.ErrInvalidPriority, category.Priority)
	}
	id, err := s.repo.Store(ctx, userId, category)
	if err != nil {
		return Category{}, err
	}
	category.Id = id
	return category, nil
}
