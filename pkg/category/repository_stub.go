package category

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId     int
	categories map[int]map[int]Category // userId -> id -> category
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{categories: map[int]map[int]Category{}}
}

func (s *RepositoryStub) GetAll(ctx context.Context, userId int) ([]Category, error) {
	var categories []Category
	for _, c := range s.categories[userId] {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id int) (Category, error) {
	c, ok := s.categories[userId][id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, category Category) (int, error) {
	s.nextId++
	category.Id = s.nextId
	if s.categories[userId] == nil {
		s.categories[userId] = map[int]Category{}
	}
	s.categories[userId][category.Id] = category
	return category.Id, nil
}

func (s *RepositoryStub) Reset() {
	s.nextId = 0
	s.categories = map[int]map[int]Category{}
}
