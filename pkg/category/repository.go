package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/budgetwise/pkg/priority"
	log "github.com/sirupsen/logrus"
)

var ErrCategoryNotFound = errors.New("category not found")

type Repository interface {
	GetAll(ctx context.Context, userId int) ([]Category, error)
	Get(ctx context.Context, userId int, id int) (Category, error)
	Store(ctx context.Context, userId int, category Category) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetAll(ctx context.Context, userId int) ([]Category, error) {
	query := `SELECT id, name, priority, color, icon FROM category WHERE user_id = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		var p string
		if err := rows.Scan(&c.Id, &c.Name, &p, &c.Color, &c.Icon); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		c.Priority = priority.Priority(p)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return categories, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id int) (Category, error) {
	query := `SELECT id, name, priority, color, icon FROM category WHERE user_id = $1 AND id = $2`
	var c Category
	var p string
	err := r.db.QueryRow(ctx, query, userId, id).Scan(&c.Id, &c.Name, &p, &c.Color, &c.Icon)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	}
	if err != nil {
		log.Errorf("failed to get category %d: %v", id, err)
		return Category{}, err
	}
	c.Priority = priority.Priority(p)
	return c, nil
}

func (r *RepositoryImpl) Store(ctx context.Context, userId int, category Category) (int, error) {
	query := `INSERT INTO category (user_id, name, priority, color, icon) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, userId, category.Name, string(category.Priority), category.Color, category.Icon).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store category: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}
