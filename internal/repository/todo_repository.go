package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Tomlord1122/todo/internal/domain"
)

// ErrNotFound is returned when no todo has the requested id.
var ErrNotFound = errors.New("todo not found")

// TodoRepository defines the interface for todo data operations
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id int64) (*domain.Todo, error)
	List(ctx context.Context, page domain.Pagination) ([]domain.Todo, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, todo *domain.Todo) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create inserts todo and populates its ID and timestamps.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// FindByID retrieves a todo by its ID
func (r *gormTodoRepository) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).First(&todo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// List returns todos ordered by id, windowed by page.
func (r *gormTodoRepository) List(ctx context.Context, page domain.Pagination) ([]domain.Todo, error) {
	todos := make([]domain.Todo, 0)
	err := r.db.WithContext(ctx).
		Order("id").
		Limit(page.LimitOrDefault()).
		Offset(page.OffsetOrDefault()).
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *gormTodoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Todo{}).Count(&count).Error
	return count, err
}

// Update writes every mutable column of todo and returns the rows affected.
// UpdatedAt is refreshed by GORM.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(todo).
		Select("title", "notes", "assigned", "completed", "updated_at").
		Updates(todo)
	return result.RowsAffected, result.Error
}

// Delete permanently removes the todo and returns the rows affected.
func (r *gormTodoRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Todo{}, id)
	return result.RowsAffected, result.Error
}

// DeleteAll empties the todos table.
func (r *gormTodoRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.Todo{})
	return result.RowsAffected, result.Error
}
