package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Tomlord1122/todo/internal/domain"
	"github.com/Tomlord1122/todo/internal/repository"
)

// ErrTodoNotFound is returned for any operation on an id with no todo.
var ErrTodoNotFound = errors.New("todo not found")

// CreateTodoRequest holds the data needed to create a new todo
type CreateTodoRequest struct {
	Title    string `json:"title" validate:"required,notblank,max=255"`
	Notes    string `json:"notes"`
	Assigned string `json:"assigned" validate:"max=255"`
}

// UpdateTodoRequest holds the data for updating an existing todo.
// A nil field is left untouched.
type UpdateTodoRequest struct {
	Title     *string `json:"title" validate:"omitempty,notblank,max=255"`
	Notes     *string `json:"notes"`
	Assigned  *string `json:"assigned" validate:"omitempty,max=255"`
	Completed *bool   `json:"completed"`
}

// TodoResponse is the standard representation of a Todo returned by the service.
type TodoResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	Assigned  string `json:"assigned"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TodoListResponse is one page of todos plus the total across all pages.
type TodoListResponse struct {
	Items  []TodoResponse `json:"items"`
	Offset int            `json:"offset"`
	Limit  *int           `json:"limit,omitempty"`
	Total  int64          `json:"total"`
}

// TodoService defines the operations for managing todos.
type TodoService interface {
	CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error)
	GetTodoByID(ctx context.Context, id int64) (*TodoResponse, error)
	ListTodos(ctx context.Context, page domain.Pagination) (*TodoListResponse, error)
	UpdateTodo(ctx context.Context, id int64, req UpdateTodoRequest) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, id int64) error
	// Cleanup removes every todo and reports how many were deleted.
	Cleanup(ctx context.Context) (int64, error)
}

type todoService struct {
	repo     repository.TodoRepository
	validate *validator.Validate
	log      zerolog.Logger
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository, log zerolog.Logger) TodoService {
	return &todoService{
		repo:     repo,
		validate: newValidator(),
		log:      log.With().Str("component", "todo_service").Logger(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so field errors match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

func toResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        todo.ID,
		Title:     todo.Title,
		Notes:     todo.Notes,
		Assigned:  todo.Assigned,
		Completed: todo.Completed,
		CreatedAt: todo.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: todo.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *todoService) CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Assigned = strings.TrimSpace(req.Assigned)
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	newTodo := &domain.Todo{
		Title:    req.Title,
		Notes:    req.Notes,
		Assigned: req.Assigned,
	}

	if err := s.repo.Create(ctx, newTodo); err != nil {
		s.log.Error().Err(err).Msg("creating todo in repository")
		return nil, fmt.Errorf("failed to create todo item: %w", err)
	}

	response := toResponse(newTodo)
	return &response, nil
}

func (s *todoService) GetTodoByID(ctx context.Context, id int64) (*TodoResponse, error) {
	todo, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	response := toResponse(todo)
	return &response, nil
}

func (s *todoService) ListTodos(ctx context.Context, page domain.Pagination) (*TodoListResponse, error) {
	if err := s.validateStruct(page); err != nil {
		return nil, err
	}

	todos, err := s.repo.List(ctx, page)
	if err != nil {
		s.log.Error().Err(err).Msg("listing todos from repository")
		return nil, fmt.Errorf("failed to retrieve todo items: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("counting todos in repository")
		return nil, fmt.Errorf("failed to count todo items: %w", err)
	}

	items := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		items = append(items, toResponse(&todos[i]))
	}

	return &TodoListResponse{
		Items:  items,
		Offset: page.OffsetOrDefault(),
		Limit:  page.Limit,
		Total:  total,
	}, nil
}

// UpdateTodo applies the provided fields on top of the stored todo.
func (s *todoService) UpdateTodo(ctx context.Context, id int64, req UpdateTodoRequest) (*TodoResponse, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if req.Assigned != nil {
		trimmed := strings.TrimSpace(*req.Assigned)
		req.Assigned = &trimmed
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	existingTodo, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		existingTodo.Title = *req.Title
	}
	if req.Notes != nil {
		existingTodo.Notes = *req.Notes
	}
	if req.Assigned != nil {
		existingTodo.Assigned = *req.Assigned
	}
	if req.Completed != nil {
		existingTodo.Completed = *req.Completed
	}

	rows, err := s.repo.Update(ctx, existingTodo)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("updating todo in repository")
		return nil, fmt.Errorf("failed to update todo item: %w", err)
	}
	// Deleted between the read and the write.
	if rows == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrTodoNotFound, id)
	}

	response := toResponse(existingTodo)
	return &response, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id int64) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("deleting todo from repository")
		return fmt.Errorf("failed to delete todo item: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %d", ErrTodoNotFound, id)
	}
	return nil
}

func (s *todoService) Cleanup(ctx context.Context) (int64, error) {
	rows, err := s.repo.DeleteAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("deleting all todos from repository")
		return 0, fmt.Errorf("failed to clean up todo items: %w", err)
	}
	s.log.Info().Int64("deleted", rows).Msg("todos cleaned up")
	return rows, nil
}

func (s *todoService) find(ctx context.Context, id int64) (*domain.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrTodoNotFound, id)
	}
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("fetching todo from repository")
		return nil, fmt.Errorf("failed to retrieve todo item: %w", err)
	}
	return todo, nil
}
