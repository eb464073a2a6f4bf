package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// TodoService defines the operations for managing todo items.
//
// Methods returning an item return (nil, nil) when no item has the given
// id. Errors are reserved for conflicts, validation failures and
// persistence failures.
type TodoService interface {
	// ListAll returns every stored item in insertion order.
	ListAll(ctx context.Context) ([]domain.TodoItem, error)

	// GetByID looks up a single item.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TodoItem, error)

	// Create stores a new item, generating its id when it is unset, and
	// stamps both timestamps with the current time.
	Create(ctx context.Context, item domain.TodoItem) (*domain.TodoItem, error)

	// Update replaces title, description and status of the item with id.
	Update(ctx context.Context, id uuid.UUID, item domain.TodoItem) (*domain.TodoItem, error)

	// Delete removes the item and reports whether it existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*domain.TodoItem, error)
	UpdateDescription(ctx context.Context, id uuid.UUID, description *string) (*domain.TodoItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.TodoItem, error)
}

type todoService struct {
	repo   repository.TodoRepository
	clock  func() time.Time
	logger *zap.Logger
}

// NewTodoService creates a TodoService backed by repo.
func NewTodoService(repo repository.TodoRepository, opts ...Option) TodoService {
	s := &todoService{
		repo:   repo,
		clock:  time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *todoService) ListAll(ctx context.Context) ([]domain.TodoItem, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("list todo items", zap.Error(err))
		return nil, fmt.Errorf("list todo items: %w", err)
	}
	return items, nil
}

func (s *todoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TodoItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("get todo item", zap.Stringer("id", id), zap.Error(err))
		return nil, fmt.Errorf("get todo item %s: %w", id, err)
	}
	return item, nil
}

func (s *todoService) Create(ctx context.Context, item domain.TodoItem) (*domain.TodoItem, error) {
	if err := validate(item.Title, item.Status); err != nil {
		return nil, err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	exists, err := s.repo.Exists(ctx, item.ID)
	if err != nil {
		s.logger.Error("check todo item before create", zap.Stringer("id", item.ID), zap.Error(err))
		return nil, fmt.Errorf("check todo item %s: %w", item.ID, err)
	}
	if exists {
		return nil, &DuplicateIDError{ID: item.ID}
	}

	now := s.now()
	item.CreationTime = now
	item.UpdateTime = now

	if err := s.repo.Create(ctx, &item); err != nil {
		// lost a race against a concurrent create with the same id
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &DuplicateIDError{ID: item.ID}
		}
		s.logger.Error("create todo item", zap.Stringer("id", item.ID), zap.Error(err))
		return nil, fmt.Errorf("create todo item %s: %w", item.ID, err)
	}

	s.logger.Debug("todo item created", zap.Stringer("id", item.ID))
	return &item, nil
}

func (s *todoService) Update(ctx context.Context, id uuid.UUID, item domain.TodoItem) (*domain.TodoItem, error) {
	if id != item.ID {
		return nil, &IDMismatchError{PathID: id, BodyID: item.ID}
	}
	if err := validate(item.Title, item.Status); err != nil {
		return nil, err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	item.CreationTime = current.CreationTime
	item.UpdateTime = s.nextUpdateTime(current.UpdateTime)

	if err := s.repo.Update(ctx, &item); err != nil {
		if !errors.Is(err, repository.ErrConcurrencyConflict) {
			s.logger.Error("update todo item", zap.Stringer("id", id), zap.Error(err))
			return nil, fmt.Errorf("update todo item %s: %w", id, err)
		}

		// the row matched nothing at commit time
		exists, existsErr := s.repo.Exists(ctx, id)
		if existsErr != nil {
			s.logger.Error("check todo item after conflict", zap.Stringer("id", id), zap.Error(existsErr))
			return nil, fmt.Errorf("check todo item %s: %w", id, existsErr)
		}
		if !exists {
			return nil, nil
		}
		s.logger.Error("update todo item", zap.Stringer("id", id), zap.Error(err))
		return nil, fmt.Errorf("update todo item %s: %w", id, err)
	}
	return &item, nil
}

func (s *todoService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete todo item", zap.Stringer("id", id), zap.Error(err))
		return false, fmt.Errorf("delete todo item %s: %w", id, err)
	}
	return deleted, nil
}

func (s *todoService) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*domain.TodoItem, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(item *domain.TodoItem) {
		item.Title = title
	})
}

func (s *todoService) UpdateDescription(ctx context.Context, id uuid.UUID, description *string) (*domain.TodoItem, error) {
	return s.mutate(ctx, id, func(item *domain.TodoItem) {
		item.Description = description
	})
}

func (s *todoService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.TodoItem, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(item *domain.TodoItem) {
		item.Status = status
	})
}

// mutate loads the item, applies one change, bumps the update time and
// writes it back. There is no conflict detection: concurrent field updates
// are last-write-wins.
func (s *todoService) mutate(ctx context.Context, id uuid.UUID, apply func(*domain.TodoItem)) (*domain.TodoItem, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}

	apply(item)
	item.UpdateTime = s.nextUpdateTime(item.UpdateTime)

	if err := s.repo.Save(ctx, item); err != nil {
		s.logger.Error("save todo item", zap.Stringer("id", id), zap.Error(err))
		return nil, fmt.Errorf("save todo item %s: %w", id, err)
	}
	return item, nil
}

// now is truncated to the precision Postgres keeps.
func (s *todoService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

func (s *todoService) nextUpdateTime(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

func validate(title string, status domain.Status) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	return validateStatus(status)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

func validateStatus(status domain.Status) error {
	if !status.Valid() {
		return &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("%d is not a declared status", int(status)),
			Err:    domain.ErrInvalidStatus,
		}
	}
	return nil
}
