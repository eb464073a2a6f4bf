package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// ErrConcurrencyConflict is returned by Update when no row matched the
// identity check at commit time.
var ErrConcurrencyConflict = errors.New("concurrency conflict: no row matched on update")

// TodoRepository defines the interface for todo item persistence.
type TodoRepository interface {
	Create(ctx context.Context, item *domain.TodoItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TodoItem, error)
	GetAll(ctx context.Context) ([]domain.TodoItem, error)
	FindWhere(ctx context.Context, query any, args ...any) ([]domain.TodoItem, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, item *domain.TodoItem) error
	Save(ctx context.Context, item *domain.TodoItem) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type gormTodoRepository struct {
	db *gorm.DB
}

func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create inserts the item. A primary key collision surfaces as
// gorm.ErrDuplicatedKey when the connection translates driver errors.
func (r *gormTodoRepository) Create(ctx context.Context, item *domain.TodoItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID returns gorm.ErrRecordNotFound when no item has the id.
func (r *gormTodoRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TodoItem, error) {
	var item domain.TodoItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetAll returns every item in insertion order.
func (r *gormTodoRepository) GetAll(ctx context.Context) ([]domain.TodoItem, error) {
	return r.find(r.db.WithContext(ctx))
}

// FindWhere returns the items matching a gorm condition, in insertion order.
func (r *gormTodoRepository) FindWhere(ctx context.Context, query any, args ...any) ([]domain.TodoItem, error) {
	return r.find(r.db.WithContext(ctx).Where(query, args...))
}

func (r *gormTodoRepository) find(tx *gorm.DB) ([]domain.TodoItem, error) {
	items := make([]domain.TodoItem, 0)
	if err := tx.Order("creation_time asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *gormTodoRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.TodoItem{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes every mutable column of item and reports
// ErrConcurrencyConflict when the row is gone. Creation time is never
// touched.
func (r *gormTodoRepository) Update(ctx context.Context, item *domain.TodoItem) error {
	res := r.updateColumns(ctx, item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrencyConflict
	}
	return nil
}

// Save writes a previously loaded item back without any conflict check.
// A row deleted in the meantime stays deleted.
func (r *gormTodoRepository) Save(ctx context.Context, item *domain.TodoItem) error {
	return r.updateColumns(ctx, item).Error
}

func (r *gormTodoRepository) updateColumns(ctx context.Context, item *domain.TodoItem) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.TodoItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"title":       item.Title,
			"description": item.Description,
			"status":      item.Status,
			"update_time": item.UpdateTime,
		})
}

func (r *gormTodoRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.TodoItem{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
