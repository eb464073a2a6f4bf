package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
	"github.com/Tomlord1122/todo-api/internal/service"
)

// stepClock returns t and then advances it by step on every call.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T, clock func() time.Time) (service.TodoService, repository.TodoRepository) {
	t.Helper()

	dbService, err := database.New(config.Database{
		Driver:     config.DriverSQLite,
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbService.Close() })
	require.NoError(t, database.Migrate(dbService.GetDB()))

	repo := repository.NewGormTodoRepository(dbService.GetDB())
	return service.NewTodoService(repo, service.WithClock(clock)), repo
}

func TestTodoService_CreateAndGet(t *testing.T) {
	clock := &stepClock{t: t0, step: time.Second}
	svc, _ := setupService(t, clock.Now)
	ctx := context.Background()

	desc := "two litres"
	created, err := svc.Create(ctx, domain.TodoItem{
		Title:        "Buy milk",
		Description:  &desc,
		Status:       domain.StatusNew,
		CreationTime: t0.Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.CreationTime.Equal(t0))
	assert.True(t, created.UpdateTime.Equal(t0))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.True(t, got.CreationTime.Equal(t0))
	assert.True(t, got.UpdateTime.Equal(t0))
}

func TestTodoService_CreateKeepsCallerID(t *testing.T) {
	svc, _ := setupService(t, time.Now)
	id := uuid.New()

	created, err := svc.Create(context.Background(), domain.TodoItem{ID: id, Title: "Read"})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
}

func TestTodoService_CreateDuplicateID(t *testing.T) {
	svc, _ := setupService(t, time.Now)
	ctx := context.Background()

	existing, err := svc.Create(ctx, domain.TodoItem{Title: "Existing Task"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.TodoItem{ID: existing.ID, Title: "New Task", Status: domain.StatusCompleted})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConflict)

	var dupErr *service.DuplicateIDError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, existing.ID, dupErr.ID)
	assert.Equal(t, "a todo item with ID "+existing.ID.String()+" already exists", err.Error())

	got, err := svc.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Existing Task", got.Title)
	assert.Equal(t, domain.StatusNew, got.Status)
}

func TestTodoService_CreateValidation(t *testing.T) {
	svc, _ := setupService(t, time.Now)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.TodoItem{Title: "   "})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Create(ctx, domain.TodoItem{Title: "Invalid Task", Status: domain.Status(999)})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	items, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTodoService_ListAll(t *testing.T) {
	clock := &stepClock{t: t0, step: time.Second}
	svc, _ := setupService(t, clock.Now)
	ctx := context.Background()

	for _, title := range []string{"todo", "todo 2"} {
		_, err := svc.Create(ctx, domain.TodoItem{Title: title})
		require.NoError(t, err)
	}

	items, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "todo", items[0].Title)
	assert.Equal(t, "todo 2", items[1].Title)
}

func TestTodoService_Update(t *testing.T) {
	clock := &stepClock{t: t0, step: time.Second}
	svc, _ := setupService(t, clock.Now)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.TodoItem{Title: "draft"})
	require.NoError(t, err)

	desc := "described"
	updated, err := svc.Update(ctx, created.ID, domain.TodoItem{
		ID:           created.ID,
		Title:        "Updated Test",
		Description:  &desc,
		Status:       domain.StatusInProgress,
		CreationTime: t0.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "Updated Test", updated.Title)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.True(t, updated.CreationTime.Equal(t0), "creation time is server-owned")
	assert.True(t, updated.UpdateTime.After(created.UpdateTime))
}

func TestTodoService_UpdateMissingItem(t *testing.T) {
	svc, _ := setupService(t, time.Now)
	id := uuid.New()

	updated, err := svc.Update(context.Background(), id, domain.TodoItem{ID: id, Title: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestTodoService_Delete(t *testing.T) {
	svc, _ := setupService(t, time.Now)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.TodoItem{Title: "bin me"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTodoService_FieldUpdates(t *testing.T) {
	clock := &stepClock{t: t0, step: time.Second}
	svc, _ := setupService(t, clock.Now)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.TodoItem{Title: "todo4"})
	require.NoError(t, err)

	item, err := svc.UpdateTitle(ctx, created.ID, "New Title")
	require.NoError(t, err)
	assert.Equal(t, "New Title", item.Title)

	desc := "New Description"
	item, err = svc.UpdateDescription(ctx, created.ID, &desc)
	require.NoError(t, err)
	assert.Equal(t, desc, *item.Description)

	item, err = svc.UpdateStatus(ctx, created.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, item.Status)

	item, err = svc.UpdateDescription(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, item.Description)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.Nil(t, got.Description)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.True(t, got.CreationTime.Equal(t0))
	assert.True(t, got.UpdateTime.Equal(t0.Add(4*time.Second)))
}

func TestTodoService_FieldUpdatesOnMissingItem(t *testing.T) {
	svc, _ := setupService(t, time.Now)
	ctx := context.Background()
	id := uuid.New()

	item, err := svc.UpdateTitle(ctx, id, "title")
	require.NoError(t, err)
	assert.Nil(t, item)

	item, err = svc.UpdateDescription(ctx, id, nil)
	require.NoError(t, err)
	assert.Nil(t, item)

	item, err = svc.UpdateStatus(ctx, id, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestTodoService_UpdateTimeStrictlyIncreases(t *testing.T) {
	frozen := func() time.Time { return t0 }
	svc, _ := setupService(t, frozen)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.TodoItem{Title: "frozen"})
	require.NoError(t, err)

	prev := created.UpdateTime
	for _, status := range []domain.Status{domain.StatusInProgress, domain.StatusCompleted, domain.StatusNew} {
		item, err := svc.UpdateStatus(ctx, created.ID, status)
		require.NoError(t, err)
		assert.True(t, item.UpdateTime.After(prev), "update time must increase even with a frozen clock")
		assert.False(t, item.CreationTime.After(item.UpdateTime))
		prev = item.UpdateTime
	}
}

func TestTodoService_UpdateTitleRejectsEmpty(t *testing.T) {
	svc, _ := setupService(t, time.Now)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.TodoItem{Title: "keep me"})
	require.NoError(t, err)

	_, err = svc.UpdateTitle(ctx, created.ID, "")
	assert.ErrorIs(t, err, service.ErrValidation)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Title)
}

func TestTodoService_WholeUpdateTimeStrictlyIncreases(t *testing.T) {
	frozen := func() time.Time { return t0 }
	svc, _ := setupService(t, frozen)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.TodoItem{Title: "frozen"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, domain.TodoItem{ID: created.ID, Title: "thawed"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.UpdateTime.After(created.UpdateTime))
	assert.True(t, updated.CreationTime.Equal(created.CreationTime))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdateTime.Equal(updated.UpdateTime))
}
