// Package testutil はテスト用のフェイクとヘルパーを提供します。
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/repositories"
)

// FakeTodoRepository はメモリ上の repositories.TodoRepository 実装です。
type FakeTodoRepository struct {
	mu      sync.RWMutex
	todos   map[string]*models.Todo
	order   []string
	nextID  int
	indexed bool

	// エラー注入
	CreateErr        error
	FindAllErr       error
	FindPageErr      error
	FindByIDErr      error
	UpdateErr        error
	DeleteErr        error
	InsertManyErr    error
	EnsureIndexesErr error
	PingErr          error
}

var _ repositories.TodoRepository = (*FakeTodoRepository)(nil)

// NewFakeTodoRepository は空のFakeTodoRepositoryを作成します。
func NewFakeTodoRepository() *FakeTodoRepository {
	return &FakeTodoRepository{todos: make(map[string]*models.Todo)}
}

// Add はTodoをそのまま追加します。IDが空なら採番します。
func (f *FakeTodoRepository) Add(t models.Todo) *models.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(&t)
}

// Len は保存されているTodoの件数を返します。
func (f *FakeTodoRepository) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.todos)
}

// Indexed は EnsureIndexes が呼ばれた場合にtrueを返します。
func (f *FakeTodoRepository) Indexed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexed
}

func (f *FakeTodoRepository) insertLocked(t *models.Todo) *models.Todo {
	if t.ID == "" {
		f.nextID++
		t.ID = fmt.Sprintf("todo-%d", f.nextID)
	}
	stored := *t
	f.todos[stored.ID] = &stored
	f.order = append(f.order, stored.ID)
	out := stored
	return &out
}

// sortedLocked は新しい順に並べたコピーを返します。同時刻は後から追加したものが先です。
func (f *FakeTodoRepository) sortedLocked(search string) []*models.Todo {
	search = strings.ToLower(search)
	out := make([]*models.Todo, 0, len(f.todos))
	pos := make(map[string]int, len(f.order))
	for i, id := range f.order {
		t, ok := f.todos[id]
		if !ok {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		c := *t
		out = append(out, &c)
		pos[id] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return pos[out[i].ID] > pos[out[j].ID]
	})
	return out
}

// Create implements repositories.TodoRepository.
func (f *FakeTodoRepository) Create(_ context.Context, t *models.Todo) (*models.Todo, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = ""
	created := f.insertLocked(t)
	t.ID = created.ID
	return created, nil
}

// FindAll implements repositories.TodoRepository.
func (f *FakeTodoRepository) FindAll(_ context.Context, search string) ([]*models.Todo, error) {
	if f.FindAllErr != nil {
		return nil, f.FindAllErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sortedLocked(search), nil
}

// FindPage implements repositories.TodoRepository.
func (f *FakeTodoRepository) FindPage(_ context.Context, q repositories.ListQuery) ([]*models.Todo, int64, error) {
	if f.FindPageErr != nil {
		return nil, 0, f.FindPageErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	all := f.sortedLocked(q.Search)
	total := int64(len(all))
	start := q.Offset()
	if start >= len(all) {
		return []*models.Todo{}, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// FindByID implements repositories.TodoRepository.
func (f *FakeTodoRepository) FindByID(_ context.Context, id string) (*models.Todo, error) {
	if f.FindByIDErr != nil {
		return nil, f.FindByIDErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.todos[id]
	if !ok {
		return nil, models.ErrTodoNotFound
	}
	c := *t
	return &c, nil
}

// Update implements repositories.TodoRepository.
func (f *FakeTodoRepository) Update(_ context.Context, id string, u repositories.TodoUpdate) (*models.Todo, error) {
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.todos[id]
	if !ok {
		return nil, models.ErrTodoNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.IsCompleted != nil {
		t.IsCompleted = *u.IsCompleted
	}
	t.UpdatedAt = u.UpdatedAt
	c := *t
	return &c, nil
}

// Delete implements repositories.TodoRepository.
func (f *FakeTodoRepository) Delete(_ context.Context, id string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.todos[id]; !ok {
		return models.ErrTodoNotFound
	}
	delete(f.todos, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// InsertMany implements repositories.TodoRepository.
func (f *FakeTodoRepository) InsertMany(_ context.Context, todos []*models.Todo) (int, error) {
	if f.InsertManyErr != nil {
		return 0, f.InsertManyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range todos {
		t.ID = f.insertLocked(t).ID
	}
	return len(todos), nil
}

// EnsureIndexes implements repositories.TodoRepository.
func (f *FakeTodoRepository) EnsureIndexes(_ context.Context) error {
	if f.EnsureIndexesErr != nil {
		return f.EnsureIndexesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = true
	return nil
}

// Ping implements repositories.TodoRepository.
func (f *FakeTodoRepository) Ping(_ context.Context) error {
	return f.PingErr
}
