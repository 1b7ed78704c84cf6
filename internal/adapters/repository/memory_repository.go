package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var (
	_ domain.HabitRepository      = (*InMemoryHabitRepository)(nil)
	_ domain.CompletionRepository = (*InMemoryCompletionRepository)(nil)
	_ domain.UserRepository       = (*InMemoryUserRepository)(nil)
)

type InMemoryHabitRepository struct {
	store       map[string]*domain.Habit
	completions *InMemoryCompletionRepository

	mu sync.RWMutex
}

// NewInMemoryHabitRepository cascades habit deletes into completions when
// it is given a completion store.
func NewInMemoryHabitRepository(completions *InMemoryCompletionRepository) *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store:       make(map[string]*domain.Habit),
		completions: completions,
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	c := *h
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID {
			habits = append(habits, cloneHabit(h))
		}
	}
	sortHabits(habits)
	return habits, nil
}

func (r *InMemoryHabitRepository) ListAll(ctx context.Context) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := make([]*domain.Habit, 0, len(r.store))
	for _, h := range r.store {
		habits = append(habits, cloneHabit(h))
	}
	sortHabits(habits)
	return habits, nil
}

func sortHabits(habits []*domain.Habit) {
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}

	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	if r.completions != nil {
		r.completions.deleteByHabit(id)
	}
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.UpdateStreak(current, longest)
	return nil
}

type completionKey struct {
	habitID string
	date    domain.Date
}

type InMemoryCompletionRepository struct {
	store map[completionKey]*domain.Completion
	// deleted holds ids of habits removed through the habit repository,
	// standing in for the habit_id foreign key.
	deleted map[string]struct{}

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		store:   make(map[completionKey]*domain.Completion),
		deleted: make(map[string]struct{}),
	}
}

func (r *InMemoryCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, gone := r.deleted[c.HabitID]; gone {
		return domain.ErrHabitNotFound
	}

	key := completionKey{c.HabitID, c.CompletionDate}
	if _, exists := r.store[key]; exists {
		return domain.ErrAlreadyCompleted
	}

	clone := *c
	r.store[key] = &clone
	return nil
}

func (r *InMemoryCompletionRepository) DeleteByDate(ctx context.Context, habitID, userID string, date domain.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := completionKey{habitID, date}
	c, ok := r.store[key]
	if !ok || c.UserID != userID {
		return domain.ErrCompletionNotFound
	}
	delete(r.store, key)
	return nil
}

func (r *InMemoryCompletionRepository) deleteByHabit(habitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleted[habitID] = struct{}{}

	for key := range r.store {
		if key.habitID == habitID {
			delete(r.store, key)
		}
	}
}

// filter returns matching completions newest first.
func (r *InMemoryCompletionRepository) filter(keep func(*domain.Completion) bool) []*domain.Completion {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Completion{}
	for _, c := range r.store {
		if keep(c) {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletionDate.Equal(out[j].CompletionDate) {
			return strings.Compare(out[i].HabitID, out[j].HabitID) < 0
		}
		return out[i].CompletionDate.After(out[j].CompletionDate)
	})
	return out
}

func (r *InMemoryCompletionRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	return r.filter(func(c *domain.Completion) bool { return c.HabitID == habitID }), nil
}

func (r *InMemoryCompletionRepository) ListByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]*domain.Completion, error) {
	wanted := make(map[string]struct{}, len(habitIDs))
	for _, id := range habitIDs {
		wanted[id] = struct{}{}
	}

	grouped := make(map[string][]*domain.Completion, len(habitIDs))
	for _, c := range r.filter(func(c *domain.Completion) bool {
		_, ok := wanted[c.HabitID]
		return ok
	}) {
		grouped[c.HabitID] = append(grouped[c.HabitID], c)
	}
	return grouped, nil
}

func (r *InMemoryCompletionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Completion, error) {
	return r.filter(func(c *domain.Completion) bool { return c.UserID == userID }), nil
}

func (r *InMemoryCompletionRepository) ListByUserIDAndRange(ctx context.Context, userID string, from, to domain.Date) ([]*domain.Completion, error) {
	out := r.filter(func(c *domain.Completion) bool {
		return c.UserID == userID && !c.CompletionDate.Before(from) && !c.CompletionDate.After(to)
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrEmailAlreadyExists
	}

	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}
