package services_test

import (
	"context"
	"sort"
	"sync"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

type MockHabitRepo struct {
	store         map[string]*domain.Habit
	simulateError error
}

func NewMockHabitRepo() *MockHabitRepo {
	return &MockHabitRepo{store: make(map[string]*domain.Habit)}
}

func (m *MockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	h, ok := m.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *MockHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Habit
	for _, h := range m.store {
		if h.UserID == userID {
			clone := *h
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *MockHabitRepo) ListAll(ctx context.Context) ([]*domain.Habit, error) {
	var list []*domain.Habit
	for _, h := range m.store {
		list = append(list, h)
	}
	return list, nil
}

func (m *MockHabitRepo) Update(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	if _, ok := m.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockHabitRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.store[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockHabitRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.UpdateStreak(current, longest)
	return nil
}

type MockCompletionRepo struct {
	items         []*domain.Completion
	simulateError error
}

func (m *MockCompletionRepo) Create(ctx context.Context, c *domain.Completion) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	for _, existing := range m.items {
		if existing.HabitID == c.HabitID && existing.CompletionDate.Equal(c.CompletionDate) {
			return domain.ErrAlreadyCompleted
		}
	}
	m.items = append(m.items, c)
	return nil
}

func (m *MockCompletionRepo) DeleteByDate(ctx context.Context, habitID, userID string, date domain.Date) error {
	for i, c := range m.items {
		if c.HabitID == habitID && c.UserID == userID && c.CompletionDate.Equal(date) {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrCompletionNotFound
}

func (m *MockCompletionRepo) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var out []*domain.Completion
	for _, c := range m.items {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCompletionRepo) ListByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]*domain.Completion, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	out := make(map[string][]*domain.Completion)
	for _, id := range habitIDs {
		list, _ := m.ListByHabitID(ctx, id)
		if len(list) > 0 {
			out[id] = list
		}
	}
	return out, nil
}

func (m *MockCompletionRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Completion, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var out []*domain.Completion
	for _, c := range m.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCompletionRepo) ListByUserIDAndRange(ctx context.Context, userID string, from, to domain.Date) ([]*domain.Completion, error) {
	all, err := m.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []*domain.Completion
	for _, c := range all {
		if !c.CompletionDate.Before(from) && !c.CompletionDate.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

type spyRefresher struct {
	mu  sync.Mutex
	ids []string
}

func (s *spyRefresher) Enqueue(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
}
