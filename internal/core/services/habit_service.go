package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

type HabitService struct {
	repo        domain.HabitRepository
	completions domain.CompletionRepository
	engine      *streak.Engine
}

func NewHabitService(repo domain.HabitRepository, completions domain.CompletionRepository, engine *streak.Engine) *HabitService {
	return &HabitService{
		repo:        repo,
		completions: completions,
		engine:      engine,
	}
}

type CreateHabitInput struct {
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	TargetDays  *int
}

type UpdateHabitInput struct {
	ID     string
	UserID string
	Patch  domain.HabitPatch
}

func (s *HabitService) withStats(h *domain.Habit, completions []*domain.Completion) *domain.HabitWithStats {
	dates := completionDates(completions)
	res := s.engine.ComputeStreaks(dates)

	return &domain.HabitWithStats{
		Habit:           *h,
		CurrentStreak:   res.Current,
		LongestStreak:   res.Longest,
		CompletionCount: len(completions),
		CompletedDates:  sortedDateStrings(dates),
	}
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.HabitWithStats, error) {
	target := domain.DefaultTargetDays
	if input.TargetDays != nil {
		target = *input.TargetDays
	}

	habit, err := domain.NewHabit(input.UserID, input.Name, input.Description, input.Color, input.Icon, target)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: create: %w", err)
	}

	return s.withStats(habit, nil), nil
}

// owned loads a habit and hides habits of other users behind ErrHabitNotFound.
func (s *HabitService) owned(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) Get(ctx context.Context, id, userID string) (*domain.HabitWithStats, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completions.ListByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, fmt.Errorf("habit service: list completions: %w", err)
	}

	return s.withStats(habit, completions), nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.HabitWithStats, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.HabitWithStats, 0, len(habits))
	if len(habits) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}

	byHabit, err := s.completions.ListByHabitIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("habit service: list completions: %w", err)
	}

	for _, h := range habits {
		out = append(out, s.withStats(h, byHabit[h.ID]))
	}
	return out, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.HabitWithStats, error) {
	habit, err := s.owned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := habit.Apply(input.Patch); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	completions, err := s.completions.ListByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, fmt.Errorf("habit service: list completions: %w", err)
	}

	return s.withStats(habit, completions), nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
