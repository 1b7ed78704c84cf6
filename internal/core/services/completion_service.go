package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

type CompletionService struct {
	repo      domain.CompletionRepository
	habitRepo domain.HabitRepository
	worker    StreakRefresher
}

func NewCompletionService(repo domain.CompletionRepository, habitRepo domain.HabitRepository, worker StreakRefresher) *CompletionService {
	return &CompletionService{
		repo:      repo,
		habitRepo: habitRepo,
		worker:    worker,
	}
}

func (s *CompletionService) checkOwner(ctx context.Context, habitID, userID string) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit.UserID != userID {
		return domain.ErrHabitNotFound
	}
	return nil
}

// Complete marks the habit done on date. A second completion for the same
// day fails with domain.ErrAlreadyCompleted.
func (s *CompletionService) Complete(ctx context.Context, habitID, userID string, date domain.Date) (*domain.Completion, error) {
	completion, err := domain.NewCompletion(habitID, userID, date)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwner(ctx, habitID, userID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, completion); err != nil {
		return nil, err
	}

	s.worker.Enqueue(habitID)

	return completion, nil
}

func (s *CompletionService) Uncomplete(ctx context.Context, habitID, userID string, date domain.Date) error {
	if err := s.checkOwner(ctx, habitID, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteByDate(ctx, habitID, userID, date); err != nil {
		return err
	}

	s.worker.Enqueue(habitID)

	return nil
}
