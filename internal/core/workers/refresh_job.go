package workers

import (
	"context"
	"fmt"
	"time"
)

type enqueuer interface {
	EnqueueWait(ctx context.Context, habitID string) error
}

// StreakRefreshJob re-queues every habit. Current streaks decay with the
// calendar even when nobody writes, so it runs once a day after midnight.
type StreakRefreshJob struct {
	habits  HabitRepository
	worker  enqueuer
	timeout time.Duration
}

func NewStreakRefreshJob(habits HabitRepository, worker enqueuer) *StreakRefreshJob {
	return &StreakRefreshJob{
		habits:  habits,
		worker:  worker,
		timeout: 10 * time.Minute,
	}
}

func (j *StreakRefreshJob) Name() string { return "streak_refresh" }

func (j *StreakRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	habits, err := j.habits.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("streak refresh: list habits: %w", err)
	}

	for i, h := range habits {
		if err := j.worker.EnqueueWait(ctx, h.ID); err != nil {
			return fmt.Errorf("streak refresh: queued %d of %d habits: %w", i, len(habits), err)
		}
	}
	return nil
}
