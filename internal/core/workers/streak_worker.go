package workers

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	ListAll(ctx context.Context) ([]*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error)
}

type StreakJob struct {
	HabitID string
}

const queueSize = 100

var ErrWorkerStopped = errors.New("streak worker stopped")

// StreakWorker keeps the denormalized streak columns of a habit in step
// with its completions. Jobs are processed one at a time off a bounded queue.
type StreakWorker struct {
	habitRepo HabitRepository
	compRepo  CompletionRepository
	engine    *streak.Engine
	jobs      chan StreakJob
	stopped   chan struct{}
	log       zerolog.Logger
	wg        sync.WaitGroup
}

func NewStreakWorker(hRepo HabitRepository, cRepo CompletionRepository, engine *streak.Engine, log zerolog.Logger) *StreakWorker {
	return &StreakWorker{
		habitRepo: hRepo,
		compRepo:  cRepo,
		engine:    engine,
		jobs:      make(chan StreakJob, queueSize),
		stopped:   make(chan struct{}),
		log:       log.With().Str("component", "streak_worker").Logger(),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(w.stopped)
		w.log.Info().Msg("Streak worker started")
		for {
			select {
			case job := <-w.jobs:
				if err := w.processJob(ctx, job); err != nil {
					w.log.Error().Err(err).Str("habit_id", job.HabitID).Msg("Streak refresh failed")
				}
			case <-ctx.Done():
				w.log.Info().Msg("Streak worker shutting down")
				return
			}
		}
	}()
}

// Wait blocks until the worker goroutine has returned after ctx was cancelled.
func (w *StreakWorker) Wait() {
	w.wg.Wait()
}

// Enqueue never blocks; when the queue is full the job is dropped and the
// habit waits for the nightly refresh, which uses EnqueueWait.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		w.log.Warn().Str("habit_id", habitID).Msg("Streak queue full, dropping job")
	}
}

// EnqueueWait blocks until the job is queued, ctx is done or the worker
// has stopped.
func (w *StreakWorker) EnqueueWait(ctx context.Context, habitID string) error {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stopped:
		return ErrWorkerStopped
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) error {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		return err
	}

	completions, err := w.compRepo.ListByHabitID(ctx, job.HabitID)
	if err != nil {
		return err
	}

	dates := make([]domain.Date, 0, len(completions))
	for _, c := range completions {
		dates = append(dates, c.CompletionDate)
	}

	res := w.engine.ComputeStreaks(dates)
	if habit.CurrentStreak == res.Current && habit.LongestStreak == res.Longest {
		return nil
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, res.Current, res.Longest); err != nil {
		return err
	}

	w.log.Debug().
		Str("habit_id", habit.ID).
		Int("current", res.Current).
		Int("longest", res.Longest).
		Msg("Streak updated")

	return nil
}
