package workers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

type MockHabitRepo struct {
	mock.Mock
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListAll(ctx context.Context) ([]*domain.Habit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	return m.Called(ctx, id, current, longest).Error(0)
}

type MockCompletionRepo struct {
	mock.Mock
}

func (m *MockCompletionRepo) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	args := m.Called(ctx, habitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Completion), args.Error(1)
}

var today = domain.NewDate(2024, time.March, 15)

func completionsAgo(days ...int) []*domain.Completion {
	out := make([]*domain.Completion, 0, len(days))
	for _, d := range days {
		out = append(out, &domain.Completion{HabitID: "h1", CompletionDate: today.AddDays(-d)})
	}
	return out
}

func newTestWorker(h *MockHabitRepo, c *MockCompletionRepo) *StreakWorker {
	return NewStreakWorker(h, c, streak.NewEngine(domain.FixedClock(today)), zerolog.Nop())
}

func TestStreakWorker_ProcessJob(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Persists changed streaks", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		compRepo := new(MockCompletionRepo)
		w := newTestWorker(habitRepo, compRepo)

		habitRepo.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1"}, nil)
		compRepo.On("ListByHabitID", ctx, "h1").Return(completionsAgo(0, 1, 2, 6, 7), nil)
		habitRepo.On("UpdateStreaks", ctx, "h1", 3, 3).Return(nil)

		require.NoError(t, w.processJob(ctx, StreakJob{HabitID: "h1"}))
		habitRepo.AssertExpectations(t)
	})

	t.Run("Success: Skips write when nothing changed", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		compRepo := new(MockCompletionRepo)
		w := newTestWorker(habitRepo, compRepo)

		habitRepo.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1", CurrentStreak: 1, LongestStreak: 1}, nil)
		compRepo.On("ListByHabitID", ctx, "h1").Return(completionsAgo(1), nil)

		require.NoError(t, w.processJob(ctx, StreakJob{HabitID: "h1"}))
		habitRepo.AssertNotCalled(t, "UpdateStreaks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success: Decayed streak drops to zero", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		compRepo := new(MockCompletionRepo)
		w := newTestWorker(habitRepo, compRepo)

		habitRepo.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1", CurrentStreak: 2, LongestStreak: 2}, nil)
		compRepo.On("ListByHabitID", ctx, "h1").Return(completionsAgo(2, 3), nil)
		habitRepo.On("UpdateStreaks", ctx, "h1", 0, 2).Return(nil)

		require.NoError(t, w.processJob(ctx, StreakJob{HabitID: "h1"}))
		habitRepo.AssertExpectations(t)
	})

	t.Run("Fail: Habit lookup error propagates", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		compRepo := new(MockCompletionRepo)
		w := newTestWorker(habitRepo, compRepo)

		habitRepo.On("GetByID", ctx, "gone").Return(nil, domain.ErrHabitNotFound)

		err := w.processJob(ctx, StreakJob{HabitID: "gone"})
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
		compRepo.AssertNotCalled(t, "ListByHabitID", mock.Anything, mock.Anything)
	})

	t.Run("Fail: Completion lookup error propagates", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		compRepo := new(MockCompletionRepo)
		w := newTestWorker(habitRepo, compRepo)

		dbErr := errors.New("db down")
		habitRepo.On("GetByID", ctx, "h1").Return(&domain.Habit{ID: "h1"}, nil)
		compRepo.On("ListByHabitID", ctx, "h1").Return(nil, dbErr)

		assert.ErrorIs(t, w.processJob(ctx, StreakJob{HabitID: "h1"}), dbErr)
	})
}

func TestStreakWorker_EnqueueDropsWhenFull(t *testing.T) {
	w := newTestWorker(new(MockHabitRepo), new(MockCompletionRepo))

	for i := 0; i < queueSize+10; i++ {
		w.Enqueue("h1")
	}

	assert.Len(t, w.jobs, queueSize)
}

func TestStreakWorker_StartProcessesQueue(t *testing.T) {
	habitRepo := new(MockHabitRepo)
	compRepo := new(MockCompletionRepo)
	w := newTestWorker(habitRepo, compRepo)

	done := make(chan struct{})
	habitRepo.On("GetByID", mock.Anything, "h1").Return(&domain.Habit{ID: "h1"}, nil)
	compRepo.On("ListByHabitID", mock.Anything, "h1").Return(completionsAgo(0), nil)
	habitRepo.On("UpdateStreaks", mock.Anything, "h1", 1, 1).Return(nil).Run(func(mock.Arguments) {
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	w.Enqueue("h1")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not process the job")
	}

	cancel()
	w.Wait()
}

type recordingEnqueuer struct {
	ids []string
}

func (r *recordingEnqueuer) EnqueueWait(_ context.Context, id string) error {
	r.ids = append(r.ids, id)
	return nil
}

func manyHabits(n int) []*domain.Habit {
	out := make([]*domain.Habit, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &domain.Habit{ID: fmt.Sprintf("h%03d", i)})
	}
	return out
}

func TestStreakRefreshJob(t *testing.T) {
	t.Run("Success: Enqueues every habit", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		rec := &recordingEnqueuer{}
		job := NewStreakRefreshJob(habitRepo, rec)

		habitRepo.On("ListAll", mock.Anything).Return([]*domain.Habit{{ID: "a"}, {ID: "b"}}, nil)

		require.NoError(t, job.Run())
		assert.Equal(t, []string{"a", "b"}, rec.ids)
		assert.Equal(t, "streak_refresh", job.Name())
	})

	t.Run("Fail: List error is wrapped", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		job := NewStreakRefreshJob(habitRepo, &recordingEnqueuer{})

		dbErr := errors.New("timeout")
		habitRepo.On("ListAll", mock.Anything).Return(nil, dbErr)

		assert.ErrorIs(t, job.Run(), dbErr)
	})

	t.Run("Success: Waits for room past the queue size", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		w := newTestWorker(habitRepo, new(MockCompletionRepo))
		total := queueSize*2 + 50

		habitRepo.On("ListAll", mock.Anything).Return(manyHabits(total), nil)

		received := make(chan int)
		go func() {
			n := 0
			for range w.jobs {
				n++
				if n == total {
					break
				}
			}
			received <- n
		}()

		require.NoError(t, NewStreakRefreshJob(habitRepo, w).Run())

		select {
		case n := <-received:
			assert.Equal(t, total, n)
		case <-time.After(2 * time.Second):
			t.Fatal("not every habit was queued")
		}
	})

	t.Run("Fail: Stops at the deadline when nothing drains", func(t *testing.T) {
		habitRepo := new(MockHabitRepo)
		w := newTestWorker(habitRepo, new(MockCompletionRepo))

		habitRepo.On("ListAll", mock.Anything).Return(manyHabits(queueSize+5), nil)

		job := NewStreakRefreshJob(habitRepo, w)
		job.timeout = 50 * time.Millisecond

		err := job.Run()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), fmt.Sprintf("queued %d of %d", queueSize, queueSize+5))
		assert.Len(t, w.jobs, queueSize)
	})
}

func TestStreakWorker_EnqueueWaitAfterStop(t *testing.T) {
	w := newTestWorker(new(MockHabitRepo), new(MockCompletionRepo))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	w.Wait()

	for i := 0; i < queueSize; i++ {
		w.Enqueue("h1")
	}

	err := w.EnqueueWait(context.Background(), "h2")
	assert.ErrorIs(t, err, ErrWorkerStopped)
}
