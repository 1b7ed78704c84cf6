package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitListTTL = 30 * time.Minute

// CachedHabitRepository serves ListByUserID from redis and invalidates the
// owner's list on every write. Cache failures fall through to the next repo.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *cache.Store
	log   zerolog.Logger
}

func NewCachedHabitRepository(next domain.HabitRepository, store *cache.Store, log zerolog.Logger) *CachedHabitRepository {
	return &CachedHabitRepository{
		next:  next,
		cache: store,
		log:   log.With().Str("component", "habit_cache").Logger(),
	}
}

func (r *CachedHabitRepository) cacheKey(userID string) string {
	return "habits:" + userID
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Delete(ctx, r.cacheKey(userID)); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate habit list")
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := r.cacheKey(userID)

	var habits []*domain.Habit
	found, err := r.cache.Get(ctx, key, &habits)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("cache read failed, cleaning up key")
		r.invalidate(ctx, userID)
	}
	if found {
		return habits, nil
	}

	habits, err = r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, habits, habitListTTL); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("cache write failed")
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) ListAll(ctx context.Context) ([]*domain.Habit, error) {
	return r.next.ListAll(ctx)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.Delete(ctx, id)
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.UpdateStreaks(ctx, id, current, longest)
}
