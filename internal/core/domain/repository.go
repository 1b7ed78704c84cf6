package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// ListAll is used by the nightly refresh to walk every habit.
	ListAll(ctx context.Context) ([]*Habit, error)

	Update(ctx context.Context, habit *Habit) error

	// Delete removes the habit together with all of its completions.
	Delete(ctx context.Context, id string) error

	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	// Create fails with ErrAlreadyCompleted when (habit_id, completion_date) exists.
	Create(ctx context.Context, completion *Completion) error

	DeleteByDate(ctx context.Context, habitID, userID string, date Date) error

	ListByHabitID(ctx context.Context, habitID string) ([]*Completion, error)

	// ListByHabitIDs groups completions for several habits in one round trip.
	ListByHabitIDs(ctx context.Context, habitIDs []string) (map[string][]*Completion, error)

	ListByUserID(ctx context.Context, userID string) ([]*Completion, error)

	ListByUserIDAndRange(ctx context.Context, userID string, from, to Date) ([]*Completion, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}
