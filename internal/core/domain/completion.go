package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCompletionNotFound = errors.New("completion not found")
	ErrAlreadyCompleted   = errors.New("habit already completed for this date")
	ErrInvalidCompletion  = errors.New("invalid completion data")
)

// Completion records that a habit was performed on one calendar day.
type Completion struct {
	ID             string    `json:"id" db:"id"`
	HabitID        string    `json:"habit_id" db:"habit_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	CompletionDate Date      `json:"completion_date" db:"completion_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func NewCompletion(habitID, userID string, date Date) (*Completion, error) {
	c := &Completion{
		ID:             uuid.NewString(),
		HabitID:        habitID,
		UserID:         userID,
		CompletionDate: date,
		CreatedAt:      time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" || strings.TrimSpace(c.UserID) == "" {
		return ErrInvalidCompletion
	}
	if c.CompletionDate.IsZero() {
		return ErrInvalidDateFormat
	}
	return nil
}
