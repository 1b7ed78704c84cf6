package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidTargetDays  = errors.New("target days cannot be negative")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultColor      = "#3B82F6"
	DefaultIcon       = "brain"
	DefaultTargetDays = 30
	MaxNameLen        = 100
	MaxDescLen        = 500
)

type Habit struct {
	ID            string    `json:"id" db:"id" msgpack:"id"`
	UserID        string    `json:"user_id" db:"user_id" msgpack:"user_id"`
	Name          string    `json:"name" db:"name" msgpack:"name"`
	Description   string    `json:"description" db:"description" msgpack:"description"`
	Color         string    `json:"color" db:"color" msgpack:"color"`
	Icon          string    `json:"icon" db:"icon" msgpack:"icon"`
	TargetDays    int       `json:"target_days" db:"target_days" msgpack:"target_days"`
	CurrentStreak int       `json:"-" db:"current_streak" msgpack:"current_streak"`
	LongestStreak int       `json:"-" db:"longest_streak" msgpack:"longest_streak"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" msgpack:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at" msgpack:"updated_at"`
}

// HabitWithStats is the habit as returned to clients, with the streak
// numbers computed from its completions at request time.
type HabitWithStats struct {
	Habit
	CurrentStreak   int      `json:"current_streak"`
	LongestStreak   int      `json:"longest_streak"`
	CompletionCount int      `json:"completion_count"`
	CompletedDates  []string `json:"completed_dates"`
}

func validate(name, desc, color string, targetDays int) error {
	if name == "" {
		return ErrHabitNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if len(desc) > MaxDescLen {
		return ErrHabitDescTooLong
	}
	if color != "" && !colorRegex.MatchString(color) {
		return ErrInvalidColor
	}
	if targetDays < 0 {
		return ErrInvalidTargetDays
	}
	return nil
}

func NewHabit(userID, name, description, color, icon string, targetDays int) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if err := validate(name, description, color, targetDays); err != nil {
		return nil, err
	}

	if color == "" {
		color = DefaultColor
	}
	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Color:       color,
		Icon:        icon,
		TargetDays:  targetDays,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// HabitPatch carries a partial update; nil fields are left untouched.
type HabitPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	TargetDays  *int
}

func (h *Habit) Apply(p HabitPatch) error {
	name, desc, color, icon, target := h.Name, h.Description, h.Color, h.Icon, h.TargetDays

	if p.Name != nil {
		name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		desc = strings.TrimSpace(*p.Description)
	}
	if p.Color != nil {
		color = *p.Color
	}
	if p.Icon != nil && *p.Icon != "" {
		icon = *p.Icon
	}
	if p.TargetDays != nil {
		target = *p.TargetDays
	}

	if err := validate(name, desc, color, target); err != nil {
		return err
	}
	if color == "" {
		color = DefaultColor
	}

	h.Name = name
	h.Description = desc
	h.Color = color
	h.Icon = icon
	h.TargetDays = target
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}
