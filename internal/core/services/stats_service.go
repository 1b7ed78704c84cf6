package services

import (
	"context"
	"sort"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/streak"
)

type StatsService struct {
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	engine         *streak.Engine
}

func NewStatsService(habitRepo domain.HabitRepository, completionRepo domain.CompletionRepository, engine *streak.Engine) *StatsService {
	return &StatsService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		engine:         engine,
	}
}

func (s *StatsService) Overview(ctx context.Context, userID string) (*domain.StatsOverview, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(habits) == 0 {
		overview := s.engine.Overview(nil)
		return &overview, nil
	}

	completions, err := s.completionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	byHabit := make(map[string][]domain.Date, len(habits))
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c.CompletionDate)
	}

	input := make([]streak.HabitDates, 0, len(habits))
	for _, h := range habits {
		input = append(input, streak.HabitDates{
			HabitID:    h.ID,
			Dates:      byHabit[h.ID],
			TargetDays: h.TargetDays,
		})
	}

	overview := s.engine.Overview(input)
	return &overview, nil
}

// Calendar groups the user's completions in [from, to] by day. A zero to
// means today and a zero from means one year before to.
func (s *StatsService) Calendar(ctx context.Context, userID string, from, to domain.Date) (*domain.CalendarData, error) {
	if to.IsZero() {
		to = s.engine.Today()
	}
	if from.IsZero() {
		from = to.AddDays(-(domain.MaxCalendarDays - 1))
	}
	if from.After(to) || to.DaysSince(from) >= domain.MaxCalendarDays {
		return nil, domain.ErrInvalidDateRange
	}

	completions, err := s.completionRepo.ListByUserIDAndRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	grouped := groupByDate(completions)

	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return &domain.CalendarData{
		CompletionDates: dates,
		HabitsByDate:    grouped,
	}, nil
}

func groupByDate(completions []*domain.Completion) map[string][]string {
	grouped := make(map[string][]string)
	for _, c := range completions {
		key := c.CompletionDate.String()
		grouped[key] = append(grouped[key], c.HabitID)
	}
	return grouped
}
