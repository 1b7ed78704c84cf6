package services

import (
	"sort"
	"strings"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

// StreakRefresher receives habit ids whose stored streaks may be stale.
type StreakRefresher interface {
	Enqueue(habitID string)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func completionDates(completions []*domain.Completion) []domain.Date {
	dates := make([]domain.Date, 0, len(completions))
	for _, c := range completions {
		dates = append(dates, c.CompletionDate)
	}
	return dates
}

func sortedDateStrings(dates []domain.Date) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	sort.Strings(out)
	return out
}
