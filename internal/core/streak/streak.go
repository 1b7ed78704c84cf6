// Package streak derives streak and performance numbers from the set of
// calendar days on which habits were completed. Every function is pure:
// "today" is always passed in, never read from the wall clock.
package streak

import (
	"sort"
	"strconv"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"gonum.org/v1/gonum/stat"
)

const WeekLength = 7

type Result struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// HabitDates is one habit's completion history as fed to the aggregate views.
type HabitDates struct {
	HabitID    string
	Dates      []domain.Date
	TargetDays int
}

// uniqueDesc returns the distinct days, most recent first.
func uniqueDesc(dates []domain.Date) []domain.Date {
	seen := make(map[domain.Date]struct{}, len(dates))
	out := make([]domain.Date, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].After(out[j])
	})
	return out
}

// Compute returns the current and longest streak for a habit.
//
// The current streak is alive when the most recent completion is today or
// yesterday; a completion dated after today does not count as either.
func Compute(dates []domain.Date, today domain.Date) Result {
	days := uniqueDesc(dates)
	if len(days) == 0 {
		return Result{}
	}

	current := 0
	if lag := today.DaysSince(days[0]); lag == 0 || lag == 1 {
		current = 1
		for i := 1; i < len(days); i++ {
			if days[i-1].DaysSince(days[i]) != 1 {
				break
			}
			current++
		}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].DaysSince(days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	// The two scans are independent; the clamp keeps longest >= current
	// whatever either of them missed.
	if current > longest {
		longest = current
	}

	return Result{Current: current, Longest: longest}
}

// ComputeStrings parses YYYY-MM-DD values before computing. Any malformed
// value fails the whole call with domain.ErrInvalidDateFormat.
func ComputeStrings(raw []string, today domain.Date) (Result, error) {
	dates, err := domain.ParseDates(raw)
	if err != nil {
		return Result{}, err
	}
	return Compute(dates, today), nil
}

// WeekPerformance counts, for each of the seven days ending today (oldest
// first), how many distinct habits were completed on that day.
func WeekPerformance(habits []HabitDates, today domain.Date) []domain.WeekPerformanceEntry {
	week := make([]domain.WeekPerformanceEntry, 0, WeekLength)
	start := today.AddDays(-(WeekLength - 1))

	counts := make(map[domain.Date]int, WeekLength)
	for _, h := range habits {
		seen := make(map[domain.Date]struct{}, len(h.Dates))
		for _, d := range h.Dates {
			if d.Before(start) || d.After(today) {
				continue
			}
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			counts[d]++
		}
	}

	for i := 0; i < WeekLength; i++ {
		day := start.AddDays(i)
		week = append(week, domain.WeekPerformanceEntry{
			Date:        day.String(),
			Day:         day.ShortDay(),
			Completions: counts[day],
		})
	}
	return week
}

// CompletionRate returns completed/target as a percentage rounded to one
// decimal. A zero target yields 0 by policy. Negative targets are rejected
// upstream and are not checked here.
func CompletionRate(completed, targetDays int) float64 {
	if targetDays == 0 {
		return 0
	}
	return round1(float64(completed) / float64(targetDays) * 100)
}

// round1 rounds to one decimal place, ties to even, on the exact binary
// value of v.
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

// Overview folds per-habit results into the dashboard numbers. With no
// habits every field is zero and the week is empty rather than seven zeros.
func Overview(habits []HabitDates, today domain.Date) domain.StatsOverview {
	if len(habits) == 0 {
		return domain.StatsOverview{ThisWeek: []domain.WeekPerformanceEntry{}}
	}

	out := domain.StatsOverview{TotalHabits: len(habits)}
	rates := make([]float64, 0, len(habits))

	for _, h := range habits {
		res := Compute(h.Dates, today)

		out.TotalCurrentStreak += res.Current
		if res.Longest > out.LongestStreak {
			out.LongestStreak = res.Longest
		}
		if res.Current > 0 {
			out.ActiveStreaks++
		}

		out.TotalCompletions += len(h.Dates)
		for _, d := range h.Dates {
			if d.Equal(today) {
				out.TodayCompletions++
			}
		}

		rates = append(rates, CompletionRate(len(h.Dates), h.TargetDays))
	}

	out.AvgCompletionRate = round1(stat.Mean(rates, nil))
	out.ThisWeek = WeekPerformance(habits, today)

	return out
}
