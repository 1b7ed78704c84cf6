package domain

import "errors"

var ErrInvalidDateRange = errors.New("invalid date range (from must not be after to, max 366 days)")

// MaxCalendarDays bounds a calendar query, both ends inclusive.
const MaxCalendarDays = 366

type WeekPerformanceEntry struct {
	Date        string `json:"date"`
	Day         string `json:"day"`
	Completions int    `json:"completions"`
}

type StatsOverview struct {
	TotalHabits        int                    `json:"total_habits"`
	ActiveStreaks      int                    `json:"active_streaks"`
	TotalCurrentStreak int                    `json:"total_current_streak"`
	LongestStreak      int                    `json:"longest_streak"`
	TotalCompletions   int                    `json:"total_completions"`
	TodayCompletions   int                    `json:"today_completions"`
	AvgCompletionRate  float64                `json:"avg_completion_rate"`
	ThisWeek           []WeekPerformanceEntry `json:"this_week_performance"`
}

type CalendarData struct {
	CompletionDates []string            `json:"completion_dates"`
	HabitsByDate    map[string][]string `json:"habits_by_date"`
}
