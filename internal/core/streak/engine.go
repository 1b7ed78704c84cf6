package streak

import "github.com/comitanigiacomo/kanso-habits/internal/core/domain"

// Engine binds the pure functions to a clock so callers never pass "today"
// by hand. It holds no other state and is safe for concurrent use.
type Engine struct {
	clock domain.Clock
}

func NewEngine(clock domain.Clock) *Engine {
	return &Engine{clock: clock}
}

func (e *Engine) Today() domain.Date {
	return e.clock.Today()
}

func (e *Engine) ComputeStreaks(dates []domain.Date) Result {
	return Compute(dates, e.clock.Today())
}

func (e *Engine) ComputeStreakStrings(raw []string) (Result, error) {
	return ComputeStrings(raw, e.clock.Today())
}

func (e *Engine) WeekPerformance(habits []HabitDates) []domain.WeekPerformanceEntry {
	return WeekPerformance(habits, e.clock.Today())
}

func (e *Engine) CompletionRate(completed, targetDays int) float64 {
	return CompletionRate(completed, targetDays)
}

func (e *Engine) Overview(habits []HabitDates) domain.StatsOverview {
	return Overview(habits, e.clock.Today())
}
