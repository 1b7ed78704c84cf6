package domain

import "time"

// Clock supplies "today" in the server's civil calendar.
type Clock interface {
	Today() Date
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

type FixedClock Date

func (c FixedClock) Today() Date { return Date(c) }
