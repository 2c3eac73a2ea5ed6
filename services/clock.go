package services

import (
	"time"

	"github.com/camden-git/seeds/models"
)

// Clock supplies the current time. Rolling windows and default dates are computed from it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return now
}

func today(c Clock) time.Time {
	return models.CivilDate(c.Now())
}
