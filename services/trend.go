package services

import (
	"time"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
)

// MaxTrendDays bounds the weekly series to roughly a year.
const MaxTrendDays = 355

const monthLayout = "2006-01"

// Series is a chronological list of buckets with parallel counts.
type Series struct {
	Labels        []string `json:"dates"`
	Conversations []int    `json:"conversations"`
	Seeds         []int    `json:"seeds"`
}

func newSeries(n int) Series {
	return Series{
		Labels:        make([]string, n),
		Conversations: make([]int, n),
		Seeds:         make([]int, n),
	}
}

func (s Series) add(i int, seed bool) {
	if seed {
		s.Seeds[i]++
	} else {
		s.Conversations[i]++
	}
}

// WeekStart returns the Monday on or before d.
func WeekStart(d time.Time) time.Time {
	d = models.CivilDate(d)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// WeekWindow returns the first and last week starts covering days back from today.
func WeekWindow(today time.Time, days int) (first, last time.Time) {
	if days > MaxTrendDays {
		days = MaxTrendDays
	}
	if days < 0 {
		days = 0
	}
	today = models.CivilDate(today)
	return WeekStart(today.AddDate(0, 0, -days)), WeekStart(today)
}

// CountByWeek buckets conversations into Monday to Sunday weeks ending with
// the current one. Dates outside the window are ignored.
func CountByWeek(convs []repository.ConversationDate, today time.Time, days int) Series {
	first, last := WeekWindow(today, days)
	n := int(last.Sub(first).Hours()/24)/7 + 1

	series := newSeries(n)
	index := make(map[time.Time]int, n)
	for i := 0; i < n; i++ {
		start := first.AddDate(0, 0, 7*i)
		series.Labels[i] = start.Format(models.DateLayout)
		index[start] = i
	}
	for _, c := range convs {
		if i, ok := index[WeekStart(c.Date.UTC())]; ok {
			series.add(i, c.Seed)
		}
	}
	return series
}

// MonthWindow returns the first day of the earliest of months calendar months ending with today's.
func MonthWindow(today time.Time, months int) time.Time {
	if months < 1 {
		months = 1
	}
	y, m, _ := today.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
}

// CountByMonth buckets conversations into calendar months.
func CountByMonth(convs []repository.ConversationDate, today time.Time, months int) Series {
	if months < 1 {
		months = 1
	}
	first := MonthWindow(today, months)

	series := newSeries(months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		label := first.AddDate(0, i, 0).Format(monthLayout)
		series.Labels[i] = label
		index[label] = i
	}
	for _, c := range convs {
		if i, ok := index[c.Date.UTC().Format(monthLayout)]; ok {
			series.add(i, c.Seed)
		}
	}
	return series
}
