package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
	"go.uber.org/zap"
)

const (
	DefaultPingCount = 10
	DashboardSize    = 4
	// NewPeopleDays is how far back the dashboard looks for people added recently.
	NewPeopleDays = MonthDays
	TrendMonths   = 12
)

// Ping is someone worth reaching out to again.
type Ping struct {
	Person           models.Person `json:"person"`
	NumConversations int           `json:"num_conversations"`
	LastContact      time.Time     `json:"last_contact"`
}

// Orbit counts distinct people contacted within each window.
type Orbit struct {
	Quarter    int `json:"quarter"`
	Year       int `json:"year"`
	ThreeYears int `json:"three_years"`
	Ever       int `json:"ever"`
}

type Dashboard struct {
	NewPeople     []models.Person       `json:"new_people"`
	Conversations []models.Conversation `json:"conversations"`
	Seeds         []models.Conversation `json:"seeds"`
	Orbit         Orbit                 `json:"orbit"`
}

// InsightsService computes summaries over an owner's conversations.
type InsightsService struct {
	conversations repository.ConversationRepositoryInterface
	people        repository.PersonRepositoryInterface
	cache         cache.Cache
	clock         Clock
	logger        *zap.Logger
}

func NewInsightsService(
	conversations repository.ConversationRepositoryInterface,
	people repository.PersonRepositoryInterface,
	c cache.Cache,
	clock Clock,
	logger *zap.Logger,
) *InsightsService {
	return &InsightsService{conversations: conversations, people: people, cache: c, clock: clock, logger: logger}
}

// cached returns the value stored under field, computing and storing it on a miss.
// Cache failures are logged and otherwise ignored.
func cached[T any](ctx context.Context, s *InsightsService, owner uint, field string, compute func() (T, error)) (T, error) {
	var v T
	hit, err := s.cache.Get(ctx, owner, field, &v)
	if err != nil {
		s.logger.Warn("insights cache read failed", zap.Uint("owner", owner), zap.String("field", field), zap.Error(err))
	}
	if hit {
		return v, nil
	}
	v, err = compute()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, owner, field, v); err != nil {
		s.logger.Warn("insights cache write failed", zap.Uint("owner", owner), zap.String("field", field), zap.Error(err))
	}
	return v, nil
}

func cacheField(name string, day time.Time, extra ...any) string {
	field := name + ":" + day.Format(models.DateLayout)
	for _, e := range extra {
		field += fmt.Sprintf(":%v", e)
	}
	return field
}

type contactStats struct {
	id    uint
	count int
	last  time.Time
}

// Pings lists people talked to within three years but not within the last quarter,
// most talked-to first. topN below one means the default.
func (s *InsightsService) Pings(ctx context.Context, owner uint, topN int) ([]Ping, error) {
	if topN < 1 {
		topN = DefaultPingCount
	}
	day := today(s.clock)
	return cached(ctx, s, owner, cacheField("pings", day, topN), func() ([]Ping, error) {
		return s.pings(ctx, owner, day, topN)
	})
}

func (s *InsightsService) pings(ctx context.Context, owner uint, day time.Time, topN int) ([]Ping, error) {
	const op = "insights.pings"
	since := day.AddDate(0, 0, -ThreeYearDays)
	rows, err := s.conversations.ContactDates(ctx, owner, &since)
	if err != nil {
		return nil, classify(op, "conversation", err)
	}

	stats := make(map[uint]*contactStats)
	for _, r := range rows {
		st, ok := stats[r.PersonID]
		if !ok {
			st = &contactStats{id: r.PersonID}
			stats[r.PersonID] = st
		}
		st.count++
		if d := models.CivilDate(r.Date.UTC()); d.After(st.last) {
			st.last = d
		}
	}

	cutoff := day.AddDate(0, 0, -QuarterDays)
	due := make([]*contactStats, 0, len(stats))
	for _, st := range stats {
		if st.last.Before(cutoff) {
			due = append(due, st)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].count != due[j].count {
			return due[i].count > due[j].count
		}
		if !due[i].last.Equal(due[j].last) {
			return due[i].last.After(due[j].last)
		}
		return due[i].id < due[j].id
	})
	if len(due) > topN {
		due = due[:topN]
	}

	ids := make([]uint, len(due))
	for i, st := range due {
		ids[i] = st.id
	}
	people, err := s.people.FindByIDs(ctx, owner, ids)
	if err != nil {
		return nil, classify(op, "person", err)
	}
	byID := make(map[uint]models.Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}

	pings := make([]Ping, 0, len(due))
	for _, st := range due {
		p, ok := byID[st.id]
		if !ok {
			continue
		}
		pings = append(pings, Ping{Person: p, NumConversations: st.count, LastContact: st.last})
	}
	return pings, nil
}

// Orbit counts the people talked to in the last quarter, year, three years and ever.
func (s *InsightsService) Orbit(ctx context.Context, owner uint) (Orbit, error) {
	day := today(s.clock)
	return cached(ctx, s, owner, cacheField("orbit", day), func() (Orbit, error) {
		return s.orbit(ctx, owner, day)
	})
}

func (s *InsightsService) orbit(ctx context.Context, owner uint, day time.Time) (Orbit, error) {
	rows, err := s.conversations.ContactDates(ctx, owner, nil)
	if err != nil {
		return Orbit{}, classify("insights.orbit", "conversation", err)
	}

	last := make(map[uint]time.Time)
	for _, r := range rows {
		if d := models.CivilDate(r.Date.UTC()); d.After(last[r.PersonID]) {
			last[r.PersonID] = d
		}
	}

	quarter := day.AddDate(0, 0, -QuarterDays)
	year := day.AddDate(0, 0, -YearDays)
	threeYears := day.AddDate(0, 0, -ThreeYearDays)
	orbit := Orbit{Ever: len(last)}
	for _, d := range last {
		if !d.Before(quarter) {
			orbit.Quarter++
		}
		if !d.Before(year) {
			orbit.Year++
		}
		if !d.Before(threeYears) {
			orbit.ThreeYears++
		}
	}
	return orbit, nil
}

// Trend returns conversation counts per week over the last 355 days or per
// month over the last year.
func (s *InsightsService) Trend(ctx context.Context, owner uint, period string) (Series, error) {
	const op = "insights.trend"
	day := today(s.clock)

	var since time.Time
	var count func([]repository.ConversationDate) Series
	switch period {
	case "week":
		since, _ = WeekWindow(day, MaxTrendDays)
		count = func(rows []repository.ConversationDate) Series { return CountByWeek(rows, day, MaxTrendDays) }
	case "month":
		since = MonthWindow(day, TrendMonths)
		count = func(rows []repository.ConversationDate) Series { return CountByMonth(rows, day, TrendMonths) }
	default:
		return Series{}, NewValidationError(op, "period", fmt.Sprintf("unknown period %q, use week or month", period))
	}

	return cached(ctx, s, owner, cacheField("trend", day, period), func() (Series, error) {
		rows, err := s.conversations.ConversationDates(ctx, owner, since)
		if err != nil {
			return Series{}, classify(op, "conversation", err)
		}
		return count(rows), nil
	})
}

// Dashboard gathers what the home page shows.
func (s *InsightsService) Dashboard(ctx context.Context, owner uint) (Dashboard, error) {
	const op = "insights.dashboard"

	newPeople, err := s.people.CreatedSince(ctx, owner, s.clock.Now().AddDate(0, 0, -NewPeopleDays), DashboardSize)
	if err != nil {
		return Dashboard{}, classify(op, "person", err)
	}

	notSeed := false
	recent, err := s.conversations.List(ctx, owner, repository.ConversationFilter{
		Seed:   &notSeed,
		Paging: repository.Paging{Page: 1, PerPage: DashboardSize},
	})
	if err != nil {
		return Dashboard{}, classify(op, "conversation", err)
	}
	seeds, err := s.conversations.List(ctx, owner, repository.ConversationFilter{
		SeedsOnly: true,
		Paging:    repository.Paging{Page: 1, PerPage: DashboardSize},
	})
	if err != nil {
		return Dashboard{}, classify(op, "conversation", err)
	}

	orbit, err := s.Orbit(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		NewPeople:     newPeople,
		Conversations: recent.Items,
		Seeds:         seeds.Items,
		Orbit:         orbit,
	}, nil
}
