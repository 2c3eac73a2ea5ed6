package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/database"
	"go.uber.org/zap"
)

const owner uint = 1

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(days int) { c.now = c.now.AddDate(0, 0, days) }

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func setupServices(t *testing.T) (*Services, *fakeClock) {
	t.Helper()
	return setupServicesWithCache(t, cache.Nop{})
}

func setupServicesWithCache(t *testing.T, c cache.Cache) (*Services, *fakeClock) {
	t.Helper()

	db, err := database.InitGormDB(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "seeds.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("InitGormDB: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("AutoMigrateModels: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	clock := &fakeClock{now: time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC)}
	return New(db, c, clock, zap.NewNop()), clock
}

func mustPerson(t *testing.T, svc *Services, in PersonInput) string {
	t.Helper()
	p, err := svc.People.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("People.Create(%+v): %v", in, err)
	}
	return p.Slug
}

func mustConversation(t *testing.T, svc *Services, in ConversationInput) string {
	t.Helper()
	c, err := svc.Conversations.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Conversations.Create(%+v): %v", in, err)
	}
	return c.PublicID
}

func fieldError(t *testing.T, err error, field string) {
	t.Helper()
	if !IsValidation(err) {
		t.Fatalf("err = %v, want a validation error", err)
	}
	se := err.(*Error)
	if _, ok := se.Fields[field]; !ok {
		t.Errorf("Fields = %v, want an entry for %q", se.Fields, field)
	}
}
