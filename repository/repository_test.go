package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/camden-git/seeds/database"
	"github.com/camden-git/seeds/models"
	"gorm.io/gorm"
)

const owner uint = 7

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "repo.db"),
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
	return db
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func createPerson(t *testing.T, repo *PersonRepository, first string, partner *uint) *models.Person {
	t.Helper()
	p := &models.Person{FirstName: first, PartnerID: partner}
	if err := repo.Create(context.Background(), owner, p); err != nil {
		t.Fatalf("Create(%s): %v", first, err)
	}
	return p
}

func partnerOf(t *testing.T, repo *PersonRepository, id uint) *uint {
	t.Helper()
	p, err := repo.GetByID(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("GetByID(%d): %v", id, err)
	}
	return p.PartnerID
}

func TestSyncPartnerRepairsBothSides(t *testing.T) {
	repo := NewPersonRepository(newTestDB(t), fixedNow)
	ctx := context.Background()

	a := createPerson(t, repo, "A", nil)
	b := createPerson(t, repo, "B", &a.ID)
	if got := partnerOf(t, repo, a.ID); got == nil || *got != b.ID {
		t.Fatalf("A.partner = %v, want %d", got, b.ID)
	}

	// C pairs with A; B is left alone rather than half linked
	c := createPerson(t, repo, "C", &a.ID)
	if got := partnerOf(t, repo, b.ID); got != nil {
		t.Errorf("B.partner = %d, want none", *got)
	}
	if got := partnerOf(t, repo, a.ID); got == nil || *got != c.ID {
		t.Errorf("A.partner = %v, want %d", got, c.ID)
	}

	// re-saving a consistent record is a no-op for the other side
	if err := repo.Update(ctx, owner, c); err != nil {
		t.Fatalf("Update(C): %v", err)
	}
	if got := partnerOf(t, repo, a.ID); got == nil || *got != c.ID {
		t.Errorf("A.partner after re-save = %v, want %d", got, c.ID)
	}

	c.PartnerID = &c.ID
	if err := repo.Update(ctx, owner, c); !errors.Is(err, ErrSelfPartner) {
		t.Errorf("self partner: err = %v, want ErrSelfPartner", err)
	}
}

func TestPersonHardDeleteClearsReferences(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db, fixedNow)
	convs := NewConversationRepository(db, fixedNow)
	ctx := context.Background()

	a := createPerson(t, repo, "A", nil)
	b := createPerson(t, repo, "B", &a.ID)
	c := &models.Person{FirstName: "C", KnownViaID: &a.ID}
	if err := repo.Create(ctx, owner, c); err != nil {
		t.Fatalf("Create(C): %v", err)
	}
	conv := &models.Conversation{People: []models.Person{*a, *b}, Date: models.CivilDate(fixedNow()), Mode: models.ModeInGroup, Summary: "x"}
	if err := convs.Create(ctx, owner, conv); err != nil {
		t.Fatalf("Create conversation: %v", err)
	}

	if err := repo.HardDelete(ctx, owner, a.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	if got := partnerOf(t, repo, b.ID); got != nil {
		t.Errorf("B.partner = %d, want none", *got)
	}
	got, err := repo.GetByID(ctx, owner, c.ID)
	if err != nil {
		t.Fatalf("GetByID(C): %v", err)
	}
	if got.KnownViaID != nil {
		t.Errorf("C.known_via = %d, want none", *got.KnownViaID)
	}
	loaded, err := convs.GetByPublicID(ctx, owner, conv.PublicID)
	if err != nil {
		t.Fatalf("GetByPublicID: %v", err)
	}
	if len(loaded.People) != 1 || loaded.People[0].ID != b.ID {
		t.Errorf("conversation people = %v, want only B", loaded.People)
	}
}

func TestSlugUniquePerOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewPersonRepository(db, fixedNow)
	ctx := context.Background()

	first := createPerson(t, repo, "Jane", nil)
	second := createPerson(t, repo, "Jane", nil)
	if first.Slug != "jane" || second.Slug != "jane-1" {
		t.Errorf("slugs = %s, %s, want jane, jane-1", first.Slug, second.Slug)
	}

	other := &models.Person{FirstName: "Jane"}
	if err := repo.Create(ctx, owner+1, other); err != nil {
		t.Fatalf("Create for another owner: %v", err)
	}
	if other.Slug != "jane" {
		t.Errorf("other owner's slug = %s, want jane", other.Slug)
	}

	// the partial index rejects a live duplicate written behind the generator's back
	dup := models.Person{FirstName: "Jane", Slug: "jane"}
	dup.StampCreate(owner, fixedNow())
	err := db.Omit("Sectors").Create(&dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate live slug: err = %v, want ErrDuplicatedKey", err)
	}

	n, err := repo.SoftDelete(ctx, owner, first.ID)
	if err != nil || n != 1 {
		t.Fatalf("SoftDelete = %d, %v", n, err)
	}
	if _, err := repo.GetBySlug(ctx, owner, "jane"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetBySlug after soft delete: err = %v, want not found", err)
	}
	third := createPerson(t, repo, "Jane", nil)
	if third.Slug != "jane" {
		t.Errorf("slug after soft delete = %s, want jane", third.Slug)
	}
}

func TestSlugStableAcrossSaves(t *testing.T) {
	repo := NewPersonRepository(newTestDB(t), fixedNow)
	ctx := context.Background()

	createPerson(t, repo, "Jane", nil)
	p := createPerson(t, repo, "Jane", nil)
	p.Notes = "met at the conference"
	if err := repo.Update(ctx, owner, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Slug != "jane-1" {
		t.Errorf("slug after save = %s, want jane-1", p.Slug)
	}
	p.LastName = "Roe"
	if err := repo.Update(ctx, owner, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Slug != "jane-roe" {
		t.Errorf("slug after rename = %s, want jane-roe", p.Slug)
	}
}

func TestScopedLookupsHideOtherOwners(t *testing.T) {
	db := newTestDB(t)
	companies := NewCompanyRepository(db, fixedNow)
	ctx := context.Background()

	c := &models.Company{Name: "Acme"}
	if err := companies.Create(ctx, owner, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := companies.GetBySlug(ctx, owner+1, "acme"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetBySlug as another owner: err = %v, want not found", err)
	}
	if n, err := companies.SoftDelete(ctx, owner+1, c.ID); err != nil || n != 0 {
		t.Errorf("SoftDelete as another owner = %d, %v, want 0, nil", n, err)
	}
	if err := companies.HardDelete(ctx, owner+1, c.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("HardDelete as another owner: err = %v, want not found", err)
	}
}

func TestCatalogCreateIgnoresCallerID(t *testing.T) {
	repo := NewCompanyRepository(newTestDB(t), fixedNow)
	ctx := context.Background()

	acme := &models.Company{Name: "Acme"}
	if err := repo.Create(ctx, owner, acme); err != nil {
		t.Fatalf("Create(Acme): %v", err)
	}
	beta := &models.Company{ID: acme.ID, Name: "Beta"}
	if err := repo.Create(ctx, owner, beta); err != nil {
		t.Fatalf("Create(Beta) with a stale ID: %v", err)
	}
	if beta.ID == acme.ID {
		t.Errorf("Beta.ID = %d, want a fresh ID", beta.ID)
	}

	got, err := repo.GetBySlug(ctx, owner, "acme")
	if err != nil {
		t.Fatalf("GetBySlug(acme): %v", err)
	}
	if got.Name != "Acme" {
		t.Errorf("acme name = %q, want Acme", got.Name)
	}
}
