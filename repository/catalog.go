package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogEntity[T any] interface {
	*T
	models.Owned
	slug.Sluggable
	SetID(id uint)
}

// catalogRepository carries the create/read/update/soft-delete plumbing
// shared by companies, sectors and groups.
type catalogRepository[T any, P catalogEntity[T]] struct {
	DB  *gorm.DB
	now func() time.Time
}

func (r *catalogRepository[T, P]) table() string {
	return P(new(T)).TableName()
}

// Create inserts rec for owner with a fresh slug.
func (r *catalogRepository[T, P]) Create(ctx context.Context, owner uint, rec P) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec.SetID(0)
		rec.GetAudit().StampCreate(owner, r.now())
		if err := assignSlug(ctx, tx, owner, rec); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create %s %q: %w", r.table(), rec.SlugSource(), err)
		}
		return nil
	})
}

// Update saves every column of rec and re-slugs it.
func (r *catalogRepository[T, P]) Update(ctx context.Context, owner uint, rec P) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.update(ctx, tx, owner, rec)
	})
}

func (r *catalogRepository[T, P]) update(ctx context.Context, tx *gorm.DB, owner uint, rec P) error {
	table := r.table()
	var count int64
	if err := tx.Model(rec).Scopes(OwnedBy(table, owner)).Where(table+".id = ?", rec.GetID()).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s ID %d: %w", table, rec.GetID(), err)
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	rec.GetAudit().StampUpdate(owner, r.now())
	if err := assignSlug(ctx, tx, owner, rec); err != nil {
		return err
	}
	if err := tx.Omit(clause.Associations).Save(rec).Error; err != nil {
		return fmt.Errorf("failed to update %s ID %d: %w", table, rec.GetID(), err)
	}
	return nil
}

// GetBySlug retrieves a live record of owner.
func (r *catalogRepository[T, P]) GetBySlug(ctx context.Context, owner uint, s string) (P, error) {
	table := r.table()
	var rec T
	err := r.DB.WithContext(ctx).Scopes(OwnedBy(table, owner)).Where(table+".slug = ?", s).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get %s by slug %q: %w", table, s, err)
	}
	return P(&rec), nil
}

// GetByID retrieves a live record of owner.
func (r *catalogRepository[T, P]) GetByID(ctx context.Context, owner, id uint) (P, error) {
	table := r.table()
	var rec T
	err := r.DB.WithContext(ctx).Scopes(OwnedBy(table, owner)).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get %s by ID %d: %w", table, id, err)
	}
	return P(&rec), nil
}

// FindBySlugs returns the live records of owner matching slugs. Unknown slugs are skipped.
func (r *catalogRepository[T, P]) FindBySlugs(ctx context.Context, owner uint, slugs []string) ([]T, error) {
	table := r.table()
	var recs []T
	if len(slugs) == 0 {
		return recs, nil
	}
	err := r.DB.WithContext(ctx).Scopes(OwnedBy(table, owner)).
		Where(table+".slug IN ?", slugs).Order(table + ".id").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find %s by slug: %w", table, err)
	}
	return recs, nil
}

// SoftDelete marks a record inactive and returns the rows affected.
func (r *catalogRepository[T, P]) SoftDelete(ctx context.Context, owner, id uint) (int64, error) {
	return softDelete(ctx, r.DB, P(new(T)), owner, id, r.now())
}

// hardDelete removes join rows matching column = id from each join model, then the record.
func (r *catalogRepository[T, P]) hardDelete(ctx context.Context, owner, id uint, unlink func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := P(new(T))
		if err := ensureOwned(tx, model, owner, id); err != nil {
			return err
		}
		if err := unlink(tx); err != nil {
			return err
		}
		if err := tx.Delete(model, id).Error; err != nil {
			return fmt.Errorf("failed to delete %s ID %d: %w", r.table(), id, err)
		}
		return nil
	})
}

// countedRow is a catalog id with the number of live people attached to it.
type countedRow struct {
	ID        uint
	NumPeople int64
}
