package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/camden-git/seeds/models"
	"gorm.io/gorm"
)

const DefaultPerPage = 10

// OwnedBy restricts a query on table to live rows of owner.
func OwnedBy(table string, owner uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".active = ? AND "+table+".created_by_id = ?", true, owner)
	}
}

// Paging selects one page of a list. Page 0 returns everything.
type Paging struct {
	Page    int
	PerPage int
}

func (p Paging) bounds() (limit, offset int, ok bool) {
	if p.Page < 1 {
		return 0, 0, false
	}
	per := p.PerPage
	if per < 1 {
		per = DefaultPerPage
	}
	return per, (p.Page - 1) * per, true
}

// apply limits q to the page, fetching one extra row so HasNext can be computed.
func (p Paging) apply(q *gorm.DB) *gorm.DB {
	limit, offset, ok := p.bounds()
	if !ok {
		return q
	}
	return q.Limit(limit + 1).Offset(offset)
}

// Page is one page of results.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	HasNext bool `json:"has_next"`
}

func newPage[T any](items []T, p Paging) Page[T] {
	limit, _, ok := p.bounds()
	if !ok {
		return Page[T]{Items: items, Page: 1}
	}
	page := Page[T]{Items: items, Page: p.Page}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasNext = true
	}
	return page
}

// lookupID resolves a slug under owner. A miss is reported as ok=false, not as an error.
func lookupID(ctx context.Context, db *gorm.DB, table string, owner uint, slug string) (uint, bool, error) {
	var ids []uint
	err := db.WithContext(ctx).Table(table).Scopes(OwnedBy(table, owner)).
		Where(table+".slug = ?", slug).Limit(1).Pluck(table+".id", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve %s slug %q: %w", table, slug, err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// softDelete flips active off for one live row of owner and returns the rows affected.
func softDelete(ctx context.Context, db *gorm.DB, model models.Owned, owner, id uint, now time.Time) (int64, error) {
	table := model.TableName()
	result := db.WithContext(ctx).Model(model).Scopes(OwnedBy(table, owner)).
		Where(table+".id = ?", id).
		Updates(map[string]interface{}{
			"active":         false,
			"modified_by_id": owner,
			"modified_on":    now.UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to soft delete %s ID %d: %w", table, id, result.Error)
	}
	return result.RowsAffected, nil
}

// ensureOwned checks that the row exists for owner, live or not. Hard deletes use it.
func ensureOwned(tx *gorm.DB, model models.Owned, owner, id uint) error {
	var count int64
	table := model.TableName()
	err := tx.Model(model).Where(table+".id = ? AND "+table+".created_by_id = ?", id, owner).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to look up %s ID %d: %w", table, id, err)
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
