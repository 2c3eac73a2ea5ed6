package repository

import (
	"context"
	"fmt"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/slug"
	"gorm.io/gorm"
)

type sluggedRecord interface {
	models.Owned
	slug.Sluggable
}

// slugTaken checks candidates against live rows of the same table and owner,
// leaving out the record itself.
func slugTaken(db *gorm.DB, rec sluggedRecord, owner uint) slug.TakenFunc {
	table := rec.TableName()
	self := rec.GetID()
	return func(ctx context.Context, candidate string) (bool, error) {
		q := db.WithContext(ctx).Table(table).Scopes(OwnedBy(table, owner)).Where(table+".slug = ?", candidate)
		if self != 0 {
			q = q.Where(table+".id <> ?", self)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return false, fmt.Errorf("failed to check slug %q in %s: %w", candidate, table, err)
		}
		return count > 0, nil
	}
}

func assignSlug(ctx context.Context, tx *gorm.DB, owner uint, rec sluggedRecord) error {
	return slug.Assign(ctx, rec, slugTaken(tx, rec, owner))
}
