package database

import (
	"fmt"

	"gorm.io/gorm"
)

var sluggedTables = []string{"people", "companies", "sectors", "groups"}

// ensureSlugIndexes makes slugs unique per owner among live rows. Soft deleted
// rows give up their slug so it can be reused. sqlite and postgres both accept
// partial indexes in this form.
func ensureSlugIndexes(db *gorm.DB) error {
	for _, table := range sluggedTables {
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_owner_slug ON %s (created_by_id, slug) WHERE active",
			table, table,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create slug index on %s: %w", table, err)
		}
	}
	return nil
}
