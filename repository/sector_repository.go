package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/camden-git/seeds/models"
	"gorm.io/gorm"
)

// SectorRepository handles database operations for sectors.
type SectorRepository struct {
	catalogRepository[models.Sector, *models.Sector]
}

func NewSectorRepository(db *gorm.DB, now func() time.Time) *SectorRepository {
	return &SectorRepository{catalogRepository[models.Sector, *models.Sector]{DB: db, now: now}}
}

// List returns live sectors of owner, most populated first.
func (r *SectorRepository) List(ctx context.Context, owner uint) ([]models.Sector, error) {
	var sectors []models.Sector
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("sectors", owner)).Order("sectors.name ASC").Find(&sectors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sectors: %w", err)
	}

	var counts []countedRow
	err = r.DB.WithContext(ctx).Table("person_sectors").
		Select("person_sectors.sector_id AS id, COUNT(*) AS num_people").
		Joins("JOIN people ON people.id = person_sectors.person_id").
		Scopes(OwnedBy("people", owner)).
		Group("person_sectors.sector_id").Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count people per sector: %w", err)
	}
	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.ID] = c.NumPeople
	}
	for i := range sectors {
		sectors[i].NumPeople = byID[sectors[i].ID]
	}
	sortByPeople(sectors, func(s models.Sector) (int64, string) { return s.NumPeople, s.Name })
	return sectors, nil
}

// HardDelete removes a sector and its person links.
func (r *SectorRepository) HardDelete(ctx context.Context, owner, id uint) error {
	return r.hardDelete(ctx, owner, id, func(tx *gorm.DB) error {
		if err := tx.Where("sector_id = ?", id).Delete(&models.PersonSector{}).Error; err != nil {
			return fmt.Errorf("failed to unlink people from sector ID %d: %w", id, err)
		}
		return nil
	})
}

// sortByPeople orders by people count descending, then name. The sort is stable.
func sortByPeople[T any](items []T, key func(T) (int64, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, ni := key(items[i])
		cj, nj := key(items[j])
		if ci != cj {
			return ci > cj
		}
		return ni < nj
	})
}
