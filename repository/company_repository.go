package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/camden-git/seeds/models"
	"gorm.io/gorm"
)

// CompanyRepository handles database operations for companies.
type CompanyRepository struct {
	catalogRepository[models.Company, *models.Company]
}

func NewCompanyRepository(db *gorm.DB, now func() time.Time) *CompanyRepository {
	return &CompanyRepository{catalogRepository[models.Company, *models.Company]{DB: db, now: now}}
}

// List returns live companies of owner, most populated first.
func (r *CompanyRepository) List(ctx context.Context, owner uint) ([]models.Company, error) {
	var companies []models.Company
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("companies", owner)).Order("companies.name ASC").Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	var counts []countedRow
	err = r.DB.WithContext(ctx).Model(&models.Person{}).Scopes(OwnedBy("people", owner)).
		Select("people.company_id AS id, COUNT(*) AS num_people").
		Where("people.company_id IS NOT NULL").
		Group("people.company_id").Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count people per company: %w", err)
	}
	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.ID] = c.NumPeople
	}
	for i := range companies {
		companies[i].NumPeople = byID[companies[i].ID]
	}
	sortByPeople(companies, func(c models.Company) (int64, string) { return c.NumPeople, c.Name })
	return companies, nil
}

// HardDelete removes a company. People who worked there keep their record with no company.
func (r *CompanyRepository) HardDelete(ctx context.Context, owner, id uint) error {
	return r.hardDelete(ctx, owner, id, func(tx *gorm.DB) error {
		if err := tx.Model(&models.Person{}).Where("company_id = ?", id).Update("company_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink people from company ID %d: %w", id, err)
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.GroupCompany{}).Error; err != nil {
			return fmt.Errorf("failed to unlink groups from company ID %d: %w", id, err)
		}
		return nil
	})
}
