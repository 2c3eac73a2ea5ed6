package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/seeds/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository handles database operations for groups and their members.
type GroupRepository struct {
	catalogRepository[models.Group, *models.Group]
}

func NewGroupRepository(db *gorm.DB, now func() time.Time) *GroupRepository {
	return &GroupRepository{catalogRepository[models.Group, *models.Group]{DB: db, now: now}}
}

// Create inserts a group with its members.
func (r *GroupRepository) Create(ctx context.Context, owner uint, g *models.Group) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g.ID = 0
		g.StampCreate(owner, r.now())
		if err := assignSlug(ctx, tx, owner, g); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(g).Error; err != nil {
			return fmt.Errorf("failed to create group %q: %w", g.Name, err)
		}
		return replaceMembers(tx, g)
	})
}

// Update saves a group and replaces its members.
func (r *GroupRepository) Update(ctx context.Context, owner uint, g *models.Group) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.update(ctx, tx, owner, g); err != nil {
			return err
		}
		return replaceMembers(tx, g)
	})
}

func replaceMembers(tx *gorm.DB, g *models.Group) error {
	if err := tx.Where("group_id = ?", g.ID).Delete(&models.GroupPerson{}).Error; err != nil {
		return fmt.Errorf("failed to clear people of group ID %d: %w", g.ID, err)
	}
	if err := tx.Where("group_id = ?", g.ID).Delete(&models.GroupCompany{}).Error; err != nil {
		return fmt.Errorf("failed to clear companies of group ID %d: %w", g.ID, err)
	}

	people := make([]models.GroupPerson, 0, len(g.People))
	seen := make(map[uint]bool)
	for _, p := range g.People {
		if !seen[p.ID] {
			seen[p.ID] = true
			people = append(people, models.GroupPerson{GroupID: g.ID, PersonID: p.ID})
		}
	}
	if len(people) > 0 {
		if err := tx.Create(&people).Error; err != nil {
			return fmt.Errorf("failed to add people to group ID %d: %w", g.ID, err)
		}
	}

	companies := make([]models.GroupCompany, 0, len(g.Companies))
	seen = make(map[uint]bool)
	for _, c := range g.Companies {
		if !seen[c.ID] {
			seen[c.ID] = true
			companies = append(companies, models.GroupCompany{GroupID: g.ID, CompanyID: c.ID})
		}
	}
	if len(companies) > 0 {
		if err := tx.Create(&companies).Error; err != nil {
			return fmt.Errorf("failed to add companies to group ID %d: %w", g.ID, err)
		}
	}
	return nil
}

// GetBySlug retrieves a live group of owner with its live members.
func (r *GroupRepository) GetBySlug(ctx context.Context, owner uint, slug string) (*models.Group, error) {
	var group models.Group
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("groups", owner)).
		Preload("People", "active = ?", true).
		Preload("Companies", "active = ?", true).
		Where("groups.slug = ?", slug).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get group by slug %q: %w", slug, err)
	}
	return &group, nil
}

// List returns live groups of owner by name.
func (r *GroupRepository) List(ctx context.Context, owner uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("groups", owner)).Order("groups.name ASC, groups.id ASC").Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// HardDelete removes a group and its member links.
func (r *GroupRepository) HardDelete(ctx context.Context, owner, id uint) error {
	return r.hardDelete(ctx, owner, id, func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPerson{}).Error; err != nil {
			return fmt.Errorf("failed to unlink people from group ID %d: %w", id, err)
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupCompany{}).Error; err != nil {
			return fmt.Errorf("failed to unlink companies from group ID %d: %w", id, err)
		}
		return nil
	})
}
