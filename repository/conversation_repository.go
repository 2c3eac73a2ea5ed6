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

// ConversationFilter narrows List. Sector and Person are slugs; ones that do
// not resolve for the owner are ignored.
type ConversationFilter struct {
	Sector    string
	Mode      string
	SeedsOnly bool
	Since     *time.Time
	Person    string
	Seed      *bool
	Paging
}

// ConversationRepository handles database operations for conversations.
type ConversationRepository struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewConversationRepository(db *gorm.DB, now func() time.Time) *ConversationRepository {
	return &ConversationRepository{DB: db, now: now}
}

// Create inserts a conversation and its participants. The model's save hook
// rejects live seeds before anything is written.
func (r *ConversationRepository) Create(ctx context.Context, owner uint, c *models.Conversation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c.ID = 0
		c.StampCreate(owner, r.now())
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return fmt.Errorf("failed to create conversation %q: %w", c.Summary, err)
		}
		return replacePeople(tx, c)
	})
}

// Update saves every column of c and replaces its participants.
func (r *ConversationRepository) Update(ctx context.Context, owner uint, c *models.Conversation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Conversation{}).Scopes(OwnedBy("conversations", owner)).
			Where("conversations.id = ?", c.ID).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to look up conversation ID %d: %w", c.ID, err)
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		c.StampUpdate(owner, r.now())
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return fmt.Errorf("failed to update conversation ID %d: %w", c.ID, err)
		}
		return replacePeople(tx, c)
	})
}

func replacePeople(tx *gorm.DB, c *models.Conversation) error {
	if err := tx.Where("conversation_id = ?", c.ID).Delete(&models.ConversationPerson{}).Error; err != nil {
		return fmt.Errorf("failed to clear people of conversation ID %d: %w", c.ID, err)
	}
	rows := make([]models.ConversationPerson, 0, len(c.People))
	seen := make(map[uint]bool)
	for _, p := range c.People {
		if !seen[p.ID] {
			seen[p.ID] = true
			rows = append(rows, models.ConversationPerson{ConversationID: c.ID, PersonID: p.ID})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to add people to conversation ID %d: %w", c.ID, err)
	}
	return nil
}

// GetByPublicID retrieves a live conversation of owner with its live participants.
func (r *ConversationRepository) GetByPublicID(ctx context.Context, owner uint, publicID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("conversations", owner)).
		Preload("People", "active = ?", true).
		Where("conversations.public_id = ?", publicID).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get conversation %q: %w", publicID, err)
	}
	if err := hydrateSlice(ctx, r.DB, owner, conv.People); err != nil {
		return nil, err
	}
	return &conv, nil
}

// List retrieves live conversations of owner, newest first.
func (r *ConversationRepository) List(ctx context.Context, owner uint, f ConversationFilter) (Page[models.Conversation], error) {
	q := r.DB.WithContext(ctx).Model(&models.Conversation{}).Scopes(OwnedBy("conversations", owner))

	if f.Sector != "" {
		id, ok, err := lookupID(ctx, r.DB, "sectors", owner, f.Sector)
		if err != nil {
			return Page[models.Conversation]{}, err
		}
		if ok {
			inSector := r.DB.Table("conversation_people").
				Select("conversation_people.conversation_id").
				Joins("JOIN person_sectors ON person_sectors.person_id = conversation_people.person_id").
				Where("person_sectors.sector_id = ?", id)
			q = q.Where("conversations.id IN (?)", inSector)
		}
	}
	if f.Person != "" {
		id, ok, err := lookupID(ctx, r.DB, "people", owner, f.Person)
		if err != nil {
			return Page[models.Conversation]{}, err
		}
		if ok {
			withPerson := r.DB.Table("conversation_people").Select("conversation_id").Where("person_id = ?", id)
			q = q.Where("conversations.id IN (?)", withPerson)
		}
	}
	if f.Mode != "" {
		q = q.Where("conversations.mode = ?", f.Mode)
	}
	if f.SeedsOnly {
		q = q.Where("conversations.seed = ?", true)
	} else if f.Seed != nil {
		q = q.Where("conversations.seed = ?", *f.Seed)
	}
	if f.Since != nil {
		q = q.Where("conversations.date >= ?", *f.Since)
	}

	var convs []models.Conversation
	err := f.Paging.apply(q.Preload("People", "active = ?", true).
		Order("conversations.date DESC, conversations.id DESC")).Find(&convs).Error
	if err != nil {
		return Page[models.Conversation]{}, fmt.Errorf("failed to list conversations: %w", err)
	}
	page := newPage(convs, f.Paging)
	for i := range page.Items {
		if err := hydrateSlice(ctx, r.DB, owner, page.Items[i].People); err != nil {
			return Page[models.Conversation]{}, err
		}
	}
	return page, nil
}

// SoftDelete marks a conversation inactive and returns the rows affected.
func (r *ConversationRepository) SoftDelete(ctx context.Context, owner, id uint) (int64, error) {
	return softDelete(ctx, r.DB, &models.Conversation{}, owner, id, r.now())
}

// HardDelete removes a conversation and its participant links.
func (r *ConversationRepository) HardDelete(ctx context.Context, owner, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, &models.Conversation{}, owner, id); err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.ConversationPerson{}).Error; err != nil {
			return fmt.Errorf("failed to unlink people from conversation ID %d: %w", id, err)
		}
		if err := tx.Delete(&models.Conversation{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete conversation ID %d: %w", id, err)
		}
		return nil
	})
}
