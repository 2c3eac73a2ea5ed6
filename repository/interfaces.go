package repository

import (
	"context"
	"time"

	"github.com/camden-git/seeds/models"
)

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	Create(ctx context.Context, owner uint, p *models.Person) error
	Update(ctx context.Context, owner uint, p *models.Person) error
	GetBySlug(ctx context.Context, owner uint, slug string) (*models.Person, error)
	GetByID(ctx context.Context, owner, id uint) (*models.Person, error)
	FindBySlugs(ctx context.Context, owner uint, slugs []string) ([]models.Person, error)
	FindByIDs(ctx context.Context, owner uint, ids []uint) ([]models.Person, error)
	List(ctx context.Context, owner uint, f PersonFilter) (Page[models.Person], error)
	CreatedSince(ctx context.Context, owner uint, since time.Time, limit int) ([]models.Person, error)
	Cities(ctx context.Context, owner uint) ([]string, error)
	Companies(ctx context.Context, owner uint) ([]models.Company, error)
	Search(ctx context.Context, owner uint, prefix string, page int) ([]PersonMatch, bool, error)
	SoftDelete(ctx context.Context, owner, id uint) (int64, error)
	HardDelete(ctx context.Context, owner, id uint) error
}

// CompanyRepositoryInterface defines the methods for company data operations
type CompanyRepositoryInterface interface {
	Create(ctx context.Context, owner uint, c *models.Company) error
	Update(ctx context.Context, owner uint, c *models.Company) error
	GetBySlug(ctx context.Context, owner uint, slug string) (*models.Company, error)
	GetByID(ctx context.Context, owner, id uint) (*models.Company, error)
	FindBySlugs(ctx context.Context, owner uint, slugs []string) ([]models.Company, error)
	List(ctx context.Context, owner uint) ([]models.Company, error)
	SoftDelete(ctx context.Context, owner, id uint) (int64, error)
	HardDelete(ctx context.Context, owner, id uint) error
}

// SectorRepositoryInterface defines the methods for sector data operations
type SectorRepositoryInterface interface {
	Create(ctx context.Context, owner uint, s *models.Sector) error
	Update(ctx context.Context, owner uint, s *models.Sector) error
	GetBySlug(ctx context.Context, owner uint, slug string) (*models.Sector, error)
	FindBySlugs(ctx context.Context, owner uint, slugs []string) ([]models.Sector, error)
	List(ctx context.Context, owner uint) ([]models.Sector, error)
	SoftDelete(ctx context.Context, owner, id uint) (int64, error)
	HardDelete(ctx context.Context, owner, id uint) error
}

// GroupRepositoryInterface defines the methods for group data operations
type GroupRepositoryInterface interface {
	Create(ctx context.Context, owner uint, g *models.Group) error
	Update(ctx context.Context, owner uint, g *models.Group) error
	GetBySlug(ctx context.Context, owner uint, slug string) (*models.Group, error)
	List(ctx context.Context, owner uint) ([]models.Group, error)
	SoftDelete(ctx context.Context, owner, id uint) (int64, error)
	HardDelete(ctx context.Context, owner, id uint) error
}

// ConversationRepositoryInterface defines the methods for conversation data operations
type ConversationRepositoryInterface interface {
	Create(ctx context.Context, owner uint, c *models.Conversation) error
	Update(ctx context.Context, owner uint, c *models.Conversation) error
	GetByPublicID(ctx context.Context, owner uint, publicID string) (*models.Conversation, error)
	List(ctx context.Context, owner uint, f ConversationFilter) (Page[models.Conversation], error)
	ContactDates(ctx context.Context, owner uint, since *time.Time) ([]ContactDate, error)
	ConversationDates(ctx context.Context, owner uint, since time.Time) ([]ConversationDate, error)
	SoftDelete(ctx context.Context, owner, id uint) (int64, error)
	HardDelete(ctx context.Context, owner, id uint) error
}

// UserRepository defines the methods for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

var (
	_ PersonRepositoryInterface       = (*PersonRepository)(nil)
	_ CompanyRepositoryInterface      = (*CompanyRepository)(nil)
	_ SectorRepositoryInterface       = (*SectorRepository)(nil)
	_ GroupRepositoryInterface        = (*GroupRepository)(nil)
	_ ConversationRepositoryInterface = (*ConversationRepository)(nil)
)
