package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type CompanyInput struct {
	Name string `json:"name" validate:"required,max=64"`
}

type SectorInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

// GroupInput lists members by slug.
type GroupInput struct {
	Name      string   `json:"name" validate:"required,max=200"`
	About     string   `json:"about"`
	People    []string `json:"people"`
	Companies []string `json:"companies"`
}

// CompanyService manages the companies people work at.
type CompanyService struct {
	companies repository.CompanyRepositoryInterface
	cache     cache.Cache
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewCompanyService(companies repository.CompanyRepositoryInterface, c cache.Cache, logger *zap.Logger) *CompanyService {
	return &CompanyService{companies: companies, cache: c, validate: newValidator(), logger: logger}
}

func (s *CompanyService) Create(ctx context.Context, owner uint, in CompanyInput) (*models.Company, error) {
	const op = "companies.create"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	company := &models.Company{Name: strings.TrimSpace(in.Name)}
	if err := s.companies.Create(ctx, owner, company); err != nil {
		return nil, classify(op, "company", err)
	}
	s.logger.Info("company created", zap.Uint("owner", owner), zap.String("slug", company.Slug))
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, owner uint, slug string, in CompanyInput) (*models.Company, error) {
	const op = "companies.update"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	company, err := s.companies.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify(op, "company", err)
	}
	company.Name = strings.TrimSpace(in.Name)
	if err := s.companies.Update(ctx, owner, company); err != nil {
		return nil, classify(op, "company", err)
	}
	return company, nil
}

func (s *CompanyService) Get(ctx context.Context, owner uint, slug string) (*models.Company, error) {
	company, err := s.companies.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify("companies.get", "company", err)
	}
	return company, nil
}

// List returns companies with the most people first.
func (s *CompanyService) List(ctx context.Context, owner uint) ([]models.Company, error) {
	companies, err := s.companies.List(ctx, owner)
	if err != nil {
		return nil, classify("companies.list", "company", err)
	}
	return companies, nil
}

func (s *CompanyService) SoftDelete(ctx context.Context, owner uint, slug string) (int64, error) {
	const op = "companies.soft_delete"
	company, err := s.companies.GetBySlug(ctx, owner, slug)
	if err != nil {
		return 0, classify(op, "company", err)
	}
	n, err := s.companies.SoftDelete(ctx, owner, company.ID)
	if err != nil {
		return 0, classify(op, "company", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return n, nil
}

func (s *CompanyService) HardDelete(ctx context.Context, owner uint, slug string) error {
	const op = "companies.hard_delete"
	company, err := s.companies.GetBySlug(ctx, owner, slug)
	if err != nil {
		return classify(op, "company", err)
	}
	if err := s.companies.HardDelete(ctx, owner, company.ID); err != nil {
		return classify(op, "company", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return nil
}

// SectorService manages the industries people are tagged with.
type SectorService struct {
	sectors  repository.SectorRepositoryInterface
	cache    cache.Cache
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSectorService(sectors repository.SectorRepositoryInterface, c cache.Cache, logger *zap.Logger) *SectorService {
	return &SectorService{sectors: sectors, cache: c, validate: newValidator(), logger: logger}
}

func (s *SectorService) Create(ctx context.Context, owner uint, in SectorInput) (*models.Sector, error) {
	const op = "sectors.create"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	sector := &models.Sector{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.sectors.Create(ctx, owner, sector); err != nil {
		return nil, classify(op, "sector", err)
	}
	s.logger.Info("sector created", zap.Uint("owner", owner), zap.String("slug", sector.Slug))
	return sector, nil
}

func (s *SectorService) Update(ctx context.Context, owner uint, slug string, in SectorInput) (*models.Sector, error) {
	const op = "sectors.update"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	sector, err := s.sectors.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify(op, "sector", err)
	}
	sector.Name = strings.TrimSpace(in.Name)
	sector.Description = in.Description
	if err := s.sectors.Update(ctx, owner, sector); err != nil {
		return nil, classify(op, "sector", err)
	}
	return sector, nil
}

func (s *SectorService) Get(ctx context.Context, owner uint, slug string) (*models.Sector, error) {
	sector, err := s.sectors.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify("sectors.get", "sector", err)
	}
	return sector, nil
}

func (s *SectorService) List(ctx context.Context, owner uint) ([]models.Sector, error) {
	sectors, err := s.sectors.List(ctx, owner)
	if err != nil {
		return nil, classify("sectors.list", "sector", err)
	}
	return sectors, nil
}

func (s *SectorService) SoftDelete(ctx context.Context, owner uint, slug string) (int64, error) {
	const op = "sectors.soft_delete"
	sector, err := s.sectors.GetBySlug(ctx, owner, slug)
	if err != nil {
		return 0, classify(op, "sector", err)
	}
	n, err := s.sectors.SoftDelete(ctx, owner, sector.ID)
	if err != nil {
		return 0, classify(op, "sector", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return n, nil
}

func (s *SectorService) HardDelete(ctx context.Context, owner uint, slug string) error {
	const op = "sectors.hard_delete"
	sector, err := s.sectors.GetBySlug(ctx, owner, slug)
	if err != nil {
		return classify(op, "sector", err)
	}
	if err := s.sectors.HardDelete(ctx, owner, sector.ID); err != nil {
		return classify(op, "sector", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return nil
}

// GroupService manages named sets of people and companies.
type GroupService struct {
	groups    repository.GroupRepositoryInterface
	people    repository.PersonRepositoryInterface
	companies repository.CompanyRepositoryInterface
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewGroupService(
	groups repository.GroupRepositoryInterface,
	people repository.PersonRepositoryInterface,
	companies repository.CompanyRepositoryInterface,
	logger *zap.Logger,
) *GroupService {
	return &GroupService{groups: groups, people: people, companies: companies, validate: newValidator(), logger: logger}
}

func (s *GroupService) Create(ctx context.Context, owner uint, in GroupInput) (*models.Group, error) {
	const op = "groups.create"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	group := &models.Group{}
	if err := s.apply(ctx, op, owner, group, in); err != nil {
		return nil, err
	}
	if err := s.groups.Create(ctx, owner, group); err != nil {
		return nil, classify(op, "group", err)
	}
	s.logger.Info("group created", zap.Uint("owner", owner), zap.String("slug", group.Slug))
	return s.Get(ctx, owner, group.Slug)
}

func (s *GroupService) Update(ctx context.Context, owner uint, slug string, in GroupInput) (*models.Group, error) {
	const op = "groups.update"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	group, err := s.groups.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify(op, "group", err)
	}
	if err := s.apply(ctx, op, owner, group, in); err != nil {
		return nil, err
	}
	if err := s.groups.Update(ctx, owner, group); err != nil {
		return nil, classify(op, "group", err)
	}
	return s.Get(ctx, owner, group.Slug)
}

func (s *GroupService) apply(ctx context.Context, op string, owner uint, g *models.Group, in GroupInput) error {
	g.Name = strings.TrimSpace(in.Name)
	g.About = in.About

	fields := make(map[string]string)
	people, err := s.people.FindBySlugs(ctx, owner, in.People)
	if err != nil {
		return classify(op, "person", err)
	}
	if missing := missingSlugs(in.People, people, func(p models.Person) string { return p.Slug }); len(missing) > 0 {
		fields["people"] = fmt.Sprintf("unknown people: %s", strings.Join(missing, ", "))
	}
	companies, err := s.companies.FindBySlugs(ctx, owner, in.Companies)
	if err != nil {
		return classify(op, "company", err)
	}
	if missing := missingSlugs(in.Companies, companies, func(c models.Company) string { return c.Slug }); len(missing) > 0 {
		fields["companies"] = fmt.Sprintf("unknown companies: %s", strings.Join(missing, ", "))
	}
	if len(fields) > 0 {
		return newFieldsError(op, fields)
	}
	g.People = people
	g.Companies = companies
	return nil
}

func (s *GroupService) Get(ctx context.Context, owner uint, slug string) (*models.Group, error) {
	group, err := s.groups.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify("groups.get", "group", err)
	}
	return group, nil
}

func (s *GroupService) List(ctx context.Context, owner uint) ([]models.Group, error) {
	groups, err := s.groups.List(ctx, owner)
	if err != nil {
		return nil, classify("groups.list", "group", err)
	}
	return groups, nil
}

func (s *GroupService) SoftDelete(ctx context.Context, owner uint, slug string) (int64, error) {
	const op = "groups.soft_delete"
	group, err := s.groups.GetBySlug(ctx, owner, slug)
	if err != nil {
		return 0, classify(op, "group", err)
	}
	n, err := s.groups.SoftDelete(ctx, owner, group.ID)
	if err != nil {
		return 0, classify(op, "group", err)
	}
	return n, nil
}

func (s *GroupService) HardDelete(ctx context.Context, owner uint, slug string) error {
	const op = "groups.hard_delete"
	group, err := s.groups.GetBySlug(ctx, owner, slug)
	if err != nil {
		return classify(op, "group", err)
	}
	if err := s.groups.HardDelete(ctx, owner, group.ID); err != nil {
		return classify(op, "group", err)
	}
	return nil
}

func invalidate(ctx context.Context, c cache.Cache, logger *zap.Logger, owner uint) {
	if err := c.Invalidate(ctx, owner); err != nil {
		logger.Warn("failed to invalidate insights cache", zap.Uint("owner", owner), zap.Error(err))
	}
}
