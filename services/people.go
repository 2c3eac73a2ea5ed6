package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PersonInput is the editable part of a person. References are slugs.
type PersonInput struct {
	FirstName        string   `json:"first_name" validate:"required_without=LastName,max=64"`
	LastName         string   `json:"last_name" validate:"max=64"`
	Partner          string   `json:"partner"`
	KnownVia         string   `json:"known_via"`
	Company          string   `json:"company"`
	Sectors          []string `json:"sectors"`
	City             string   `json:"city" validate:"max=50"`
	Birthday         string   `json:"birthday" validate:"omitempty,date"`
	PersonalEmail    string   `json:"personal_email" validate:"omitempty,email,max=254"`
	WorkEmail        string   `json:"work_email" validate:"omitempty,email,max=254"`
	PersonalPhone    string   `json:"personal_phone" validate:"omitempty,phone"`
	WorkPhone        string   `json:"work_phone" validate:"omitempty,phone"`
	Address          string   `json:"address"`
	OtherContactInfo string   `json:"other_contact_info"`
	Notes            string   `json:"notes"`
	Level            int      `json:"level" validate:"gte=0"`
}

// PersonListOptions are the list filters as they arrive from a request.
type PersonListOptions struct {
	Sector         string
	Company        string
	City           string
	ContactedSince string
	Page           int
}

// SearchHit is a name and slug pair for autocompletion.
type SearchHit struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SearchResult struct {
	Page        int         `json:"page"`
	MoreResults bool        `json:"more_results"`
	People      []SearchHit `json:"people"`
}

type PeopleService struct {
	people    repository.PersonRepositoryInterface
	companies repository.CompanyRepositoryInterface
	sectors   repository.SectorRepositoryInterface
	cache     cache.Cache
	clock     Clock
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewPeopleService(
	people repository.PersonRepositoryInterface,
	companies repository.CompanyRepositoryInterface,
	sectors repository.SectorRepositoryInterface,
	c cache.Cache,
	clock Clock,
	logger *zap.Logger,
) *PeopleService {
	return &PeopleService{
		people:    people,
		companies: companies,
		sectors:   sectors,
		cache:     c,
		clock:     clock,
		validate:  newValidator(),
		logger:    logger,
	}
}

func (s *PeopleService) Create(ctx context.Context, owner uint, in PersonInput) (*models.Person, error) {
	const op = "people.create"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	p := &models.Person{}
	if err := s.apply(ctx, op, owner, p, in); err != nil {
		return nil, err
	}
	if err := s.people.Create(ctx, owner, p); err != nil {
		return nil, classify(op, "person", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	s.logger.Info("person created", zap.Uint("owner", owner), zap.String("slug", p.Slug))
	return s.reload(ctx, op, owner, p.Slug)
}

func (s *PeopleService) Update(ctx context.Context, owner uint, slug string, in PersonInput) (*models.Person, error) {
	const op = "people.update"
	if err := validateInput(s.validate, op, in); err != nil {
		return nil, err
	}
	p, err := s.people.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify(op, "person", err)
	}
	if err := s.apply(ctx, op, owner, p, in); err != nil {
		return nil, err
	}
	if err := s.people.Update(ctx, owner, p); err != nil {
		return nil, classify(op, "person", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return s.reload(ctx, op, owner, p.Slug)
}

func (s *PeopleService) reload(ctx context.Context, op string, owner uint, slug string) (*models.Person, error) {
	p, err := s.people.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify(op, "person", err)
	}
	return p, nil
}

// apply copies in onto p, resolving every reference under owner.
func (s *PeopleService) apply(ctx context.Context, op string, owner uint, p *models.Person, in PersonInput) error {
	fields := make(map[string]string)

	p.FirstName = strings.TrimSpace(in.FirstName)
	p.LastName = strings.TrimSpace(in.LastName)
	p.City = strings.TrimSpace(in.City)
	p.PersonalEmail = strings.TrimSpace(in.PersonalEmail)
	p.WorkEmail = strings.TrimSpace(in.WorkEmail)
	p.PersonalPhone = in.PersonalPhone
	p.WorkPhone = in.WorkPhone
	p.Address = in.Address
	p.OtherContactInfo = in.OtherContactInfo
	p.Notes = in.Notes
	p.Level = in.Level

	p.Birthday = nil
	if in.Birthday != "" {
		if d, err := models.ParseDate(in.Birthday); err == nil {
			p.Birthday = &d
		}
	}

	p.Partner, p.PartnerID = nil, nil
	if in.Partner != "" {
		id, err := s.personID(ctx, owner, in.Partner)
		switch {
		case err != nil:
			return classify(op, "partner", err)
		case id == 0:
			fields["partner"] = fmt.Sprintf("no person %q", in.Partner)
		case id == p.ID:
			fields["partner"] = "a person cannot be their own partner"
		default:
			p.PartnerID = &id
		}
	}

	p.KnownVia, p.KnownViaID = nil, nil
	if in.KnownVia != "" {
		id, err := s.personID(ctx, owner, in.KnownVia)
		switch {
		case err != nil:
			return classify(op, "known_via", err)
		case id == 0:
			fields["known_via"] = fmt.Sprintf("no person %q", in.KnownVia)
		case id == p.ID:
			fields["known_via"] = "a person cannot be known via themselves"
		default:
			p.KnownViaID = &id
		}
	}

	p.Company, p.CompanyID = nil, nil
	if in.Company != "" {
		company, err := s.companies.GetBySlug(ctx, owner, in.Company)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fields["company"] = fmt.Sprintf("no company %q", in.Company)
		case err != nil:
			return classify(op, "company", err)
		default:
			p.CompanyID = &company.ID
		}
	}

	p.Sectors = nil
	if len(in.Sectors) > 0 {
		sectors, err := s.sectors.FindBySlugs(ctx, owner, in.Sectors)
		if err != nil {
			return classify(op, "sector", err)
		}
		if missing := missingSlugs(in.Sectors, sectors, func(sc models.Sector) string { return sc.Slug }); len(missing) > 0 {
			fields["sectors"] = "unknown sectors: " + strings.Join(missing, ", ")
		}
		p.Sectors = sectors
	}

	if len(fields) > 0 {
		return newFieldsError(op, fields)
	}
	return nil
}

// personID resolves a slug, returning 0 when nobody matches.
func (s *PeopleService) personID(ctx context.Context, owner uint, slug string) (uint, error) {
	found, err := s.people.FindBySlugs(ctx, owner, []string{slug})
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		return 0, nil
	}
	return found[0].ID, nil
}

func missingSlugs[T any](want []string, got []T, slugOf func(T) string) []string {
	have := make(map[string]bool, len(got))
	for _, g := range got {
		have[slugOf(g)] = true
	}
	var missing []string
	for _, w := range want {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	return missing
}

func (s *PeopleService) Get(ctx context.Context, owner uint, slug string) (*models.Person, error) {
	p, err := s.people.GetBySlug(ctx, owner, slug)
	if err != nil {
		return nil, classify("people.get", "person", err)
	}
	return p, nil
}

func (s *PeopleService) List(ctx context.Context, owner uint, opts PersonListOptions) (repository.Page[models.Person], error) {
	const op = "people.list"
	since, err := parseSince(op, "contacted_since", opts.ContactedSince, today(s.clock))
	if err != nil {
		return repository.Page[models.Person]{}, err
	}
	page, err := s.people.List(ctx, owner, repository.PersonFilter{
		Sector:         opts.Sector,
		Company:        opts.Company,
		City:           opts.City,
		ContactedSince: since,
		Paging:         repository.Paging{Page: opts.Page},
	})
	if err != nil {
		return repository.Page[models.Person]{}, classify(op, "person", err)
	}
	return page, nil
}

// Search returns one page of people whose name starts with prefix.
func (s *PeopleService) Search(ctx context.Context, owner uint, prefix string, page int) (SearchResult, error) {
	if page < 1 {
		page = 1
	}
	matches, more, err := s.people.Search(ctx, owner, prefix, page)
	if err != nil {
		return SearchResult{}, classify("people.search", "person", err)
	}
	result := SearchResult{Page: page, MoreResults: more, People: make([]SearchHit, 0, len(matches))}
	for i := range matches {
		result.People = append(result.People, SearchHit{
			Name: matches[i].Person.DisplayName(),
			Slug: matches[i].Person.Slug,
		})
	}
	return result, nil
}

func (s *PeopleService) Cities(ctx context.Context, owner uint) ([]string, error) {
	cities, err := s.people.Cities(ctx, owner)
	if err != nil {
		return nil, classify("people.cities", "city", err)
	}
	return cities, nil
}

func (s *PeopleService) Companies(ctx context.Context, owner uint) ([]models.Company, error) {
	companies, err := s.people.Companies(ctx, owner)
	if err != nil {
		return nil, classify("people.companies", "company", err)
	}
	return companies, nil
}

// SoftDelete hides a person and returns the number of rows changed.
func (s *PeopleService) SoftDelete(ctx context.Context, owner uint, slug string) (int64, error) {
	const op = "people.soft_delete"
	p, err := s.people.GetBySlug(ctx, owner, slug)
	if err != nil {
		return 0, classify(op, "person", err)
	}
	n, err := s.people.SoftDelete(ctx, owner, p.ID)
	if err != nil {
		return 0, classify(op, "person", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return n, nil
}

// HardDelete removes a person for good, unlinking everyone who pointed at them.
func (s *PeopleService) HardDelete(ctx context.Context, owner uint, slug string) error {
	const op = "people.hard_delete"
	p, err := s.people.GetBySlug(ctx, owner, slug)
	if err != nil {
		return classify(op, "person", err)
	}
	if err := s.people.HardDelete(ctx, owner, p.ID); err != nil {
		return classify(op, "person", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	s.logger.Info("person hard deleted", zap.Uint("owner", owner), zap.String("slug", slug))
	return nil
}
