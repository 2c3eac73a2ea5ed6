package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/camden-git/seeds/models"
	"github.com/facette/natsort"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchPerPage is the page size of person search results.
const SearchPerPage = 8

// PersonFilter narrows List. Sector and Company are slugs; ones that do not
// resolve for the owner are ignored.
type PersonFilter struct {
	Sector         string
	Company        string
	City           string
	ContactedSince *time.Time
	Paging
}

// PersonMatch is one search hit with its conversation count.
type PersonMatch struct {
	Person           models.Person
	NumConversations int64
}

type searchRow struct {
	ID               uint
	FirstName        string
	LastName         string
	Slug             string
	PartnerID        *uint
	KnownViaID       *uint
	CompanyID        *uint
	NumConversations int64
}

// PersonRepository handles database operations for Person and its links.
type PersonRepository struct {
	DB  *gorm.DB
	now func() time.Time
}

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB, now func() time.Time) *PersonRepository {
	return &PersonRepository{DB: db, now: now}
}

// Create inserts a person for owner, assigns its slug and pairs its partner.
func (r *PersonRepository) Create(ctx context.Context, owner uint, p *models.Person) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p.ID = 0
		p.StampCreate(owner, r.now())
		if err := assignSlug(ctx, tx, owner, p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("failed to create person %q: %w", p.PlainName(), err)
		}
		if err := replaceSectors(tx, p.ID, p.Sectors); err != nil {
			return err
		}
		return syncPartner(tx, owner, p.ID, nil, p.PartnerID)
	})
}

// Update saves every column of p, re-slugs it and repairs partner links.
func (r *PersonRepository) Update(ctx context.Context, owner uint, p *models.Person) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev models.Person
		err := tx.Scopes(OwnedBy("people", owner)).Select("id", "partner_id").First(&prev, p.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("failed to load person ID %d: %w", p.ID, err)
		}

		p.StampUpdate(owner, r.now())
		if err := assignSlug(ctx, tx, owner, p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return fmt.Errorf("failed to update person ID %d: %w", p.ID, err)
		}
		if err := replaceSectors(tx, p.ID, p.Sectors); err != nil {
			return err
		}
		return syncPartner(tx, owner, p.ID, prev.PartnerID, p.PartnerID)
	})
}

func replaceSectors(tx *gorm.DB, personID uint, sectors []models.Sector) error {
	if err := tx.Where("person_id = ?", personID).Delete(&models.PersonSector{}).Error; err != nil {
		return fmt.Errorf("failed to clear sectors of person ID %d: %w", personID, err)
	}
	rows := make([]models.PersonSector, 0, len(sectors))
	seen := make(map[uint]bool)
	for _, s := range sectors {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		rows = append(rows, models.PersonSector{PersonID: personID, SectorID: s.ID})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to set sectors of person ID %d: %w", personID, err)
	}
	return nil
}

// GetBySlug retrieves a live person of owner with links and sectors loaded.
func (r *PersonRepository) GetBySlug(ctx context.Context, owner uint, slug string) (*models.Person, error) {
	var person models.Person
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("people", owner)).
		Preload("Sectors", "active = ?", true).
		Where("people.slug = ?", slug).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by slug %q: %w", slug, err)
	}
	if err := hydratePeople(ctx, r.DB, owner, []*models.Person{&person}); err != nil {
		return nil, err
	}
	return &person, nil
}

// GetByID retrieves a live person of owner without its links.
func (r *PersonRepository) GetByID(ctx context.Context, owner, id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("people", owner)).First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// FindBySlugs returns the live people of owner matching slugs. Unknown slugs are skipped.
func (r *PersonRepository) FindBySlugs(ctx context.Context, owner uint, slugs []string) ([]models.Person, error) {
	var people []models.Person
	if len(slugs) == 0 {
		return people, nil
	}
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("people", owner)).
		Where("people.slug IN ?", slugs).Order("people.id").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find people by slug: %w", err)
	}
	return people, nil
}

// FindByIDs returns the live people of owner with the given ids, links loaded.
func (r *PersonRepository) FindByIDs(ctx context.Context, owner uint, ids []uint) ([]models.Person, error) {
	var people []models.Person
	if len(ids) == 0 {
		return people, nil
	}
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("people", owner)).
		Where("people.id IN ?", ids).Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find people by ID: %w", err)
	}
	if err := hydrateSlice(ctx, r.DB, owner, people); err != nil {
		return nil, err
	}
	return people, nil
}

// List retrieves live people of owner ordered by name.
func (r *PersonRepository) List(ctx context.Context, owner uint, f PersonFilter) (Page[models.Person], error) {
	q := r.DB.WithContext(ctx).Model(&models.Person{}).Scopes(OwnedBy("people", owner))

	if f.Sector != "" {
		id, ok, err := lookupID(ctx, r.DB, "sectors", owner, f.Sector)
		if err != nil {
			return Page[models.Person]{}, err
		}
		if ok {
			q = q.Where("people.id IN (?)", r.DB.Table("person_sectors").Select("person_id").Where("sector_id = ?", id))
		}
	}
	if f.Company != "" {
		id, ok, err := lookupID(ctx, r.DB, "companies", owner, f.Company)
		if err != nil {
			return Page[models.Person]{}, err
		}
		if ok {
			q = q.Where("people.company_id = ?", id)
		}
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(people.city) = LOWER(?)", city)
	}
	if f.ContactedSince != nil {
		contacted := r.DB.Table("conversation_people").
			Select("conversation_people.person_id").
			Joins("JOIN conversations ON conversations.id = conversation_people.conversation_id").
			Where("conversations.active = ? AND conversations.created_by_id = ? AND conversations.date >= ?", true, owner, *f.ContactedSince)
		q = q.Where("people.id IN (?)", contacted)
	}

	var people []models.Person
	err := f.Paging.apply(q.Order("people.first_name ASC, people.last_name ASC, people.id ASC")).Find(&people).Error
	if err != nil {
		return Page[models.Person]{}, fmt.Errorf("failed to list people: %w", err)
	}
	page := newPage(people, f.Paging)
	if err := hydrateSlice(ctx, r.DB, owner, page.Items); err != nil {
		return Page[models.Person]{}, err
	}
	return page, nil
}

// CreatedSince lists people of owner added on or after since, newest first.
func (r *PersonRepository) CreatedSince(ctx context.Context, owner uint, since time.Time, limit int) ([]models.Person, error) {
	var people []models.Person
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("people", owner)).
		Where("people.created_on >= ?", since.UTC()).
		Order("people.created_on DESC, people.id DESC").Limit(limit).Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent people: %w", err)
	}
	if err := hydrateSlice(ctx, r.DB, owner, people); err != nil {
		return nil, err
	}
	return people, nil
}

// Cities lists the distinct cities of owner's people in natural order.
func (r *PersonRepository) Cities(ctx context.Context, owner uint) ([]string, error) {
	var cities []string
	err := r.DB.WithContext(ctx).Model(&models.Person{}).Scopes(OwnedBy("people", owner)).
		Where("people.city <> ''").Distinct().Pluck("people.city", &cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	natsort.Sort(cities)
	return cities, nil
}

// Companies lists live companies that at least one live person of owner works at.
func (r *PersonRepository) Companies(ctx context.Context, owner uint) ([]models.Company, error) {
	used := r.DB.Model(&models.Person{}).Scopes(OwnedBy("people", owner)).
		Where("people.company_id IS NOT NULL").Select("people.company_id")

	var companies []models.Company
	err := r.DB.WithContext(ctx).Scopes(OwnedBy("companies", owner)).
		Where("companies.id IN (?)", used).Order("companies.slug").Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list companies in use: %w", err)
	}
	return companies, nil
}

// Search matches a case-insensitive prefix against first name, full name or
// last name, most talked-to first.
func (r *PersonRepository) Search(ctx context.Context, owner uint, prefix string, page int) ([]PersonMatch, bool, error) {
	if page < 1 {
		page = 1
	}

	query := psql.Select(
		"p.id", "p.first_name", "p.last_name", "p.slug", "p.partner_id", "p.known_via_id", "p.company_id",
		"COUNT(c.id) AS num_conversations",
	).
		From("people p").
		LeftJoin("conversation_people cp ON cp.person_id = p.id").
		LeftJoin("conversations c ON c.id = cp.conversation_id AND c.active = ? AND c.created_by_id = ?", true, owner).
		Where(sq.Eq{"p.active": true, "p.created_by_id": owner}).
		GroupBy("p.id", "p.first_name", "p.last_name", "p.slug", "p.partner_id", "p.known_via_id", "p.company_id").
		OrderBy("num_conversations DESC", "p.first_name", "p.last_name", "p.id").
		Limit(uint64(SearchPerPage + 1)).
		Offset(uint64((page - 1) * SearchPerPage))

	if q := strings.ToLower(strings.TrimSpace(prefix)); q != "" {
		pattern := escapeLike(q) + "%"
		query = query.Where(sq.Or{
			sq.Expr(`LOWER(p.first_name) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(p.first_name || ' ' || p.last_name) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(p.last_name) LIKE ? ESCAPE '\'`, pattern),
		})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build SQL query for Search: %w", err)
	}

	var rows []searchRow
	if err := r.DB.WithContext(ctx).Raw(sqlStr, args...).Scan(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("failed to search people for %q: %w", prefix, err)
	}

	more := len(rows) > SearchPerPage
	if more {
		rows = rows[:SearchPerPage]
	}
	matches := make([]PersonMatch, len(rows))
	people := make([]*models.Person, len(rows))
	for i, row := range rows {
		matches[i] = PersonMatch{
			Person: models.Person{
				ID:         row.ID,
				FirstName:  row.FirstName,
				LastName:   row.LastName,
				Slug:       row.Slug,
				PartnerID:  row.PartnerID,
				KnownViaID: row.KnownViaID,
				CompanyID:  row.CompanyID,
			},
			NumConversations: row.NumConversations,
		}
		people[i] = &matches[i].Person
	}
	if err := hydratePeople(ctx, r.DB, owner, people); err != nil {
		return nil, false, err
	}
	return matches, more, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SoftDelete marks a person inactive. Links stay in place.
func (r *PersonRepository) SoftDelete(ctx context.Context, owner, id uint) (int64, error) {
	return softDelete(ctx, r.DB, &models.Person{}, owner, id, r.now())
}

// HardDelete removes a person and every reference to them.
func (r *PersonRepository) HardDelete(ctx context.Context, owner, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, &models.Person{}, owner, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Person{}).Where("partner_id = ?", id).Update("partner_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink partners of person ID %d: %w", id, err)
		}
		if err := tx.Model(&models.Person{}).Where("known_via_id = ?", id).Update("known_via_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink known_via of person ID %d: %w", id, err)
		}
		for _, join := range []interface{}{&models.PersonSector{}, &models.GroupPerson{}, &models.ConversationPerson{}} {
			if err := tx.Where("person_id = ?", id).Delete(join).Error; err != nil {
				return fmt.Errorf("failed to remove links of person ID %d: %w", id, err)
			}
		}
		if err := tx.Delete(&models.Person{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete person ID %d: %w", id, err)
		}
		return nil
	})
}

func hydrateSlice(ctx context.Context, db *gorm.DB, owner uint, people []models.Person) error {
	ptrs := make([]*models.Person, len(people))
	for i := range people {
		ptrs[i] = &people[i]
	}
	return hydratePeople(ctx, db, owner, ptrs)
}

// hydratePeople loads the partner, known_via and company referenced by each
// person. References to rows that are gone or inactive stay nil.
func hydratePeople(ctx context.Context, db *gorm.DB, owner uint, people []*models.Person) error {
	personIDs := make(map[uint]bool)
	companyIDs := make(map[uint]bool)
	for _, p := range people {
		if p.PartnerID != nil {
			personIDs[*p.PartnerID] = true
		}
		if p.KnownViaID != nil {
			personIDs[*p.KnownViaID] = true
		}
		if p.CompanyID != nil {
			companyIDs[*p.CompanyID] = true
		}
	}

	refs := make(map[uint]*models.Person)
	if len(personIDs) > 0 {
		var found []models.Person
		err := db.WithContext(ctx).Scopes(OwnedBy("people", owner)).
			Where("people.id IN ?", keys(personIDs)).Find(&found).Error
		if err != nil {
			return fmt.Errorf("failed to load linked people: %w", err)
		}
		for i := range found {
			refs[found[i].ID] = &found[i]
		}
	}

	companies := make(map[uint]*models.Company)
	if len(companyIDs) > 0 {
		var found []models.Company
		err := db.WithContext(ctx).Scopes(OwnedBy("companies", owner)).
			Where("companies.id IN ?", keys(companyIDs)).Find(&found).Error
		if err != nil {
			return fmt.Errorf("failed to load companies: %w", err)
		}
		for i := range found {
			companies[found[i].ID] = &found[i]
		}
	}

	for _, p := range people {
		if p.PartnerID != nil {
			p.Partner = refs[*p.PartnerID]
		}
		if p.KnownViaID != nil {
			p.KnownVia = refs[*p.KnownViaID]
		}
		if p.CompanyID != nil {
			p.Company = companies[*p.CompanyID]
		}
	}
	return nil
}

func keys(m map[uint]bool) []uint {
	out := make([]uint, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
