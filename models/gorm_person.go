package models

import (
	"strings"
	"time"
)

const (
	SlugMaxLength = 64
	NameMaxLength = 64
)

// Person represents someone the owner knows.
// It corresponds to the 'people' table.
type Person struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string `gorm:"size:64;not null" json:"first_name"`
	LastName  string `gorm:"size:64;not null" json:"last_name"`
	Slug      string `gorm:"size:64;not null;index" json:"slug"`

	// partner is kept symmetric by the repository, known_via is one-directional
	PartnerID  *uint   `gorm:"index" json:"partner_id,omitempty"`
	Partner    *Person `gorm:"-" json:"partner,omitempty"`
	KnownViaID *uint   `gorm:"index" json:"known_via_id,omitempty"`
	KnownVia   *Person `gorm:"-" json:"known_via,omitempty"`

	CompanyID *uint    `gorm:"index" json:"company_id,omitempty"`
	Company   *Company `gorm:"-" json:"company,omitempty"`
	Sectors   []Sector `gorm:"many2many:person_sectors;" json:"sectors,omitempty"`

	City             string     `gorm:"size:50;not null" json:"city"`
	Birthday         *time.Time `gorm:"" json:"birthday,omitempty"` // year may be a placeholder
	PersonalEmail    string     `gorm:"not null" json:"personal_email"`
	WorkEmail        string     `gorm:"not null" json:"work_email"`
	PersonalPhone    string     `gorm:"size:12;not null" json:"personal_phone"`
	WorkPhone        string     `gorm:"size:12;not null" json:"work_phone"`
	Address          string     `gorm:"type:text;not null" json:"address"`
	OtherContactInfo string     `gorm:"type:text;not null" json:"other_contact_info"`
	Notes            string     `gorm:"type:text;not null" json:"notes"`
	Level            int        `gorm:"not null;default:0" json:"level"`

	Audit
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// PlainName is "first last" without any fallback decoration.
func (p *Person) PlainName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// DisplayName falls back on partner, known_via, then company when the last name is unknown.
// Partner and KnownVia must be loaded for the fallbacks to apply.
func (p *Person) DisplayName() string {
	if p.LastName != "" {
		return p.PlainName()
	}
	switch {
	case p.Partner != nil:
		return p.FirstName + " (" + p.Partner.PlainName() + ")"
	case p.KnownVia != nil:
		return p.FirstName + " (via " + p.KnownVia.PlainName() + ")"
	case p.Company != nil:
		return p.FirstName + " (" + p.Company.Name + ")"
	}
	return p.FirstName + " (?)"
}

func (p *Person) GetID() uint        { return p.ID }
func (p *Person) SlugSource() string { return p.PlainName() }
func (p *Person) SlugKind() string   { return "person" }
func (p *Person) GetSlug() string    { return p.Slug }
func (p *Person) SetSlug(s string)   { p.Slug = s }
func (p *Person) SlugMaxLength() int { return SlugMaxLength }

// PersonSector is the person_sectors join row.
type PersonSector struct {
	PersonID uint `gorm:"primaryKey"`
	SectorID uint `gorm:"primaryKey"`
}

func (PersonSector) TableName() string {
	return "person_sectors"
}
