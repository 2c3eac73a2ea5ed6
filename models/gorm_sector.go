package models

// Sector is a tag for people, usually an industry or field.
type Sector struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Slug        string `gorm:"size:64;not null;index" json:"slug"`
	Description string `gorm:"type:text;not null" json:"description"`

	NumPeople int64 `gorm:"-" json:"num_people"`

	Audit
}

// TableName explicitly sets the table name for GORM.
func (Sector) TableName() string {
	return "sectors"
}

func (s *Sector) GetID() uint        { return s.ID }
func (s *Sector) SetID(id uint)      { s.ID = id }
func (s *Sector) SlugSource() string { return s.Name }
func (s *Sector) SlugKind() string   { return "sector" }
func (s *Sector) GetSlug() string    { return s.Slug }
func (s *Sector) SetSlug(v string)   { s.Slug = v }
func (s *Sector) SlugMaxLength() int { return SlugMaxLength }
