package models

// Company is an organization people can be attached to.
type Company struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:64;not null" json:"name"`
	Slug string `gorm:"size:64;not null;index" json:"slug"`

	// filled in by list queries only
	NumPeople int64 `gorm:"-" json:"num_people"`

	Audit
}

// TableName explicitly sets the table name for GORM.
func (Company) TableName() string {
	return "companies"
}

func (c *Company) GetID() uint        { return c.ID }
func (c *Company) SetID(id uint)      { c.ID = id }
func (c *Company) SlugSource() string { return c.Name }
func (c *Company) SlugKind() string   { return "company" }
func (c *Company) GetSlug() string    { return c.Slug }
func (c *Company) SetSlug(s string)   { c.Slug = s }
func (c *Company) SlugMaxLength() int { return SlugMaxLength }
