package models

// Group is a named set of people and companies.
type Group struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Slug      string    `gorm:"size:64;not null;index" json:"slug"`
	About     string    `gorm:"type:text;not null" json:"about"`
	People    []Person  `gorm:"many2many:group_people;" json:"people,omitempty"`
	Companies []Company `gorm:"many2many:group_companies;" json:"companies,omitempty"`

	Audit
}

// TableName explicitly sets the table name for GORM.
func (Group) TableName() string {
	return "groups"
}

func (g *Group) GetID() uint        { return g.ID }
func (g *Group) SetID(id uint)      { g.ID = id }
func (g *Group) SlugSource() string { return g.Name }
func (g *Group) SlugKind() string   { return "group" }
func (g *Group) GetSlug() string    { return g.Slug }
func (g *Group) SetSlug(s string)   { g.Slug = s }
func (g *Group) SlugMaxLength() int { return SlugMaxLength }

// GroupPerson is the group_people join row.
type GroupPerson struct {
	GroupID  uint `gorm:"primaryKey"`
	PersonID uint `gorm:"primaryKey"`
}

func (GroupPerson) TableName() string {
	return "group_people"
}

// GroupCompany is the group_companies join row.
type GroupCompany struct {
	GroupID   uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"primaryKey"`
}

func (GroupCompany) TableName() string {
	return "group_companies"
}
