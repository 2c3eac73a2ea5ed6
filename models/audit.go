package models

import "time"

// Audit holds the ownership and bookkeeping columns shared by every owned entity.
// None of these are writable through user input; the repository stamps them.
type Audit struct {
	Active       bool      `gorm:"not null;default:true;index" json:"-"`
	CreatedByID  uint      `gorm:"not null;index" json:"-"`
	CreatedOn    time.Time `gorm:"not null" json:"created_on"`
	ModifiedByID *uint     `gorm:"" json:"-"`
	ModifiedOn   time.Time `gorm:"not null" json:"modified_on"`
}

// Owned is implemented by every entity that embeds Audit.
type Owned interface {
	TableName() string
	GetAudit() *Audit
}

func (a *Audit) GetAudit() *Audit {
	return a
}

// StampCreate marks a fresh record as active and owned by owner.
// Timestamps are kept in UTC so stored values compare in order.
func (a *Audit) StampCreate(owner uint, now time.Time) {
	now = now.UTC()
	a.Active = true
	a.CreatedByID = owner
	a.CreatedOn = now
	a.ModifiedByID = &owner
	a.ModifiedOn = now
}

// StampUpdate records who touched the record last.
func (a *Audit) StampUpdate(actor uint, now time.Time) {
	now = now.UTC()
	a.ModifiedByID = &actor
	a.ModifiedOn = now
}
