package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PublicIDLength = 12

// ErrLiveSeed is returned when an unreciprocated conversation claims a live mode.
var ErrLiveSeed = errors.New("a seed cannot use a live mode")

// Conversation records contact with one or more people on a given day.
// A seed is outreach that has not been answered yet.
type Conversation struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	PublicID string    `gorm:"size:16;not null;uniqueIndex" json:"id"`
	People   []Person  `gorm:"many2many:conversation_people;" json:"people"`
	Date     time.Time `gorm:"not null;index" json:"date"`
	Mode     Mode      `gorm:"size:20;not null" json:"mode"`
	Summary  string    `gorm:"size:64;not null" json:"summary"`
	Notes    string    `gorm:"type:text;not null" json:"notes"`
	Location string    `gorm:"size:100;not null" json:"location"`
	Seed     bool      `gorm:"not null;default:false;index" json:"seed"`

	Audit
}

// TableName explicitly sets the table name for GORM.
func (Conversation) TableName() string {
	return "conversations"
}

// NewPublicID returns a short random identifier derived from a v4 UUID.
func NewPublicID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:PublicIDLength]
}

// CheckReciprocity rejects seeds logged with a live mode.
func (c *Conversation) CheckReciprocity() error {
	if c.Seed && c.Mode.IsLive() {
		return fmt.Errorf("%w: %q", ErrLiveSeed, string(c.Mode))
	}
	return nil
}

// BeforeCreate assigns a public id if none was set.
func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.PublicID == "" {
		c.PublicID = NewPublicID()
	}
	return
}

// BeforeSave refuses to persist a live seed no matter which path wrote it.
func (c *Conversation) BeforeSave(tx *gorm.DB) error {
	return c.CheckReciprocity()
}

// ConversationPerson is the conversation_people join row.
type ConversationPerson struct {
	ConversationID uint `gorm:"primaryKey"`
	PersonID       uint `gorm:"primaryKey"`
}

func (ConversationPerson) TableName() string {
	return "conversation_people"
}
