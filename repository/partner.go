package repository

import (
	"errors"
	"fmt"

	"github.com/camden-git/seeds/models"
	"gorm.io/gorm"
)

// ErrSelfPartner is returned when a person is set as their own partner.
var ErrSelfPartner = errors.New("a person cannot be their own partner")

// syncPartner keeps partner links mutual after person id moved from prev to next.
// It only ever touches partner_id columns directly, so it never re-enters itself.
// A link that is already mutual costs a single read.
func syncPartner(tx *gorm.DB, owner, id uint, prev, next *uint) error {
	if next != nil && *next == id {
		return ErrSelfPartner
	}

	if prev != nil && (next == nil || *prev != *next) {
		// the old partner only loses the link if it still points here
		if err := setPartner(tx, *prev, nil, &id); err != nil {
			return err
		}
	}
	if next == nil {
		return nil
	}

	var partner models.Person
	err := tx.Scopes(OwnedBy("people", owner)).Select("id", "partner_id").First(&partner, *next).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to load partner ID %d: %w", *next, err)
	}
	if partner.PartnerID != nil && *partner.PartnerID == id {
		return nil
	}
	if partner.PartnerID != nil {
		// new partner was paired with someone else, release them
		if err := setPartner(tx, *partner.PartnerID, nil, next); err != nil {
			return err
		}
	}
	return setPartner(tx, *next, &id, nil)
}

// setPartner writes partner_id on a single row. With onlyIf set, the row is
// written only while it still points at onlyIf.
func setPartner(tx *gorm.DB, personID uint, partnerID *uint, onlyIf *uint) error {
	q := tx.Model(&models.Person{}).Where("id = ?", personID)
	if onlyIf != nil {
		q = q.Where("partner_id = ?", *onlyIf)
	}
	if err := q.Update("partner_id", partnerID).Error; err != nil {
		return fmt.Errorf("failed to update partner of person ID %d: %w", personID, err)
	}
	return nil
}
