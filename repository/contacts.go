package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// gorm rewrites '?' into the dialect's bind variables, so one builder serves sqlite and postgres.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// ContactDate is one (person, conversation) pair.
type ContactDate struct {
	PersonID uint
	Date     time.Time
	Seed     bool
}

// ConversationDate is the date and seed flag of one conversation.
type ConversationDate struct {
	Date time.Time
	Seed bool
}

// ContactDates lists every live person/conversation pair of owner, optionally
// limited to conversations dated on or after since.
func (r *ConversationRepository) ContactDates(ctx context.Context, owner uint, since *time.Time) ([]ContactDate, error) {
	query := psql.Select("cp.person_id", "c.date", "c.seed").
		From("conversations c").
		Join("conversation_people cp ON cp.conversation_id = c.id").
		Join("people p ON p.id = cp.person_id").
		Where(sq.Eq{"c.active": true, "c.created_by_id": owner}).
		Where(sq.Eq{"p.active": true, "p.created_by_id": owner})
	if since != nil {
		query = query.Where(sq.GtOrEq{"c.date": *since})
	}

	var rows []ContactDate
	if err := runSelect(ctx, r.DB, query, &rows); err != nil {
		return nil, fmt.Errorf("failed to load contact dates: %w", err)
	}
	return rows, nil
}

// ConversationDates lists the date and seed flag of each live conversation of
// owner dated on or after since.
func (r *ConversationRepository) ConversationDates(ctx context.Context, owner uint, since time.Time) ([]ConversationDate, error) {
	query := psql.Select("c.date", "c.seed").
		From("conversations c").
		Where(sq.Eq{"c.active": true, "c.created_by_id": owner}).
		Where(sq.GtOrEq{"c.date": since}).
		OrderBy("c.date")

	var rows []ConversationDate
	if err := runSelect(ctx, r.DB, query, &rows); err != nil {
		return nil, fmt.Errorf("failed to load conversation dates: %w", err)
	}
	return rows, nil
}

func runSelect(ctx context.Context, db *gorm.DB, query sq.SelectBuilder, dest interface{}) error {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query: %w", err)
	}
	return db.WithContext(ctx).Raw(sqlStr, args...).Scan(dest).Error
}
