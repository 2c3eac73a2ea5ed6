package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ConversationInput is the editable part of a conversation. People are slugs.
type ConversationInput struct {
	People   []string `json:"people" validate:"min=1"`
	Date     string   `json:"date" validate:"omitempty,date"`
	Mode     string   `json:"mode" validate:"required,mode"`
	Summary  string   `json:"summary" validate:"required,max=64"`
	Notes    string   `json:"notes"`
	Location string   `json:"location" validate:"max=100"`
	Seed     bool     `json:"seed"`
}

type ConversationListOptions struct {
	Sector    string
	Mode      string
	SeedsOnly bool
	DateSince string
	Person    string
	Seed      *bool
	Page      int
}

type ConversationService struct {
	conversations repository.ConversationRepositoryInterface
	people        repository.PersonRepositoryInterface
	cache         cache.Cache
	clock         Clock
	validate      *validator.Validate
	logger        *zap.Logger
}

func NewConversationService(
	conversations repository.ConversationRepositoryInterface,
	people repository.PersonRepositoryInterface,
	c cache.Cache,
	clock Clock,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		people:        people,
		cache:         c,
		clock:         clock,
		validate:      newValidator(),
		logger:        logger,
	}
}

func (s *ConversationService) Create(ctx context.Context, owner uint, in ConversationInput) (*models.Conversation, error) {
	const op = "conversations.create"
	conv := &models.Conversation{}
	if err := s.apply(ctx, op, owner, conv, in); err != nil {
		return nil, err
	}
	if err := s.conversations.Create(ctx, owner, conv); err != nil {
		return nil, classify(op, "conversation", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	s.logger.Info("conversation logged",
		zap.Uint("owner", owner),
		zap.String("id", conv.PublicID),
		zap.String("mode", string(conv.Mode)),
		zap.Bool("seed", conv.Seed))
	return s.Get(ctx, owner, conv.PublicID)
}

func (s *ConversationService) Update(ctx context.Context, owner uint, publicID string, in ConversationInput) (*models.Conversation, error) {
	const op = "conversations.update"
	conv, err := s.conversations.GetByPublicID(ctx, owner, publicID)
	if err != nil {
		return nil, classify(op, "conversation", err)
	}
	if err := s.apply(ctx, op, owner, conv, in); err != nil {
		return nil, err
	}
	if err := s.conversations.Update(ctx, owner, conv); err != nil {
		return nil, classify(op, "conversation", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return s.Get(ctx, owner, conv.PublicID)
}

// apply validates in and copies it onto c. Nothing is written.
func (s *ConversationService) apply(ctx context.Context, op string, owner uint, c *models.Conversation, in ConversationInput) error {
	if err := validateInput(s.validate, op, in); err != nil {
		return err
	}
	mode, _ := models.ParseMode(in.Mode)

	fields := make(map[string]string)
	if in.Seed && mode.IsLive() {
		fields["mode"] = fmt.Sprintf("a seed cannot be %q, pick a one-way mode", string(mode))
	}

	people, err := s.people.FindBySlugs(ctx, owner, in.People)
	if err != nil {
		return classify(op, "person", err)
	}
	if missing := missingSlugs(in.People, people, func(p models.Person) string { return p.Slug }); len(missing) > 0 {
		fields["people"] = "unknown people: " + strings.Join(missing, ", ")
	} else {
		switch {
		case mode == models.ModeOneOnOne && len(people) > 1:
			fields["people"] = "a one on one conversation has a single other person"
		case mode == models.ModeInGroup && len(people) == 1:
			fields["people"] = "a group conversation needs more than one person"
		}
	}
	if len(fields) > 0 {
		return newFieldsError(op, fields)
	}

	date := today(s.clock)
	if in.Date != "" {
		date, _ = models.ParseDate(in.Date)
	}

	c.People = people
	c.Date = date
	c.Mode = mode
	c.Summary = strings.TrimSpace(in.Summary)
	c.Notes = in.Notes
	c.Location = strings.TrimSpace(in.Location)
	c.Seed = in.Seed
	return nil
}

func (s *ConversationService) Get(ctx context.Context, owner uint, publicID string) (*models.Conversation, error) {
	conv, err := s.conversations.GetByPublicID(ctx, owner, publicID)
	if err != nil {
		return nil, classify("conversations.get", "conversation", err)
	}
	return conv, nil
}

// List returns one page of conversations, newest first.
func (s *ConversationService) List(ctx context.Context, owner uint, opts ConversationListOptions) (repository.Page[models.Conversation], error) {
	const op = "conversations.list"
	since, err := parseSince(op, "date_since", opts.DateSince, today(s.clock))
	if err != nil {
		return repository.Page[models.Conversation]{}, err
	}
	var mode models.Mode
	if strings.TrimSpace(opts.Mode) != "" {
		if mode, err = models.ParseMode(opts.Mode); err != nil {
			return repository.Page[models.Conversation]{}, NewValidationError(op, "mode", err.Error())
		}
	}
	page, err := s.conversations.List(ctx, owner, repository.ConversationFilter{
		Sector:    opts.Sector,
		Mode:      string(mode),
		SeedsOnly: opts.SeedsOnly,
		Since:     since,
		Person:    opts.Person,
		Seed:      opts.Seed,
		Paging:    repository.Paging{Page: opts.Page},
	})
	if err != nil {
		return repository.Page[models.Conversation]{}, classify(op, "conversation", err)
	}
	return page, nil
}

func (s *ConversationService) SoftDelete(ctx context.Context, owner uint, publicID string) (int64, error) {
	const op = "conversations.soft_delete"
	conv, err := s.conversations.GetByPublicID(ctx, owner, publicID)
	if err != nil {
		return 0, classify(op, "conversation", err)
	}
	n, err := s.conversations.SoftDelete(ctx, owner, conv.ID)
	if err != nil {
		return 0, classify(op, "conversation", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return n, nil
}

func (s *ConversationService) HardDelete(ctx context.Context, owner uint, publicID string) error {
	const op = "conversations.hard_delete"
	conv, err := s.conversations.GetByPublicID(ctx, owner, publicID)
	if err != nil {
		return classify(op, "conversation", err)
	}
	if err := s.conversations.HardDelete(ctx, owner, conv.ID); err != nil {
		return classify(op, "conversation", err)
	}
	invalidate(ctx, s.cache, s.logger, owner)
	return nil
}
