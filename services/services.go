// Package services holds the operations the HTTP layer exposes: validation,
// reference resolution, cache invalidation and the conversation summaries.
package services

import (
	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Services struct {
	People        *PeopleService
	Companies     *CompanyService
	Sectors       *SectorService
	Groups        *GroupService
	Conversations *ConversationService
	Insights      *InsightsService
}

// New builds every service over db. Audit stamps and rolling windows read clock.
func New(db *gorm.DB, c cache.Cache, clock Clock, logger *zap.Logger) *Services {
	if c == nil {
		c = cache.Nop{}
	}
	people := repository.NewPersonRepository(db, clock.Now)
	companies := repository.NewCompanyRepository(db, clock.Now)
	sectors := repository.NewSectorRepository(db, clock.Now)
	groups := repository.NewGroupRepository(db, clock.Now)
	conversations := repository.NewConversationRepository(db, clock.Now)

	return &Services{
		People:        NewPeopleService(people, companies, sectors, c, clock, logger.Named("people")),
		Companies:     NewCompanyService(companies, c, logger.Named("companies")),
		Sectors:       NewSectorService(sectors, c, logger.Named("sectors")),
		Groups:        NewGroupService(groups, people, companies, logger.Named("groups")),
		Conversations: NewConversationService(conversations, people, c, clock, logger.Named("conversations")),
		Insights:      NewInsightsService(conversations, people, c, clock, logger.Named("insights")),
	}
}
