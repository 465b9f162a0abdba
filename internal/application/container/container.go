// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/persistence/pages"
	"github.com/AtRiskMedia/pagegrid-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	PageService        *services.PageService
	LayoutService      *services.LayoutService
	ContentTypeService *services.ContentTypeService
	AuthService        *services.AuthService

	// Persistence
	DB                    *database.DB
	PageCache             *stores.PageStore
	PageRepository        *pages.PageRepository
	ContentTypeRepository *pages.ContentTypeRepository

	// Infrastructure Dependencies
	Broadcaster   *messaging.PageEventBroadcaster
	CleanupWorker *cleanup.Worker
	Logger        *logging.ChanneledLogger
	PerfTracker   *performance.Tracker
}

// NewContainer creates and wires all singleton services around an open
// database connection.
func NewContainer(db *database.DB, logger *logging.ChanneledLogger, authConfig services.AuthConfig) *Container {
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig(), logger)

	pageCache := stores.NewPageStore(config.PageCacheTTL)
	pageRepo := pages.NewPageRepository(db.DB, pageCache, logger)
	contentTypeRepo := pages.NewContentTypeRepository(db.DB)

	broadcaster := messaging.NewPageEventBroadcaster(logger)

	pageService := services.NewPageService(pageRepo, layout.ULIDGenerator{}, broadcaster, logger)
	contentTypeService := services.NewContentTypeService(contentTypeRepo, logger)

	return &Container{
		PageService:        pageService,
		LayoutService:      services.NewLayoutService(pageService, contentTypeService, logger),
		ContentTypeService: contentTypeService,
		AuthService:        services.NewAuthService(authConfig, logger),

		DB:                    db,
		PageCache:             pageCache,
		PageRepository:        pageRepo,
		ContentTypeRepository: contentTypeRepo,

		Broadcaster:   broadcaster,
		CleanupWorker: cleanup.NewWorker(pageCache, cleanup.NewConfig(), logger),
		Logger:        logger,
		PerfTracker:   perfTracker,
	}
}
