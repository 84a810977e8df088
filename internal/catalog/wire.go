//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/membership-platform/internal/catalog/domain"
	"github.com/tair/membership-platform/internal/catalog/handler"
	"github.com/tair/membership-platform/internal/catalog/repository"
	"github.com/tair/membership-platform/internal/catalog/usecase/command"
	"github.com/tair/membership-platform/internal/catalog/usecase/query"
)

// ProvideEventRepository provides the event repository with tracing
func ProvideEventRepository(db *gorm.DB) domain.EventRepository {
	return repository.NewGormEventRepositoryWithTracing(db)
}

// ProvideLevelRepository provides the membership level repository
func ProvideLevelRepository(db *gorm.DB) domain.LevelRepository {
	return repository.NewGormLevelRepository(db)
}

// Command Handlers Providers
func ProvideCreateEventHandler(repo domain.EventRepository) *command.CreateEventHandler {
	return command.NewCreateEventHandler(repo)
}

func ProvideCancelEventHandler(repo domain.EventRepository) *command.CancelEventHandler {
	return command.NewCancelEventHandler(repo)
}

func ProvideCreateLevelHandler(repo domain.LevelRepository) *command.CreateLevelHandler {
	return command.NewCreateLevelHandler(repo)
}

// Query Handlers Providers
func ProvideGetEventHandler(repo domain.EventRepository) *query.GetEventHandler {
	return query.NewGetEventHandler(repo)
}

func ProvideListEventsHandler(repo domain.EventRepository) *query.ListEventsHandler {
	return query.NewListEventsHandler(repo)
}

func ProvideListLevelsHandler(repo domain.LevelRepository) *query.ListLevelsHandler {
	return query.NewListLevelsHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideEventRepository,
	ProvideLevelRepository,
)

var HandlerSet = wire.NewSet(
	ProvideCreateEventHandler,
	ProvideCancelEventHandler,
	ProvideCreateLevelHandler,
	ProvideGetEventHandler,
	ProvideListEventsHandler,
	ProvideListLevelsHandler,
)

// InitializeHandler initializes catalog handler with all dependencies
func InitializeHandler(db *gorm.DB) (*handler.CatalogHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		handler.NewCatalogHandler,
	)
	return nil, nil
}
