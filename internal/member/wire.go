//go:build wireinject
// +build wireinject

package member

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/membership-platform/internal/member/domain"
	"github.com/tair/membership-platform/internal/member/handler"
	"github.com/tair/membership-platform/internal/member/repository"
	"github.com/tair/membership-platform/internal/member/usecase/command"
	"github.com/tair/membership-platform/internal/member/usecase/query"
)

// ProvideUserRepository provides the user repository
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewGormUserRepository(db)
}

// Command Handlers Providers
func ProvideRegisterUserHandler(repo domain.UserRepository) *command.RegisterUserHandler {
	return command.NewRegisterUserHandler(repo)
}

func ProvideLoginUserHandler(repo domain.UserRepository) *command.LoginUserHandler {
	return command.NewLoginUserHandler(repo)
}

// Query Handlers Providers
func ProvideGetUserHandler(repo domain.UserRepository) *query.GetUserHandler {
	return query.NewGetUserHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUserRepository,
)

var HandlerSet = wire.NewSet(
	ProvideRegisterUserHandler,
	ProvideLoginUserHandler,
	ProvideGetUserHandler,
)

// InitializeHandler initializes member handler with all dependencies
func InitializeHandler(db *gorm.DB) (*handler.MemberHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		handler.NewMemberHandler,
	)
	return nil, nil
}
