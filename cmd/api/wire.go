//go:build wireinject
// +build wireinject

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
)

// wire.go 依赖注入声明
// 运行 `wire ./cmd/api` 生成 wire_gen.go;main.go中的手动组装与之等价,
// 保留手动版本是为了让依赖链一眼可见
//
// 教学要点:wire是编译期代码生成,不是运行时反射容器,
// 注入错误在生成阶段就会暴露

// infrastructureSet 基础设施层Provider
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideJWTManager,
	provideSessionStore,
)

// repositorySet 仓储层Provider
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewLoanRepository,
	mysql.NewReturnRepository,
	mysql.NewTxManager,
)

// domainSet 领域服务Provider
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层UseCase Provider
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appbook.NewAddBookUseCase,
	appbook.NewListBooksUseCase,
	apploan.NewRequestBorrowUseCase,
	apploan.NewApproveBorrowUseCase,
	apploan.NewRejectBorrowUseCase,
	apploan.NewRequestReturnUseCase,
	apploan.NewApproveReturnUseCase,
	apploan.NewRejectReturnUseCase,
	apploan.NewBookshelfUseCase,
	apploan.NewListRequestsUseCase,
	apploan.NewStatisticsUseCase,
)

// middlewareSet 中间件Provider
var middlewareSet = wire.NewSet(
	middleware.NewAuthMiddleware,
)

// handlerSet 接口层Provider
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewBorrowHandler,
	handler.NewAdminHandler,
)

// provideJWTManager 从配置构造JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端构造会话存储
// 教学要点:redis.NewSessionStore需要*goredis.Client参数,
// Wire会自动注入redis.NewClient()的返回值
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideGinEngine 组装Gin引擎并注册路由
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	borrowHandler *handler.BorrowHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, bookHandler, borrowHandler, adminHandler, authMiddleware)
	return r
}

// InitializeApp 组装完整应用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
