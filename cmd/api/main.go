package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/response"
	"github.com/xiebiao/library/pkg/tracing"
)

// main 主程序入口
// 说明:手动依赖注入(wire.go提供编译期生成的版本,两者等价)
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化可观测性组件
	metrics.InitMetrics()
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化Tracer失败: %v", err)
		}
		defer func() {
			_ = shutdown(context.Background())
		}()
		fmt.Printf("✓ 链路追踪已启用: %s\n", cfg.Tracing.Endpoint)
	}

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 依赖注入(手动组装)
	// 依赖链:Repository ← Service/TxManager ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	loanRepo := mysql.NewLoanRepository(db)
	returnRepo := mysql.NewReturnRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层:用户与图书目录
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	addBookUseCase := appbook.NewAddBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)

	// 应用层:借阅生命周期
	requestBorrowUseCase := apploan.NewRequestBorrowUseCase(loanRepo, bookRepo, txManager)
	approveBorrowUseCase := apploan.NewApproveBorrowUseCase(loanRepo, bookRepo, txManager)
	rejectBorrowUseCase := apploan.NewRejectBorrowUseCase(loanRepo, txManager)
	requestReturnUseCase := apploan.NewRequestReturnUseCase(loanRepo, returnRepo, txManager)
	approveReturnUseCase := apploan.NewApproveReturnUseCase(loanRepo, bookRepo, returnRepo, txManager)
	rejectReturnUseCase := apploan.NewRejectReturnUseCase(loanRepo, returnRepo, txManager)

	// 应用层:查询门面
	bookshelfUseCase := apploan.NewBookshelfUseCase(loanRepo, bookRepo)
	listRequestsUseCase := apploan.NewListRequestsUseCase(loanRepo, bookRepo)
	statisticsUseCase := apploan.NewStatisticsUseCase(loanRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	bookHandler := handler.NewBookHandler(addBookUseCase, listBooksUseCase)
	borrowHandler := handler.NewBorrowHandler(requestBorrowUseCase, requestReturnUseCase, bookshelfUseCase)
	adminHandler := handler.NewAdminHandler(
		approveBorrowUseCase,
		rejectBorrowUseCase,
		approveReturnUseCase,
		rejectReturnUseCase,
		listRequestsUseCase,
		statisticsUseCase,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 7. 注册路由
	registerRoutes(r, userHandler, bookHandler, borrowHandler, adminHandler, authMiddleware)

	// 8. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	borrowHandler *handler.BorrowHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 认证模块(公开接口)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书目录(公开接口)
		v1.GET("/books", bookHandler.ListBooks)

		// 读者侧(需要登录)
		member := v1.Group("")
		member.Use(authMiddleware.RequireAuth())
		{
			member.POST("/loans", borrowHandler.RequestBorrow)
			member.POST("/loans/:id/return", borrowHandler.RequestReturn)
			member.GET("/bookshelf", borrowHandler.Bookshelf)
		}

		// 管理端(需要管理员角色)
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			admin.POST("/books", bookHandler.AddBook)
			admin.GET("/loans", adminHandler.ListLoans)
			admin.POST("/loans/:id/approve", adminHandler.ApproveBorrow)
			admin.POST("/loans/:id/reject", adminHandler.RejectBorrow)
			admin.POST("/loans/:id/return/approve", adminHandler.ApproveReturn)
			admin.POST("/loans/:id/return/reject", adminHandler.RejectReturn)
			admin.GET("/statistics", adminHandler.Statistics)
		}
	}
}
