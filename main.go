package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mariadbpaas/bootstrap"
	"mariadbpaas/config"
	"mariadbpaas/controllers"
	_ "mariadbpaas/docs"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           mariadbpaas
// @version         1.0
// @description     Multi-tenant MariaDB provisioning API

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @BasePath  /api

func main() {
	// 1) Load config
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("LoadConfig error: %v", err)
	}

	// 2) Init structured logger with config
	logLevel := logger.ParseLogLevel(config.Cfg.LogLevel)
	logger.InitWithConfig(
		config.Cfg.LogFile,
		logLevel,
		config.Cfg.LogMaxSize,
		config.Cfg.LogMaxBackups,
		config.Cfg.LogMaxAge,
		config.Cfg.LogCompress,
	)
	logger.Infof("Starting MariaDB PaaS API with log level: %s", config.Cfg.LogLevel)

	// 3) Connect control-plane DB (GORM)
	if err := config.ConnectDB(); err != nil {
		log.Fatalf("ConnectDB error: %v", err)
	}
	if config.DB == nil {
		log.Fatal("Database is nil after ConnectDB")
	}

	// 4) Connect object storage
	if err := config.ConnectS3(context.Background()); err != nil {
		log.Fatalf("ConnectS3 error: %v", err)
	}

	if err := bootstrap.LoadData(); err != nil {
		log.Fatalf("Bootstrap error: %v", err)
	}

	// 5) Wire services. The audit service is shared so every component
	// feeds the same queue.
	auditSrv := services.NewAuditLogService()
	controllers.SetAuditLogService(auditSrv)
	controllers.SetAuthService(services.NewAuthService())
	controllers.SetProjectService(services.NewProjectService())
	controllers.SetDbService(services.NewDbService(auditSrv))
	controllers.SetMemberService(services.NewMemberService(auditSrv))
	controllers.SetTableService(services.NewTableService(auditSrv))
	controllers.SetBackupService(services.NewBackupService(auditSrv))
	controllers.SetDashboardService(services.NewDashboardService())

	// 6) Setup Gin
	router := gin.Default()
	router.Use(utils.LoggerMiddleware())

	v1 := router.Group("/api")
	{
		controllers.RegisterAuthRoutes(v1)

		authed := v1.Group("")
		authed.Use(controllers.AuthRequired())
		{
			controllers.RegisterProjectRoutes(authed)
			controllers.RegisterDbRoutes(authed)
			controllers.RegisterMemberRoutes(authed)
			controllers.RegisterTableRoutes(authed)
			controllers.RegisterBackupRoutes(authed)
			controllers.RegisterDashboardRoutes(authed)
		}
	}

	// 7) Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 8) Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Infof("Received shutdown signal, flushing audit queue...")
		auditSrv.Close()
		logger.Infof("Application shutdown complete")
		os.Exit(0)
	}()

	// 9) Run
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	logger.Infof("Starting server at port %s", port)
	router.Run("0.0.0.0:" + port)
}
