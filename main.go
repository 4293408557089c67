package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/campuspulse/api/audit"
	"github.com/campuspulse/api/cache"
	"github.com/campuspulse/api/config"
	"github.com/campuspulse/api/controller"
	"github.com/campuspulse/api/dao"
	"github.com/campuspulse/api/db"
	"github.com/campuspulse/api/guard"
	logger "github.com/campuspulse/api/logging"
	"github.com/campuspulse/api/router"
	"github.com/campuspulse/api/service"
	"github.com/campuspulse/api/session"
	"github.com/campuspulse/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger()
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Audit trail
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)
	audit.RegisterSubscriber(eventBus, auditService)

	// Initialize DAOs
	principalDAO := dao.NewPrincipalDAO(db.Neo4jDriver)
	tenantDAO := dao.NewTenantDAO(db.Neo4jDriver)
	dashboardDAO := dao.NewDashboardDAO(db.Neo4jDriver)

	// Session resolution: JWT verification plus principal lookup
	identityProvider := session.NewJWTProvider(
		[]byte(config.GetString("auth.jwtSecret")),
		config.GetString("auth.issuer"),
	)
	resolver := session.NewResolver(identityProvider, principalDAO,
		config.GetDuration("guard.resolveTimeout"))

	// Request guard over the Redis response cache
	responseCache := cache.NewRedisStore(db.RedisClient)
	requestGuard := guard.New(resolver, responseCache, eventBus,
		config.GetDuration("guard.handlerTimeout"),
		config.GetDuration("guard.refreshTimeout"))

	// Initialize services
	dashboardService := service.NewDashboardService(dashboardDAO, tenantDAO)

	// Initialize controllers
	controllers := controller.InitControllers(dashboardService, auditService, requestGuard)

	// Set up the router
	r := router.SetupRouter(controllers,
		config.GetInt("rateLimit.requests"),
		config.GetDuration("rateLimit.window"))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: r,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
