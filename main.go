package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kelviy/leadtime-order-sync/cmd"
	"github.com/kelviy/leadtime-order-sync/internal/auditlog"
	"github.com/kelviy/leadtime-order-sync/internal/catalog"
	"github.com/kelviy/leadtime-order-sync/internal/config"
	"github.com/kelviy/leadtime-order-sync/internal/core/logger"
	"github.com/kelviy/leadtime-order-sync/internal/database"
	"github.com/kelviy/leadtime-order-sync/internal/leadsync"
	"github.com/kelviy/leadtime-order-sync/internal/middleware"
	"github.com/kelviy/leadtime-order-sync/internal/orders"
	"github.com/kelviy/leadtime-order-sync/internal/reconcile"
	"github.com/kelviy/leadtime-order-sync/internal/repository"
	"github.com/kelviy/leadtime-order-sync/internal/retailer"
	"github.com/kelviy/leadtime-order-sync/internal/session"
	"github.com/kelviy/leadtime-order-sync/internal/users"
	"github.com/kelviy/leadtime-order-sync/pkg/security"
)

func init() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	cmd.Execute(ctx)
}

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer db.Close()

	log.Println("Connected to the database successfully!")

	zapLog := logger.NewLogger()
	defer zapLog.Sync()

	repo := repository.NewRepository(db)
	catalogRepo := catalog.NewRepository(repo)
	orderRepo := orders.NewRepository(repo)
	audit := auditlog.NewAuditLog(repo, zapLog)

	reconcileService := reconcile.NewService(catalogRepo, cfg, zapLog)
	orderService := orders.NewService(repo, orderRepo, catalogRepo, cfg, zapLog)
	retailerClient := retailer.NewClient(cfg)
	sessions := session.NewStore()

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))

	security.NewLoginHandler(repo).RegisterRoutes(router)
	leadsync.NewHandler(reconcileService, orderService, retailerClient, sessions, audit, cfg, zapLog).RegisterRoutes(router)

	api := router.Group("/", security.JWTMiddleware())
	users.NewHandler(users.NewRepository(repo)).RegisterRoutes(api)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := router.Run(cfg.AppHost); err != nil {
		panic(err)
	}
}
