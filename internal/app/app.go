package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"eventhub/internal/config"
	"eventhub/internal/handlers"
	"eventhub/internal/pdf"
	"eventhub/internal/repositories"
	"eventhub/internal/routes"
	"eventhub/internal/services"
	"eventhub/internal/utils"
	"eventhub/internal/verification"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "eventhub/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to DB: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close DB: %v", err)
		}
	}()

	// === Verification code store (process-local, one per instance) ===
	codes := verification.NewStore(
		verification.DefaultCodeTTL,
		verification.DefaultMaxAttempts,
		verification.DefaultSweepInterval,
	)
	codes.StartCleanup()
	defer codes.Stop()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	eventRepo := repositories.NewEventRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	userService := services.NewUserService(userRepo, emailService, authService, codes)
	eventService := services.NewEventService(eventRepo)
	bannerService := services.NewBannerService(cfg.Files.RootDir)
	calendarService := services.NewCalendarService("eventhub")
	importService := services.NewImportService(eventService)
	flyerGen := pdf.NewFlyerGenerator()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService, bannerService, calendarService, importService, flyerGen)
	adminHandler := handlers.NewAdminHandler(userService, eventService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Sessions: an unset secret means a random one, so sessions will not
	// survive a restart.
	secret := cfg.Session.Secret
	if secret == "" {
		secret, err = utils.NewSecret(32)
		if err != nil {
			log.Fatal("Failed to generate session secret: ", err)
		}
		log.Printf("SESSION_SECRET not set, using a random secret; sessions are lost on restart")
	}
	store := memstore.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.Env == "production",
	})
	router.Use(sessions.Sessions("sid", store))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	routes.SetupRoutes(
		router,
		userService,
		authHandler,
		userHandler,
		eventHandler,
		adminHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
