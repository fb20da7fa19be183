package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/neberku/neberku-backend/internal/config"
	"github.com/neberku/neberku-backend/internal/handler"
	"github.com/neberku/neberku-backend/internal/middleware"
	"github.com/neberku/neberku-backend/internal/migration"
	"github.com/neberku/neberku-backend/internal/repository"
	"github.com/neberku/neberku-backend/internal/routes"
	"github.com/neberku/neberku-backend/internal/service"
	pkgcache "github.com/neberku/neberku-backend/pkg/cache"
	"github.com/neberku/neberku-backend/pkg/jwt"
	pkglogger "github.com/neberku/neberku-backend/pkg/logger"
	pkgredis "github.com/neberku/neberku-backend/pkg/redis"
	pkgstorage "github.com/neberku/neberku-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Neberku API
// @version         1.0
// @description     Guest contributions (wishes, photos, videos, voice) for hosted events
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if cfg.IsDevelopment() {
		if err := migration.Run(db); err != nil {
			pkglogger.Error("Migration failed: %v", err)
		}
	}

	// Redis (optional: gallery cache and rate limiting)
	var redisClient *redis.Client
	redisClient, err = pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}
	cacheService := pkgcache.NewService(redisClient)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.Upload.MaxMultipartMemoryMB << 20

	// Media storage
	store, err := initStorage(cfg, router)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// CORS
	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "X-Cache"},
		MaxAge:           86400,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}
		cacheStatus := "disabled"
		if cacheService.IsAvailable() {
			cacheStatus = "ok"
			if err := cacheService.Ping(ctx); err != nil {
				cacheStatus = "down"
			}
		}

		c.JSON(status, gin.H{
			"status":  dbStatus,
			"cache":   cacheStatus,
			"service": "neberku-backend",
			"time":    time.Now().Unix(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	// Services
	contributionService := service.NewContributionService(db, eventRepo, guestRepo, postRepo, mediaRepo, store, cacheService)
	eventService := service.NewEventService(eventRepo, postRepo, mediaRepo)
	galleryService := service.NewGalleryService(eventRepo, postRepo, mediaRepo, cacheService)
	moderationService := service.NewModerationService(db, eventRepo, postRepo, mediaRepo, cacheService)

	routes.Setup(router, routes.Handlers{
		Contribution: handler.NewContributionHandler(contributionService),
		Event:        handler.NewEventHandler(eventService),
		Gallery:      handler.NewGalleryHandler(galleryService),
		Moderation:   handler.NewModerationHandler(moderationService),
	}, jwtManager, redisClient, routes.Options{
		ContributionsPerMinute: cfg.RateLimit.ContributionsPerMinute,
		MaxUploadBytes:         cfg.Upload.MaxRequestMB << 20,
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initStorage S3 when enabled, otherwise the local directory served under LocalBaseURL
func initStorage(cfg *config.Config, router *gin.Engine) (pkgstorage.Storage, error) {
	if cfg.Storage.Enabled {
		client, err := pkgstorage.NewS3Client(context.Background(), pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		pkglogger.Info("S3 storage initialized (bucket=%s)", cfg.Storage.Bucket)
		return client, nil
	}

	local, err := pkgstorage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.LocalBaseURL)
	if err != nil {
		return nil, err
	}
	router.Static(cfg.Storage.LocalBaseURL, local.Dir())
	pkglogger.Info("Local storage at %s served on %s", local.Dir(), cfg.Storage.LocalBaseURL)
	return local, nil
}

// splitAndTrim splits a string by delimiter and drops empty parts
func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// initDB MySQL connection
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	mysqlCfg.Params["time_zone"] = "'+00:00'"

	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}
