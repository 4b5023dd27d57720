package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/titanmarket/titanmarket-backend/internal/config"
	"github.com/titanmarket/titanmarket-backend/internal/handler"
	"github.com/titanmarket/titanmarket-backend/internal/middleware"
	"github.com/titanmarket/titanmarket-backend/internal/migration"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	"github.com/titanmarket/titanmarket-backend/internal/routes"
	"github.com/titanmarket/titanmarket-backend/internal/service"
	"github.com/titanmarket/titanmarket-backend/internal/ws"
	pkgcache "github.com/titanmarket/titanmarket-backend/pkg/cache"
	pkges "github.com/titanmarket/titanmarket-backend/pkg/elasticsearch"
	"github.com/titanmarket/titanmarket-backend/pkg/jwt"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
	"github.com/titanmarket/titanmarket-backend/pkg/oauth"
	pkgredis "github.com/titanmarket/titanmarket-backend/pkg/redis"
	pkgstorage "github.com/titanmarket/titanmarket-backend/pkg/storage"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Titan Market API
// @version         1.0
// @description     Campus marketplace backend: listings, messaging, reports and profiles
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token
func main() {
	loaded := config.LoadDotEnv()

	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		pkglogger.GetLogger().Fatal().Err(err).Str("path", config.ConfigPath()).Msg("failed to load config")
	}

	pkglogger.InitStructured(cfg.Server.Env, cfg.Log.Level)
	log := pkglogger.GetLogger()
	log.Info().Strs("env_files", loaded).Str("app_env", config.AppEnv()).Msg("environment loaded")
	config.LogResolved(cfg)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	if err := migration.Run(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")
	if sqlDB, err := db.DB(); err == nil {
		middleware.RegisterDBStatsGauges(sqlDB.Stats)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without cache, rate limiting and cross-instance fan-out")
		redisClient = nil
	} else {
		log.Info().Msg("connected to redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	var searcher service.ListingSearcher
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, esErr := pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr != nil {
			log.Warn().Err(esErr).Msg("elasticsearch unavailable, keyword search uses the database")
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := esClient.EnsureListingIndex(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to ensure listing index")
			}
			cancel()
			searcher = esClient
			log.Info().Msg("connected to elasticsearch")
		}
	}

	var store service.ObjectStore
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		s3Client, s3Err := pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if s3Err != nil {
			log.Warn().Err(s3Err).Msg("object storage unavailable, uploads are disabled")
		} else {
			store = s3Client
			log.Info().Str("bucket", cfg.Storage.Bucket).Msg("connected to object storage")
		}
	}

	var google service.GoogleIdentityProvider
	if cfg.Google.ClientID != "" {
		google = oauth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	hub := ws.NewHub(redisClient)
	go hub.Run()
	middleware.RegisterWSClientsGauge(hub.TotalClients)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	mediaService := service.NewMediaService(store, cfg.Storage.UploadLimit())
	authService := service.NewAuthService(userRepo, jwtManager, google, cfg.Campus.EmailDomain)
	profileService := service.NewProfileService(userRepo, listingRepo, cacheService, mediaService)
	listingService := service.NewListingService(listingRepo, searcher, cacheService, mediaService)
	messageService := service.NewMessageService(convRepo, msgRepo, listingRepo, hub)
	reportService := service.NewReportService(reportRepo, userRepo, listingRepo, msgRepo, convRepo)

	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService, !cfg.IsDevelopment()),
		Profile: handler.NewProfileHandler(profileService),
		Listing: handler.NewListingHandler(listingService),
		Message: handler.NewMessageHandler(messageService),
		Report:  handler.NewReportHandler(reportService),
		WS:      handler.NewWSHandler(hub, cfg.CORS.AllowOrigins),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthHandler(db, redisClient))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, handlers, jwtManager, redisClient)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	hub.Stop()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func corsConfig(allowOrigins string) cors.Config {
	origins := splitAndTrim(allowOrigins, ",")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           12 * time.Hour,
	}
}

func healthHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "disabled"}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
			}
		}

		c.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"service": "titanmarket-backend",
			"checks":  checks,
			"time":    time.Now().Unix(),
		})
	}
}

func splitAndTrim(s, sep string) []string {
	var parts []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// initDB opens the configured database and applies pool settings
func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.Database.LogLevel)),
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.GetDSN())
	default:
		mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to parse DSN: %w", err)
		}
		if mysqlCfg.Params == nil {
			mysqlCfg.Params = map[string]string{}
		}
		mysqlCfg.Params["time_zone"] = "'+00:00'"
		dialector = mysql.Open(mysqlCfg.FormatDSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
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

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
