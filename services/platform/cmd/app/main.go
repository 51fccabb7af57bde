package main

import (
	"flag"
	"os"

	"fanvault/pkg/cache"
	"fanvault/pkg/config"
	"fanvault/pkg/database"
	"fanvault/pkg/logger"
	"fanvault/pkg/queue"
	"fanvault/pkg/s3"
	platformApp "fanvault/services/platform/internal/app"
	"fanvault/services/platform/internal/repo/persistent"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title           Fanvault Platform API
// @version         1.0
// @description     Creator subscriptions, pay-per-view unlocks, tips and fan interaction
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	autoMigrate := flag.Bool("auto-migrate", false, "create or update tables from the gorm models on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		if cfg.JWTSecret == config.DefaultJWTSecret || cfg.JWTSecret == "" {
			panic("JWT_SECRET must be set in environment variables")
		}
	}

	log := logger.NewWithOptions(cfg.LogLevel, cfg.IsProduction(), os.Stdout)

	db, err := database.Open(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Postgres schemas are normally applied by goose, see cmd/migrate.
	if *autoMigrate || cfg.DBDriver == "sqlite" {
		if err := persistent.AutoMigrate(db); err != nil {
			log.Error("Failed to migrate database: %v", err)
			panic(err)
		}
	}

	var redisClient *redis.Client
	if client, err := cache.NewRedisClient(cfg); err != nil {
		log.Warn("Failed to connect to redis: %v (continuing without rate limiting)", err)
	} else {
		redisClient = client
	}

	var s3Client *s3.Client
	if cfg.AWSAccessKeyID != "" {
		if s3Client, err = s3.NewClient(cfg); err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	} else {
		log.Warn("AWS credentials not set, media uploads are disabled")
	}

	// Connect to RabbitMQ for publishing monetization events
	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	platformApp.Run(cfg, log, db, s3Client, queueClient, redisClient)
}
