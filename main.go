package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	paymentControllers "github.com/aayushmaan-54/OneStore/controllers/payment"
	"github.com/aayushmaan-54/OneStore/models"
	"github.com/aayushmaan-54/OneStore/routes"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	logger.Info().Msg("starting application")

	// Load environment variables
	_ = godotenv.Load()

	db := initDatabase()

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserData{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		logger.Fatal().Err(err).Msg("AutoMigrate failed")
	}

	gw, err := paymentControllers.NewClientFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("payment gateway configuration failed")
	}

	rdb := initRedis()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, db, gw, rdb)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info().Str("port", port).Msg("server running")
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			logger.Fatal().Err(err).Msg("DB connection failed")
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect DB")
	}
	return db
}

// initRedis returns nil when REDIS_ADDR is unset; the checkout idempotency
// guard is skipped in that case.
func initRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logger.Warn().Msg("REDIS_ADDR not set, checkout idempotency guard disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}
