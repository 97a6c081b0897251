package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogControllers "github.com/snackbasket/storefront-api/controllers/catalog"
	shippingControllers "github.com/snackbasket/storefront-api/controllers/shipping"
	"github.com/snackbasket/storefront-api/models"
	"github.com/snackbasket/storefront-api/routes"
	"github.com/snackbasket/storefront-api/verify"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.CouponRule{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// External service clients
	verifyClient, err := verify.NewClientFromEnv()
	if err != nil {
		log.Fatalf("❌ Verify client setup failed: %v", err)
	}
	catalogClient, err := catalogControllers.NewClientFromEnv()
	if err != nil {
		log.Fatalf("❌ Catalog client setup failed: %v", err)
	}
	shippingClient, err := shippingControllers.NewClientFromEnv()
	if err != nil {
		log.Fatalf("❌ Shipping client setup failed: %v", err)
	}

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "X-User-Id", "X-User-Phone"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, db, routes.Deps{
		Verify:   verifyClient,
		Catalog:  catalogClient,
		Shipping: shippingClient,
	})

	// Sweep long-expired carts at 3 AM daily, keep a week of history
	go startDailyCartSweepAtFixedTime(db, 7*24*time.Hour, 3, 0)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
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
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}

// startDailyCartSweepAtFixedTime deletes carts that expired longer than the
// retention window ago. Recently expired carts stay around so GET still
// answers 410 instead of 404.
func startDailyCartSweepAtFixedTime(db *gorm.DB, retention time.Duration, hour, min int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		sleepDuration := next.Sub(now)
		log.Printf("⏳ Next cart sweep scheduled at: %s", next.Format("2006-01-02 15:04:05"))
		time.Sleep(sleepDuration)

		cutoff := time.Now().UTC().Add(-retention)
		result := db.Where("status = ? AND expires_at < ?", models.CartStatusActive, cutoff).
			Delete(&models.Cart{})
		if result.Error != nil {
			log.Printf("❌ Cart sweep failed: %v", result.Error)
		} else {
			log.Printf("🗑️ Removed %d expired carts", result.RowsAffected)
		}
	}
}
