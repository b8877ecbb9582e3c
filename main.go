package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	productcontroller "github.com/Adeleye080/DShop/controllers/product"
	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/routes"
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
		&models.Address{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Gin setup
	r := gin.New()
	r.Use(gin.Logger(), apperr.Recovery())

	// Product image uploads stay well under this
	r.MaxMultipartMemory = 8 << 20 // 8 MB

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Serve uploaded product images
	uploadsDir := productcontroller.UploadDir()
	r.Static("/uploads", uploadsDir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Setup routes
	routes.SetupRoutes(r, db)

	// Nightly upload backup at 2 AM, keep 4 days, only when configured
	if backupDir := os.Getenv("BACKUP_DIR"); backupDir != "" {
		go backupUploadsDaily(uploadsDir, backupDir, 4*24*time.Hour)
	}

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

const backupHour = 2

// backupUploadsDaily snapshots the upload directory into a timestamped
// folder under backupDir once per night and prunes snapshots older than
// the retention.
func backupUploadsDaily(uploadsDir, backupDir string, retention time.Duration) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), backupHour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		log.Printf("⏳ Next uploads backup at %s", next.Format(time.DateTime))
		time.Sleep(next.Sub(now))

		snapshot := filepath.Join(backupDir, time.Now().Format("2006-01-02_15-04-05"))
		if err := snapshotTree(uploadsDir, snapshot); err != nil {
			log.Printf("❌ Uploads backup failed: %v", err)
		} else {
			log.Printf("✅ Uploads backed up to %s", snapshot)
		}
		pruneSnapshots(backupDir, time.Now().Add(-retention))
	}
}

func snapshotTree(src, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			err = snapshotTree(from, to)
		} else {
			err = snapshotFile(from, to)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func snapshotFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// pruneSnapshots removes snapshot folders last modified before cutoff.
func pruneSnapshots(backupDir string, cutoff time.Time) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		log.Printf("❌ Failed to read backup directory: %v", err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		snapshot := filepath.Join(backupDir, entry.Name())
		if err := os.RemoveAll(snapshot); err != nil {
			log.Printf("❌ Failed to prune backup %s: %v", snapshot, err)
		} else {
			log.Printf("🗑️ Pruned stale backup %s", snapshot)
		}
	}
}
