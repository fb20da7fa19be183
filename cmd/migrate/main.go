package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/neberku/neberku-backend/internal/config"
	"github.com/neberku/neberku-backend/internal/migration"
	"github.com/neberku/neberku-backend/internal/repository"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Migration target constants
const (
	targetSchema   = "schema"
	targetPackages = "packages"
	targetCodes    = "codes"
)

func main() {
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	target := flag.String("target", "all", "migration target: all, schema, packages, codes (comma separated)")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if err := runMigration(db, *target); err != nil {
		log.Printf("[migrate] %v", err)
		sqlDB.Close()
		os.Exit(1)
	}
}

func runMigration(db *gorm.DB, target string) error {
	start := time.Now()

	for _, t := range parseTargets(target) {
		log.Printf("[migrate] Starting: %s", t)
		tStart := time.Now()

		var err error
		switch t {
		case targetSchema:
			err = migration.Schema(db)
		case targetPackages:
			var created int
			created, err = migration.SeedPackages(repository.NewPackageRepository(db))
			log.Printf("[migrate:packages] Created %d packages", created)
		case targetCodes:
			var assigned int
			assigned, err = migration.GenerateContributorCodes(repository.NewEventRepository(db))
			log.Printf("[migrate:codes] Assigned %d contributor codes", assigned)
		default:
			log.Printf("[migrate] Unknown target: %s", t)
			continue
		}

		if err != nil {
			return err
		}
		log.Printf("[migrate] Completed %s in %v", t, time.Since(tStart))
	}

	log.Printf("[migrate] All migrations completed in %v", time.Since(start))
	return nil
}

func parseTargets(target string) []string {
	if target == "all" {
		return []string{targetSchema, targetPackages, targetCodes}
	}
	parts := strings.Split(target, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
