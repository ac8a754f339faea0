package main

import (
	"log"

	"taskforge-backend/shared/config"
	"taskforge-backend/shared/database"
)

func main() {
	log.Println("🌱 Starting database seeding...")

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if err := database.SeedPlatformAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed platform admin: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}
