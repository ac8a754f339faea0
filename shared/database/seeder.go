package database

import (
	"log"

	"gorm.io/gorm"

	"taskforge-backend/shared/config"
	"taskforge-backend/shared/database/models"
	utils "taskforge-backend/shared/utils/auth"
)

// SeedPlatformAdmin creates the platform administrator account if it does
// not exist yet. Idempotent: a second run is a no-op.
func SeedPlatformAdmin(db *gorm.DB, cfg *config.Config) error {
	var existing models.User
	err := db.Where("email = ?", cfg.PlatformAdminEmail).First(&existing).Error
	if err == nil {
		log.Printf("✅ Platform admin already exists: %s", cfg.PlatformAdminEmail)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := utils.HashPassword(cfg.PlatformAdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    cfg.PlatformAdminEmail,
		Password: hashedPassword,
		FullName: cfg.PlatformAdminName,
		Role:     models.RolePlatformAdmin,
		IsActive: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Platform admin created: %s", cfg.PlatformAdminEmail)
	return nil
}
