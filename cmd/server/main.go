package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wcircle.app/watchcircle/internal/config"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
	"wcircle.app/watchcircle/internal/server"
	"wcircle.app/watchcircle/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg.DatabaseURL)
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := database.ConnectRedis(cfg.RedisURL)

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	srv := server.NewServer(cfg, db, redisClient)

	log.Printf("🚀 Server listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Follow{},
		&model.TasteMatch{},
		&model.Activity{},
		&model.Rating{},
		&model.WatchStatus{},
		&model.Comment{},
		&model.ActivityLike{},
		&model.Notification{},
		&model.AppSetting{},
	)
}

func seedAdminUser(db *gorm.DB) error {
	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)

	if existing, err := userRepo.FindByUsername(ctx, "admin"); err == nil && existing != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username:     "admin",
		Email:        "admin@wcircle.app",
		PasswordHash: string(hashed),
		IsAdmin:      true,
		Profile:      &model.Profile{DisplayName: "Admin"},
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Println("✅ Seeded development admin user (admin@wcircle.app)")
	return nil
}
