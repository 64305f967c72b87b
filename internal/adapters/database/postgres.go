package database

import (
	"fmt"
	"log/slog"
	"time"

	"social-service/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPostgresConnection(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	// Retry the initial connection; the database container often
	// comes up after the service in local compose setups.
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			SkipDefaultTransaction: true,
		})
		if err == nil {
			break
		}
		slog.Warn("failed to connect to postgres, retrying",
			"attempt", i+1, "maxRetries", maxRetries, "error", err)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Message{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.Story{},
		&models.StoryView{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to add indexes: %w", err)
	}

	return db, nil
}

func addIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		stmt string
	}{
		// Active-edge lookups scan both directions of a pair.
		{"idx_friend_requests_pair", "CREATE INDEX IF NOT EXISTS idx_friend_requests_pair ON friend_requests (from_id, to_id, status)"},
		{"idx_stories_owner_created", "CREATE INDEX IF NOT EXISTS idx_stories_owner_created ON stories (owner_id, created_at)"},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.stmt).Error; err != nil {
			return fmt.Errorf("creating %s: %w", idx.name, err)
		}
	}
	return nil
}
