package database

import (
	"errors"
	"time"

	"github.com/anonto42/socialcore/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationDropSelfReferencingRows = "2026-10-18_drop_self_referencing_rows"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

// Models lists every table owned by this service.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
		&models.DirectMessage{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupMessage{},
		&models.GroupReadCursor{},
		&models.Story{},
		&models.StoryView{},
		&models.StoryLike{},
	}
}

// Migrate creates or updates the schema and applies pending named migrations.
// It is idempotent and runs once at startup, never on a request path.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(append(Models(), &migrationRecord{})...); err != nil {
		return err
	}
	if err := applyMigrations(db, logger); err != nil {
		return err
	}
	logger.Info("database schema migrated")
	return nil
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationDropSelfReferencingRows, apply: dropSelfReferencingRows},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		logger.Info("database migration applied", zap.String("migration", migration.name))
	}
	return nil
}

// dropSelfReferencingRows removes self-follows and self-notifications written
// before those were rejected at the service layer.
func dropSelfReferencingRows(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = following_id").Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = actor_id").Delete(&models.Notification{}).Error
	})
}
