package repositories

import (
	"context"

	"github.com/anonto42/socialcore/backend/internal/models"
	"gorm.io/gorm"
)

// GroupMessageRepository stores messages posted to groups.
type GroupMessageRepository interface {
	// Create inserts the message, bumps the group's updated_at and advances
	// the sender's read cursor, all in one transaction.
	Create(ctx context.Context, message *models.GroupMessage) error
	// FindByGroup returns the newest limit messages in ascending order.
	FindByGroup(ctx context.Context, groupID uint, limit int) ([]models.GroupMessage, error)
	IsMessageInGroup(ctx context.Context, messageID, groupID uint) (bool, error)
	GetLatestMessageIDs(ctx context.Context, groupIDs []uint) (map[uint]uint, error)
}

type PostgresGroupMessageRepository struct {
	db *gorm.DB
}

func NewPostgresGroupMessageRepository(db *gorm.DB) *PostgresGroupMessageRepository {
	return &PostgresGroupMessageRepository{db: db}
}

func (r *PostgresGroupMessageRepository) Create(ctx context.Context, message *models.GroupMessage) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Group{}).Where("id = ?", message.GroupID).
			Update("updated_at", message.CreatedAt).Error; err != nil {
			return err
		}
		return upsertReadCursor(tx, message.SenderID, message.GroupID, message.ID, message.CreatedAt)
	})
}

func (r *PostgresGroupMessageRepository) FindByGroup(ctx context.Context, groupID uint, limit int) ([]models.GroupMessage, error) {
	var newest []models.GroupMessage
	err := dbFor(ctx, r.db).Where("group_id = ?", groupID).
		Order("id DESC").
		Limit(limit).
		Find(&newest).Error
	if err != nil {
		return nil, err
	}
	messages := make([]models.GroupMessage, len(newest))
	for i := range newest {
		messages[len(newest)-1-i] = newest[i]
	}
	return messages, nil
}

func (r *PostgresGroupMessageRepository) IsMessageInGroup(ctx context.Context, messageID, groupID uint) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).Model(&models.GroupMessage{}).
		Where("id = ? AND group_id = ?", messageID, groupID).
		Count(&count).Error
	return count > 0, err
}

type latestMessageRow struct {
	GroupID uint
	MaxID   uint
}

func (r *PostgresGroupMessageRepository) GetLatestMessageIDs(ctx context.Context, groupIDs []uint) (map[uint]uint, error) {
	result := make(map[uint]uint, len(groupIDs))
	if len(groupIDs) == 0 {
		return result, nil
	}
	var rows []latestMessageRow
	err := dbFor(ctx, r.db).Model(&models.GroupMessage{}).
		Select("group_id, MAX(id) AS max_id").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.GroupID] = row.MaxID
	}
	return result, nil
}
