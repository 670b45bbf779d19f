package repositories

import (
	"context"
	"time"

	"github.com/anonto42/socialcore/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	// MarkAsRead stamps read_at on the given ids, limited to rows owned by
	// recipientID that are still unread.
	MarkAsRead(ctx context.Context, recipientID uint, ids []uint, at time.Time) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID uint, at time.Time) (int64, error)
}

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return dbFor(ctx, r.db).Create(notification).Error
}

func (r *PostgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := dbFor(ctx, r.db).Where("user_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *PostgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}

func (r *PostgresNotificationRepository) MarkAsRead(ctx context.Context, recipientID uint, ids []uint, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbFor(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND id IN ? AND read_at IS NULL", recipientID, ids).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *PostgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint, at time.Time) (int64, error) {
	res := dbFor(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", recipientID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}
