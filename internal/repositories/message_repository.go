package repositories

import (
	"context"
	"time"

	"github.com/anonto42/socialcore/backend/internal/models"
	"gorm.io/gorm"
)

// ConversationRow is the per-counterpart aggregate behind the conversation list.
type ConversationRow struct {
	CounterpartID uint
	LastMessageID uint
	UnreadCount   int64
}

// MessageRepository stores direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.DirectMessage) error
	FindByID(ctx context.Context, id uint) (*models.DirectMessage, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]models.DirectMessage, error)
	// FindConversation returns the newest limit messages between the pair in
	// ascending order.
	FindConversation(ctx context.Context, userID1, userID2 uint, limit int) ([]models.DirectMessage, error)
	MarkConversationAsRead(ctx context.Context, readerID, peerID uint, at time.Time) (int64, error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
	ListConversations(ctx context.Context, userID uint, limit int) ([]ConversationRow, error)
	Delete(ctx context.Context, id uint) error
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, message *models.DirectMessage) error {
	return dbFor(ctx, r.db).Create(message).Error
}

func (r *PostgresMessageRepository) FindByID(ctx context.Context, id uint) (*models.DirectMessage, error) {
	var message models.DirectMessage
	if err := dbFor(ctx, r.db).First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *PostgresMessageRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.DirectMessage, error) {
	result := make(map[uint]models.DirectMessage, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var messages []models.DirectMessage
	if err := dbFor(ctx, r.db).Where("id IN ?", ids).Find(&messages).Error; err != nil {
		return nil, err
	}
	for _, m := range messages {
		result[m.ID] = m
	}
	return result, nil
}

func (r *PostgresMessageRepository) FindConversation(ctx context.Context, userID1, userID2 uint, limit int) ([]models.DirectMessage, error) {
	var newest []models.DirectMessage
	err := dbFor(ctx, r.db).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userID1, userID2, userID2, userID1).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&newest).Error
	if err != nil {
		return nil, err
	}
	messages := make([]models.DirectMessage, len(newest))
	for i := range newest {
		messages[len(newest)-1-i] = newest[i]
	}
	return messages, nil
}

func (r *PostgresMessageRepository) MarkConversationAsRead(ctx context.Context, readerID, peerID uint, at time.Time) (int64, error) {
	res := dbFor(ctx, r.db).Model(&models.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND read_at IS NULL", peerID, readerID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *PostgresMessageRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).Model(&models.DirectMessage{}).
		Where("receiver_id = ? AND read_at IS NULL", receiverID).
		Count(&count).Error
	return count, err
}

func (r *PostgresMessageRepository) ListConversations(ctx context.Context, userID uint, limit int) ([]ConversationRow, error) {
	rows := []ConversationRow{}
	err := dbFor(ctx, r.db).Model(&models.DirectMessage{}).
		Select(`CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS counterpart_id,
			MAX(id) AS last_message_id,
			SUM(CASE WHEN receiver_id = ? AND read_at IS NULL THEN 1 ELSE 0 END) AS unread_count`, userID, userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("counterpart_id").
		Order("last_message_id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Delete(&models.DirectMessage{}, id).Error
}
