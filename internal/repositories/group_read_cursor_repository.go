package repositories

import (
	"context"
	"time"

	"github.com/anonto42/socialcore/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupReadCursorRepository tracks the highest message id each member has read.
type GroupReadCursorRepository interface {
	// UpsertMonotonic sets the cursor to max(existing, messageID). Concurrent
	// calls commute.
	UpsertMonotonic(ctx context.Context, userID, groupID, messageID uint, at time.Time) error
	Get(ctx context.Context, userID, groupID uint) (*models.GroupReadCursor, error)
	GetForUser(ctx context.Context, userID uint, groupIDs []uint) (map[uint]uint, error)
}

type PostgresGroupReadCursorRepository struct {
	db *gorm.DB
}

func NewPostgresGroupReadCursorRepository(db *gorm.DB) *PostgresGroupReadCursorRepository {
	return &PostgresGroupReadCursorRepository{db: db}
}

func (r *PostgresGroupReadCursorRepository) UpsertMonotonic(ctx context.Context, userID, groupID, messageID uint, at time.Time) error {
	return upsertReadCursor(dbFor(ctx, r.db), userID, groupID, messageID, at)
}

func (r *PostgresGroupReadCursorRepository) Get(ctx context.Context, userID, groupID uint) (*models.GroupReadCursor, error) {
	var cursor models.GroupReadCursor
	err := dbFor(ctx, r.db).Where("user_id = ? AND group_id = ?", userID, groupID).First(&cursor).Error
	if err != nil {
		return nil, err
	}
	return &cursor, nil
}

func (r *PostgresGroupReadCursorRepository) GetForUser(ctx context.Context, userID uint, groupIDs []uint) (map[uint]uint, error) {
	result := make(map[uint]uint, len(groupIDs))
	if len(groupIDs) == 0 {
		return result, nil
	}
	var cursors []models.GroupReadCursor
	err := dbFor(ctx, r.db).Where("user_id = ? AND group_id IN ?", userID, groupIDs).Find(&cursors).Error
	if err != nil {
		return nil, err
	}
	for _, c := range cursors {
		result[c.GroupID] = c.LastReadMessageID
	}
	return result, nil
}

// upsertReadCursor is a single INSERT .. ON CONFLICT statement, valid on both
// PostgreSQL and SQLite.
func upsertReadCursor(db *gorm.DB, userID, groupID, messageID uint, at time.Time) error {
	const advances = "excluded.last_read_message_id > group_read_cursors.last_read_message_id"
	cursor := models.GroupReadCursor{
		UserID:            userID,
		GroupID:           groupID,
		LastReadMessageID: messageID,
		LastReadAt:        at,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
		DoUpdates: clause.Set{
			{
				Column: clause.Column{Name: "last_read_message_id"},
				Value:  gorm.Expr("CASE WHEN " + advances + " THEN excluded.last_read_message_id ELSE group_read_cursors.last_read_message_id END"),
			},
			{
				Column: clause.Column{Name: "last_read_at"},
				Value:  gorm.Expr("CASE WHEN " + advances + " THEN excluded.last_read_at ELSE group_read_cursors.last_read_at END"),
			},
		},
	}).Create(&cursor).Error
}
