package models

import "time"

type NotificationType string

const (
	NotificationFollow     NotificationType = "follow"
	NotificationLike       NotificationType = "like"
	NotificationComment    NotificationType = "comment"
	NotificationGroupAdded NotificationType = "group_added"
	NotificationGroupAdmin NotificationType = "group_admin"

	// NotificationGroupMessage is reserved and never emitted. Group unread
	// state comes from read cursors.
	NotificationGroupMessage NotificationType = "group_message"
)

// Notification is the stored row. Which reference columns are set depends on
// Type; services build rows only through a typed event.
type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"index:idx_notification_user_read"`
	ActorID   uint             `json:"actor_id" gorm:"index"`
	Type      NotificationType `json:"type" gorm:"size:30;index"`
	PostID    *string          `json:"post_id,omitempty" gorm:"size:64"`
	CommentID *uint            `json:"comment_id,omitempty"`
	GroupID   *uint            `json:"group_id,omitempty"`
	Message   string           `json:"message,omitempty"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
	ReadAt    *time.Time       `json:"read_at" gorm:"index:idx_notification_user_read"`
}

// NotificationView is a notification joined with its actor and, when
// applicable, the related post or group thumbnail.
type NotificationView struct {
	Notification
	Actor          UserCompact `json:"actor"`
	PostThumbnail  string      `json:"post_thumbnail,omitempty"`
	GroupName      string      `json:"group_name,omitempty"`
	GroupThumbnail string      `json:"group_thumbnail,omitempty"`
}

// MarkNotificationsReadRequest marks the given ids, or every unread row when
// ids is absent or null.
type MarkNotificationsReadRequest struct {
	IDs []uint `json:"ids"`
}
