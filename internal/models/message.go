package models

import "time"

// DirectMessage is a 1:1 message. A nil ReadAt means unread.
type DirectMessage struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	SenderID   uint       `json:"sender_id" gorm:"index:idx_dm_pair"`
	ReceiverID uint       `json:"receiver_id" gorm:"index:idx_dm_pair;index:idx_dm_receiver_read"`
	Content    string     `json:"content" gorm:"type:text"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index"`
	ReadAt     *time.Time `json:"read_at" gorm:"index:idx_dm_receiver_read"`
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	User          UserCompact `json:"user"`
	LastMessage   string      `json:"last_message"`
	LastMessageAt time.Time   `json:"last_message_at"`
	UnreadCount   int64       `json:"unread_count"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}
