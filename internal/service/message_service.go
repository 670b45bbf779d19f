package service

import (
	"context"
	"strings"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	ConversationLimit     = 500
	ConversationListLimit = 100
)

// MessageService is the direct message channel.
type MessageService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	logger   *zap.Logger
	now      Clock
}

func NewMessageService(messages repositories.MessageRepository, users repositories.UserRepository, logger *zap.Logger, clock Clock) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		logger:   logger,
		now:      clockOrDefault(clock),
	}
}

func (s *MessageService) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.DirectMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Invalid("message content is required")
	}
	if senderID == receiverID {
		return nil, apperrors.Invalid("you cannot message yourself")
	}
	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load user")
	}
	if !exists {
		return nil, apperrors.NotFound("user not found")
	}

	msg := &models.DirectMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.Server(err, "failed to send message")
	}
	return msg, nil
}

// Conversation returns the messages between the pair, oldest first. It does
// not mark anything read; callers acknowledge with MarkRead.
func (s *MessageService) Conversation(ctx context.Context, actorID, otherID uint) ([]models.DirectMessage, error) {
	messages, err := s.messages.FindConversation(ctx, actorID, otherID, ConversationLimit)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load conversation")
	}
	return messages, nil
}

// MarkRead marks every unread message from otherID to actorID as read.
func (s *MessageService) MarkRead(ctx context.Context, actorID, otherID uint) (int64, error) {
	n, err := s.messages.MarkConversationAsRead(ctx, actorID, otherID, s.now())
	if err != nil {
		return 0, apperrors.Server(err, "failed to mark messages as read")
	}
	return n, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, actorID uint) (int64, error) {
	n, err := s.messages.CountUnread(ctx, actorID)
	if err != nil {
		return 0, apperrors.Server(err, "failed to count unread messages")
	}
	return n, nil
}

// Conversations lists one row per counterpart, most recent first.
func (s *MessageService) Conversations(ctx context.Context, actorID uint) ([]models.ConversationSummary, error) {
	rows, err := s.messages.ListConversations(ctx, actorID, ConversationListLimit)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load conversations")
	}

	messageIDs := make([]uint, 0, len(rows))
	userIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		messageIDs = append(messageIDs, row.LastMessageID)
		userIDs = append(userIDs, row.CounterpartID)
	}
	lastMessages, err := s.messages.FindByIDs(ctx, messageIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load messages")
	}
	users, err := s.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load users")
	}

	summaries := make([]models.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		summary := models.ConversationSummary{
			User:        models.UserCompact{ID: row.CounterpartID},
			UnreadCount: row.UnreadCount,
		}
		if u, ok := users[row.CounterpartID]; ok {
			summary.User = u.ToCompact()
		}
		if m, ok := lastMessages[row.LastMessageID]; ok {
			summary.LastMessage = m.Content
			summary.LastMessageAt = m.CreatedAt
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Delete hard-deletes a message. Only its sender may delete it.
func (s *MessageService) Delete(ctx context.Context, actorID, messageID uint) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return apperrors.Lookup(err, "message")
	}
	if msg.SenderID != actorID {
		return apperrors.Forbidden("only the sender can delete this message")
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return apperrors.Server(err, "failed to delete message")
	}
	return nil
}
