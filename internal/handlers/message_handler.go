package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages/conversations", h.GetConversations)
	g.GET("/messages/me/unread/count", h.GetUnreadCount)
	g.POST("/messages/:userId", h.SendMessage)
	g.GET("/messages/:userId", h.GetConversation)
	g.POST("/messages/:userId/read", h.MarkAsRead)
	g.DELETE("/messages/:messageId", h.DeleteMessage)
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	receiverID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.messages.Send(c.Request().Context(), currentUserID, receiverID, req.Content)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, msg)
}

// GetConversation returns the conversation and then acknowledges it, so
// viewing a conversation marks the peer's messages read.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	otherID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	messages, err := h.messages.Conversation(ctx, currentUserID, otherID)
	if err != nil {
		return err
	}
	if _, err := h.messages.MarkRead(ctx, currentUserID, otherID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"messages": messages})
}

func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	otherID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	updated, err := h.messages.MarkRead(c.Request().Context(), currentUserID, otherID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"updated": updated})
}

func (h *MessageHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	count, err := h.messages.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

func (h *MessageHandler) GetConversations(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	conversations, err := h.messages.Conversations(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"conversations": conversations})
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	messageID, err := uintParam(c, "messageId")
	if err != nil {
		return err
	}
	if err := h.messages.Delete(c.Request().Context(), currentUserID, messageID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}
