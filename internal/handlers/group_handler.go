package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// GroupHandler handles group, membership and group message requests
type GroupHandler struct {
	groups *service.GroupService
}

func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.ListGroups)
	g.GET("/groups/:id", h.GetGroup)
	g.PUT("/groups/:id", h.UpdateGroup)
	g.DELETE("/groups/:id", h.DeleteGroup)

	g.GET("/groups/:id/members", h.ListMembers)
	g.POST("/groups/:id/members", h.AddMember)
	g.DELETE("/groups/:id/members/:userId", h.RemoveMember)
	g.PUT("/groups/:id/members/:userId/role", h.SetRole)

	g.GET("/groups/:id/messages", h.ListMessages)
	g.POST("/groups/:id/messages", h.SendMessage)
	g.POST("/groups/:id/read", h.MarkRead)
}

func (h *GroupHandler) CreateGroup(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	group, err := h.groups.Create(c.Request().Context(), currentUserID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, group)
}

// ListGroups returns the caller's groups with unread flags.
func (h *GroupHandler) ListGroups(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	groups, err := h.groups.List(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"groups": groups})
}

func (h *GroupHandler) GetGroup(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	group, err := h.groups.Get(c.Request().Context(), currentUserID, groupID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, group)
}

func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	var req models.UpdateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	group, err := h.groups.Update(c.Request().Context(), currentUserID, groupID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	if err := h.groups.Delete(c.Request().Context(), currentUserID, groupID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

func (h *GroupHandler) ListMembers(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	members, err := h.groups.Members(c.Request().Context(), currentUserID, groupID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"members": members})
}

func (h *GroupHandler) AddMember(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	var req models.AddMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	member, err := h.groups.AddMember(c.Request().Context(), currentUserID, groupID, req.UserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, member)
}

// RemoveMember removes a member; targeting yourself leaves the group.
func (h *GroupHandler) RemoveMember(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	targetID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	if err := h.groups.RemoveMember(c.Request().Context(), currentUserID, groupID, targetID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"removed": true})
}

func (h *GroupHandler) SetRole(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	targetID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	var req models.SetRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.groups.SetRole(c.Request().Context(), currentUserID, groupID, targetID, req.Role); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"user_id": targetID, "role": req.Role})
}

func (h *GroupHandler) ListMessages(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	messages, err := h.groups.Messages(c.Request().Context(), currentUserID, groupID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"messages": messages})
}

func (h *GroupHandler) SendMessage(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	var req models.SendGroupMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.groups.SendMessage(c.Request().Context(), currentUserID, groupID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, msg)
}

// MarkRead advances the caller's read cursor for the group.
func (h *GroupHandler) MarkRead(c echo.Context) error {
	currentUserID, groupID, err := groupRequest(c)
	if err != nil {
		return err
	}
	var req models.AdvanceCursorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.groups.AdvanceCursor(c.Request().Context(), currentUserID, groupID, req.MessageID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"last_read_message_id": req.MessageID})
}

func groupRequest(c echo.Context) (uint, uint, error) {
	userID, err := currentUser(c)
	if err != nil {
		return 0, 0, err
	}
	groupID, err := uintParam(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return userID, groupID, nil
}
