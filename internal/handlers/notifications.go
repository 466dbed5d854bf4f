package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/response"
)

type NotificationHandler struct {
	notifications services.NotificationService
}

func NewNotificationHandler(notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	notices, err := h.notifications.GetUnread(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"notifications": notices})
}

// MarkRead marks every unread notice when isReadType=all, otherwise the
// notice named by the id query parameter.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if c.Query("isReadType") == "all" {
		if _, err := h.notifications.MarkAllRead(c.Request.Context(), user.ID); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Notifications marked as read", nil)
		return
	}

	noticeID, err := uuid.FromString(c.Query("id"))
	if err != nil {
		response.Error(c, response.NewBadRequest("Notification id is required"))
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), user.ID, noticeID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Notifications marked as read", nil)
}
