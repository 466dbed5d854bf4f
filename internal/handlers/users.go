package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/response"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type activateRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Users fetched successfully", gin.H{"data": users})
}

func (h *UserHandler) GetTeamList(c *gin.Context) {
	users, err := h.userService.GetTeamList(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"users": users})
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.userService.SearchUsers(c.Request.Context(), c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"users": users})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Profile Updated Successfully.", gin.H{"user": user})
}

// ActivateUser enables or disables an account. Admin only.
func (h *UserHandler) ActivateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req activateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		response.Error(c, err)
		return
	}

	state := "disabled"
	if user.IsActive {
		state = "activated"
	}
	response.OK(c, "User account has been "+state, gin.H{"user": user})
}

// DeleteUser removes an account and everything hanging off it. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User deleted successfully", nil)
}
