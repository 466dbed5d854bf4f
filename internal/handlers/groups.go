package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/response"
)

type GroupHandler struct {
	groups services.GroupService
}

func NewGroupHandler(groups services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type createGroupRequest struct {
	Name    string       `json:"name" binding:"required"`
	Members []flexibleID `json:"members"`
}

type memberRequest struct {
	UserID flexibleID `json:"userId" binding:"required"`
	Role   string     `json:"role"`
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), user, req.Name, toUUIDs(req.Members))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Group created successfully", gin.H{"group": group})
}

func (h *GroupHandler) MyGroups(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	groups, err := h.groups.GetUserGroups(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"groups": groups})
}

func (h *GroupHandler) GroupMembers(c *gin.Context) {
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}
	members, err := h.groups.GetGroupMembers(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"members": members})
}

func (h *GroupHandler) AddUser(c *gin.Context) {
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}

	var req memberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Role == "" {
		req.Role = string(models.GroupRoleMember)
	}

	member, added, err := h.groups.AddMember(c.Request.Context(), groupID, uuid.UUID(req.UserID), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !added {
		response.OK(c, "User is already a member of this group", gin.H{"member": member})
		return
	}
	response.Created(c, "User added to group successfully", gin.H{"member": member})
}

func (h *GroupHandler) RemoveUser(c *gin.Context) {
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}

	var req memberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.groups.RemoveMember(c.Request.Context(), groupID, uuid.UUID(req.UserID)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User removed from group successfully", nil)
}

func (h *GroupHandler) SetRole(c *gin.Context) {
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}

	var req memberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.groups.SetMemberRole(c.Request.Context(), groupID, uuid.UUID(req.UserID), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Member role updated", gin.H{"member": member})
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}
	if err := h.groups.DeleteGroup(c.Request.Context(), groupID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Group deleted successfully", nil)
}
