package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/response"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type createTaskRequest struct {
	Title    string       `json:"title"`
	Team     []flexibleID `json:"team"`
	Stage    string       `json:"stage"`
	Priority string       `json:"priority"`
	Date     string       `json:"date"`
	Assets   []string     `json:"assets"`
	GroupID  *flexibleID  `json:"groupId"`
}

type updateTaskRequest struct {
	Title    *string       `json:"title"`
	Team     *[]flexibleID `json:"team"`
	Stage    string        `json:"stage"`
	Priority string        `json:"priority"`
	Date     string        `json:"date"`
	Assets   *[]string     `json:"assets"`
}

type activityRequest struct {
	Type     string `json:"type"`
	Activity string `json:"activity"`
}

type subTaskRequest struct {
	Title string `json:"title"`
	Tag   string `json:"tag"`
	Date  string `json:"date"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := services.CreateTaskInput{
		Title:    req.Title,
		Team:     toUUIDs(req.Team),
		Stage:    req.Stage,
		Priority: req.Priority,
		Date:     date,
		Assets:   req.Assets,
	}
	if req.GroupID != nil && uuid.UUID(*req.GroupID) != uuid.Nil {
		groupID := uuid.UUID(*req.GroupID)
		input.GroupID = &groupID
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), user, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Task created successfully.", gin.H{"task": task})
}

func (h *TaskHandler) DuplicateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.DuplicateTask(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Task duplicated successfully.", gin.H{"task": task})
}

func (h *TaskHandler) PostActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req activityRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.taskService.PostActivity(c.Request.Context(), user, id, req.Type, req.Activity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Activity posted successfully.", gin.H{"activity": activity})
}

func (h *TaskHandler) Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.taskService.DashboardStatistics(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Successfully fetched dashboard statistics.", gin.H{"data": summary})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	trashed, _ := strconv.ParseBool(c.Query("isTrashed"))
	tasks, err := h.taskService.GetTasks(c.Request.Context(), user, services.TaskFilter{
		Stage:     c.Query("stage"),
		IsTrashed: trashed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"task": task})
}

func (h *TaskHandler) SearchTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.SearchTasks(c.Request.Context(), user, c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetSuggestions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.GetSuggestions(c.Request.Context(), user, c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"tasks": tasks})
}

func (h *TaskHandler) CreateSubTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req subTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	subTask, err := h.taskService.CreateSubTask(c.Request.Context(), id, services.SubTaskInput{
		Title: req.Title,
		Date:  date,
		Tag:   req.Tag,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "SubTask added successfully.", gin.H{"newSubTask": subTask})
}

func (h *TaskHandler) GetSubTasks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	subTasks, err := h.taskService.GetSubTasks(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"subTasks": subTasks})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := services.UpdateTaskInput{
		Title:    req.Title,
		Stage:    req.Stage,
		Priority: req.Priority,
		Date:     date,
		Assets:   req.Assets,
	}
	if req.Team != nil {
		team := toUUIDs(*req.Team)
		input.Team = &team
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), user, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Task updated successfully.", gin.H{"task": task})
}

func (h *TaskHandler) TrashTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.taskService.TrashTask(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Task trashed successfully.", nil)
}

// DeleteRestoreTask handles both the single-task and the bulk form of the
// route; the id parameter is absent for deleteAll and restoreAll.
func (h *TaskHandler) DeleteRestoreTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id := uuid.Nil
	if raw := c.Param("id"); raw != "" {
		parsed, err := uuid.FromString(raw)
		if err != nil {
			response.Error(c, response.NewBadRequest("Invalid id"))
			return
		}
		id = parsed
	}

	affected, err := h.taskService.DeleteRestoreTask(c.Request.Context(), user, id, services.DeleteAction(c.Query("actionType")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Operation performed successfully.", gin.H{"affected": affected})
}
