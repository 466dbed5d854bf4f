package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/jastrate/task-manager/pkg/response"
	"gorm.io/gorm"
)

const (
	searchLimit      = 5
	suggestionsLimit = 10
	dashboardRecent  = 10
)

// Task scopes as raw SQL so they can be applied on any session, including
// one that is inside a transaction.
const (
	visibleTasksSQL = "(tasks.id IN (SELECT task_id FROM task_team WHERE user_id = ?) OR " +
		"tasks.group_id IN (SELECT group_id FROM group_members WHERE user_id = ?))"
	writableTasksSQL = "((tasks.group_id IS NULL AND tasks.id IN (SELECT task_id FROM task_team WHERE user_id = ?)) OR " +
		"tasks.group_id IN (SELECT group_id FROM group_members WHERE user_id = ? AND role = ?))"
)

type DeleteAction string

const (
	TrashDelete     DeleteAction = "delete"
	TrashDeleteAll  DeleteAction = "deleteAll"
	TrashRestore    DeleteAction = "restore"
	TrashRestoreAll DeleteAction = "restoreAll"
)

type CreateTaskInput struct {
	Title    string
	Team     []uuid.UUID
	Stage    string
	Priority string
	Date     *time.Time
	Assets   []string
	GroupID  *uuid.UUID
}

// UpdateTaskInput leaves a field unchanged when it is nil or empty. A non-nil
// Team replaces the whole team.
type UpdateTaskInput struct {
	Title    *string
	Team     *[]uuid.UUID
	Stage    string
	Priority string
	Date     *time.Time
	Assets   *[]string
}

type SubTaskInput struct {
	Title string
	Date  *time.Time
	Tag   string
}

type TaskFilter struct {
	Stage     string
	IsTrashed bool
}

type TaskHit struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type TaskSuggestion struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Priority models.Priority `json:"priority"`
	Stage    models.Stage    `json:"stage"`
}

type TeamEntry struct {
	ID    uuid.UUID `json:"id,omitempty"`
	Name  string    `json:"name"`
	Title string    `json:"title,omitempty"`
	Role  string    `json:"role,omitempty"`
	Email string    `json:"email,omitempty"`
}

type DashboardTask struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Stage     models.Stage    `json:"stage"`
	Priority  models.Priority `json:"priority"`
	Date      time.Time       `json:"date"`
	GroupID   *uuid.UUID      `json:"groupId,omitempty"`
	Team      []TeamEntry     `json:"team"`
	SubTasks  int             `json:"subTasks"`
	CreatedAt time.Time       `json:"createdAt"`
}

type PriorityCount struct {
	Name  models.Priority `json:"name"`
	Total int             `json:"total"`
}

type DashboardSummary struct {
	TotalTasks int                  `json:"totalTasks"`
	Last10Task []DashboardTask      `json:"last10Task"`
	Users      []UserSummary        `json:"users"`
	Tasks      map[models.Stage]int `json:"tasks"`
	GraphData  []PriorityCount      `json:"graphData"`
}

type TaskService interface {
	CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error)
	DuplicateTask(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Task, error)
	PostActivity(ctx context.Context, actor *models.User, id uuid.UUID, activityType, note string) (*models.Activity, error)
	GetTasks(ctx context.Context, actor *models.User, filter TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	CreateSubTask(ctx context.Context, id uuid.UUID, input SubTaskInput) (*models.SubTask, error)
	GetSubTasks(ctx context.Context, id uuid.UUID) ([]models.SubTask, error)
	UpdateTask(ctx context.Context, actor *models.User, id uuid.UUID, input UpdateTaskInput) (*models.Task, error)
	TrashTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	DeleteRestoreTask(ctx context.Context, actor *models.User, id uuid.UUID, action DeleteAction) (int64, error)
	DashboardStatistics(ctx context.Context, actor *models.User) (*DashboardSummary, error)
	SearchTasks(ctx context.Context, actor *models.User, query string) ([]TaskHit, error)
	GetSuggestions(ctx context.Context, actor *models.User, query string) ([]TaskSuggestion, error)
}

type TaskServiceImpl struct {
	db     *gorm.DB
	authz  AuthorizationService
	notify NotificationService
	now    func() time.Time
}

func NewTaskService(db *gorm.DB, authz AuthorizationService, notify NotificationService) *TaskServiceImpl {
	return &TaskServiceImpl{db: db, authz: authz, notify: notify, now: time.Now}
}

// actorRef returns a copy of the actor's id for activity attribution.
func actorRef(actor *models.User) *uuid.UUID {
	id := actor.ID
	return &id
}

func taskNotFound(id uuid.UUID) error {
	return response.NewNotFound(fmt.Sprintf("Task with ID %s not found", id))
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if !actor.CanCreateTasks() {
		return nil, response.NewForbidden("You are not authorized to create tasks.")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, response.NewBadRequest("Task title is required.")
	}

	stage := models.StageTodo
	if strings.TrimSpace(input.Stage) != "" {
		parsed, ok := models.ParseStage(input.Stage)
		if !ok {
			return nil, response.NewBadRequest("Invalid stage value")
		}
		stage = parsed
	}
	priority, ok := models.ParsePriority(input.Priority)
	if !ok {
		return nil, response.NewBadRequest("Invalid priority value")
	}

	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}

	teamIDs, err := s.resolveCreateTeam(ctx, actor, input)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:    title,
		Stage:    stage,
		Priority: priority,
		Date:     date,
		Assets:   nonNilAssets(input.Assets),
		GroupID:  input.GroupID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := loadUsers(tx, teamIDs)
		if err != nil {
			return err
		}
		task.Team = team

		if err := tx.Omit("Team.*").Create(task).Error; err != nil {
			return err
		}

		activity := models.Activity{
			TaskID:   task.ID,
			Type:     models.ActivityAssigned,
			Activity: "New task assigned: " + title,
			Date:     s.now(),
			ByID:     actorRef(actor),
		}
		if err := tx.Create(&activity).Error; err != nil {
			return err
		}
		task.Activities = []models.Activity{activity}

		_, err = s.notify.FanOut(tx, task, team)
		return err
	})
	if err != nil {
		logger.Warn().Err(err).Str("user_id", actor.ID.String()).Msg("create task failed")
		return nil, err
	}

	logger.Info().Str("task_id", task.ID.String()).Str("user_id", actor.ID.String()).Int("team", len(teamIDs)).Msg("task created")
	return task, nil
}

// resolveCreateTeam defaults the team to the creator, or for a group task to
// the whole group membership. Group tasks may only be created by group
// admins, and an explicit team must be drawn from the group's members.
func (s *TaskServiceImpl) resolveCreateTeam(ctx context.Context, actor *models.User, input CreateTaskInput) ([]uuid.UUID, error) {
	requested := uniqueIDs(input.Team, uuid.Nil)

	if input.GroupID == nil {
		if len(requested) == 0 {
			return []uuid.UUID{actor.ID}, nil
		}
		return requested, nil
	}

	groupID := *input.GroupID
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("Group not found")
	}

	isAdmin, err := s.authz.IsGroupAdmin(ctx, actor.ID, groupID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, response.NewForbidden("Only group admins can create group tasks")
	}

	var members []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.GroupMember{}).Where("group_id = ?", groupID).Pluck("user_id", &members).Error; err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return members, nil
	}

	memberSet := make(map[uuid.UUID]bool, len(members))
	for _, id := range members {
		memberSet[id] = true
	}
	for _, id := range requested {
		if !memberSet[id] {
			return nil, response.NewBadRequest("Team members must belong to the group")
		}
	}
	return requested, nil
}

// DuplicateTask copies a task with its team, subtasks and activities and
// notifies the team, all in one transaction.
func (s *TaskServiceImpl) DuplicateTask(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Task, error) {
	var duplicate *models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source models.Task
		err := tx.Preload("Team").Preload("SubTasks").Preload("Activities").Where("id = ?", id).First(&source).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("Task not found")
		}
		if err != nil {
			return err
		}

		duplicate = &models.Task{
			Title:    source.Title + " - Duplicate",
			Stage:    source.Stage,
			Priority: source.Priority,
			Date:     source.Date,
			Assets:   nonNilAssets(source.Assets),
			GroupID:  source.GroupID,
			Team:     source.Team,
		}
		for _, st := range source.SubTasks {
			duplicate.SubTasks = append(duplicate.SubTasks, models.SubTask{Title: st.Title, Date: st.Date, Tag: st.Tag})
		}
		if err := tx.Omit("Team.*").Create(duplicate).Error; err != nil {
			return err
		}

		if len(source.Activities) > 0 {
			activities := make([]models.Activity, 0, len(source.Activities))
			for _, a := range source.Activities {
				activities = append(activities, models.Activity{
					TaskID:   duplicate.ID,
					Type:     a.Type,
					Activity: a.Activity,
					Date:     a.Date,
					ByID:     a.ByID,
				})
			}
			if err := tx.Create(&activities).Error; err != nil {
				return err
			}
			duplicate.Activities = activities
		}

		_, err = s.notify.FanOut(tx, duplicate, source.Team)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("task_id", id.String()).Str("duplicate_id", duplicate.ID.String()).Str("user_id", actor.ID.String()).Msg("task duplicated")
	return duplicate, nil
}

func (s *TaskServiceImpl) PostActivity(ctx context.Context, actor *models.User, id uuid.UUID, activityType, note string) (*models.Activity, error) {
	kind, ok := models.ParseActivityType(activityType)
	if !ok {
		return nil, response.NewBadRequest("Invalid activity type.")
	}
	if err := s.requireTask(ctx, id); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		TaskID:   id,
		Type:     kind,
		Activity: note,
		Date:     s.now(),
		ByID:     actorRef(actor),
	}
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return nil, err
	}
	activity.By = actor
	return activity, nil
}

// GetTasks lists tasks on the caller's teams and in the caller's groups.
// An unknown stage is ignored rather than rejected.
func (s *TaskServiceImpl) GetTasks(ctx context.Context, actor *models.User, filter TaskFilter) ([]models.Task, error) {
	query := s.db.WithContext(ctx).
		Where("tasks.is_trashed = ?", filter.IsTrashed).
		Where(visibleTasksSQL, actor.ID, actor.ID)

	if stage, ok := models.ParseStage(filter.Stage); ok {
		query = query.Where("tasks.stage = ?", stage)
	}

	tasks := []models.Task{}
	err := query.
		Preload("Team").
		Preload("SubTasks").
		Preload("Group").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Preload("Team").
		Preload("SubTasks").
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("activities.date ASC") }).
		Preload("Activities.By").
		Preload("Group").
		Where("id = ?", id).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) requireTask(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return taskNotFound(id)
	}
	return nil
}

func (s *TaskServiceImpl) CreateSubTask(ctx context.Context, id uuid.UUID, input SubTaskInput) (*models.SubTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, response.NewBadRequest("Subtask title is required.")
	}
	if err := s.requireTask(ctx, id); err != nil {
		return nil, err
	}

	subTask := &models.SubTask{TaskID: id, Title: title, Date: input.Date, Tag: input.Tag}
	if err := s.db.WithContext(ctx).Create(subTask).Error; err != nil {
		return nil, err
	}
	return subTask, nil
}

func (s *TaskServiceImpl) GetSubTasks(ctx context.Context, id uuid.UUID) ([]models.SubTask, error) {
	if err := s.requireTask(ctx, id); err != nil {
		return nil, err
	}
	subTasks := []models.SubTask{}
	err := s.db.WithContext(ctx).Where("task_id = ?", id).Order("created_at ASC").Find(&subTasks).Error
	return subTasks, err
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, actor *models.User, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	changes := map[string]interface{}{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, response.NewBadRequest("Task title is required.")
		}
		changes["title"] = title
	}
	if strings.TrimSpace(input.Stage) != "" {
		stage, ok := models.ParseStage(input.Stage)
		if !ok {
			return nil, response.NewBadRequest("Invalid stage value: " + input.Stage)
		}
		changes["stage"] = stage
	}
	if strings.TrimSpace(input.Priority) != "" {
		priority, ok := models.ParsePriority(input.Priority)
		if !ok {
			return nil, response.NewBadRequest("Invalid priority value: " + input.Priority)
		}
		changes["priority"] = priority
	}
	if input.Date != nil {
		changes["date"] = *input.Date
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("id = ?", id).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("Task not found")
		}
		if err != nil {
			return err
		}

		if input.Assets != nil {
			task.Assets = nonNilAssets(*input.Assets)
			if err := tx.Model(&task).Select("assets").Updates(&task).Error; err != nil {
				return err
			}
		}
		if len(changes) > 0 {
			if err := tx.Model(&task).Updates(changes).Error; err != nil {
				return err
			}
		}
		if input.Team != nil {
			return replaceTeam(tx, &task, uniqueIDs(*input.Team, uuid.Nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("task_id", id.String()).Str("user_id", actor.ID.String()).Msg("task updated")
	return s.GetTask(ctx, id)
}

// replaceTeam drops every team link of task and links ids instead. For a
// group task every id must belong to the group.
func replaceTeam(tx *gorm.DB, task *models.Task, ids []uuid.UUID) error {
	users, err := loadUsers(tx, ids)
	if err != nil {
		return err
	}

	if task.GroupID != nil && len(ids) > 0 {
		var count int64
		err := tx.Model(&models.GroupMember{}).Where("group_id = ? AND user_id IN ?", *task.GroupID, ids).Count(&count).Error
		if err != nil {
			return err
		}
		if int(count) != len(ids) {
			return response.NewBadRequest("Team members must belong to the group")
		}
	}

	if err := tx.Exec("DELETE FROM task_team WHERE task_id = ?", task.ID).Error; err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	links := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		links = append(links, map[string]interface{}{"task_id": task.ID, "user_id": u.ID})
	}
	return tx.Table("task_team").Create(&links).Error
}

func (s *TaskServiceImpl) TrashTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&task).Update("is_trashed", true).Error; err != nil {
		return nil, err
	}
	task.IsTrashed = true
	return &task, nil
}

// DeleteRestoreTask applies action to one task or, for the bulk actions, to
// every trashed task the actor may write. It returns the number of tasks
// affected.
func (s *TaskServiceImpl) DeleteRestoreTask(ctx context.Context, actor *models.User, id uuid.UUID, action DeleteAction) (int64, error) {
	var affected int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch action {
		case TrashDelete, TrashRestore:
			if id == uuid.Nil {
				return response.NewBadRequest("Task ID is required for this action")
			}
			var count int64
			if err := tx.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return response.NewNotFound("Task not found")
			}
			if action == TrashRestore {
				result := tx.Model(&models.Task{}).Where("id = ?", id).Update("is_trashed", false)
				affected = result.RowsAffected
				return result.Error
			}
			affected = 1
			return deleteTasks(tx, []uuid.UUID{id})

		case TrashDeleteAll, TrashRestoreAll:
			ids, err := trashedWritable(tx, actor)
			if err != nil {
				return err
			}
			affected = int64(len(ids))
			if len(ids) == 0 {
				return nil
			}
			if action == TrashRestoreAll {
				return tx.Model(&models.Task{}).Where("id IN ?", ids).Update("is_trashed", false).Error
			}
			return deleteTasks(tx, ids)
		}
		return response.NewBadRequest("Invalid action type")
	})
	if err != nil {
		return 0, err
	}

	logger.Info().Str("user_id", actor.ID.String()).Str("action", string(action)).Int64("affected", affected).Msg("delete/restore performed")
	return affected, nil
}

func trashedWritable(tx *gorm.DB, actor *models.User) ([]uuid.UUID, error) {
	query := tx.Model(&models.Task{}).Where("tasks.is_trashed = ?", true)
	if !actor.IsGlobalAdmin() {
		query = query.Where(writableTasksSQL, actor.ID, actor.ID, models.GroupRoleAdmin)
	}
	var ids []uuid.UUID
	err := query.Pluck("tasks.id", &ids).Error
	return ids, err
}

// deleteTasks removes tasks together with every row that references them.
func deleteTasks(tx *gorm.DB, ids []uuid.UUID) error {
	var noticeIDs []uuid.UUID
	if err := tx.Model(&models.Notice{}).Where("task_id IN ?", ids).Pluck("id", &noticeIDs).Error; err != nil {
		return err
	}
	if len(noticeIDs) > 0 {
		if err := tx.Where("notice_id IN ?", noticeIDs).Delete(&models.NoticeRecipient{}).Error; err != nil {
			return err
		}
	}

	for _, model := range []interface{}{&models.Notice{}, &models.Activity{}, &models.SubTask{}} {
		if err := tx.Where("task_id IN ?", ids).Delete(model).Error; err != nil {
			return err
		}
	}
	if err := tx.Exec("DELETE FROM task_team WHERE task_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error
}

// DashboardStatistics summarises untrashed tasks. Admins see every task,
// everyone else sees their team and group tasks.
func (s *TaskServiceImpl) DashboardStatistics(ctx context.Context, actor *models.User) (*DashboardSummary, error) {
	query := s.db.WithContext(ctx).Where("tasks.is_trashed = ?", false)
	if !actor.IsGlobalAdmin() {
		query = query.Where(visibleTasksSQL, actor.ID, actor.ID)
	}

	var tasks []models.Task
	err := query.
		Preload("Team").
		Preload("SubTasks").
		Preload("Group").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		TotalTasks: len(tasks),
		Last10Task: []DashboardTask{},
		Users:      []UserSummary{},
		Tasks:      map[models.Stage]int{},
		GraphData:  []PriorityCount{},
	}

	byPriority := map[models.Priority]int{}
	for i, t := range tasks {
		summary.Tasks[t.Stage]++
		byPriority[t.Priority]++
		if i < dashboardRecent {
			summary.Last10Task = append(summary.Last10Task, dashboardTask(t))
		}
	}
	for _, p := range models.Priorities {
		if n := byPriority[p]; n > 0 {
			summary.GraphData = append(summary.GraphData, PriorityCount{Name: p, Total: n})
		}
	}

	if actor.IsGlobalAdmin() {
		err := s.db.WithContext(ctx).
			Model(&models.User{}).
			Select("id, name, username, email, title, role, is_active").
			Where("is_active = ?", true).
			Order("created_at DESC").
			Limit(dashboardRecent).
			Scan(&summary.Users).Error
		if err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// dashboardTask shows the group name as the team of a group task.
func dashboardTask(t models.Task) DashboardTask {
	view := DashboardTask{
		ID:        t.ID,
		Title:     t.Title,
		Stage:     t.Stage,
		Priority:  t.Priority,
		Date:      t.Date,
		GroupID:   t.GroupID,
		SubTasks:  len(t.SubTasks),
		CreatedAt: t.CreatedAt,
	}
	if t.Group != nil {
		view.Team = []TeamEntry{{ID: t.Group.ID, Name: t.Group.Name}}
		return view
	}
	view.Team = make([]TeamEntry, 0, len(t.Team))
	for _, u := range t.Team {
		view.Team = append(view.Team, TeamEntry{ID: u.ID, Name: u.Name, Title: u.Title, Role: u.Role, Email: u.Email})
	}
	return view
}

func (s *TaskServiceImpl) titleQuery(ctx context.Context, actor *models.User, query string) *gorm.DB {
	db := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("LOWER(tasks.title) LIKE ? ESCAPE '!'", likePattern(query))
	if !actor.IsGlobalAdmin() {
		db = db.Where(visibleTasksSQL, actor.ID, actor.ID)
	}
	return db
}

// SearchTasks matches titles case-insensitively, trashed tasks included.
func (s *TaskServiceImpl) SearchTasks(ctx context.Context, actor *models.User, query string) ([]TaskHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, response.NewBadRequest("Search query is required.")
	}

	hits := []TaskHit{}
	err := s.titleQuery(ctx, actor, query).
		Select("tasks.id, tasks.title").
		Order("tasks.created_at DESC").
		Limit(searchLimit).
		Scan(&hits).Error
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, response.NewNotFound("No tasks found matching the query.")
	}
	return hits, nil
}

func (s *TaskServiceImpl) GetSuggestions(ctx context.Context, actor *models.User, query string) ([]TaskSuggestion, error) {
	if strings.TrimSpace(query) == "" {
		return nil, response.NewBadRequest("Query is required")
	}

	suggestions := []TaskSuggestion{}
	err := s.titleQuery(ctx, actor, query).
		Select("tasks.id, tasks.title, tasks.priority, tasks.stage").
		Order("tasks.created_at DESC").
		Limit(suggestionsLimit).
		Scan(&suggestions).Error
	return suggestions, err
}

func nonNilAssets(assets []string) []string {
	if assets == nil {
		return []string{}
	}
	return assets
}
