package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/internal/testutil"
	"github.com/jastrate/task-manager/pkg/response"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskServiceImpl
	ctx     context.Context

	admin *models.User
	alice *models.User
	bob   *models.User
	carol *models.User
}

func (s *TaskServiceTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.service = NewTaskService(s.db, NewAuthorizationService(s.db), NewNotificationService(s.db))
	s.ctx = context.Background()

	s.admin = testutil.CreateUser(s.T(), s.db, "admin", models.RoleAdmin)
	s.alice = testutil.CreateUser(s.T(), s.db, "alice", "")
	s.bob = testutil.CreateUser(s.T(), s.db, "bob", "")
	s.carol = testutil.CreateUser(s.T(), s.db, "carol", "")
}

func (s *TaskServiceTestSuite) count(model interface{}, query string, args ...interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func (s *TaskServiceTestSuite) teamOf(taskID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	s.Require().NoError(s.db.Table("task_team").Where("task_id = ?", taskID).Pluck("user_id", &ids).Error)
	return ids
}

func (s *TaskServiceTestSuite) TestCreateTask_Defaults() {
	task, err := s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{
		Title:    "Write brief",
		Team:     []uuid.UUID{},
		Priority: "high",
		Stage:    "in-progress",
	})
	s.Require().NoError(err)

	s.Equal(models.StageInProgress, task.Stage)
	s.Equal(models.PriorityHigh, task.Priority)
	s.Equal([]uuid.UUID{s.alice.ID}, s.teamOf(task.ID))
	s.WithinDuration(time.Now(), task.Date, 5*time.Second)

	var activities []models.Activity
	s.Require().NoError(s.db.Where("task_id = ?", task.ID).Find(&activities).Error)
	s.Require().Len(activities, 1)
	s.Equal(models.ActivityAssigned, activities[0].Type)
	s.Equal("New task assigned: Write brief", activities[0].Activity)
	s.Require().NotNil(activities[0].ByID)
	s.Equal(s.alice.ID, *activities[0].ByID)

	s.Equal(int64(1), s.count(&models.Notice{}, "task_id = ?", task.ID))
	s.Equal(int64(1), s.count(&models.NoticeRecipient{}, "user_id = ? AND is_read = ?", s.alice.ID, false))
}

func (s *TaskServiceTestSuite) TestCreateTask_ExplicitTeamAndDefaults() {
	task, err := s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{
		Title: "Pair work",
		Team:  []uuid.UUID{s.bob.ID, s.carol.ID, s.bob.ID},
	})
	s.Require().NoError(err)
	s.Equal(models.StageTodo, task.Stage)
	s.Equal(models.PriorityNormal, task.Priority)
	s.ElementsMatch([]uuid.UUID{s.bob.ID, s.carol.ID}, s.teamOf(task.ID))

	var notice models.Notice
	s.Require().NoError(s.db.Where("task_id = ?", task.ID).First(&notice).Error)
	s.Contains(notice.Text, "assigned to you and 1 others")
}

func (s *TaskServiceTestSuite) TestCreateTask_Rejections() {
	_, err := s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "  "})
	assertKind(s.T(), err, response.KindInvalidInput)

	_, err = s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "x", Stage: "done"})
	assertKind(s.T(), err, response.KindInvalidInput)

	_, err = s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "x", Priority: "urgent"})
	assertKind(s.T(), err, response.KindInvalidInput)

	_, err = s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "x", Team: []uuid.UUID{uuid.Must(uuid.NewV4())}})
	assertKind(s.T(), err, response.KindInvalidInput)

	guest := &models.User{ID: s.alice.ID, Role: "Guest"}
	_, err = s.service.CreateTask(s.ctx, guest, CreateTaskInput{Title: "x"})
	assertKind(s.T(), err, response.KindForbidden)

	s.Equal(int64(0), s.count(&models.Task{}, "1 = 1"))
	s.Equal(int64(0), s.count(&models.Notice{}, "1 = 1"))
}

func (s *TaskServiceTestSuite) TestCreateTask_Group() {
	group := testutil.CreateGroup(s.T(), s.db, "Platform", s.alice, s.bob)

	task, err := s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "Group work", GroupID: &group.ID})
	s.Require().NoError(err)
	s.Equal(&group.ID, task.GroupID)
	s.ElementsMatch([]uuid.UUID{s.alice.ID, s.bob.ID}, s.teamOf(task.ID))

	task, err = s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "Only bob", GroupID: &group.ID, Team: []uuid.UUID{s.bob.ID}})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{s.bob.ID}, s.teamOf(task.ID))

	_, err = s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "Outsider", GroupID: &group.ID, Team: []uuid.UUID{s.carol.ID}})
	assertKind(s.T(), err, response.KindInvalidInput)

	_, err = s.service.CreateTask(s.ctx, s.bob, CreateTaskInput{Title: "Not admin", GroupID: &group.ID})
	assertKind(s.T(), err, response.KindForbidden)

	missing := uuid.Must(uuid.NewV4())
	_, err = s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "No group", GroupID: &missing})
	assertKind(s.T(), err, response.KindNotFound)
}

// brokenNotifier writes the notice and then fails, so callers must roll back
// everything including the notice rows.
type brokenNotifier struct {
	NotificationService
}

func (n brokenNotifier) FanOut(tx *gorm.DB, task *models.Task, team []models.User) (*models.Notice, error) {
	if _, err := n.NotificationService.FanOut(tx, task, team); err != nil {
		return nil, err
	}
	return nil, errors.New("notification store unavailable")
}

func (s *TaskServiceTestSuite) TestCreateTask_RollsBackOnFanOutFailure() {
	svc := NewTaskService(s.db, NewAuthorizationService(s.db), brokenNotifier{NewNotificationService(s.db)})

	_, err := svc.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "Doomed", Team: []uuid.UUID{s.alice.ID, s.bob.ID}})
	s.Require().Error(err)

	s.Zero(s.count(&models.Task{}, "1 = 1"))
	s.Zero(s.count(&models.Activity{}, "1 = 1"))
	s.Zero(s.count(&models.Notice{}, "1 = 1"))
	s.Zero(s.count(&models.NoticeRecipient{}, "1 = 1"))

	var joins int64
	s.Require().NoError(s.db.Table("task_team").Count(&joins).Error)
	s.Zero(joins)
}

func (s *TaskServiceTestSuite) TestDuplicateTask_RollsBackOnFanOutFailure() {
	source, err := s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "Original", Team: []uuid.UUID{s.alice.ID, s.bob.ID}})
	s.Require().NoError(err)
	_, err = s.service.CreateSubTask(s.ctx, source.ID, SubTaskInput{Title: "step"})
	s.Require().NoError(err)

	svc := NewTaskService(s.db, NewAuthorizationService(s.db), brokenNotifier{NewNotificationService(s.db)})
	_, err = svc.DuplicateTask(s.ctx, s.alice, source.ID)
	s.Require().Error(err)

	s.Equal(int64(1), s.count(&models.Task{}, "1 = 1"))
	s.Equal(int64(1), s.count(&models.SubTask{}, "1 = 1"))
	s.Equal(int64(1), s.count(&models.Activity{}, "1 = 1"))
	s.Equal(int64(1), s.count(&models.Notice{}, "1 = 1"))
	s.Equal(int64(2), s.count(&models.NoticeRecipient{}, "1 = 1"))
	s.Len(s.teamOf(source.ID), 2)
}

func (s *TaskServiceTestSuite) TestDuplicateTask() {
	source := testutil.CreateTask(s.T(), s.db, "Release", nil, s.alice, s.bob, s.carol)
	source.Priority = models.PriorityHigh
	s.Require().NoError(s.db.Model(source).Update("priority", models.PriorityHigh).Error)
	for i := 0; i < 2; i++ {
		s.Require().NoError(s.db.Create(&models.SubTask{TaskID: source.ID, Title: fmt.Sprintf("step %d", i), Tag: "ops"}).Error)
	}
	for _, kind := range []models.ActivityType{models.ActivityAssigned, models.ActivityStarted, models.ActivityBug} {
		s.Require().NoError(s.db.Create(&models.Activity{TaskID: source.ID, Type: kind, Date: time.Now(), ByID: &s.alice.ID}).Error)
	}

	dup, err := s.service.DuplicateTask(s.ctx, s.alice, source.ID)
	s.Require().NoError(err)

	s.Equal("Release - Duplicate", dup.Title)
	s.Equal(models.PriorityHigh, dup.Priority)
	s.ElementsMatch(s.teamOf(source.ID), s.teamOf(dup.ID))
	s.Equal(int64(2), s.count(&models.SubTask{}, "task_id = ?", dup.ID))
	s.Equal(int64(3), s.count(&models.Activity{}, "task_id = ?", dup.ID))
	s.Equal(int64(2), s.count(&models.SubTask{}, "task_id = ?", source.ID))

	var notices []models.Notice
	s.Require().NoError(s.db.Where("task_id = ?", dup.ID).Find(&notices).Error)
	s.Require().Len(notices, 1)
	s.Contains(notices[0].Text, "and 2 others")
	s.Contains(notices[0].Text, "HIGH priority")
	s.Equal(int64(3), s.count(&models.NoticeRecipient{}, "notice_id = ? AND is_read = ?", notices[0].ID, false))

	_, err = s.service.DuplicateTask(s.ctx, s.alice, uuid.Must(uuid.NewV4()))
	assertKind(s.T(), err, response.KindNotFound)
}

func (s *TaskServiceTestSuite) TestPostActivity() {
	task := testutil.CreateTask(s.T(), s.db, "Fix bug", nil, s.alice)

	activity, err := s.service.PostActivity(s.ctx, s.alice, task.ID, "in_progress", "picked up")
	s.Require().NoError(err)
	s.Equal(models.ActivityInProgress, activity.Type)
	s.Equal("picked up", activity.Activity)

	_, err = s.service.PostActivity(s.ctx, s.alice, task.ID, "Reviewed", "")
	assertKind(s.T(), err, response.KindInvalidInput)

	_, err = s.service.PostActivity(s.ctx, s.alice, uuid.Must(uuid.NewV4()), "Bug", "")
	assertKind(s.T(), err, response.KindNotFound)
}

func (s *TaskServiceTestSuite) TestGetTasks_VisibilityAndFilters() {
	group := testutil.CreateGroup(s.T(), s.db, "Platform", s.bob, s.alice)
	mine := testutil.CreateTask(s.T(), s.db, "Mine", nil, s.alice)
	groupTask := testutil.CreateTask(s.T(), s.db, "Group", &group.ID, s.bob)
	testutil.CreateTask(s.T(), s.db, "Carol's", nil, s.carol)
	trashed := testutil.CreateTask(s.T(), s.db, "Trashed", nil, s.alice)
	s.Require().NoError(s.db.Model(trashed).Update("is_trashed", true).Error)
	s.Require().NoError(s.db.Model(mine).Update("stage", models.StageCompleted).Error)

	tasks, err := s.service.GetTasks(s.ctx, s.alice, TaskFilter{})
	s.Require().NoError(err)
	titles := []string{}
	for _, t := range tasks {
		titles = append(titles, t.Title)
	}
	s.ElementsMatch([]string{"Mine", "Group"}, titles)

	tasks, err = s.service.GetTasks(s.ctx, s.alice, TaskFilter{IsTrashed: true})
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(trashed.ID, tasks[0].ID)

	tasks, err = s.service.GetTasks(s.ctx, s.alice, TaskFilter{Stage: "completed"})
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(mine.ID, tasks[0].ID)

	tasks, err = s.service.GetTasks(s.ctx, s.alice, TaskFilter{Stage: "bogus"})
	s.Require().NoError(err)
	s.Len(tasks, 2)
	s.NotNil(groupTask)
}

func (s *TaskServiceTestSuite) TestGetTask() {
	task := testutil.CreateTask(s.T(), s.db, "Detail", nil, s.alice)
	_, err := s.service.PostActivity(s.ctx, s.alice, task.ID, "Commented", "looks good")
	s.Require().NoError(err)

	got, err := s.service.GetTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Len(got.Team, 1)
	s.Require().Len(got.Activities, 1)
	s.Require().NotNil(got.Activities[0].By)
	s.Equal("alice", got.Activities[0].By.Name)

	_, err = s.service.GetTask(s.ctx, uuid.Must(uuid.NewV4()))
	assertKind(s.T(), err, response.KindNotFound)
}

func (s *TaskServiceTestSuite) TestSubTasks() {
	task := testutil.CreateTask(s.T(), s.db, "Parent", nil, s.alice)

	_, err := s.service.CreateSubTask(s.ctx, task.ID, SubTaskInput{Title: ""})
	assertKind(s.T(), err, response.KindInvalidInput)
	_, err = s.service.CreateSubTask(s.ctx, uuid.Must(uuid.NewV4()), SubTaskInput{Title: "orphan"})
	assertKind(s.T(), err, response.KindNotFound)

	sub, err := s.service.CreateSubTask(s.ctx, task.ID, SubTaskInput{Title: "child", Tag: "docs"})
	s.Require().NoError(err)
	s.Equal(task.ID, sub.TaskID)

	subs, err := s.service.GetSubTasks(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(subs, 1)
	s.Equal("docs", subs[0].Tag)

	_, err = s.service.GetSubTasks(s.ctx, uuid.Must(uuid.NewV4()))
	assertKind(s.T(), err, response.KindNotFound)
}

func (s *TaskServiceTestSuite) TestUpdateTask() {
	task := testutil.CreateTask(s.T(), s.db, "Old", nil, s.alice, s.bob)

	title := "New"
	team := []uuid.UUID{s.carol.ID}
	assets := []string{"https://cdn.example.com/a.png"}
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := s.service.UpdateTask(s.ctx, s.alice, task.ID, UpdateTaskInput{
		Title:    &title,
		Team:     &team,
		Stage:    "IN-PROGRESS",
		Priority: "low",
		Date:     &date,
		Assets:   &assets,
	})
	s.Require().NoError(err)
	s.Equal("New", got.Title)
	s.Equal(models.StageInProgress, got.Stage)
	s.Equal(models.PriorityLow, got.Priority)
	s.Equal(assets, got.Assets)
	s.True(date.Equal(got.Date))
	s.Equal([]uuid.UUID{s.carol.ID}, s.teamOf(task.ID))

	got, err = s.service.UpdateTask(s.ctx, s.alice, task.ID, UpdateTaskInput{})
	s.Require().NoError(err)
	s.Equal("New", got.Title)
	s.Equal([]uuid.UUID{s.carol.ID}, s.teamOf(task.ID))

	_, err = s.service.UpdateTask(s.ctx, s.alice, task.ID, UpdateTaskInput{Stage: "archived"})
	assertKind(s.T(), err, response.KindInvalidInput)

	bad := []uuid.UUID{uuid.Must(uuid.NewV4())}
	_, err = s.service.UpdateTask(s.ctx, s.alice, task.ID, UpdateTaskInput{Team: &bad})
	assertKind(s.T(), err, response.KindInvalidInput)
	s.Equal([]uuid.UUID{s.carol.ID}, s.teamOf(task.ID))

	_, err = s.service.UpdateTask(s.ctx, s.alice, uuid.Must(uuid.NewV4()), UpdateTaskInput{})
	assertKind(s.T(), err, response.KindNotFound)
}

func (s *TaskServiceTestSuite) TestUpdateTask_GroupTeamMustBeMembers() {
	group := testutil.CreateGroup(s.T(), s.db, "Platform", s.alice, s.bob)
	task := testutil.CreateTask(s.T(), s.db, "Group", &group.ID, s.alice)

	team := []uuid.UUID{s.carol.ID}
	_, err := s.service.UpdateTask(s.ctx, s.alice, task.ID, UpdateTaskInput{Team: &team})
	assertKind(s.T(), err, response.KindInvalidInput)

	team = []uuid.UUID{s.bob.ID}
	_, err = s.service.UpdateTask(s.ctx, s.alice, task.ID, UpdateTaskInput{Team: &team})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{s.bob.ID}, s.teamOf(task.ID))
}

func (s *TaskServiceTestSuite) TestTrashRestoreDelete() {
	task, err := s.service.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "Disposable", Team: []uuid.UUID{s.alice.ID, s.bob.ID}})
	s.Require().NoError(err)
	_, err = s.service.CreateSubTask(s.ctx, task.ID, SubTaskInput{Title: "child"})
	s.Require().NoError(err)

	trashed, err := s.service.TrashTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.True(trashed.IsTrashed)

	_, err = s.service.TrashTask(s.ctx, uuid.Must(uuid.NewV4()))
	assertKind(s.T(), err, response.KindNotFound)

	n, err := s.service.DeleteRestoreTask(s.ctx, s.alice, task.ID, TrashRestore)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Equal(int64(0), s.count(&models.Task{}, "is_trashed = ?", true))

	_, err = s.service.DeleteRestoreTask(s.ctx, s.alice, task.ID, TrashDelete)
	s.Require().NoError(err)

	s.Equal(int64(0), s.count(&models.Task{}, "id = ?", task.ID))
	s.Equal(int64(0), s.count(&models.Activity{}, "task_id = ?", task.ID))
	s.Equal(int64(0), s.count(&models.SubTask{}, "task_id = ?", task.ID))
	s.Equal(int64(0), s.count(&models.Notice{}, "task_id = ?", task.ID))
	s.Equal(int64(0), s.count(&models.NoticeRecipient{}, "1 = 1"))
	s.Empty(s.teamOf(task.ID))

	_, err = s.service.DeleteRestoreTask(s.ctx, s.alice, task.ID, TrashDelete)
	assertKind(s.T(), err, response.KindNotFound)
	_, err = s.service.DeleteRestoreTask(s.ctx, s.alice, uuid.Nil, TrashRestore)
	assertKind(s.T(), err, response.KindInvalidInput)
	_, err = s.service.DeleteRestoreTask(s.ctx, s.alice, uuid.Nil, DeleteAction("purge"))
	assertKind(s.T(), err, response.KindInvalidInput)
}

func (s *TaskServiceTestSuite) TestBulkActionsStayInScope() {
	group := testutil.CreateGroup(s.T(), s.db, "Platform", s.alice, s.bob)
	own := testutil.CreateTask(s.T(), s.db, "Own", nil, s.alice)
	administered := testutil.CreateTask(s.T(), s.db, "Administered", &group.ID, s.bob)
	foreign := testutil.CreateTask(s.T(), s.db, "Foreign", nil, s.carol)
	live := testutil.CreateTask(s.T(), s.db, "Live", nil, s.alice)
	for _, t := range []*models.Task{own, administered, foreign} {
		s.Require().NoError(s.db.Model(t).Update("is_trashed", true).Error)
	}

	n, err := s.service.DeleteRestoreTask(s.ctx, s.bob, uuid.Nil, TrashRestoreAll)
	s.Require().NoError(err)
	s.Equal(int64(0), n)

	n, err = s.service.DeleteRestoreTask(s.ctx, s.alice, uuid.Nil, TrashDeleteAll)
	s.Require().NoError(err)
	s.Equal(int64(2), n)
	s.Equal(int64(0), s.count(&models.Task{}, "id IN ?", []uuid.UUID{own.ID, administered.ID}))
	s.Equal(int64(1), s.count(&models.Task{}, "id = ?", foreign.ID))
	s.Equal(int64(1), s.count(&models.Task{}, "id = ?", live.ID))

	n, err = s.service.DeleteRestoreTask(s.ctx, s.admin, uuid.Nil, TrashRestoreAll)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Equal(int64(0), s.count(&models.Task{}, "is_trashed = ?", true))
}

func (s *TaskServiceTestSuite) TestDashboardStatistics() {
	group := testutil.CreateGroup(s.T(), s.db, "Platform", s.bob, s.alice)
	testutil.CreateTask(s.T(), s.db, "One", nil, s.alice)
	high := testutil.CreateTask(s.T(), s.db, "Two", nil, s.alice)
	s.Require().NoError(s.db.Model(high).Updates(map[string]interface{}{"priority": models.PriorityHigh, "stage": models.StageCompleted}).Error)
	testutil.CreateTask(s.T(), s.db, "Group", &group.ID, s.bob)
	testutil.CreateTask(s.T(), s.db, "Hidden", nil, s.carol)
	trashed := testutil.CreateTask(s.T(), s.db, "Trashed", nil, s.alice)
	s.Require().NoError(s.db.Model(trashed).Update("is_trashed", true).Error)

	summary, err := s.service.DashboardStatistics(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(3, summary.TotalTasks)
	s.Len(summary.Last10Task, 3)
	s.Empty(summary.Users)
	s.Equal(map[models.Stage]int{models.StageTodo: 2, models.StageCompleted: 1}, summary.Tasks)
	s.Equal([]PriorityCount{{Name: models.PriorityHigh, Total: 1}, {Name: models.PriorityNormal, Total: 2}}, summary.GraphData)

	for _, t := range summary.Last10Task {
		if t.Title == "Group" {
			s.Require().Len(t.Team, 1)
			s.Equal("Platform", t.Team[0].Name)
		}
	}

	summary, err = s.service.DashboardStatistics(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(4, summary.TotalTasks)
	s.Len(summary.Users, 4)
}

func (s *TaskServiceTestSuite) TestSearchAndSuggestions() {
	for i := 0; i < 12; i++ {
		testutil.CreateTask(s.T(), s.db, fmt.Sprintf("Deploy service %d", i), nil, s.alice)
	}
	testutil.CreateTask(s.T(), s.db, "Deploy secret", nil, s.carol)
	testutil.CreateTask(s.T(), s.db, "100% done", nil, s.alice)

	hits, err := s.service.SearchTasks(s.ctx, s.alice, "DEPLOY")
	s.Require().NoError(err)
	s.Len(hits, 5)

	hits, err = s.service.SearchTasks(s.ctx, s.alice, "secret")
	assertKind(s.T(), err, response.KindNotFound)
	s.Nil(hits)

	hits, err = s.service.SearchTasks(s.ctx, s.admin, "secret")
	s.Require().NoError(err)
	s.Len(hits, 1)

	hits, err = s.service.SearchTasks(s.ctx, s.alice, "0%")
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal("100% done", hits[0].Title)

	_, err = s.service.SearchTasks(s.ctx, s.alice, " ")
	assertKind(s.T(), err, response.KindInvalidInput)

	suggestions, err := s.service.GetSuggestions(s.ctx, s.alice, "deploy")
	s.Require().NoError(err)
	s.Len(suggestions, 10)
	s.Equal(models.StageTodo, suggestions[0].Stage)

	suggestions, err = s.service.GetSuggestions(s.ctx, s.alice, "nothing")
	s.Require().NoError(err)
	s.Empty(suggestions)

	_, err = s.service.GetSuggestions(s.ctx, s.alice, "")
	assertKind(s.T(), err, response.KindInvalidInput)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
