package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/cache"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/logger"
)

const dashboardPattern = "dashboard:*"

// CachedTaskService caches dashboard statistics per user. Reads other than
// the dashboard go straight to the wrapped service; every mutation drops
// all cached dashboards.
type CachedTaskService struct {
	TaskService
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedTaskService(taskService TaskService, c cache.Cache, ttl time.Duration) *CachedTaskService {
	return &CachedTaskService{TaskService: taskService, cache: c, ttl: ttl}
}

func dashboardKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:%s", userID.String())
}

func (s *CachedTaskService) DashboardStatistics(ctx context.Context, actor *models.User) (*DashboardSummary, error) {
	key := dashboardKey(actor.ID)

	var cached DashboardSummary
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
	}

	summary, err := s.TaskService.DashboardStatistics(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
	return summary, nil
}

// InvalidateDashboards drops every cached dashboard.
func (s *CachedTaskService) InvalidateDashboards(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, dashboardPattern); err != nil {
		logger.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}

func (s *CachedTaskService) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	task, err := s.TaskService.CreateTask(ctx, actor, input)
	if err == nil {
		s.InvalidateDashboards(ctx)
	}
	return task, err
}

func (s *CachedTaskService) DuplicateTask(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Task, error) {
	task, err := s.TaskService.DuplicateTask(ctx, actor, id)
	if err == nil {
		s.InvalidateDashboards(ctx)
	}
	return task, err
}

func (s *CachedTaskService) CreateSubTask(ctx context.Context, id uuid.UUID, input SubTaskInput) (*models.SubTask, error) {
	subTask, err := s.TaskService.CreateSubTask(ctx, id, input)
	if err == nil {
		s.InvalidateDashboards(ctx)
	}
	return subTask, err
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, actor *models.User, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.TaskService.UpdateTask(ctx, actor, id, input)
	if err == nil {
		s.InvalidateDashboards(ctx)
	}
	return task, err
}

func (s *CachedTaskService) TrashTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.TaskService.TrashTask(ctx, id)
	if err == nil {
		s.InvalidateDashboards(ctx)
	}
	return task, err
}

func (s *CachedTaskService) DeleteRestoreTask(ctx context.Context, actor *models.User, id uuid.UUID, action DeleteAction) (int64, error) {
	n, err := s.TaskService.DeleteRestoreTask(ctx, actor, id, action)
	if err == nil {
		s.InvalidateDashboards(ctx)
	}
	return n, err
}
