package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/middleware"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRequireAccess(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner", "")
	outsider := testutil.CreateUser(t, db, "outsider", "")
	task := testutil.CreateTask(t, db, "Write docs", nil, owner)

	authz := services.NewAuthorizationService(db)

	newRouter := func(user *models.User) *gin.Engine {
		router := gin.New()
		router.GET("/tasks/:id",
			func(c *gin.Context) {
				if user != nil {
					middleware.SetCurrentUser(c, user)
				}
				c.Next()
			},
			middleware.RequireAccess(authz, services.ResourceTask, services.ActionWrite, "id"),
			func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": true}) },
		)
		return router
	}

	tests := []struct {
		name string
		user *models.User
		id   string
		want int
	}{
		{"team member may write", owner, task.ID.String(), http.StatusOK},
		{"outsider is forbidden", outsider, task.ID.String(), http.StatusForbidden},
		{"missing task", owner, uuid.Must(uuid.NewV4()).String(), http.StatusNotFound},
		{"malformed id", owner, "not-a-uuid", http.StatusBadRequest},
		{"no user", nil, task.ID.String(), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.user).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+tt.id, nil))
			assert.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				assert.Equal(t, false, decode(t, w)["status"])
			}
		})
	}
}
