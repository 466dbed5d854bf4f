package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/response"
)

// RequireAccess asks the authorization service whether the current user may
// perform action on the resource named by the path parameter param. Anything
// short of an explicit allow stops the request.
func RequireAccess(authz services.AuthorizationService, resource services.Resource, action services.Action, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Abort(c, response.NewUnauthorized("Not authorized. Try login again."))
			return
		}

		resourceID, err := uuid.FromString(c.Param(param))
		if err != nil || resourceID == uuid.Nil {
			response.Abort(c, response.NewBadRequest("Invalid "+string(resource)+" id"))
			return
		}

		decision, err := authz.IsAuthorized(c.Request.Context(), services.AuthorizationRequest{
			User:       user,
			Resource:   resource,
			Action:     action,
			ResourceID: resourceID,
			IPAddress:  c.ClientIP(),
		})
		if err != nil {
			response.Abort(c, response.NewServerError("authorization check failed", err))
			return
		}

		switch decision.Decision {
		case services.DecisionAllowed:
			c.Set("auth_decision", decision)
			c.Next()
		case services.DecisionNotFound:
			response.Abort(c, response.NewNotFound(decision.Reason))
		default:
			response.Abort(c, response.NewForbidden(decision.Reason))
		}
	}
}
