package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/middleware"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/response"
)

// bindJSON binds the request body into req and writes a 400 envelope when it
// does not validate.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, response.NewBadRequest(bindingMessage(err)))
		return false
	}
	return true
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "email":
			return "Invalid email address"
		case "min":
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	return "Invalid request data"
}

// pathID parses the named path parameter as a uuid.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(name))
	if err != nil {
		response.Error(c, response.NewBadRequest("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user, writing a 401 when there is
// none.
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, response.NewUnauthorized("Not authorized. Try login again."))
		return nil, false
	}
	return user, true
}

// flexibleID accepts either a bare id string or an object carrying an id,
// which is how clients send team members.
type flexibleID uuid.UUID

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, "{") {
		var obj struct {
			ID  string `json:"id"`
			OID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.ID == "" {
			obj.ID = obj.OID
		}
		raw = obj.ID
	} else {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	if raw == "" {
		*f = flexibleID(uuid.Nil)
		return nil
	}
	id, err := uuid.FromString(raw)
	if err != nil {
		return fmt.Errorf("invalid id %q", raw)
	}
	*f = flexibleID(id)
	return nil
}

func toUUIDs(ids []flexibleID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if uuid.UUID(id) == uuid.Nil {
			continue
		}
		out = append(out, uuid.UUID(id))
	}
	return out
}

// parseDate accepts RFC 3339 timestamps and plain yyyy-mm-dd dates.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, response.NewBadRequest("Invalid date value")
}
