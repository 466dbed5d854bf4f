package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jastrate/task-manager/internal/config"
	"github.com/jastrate/task-manager/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-test-secret-test-secret"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       testSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		VerifyTokenTTL:  time.Hour,
		ResetTokenTTL:   time.Hour,
		BCryptCost:      bcrypt.MinCost,
		FrontendURL:     "http://localhost:3000",
	}
}

// captureMail records every dispatched message.
type captureMail struct {
	mu   sync.Mutex
	sent []MailMessage
}

func (c *captureMail) Dispatch(ctx context.Context, msg MailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureMail) last(t *testing.T) MailMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent, "no mail dispatched")
	return c.sent[len(c.sent)-1]
}

// tokenFrom extracts the value following "token=" in a mail body.
func tokenFrom(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "token=")
	require.GreaterOrEqual(t, i, 0, "mail has no token: %q", body)
	return strings.Fields(body[i+len("token="):])[0]
}

func assertKind(t *testing.T, err error, kind response.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, response.KindOf(err), "error: %v", err)
}
