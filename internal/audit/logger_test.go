package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

type captureStore struct {
	events []*models.AuthEvent
	err    error
}

func (s *captureStore) AppendAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *captureStore) ListAuthEventsByUsername(ctx context.Context, username string, limit, offset int) ([]*models.AuthEvent, error) {
	return s.events, nil
}

func TestLogger_Record(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger("test-secret", store)

	err := logger.Record(context.Background(), Entry{
		UsernameAttempted: "alice",
		EventType:         models.EventLoginFailed,
		IPAddress:         "203.0.113.9",
		UserAgent:         "test-agent",
		Success:           false,
		FailureReason:     "Invalid credentials",
		Details:           map[string]interface{}{"failed_attempts": 2},
	})
	require.NoError(t, err)
	require.Len(t, store.events, 1)

	event := store.events[0]
	assert.NotEmpty(t, event.ID)
	assert.NotEmpty(t, event.Signature)
	assert.Equal(t, "alice", event.UsernameAttempted)
	assert.WithinDuration(t, time.Now().UTC(), event.CreatedAt, 5*time.Second)
	assert.True(t, logger.Verify(event))
}

func TestLogger_VerifyDetectsTampering(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger("test-secret", store)

	require.NoError(t, logger.Record(context.Background(), Entry{
		UsernameAttempted: "alice",
		EventType:         models.EventLoginSuccess,
		Success:           true,
	}))

	event := store.events[0]
	event.UsernameAttempted = "mallory"
	assert.False(t, logger.Verify(event))
}

func TestLogger_VerifyRejectsWrongKey(t *testing.T) {
	store := &captureStore{}
	logger := NewLogger("test-secret", store)

	require.NoError(t, logger.Record(context.Background(), Entry{
		UsernameAttempted: "alice",
		EventType:         models.EventLogout,
		Success:           true,
	}))

	other := NewLogger("different-secret", store)
	assert.False(t, other.Verify(store.events[0]))
}

func TestLogger_RecordFailsWhenStoreFails(t *testing.T) {
	store := &captureStore{err: errors.New("disk full")}
	logger := NewLogger("test-secret", store)

	err := logger.Record(context.Background(), Entry{
		UsernameAttempted: "alice",
		EventType:         models.EventLoginSuccess,
		Success:           true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
