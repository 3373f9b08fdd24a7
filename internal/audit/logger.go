// Package audit records authentication events. Every record is HMAC-signed
// so tampering with stored history is detectable, and persistence is
// mandatory: a record that cannot be written fails the operation that
// produced it.
package audit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
	"github.com/dataloft-systems/dataloft-backend/internal/repository"
)

// Entry is what callers supply; the logger fills in ID, timestamp and
// signature.
type Entry struct {
	UserID            *string
	UsernameAttempted string
	EventType         string
	IPAddress         string
	UserAgent         string
	Success           bool
	FailureReason     string
	Details           map[string]interface{}
}

type Logger struct {
	secretKey []byte
	store     repository.AuditStore
	forwarder *Forwarder
	now       func() time.Time
}

func NewLogger(secretKey string, store repository.AuditStore) *Logger {
	return &Logger{
		secretKey: []byte(secretKey),
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func NewLoggerWithForwarder(secretKey string, store repository.AuditStore, forwarder *Forwarder) *Logger {
	l := NewLogger(secretKey, store)
	l.forwarder = forwarder
	return l
}

// Record signs and persists one event. A persistence failure is returned to
// the caller; forwarding to the message bus is best effort and never blocks.
func (l *Logger) Record(ctx context.Context, entry Entry) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate event id: %w", err)
	}

	event := &models.AuthEvent{
		ID:                id.String(),
		UserID:            entry.UserID,
		UsernameAttempted: entry.UsernameAttempted,
		EventType:         entry.EventType,
		IPAddress:         entry.IPAddress,
		UserAgent:         entry.UserAgent,
		Success:           entry.Success,
		FailureReason:     entry.FailureReason,
		Details:           entry.Details,
		CreatedAt:         l.now(),
	}
	event.Signature = l.sign(event)

	// Background context so a cancelled request cannot drop the record.
	if err := l.store.AppendAuthEvent(context.Background(), event); err != nil {
		return fmt.Errorf("failed to persist auth event: %w", err)
	}

	if l.forwarder != nil {
		go func() {
			if err := l.forwarder.Forward(event); err != nil {
				slog.Warn("failed to forward auth event", slog.String("error", err.Error()))
			}
		}()
	}

	return nil
}

func (l *Logger) sign(event *models.AuthEvent) string {
	data := []byte(event.ID + event.CreatedAt.Format(time.RFC3339Nano) +
		event.UsernameAttempted + event.EventType + event.IPAddress +
		fmt.Sprintf("%t", event.Success))
	h := hmac.New(sha256.New, l.secretKey)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether an event's signature matches its contents.
func (l *Logger) Verify(event *models.AuthEvent) bool {
	expected := l.sign(event)
	return hmac.Equal([]byte(expected), []byte(event.Signature))
}
