package lockout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

func TestRecordFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("below threshold does not lock", func(t *testing.T) {
		u := &models.User{}
		for i := 1; i < MaxFailedAttempts; i++ {
			locked := RecordFailure(u, now)
			assert.False(t, locked, "attempt %d should not lock", i)
			assert.Equal(t, i, u.FailedLoginAttempts)
			assert.Nil(t, u.AccountLockedUntil)
		}
	})

	t.Run("fifth consecutive failure locks for 15 minutes", func(t *testing.T) {
		u := &models.User{}
		var locked bool
		for i := 0; i < MaxFailedAttempts; i++ {
			locked = RecordFailure(u, now)
		}
		assert.True(t, locked)
		require.NotNil(t, u.AccountLockedUntil)
		assert.Equal(t, now.Add(LockDuration), *u.AccountLockedUntil)
	})

	t.Run("already locked account does not re-lock", func(t *testing.T) {
		u := &models.User{}
		for i := 0; i < MaxFailedAttempts; i++ {
			RecordFailure(u, now)
		}
		until := *u.AccountLockedUntil

		locked := RecordFailure(u, now.Add(time.Minute))
		assert.False(t, locked)
		assert.Equal(t, until, *u.AccountLockedUntil)
		assert.Equal(t, MaxFailedAttempts+1, u.FailedLoginAttempts)
	})
}

func TestRecordSuccess(t *testing.T) {
	now := time.Now()
	until := now.Add(LockDuration)
	u := &models.User{FailedLoginAttempts: 3, AccountLockedUntil: &until}

	RecordSuccess(u)

	assert.Zero(t, u.FailedLoginAttempts)
	assert.Nil(t, u.AccountLockedUntil)
}

func TestIsLocked(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no lock", func(t *testing.T) {
		u := &models.User{FailedLoginAttempts: 2}
		locked, lapsed := IsLocked(u, now)
		assert.False(t, locked)
		assert.False(t, lapsed)
		assert.Equal(t, 2, u.FailedLoginAttempts)
	})

	t.Run("active lock", func(t *testing.T) {
		until := now.Add(5 * time.Minute)
		u := &models.User{FailedLoginAttempts: 5, AccountLockedUntil: &until}
		locked, lapsed := IsLocked(u, now)
		assert.True(t, locked)
		assert.False(t, lapsed)
	})

	t.Run("lock lapses exactly at the deadline", func(t *testing.T) {
		until := now
		u := &models.User{FailedLoginAttempts: 5, AccountLockedUntil: &until}
		locked, lapsed := IsLocked(u, now)
		assert.False(t, locked)
		assert.True(t, lapsed)
		assert.Zero(t, u.FailedLoginAttempts)
		assert.Nil(t, u.AccountLockedUntil)
	})

	t.Run("lock holds until the deadline", func(t *testing.T) {
		until := now.Add(LockDuration)
		u := &models.User{FailedLoginAttempts: 5, AccountLockedUntil: &until}

		locked, _ := IsLocked(u, now.Add(LockDuration-time.Second))
		assert.True(t, locked)

		locked, lapsed := IsLocked(u, now.Add(LockDuration))
		assert.False(t, locked)
		assert.True(t, lapsed)
	})
}
