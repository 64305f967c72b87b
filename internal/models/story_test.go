package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoryExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fresh := Story{CreatedAt: now.Add(-23 * time.Hour)}
	assert.False(t, fresh.Expired(now))

	stale := Story{CreatedAt: now.Add(-25 * time.Hour)}
	assert.True(t, stale.Expired(now))

	// The boundary itself counts as expired.
	boundary := Story{CreatedAt: now.Add(-StoryTTL)}
	assert.True(t, boundary.Expired(now))
}
