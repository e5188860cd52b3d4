package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiscountTypeValid(t *testing.T) {
	t.Parallel()

	assert.True(t, DiscountNone.Valid())
	assert.True(t, DiscountPensioner.Valid())
	assert.True(t, DiscountStudent.Valid())
	assert.False(t, DiscountType("").Valid())
	assert.False(t, DiscountType("HALF_OFF").Valid())
	assert.False(t, DiscountType("pensioner").Valid())
}

func TestHoldExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	h := Hold{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, h.Expired(now))

	h.ExpiresAt = now
	assert.True(t, h.Expired(now), "a hold expiring exactly now is expired")

	h.ExpiresAt = now.Add(-time.Minute)
	assert.True(t, h.Expired(now))
}
