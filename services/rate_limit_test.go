package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitService_Local(t *testing.T) {
	svc := NewRateLimitService(nil, map[string]RateLimitConfig{
		RateLimitChat: {MaxRequests: 3, WindowSize: time.Hour, Message: "slow down"},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := svc.IsAllowed(ctx, "42", RateLimitChat)
		require.NoError(t, err)
		assert.True(t, info.Allowed, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
	}

	info, err := svc.IsAllowed(ctx, "42", RateLimitChat)
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	info, err = svc.IsAllowed(ctx, "43", RateLimitChat)
	require.NoError(t, err)
	assert.True(t, info.Allowed, "limits are per identifier")

	info, err = svc.IsAllowed(ctx, "42", "unknown")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestRateLimitService_Middleware(t *testing.T) {
	svc := NewRateLimitService(nil, map[string]RateLimitConfig{
		RateLimitPhoto: {MaxRequests: 1, WindowSize: time.Hour, Message: "Too many photo requests"},
	})

	app := NewFiberApp()
	app.Post("/", func(c *fiber.Ctx) error {
		c.Locals(shared.UserID, int64(42))
		return c.Next()
	}, svc.Limit(RateLimitPhoto), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	send := func() int {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil), -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusNoContent, send())
	assert.Equal(t, fiber.StatusTooManyRequests, send())
}
