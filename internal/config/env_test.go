package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_PlatformFee(t *testing.T) {
	cases := map[string]float64{
		"":     500,
		"750":  750,
		"0":    500,
		"-20":  500,
		"five": 500,
	}
	for raw, want := range cases {
		t.Run("PLATFORM_FEE="+raw, func(t *testing.T) {
			t.Setenv("PLATFORM_FEE", raw)
			assert.Equal(t, want, LoadEnv().PlatformFee)
		})
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("STORAGE", "Memory")
	t.Setenv("STORE_TIMEOUT", "")
	t.Setenv("BOOKING_REQUIRE_FUTURE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://naco.ng, https://admin.naco.ng")

	env := LoadEnv()
	assert.Equal(t, "memory", env.Storage)
	assert.Equal(t, 5*time.Second, env.StoreTimeout)
	assert.True(t, env.RequireFutureSchedule)
	assert.Equal(t, []string{"https://naco.ng", "https://admin.naco.ng"}, env.CORSAllowedOrigins)
}

func TestEnvLocation_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Env{TimeZone: "Mars/Olympus"}.Location())
	assert.Equal(t, "UTC", Env{TimeZone: "UTC"}.Location().String())
}
