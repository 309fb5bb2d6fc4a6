package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("SURREAL_URL", "")
	t.Setenv("ACTIONS_MEMO_TTL", "")
	t.Setenv("ACTIONS_HOT_RELOAD", "")

	cfg := New()

	assert.Equal(t, "", cfg.GetDBUrl(), "no database URL selects the memory store")
	assert.Equal(t, time.Second, cfg.GetActionsMemoTTL())
	assert.True(t, cfg.GetActionsHotReload())
	assert.Equal(t, "scripts/actions", cfg.GetActionsScriptDir())
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("SURREAL_URL", "ws://localhost:8000/rpc")
	t.Setenv("SURREAL_NS", "ns1")
	t.Setenv("ACTIONS_MEMO_TTL", "250ms")
	t.Setenv("ACTIONS_HOT_RELOAD", "false")
	t.Setenv("PUBSUB_TRACING_ENABLED", "true")
	t.Setenv("PUBSUB_TRACING_SERVICE_NAME", "parley-test")

	cfg := New()

	assert.Equal(t, "ws://localhost:8000/rpc", cfg.GetDBUrl())
	assert.Equal(t, "ns1", cfg.GetDBNs())
	assert.Equal(t, 250*time.Millisecond, cfg.GetActionsMemoTTL())
	assert.False(t, cfg.GetActionsHotReload())
	assert.True(t, cfg.GetTracingEnabled())
	assert.Equal(t, "parley-test", cfg.GetTracingServiceName())
}

func TestNew_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ACTIONS_MEMO_TTL", "soon")
	t.Setenv("ACTIONS_HOT_RELOAD", "maybe")

	cfg := New()

	assert.Equal(t, time.Second, cfg.GetActionsMemoTTL())
	assert.True(t, cfg.GetActionsHotReload())
}
