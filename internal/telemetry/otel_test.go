package telemetry

import (
	"context"
	"testing"

	"github.com/memodb-io/sitestore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", Sampler(0).Description())
	assert.Equal(t, "AlwaysOnSampler", Sampler(1).Description())
	assert.Equal(t, "AlwaysOnSampler", Sampler(3).Description())
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestSetupTracing_Disabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telemetry.Enabled = true // no endpoint

	tp, err := SetupTracing(cfg)
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, Shutdown(context.Background()))
}
