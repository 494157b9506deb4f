package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"energy-audit/internal/auth"
)

func TestFromContext_AddsIdentity(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), base.WithComponent("energy"))
	ctx = auth.WithIdentity(ctx, auth.Identity{UserID: "u-1", Role: auth.RoleStudent})

	FromContext(ctx).Infow("record saved", "fuel", "glp")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "energy", fields["component"])
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "ESTUDIANTE", fields["role"])
	assert.Equal(t, "glp", fields["fuel"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, logger.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Desugar().Core().Enabled(zap.InfoLevel))
}
