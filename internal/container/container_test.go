package container

import (
	"context"
	"testing"

	"gotimbre/internal/config"
	"gotimbre/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Generation.BatchSize = 0
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestContainerRunsPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "ERROR"
	c, err := New(cfg)
	require.NoError(t, err)

	kit, err := testkit.NewTestKit()
	require.NoError(t, err)
	assert.Error(t, c.InitWithCollaborators(nil, kit.Renderer(), nil))
	assert.Error(t, c.InitWithCollaborators(kit.Catalog(), nil, nil))
	require.NoError(t, c.InitWithCollaborators(kit.Catalog(), kit.Renderer(), nil))

	result, err := c.Pipeline.Run(context.Background(), kit.BrightNoisyTarget(), 42)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Selection.Selected)
	assert.Equal(t, cfg.Hash(), result.Manifest.ConfigHash())
}
