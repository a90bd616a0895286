package container

import (
	"fmt"

	"gotimbre/adapters/affinity"
	"gotimbre/app"
	"gotimbre/domain/core"
	"gotimbre/internal"
	"gotimbre/internal/config"
	"gotimbre/ports"
)

// Container holds the search dependencies and wires them together
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// External collaborators
	Catalog  ports.MethodCatalog
	Renderer ports.RendererPort

	// Scoring
	Affinity *affinity.ProfileSource

	// Services
	Pipeline *app.PipelineService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}, nil
}

// InitWithCollaborators wires the catalog and renderer into the pipeline.
// profiles may be nil for the built-in category profiles.
func (c *Container) InitWithCollaborators(catalog ports.MethodCatalog, renderer ports.RendererPort, profiles map[core.Category]affinity.Profile) error {
	if catalog == nil {
		return fmt.Errorf("method catalog cannot be nil")
	}
	if renderer == nil {
		return fmt.Errorf("renderer cannot be nil")
	}

	c.Catalog = catalog
	c.Renderer = renderer
	c.Affinity = affinity.NewProfileSource(catalog, profiles)
	c.Pipeline = app.NewPipelineService(catalog, renderer, c.Affinity, c.Config, c.Logger)

	c.Logger.Info("container initialized: %d categories, %d render workers", len(catalog.Categories()), c.Config.Render.Workers)
	return nil
}
