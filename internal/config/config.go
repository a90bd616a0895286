package config

import (
	"fmt"
	"os"
	"strconv"

	"gotimbre/domain/core"
	"gotimbre/domain/selection"
	"gotimbre/internal/diversity"
	"gotimbre/internal/errors"
	"gotimbre/internal/fit"
	"gotimbre/internal/generator"
	"gotimbre/internal/safety"

	"github.com/joho/godotenv"
)

// JSONOverlayEnv names the variable holding the path of a JSON overlay file
const JSONOverlayEnv = "GOTIMBRE_CONFIG_JSON"

// Config represents the complete search configuration
type Config struct {
	Generation generator.Options `json:"generation"`
	Selection  SelectionConfig   `json:"selection"`
	Safety     safety.Thresholds `json:"safety"`
	Fit        fit.Options       `json:"fit"`
	Render     RenderConfig      `json:"render"`
	LogLevel   string            `json:"log_level"`
}

// SelectionConfig holds diverse-selection settings
type SelectionConfig struct {
	NSelect          int                    `json:"n_select"`
	MinCategoryCount int                    `json:"min_category_count"`
	MaxPerCategory   int                    `json:"max_per_category"`
	MinPairDistance  float64                `json:"min_pair_distance"`
	Ladder           []selection.Relaxation `json:"ladder"`
	MaxLadderSteps   int                    `json:"max_ladder_steps"`
	FeatureWeight    float64                `json:"feature_weight"`
	TagWeight        float64                `json:"tag_weight"`
	MinFit           float64                `json:"min_fit"`
}

// RenderConfig holds settings for the external render/analyze stage
type RenderConfig struct {
	Workers int `json:"workers"`
}

// Default returns a fully populated configuration
func Default() *Config {
	policy := diversity.DefaultPolicy()
	return &Config{
		Generation: generator.DefaultOptions(),
		Selection: SelectionConfig{
			NSelect:          policy.Constraints.NSelect,
			MinCategoryCount: policy.Constraints.MinCategoryCount,
			MaxPerCategory:   policy.Constraints.MaxPerCategory,
			MinPairDistance:  policy.Constraints.MinPairDistance,
			Ladder:           policy.Ladder,
			MaxLadderSteps:   policy.MaxSteps,
			FeatureWeight:    policy.Weights.Feature,
			TagWeight:        policy.Weights.Tag,
			MinFit:           0,
		},
		Safety:   safety.DefaultThresholds(),
		Fit:      fit.DefaultOptions(),
		Render:   RenderConfig{Workers: 4},
		LogLevel: "INFO",
	}
}

// Load reads configuration from .env, environment variables and the optional
// JSON overlay, in that order, and validates it
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()
	loadGenerationConfig(&config.Generation)
	loadSelectionConfig(&config.Selection)
	loadSafetyConfig(&config.Safety)
	config.Fit.DefaultWeight = getEnvFloatOrDefault("GOTIMBRE_FIT_DEFAULT_WEIGHT", config.Fit.DefaultWeight)
	config.Render.Workers = getEnvIntOrDefault("GOTIMBRE_RENDER_WORKERS", config.Render.Workers)
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)

	if path := os.Getenv(JSONOverlayEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, "failed to read JSON overlay", err)
		}
		if err := config.ApplyJSON(data); err != nil {
			return nil, errors.Wrapf(err, "failed to apply JSON overlay %s", path)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadGenerationConfig(g *generator.Options) {
	g.BatchSize = getEnvIntOrDefault("GOTIMBRE_BATCH_SIZE", g.BatchSize)
	g.MaxBatches = getEnvIntOrDefault("GOTIMBRE_MAX_BATCHES", g.MaxBatches)
	g.SamplingTag = getEnvOrDefault("GOTIMBRE_SAMPLING_TAG", g.SamplingTag)
	g.UsableMultiplier = getEnvIntOrDefault("GOTIMBRE_USABLE_MULTIPLIER", g.UsableMultiplier)
}

func loadSelectionConfig(s *SelectionConfig) {
	s.NSelect = getEnvIntOrDefault("GOTIMBRE_N_SELECT", s.NSelect)
	s.MinCategoryCount = getEnvIntOrDefault("GOTIMBRE_MIN_CATEGORY_COUNT", s.MinCategoryCount)
	s.MaxPerCategory = getEnvIntOrDefault("GOTIMBRE_MAX_PER_CATEGORY", s.MaxPerCategory)
	s.MinPairDistance = getEnvFloatOrDefault("GOTIMBRE_MIN_PAIR_DISTANCE", s.MinPairDistance)
	s.MaxLadderSteps = getEnvIntOrDefault("GOTIMBRE_MAX_LADDER_STEPS", s.MaxLadderSteps)
	s.FeatureWeight = getEnvFloatOrDefault("GOTIMBRE_FEATURE_WEIGHT", s.FeatureWeight)
	s.TagWeight = getEnvFloatOrDefault("GOTIMBRE_TAG_WEIGHT", s.TagWeight)
	s.MinFit = getEnvFloatOrDefault("GOTIMBRE_MIN_FIT", s.MinFit)
}

func loadSafetyConfig(t *safety.Thresholds) {
	t.MinRMSDB = getEnvFloatOrDefault("GOTIMBRE_SAFETY_MIN_RMS_DB", t.MinRMSDB)
	t.ActivityThresholdDB = getEnvFloatOrDefault("GOTIMBRE_SAFETY_ACTIVITY_DB", t.ActivityThresholdDB)
	t.MinActiveFraction = getEnvFloatOrDefault("GOTIMBRE_SAFETY_MIN_ACTIVE_FRACTION", t.MinActiveFraction)
	t.FrameMillis = getEnvIntOrDefault("GOTIMBRE_SAFETY_FRAME_MS", t.FrameMillis)
	t.MaxPeak = getEnvFloatOrDefault("GOTIMBRE_SAFETY_MAX_PEAK", t.MaxPeak)
	t.MaxDCOffset = getEnvFloatOrDefault("GOTIMBRE_SAFETY_MAX_DC_OFFSET", t.MaxDCOffset)
	t.MaxGrowthDB = getEnvFloatOrDefault("GOTIMBRE_SAFETY_MAX_GROWTH_DB", t.MaxGrowthDB)
}

// Constraints returns the base (unrelaxed) selection constraints
func (c *Config) Constraints() selection.Constraints {
	return selection.Constraints{
		NSelect:          c.Selection.NSelect,
		MinCategoryCount: c.Selection.MinCategoryCount,
		MaxPerCategory:   c.Selection.MaxPerCategory,
		MinPairDistance:  c.Selection.MinPairDistance,
	}
}

// Policy returns the selection policy described by the configuration
func (c *Config) Policy() diversity.Policy {
	return diversity.Policy{
		Constraints: c.Constraints(),
		Ladder:      c.Selection.Ladder,
		MaxSteps:    c.Selection.MaxLadderSteps,
		Weights:     diversity.Weights{Feature: c.Selection.FeatureWeight, Tag: c.Selection.TagWeight},
	}
}

// Validate rejects configurations no run could use
func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.Selection.MinFit < 0 || c.Selection.MinFit > 1 {
		return errors.ConfigInvalid(fmt.Sprintf("min fit must be within [0,1], got %v", c.Selection.MinFit))
	}
	if err := c.Safety.Validate(); err != nil {
		return err
	}
	if err := c.Fit.Validate(); err != nil {
		return err
	}
	if c.Render.Workers < 1 {
		return errors.ConfigInvalid("render workers must be >= 1")
	}
	return nil
}

// Hash fingerprints every value that influences a run's output. Worker count
// and log level are excluded.
func (c *Config) Hash() core.ConfigHash {
	return core.ComputeConfigHash(map[string]any{
		"generation.batch_size":        c.Generation.BatchSize,
		"generation.max_batches":       c.Generation.MaxBatches,
		"generation.sampling_tag":      c.Generation.SamplingTag,
		"generation.prior_weights":     c.Generation.PriorWeights,
		"generation.usable_multiplier": c.Generation.UsableMultiplier,
		"generation.max_sobol_dims":    c.Generation.MaxSobolDims,
		"selection":                    c.Selection,
		"safety":                       c.Safety,
		"fit":                          c.Fit,
	})
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
