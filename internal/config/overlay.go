package config

import (
	"gotimbre/domain/core"
	"gotimbre/domain/selection"
	"gotimbre/internal/errors"

	"github.com/tidwall/gjson"
)

// ApplyJSON overlays the values present in a JSON document onto c. Absent
// keys keep their current value; prior_weights and ladder replace wholesale.
func (c *Config) ApplyJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.ConfigInvalid("config overlay is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	setInt(doc, "generation.batch_size", &c.Generation.BatchSize)
	setInt(doc, "generation.max_batches", &c.Generation.MaxBatches)
	setString(doc, "generation.sampling_tag", &c.Generation.SamplingTag)
	setInt(doc, "generation.usable_multiplier", &c.Generation.UsableMultiplier)
	if priors := doc.Get("generation.prior_weights"); priors.Exists() {
		if !priors.IsObject() {
			return errors.ConfigInvalid("generation.prior_weights must be an object")
		}
		weights := make(map[core.Category]float64)
		priors.ForEach(func(key, value gjson.Result) bool {
			weights[core.Category(key.String())] = value.Float()
			return true
		})
		c.Generation.PriorWeights = weights
	}

	setInt(doc, "selection.n_select", &c.Selection.NSelect)
	setInt(doc, "selection.min_category_count", &c.Selection.MinCategoryCount)
	setInt(doc, "selection.max_per_category", &c.Selection.MaxPerCategory)
	setFloat(doc, "selection.min_pair_distance", &c.Selection.MinPairDistance)
	setInt(doc, "selection.max_ladder_steps", &c.Selection.MaxLadderSteps)
	setFloat(doc, "selection.feature_weight", &c.Selection.FeatureWeight)
	setFloat(doc, "selection.tag_weight", &c.Selection.TagWeight)
	setFloat(doc, "selection.min_fit", &c.Selection.MinFit)
	if ladder := doc.Get("selection.ladder"); ladder.Exists() {
		if !ladder.IsArray() {
			return errors.ConfigInvalid("selection.ladder must be an array")
		}
		steps := make([]selection.Relaxation, 0)
		for _, step := range ladder.Array() {
			steps = append(steps, selection.Relaxation{
				MinCategoryDelta:    int(step.Get("min_category_delta").Int()),
				MaxPerCategoryDelta: int(step.Get("max_per_category_delta").Int()),
				MinDistanceDelta:    step.Get("min_distance_delta").Float(),
			})
		}
		c.Selection.Ladder = steps
	}

	setFloat(doc, "safety.min_rms_db", &c.Safety.MinRMSDB)
	setFloat(doc, "safety.activity_threshold_db", &c.Safety.ActivityThresholdDB)
	setFloat(doc, "safety.min_active_fraction", &c.Safety.MinActiveFraction)
	setInt(doc, "safety.frame_millis", &c.Safety.FrameMillis)
	setFloat(doc, "safety.max_peak", &c.Safety.MaxPeak)
	setFloat(doc, "safety.max_dc_offset", &c.Safety.MaxDCOffset)
	setFloat(doc, "safety.max_growth_db", &c.Safety.MaxGrowthDB)

	setFloat(doc, "fit.default_scalar_weight", &c.Fit.DefaultWeight)
	setInt(doc, "render.workers", &c.Render.Workers)
	setString(doc, "log_level", &c.LogLevel)
	return nil
}

func setInt(doc gjson.Result, path string, dst *int) {
	if v := doc.Get(path); v.Exists() {
		*dst = int(v.Int())
	}
}

func setFloat(doc gjson.Result, path string, dst *float64) {
	if v := doc.Get(path); v.Exists() {
		*dst = v.Float()
	}
}

func setString(doc gjson.Result, path string, dst *string) {
	if v := doc.Get(path); v.Exists() {
		*dst = v.String()
	}
}
