package safety

import (
	"fmt"

	"gotimbre/domain/audio"
	"gotimbre/domain/candidate"
	apperrors "gotimbre/internal/errors"
)

// Thresholds configures the five safety gates
type Thresholds struct {
	MinRMSDB            float64 `json:"min_rms_db"`
	ActivityThresholdDB float64 `json:"activity_threshold_db"`
	MinActiveFraction   float64 `json:"min_active_fraction"`
	FrameMillis         int     `json:"frame_millis"`
	MaxPeak             float64 `json:"max_peak"`
	MaxDCOffset         float64 `json:"max_dc_offset"`
	MaxGrowthDB         float64 `json:"max_growth_db"`
}

// DefaultThresholds returns the stock gate settings
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinRMSDB:            -60,
		ActivityThresholdDB: -50,
		MinActiveFraction:   0.1,
		FrameMillis:         20,
		MaxPeak:             0.999,
		MaxDCOffset:         0.02,
		MaxGrowthDB:         12,
	}
}

// Validate rejects thresholds the gates cannot run with
func (th Thresholds) Validate() error {
	if th.FrameMillis < 1 {
		return apperrors.ConfigInvalid(fmt.Sprintf("safety frame length must be >= 1ms, got %d", th.FrameMillis))
	}
	if th.MinActiveFraction < 0 || th.MinActiveFraction > 1 {
		return apperrors.ConfigInvalid("safety min active fraction must be within [0,1]")
	}
	if th.MaxPeak <= 0 {
		return apperrors.ConfigInvalid("safety max peak must be positive")
	}
	if th.MaxDCOffset < 0 {
		return apperrors.ConfigInvalid("safety max DC offset must be >= 0")
	}
	return nil
}

// Diagnostic names recorded in SafetyResult.Details
const (
	DetailRMSDB           = "rms_db"
	DetailActiveFraction  = "active_fraction"
	DetailFrameCount      = "frame_count"
	DetailPeak            = "peak"
	DetailDCOffset        = "dc_offset"
	DetailFirstHalfRMSDB  = "first_half_rms_db"
	DetailSecondHalfRMSDB = "second_half_rms_db"
	DetailGrowthDB        = "growth_db"
	DetailLoadError       = "load_error"
	DetailRenderError     = "render_error"
)

// gate records its diagnostics into details and reports whether it tripped
type gate struct {
	status candidate.SafetyStatus
	trips  func(p probe, th Thresholds, details map[string]float64) bool
}

// gates run in this order; the first to trip decides the status
var gates = []gate{
	{candidate.StatusSilence, func(p probe, th Thresholds, d map[string]float64) bool {
		d[DetailRMSDB] = p.RMSDB()
		return d[DetailRMSDB] < th.MinRMSDB
	}},
	{candidate.StatusSparse, func(p probe, th Thresholds, d map[string]float64) bool {
		fraction, frames := p.Activity(th.ActivityThresholdDB, th.FrameMillis)
		d[DetailActiveFraction] = fraction
		d[DetailFrameCount] = float64(frames)
		return fraction < th.MinActiveFraction
	}},
	{candidate.StatusClipping, func(p probe, th Thresholds, d map[string]float64) bool {
		d[DetailPeak] = p.Peak()
		return d[DetailPeak] >= th.MaxPeak
	}},
	{candidate.StatusDCOffset, func(p probe, th Thresholds, d map[string]float64) bool {
		d[DetailDCOffset] = p.DCOffset()
		return d[DetailDCOffset] > th.MaxDCOffset
	}},
	{candidate.StatusRunaway, func(p probe, th Thresholds, d map[string]float64) bool {
		first, second := p.HalfRMSDB()
		d[DetailFirstHalfRMSDB] = first
		d[DetailSecondHalfRMSDB] = second
		d[DetailGrowthDB] = second - first
		return second-first > th.MaxGrowthDB
	}},
}

// Classifier evaluates the ordered safety gates. It never returns an error:
// unreadable input is itself classified as SILENCE.
type Classifier struct {
	th Thresholds
}

// NewClassifier creates a classifier
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// Thresholds returns the active gate settings
func (c *Classifier) Thresholds() Thresholds { return c.th }

// Classify runs the gates against a raw buffer
func (c *Classifier) Classify(buf audio.Buffer) candidate.SafetyResult {
	if err := buf.Validate(); err != nil || buf.Frames() == 0 {
		return c.ClassifyLoadFailure(err)
	}
	return c.run(newBufferProbe(buf))
}

// ClassifySummary runs the gates against a precomputed summary
func (c *Classifier) ClassifySummary(s Summary) candidate.SafetyResult {
	return c.run(summaryProbe{s: s})
}

// ClassifyLoad loads a buffer and classifies it; a load error is SILENCE
func (c *Classifier) ClassifyLoad(load func() (audio.Buffer, error)) candidate.SafetyResult {
	buf, err := load()
	if err != nil {
		return c.ClassifyLoadFailure(err)
	}
	return c.Classify(buf)
}

// ClassifyLoadFailure is the result for audio that could not be obtained
func (c *Classifier) ClassifyLoadFailure(error) candidate.SafetyResult {
	return candidate.SafetyResult{
		Passed:  false,
		Status:  candidate.StatusSilence,
		Details: map[string]float64{DetailLoadError: 1, DetailRMSDB: silenceFloorDB},
	}
}

// ClassifyRenderFailure is the result for a candidate the renderer rejected
func (c *Classifier) ClassifyRenderFailure(error) candidate.SafetyResult {
	return candidate.SafetyResult{
		Passed:  false,
		Status:  candidate.StatusSilence,
		Details: map[string]float64{DetailRenderError: 1, DetailRMSDB: silenceFloorDB},
	}
}

func (c *Classifier) run(p probe) candidate.SafetyResult {
	details := make(map[string]float64, 8)
	for _, g := range gates {
		if g.trips(p, c.th, details) {
			return candidate.SafetyResult{Passed: false, Status: g.status, Details: details}
		}
	}
	return candidate.SafetyResult{Passed: true, Status: candidate.StatusPass, Details: details}
}

// ClassifyCandidate stores the result on the candidate and returns it
func (c *Classifier) ClassifyCandidate(cand *candidate.Candidate, buf audio.Buffer) candidate.SafetyResult {
	result := c.Classify(buf)
	cand.Safety = candidate.Evaluated(result)
	return result
}
