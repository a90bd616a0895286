package safety

import (
	"math"

	"gotimbre/domain/audio"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// silenceFloorDB is reported for an all-zero signal
const silenceFloorDB = -200.0

func toDB(rms float64) float64 {
	if rms <= 1e-10 {
		return silenceFloorDB
	}
	return 20 * math.Log10(rms)
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// probe exposes the measurements the gates need. Each accessor is computed
// on first use so a gate that trips early never pays for later measurements.
type probe interface {
	RMSDB() float64
	Activity(thresholdDB float64, frameMillis int) (fraction float64, frames int)
	Peak() float64
	DCOffset() float64
	HalfRMSDB() (first, second float64)
}

// Summary is a precomputed audio summary supplied by an external analyzer
type Summary struct {
	RMSDB           float64 `json:"rms_db"`
	ActiveFraction  float64 `json:"active_fraction"`
	FrameCount      int     `json:"frame_count"`
	Peak            float64 `json:"peak"`
	DCOffset        float64 `json:"dc_offset"`
	FirstHalfRMSDB  float64 `json:"first_half_rms_db"`
	SecondHalfRMSDB float64 `json:"second_half_rms_db"`
}

type summaryProbe struct{ s Summary }

func (p summaryProbe) RMSDB() float64 { return p.s.RMSDB }
func (p summaryProbe) Activity(float64, int) (float64, int) {
	return p.s.ActiveFraction, p.s.FrameCount
}
func (p summaryProbe) Peak() float64     { return p.s.Peak }
func (p summaryProbe) DCOffset() float64 { return p.s.DCOffset }
func (p summaryProbe) HalfRMSDB() (float64, float64) {
	return p.s.FirstHalfRMSDB, p.s.SecondHalfRMSDB
}

// bufferProbe measures a raw sample buffer lazily
type bufferProbe struct {
	buf  audio.Buffer
	mono []float64
}

func newBufferProbe(buf audio.Buffer) *bufferProbe {
	return &bufferProbe{buf: buf, mono: buf.Mono()}
}

func (p *bufferProbe) RMSDB() float64 {
	return toDB(rms(p.mono))
}

func (p *bufferProbe) Activity(thresholdDB float64, frameMillis int) (float64, int) {
	frameLen := p.buf.SampleRate * frameMillis / 1000
	if frameLen < 1 {
		frameLen = 1
	}
	active := make([]float64, 0, len(p.mono)/frameLen+1)
	for start := 0; start < len(p.mono); start += frameLen {
		end := min(start+frameLen, len(p.mono))
		if toDB(rms(p.mono[start:end])) > thresholdDB {
			active = append(active, 1)
		} else {
			active = append(active, 0)
		}
	}
	fraction, err := stats.Mean(active)
	if err != nil {
		return 0, 0
	}
	return fraction, len(active)
}

// Peak is taken over every channel, not the mono mix, so a single clipped
// channel is caught.
func (p *bufferProbe) Peak() float64 {
	if len(p.buf.Samples) == 0 {
		return 0
	}
	return math.Max(floats.Max(p.buf.Samples), -floats.Min(p.buf.Samples))
}

func (p *bufferProbe) DCOffset() float64 {
	if len(p.mono) == 0 {
		return 0
	}
	return math.Abs(stat.Mean(p.mono, nil))
}

func (p *bufferProbe) HalfRMSDB() (float64, float64) {
	half := len(p.mono) / 2
	return toDB(rms(p.mono[:half])), toDB(rms(p.mono[half:]))
}

// Summarize measures every gate input of buf at once
func Summarize(buf audio.Buffer, th Thresholds) Summary {
	p := newBufferProbe(buf)
	fraction, frames := p.Activity(th.ActivityThresholdDB, th.FrameMillis)
	first, second := p.HalfRMSDB()
	return Summary{
		RMSDB:           p.RMSDB(),
		ActiveFraction:  fraction,
		FrameCount:      frames,
		Peak:            p.Peak(),
		DCOffset:        p.DCOffset(),
		FirstHalfRMSDB:  first,
		SecondHalfRMSDB: second,
	}
}
