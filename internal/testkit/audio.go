package testkit

import (
	"math"

	"gotimbre/domain/audio"
)

// FixtureSampleRate is the sample rate of every synthetic buffer
const FixtureSampleRate = 16000

// Sine returns a mono sine of the given frequency and amplitude
func Sine(freq, amp, seconds float64) audio.Buffer {
	n := int(seconds * FixtureSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/FixtureSampleRate)
	}
	return audio.Buffer{Samples: samples, Channels: 1, SampleRate: FixtureSampleRate}
}

// Silence returns a mono buffer of zeros
func Silence(seconds float64) audio.Buffer {
	return audio.Buffer{Samples: make([]float64, int(seconds*FixtureSampleRate)), Channels: 1, SampleRate: FixtureSampleRate}
}

// Burst is silence with a single full-scale burst covering fraction of the
// buffer at its start. It trips both the activity and the clipping gate.
func Burst(seconds, fraction, amp float64) audio.Buffer {
	buf := Silence(seconds)
	n := int(float64(len(buf.Samples)) * fraction)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			buf.Samples[i] = amp
		} else {
			buf.Samples[i] = -amp
		}
	}
	return buf
}

// Ramp is a sine whose amplitude is startAmp in the first half and endAmp in
// the second.
func Ramp(freq, startAmp, endAmp, seconds float64) audio.Buffer {
	buf := Sine(freq, 1, seconds)
	half := len(buf.Samples) / 2
	for i := range buf.Samples {
		if i < half {
			buf.Samples[i] *= startAmp
		} else {
			buf.Samples[i] *= endAmp
		}
	}
	return buf
}

// WithDC adds a constant offset to every sample
func WithDC(buf audio.Buffer, offset float64) audio.Buffer {
	out := make([]float64, len(buf.Samples))
	for i, s := range buf.Samples {
		out[i] = s + offset
	}
	buf.Samples = out
	return buf
}

// Stereo interleaves two mono buffers of equal length
func Stereo(left, right audio.Buffer) audio.Buffer {
	n := min(len(left.Samples), len(right.Samples))
	out := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		out[2*i] = left.Samples[i]
		out[2*i+1] = right.Samples[i]
	}
	return audio.Buffer{Samples: out, Channels: 2, SampleRate: left.SampleRate}
}
