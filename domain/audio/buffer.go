package audio

import "fmt"

// Buffer is a rendered sample buffer handed to the safety gates. Samples are
// interleaved when Channels > 1.
type Buffer struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames
func (b Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Validate checks the buffer shape
func (b Buffer) Validate() error {
	if b.Channels < 1 {
		return fmt.Errorf("audio buffer has %d channels", b.Channels)
	}
	if b.SampleRate < 1 {
		return fmt.Errorf("audio buffer has sample rate %d", b.SampleRate)
	}
	if len(b.Samples)%b.Channels != 0 {
		return fmt.Errorf("audio buffer length %d not divisible by %d channels", len(b.Samples), b.Channels)
	}
	return nil
}

// Mono averages channels into one signal
func (b Buffer) Mono() []float64 {
	if b.Channels == 1 {
		return b.Samples
	}
	n := b.Frames()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for ch := 0; ch < b.Channels; ch++ {
			sum += b.Samples[i*b.Channels+ch]
		}
		out[i] = sum / float64(b.Channels)
	}
	return out
}
