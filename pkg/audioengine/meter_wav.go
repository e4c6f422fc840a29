package audioengine

import (
	"errors"
	"fmt"
	"io"
	"time"

	"mealdiary/pkg/spec"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrInvalidWav = errors.New("not a valid wav file")

// Format describes decoded PCM.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func openWav(r io.ReadSeeker) (*wav.Decoder, Format, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, Format{}, fmt.Errorf("%w: %v", ErrInvalidWav, err)
		}
		return nil, Format{}, ErrInvalidWav
	}
	f := Format{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	return dec, f, nil
}

// readPCM streams the decoder in one second blocks, handing 16-bit
// interleaved samples to fn.
func readPCM(dec *wav.Decoder, f Format, fn func([]int16) error) error {
	intBuf := &audio.IntBuffer{
		Data:   make([]int, f.SampleRate*f.Channels),
		Format: &audio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
	}
	block := make([]int16, len(intBuf.Data))

	for {
		n, err := dec.PCMBuffer(intBuf)
		if err != nil && err != io.EOF {
			return err
		}
		if n == 0 {
			return nil
		}
		for i := 0; i < n; i++ {
			block[i] = toInt16(intBuf.Data[i], f.BitDepth)
		}
		if ferr := fn(block[:n]); ferr != nil {
			return ferr
		}
		if err == io.EOF {
			return nil
		}
	}
}

// levelAccumulator cuts interleaved PCM into tick windows and meters them.
type levelAccumulator struct {
	window   int
	channels int
	pending  []int16
	levels   []float64
}

func newLevelAccumulator(f Format, tick time.Duration) *levelAccumulator {
	frames := int(int64(f.SampleRate) * int64(tick) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	return &levelAccumulator{window: frames * f.Channels, channels: f.Channels}
}

func (a *levelAccumulator) add(pcm []int16) {
	a.pending = append(a.pending, pcm...)
	for len(a.pending) >= a.window {
		a.levels = append(a.levels, LevelDB(downmix(a.pending[:a.window], a.channels)))
		a.pending = a.pending[a.window:]
	}
}

func (a *levelAccumulator) flush() []float64 {
	if len(a.pending) > 0 {
		a.levels = append(a.levels, LevelDB(downmix(a.pending, a.channels)))
		a.pending = nil
	}
	return a.levels
}

// MeterWav reads a WAV stream and returns one level per tick, the same
// sequence a live recording of that audio would have produced.
func MeterWav(r io.ReadSeeker, tick time.Duration) ([]float64, Format, error) {
	if tick <= 0 {
		tick = spec.MeterTick
	}
	dec, f, err := openWav(r)
	if err != nil {
		return nil, f, err
	}

	acc := newLevelAccumulator(f, tick)
	if err := readPCM(dec, f, func(pcm []int16) error {
		acc.add(pcm)
		return nil
	}); err != nil {
		return nil, f, fmt.Errorf("decode wav: %w", err)
	}
	return acc.flush(), f, nil
}

// WavSource replays the levels of a WAV file one tick at a time.
type WavSource struct {
	levels []float64
	pos    int
}

func NewWavSource(r io.ReadSeeker, tick time.Duration) (*WavSource, error) {
	levels, _, err := MeterWav(r, tick)
	if err != nil {
		return nil, err
	}
	return &WavSource{levels: levels}, nil
}

// Level returns the next level or io.EOF when the file is exhausted.
func (w *WavSource) Level() (float64, error) {
	if w.pos >= len(w.levels) {
		return 0, io.EOF
	}
	v := w.levels[w.pos]
	w.pos++
	return v, nil
}
