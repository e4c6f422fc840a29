package audioengine

import (
	"fmt"
	"io"
	"sync"
	"time"

	"mealdiary/internal/container"
	"mealdiary/pkg/spec"

	"github.com/hraban/opus"
)

type EncoderResult struct {
	Frame []byte
	Error error
}

type EncodeOptions struct {
	Tick      time.Duration
	Normalize bool
}

// EncodeStats is what a single encoding pass learned about the audio.
type EncodeStats struct {
	Format   Format
	Duration time.Duration
	Metering []float64
	Frames   int
}

func supportedOpusRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

// StreamEncodeWav encodes a WAV voice note to 20ms opus frames, sending each
// frame on out as soon as it is ready, and meters the audio in the same pass.
// out is not closed.
func StreamEncodeWav(r io.ReadSeeker, opts EncodeOptions, out chan<- EncoderResult) (*EncodeStats, error) {
	if opts.Tick <= 0 {
		opts.Tick = spec.MeterTick
	}
	dec, f, err := openWav(r)
	if err != nil {
		return nil, err
	}
	if !supportedOpusRate(f.SampleRate) {
		return nil, fmt.Errorf("unsupported sample rate %d for opus", f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", f.Channels)
	}

	enc, err := opus.NewEncoder(f.SampleRate, f.Channels, opus.AppVoIP)
	if err != nil {
		return nil, err
	}

	frameSize := f.SampleRate * spec.FrameSize / 1000
	pcmBuf := make([]int16, 0, frameSize*f.Channels)
	opusBuf := make([]byte, 1500)
	acc := newLevelAccumulator(f, opts.Tick)
	stats := &EncodeStats{Format: f}
	totalSamples := 0

	emit := func(frame []int16) error {
		n, err := enc.Encode(frame, opusBuf)
		if err != nil {
			out <- EncoderResult{Error: err}
			return err
		}
		frameCopy := make([]byte, n)
		copy(frameCopy, opusBuf[:n])
		out <- EncoderResult{Frame: frameCopy}
		stats.Frames++
		return nil
	}

	gain := 1.0
	var all []int16
	if opts.Normalize {
		// peak normalization needs the whole note before the first frame
		if err := readPCM(dec, f, func(pcm []int16) error {
			all = append(all, pcm...)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("decode wav: %w", err)
		}
		gain = NormalizeGain(all)
	}

	consume := func(pcm []int16) error {
		acc.add(pcm)
		if gain != 1 {
			ApplyGain(pcm, gain)
		}
		totalSamples += len(pcm)
		for len(pcm) > 0 {
			take := cap(pcmBuf) - len(pcmBuf)
			if take > len(pcm) {
				take = len(pcm)
			}
			pcmBuf = append(pcmBuf, pcm[:take]...)
			pcm = pcm[take:]
			if len(pcmBuf) == cap(pcmBuf) {
				if err := emit(pcmBuf); err != nil {
					return err
				}
				pcmBuf = pcmBuf[:0]
			}
		}
		return nil
	}

	if opts.Normalize {
		err = consume(all)
	} else {
		err = readPCM(dec, f, consume)
	}
	if err != nil {
		return nil, err
	}

	// pad the tail frame with silence
	if len(pcmBuf) > 0 {
		tail := pcmBuf[:cap(pcmBuf)]
		for i := len(pcmBuf); i < len(tail); i++ {
			tail[i] = 0
		}
		if err := emit(tail); err != nil {
			return nil, err
		}
	}

	stats.Metering = acc.flush()
	frames := totalSamples / f.Channels
	stats.Duration = time.Duration(int64(frames) * int64(time.Second) / int64(f.SampleRate))
	return stats, nil
}

// EncodeMemo encodes a WAV voice note into a memo container.
func EncodeMemo(r io.ReadSeeker, opts EncodeOptions) (*container.Memo, error) {
	resChan := make(chan EncoderResult, 100)
	var frames [][]byte

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for res := range resChan {
			if res.Error == nil {
				frames = append(frames, res.Frame)
			}
		}
	}()

	stats, err := StreamEncodeWav(r, opts, resChan)
	close(resChan)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	return &container.Memo{
		SampleRate: stats.Format.SampleRate,
		Channels:   stats.Format.Channels,
		Duration:   stats.Duration,
		Metering:   stats.Metering,
		Frames:     frames,
	}, nil
}
