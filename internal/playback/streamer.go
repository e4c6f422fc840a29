// Package playback plays recorded voice memos through beep and reports the
// playback position the waveform is colored by.
package playback

import (
	"fmt"

	"mealdiary/internal/container"
	"mealdiary/pkg/audioengine"
	"mealdiary/pkg/spec"

	"github.com/faiface/beep"
)

// MemoStreamer decodes opus frames on demand. It implements
// beep.StreamSeeker with positions counted in sample frames.
type MemoStreamer struct {
	memo      *container.Memo
	dec       *audioengine.StreamDecoder
	frameSize int
	next      int // index of the next opus frame to decode
	buffer    [][2]float64
	pos       int
	err       error
}

func NewMemoStreamer(m *container.Memo) (*MemoStreamer, error) {
	if m.SampleRate <= 0 || m.Channels <= 0 {
		return nil, fmt.Errorf("memo has no audio format (rate=%d channels=%d)", m.SampleRate, m.Channels)
	}
	dec, err := audioengine.NewStreamDecoder(m.SampleRate, m.Channels)
	if err != nil {
		return nil, err
	}
	return &MemoStreamer{
		memo:      m,
		dec:       dec,
		frameSize: m.SampleRate * spec.FrameSize / 1000,
	}, nil
}

func (l *MemoStreamer) SampleRate() beep.SampleRate { return beep.SampleRate(l.memo.SampleRate) }

func (l *MemoStreamer) decodeNext() bool {
	if l.next >= len(l.memo.Frames) {
		return false
	}
	pcm, err := l.dec.DecodeFrame(l.memo.Frames[l.next])
	l.next++
	if err != nil {
		// a damaged frame plays as silence
		l.buffer = append(l.buffer, make([][2]float64, l.frameSize)...)
		return true
	}

	ch := l.dec.Channels()
	for i := 0; i+ch-1 < len(pcm); i += ch {
		left := float64(pcm[i]) / 32768.0
		right := left
		if ch > 1 {
			right = float64(pcm[i+1]) / 32768.0
		}
		l.buffer = append(l.buffer, [2]float64{left, right})
	}
	return true
}

func (l *MemoStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(l.buffer) == 0 && !l.decodeNext() {
			break
		}
		n := copy(samples[filled:], l.buffer)
		l.buffer = l.buffer[n:]
		filled += n
		l.pos += n
	}
	return filled, filled > 0
}

func (l *MemoStreamer) Err() error { return l.err }

// Len is the padded length of the memo in sample frames.
func (l *MemoStreamer) Len() int { return len(l.memo.Frames) * l.frameSize }

func (l *MemoStreamer) Position() int { return l.pos }

// Seek restarts decoding at the frame holding p and skips into it.
func (l *MemoStreamer) Seek(p int) error {
	if p < 0 || p > l.Len() {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, l.Len())
	}
	dec, err := audioengine.NewStreamDecoder(l.memo.SampleRate, l.memo.Channels)
	if err != nil {
		l.err = err
		return err
	}
	l.dec = dec
	l.next = p / l.frameSize
	l.buffer = l.buffer[:0]
	l.pos = p

	skip := p - l.next*l.frameSize
	if skip > 0 && l.decodeNext() {
		if skip > len(l.buffer) {
			skip = len(l.buffer)
		}
		l.buffer = l.buffer[skip:]
	}
	return nil
}
