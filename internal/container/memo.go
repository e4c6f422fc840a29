package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"mealdiary/pkg/spec"
)

// MaxTagSize bounds a single tag block read from disk.
const MaxTagSize = 64 << 20

var (
	ErrBadMagic        = errors.New("invalid memo magic")
	ErrMissingMetering = errors.New("memo has no metering block")
	ErrTagTooLarge     = errors.New("memo tag too large")
)

// Memo is a recorded voice note as stored on disk and uploaded for quick add.
type Memo struct {
	SampleRate int
	Channels   int
	Duration   time.Duration
	Metering   []float64
	Frames     [][]byte
}

func writeTag(w io.Writer, tag string, data []byte) error {
	if _, err := w.Write([]byte(tag)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// WriteMemo serializes m as a tagged block file.
func WriteMemo(w io.Writer, m *Memo) error {
	if _, err := w.Write([]byte(spec.MemoMagic)); err != nil {
		return err
	}

	if err := writeTag(w, spec.TagRate, u32(uint32(m.SampleRate))); err != nil {
		return err
	}
	if err := writeTag(w, spec.TagChannels, u32(uint32(m.Channels))); err != nil {
		return err
	}
	if err := writeTag(w, spec.TagDuration, u32(uint32(m.Duration.Milliseconds()))); err != nil {
		return err
	}

	metr := make([]byte, 4*len(m.Metering))
	for i, v := range m.Metering {
		binary.BigEndian.PutUint32(metr[i*4:], math.Float32bits(float32(v)))
	}
	if err := writeTag(w, spec.TagMetering, metr); err != nil {
		return err
	}

	var audi bytes.Buffer
	for _, f := range m.Frames {
		if len(f) > math.MaxUint16 {
			return fmt.Errorf("opus frame too large: %d bytes", len(f))
		}
		binary.Write(&audi, binary.BigEndian, uint16(len(f)))
		audi.Write(f)
	}
	return writeTag(w, spec.TagAudio, audi.Bytes())
}

// ReadMemo parses a memo file. Unknown tags are skipped.
func ReadMemo(r io.Reader) (*Memo, error) {
	magic := make([]byte, len(spec.MemoMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if string(magic) != spec.MemoMagic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}

	m := &Memo{}
	seenMetering := false
	for {
		tagBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, tagBuf); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read tag: %w", err)
		}
		tag := string(tagBuf)

		var size uint32
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return nil, fmt.Errorf("read size of %s: %w", tag, err)
		}
		if size > MaxTagSize {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrTagTooLarge, tag, size)
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read %s: %w", tag, err)
		}

		switch tag {
		case spec.TagRate:
			m.SampleRate = int(beUint32(buf))
		case spec.TagChannels:
			m.Channels = int(beUint32(buf))
		case spec.TagDuration:
			m.Duration = time.Duration(beUint32(buf)) * time.Millisecond
		case spec.TagMetering:
			if len(buf)%4 != 0 {
				return nil, fmt.Errorf("metering block size %d not a multiple of 4", len(buf))
			}
			m.Metering = make([]float64, len(buf)/4)
			for i := range m.Metering {
				m.Metering[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(buf[i*4:])))
			}
			seenMetering = true
		case spec.TagAudio:
			frames, err := splitFrames(buf)
			if err != nil {
				return nil, err
			}
			m.Frames = frames
		}
	}

	if !seenMetering {
		return nil, ErrMissingMetering
	}
	return m, nil
}

func beUint32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func splitFrames(buf []byte) ([][]byte, error) {
	var frames [][]byte
	for len(buf) > 0 {
		if len(buf) < 2 {
			return nil, fmt.Errorf("truncated audio frame header")
		}
		sz := int(binary.BigEndian.Uint16(buf))
		buf = buf[2:]
		if sz > len(buf) {
			return nil, fmt.Errorf("truncated audio frame: want %d bytes, have %d", sz, len(buf))
		}
		frames = append(frames, buf[:sz:sz])
		buf = buf[sz:]
	}
	return frames, nil
}
