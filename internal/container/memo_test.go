package container

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"mealdiary/pkg/spec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadMemo(t *testing.T) {
	in := &Memo{
		SampleRate: 48000,
		Channels:   1,
		Duration:   2300 * time.Millisecond,
		Metering:   []float64{-40, -32.5, -160, 0},
		Frames:     [][]byte{{1, 2, 3}, {}, {9}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMemo(&buf, in))

	out, err := ReadMemo(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.SampleRate, out.SampleRate)
	assert.Equal(t, in.Channels, out.Channels)
	assert.Equal(t, in.Duration, out.Duration)
	assert.Equal(t, in.Metering, out.Metering)
	require.Len(t, out.Frames, 3)
	assert.Equal(t, []byte{1, 2, 3}, out.Frames[0])
	assert.Empty(t, out.Frames[1])
	assert.Equal(t, []byte{9}, out.Frames[2])
}

func TestReadMemo_SkipsUnknownTags(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(spec.MemoMagic)
	require.NoError(t, writeTag(&buf, "XTRA", []byte("ignored")))
	require.NoError(t, writeTag(&buf, spec.TagMetering, u32(0xC2200000))) // float32 -40

	m, err := ReadMemo(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{-40}, m.Metering)
	assert.Nil(t, m.Frames)
}

func TestReadMemo_Errors(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		_, err := ReadMemo(bytes.NewReader([]byte("WAVEDAT1....")))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("short file", func(t *testing.T) {
		_, err := ReadMemo(bytes.NewReader([]byte("MD")))
		assert.Error(t, err)
	})

	t.Run("missing metering", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(spec.MemoMagic)
		require.NoError(t, writeTag(&buf, spec.TagRate, u32(48000)))
		_, err := ReadMemo(&buf)
		assert.ErrorIs(t, err, ErrMissingMetering)
	})

	t.Run("oversized tag", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(spec.MemoMagic)
		buf.WriteString(spec.TagAudio)
		buf.Write(u32(0xFFFFFFF0))
		_, err := ReadMemo(&buf)
		assert.ErrorIs(t, err, ErrTagTooLarge)
	})

	t.Run("truncated frame", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(spec.MemoMagic)
		require.NoError(t, writeTag(&buf, spec.TagMetering, nil))
		audi := make([]byte, 2)
		binary.BigEndian.PutUint16(audi, 10)
		require.NoError(t, writeTag(&buf, spec.TagAudio, append(audi, 1, 2)))
		_, err := ReadMemo(&buf)
		assert.ErrorContains(t, err, "truncated")
	})

	t.Run("truncated block", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(spec.MemoMagic)
		buf.WriteString(spec.TagMetering)
		binary.Write(&buf, binary.BigEndian, uint32(16))
		buf.Write([]byte{0, 0})
		_, err := ReadMemo(&buf)
		assert.Error(t, err)
	})
}
