package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"mealdiary/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessPhoto_CropsToSquare(t *testing.T) {
	out, err := ProcessPhoto(bytes.NewReader(encodePNG(t, 300, 120)))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())

	// left edge of the crop sits at x=90 of the source
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(90), r>>8)
}

func TestProcessPhoto_Downscales(t *testing.T) {
	out, err := ProcessPhoto(bytes.NewReader(encodePNG(t, 800, 1000)))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestProcessPhoto_RejectsGarbage(t *testing.T) {
	_, err := ProcessPhoto(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := &container.Memo{SampleRate: 48000, Channels: 1, Metering: []float64{-40, -20}, Frames: [][]byte{{1, 2}}}
	b := &container.Memo{SampleRate: 48000, Channels: 1, Metering: []float64{-40, -20}, Frames: [][]byte{{1, 2}}}
	c := &container.Memo{SampleRate: 48000, Channels: 1, Metering: []float64{-40, -21}, Frames: [][]byte{{1, 2}}}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
	assert.Regexp(t, `^MD-[0-9a-f]{64}$`, Fingerprint(a))
}
