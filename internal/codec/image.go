package codec

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"

	"mealdiary/pkg/spec"
)

// ProcessPhoto crops a meal photo to a centered square and scales it down
// to at most spec.PhotoMaxSize pixels per side, returning PNG bytes.
func ProcessPhoto(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	size := w
	if h < w {
		size = h
	}

	x0 := bounds.Min.X + (w-size)/2
	y0 := bounds.Min.Y + (h-size)/2

	squareImg := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(squareImg, squareImg.Bounds(), src, image.Point{x0, y0}, draw.Src)

	targetSize := spec.PhotoMaxSize
	if size < targetSize {
		targetSize = size
	}

	dst := squareImg
	if targetSize != size {
		dst = image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
		// nearest neighbour
		for x := 0; x < targetSize; x++ {
			for y := 0; y < targetSize; y++ {
				srcX := x * size / targetSize
				srcY := y * size / targetSize
				dst.Set(x, y, squareImg.At(srcX, srcY))
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
