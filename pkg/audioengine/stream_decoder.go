package audioengine

import (
	"github.com/hraban/opus"
)

type StreamDecoder struct {
	dec      *opus.Decoder
	channels int
	out      []int16
}

func NewStreamDecoder(rate, channels int) (*StreamDecoder, error) {
	d, err := opus.NewDecoder(rate, channels)
	if err != nil {
		return nil, err
	}
	// 120ms is the longest opus frame
	maxFrame := rate * 120 / 1000
	return &StreamDecoder{dec: d, channels: channels, out: make([]int16, maxFrame*channels)}, nil
}

// DecodeFrame decodes one opus frame into interleaved PCM. The returned
// slice is reused by the next call.
func (sd *StreamDecoder) DecodeFrame(frame []byte) ([]int16, error) {
	n, err := sd.dec.Decode(frame, sd.out)
	if err != nil {
		return nil, err
	}
	return sd.out[:n*sd.channels], nil
}

func (sd *StreamDecoder) Channels() int { return sd.channels }
