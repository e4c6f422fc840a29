package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"mealdiary/internal/container"
)

// Fingerprint hashes the audio and metering of a memo. The same recording
// always yields the same value, so it doubles as an upload idempotency key.
func Fingerprint(m *container.Memo) string {
	h := sha256.New()
	binary.Write(h, binary.BigEndian, uint32(m.SampleRate))
	binary.Write(h, binary.BigEndian, uint32(m.Channels))
	for _, v := range m.Metering {
		binary.Write(h, binary.BigEndian, math.Float32bits(float32(v)))
	}
	for _, f := range m.Frames {
		binary.Write(h, binary.BigEndian, uint16(len(f)))
		h.Write(f)
	}
	return fmt.Sprintf("MD-%x", h.Sum(nil))
}
