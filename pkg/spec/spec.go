package spec

import "time"

const (
	// === IDENTITY & VERSIONING ===
	Version = "1.0.0"
	AppName = "mealdiary"

	// === MAGIC NUMBERS ===
	MemoMagic  = "MDMEMO01"
	TokenMagic = "MDTOKEN1"

	// === RECORDING & METERING ===
	SampleRate         = 48000
	Channels           = 1
	FrameSize          = 20 // ms per opus frame
	MeterTick          = 100 * time.Millisecond
	SilenceDB          = -160.0
	InitialMeterDB     = -100.0
	DefaultBucketCount = 50

	// === SECURITY ===
	KDFIterations = 4096
	KeySize       = 32

	// === MEMO TLV TAGS ===
	TagRate     = "RATE"
	TagChannels = "CHAN"
	TagDuration = "DURA" // milliseconds
	TagMetering = "METR" // float32 big endian per tick
	TagAudio    = "AUDI" // uint16 length-prefixed opus frames

	// === REMOTE API ===
	DefaultBaseURL = "http://localhost:3000"
	PhotoMaxSize   = 600
)

// Meal type select data, keyed the same way the mobile client keys them.
var MealTypes = []struct {
	Key   string
	Value string
}{
	{"1", "Breakfast"},
	{"2", "Lunch"},
	{"3", "Dinner"},
	{"4", "Snack"},
}
