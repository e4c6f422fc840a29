package waveform

// Scale maps a decibel domain onto a bar height range.
type Scale struct {
	MinDB, MaxDB         float64
	MinHeight, MaxHeight float64
	Clamp                bool
}

var (
	// QuickAddScale is used under the record button.
	QuickAddScale = Scale{MinDB: -60, MaxDB: 0, MinHeight: 5, MaxHeight: 50, Clamp: true}
	// MeterScale is used by the full-size memo meter.
	MeterScale = Scale{MinDB: -50, MaxDB: 0, MinHeight: 5, MaxHeight: 150, Clamp: true}
)

// Height returns the bar height for a level in decibels.
func (s Scale) Height(db float64) float64 {
	return Interpolate(db, s.MinDB, s.MaxDB, s.MinHeight, s.MaxHeight, s.Clamp)
}

// Interpolate linearly maps v from [inLo, inHi] to [outLo, outHi].
// With clamp set, values outside the input domain stick to the edges.
func Interpolate(v, inLo, inHi, outLo, outHi float64, clamp bool) float64 {
	if inHi == inLo {
		return outLo
	}
	if clamp {
		lo, hi := inLo, inHi
		if lo > hi {
			lo, hi = hi, lo
		}
		if v < lo {
			v = lo
		} else if v > hi {
			v = hi
		}
	}
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

// Played reports whether bar i of n is behind the playback position.
// Played bars always form a prefix of the waveform.
func Played(i, n int, progress float64) bool {
	if n <= 0 {
		return false
	}
	return progress > float64(i)/float64(n)
}

// Bar is one drawable waveform bar.
type Bar struct {
	Level  float64
	Height float64
	Played bool
}

// Render builds the drawable bars for bucketed levels at a playback progress.
func Render(buckets []float64, scale Scale, progress float64) []Bar {
	bars := make([]Bar, len(buckets))
	for i, db := range buckets {
		bars[i] = Bar{
			Level:  db,
			Height: scale.Height(db),
			Played: Played(i, len(buckets), progress),
		}
	}
	return bars
}

// PlayedCount returns how many of n bars are drawn as played.
func PlayedCount(n int, progress float64) int {
	count := 0
	for i := 0; i < n; i++ {
		if !Played(i, n, progress) {
			break
		}
		count++
	}
	return count
}
