package diary

import (
	"fmt"
	"math"
	"time"

	"mealdiary/internal/api"
)

const (
	metersPerMile = 1609.34
	feetPerMeter  = 3.28084
)

// WorkoutsOn returns the activities that started on the same day of the
// same month as day.
func WorkoutsOn(acts []api.StravaActivity, day time.Time, loc *time.Location) []api.StravaActivity {
	if loc == nil {
		loc = time.Local
	}
	_, dm, dd := day.In(loc).Date()
	var out []api.StravaActivity
	for _, a := range acts {
		_, m, d := a.StartDateLocal.In(loc).Date()
		if m == dm && d == dd {
			out = append(out, a)
		}
	}
	return out
}

func Miles(meters float64) string {
	return fmt.Sprintf("%.2f mi", meters/metersPerMile)
}

func Feet(meters float64) string {
	return fmt.Sprintf("%.2f ft", meters*feetPerMeter)
}

// MovingTime formats seconds as hh:mm:ss, wrapping at 24 hours.
func MovingTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	seconds %= 24 * 3600
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// FormatMillis formats a playback position as m:ss.
func FormatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := int64(math.Floor(float64(ms) / 1000))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
