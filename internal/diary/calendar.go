package diary

import "time"

func NextDay(t time.Time) time.Time { return t.AddDate(0, 0, 1) }

func PrevDay(t time.Time) time.Time { return t.AddDate(0, 0, -1) }

// MonthChanged reports whether moving from prev to next crosses into
// another month, which is when the meals of the new month are fetched.
func MonthChanged(prev, next time.Time) bool {
	py, pm, _ := prev.Date()
	ny, nm, _ := next.Date()
	return py != ny || pm != nm
}

// MonthKey identifies the month of t, e.g. "2024-03".
func MonthKey(t time.Time) string { return t.Format("2006-01") }

// DayLabel is the header for the selected day.
func DayLabel(day, now time.Time) string {
	if SameDay(day, now, day.Location()) {
		return "Today"
	}
	return day.Format("Jan 2, 2006")
}
