/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"mealdiary/internal/api"
	"mealdiary/internal/diary"
	"mealdiary/internal/waveform"

	"github.com/fatih/color"
)

var (
	playedColor  = color.New(color.FgGreen, color.Bold)
	neutralColor = color.New(color.FgHiBlack)
	headerColor  = color.New(color.FgGreen, color.Bold)
	dimColor     = color.New(color.Faint)
)

// bar glyphs from lowest to highest
var levels = []rune(" ▁▂▃▄▅▆▇█")

// glyph picks the block for a bar height inside [min, max].
func glyph(height, min, max float64) rune {
	if max <= min {
		return levels[len(levels)-1]
	}
	f := (height - min) / (max - min)
	idx := int(math.Round(f*float64(len(levels)-2))) + 1
	if idx < 1 {
		idx = 1
	}
	if idx > len(levels)-1 {
		idx = len(levels) - 1
	}
	return levels[idx]
}

// barLine draws bars as one line of blocks, played bars highlighted.
func barLine(bars []waveform.Bar, scale waveform.Scale) string {
	var played, rest strings.Builder
	for _, b := range bars {
		g := glyph(b.Height, scale.MinHeight, scale.MaxHeight)
		if b.Played {
			played.WriteRune(g)
		} else {
			rest.WriteRune(g)
		}
	}
	return playedColor.Sprint(played.String()) + neutralColor.Sprint(rest.String())
}

// meterLine draws a single live level as a horizontal gauge.
func meterLine(db float64, width int) string {
	h := waveform.MeterScale.Height(db)
	filled := int(math.Round(h / waveform.MeterScale.MaxHeight * float64(width)))
	if filled > width {
		filled = width
	}
	return playedColor.Sprint(strings.Repeat("█", filled)) +
		neutralColor.Sprint(strings.Repeat("·", width-filled)) +
		fmt.Sprintf(" %6.1f dB", db)
}

func timeLine(posMs, durMs float64) string {
	return fmt.Sprintf("%s / %s", diary.FormatMillis(int64(posMs)), diary.FormatMillis(int64(durMs)))
}

func printMeal(w io.Writer, m api.Meal, loc *time.Location, width int, full bool) {
	headerColor.Fprintln(w, diary.MealHeading(m, loc))
	if m.Notes != "" {
		rm := diary.NewReadMore(m.Notes, width)
		if full && rm.State() == diary.Collapsed {
			rm.Toggle()
		}
		for _, line := range strings.Split(rm.Text(), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		if rm.State() == diary.Collapsed {
			dimColor.Fprintf(w, "  %s (--full)\n", rm.Action())
		}
	}
	for _, u := range m.ImageURLs {
		dimColor.Fprintf(w, "  photo: %s\n", u)
	}
}

func printWorkout(w io.Writer, a api.StravaActivity) {
	headerColor.Fprintln(w, a.Name)
	fmt.Fprintf(w, "  Distance  %s\n", diary.Miles(a.Distance))
	fmt.Fprintf(w, "  Time      %s\n", diary.MovingTime(a.MovingTime))
	fmt.Fprintf(w, "  Elevation %s\n", diary.Feet(a.TotalElevationGain))
}

func printMessage(w io.Writer, m api.Message) {
	switch {
	case m.Role == diary.RoleUser:
		headerColor.Fprint(w, "you> ")
		fmt.Fprintln(w, m.Content)
	case m.Content == "":
		dimColor.Fprintln(w, "...")
	default:
		fmt.Fprintln(w, m.Content)
	}
}
