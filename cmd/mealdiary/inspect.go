/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mealdiary/internal/codec"
	"mealdiary/internal/container"
	"mealdiary/internal/diary"
	"mealdiary/pkg/spec"

	"github.com/spf13/cobra"
)

var jsonDumpFlag bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <note.wav|note.mdmemo>",
	Short: "Show what a voice note contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := loadNote(args[0])
		if err != nil {
			return err
		}
		return describeNote(cmd.OutOrStdout(), note, jsonDumpFlag)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&jsonDumpFlag, "jsondump", false, "print the summary as JSON")
	rootCmd.AddCommand(inspectCmd)
}

type noteSummary struct {
	Fingerprint string  `json:"fingerprint"`
	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	DurationMs  int64   `json:"duration_ms"`
	Frames      int     `json:"frames"`
	AudioBytes  int     `json:"audio_bytes"`
	Ticks       int     `json:"ticks"`
	PeakDB      float64 `json:"peak_db"`
}

func summarize(m *container.Memo) noteSummary {
	s := noteSummary{
		Fingerprint: codec.Fingerprint(m),
		SampleRate:  m.SampleRate,
		Channels:    m.Channels,
		DurationMs:  m.Duration.Milliseconds(),
		Frames:      len(m.Frames),
		Ticks:       len(m.Metering),
		PeakDB:      spec.SilenceDB,
	}
	for _, f := range m.Frames {
		s.AudioBytes += len(f)
	}
	for _, l := range m.Metering {
		if l > s.PeakDB {
			s.PeakDB = l
		}
	}
	return s
}

func describeNote(w io.Writer, m *container.Memo, asJSON bool) error {
	s := summarize(m)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, " FINGERPRINT : %s\n", s.Fingerprint)
	fmt.Fprintf(w, " FORMAT      : %d Hz, %d ch, opus\n", s.SampleRate, s.Channels)
	fmt.Fprintf(w, " DURATION    : %s\n", diary.FormatMillis(s.DurationMs))
	fmt.Fprintf(w, " FRAMES      : %d (%s)\n", s.Frames, formatSize(int64(s.AudioBytes)))
	fmt.Fprintf(w, " METERING    : %d ticks, peak %.1f dB\n", s.Ticks, s.PeakDB)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	return nil
}

func formatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(b)/float64(div), "KMG"[exp])
}
