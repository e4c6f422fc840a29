/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mealdiary/internal/api"
	"mealdiary/internal/codec"
	"mealdiary/internal/container"
	"mealdiary/internal/playback"
	"mealdiary/internal/recorder"
	"mealdiary/internal/waveform"
	"mealdiary/pkg/audioengine"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const meterWidth = 40

var (
	liveFlag     bool
	dryRunFlag   bool
	forceFlag    bool
	outFlag      string
	qaWhenFlag   string
	progressFlag float64
	bucketsFlag  int
	onceFlag     bool
	volumeFlag   float64
)

var quickAddCmd = &cobra.Command{
	Use:   "quick-add <note.wav|note.mdmemo>",
	Short: "Upload a voice note describing a meal",
	Long: `Encode a spoken meal description, show its waveform and upload it.
The backend turns the note into a diary entry.

Examples:
  mealdiary quick-add lunch.wav
  mealdiary quick-add lunch.wav --live --out lunch.mdmemo --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runQuickAdd,
}

var waveformCmd = &cobra.Command{
	Use:   "waveform <note.wav|note.mdmemo>",
	Short: "Print the waveform of a voice note",
	Args:  cobra.ExactArgs(1),
	RunE:  runWaveform,
}

var playCmd = &cobra.Command{
	Use:   "play <note.wav|note.mdmemo>",
	Short: "Play a voice note with a live waveform",
	Long: `Play a voice note. Keys: [P]/[SPACE] pause or resume, [R] restart, [+]/[-] volume, [Q] quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	quickAddCmd.Flags().BoolVar(&liveFlag, "live", false, "replay the input level in real time while recording")
	quickAddCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "encode and show the note without uploading")
	quickAddCmd.Flags().BoolVar(&forceFlag, "force", false, "upload even if this note was sent before")
	quickAddCmd.Flags().StringVar(&outFlag, "out", "", "also save the encoded note to this file")
	quickAddCmd.Flags().StringVar(&qaWhenFlag, "when", "", "meal time (default now)")

	waveformCmd.Flags().Float64Var(&progressFlag, "progress", 0, "played fraction to highlight, 0..1")
	waveformCmd.Flags().IntVar(&bucketsFlag, "buckets", 0, "number of bars (default waveform.buckets)")

	playCmd.Flags().BoolVar(&onceFlag, "once", false, "exit when playback ends")
	playCmd.Flags().Float64Var(&volumeFlag, "volume", 0, "gain in steps of base 2, -1 halves the level")
}

// loadNote reads a memo container, or encodes a WAV file into one.
func loadNote(path string) (*container.Memo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		m, err := audioengine.EncodeMemo(f, audioengine.EncodeOptions{Tick: cfg.Recorder.Tick, Normalize: true})
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}
		return m, nil
	}
	m, err := container.ReadMemo(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

func newSession() *recorder.Session {
	return recorder.NewSession(
		recorder.WithBuckets(cfg.Waveform.Buckets),
		recorder.WithLogger(log.Named("recorder")),
	)
}

// record feeds levels into a fresh session. With live set the levels are
// replayed at the metering tick and drawn as they arrive.
func record(cmd *cobra.Command, sess *recorder.Session, wavPath string, levels []float64) (*recorder.Memo, error) {
	if !liveFlag || wavPath == "" {
		if err := sess.Start(); err != nil {
			return nil, err
		}
		for _, l := range levels {
			sess.Tick(l)
		}
		return sess.Stop()
	}

	f, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := audioengine.NewWavSource(f, cfg.Recorder.Tick)
	if err != nil {
		return nil, err
	}

	ch, cancel := sess.Meter().Subscribe()
	drawn := make(chan struct{})
	go func() {
		defer close(drawn)
		fmt.Println()
		for db := range ch {
			redraw(1, "● REC "+meterLine(db, meterWidth))
		}
	}()

	memo, err := sess.Run(cmd.Context(), src, cfg.Recorder.Tick)
	cancel()
	<-drawn
	return memo, err
}

func runQuickAdd(cmd *cobra.Command, args []string) error {
	path := args[0]
	note, err := loadNote(path)
	if err != nil {
		return err
	}
	when, err := parseWhen(qaWhenFlag, time.Now())
	if err != nil {
		return err
	}

	wavPath := ""
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		wavPath = path
	}
	sess := newSession()
	memo, err := record(cmd, sess, wavPath, note.Metering)
	if err != nil {
		return err
	}
	if memo == nil {
		return fmt.Errorf("recording was interrupted")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, barLine(sess.Bars(waveform.QuickAddScale), waveform.QuickAddScale))
	fmt.Fprintf(out, "%s  %d frames\n", timeLine(0, float64(note.Duration.Milliseconds())), len(note.Frames))

	var buf bytes.Buffer
	if err := container.WriteMemo(&buf, note); err != nil {
		return err
	}
	if outFlag != "" {
		if err := os.WriteFile(outFlag, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %s\n", outFlag)
	}
	if dryRunFlag {
		return nil
	}

	userID, err := requireUser()
	if err != nil {
		return err
	}
	fp := codec.Fingerprint(note)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := cmd.Context()
	sent, err := st.Sent(ctx, userID, fp)
	if err != nil {
		log.Warn("quick add ledger read failed", zap.Error(err))
	}
	if sent && !forceFlag {
		fmt.Fprintf(out, "Already uploaded (%s), use --force to send again\n", fp)
		return nil
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	err = client.QuickAdd(ctx, api.QuickAddForm{
		UserID:         userID,
		Datetime:       when,
		FileName:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".mdmemo",
		Audio:          buf.Bytes(),
		IdempotencyKey: fp,
	})
	if err != nil {
		return err
	}
	if err := st.MarkSent(ctx, userID, fp); err != nil {
		log.Warn("quick add ledger write failed", zap.Error(err))
	}
	if err := st.Invalidate(ctx, userID); err != nil {
		log.Warn("cache invalidate failed", zap.Error(err))
	}
	fmt.Fprintf(out, "Sent %s\n", fp)
	return nil
}

func runWaveform(cmd *cobra.Command, args []string) error {
	note, err := loadNote(args[0])
	if err != nil {
		return err
	}
	n := bucketsFlag
	if n <= 0 {
		n = cfg.Waveform.Buckets
	}
	buckets := waveform.Bucketize(note.Metering, n)
	bars := waveform.Render(buckets, waveform.QuickAddScale, progressFlag)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, barLine(bars, waveform.QuickAddScale))
	dur := float64(note.Duration.Milliseconds())
	fmt.Fprintln(out, timeLine(recorder.Progress(progressFlag*dur, dur)*dur, dur))
	return nil
}

// speakerLock hands the speaker mutex to the player.
type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

func runPlay(cmd *cobra.Command, args []string) error {
	note, err := loadNote(args[0])
	if err != nil {
		return err
	}
	stream, err := playback.NewMemoStreamer(note)
	if err != nil {
		return err
	}

	sess := newSession()
	if err := sess.Load(&recorder.Memo{Metering: note.Metering, Duration: note.Duration}); err != nil {
		return err
	}

	sr := stream.SampleRate()
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	defer speaker.Close()

	finished := make(chan struct{}, 1)
	player := playback.NewPlayer(stream, sr, log.Named("player"))
	player.Locker = speakerLock{}
	player.SetVolume(volumeFlag)
	// called from the speaker goroutine with the lock held
	player.OnFinish = func() {
		select {
		case finished <- struct{}{}:
		default:
		}
	}
	speaker.Play(beep.Streamer(player))

	initTerminal()
	defer cleanupTerminal()
	stop := restoreOnSignal()
	defer stop()

	if err := sess.Play(); err != nil {
		return err
	}
	player.Play()

	keys := readKeys()
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()

	fmt.Printf("%s\n\n\n", filepath.Base(args[0]))
	draw := func() {
		sess.SetPosition(player.PositionMillis())
		status := "PLAYING"
		if sess.State() != recorder.Playing {
			status = "PAUSED "
		}
		redraw(2,
			barLine(sess.Bars(waveform.QuickAddScale), waveform.QuickAddScale),
			fmt.Sprintf("%s  %s  vol %+.1f  [P] Pause [R] Restart [+/-] Volume [Q] Quit", status, timeLine(player.PositionMillis(), player.DurationMillis()), player.Volume()))
	}

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-t.C:
			draw()
		case <-finished:
			if err := sess.Finish(); err != nil {
				log.Debug("finish", zap.Error(err))
			}
			draw()
			if onceFlag {
				return nil
			}
		case k, ok := <-keys:
			if !ok || k == "q" {
				return nil
			}
			switch k {
			case "p", " ":
				if err := sess.Toggle(); err != nil {
					log.Debug("toggle", zap.Error(err))
					continue
				}
				if sess.State() == recorder.Playing {
					player.Play()
				} else {
					player.Pause()
				}
			case "r":
				if err := player.Seek(0); err != nil {
					return err
				}
				if sess.State() != recorder.Playing {
					if err := sess.Play(); err != nil {
						log.Debug("restart", zap.Error(err))
					}
				}
				player.Play()
			case "+", "=":
				player.SetVolume(player.Volume() + 0.5)
			case "-":
				player.SetVolume(player.Volume() - 0.5)
			}
			draw()
		}
	}
}
