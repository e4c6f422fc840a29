package playback

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"go.uber.org/zap"
)

// Player plays a seekable stream through a volume stage and a beep.Ctrl.
// It is itself a beep.Streamer; when the stream ends it rewinds to the
// start and pauses, then calls OnFinish.
//
// Control methods take the Locker, which must be the lock the output
// device holds while calling Stream (speaker.Lock for the speaker).
type Player struct {
	Locker   sync.Locker
	OnFinish func()

	src    beep.StreamSeeker
	rate   beep.SampleRate
	volume *effects.Volume
	ctrl   *beep.Ctrl
	log    *zap.Logger
}

func NewPlayer(src beep.StreamSeeker, rate beep.SampleRate, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Player{
		Locker: &sync.Mutex{},
		src:    src,
		rate:   rate,
		log:    log,
	}
	p.volume = &effects.Volume{
		Streamer: rewinder{p},
		Base:     2,
	}
	p.ctrl = &beep.Ctrl{
		Streamer: p.volume,
		Paused:   true,
	}
	return p
}

// rewinder passes the source through and handles the end of the stream.
// It runs inside ctrl.Stream, so the output lock is already held.
type rewinder struct{ p *Player }

func (r rewinder) Stream(samples [][2]float64) (int, bool) {
	p := r.p
	n, ok := p.src.Stream(samples)
	if ok && n == len(samples) {
		return n, true
	}

	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	if err := p.src.Seek(0); err != nil {
		p.log.Warn("rewind failed", zap.Error(err))
	}
	p.ctrl.Paused = true
	if p.OnFinish != nil {
		p.OnFinish()
	}
	return len(samples), true
}

func (r rewinder) Err() error { return r.p.src.Err() }

func (p *Player) Stream(samples [][2]float64) (int, bool) {
	return p.ctrl.Stream(samples)
}

func (p *Player) Err() error { return p.src.Err() }

func (p *Player) Play() {
	p.Locker.Lock()
	p.ctrl.Paused = false
	p.Locker.Unlock()
}

func (p *Player) Pause() {
	p.Locker.Lock()
	p.ctrl.Paused = true
	p.Locker.Unlock()
}

// Toggle flips between playing and paused and reports whether it is now
// playing.
func (p *Player) Toggle() bool {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	p.ctrl.Paused = !p.ctrl.Paused
	return !p.ctrl.Paused
}

func (p *Player) Playing() bool {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	return !p.ctrl.Paused
}

// SetVolume changes the gain in dB-like steps of base 2 (0 is unchanged,
// -1 halves the amplitude).
func (p *Player) SetVolume(v float64) {
	p.Locker.Lock()
	p.volume.Volume = v
	p.Locker.Unlock()
}

func (p *Player) Volume() float64 {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	return p.volume.Volume
}

// Seek moves playback to d from the start.
func (p *Player) Seek(d time.Duration) error {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	pos := p.rate.N(d)
	if pos > p.src.Len() {
		pos = p.src.Len()
	}
	if pos < 0 {
		pos = 0
	}
	return p.src.Seek(pos)
}

func (p *Player) PositionMillis() float64 {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	return float64(p.rate.D(p.src.Position()).Milliseconds())
}

func (p *Player) DurationMillis() float64 {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	return float64(p.rate.D(p.src.Len()).Milliseconds())
}

// Progress is the played fraction in [0, 1].
func (p *Player) Progress() float64 {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	total := p.src.Len()
	if total <= 0 {
		return 0
	}
	return float64(p.src.Position()) / float64(total)
}
