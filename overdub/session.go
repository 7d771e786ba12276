// SPDX-License-Identifier: EPL-2.0

package overdub

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/engine"
	"github.com/ik5/audedit/formats/wav"
	"github.com/ik5/audedit/mix"
)

// State of the session machine. Recording implies playback is running
// concurrently for live monitoring.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateRecording
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Layer describes an existing track scheduled under a new recording.
type Layer struct {
	Path     string
	Offset   time.Duration
	Settings mix.Settings
	Loop     bool
}

// Config wires a session to its host. Output, the headphone check and the
// storage check are host collaborators; nil checks disable the respective
// precondition.
type Config struct {
	BasePath     string
	BaseSettings mix.Settings
	Layers       []Layer

	// Output receives the monitoring mix. Required for Play and
	// StartRecording.
	Output Output

	// HeadphonesActive reports whether hardware monitoring prevents the
	// speakers from echoing into the capture. Recording is refused when
	// it returns false.
	HeadphonesActive func() bool

	// FreeSpace reports available bytes for dir. When set together with
	// MinFreeBytes, recording is refused below the threshold.
	FreeSpace    func(dir string) (int64, error)
	MinFreeBytes int64

	// CaptureDir receives new layer files. Defaults to the base track's
	// directory.
	CaptureDir string

	// CaptureFormat of the incoming capture callback buffers.
	CaptureRate     int
	CaptureChannels int

	// OnTick, when set, is called from a low-priority ticker with the
	// current playback position and the capture peak meter snapshot.
	OnTick       func(position time.Duration, peak float32)
	TickInterval time.Duration
}

// Session coordinates synchronized playback of existing tracks with
// tap-capture of a new layer. All state transitions are serialized under
// one mutex; the capture path itself never takes it.
type Session struct {
	mu  sync.Mutex
	cfg Config

	state    State
	warnings []error

	tracks   []mix.Track
	renderer *mix.Renderer
	position int64 // output frames, valid while paused/idle

	// capture is read lock-free: the play loop's ticker and the capture
	// callback both snapshot it while a state transition may be holding
	// mu and waiting for the play loop to exit.
	capture     atomic.Pointer[captureWriter]
	capturePath string

	stopPlay chan struct{}
	playDone chan struct{}
}

func NewSession(cfg Config) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	return &Session{cfg: cfg}
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Warnings lists the per-layer load failures collected by Prepare. They
// are deliberately non-fatal: one broken layer does not abort the session.
func (s *Session) Warnings() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.warnings...)
}

// Prepare loads the base track and every layer, validating formats. Layers
// that fail to load are skipped with a warning. Looped layers are
// preloaded into memory buffers, since loop scheduling needs the whole
// buffer resident; everything else streams from file.
func (s *Session) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("%w: prepare while %s", ErrInvalidState, s.state)
	}

	base, err := wav.OpenFile(s.cfg.BasePath)
	if err != nil {
		return fmt.Errorf("load base track: %w", err)
	}

	s.tracks = []mix.Track{{
		Source:   base,
		Settings: s.cfg.BaseSettings,
	}}
	s.warnings = nil

	for _, l := range s.cfg.Layers {
		src, err := wav.OpenFile(l.Path)
		if err != nil {
			s.warnings = append(s.warnings, fmt.Errorf("layer %s: %w", l.Path, err))
			continue
		}

		if l.Loop {
			buf, err := audio.ReadAll(src)
			src.Close()
			if err != nil {
				s.warnings = append(s.warnings, fmt.Errorf("layer %s: %w", l.Path, err))
				continue
			}
			src = buf
		}

		s.tracks = append(s.tracks, mix.Track{
			Source:   src,
			Offset:   l.Offset,
			Settings: l.Settings,
			Loop:     l.Loop,
		})
	}

	renderer, err := mix.NewRenderer(base.SampleRate(), s.tracks)
	if err != nil {
		return fmt.Errorf("prepare mix: %w", err)
	}
	s.renderer = renderer

	return nil
}

// Play starts (or resumes) scheduled playback from the current position.
// Layers starting later are implicitly delayed by the renderer's timeline;
// layers whose start has passed are sought into mid-content.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked()
}

func (s *Session) playLocked() error {
	switch s.state {
	case StatePlaying, StateRecording:
		return nil
	case StateIdle, StatePaused:
	}

	if s.renderer == nil {
		return fmt.Errorf("%w: play before prepare", ErrInvalidState)
	}
	if s.cfg.Output == nil {
		return fmt.Errorf("%w: no playback output", ErrInvalidState)
	}

	if err := s.cfg.Output.Open(s.renderer.SampleRate(), 2); err != nil {
		return err
	}
	if err := s.renderer.Seek(s.position); err != nil {
		return err
	}

	s.stopPlay = make(chan struct{})
	s.playDone = make(chan struct{})
	go s.playLoop(s.renderer, s.stopPlay, s.playDone)

	s.state = StatePlaying
	return nil
}

// playLoop pushes renderer chunks at the output until stopped or the mix
// ends. A low-priority ticker reports position and capture meters.
func (s *Session) playLoop(r *mix.Renderer, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	buf := make([]float32, 4096*2)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(r)
		default:
		}

		n, err := r.ReadSamples(buf)
		if n > 0 {
			if werr := s.cfg.Output.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return // io.EOF: mix finished; errors: host tears down
		}
	}
}

func (s *Session) tick(r *mix.Renderer) {
	if s.cfg.OnTick == nil {
		return
	}

	peak := float32(0)
	if c := s.captureSnapshot(); c != nil {
		peak = c.Peak()
	}

	s.cfg.OnTick(engine.FrameDuration(r.Position(), r.SampleRate()), peak)
}

func (s *Session) captureSnapshot() *captureWriter {
	return s.capture.Load()
}

// Pause halts playback, remembering the position for the next Play.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return fmt.Errorf("%w: pause while %s", ErrInvalidState, s.state)
	}

	s.haltPlaybackLocked()
	s.state = StatePaused
	return nil
}

func (s *Session) haltPlaybackLocked() {
	if s.stopPlay == nil {
		return
	}

	close(s.stopPlay)
	<-s.playDone
	s.stopPlay = nil
	s.position = s.renderer.Position()
}

// StartRecording validates the monitoring and storage preconditions, opens
// a new capture file and begins accepting buffers from the capture
// callback while playback keeps running for live monitoring.
func (s *Session) StartRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return fmt.Errorf("%w: already recording", ErrInvalidState)
	}
	if s.renderer == nil {
		return fmt.Errorf("%w: record before prepare", ErrInvalidState)
	}

	if s.cfg.HeadphonesActive != nil && !s.cfg.HeadphonesActive() {
		return ErrHeadphonesRequired
	}

	dir := s.cfg.CaptureDir
	if dir == "" {
		dir = filepath.Dir(s.cfg.BasePath)
	}
	if s.cfg.FreeSpace != nil && s.cfg.MinFreeBytes > 0 {
		free, err := s.cfg.FreeSpace(dir)
		if err != nil {
			return fmt.Errorf("storage check: %w", err)
		}
		if free < s.cfg.MinFreeBytes {
			return fmt.Errorf("%w: %d bytes free", engine.ErrInsufficientSpace, free)
		}
	}

	rate := s.cfg.CaptureRate
	if rate <= 0 {
		rate = s.renderer.SampleRate()
	}
	channels := s.cfg.CaptureChannels
	if channels <= 0 {
		channels = 1
	}

	// The uuid keeps two takes started within the same second from
	// landing on the same file and truncating the earlier one.
	path := filepath.Join(dir, fmt.Sprintf("layer_%s_%s.wav",
		time.Now().Format("20060102_150405"), uuid.NewString()))
	sink, err := wav.CreateFile(path, rate, channels)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}

	s.capture.Store(newCaptureWriter(sink, channels))
	s.capturePath = path

	if err := s.playLocked(); err != nil {
		s.capture.Swap(nil).drain()
		os.Remove(path)
		return err
	}

	s.state = StateRecording
	return nil
}

// CaptureBuffer accepts one buffer from the host's real-time capture
// callback. The buffer is copied and queued; file writes happen on the
// writer goroutine. Outside the recording state it is a no-op, so a
// straggling callback after teardown stays harmless.
func (s *Session) CaptureBuffer(buf []float32) {
	c := s.captureSnapshot()
	if c == nil {
		return
	}
	c.enqueue(buf)
}

// StopRecording drains all queued writes, closes the capture file and
// reports the frame-accurate result. Playback continues.
func (s *Session) StopRecording() (*engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return nil, fmt.Errorf("%w: stop while %s", ErrInvalidState, s.state)
	}

	res, err := s.finishCaptureLocked()
	s.state = StatePlaying
	return res, err
}

// Interrupt truncates an in-progress recording into a valid, fully
// flushed partial file and idles the session. The result still reports
// the flushed duration; the error wraps ErrInterrupted.
func (s *Session) Interrupt() (*engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return nil, fmt.Errorf("%w: interrupt while %s", ErrInvalidState, s.state)
	}

	res, err := s.finishCaptureLocked()
	s.haltPlaybackLocked()
	s.state = StateIdle

	if err != nil {
		return res, err
	}
	return res, fmt.Errorf("%w: capture truncated at %s", ErrInterrupted, res.Duration)
}

func (s *Session) finishCaptureLocked() (*engine.Result, error) {
	rate := s.cfg.CaptureRate
	if rate <= 0 {
		rate = s.renderer.SampleRate()
	}

	frames, err := s.capture.Swap(nil).drain()
	res := &engine.Result{
		OutputPath: s.capturePath,
		Duration:   engine.FrameDuration(frames, rate),
	}

	s.capturePath = ""

	if err != nil {
		os.Remove(res.OutputPath)
		return nil, err
	}
	return res, nil
}

// Stop halts playback and returns the session to idle.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return fmt.Errorf("%w: stop recording first", ErrInvalidState)
	}

	s.haltPlaybackLocked()
	s.position = 0
	if s.renderer != nil {
		if err := s.renderer.Seek(0); err != nil && err != io.EOF {
			return err
		}
	}
	s.state = StateIdle
	return nil
}

// Close releases every track source and the playback output. An
// in-flight recording is finalized first, the same way Interrupt does,
// so the capture file on disk is left valid rather than truncated
// mid-header.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	if s.capture.Load() != nil {
		if _, err := s.finishCaptureLocked(); err != nil {
			first = err
		}
	}

	s.haltPlaybackLocked()
	s.state = StateIdle

	if s.renderer != nil {
		if err := s.renderer.Close(); err != nil && first == nil {
			first = err
		}
		s.renderer = nil
	}
	if s.cfg.Output != nil {
		if err := s.cfg.Output.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
