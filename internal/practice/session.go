package practice

import (
	"context"
	"errors"
	"sync"
	"time"

	"drawlab/internal/evaluation"
)

// Phases of a timed practice test.
const (
	PhaseSetup      = "setup"
	PhaseRunning    = "running"
	PhasePaused     = "paused"
	PhaseEnded      = "ended"
	PhaseEvaluating = "evaluating"
	PhaseEvaluated  = "evaluated"
)

var (
	ErrZeroDuration  = errors.New("test duration must be greater than zero")
	ErrNotRunning    = errors.New("test is not running")
	ErrMissingImages = errors.New("both reference and user drawings are required")
	ErrWrongPhase    = errors.New("operation not valid in current phase")
)

// Notifier receives timer side effects: countdown warnings and the
// end-of-test alarm. Alarm failures are ignored by the session.
type Notifier interface {
	Notify(message string)
	Alarm() error
}

// Evaluator grades a user drawing against a reference.
type Evaluator interface {
	Evaluate(ctx context.Context, userDrawing, referenceImage, drawingType string) (evaluation.Result, error)
}

// HistorySink persists one finished test.
type HistorySink interface {
	Insert(ctx context.Context, item HistoryItem) (HistoryItem, error)
}

// PointsAwarder credits points for a passing score.
type PointsAwarder interface {
	AddPoints(ctx context.Context, email string, score float64) (increment, total int, err error)
}

// Session is one timed practice test. Single caller at a time; the
// mutex only guards against a ticker goroutine racing manual calls.
type Session struct {
	mu sync.Mutex

	drawingType string
	user        string

	duration  int
	remaining int
	phase     string

	referenceImage string
	userImage      string

	result   *evaluation.Result
	notifier Notifier
}

// NewSession creates a session in the setup phase.
func NewSession(drawingType, user string, notifier Notifier) *Session {
	return &Session{
		drawingType: drawingType,
		user:        user,
		phase:       PhaseSetup,
		notifier:    notifier,
	}
}

// Start arms the countdown. A zero total duration is rejected.
func (s *Session) Start(hours, minutes, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := hours*3600 + minutes*60 + seconds
	if total <= 0 {
		return ErrZeroDuration
	}
	if s.phase != PhaseSetup {
		return ErrWrongPhase
	}
	s.duration = total
	s.remaining = total
	s.phase = PhaseRunning
	return nil
}

// Tick advances the countdown by one second. Only a running session
// decrements, so a stray tick after pause or end changes nothing.
// Warnings fire when 301 and 61 seconds remain; hitting zero forces
// the ended phase and sounds the alarm.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRunning || s.remaining <= 0 {
		return
	}

	switch s.remaining {
	case 301:
		s.notify("5 minutes remaining")
	case 61:
		s.notify("1 minute remaining")
	}

	s.remaining--
	if s.remaining == 0 {
		s.phase = PhaseEnded
		s.notify("time is up")
		if s.notifier != nil {
			_ = s.notifier.Alarm()
		}
	}
}

// Pause suspends the countdown without losing the remaining time.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return ErrNotRunning
	}
	s.phase = PhasePaused
	return nil
}

// Resume continues the countdown from the paused value.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePaused {
		return ErrWrongPhase
	}
	s.phase = PhaseRunning
	return nil
}

// EndNow stops the test before the timer expires.
func (s *Session) EndNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning && s.phase != PhasePaused {
		return ErrWrongPhase
	}
	s.phase = PhaseEnded
	return nil
}

// Reset returns to setup from any phase, discarding all state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = 0
	s.remaining = 0
	s.referenceImage = ""
	s.userImage = ""
	s.result = nil
	s.phase = PhaseSetup
}

// SetImages attaches the reference and user drawings as data URLs.
func (s *Session) SetImages(referenceImage, userImage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referenceImage = referenceImage
	s.userImage = userImage
}

// Run drives Tick on a one-second ticker until the test ends or the
// context is cancelled.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
			if s.Phase() == PhaseEnded {
				return
			}
		}
	}
}

// Deps are the collaborators Submit needs. Points may be nil for
// anonymous users.
type Deps struct {
	Evaluator Evaluator
	History   HistorySink
	Points    PointsAwarder
}

// Submit grades the attached drawings, persists a history item, and
// awards points when the score clears the threshold. An evaluation
// failure degrades to a zero-score result so the caller always gets
// a result screen, never an error.
func (s *Session) Submit(ctx context.Context, deps Deps) (evaluation.Result, error) {
	s.mu.Lock()
	if s.referenceImage == "" || s.userImage == "" {
		s.mu.Unlock()
		return evaluation.Result{}, ErrMissingImages
	}
	ref, user := s.referenceImage, s.userImage
	s.phase = PhaseEvaluating
	s.mu.Unlock()

	res, err := deps.Evaluator.Evaluate(ctx, user, ref, s.drawingType)
	if err != nil {
		res = zeroScoreResult()
	}

	if deps.History != nil {
		item := HistoryItem{
			UserIdentifier:  s.user,
			DrawingType:     s.drawingType,
			DurationSeconds: s.duration,
			Score:           res.Score,
			Accuracy:        res.Accuracy,
			Errors:          res.Errors,
			Feedback:        res.Feedback,
		}
		_, _ = deps.History.Insert(ctx, item)
	}

	if deps.Points != nil && int(res.Score) > 6 {
		_, _, _ = deps.Points.AddPoints(ctx, s.user, res.Score)
	}

	s.mu.Lock()
	s.result = &res
	s.phase = PhaseEvaluated
	s.mu.Unlock()
	return res, nil
}

// Phase returns the current phase.
func (s *Session) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Duration returns the configured test length in seconds.
func (s *Session) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Result returns the evaluation outcome, nil before evaluation.
func (s *Session) Result() *evaluation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) notify(message string) {
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}

func zeroScoreResult() evaluation.Result {
	return evaluation.Result{
		Score:    0,
		Accuracy: 0,
		Errors:   []string{"Evaluation service unavailable"},
		Feedback: "Your drawing could not be evaluated this time. Please try again later.",
	}
}
