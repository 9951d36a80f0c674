package practice

import (
	"context"
	"errors"
	"testing"

	"drawlab/internal/evaluation"
)

type fakeNotifier struct {
	messages []string
	alarms   int
}

func (n *fakeNotifier) Notify(message string) { n.messages = append(n.messages, message) }
func (n *fakeNotifier) Alarm() error          { n.alarms++; return nil }

type fakeEvaluator struct {
	result evaluation.Result
	err    error
	calls  int
}

func (e *fakeEvaluator) Evaluate(_ context.Context, _, _, _ string) (evaluation.Result, error) {
	e.calls++
	return e.result, e.err
}

type fakeHistory struct {
	items []HistoryItem
}

func (h *fakeHistory) Insert(_ context.Context, item HistoryItem) (HistoryItem, error) {
	h.items = append(h.items, item)
	return item, nil
}

type fakePoints struct {
	calls  int
	scores []float64
}

func (p *fakePoints) AddPoints(_ context.Context, _ string, score float64) (int, int, error) {
	p.calls++
	p.scores = append(p.scores, score)
	return 8, 8, nil
}

const testDrawingType = "orthographic"

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name    string
		h, m, s int
		wantErr error
	}{
		{"zero duration", 0, 0, 0, ErrZeroDuration},
		{"one second", 0, 0, 1, nil},
		{"full hour", 1, 0, 0, nil},
		{"mixed", 0, 30, 30, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(testDrawingType, "student@example.com", nil)
			err := s.Start(tt.h, tt.m, tt.s)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Start(%d,%d,%d) = %v, want %v", tt.h, tt.m, tt.s, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			want := tt.h*3600 + tt.m*60 + tt.s
			if s.Remaining() != want {
				t.Errorf("Remaining() = %d, want %d", s.Remaining(), want)
			}
			if s.Phase() != PhaseRunning {
				t.Errorf("Phase() = %q, want %q", s.Phase(), PhaseRunning)
			}
		})
	}
}

func TestCountdownReachesZeroExactlyOnce(t *testing.T) {
	n := &fakeNotifier{}
	s := NewSession(testDrawingType, "student@example.com", n)
	if err := s.Start(0, 0, 5); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		s.Tick()
	}

	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", s.Remaining())
	}
	if s.Phase() != PhaseEnded {
		t.Errorf("Phase() = %q, want %q", s.Phase(), PhaseEnded)
	}
	if n.alarms != 1 {
		t.Errorf("alarms = %d, want 1", n.alarms)
	}
	found := false
	for _, m := range n.messages {
		if m == "time is up" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing end notification, got %v", n.messages)
	}
}

func TestPauseStopsAndResumeContinues(t *testing.T) {
	s := NewSession(testDrawingType, "student@example.com", nil)
	if err := s.Start(0, 1, 0); err != nil {
		t.Fatal(err)
	}

	s.Tick()
	s.Tick()
	if s.Remaining() != 58 {
		t.Fatalf("Remaining() = %d, want 58", s.Remaining())
	}

	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	s.Tick()
	if s.Remaining() != 58 {
		t.Errorf("paused Remaining() = %d, want 58", s.Remaining())
	}

	if err := s.Resume(); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	if s.Remaining() != 57 {
		t.Errorf("resumed Remaining() = %d, want 57", s.Remaining())
	}
}

func TestRemainingNeverExceedsDuration(t *testing.T) {
	s := NewSession(testDrawingType, "student@example.com", nil)
	if err := s.Start(0, 0, 30); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		s.Tick()
		if r := s.Remaining(); r < 0 || r > s.Duration() {
			t.Fatalf("Remaining() = %d out of [0,%d]", r, s.Duration())
		}
	}
}

func TestCountdownWarnings(t *testing.T) {
	n := &fakeNotifier{}
	s := NewSession(testDrawingType, "student@example.com", n)
	if err := s.Start(0, 5, 2); err != nil { // 302 seconds
		t.Fatal(err)
	}

	s.Tick() // 302 -> 301
	if len(n.messages) != 0 {
		t.Fatalf("warning fired early: %v", n.messages)
	}
	s.Tick() // 301 -> 300, warning fires
	if len(n.messages) != 1 || n.messages[0] != "5 minutes remaining" {
		t.Fatalf("messages = %v, want [5 minutes remaining]", n.messages)
	}

	for s.Remaining() > 60 {
		s.Tick()
	}
	want := []string{"5 minutes remaining", "1 minute remaining"}
	if len(n.messages) != len(want) {
		t.Fatalf("messages = %v, want %v", n.messages, want)
	}
	for i := range want {
		if n.messages[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, n.messages[i], want[i])
		}
	}
}

func TestResetReturnsToSetup(t *testing.T) {
	s := NewSession(testDrawingType, "student@example.com", nil)
	if err := s.Start(0, 10, 0); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	s.SetImages("data:image/png;base64,ref", "data:image/png;base64,user")

	s.Reset()

	if s.Phase() != PhaseSetup {
		t.Errorf("Phase() = %q, want %q", s.Phase(), PhaseSetup)
	}
	if s.Remaining() != 0 || s.Duration() != 0 {
		t.Errorf("Remaining/Duration = %d/%d, want 0/0", s.Remaining(), s.Duration())
	}
	if err := s.Start(0, 0, 10); err != nil {
		t.Errorf("Start after Reset = %v, want nil", err)
	}
}

func TestSubmitRequiresBothImages(t *testing.T) {
	s := NewSession(testDrawingType, "student@example.com", nil)
	_, err := s.Submit(context.Background(), Deps{Evaluator: &fakeEvaluator{}})
	if !errors.Is(err, ErrMissingImages) {
		t.Fatalf("Submit = %v, want ErrMissingImages", err)
	}

	s.SetImages("data:image/png;base64,ref", "")
	_, err = s.Submit(context.Background(), Deps{Evaluator: &fakeEvaluator{}})
	if !errors.Is(err, ErrMissingImages) {
		t.Fatalf("Submit with one image = %v, want ErrMissingImages", err)
	}
}

func TestSubmitPersistsHistoryAndAwardsPoints(t *testing.T) {
	ev := &fakeEvaluator{result: evaluation.Result{Score: 8.5, Accuracy: 88, Feedback: "Solid work"}}
	hist := &fakeHistory{}
	pts := &fakePoints{}

	s := NewSession(testDrawingType, "student@example.com", nil)
	if err := s.Start(0, 10, 0); err != nil {
		t.Fatal(err)
	}
	s.SetImages("data:image/png;base64,ref", "data:image/png;base64,user")

	res, err := s.Submit(context.Background(), Deps{Evaluator: ev, History: hist, Points: pts})
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 8.5 {
		t.Errorf("Score = %v, want 8.5", res.Score)
	}
	if s.Phase() != PhaseEvaluated {
		t.Errorf("Phase() = %q, want %q", s.Phase(), PhaseEvaluated)
	}
	if len(hist.items) != 1 {
		t.Fatalf("history items = %d, want 1", len(hist.items))
	}
	if hist.items[0].DurationSeconds != 600 {
		t.Errorf("history duration = %d, want 600", hist.items[0].DurationSeconds)
	}
	if pts.calls != 1 {
		t.Errorf("points calls = %d, want 1", pts.calls)
	}
}

func TestSubmitScoreJustAboveThresholdDoesNotAward(t *testing.T) {
	// 6.5 does not clear the whole-point threshold.
	ev := &fakeEvaluator{result: evaluation.Result{Score: 6.5, Accuracy: 65}}
	pts := &fakePoints{}

	s := NewSession(testDrawingType, "student@example.com", nil)
	s.SetImages("data:image/png;base64,ref", "data:image/png;base64,user")

	if _, err := s.Submit(context.Background(), Deps{Evaluator: ev, Points: pts}); err != nil {
		t.Fatal(err)
	}
	if pts.calls != 0 {
		t.Errorf("points calls = %d, want 0", pts.calls)
	}
}

func TestSubmitEvaluatorFailureDegradesToZeroScore(t *testing.T) {
	ev := &fakeEvaluator{err: errors.New("backend down")}
	hist := &fakeHistory{}
	pts := &fakePoints{}

	s := NewSession(testDrawingType, "anon-123", nil)
	s.SetImages("data:image/png;base64,ref", "data:image/png;base64,user")

	res, err := s.Submit(context.Background(), Deps{Evaluator: ev, History: hist, Points: pts})
	if err != nil {
		t.Fatalf("Submit = %v, want nil on evaluator failure", err)
	}
	if res.Score != 0 || res.Accuracy != 0 {
		t.Errorf("degraded result = %+v, want zero score", res)
	}
	if len(res.Errors) == 0 || res.Feedback == "" {
		t.Errorf("degraded result missing explanation: %+v", res)
	}
	if len(hist.items) != 1 {
		t.Errorf("history items = %d, want 1 even on failure", len(hist.items))
	}
	if pts.calls != 0 {
		t.Errorf("points calls = %d, want 0", pts.calls)
	}
}
