package fixtures

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// Step is one scripted Analyze outcome.
type Step struct {
	Result domain.AnalysisResult
	Err    error
}

// ScriptedPerception replays a fixed sequence of outcomes.
// After the script runs out the last step repeats.
type ScriptedPerception struct {
	mu     sync.Mutex
	steps  []Step
	calls  int
	frames [][]byte
}

// NewScriptedPerception creates a perception client from steps.
func NewScriptedPerception(steps ...Step) *ScriptedPerception {
	return &ScriptedPerception{steps: steps}
}

// Always returns the same outcome on every call.
func Always(result domain.AnalysisResult, err error) *ScriptedPerception {
	return NewScriptedPerception(Step{Result: result, Err: err})
}

func (p *ScriptedPerception) Analyze(ctx context.Context, jpeg []byte) (domain.AnalysisResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, jpeg)
	i := p.calls
	p.calls++
	if len(p.steps) == 0 {
		return domain.AnalysisResult{}, nil
	}
	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	return p.steps[i].Result, p.steps[i].Err
}

// Calls returns how many times Analyze ran.
func (p *ScriptedPerception) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// GoodResult is a focused, well-seated sample.
func GoodResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		ConcentrationScore: 90,
		IsLookingAtScreen:  true,
		Posture:            domain.PostureGood,
		Feedback:           "Nice focus.",
	}
}

// BadResult is a distracted sample with a phone in view.
func BadResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		ConcentrationScore:   25,
		Posture:              domain.PostureSlouching,
		HasElectronicDevice:  true,
		DetectedDistractions: []string{"phone"},
		Feedback:             "Put the phone down.",
	}
}

// StaticFrames is a FrameSource returning a solid frame.
// NotReady makes the first n captures report ErrFrameNotReady.
type StaticFrames struct {
	mu       sync.Mutex
	NotReady int
	Err      error
	captures int
}

func (f *StaticFrames) Capture(ctx context.Context) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures++
	if f.NotReady > 0 {
		f.NotReady--
		return nil, domain.ErrFrameNotReady
	}
	if f.Err != nil {
		return nil, f.Err
	}
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 200, A: 255})
		}
	}
	return img, nil
}

// Captures returns how many times Capture ran.
func (f *StaticFrames) Captures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captures
}

// StubEncoder returns fixed bytes for any frame.
type StubEncoder struct{}

func (StubEncoder) Encode(img image.Image) ([]byte, error) {
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}
