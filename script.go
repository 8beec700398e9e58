package pixelcanvas

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a gesture script.
type scriptStep struct {
	Action   string  `json:"action"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	FromX    float64 `json:"fromX,omitempty"`
	FromY    float64 `json:"fromY,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
	Delta    float64 `json:"delta,omitempty"`
	FromDist float64 `json:"fromDist,omitempty"`
	ToDist   float64 `json:"toDist,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences injected gestures across frames for automated replay.
// Attach it with Gestures.SetScript.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON gesture script:
//
//	{"steps": [
//	  {"action": "click", "x": 120, "y": 80},
//	  {"action": "drag", "fromX": 10, "fromY": 10, "toX": 60, "toY": 10, "frames": 6},
//	  {"action": "wheel", "x": 100, "y": 100, "delta": -100},
//	  {"action": "pinch", "x": 100, "y": 100, "fromDist": 50, "toDist": 100, "frames": 4},
//	  {"action": "wait", "frames": 10}
//	]}
func LoadScript(jsonData []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "click", "drag", "wheel", "pinch", "wait", "move":
		default:
			return nil, fmt.Errorf("parse gesture script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// SetScript attaches a script. It advances one step per Engine.Update.
func (g *Gestures) SetScript(s *Script) {
	g.script = s
}

// Done reports whether every step has been executed.
func (s *Script) Done() bool {
	return s.done
}

// step advances the script by one frame.
func (s *Script) step(g *Gestures) {
	if s.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(g.injectQueue) > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "click":
		g.InjectClick(st.X, st.Y)
	case "move":
		g.InjectMove(st.X, st.Y)
	case "drag":
		g.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wheel":
		g.InjectWheel(st.X, st.Y, st.Delta)
	case "pinch":
		g.InjectPinch(st.X, st.Y, st.FromDist, st.ToDist, st.Frames)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(g.injectQueue) == 0 {
		s.done = true
	}
}
