package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider picks a number in [Min, Max] by dragging a knob.
type Slider struct {
	Label    string
	X, Y     float64
	W, H     float64
	Min, Max float64
	Value    float64
	// Step snaps values to multiples of itself when positive.
	Step float64
	// OnChange fires when the user moves the knob, not on SetValue.
	OnChange func(float64)

	dragging bool
}

// NewSlider creates a slider. Width excludes the value readout.
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		X:     x,
		Y:     y,
		W:     width,
		H:     8,
		Min:   min,
		Max:   max,
	}
	s.Value = s.clamp(value)
	return s
}

// SetValue moves the knob without firing OnChange.
func (s *Slider) SetValue(v float64) {
	s.Value = s.clamp(v)
}

func (s *Slider) clamp(v float64) float64 {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Min(math.Max(v, s.Min), s.Max)
}

// valueAt maps a cursor x coordinate to a slider value.
func (s *Slider) valueAt(mx float64) float64 {
	if s.W <= 0 {
		return s.Min
	}
	t := (mx - s.X) / s.W
	return s.clamp(s.Min + t*(s.Max-s.Min))
}

// Update drags the knob while the left button is held over the track.
func (s *Slider) Update() {
	cx, cy := ebiten.CursorPosition()
	mx, my := float64(cx), float64(cy)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	over := mx >= s.X-4 && mx <= s.X+s.W+4 && my >= s.Y-6 && my <= s.Y+s.H+6
	if !pressed {
		s.dragging = false
		return
	}
	if over {
		s.dragging = true
	}
	if !s.dragging {
		return
	}
	if v := s.valueAt(mx); v != s.Value {
		s.Value = v
		if s.OnChange != nil {
			s.OnChange(v)
		}
	}
}

// Draw renders the track, the knob and the current value.
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(s.X), float32(s.Y+s.H/2-2),
		float32(s.W), 4,
		color.RGBA{R: 90, G: 90, B: 100, A: 255}, true)

	t := 0.0
	if s.Max > s.Min {
		t = (s.Value - s.Min) / (s.Max - s.Min)
	}
	knobX := s.X + t*s.W
	vector.FillCircle(screen, float32(knobX), float32(s.Y+s.H/2), float32(s.H/2+2),
		color.RGBA{R: 100, G: 200, B: 100, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, s.format(), int(s.X+s.W-40), int(s.Y-16))
}

func (s *Slider) format() string {
	if s.Step >= 1 {
		return fmt.Sprintf("%5.0f", s.Value)
	}
	return fmt.Sprintf("%5.2f", s.Value)
}
