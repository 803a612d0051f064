package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a simple UI widget for boolean values
type Checkbox struct {
	Label string
	Value bool
	X, Y  float64
	Size  float64
	// Disabled boxes are drawn greyed out and ignore clicks.
	Disabled bool
	// OnChange fires on user toggles only.
	OnChange func(bool)

	clicked bool // Track if already clicked this frame
}

// NewCheckbox creates a new checkbox instance
func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  16,
	}
}

// SetValue changes the state without firing OnChange.
func (c *Checkbox) SetValue(v bool) { c.Value = v }

// Update checks for mouse interaction
func (c *Checkbox) Update() {
	mx, my := ebiten.CursorPosition()

	isOver := float64(mx) >= c.X && float64(mx) <= c.X+c.Size &&
		float64(my) >= c.Y && float64(my) <= c.Y+c.Size

	// Toggle on click (with debouncing)
	if isOver && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !c.clicked && !c.Disabled {
			c.Value = !c.Value
			if c.OnChange != nil {
				c.OnChange(c.Value)
			}
		}
		c.clicked = true
	} else {
		c.clicked = false
	}
}

// Draw renders the checkbox
func (c *Checkbox) Draw(screen *ebiten.Image) {
	border := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	fill := color.RGBA{R: 100, G: 200, B: 100, A: 255}
	if c.Disabled {
		border = color.RGBA{R: 110, G: 110, B: 110, A: 255}
		fill = color.RGBA{R: 80, G: 110, B: 80, A: 255}
	}

	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2, border, true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.Size-4), float32(c.Size-4),
			fill, true)
	}
}
