package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	sectionHeight = 25.0
	titleHeight   = 30.0
	margin        = 10.0
)

// Widget is one row of a panel.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	// place moves the row so its top-left corner is at (x, y).
	place(x, y float64)
}

type sliderRow struct{ *Slider }

func (r sliderRow) Height() float64 { return r.H + 25 } // slider + label space
func (r sliderRow) place(x, y float64) {
	r.X, r.Y = x, y+15
}
func (r sliderRow) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, r.Label, int(r.X), int(r.Y-15))
	r.Slider.Draw(screen)
}

type checkboxRow struct{ *Checkbox }

func (r checkboxRow) Height() float64 { return r.Size + 6 }
func (r checkboxRow) place(x, y float64) {
	r.X, r.Y = x, y
}
func (r checkboxRow) Draw(screen *ebiten.Image) {
	r.Checkbox.Draw(screen)
	ebitenutil.DebugPrintAt(screen, r.Label, int(r.X+r.Size+8), int(r.Y))
}

type buttonRow struct{ buttons []*Button }

func (r buttonRow) Height() float64 { return r.buttons[0].Height + 6 }
func (r buttonRow) place(x, y float64) {
	for _, b := range r.buttons {
		b.X, b.Y = x, y
		x += b.Width + 6
	}
}
func (r buttonRow) Update() {
	for _, b := range r.buttons {
		b.Update()
	}
}
func (r buttonRow) Draw(screen *ebiten.Image) {
	for _, b := range r.buttons {
		b.Draw(screen)
	}
}

type section struct {
	title   string
	widgets []Widget
}

// Panel is a scrollable column of titled sections.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	Hidden        bool
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []*section
}

// NewPanel creates an empty panel.
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section; following widgets go into it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, &section{title: title})
}

func (p *Panel) add(w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	s := p.sections[len(p.sections)-1]
	s.widgets = append(s.widgets, w)
	p.layout()
}

// AddSlider appends a slider to the current section.
func (p *Panel) AddSlider(label string, min, max, value float64, onChange func(float64)) *Slider {
	s := NewSlider(0, 0, p.Width-2*margin, label, min, max, value)
	s.OnChange = onChange
	p.add(sliderRow{s})
	return s
}

// AddIntSlider appends a slider that snaps to whole numbers.
func (p *Panel) AddIntSlider(label string, min, max, value int, onChange func(int)) *Slider {
	s := NewSlider(0, 0, p.Width-2*margin, label, float64(min), float64(max), 0)
	s.Step = 1
	s.SetValue(float64(value))
	if onChange != nil {
		s.OnChange = func(v float64) { onChange(int(v)) }
	}
	p.add(sliderRow{s})
	return s
}

// AddCheckbox appends a checkbox to the current section.
func (p *Panel) AddCheckbox(label string, value bool, onChange func(bool)) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	c.OnChange = onChange
	p.add(checkboxRow{c})
	return c
}

// AddButtons appends a row of buttons sharing the panel width.
func (p *Panel) AddButtons(buttons ...*Button) {
	if len(buttons) == 0 {
		return
	}
	w := (p.Width - 2*margin - float64(len(buttons)-1)*6) / float64(len(buttons))
	for _, b := range buttons {
		b.Width, b.Height = w, 22
	}
	p.add(buttonRow{buttons})
}

// Contains reports whether a screen point falls on the visible panel.
func (p *Panel) Contains(x, y int) bool {
	if p.Hidden {
		return false
	}
	fx, fy := float64(x), float64(y)
	return fx >= p.X && fx <= p.X+p.Width && fy >= p.Y && fy <= p.Y+p.Height
}

// layout positions every widget for the current scroll offset.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		y += sectionHeight
		for _, w := range s.widgets {
			w.place(p.X+margin, y)
			y += w.Height()
		}
	}
}

func (p *Panel) contentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		h += sectionHeight
		for _, w := range s.widgets {
			h += w.Height()
		}
	}
	return h
}

func (p *Panel) visible(top, height float64) bool {
	return top >= p.Y+titleHeight-4 && top+height <= p.Y+p.Height
}

// Update scrolls with the wheel and lets visible widgets handle input.
func (p *Panel) Update() {
	if p.Hidden {
		return
	}
	mx, my := ebiten.CursorPosition()
	if _, dy := ebiten.Wheel(); dy != 0 && p.Contains(mx, my) {
		p.ScrollOffset -= dy * 20
		maxScroll := max(p.contentHeight()-p.Height+margin, 0)
		p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
	}
	p.layout()

	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		y += sectionHeight
		for _, w := range s.widgets {
			if p.visible(y, w.Height()) {
				w.Update()
			}
			y += w.Height()
		}
	}
}

// Draw renders the panel and its visible widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	sectionBG := color.RGBA{R: 60, G: 60, B: 70, A: 255}
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if s.title != "" && p.visible(y, sectionHeight) {
			vector.FillRect(screen,
				float32(p.X+5), float32(y),
				float32(p.Width-10), 20,
				sectionBG, true)
			ebitenutil.DebugPrintAt(screen, s.title, int(p.X+margin), int(y+2))
		}
		y += sectionHeight
		for _, w := range s.widgets {
			if p.visible(y, w.Height()) {
				w.Draw(screen)
			}
			y += w.Height()
		}
	}
}
