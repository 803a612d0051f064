package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/internal/cli"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids/pkg/ui"
)

// whiteImage is the 1-texel source for all triangles.
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

var (
	background     = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	obstacleColor  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	wallColor      = color.RGBA{R: 120, G: 120, B: 140, A: 255}
	attractorColor = color.RGBA{R: 255, G: 200, B: 0, A: 255}
	predatorColor  = color.RGBA{R: 255, G: 50, B: 50, A: 255}

	avoidColor    = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	alignColor    = color.RGBA{R: 80, G: 255, B: 80, A: 255}
	cohesionColor = color.RGBA{R: 80, G: 80, B: 255, A: 255}
	escapeColor   = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Game renders a Swarm driven by a background Stepper.
type Game struct {
	ctx     context.Context
	swarm   *simulation.Swarm
	stepper *simulation.Stepper
	pacer   *cli.Pacer
	logger  log.Logger
	cfg     *simulation.Config

	snap     *simulation.Snapshot
	vertices []ebiten.Vertex
	indices  []uint16

	panel *ui.Panel

	widgetNumBoids  *ui.Slider
	widgetWalls     *ui.Checkbox
	widgetPredator  *ui.Checkbox
	widgetRules     [3]*ui.Checkbox
	widgetDebugVecs *ui.Checkbox
	startButton     *ui.Button
	cursorButton    *ui.Button

	// Timing instrumentation
	stepNanos atomic.Int64 // last background step, written by the stepper
	drawAvg   float64      // Rolling average in ms
}

// NewGame wires the swarm, its stepper and the control panel together.
func NewGame(ctx context.Context, cfg *simulation.Config, swarm *simulation.Swarm, logger log.Logger) *Game {
	g := &Game{
		ctx:     ctx,
		swarm:   swarm,
		stepper: simulation.NewStepper(swarm, logger),
		pacer:   cli.NewPacer(time.Duration(cfg.FrameDelayMs) * time.Millisecond),
		logger:  logger,
		cfg:     cfg,
	}
	g.buildPanel()
	return g
}

func (g *Game) buildPanel() {
	s := g.swarm
	p := ui.NewPanel(10, 10, 240, float64(g.cfg.WorldHeight)-20, "Boids [tab hides]")

	p.AddSection("Simulation")
	g.startButton = ui.NewButton(0, 0, 0, 0, "Start", g.toggleRunning)
	p.AddButtons(g.startButton, ui.NewButton(0, 0, 0, 0, "Step", g.stepOnce))
	g.widgetNumBoids = p.AddIntSlider("Boids", simulation.MinBoids, simulation.MaxBoids, s.NumBoids(), s.SetNumBoids)
	p.AddSlider("Speed", simulation.MinSpeed, simulation.MaxSpeed, s.Speed(), s.SetSpeed)

	p.AddSection("Rules")
	for _, r := range []simulation.Rule{simulation.RuleAvoid, simulation.RuleAlign, simulation.RuleCohesion} {
		g.widgetRules[r] = p.AddCheckbox(r.String(), s.RuleEnabled(r), func(on bool) { s.SetRuleEnabled(r, on) })
	}

	p.AddSection("Field")
	g.widgetWalls = p.AddCheckbox("Walls", s.WallsEnabled(), s.SetWallsEnabled)
	g.widgetPredator = p.AddCheckbox("Predator", s.PredatorEnabled(), s.SetPredatorEnabled)
	g.cursorButton = ui.NewButton(0, 0, 0, 0, "", g.cycleCursorMode)
	p.AddButtons(g.cursorButton)

	if g.cfg.DebugControls {
		p.AddSection("Debug")
		for _, r := range []simulation.Rule{simulation.RuleAvoid, simulation.RuleAlign, simulation.RuleCohesion} {
			lo, hi := ruleRange(r)
			p.AddIntSlider(r.String()+" distance", lo, hi, int(s.RuleDistance(r)), func(v int) {
				s.SetRuleDistance(r, uint(v))
			})
		}
		p.AddCheckbox("Dead angle", s.DeadAngleEnabled(), s.SetDeadAngleEnabled)
		p.AddIntSlider("Dead angle (deg)", 0, int(simulation.MaxDeadAngle), int(s.DeadAngle()), func(v int) {
			s.SetDeadAngle(uint(v))
		})
		g.widgetDebugVecs = p.AddCheckbox("Rule vectors", s.DebugVectors(), s.SetDebugVectors)
		p.AddIntSlider("Frame delay (ms)", 0, 100, g.cfg.FrameDelayMs, func(v int) {
			g.pacer.SetDelay(time.Duration(v) * time.Millisecond)
		})
	}
	g.panel = p
	g.syncWidgets()
}

func ruleRange(r simulation.Rule) (int, int) {
	switch r {
	case simulation.RuleAvoid:
		return int(simulation.MinAvoidDistance), int(simulation.MaxAvoidDistance)
	case simulation.RuleAlign:
		return int(simulation.MinAlignDistance), int(simulation.MaxAlignDistance)
	default:
		return int(simulation.MinCohesionDistance), int(simulation.MaxCohesionDistance)
	}
}

// Start launches the background stepper.
func (g *Game) Start() {
	g.stepper.Start(g.ctx, g.onStep)
}

// Close stops the background stepper and waits for it.
func (g *Game) Close() {
	g.stepper.Stop()
}

// onStep runs on the stepper goroutine after every step. The pacing wait
// ends as soon as the stepper is stopped.
func (g *Game) onStep(ctx context.Context, elapsed time.Duration) {
	g.stepNanos.Store(int64(elapsed))
	_ = g.pacer.Wait(ctx)
}

func (g *Game) toggleRunning() {
	if g.stepper.IsRunning() {
		g.stepper.Stop()
		return
	}
	g.Start()
}

func (g *Game) stepOnce() {
	start := time.Now()
	if g.stepper.Step() {
		g.stepNanos.Store(int64(time.Since(start)))
	}
}

func (g *Game) cycleCursorMode() {
	mode := (g.swarm.Cursor().Mode + 1) % 3
	g.swarm.SetCursorMode(mode)
	g.logger.Debugf("cursor mode: %s", mode)
}

// syncWidgets reflects engine state changed behind the widgets' back.
func (g *Game) syncWidgets() {
	s := g.swarm
	g.widgetWalls.SetValue(s.WallsEnabled())
	g.widgetPredator.SetValue(s.PredatorEnabled())
	g.widgetWalls.Disabled = s.PredatorEnabled()
	for r, c := range g.widgetRules {
		c.SetValue(s.RuleEnabled(simulation.Rule(r)))
	}
	if g.widgetDebugVecs != nil {
		g.widgetDebugVecs.SetValue(s.DebugVectors())
	}
	g.widgetNumBoids.SetValue(float64(s.NumBoids()))

	if g.stepper.IsRunning() {
		g.startButton.Label = "Stop"
	} else {
		g.startButton.Label = "Start"
	}
	g.cursorButton.Label = "Cursor: " + s.Cursor().Mode.String()
}

func (g *Game) Update() error {
	g.handleKeys()
	g.panel.Update()
	g.handleMouse()
	g.syncWidgets()
	return nil
}

func (g *Game) handleKeys() {
	s := g.swarm
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.toggleRunning()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.stepOnce()
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		s.SetWallsEnabled(!s.WallsEnabled())
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		s.SetPredatorEnabled(!s.PredatorEnabled())
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.cycleCursorMode()
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		s.SetDebugVectors(!s.DebugVectors())
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		s.SetDeadAngleEnabled(!s.DeadAngleEnabled())
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		s.SetRuleEnabled(simulation.RuleAvoid, !s.RuleEnabled(simulation.RuleAvoid))
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		s.SetRuleEnabled(simulation.RuleAlign, !s.RuleEnabled(simulation.RuleAlign))
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		s.SetRuleEnabled(simulation.RuleCohesion, !s.RuleEnabled(simulation.RuleCohesion))
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.panel.Hidden = !g.panel.Hidden
	}
}

// handleMouse feeds the cursor to the swarm. Left click adds a field
// obstacle; right click or ctrl+click removes one.
func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	w, h := g.swarm.Sizes()
	inField := mx >= 0 && my >= 0 && mx < w && my < h && !g.panel.Contains(mx, my)
	if !inField {
		g.swarm.SetCursorPos(simulation.CursorAway)
		return
	}
	pos := geometry.Vector2D{X: float64(mx), Y: float64(my)}
	g.swarm.SetCursorPos(pos)

	remove := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) ||
		(inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && ebiten.IsKeyPressed(ebiten.KeyControl))
	switch {
	case remove:
		g.swarm.RemoveObstacleAt(pos)
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.swarm.AddObstacle(pos, simulation.ObstacleFieldPoint)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	g.snap = g.swarm.Snapshot(g.snap)

	for _, o := range g.snap.Obstacles {
		drawObstacle(screen, o)
	}
	g.drawBoids(screen)
	if g.swarm.DebugVectors() {
		for i := range g.snap.Boids {
			drawDebugVectors(screen, &g.snap.Boids[i])
		}
	}

	g.panel.Draw(screen)

	// c: last step, d: draw average
	msg := fmt.Sprintf("c: %2dms d: %2.0fms %.0f fps | step %d",
		time.Duration(g.stepNanos.Load()).Milliseconds(), g.drawAvg, ebiten.ActualFPS(), g.snap.Step)
	ebitenutil.DebugPrintAt(screen, msg, screen.Bounds().Dx()-260, screen.Bounds().Dy()-20)
}

// drawBoids batches every boid into one DrawTriangles call per 16-bit index window.
func (g *Game) drawBoids(screen *ebiten.Image) {
	const perCall = math.MaxUint16 / 3
	boids := g.snap.Boids
	for len(boids) > 0 {
		n := min(len(boids), perCall)
		g.vertices, g.indices = g.vertices[:0], g.indices[:0]
		for i := range boids[:n] {
			b := &boids[i]
			r, gr, bl := proximityColor(b.Proximity)
			g.vertices, g.indices = appendTriangle(g.vertices, g.indices, b.Pos, b.Vel.Angle(), 6, 5, r, gr, bl)
		}
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
		boids = boids[n:]
	}
}

// proximityColor fades from white to orange as neighbors close in.
func proximityColor(p float64) (float32, float32, float32) {
	return 1, float32(1 - 0.5*p), float32(1 - p)
}

// appendTriangle adds an arrowhead pointing along angle.
func appendTriangle(vs []ebiten.Vertex, is []uint16, pos geometry.Vector2D, angle, tip, side float64, r, g, b float32) ([]ebiten.Vertex, []uint16) {
	base := uint16(len(vs))
	corner := func(a, l float64) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(pos.X + math.Cos(a)*l),
			DstY: float32(pos.Y + math.Sin(a)*l),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: 1,
		}
	}
	vs = append(vs, corner(angle, tip), corner(angle+2.5, side), corner(angle-2.5, side))
	is = append(is, base, base+1, base+2)
	return vs, is
}

func drawObstacle(screen *ebiten.Image, o simulation.Obstacle) {
	p := o.Position()
	x, y := float32(p.X), float32(p.Y)
	switch o.Kind() {
	case simulation.ObstacleWall:
		vector.FillCircle(screen, x, y, float32(simulation.WallSpacing/2), wallColor, true)
	case simulation.ObstacleAttractant:
		vector.StrokeCircle(screen, x, y, float32(simulation.ObstacleRadius), 2, attractorColor, true)
	case simulation.ObstaclePredator:
		pr := o.(simulation.Predator)
		vs, is := appendTriangle(nil, nil, pr.Pos, pr.Vel.Angle(), 12, 10, 1, 0.2, 0.2)
		screen.DrawTriangles(vs, is, whiteImage, &ebiten.DrawTrianglesOptions{})
		vector.StrokeCircle(screen, x, y, float32(simulation.PredatorAvoidRadius), 1,
			color.RGBA{R: predatorColor.R, G: predatorColor.G, B: predatorColor.B, A: 60}, true)
	default:
		vector.FillCircle(screen, x, y, float32(simulation.ObstacleRadius), obstacleColor, true)
	}
}

func drawDebugVectors(screen *ebiten.Image, b *simulation.Boid) {
	if b.Debug == nil {
		return
	}
	line := func(v geometry.Vector2D, scale float64, clr color.Color) {
		if v.IsNull() {
			return
		}
		end := b.Pos.Add(v.Mul(scale))
		vector.StrokeLine(screen, float32(b.Pos.X), float32(b.Pos.Y), float32(end.X), float32(end.Y), 1, clr, true)
	}
	line(b.Debug.Avoid, 10, avoidColor)
	line(b.Debug.Align, 10, alignColor)
	line(b.Debug.Cohesion, 40, cohesionColor)
	line(b.Debug.Obstacle, 10, escapeColor)
}

// Layout follows the window so the field always fills it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.swarm.Resize(outsideWidth, outsideHeight)
	g.panel.Height = float64(outsideHeight) - 20
	return outsideWidth, outsideHeight
}
