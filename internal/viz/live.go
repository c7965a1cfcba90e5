package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/packmin/internal/boundary"
	"github.com/san-kum/packmin/internal/experiment"
	"github.com/san-kum/packmin/internal/fire"
	"github.com/san-kum/packmin/internal/metrics"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	maxStepsPerTick = 512
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a minimizer from the bubbletea update loop and draws the
// particles projected onto their first two axes.
type Model struct {
	exp          *experiment.Experiment
	minimizer    *fire.Minimizer
	trace        *metrics.Trace
	dts          []float64
	canvas       *Canvas
	running      bool
	stepsPerTick int
	g0           float64
	showHelp     bool
	err          error
}

// NewModel builds a minimizer for exp. stepsPerTick iterations run on every
// frame while the view is not paused.
func NewModel(exp *experiment.Experiment, stepsPerTick int) (Model, error) {
	trace := metrics.NewTrace(historyCapacity)
	m, err := exp.NewMinimizer(fire.WithObserver(trace), fire.WithLogEvery(0))
	if err != nil {
		return Model{}, err
	}
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return Model{
		exp:          exp,
		minimizer:    m,
		trace:        trace,
		dts:          make([]float64, 0, historyCapacity),
		canvas:       NewCanvas(width, height),
		running:      true,
		stepsPerTick: min(stepsPerTick, maxStepsPerTick),
		g0:           m.State().GradNorm(exp.Params().Criterion),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = min(2*m.stepsPerTick, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick iterations. An evaluation error pauses
// the view and is shown instead of the charts.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick && m.minimizer.Status() == fire.Running; i++ {
		if err := m.minimizer.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.dts = append(m.dts, m.minimizer.State().Dt)
		if len(m.dts) > historyCapacity {
			m.dts = m.dts[1:]
		}
	}
}

func (m *Model) reset() {
	if err := m.minimizer.Reset(m.exp.Start()); err != nil {
		m.err = err
		return
	}
	m.trace.Reset()
	m.dts = m.dts[:0]
	m.err = nil
	m.running = true
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("ERROR")
	case m.minimizer.Status() == fire.Converged:
		return StatusConverged.Render("CONVERGED")
	case m.minimizer.Status() == fire.Stalled:
		return StatusStalled.Render("STALLED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

// progress is how far the gradient norm has fallen from its starting value
// toward the tolerance, on a log scale.
func (m Model) progress() float64 {
	tol := m.exp.Params().Tol
	g := m.minimizer.State().GradNorm(m.exp.Params().Criterion)
	if g < tol || m.g0 <= tol {
		return 1
	}
	if g <= 0 || m.g0 <= 0 {
		return 0
	}
	return math.Max(0, math.Log(m.g0/g)/math.Log(m.g0/tol))
}

func (m Model) View() string {
	m.draw()
	s := m.minimizer.State()
	p := m.exp.Params()

	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.exp.Config().Name)) + "\n")
	b.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Iteration", fmt.Sprintf("%d / %d", s.Iter, p.MaxIter))
	row("Energy", fmt.Sprintf("%.8g", s.Energy))
	row(p.Criterion.String(), fmt.Sprintf("%.3e", s.GradNorm(p.Criterion)))
	row("dt", fmt.Sprintf("%.4g", s.Dt))
	row("alpha", fmt.Sprintf("%.4g", s.Alpha))
	row("Rejected", fmt.Sprintf("%d", s.Rejected))
	row("Speed", fmt.Sprintf("%d it/frame", m.stepsPerTick))
	b.WriteString("\n" + ProgressBar(m.progress(), 30) + "\n")

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.trace.Len() > 1 {
		energy := asciigraph.Plot(m.trace.Energies, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		grad := asciigraph.Plot(m.trace.LogGradNorms(), asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("log10 "+p.Criterion.String()))
		b.WriteString("\n" + graphStyle.Render(energy) + "\n\n" + graphStyle.Render(grad) + "\n")
		b.WriteString("\n" + labelStyle.Render("dt") + Sparkline(m.dts, 30) + "\n")
	}

	b.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit +/-:Speed ?:Help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(b.String()))
	if m.showHelp {
		return `
  Space  pause or resume
  R      restart from the initial configuration
  + / -  double or halve iterations per frame
  Q      quit
  ?      toggle this help
` + "\n" + view
	}
	return view
}

// draw renders the current configuration. Periodic systems show their box;
// open systems are framed by the particle extent.
func (m Model) draw() {
	m.canvas.Clear()
	full, err := m.exp.Inflate(m.minimizer.X())
	if err != nil {
		return
	}
	pot := m.exp.Potential()
	dim := pot.Dim()
	radii := m.exp.Config().System.Radii

	xy := func(i int) (float64, float64) {
		if dim == 1 {
			return full[i], 0
		}
		return full[dim*i], full[dim*i+1]
	}

	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	per, periodic := pot.Boundary().(*boundary.Periodic)
	if periodic {
		box := per.Box()
		xmin, ymin, xmax = 0, 0, box[0]
		ymax = 0
		if dim > 1 {
			ymax = box[1]
		}
	} else {
		for i := range radii {
			x, y := xy(i)
			xmin, xmax = math.Min(xmin, x-radii[i]), math.Max(xmax, x+radii[i])
			ymin, ymax = math.Min(ymin, y-radii[i]), math.Max(ymax, y+radii[i])
		}
	}

	proj := newProjection(m.canvas, xmin, ymin, xmax, ymax)
	if periodic {
		x0, y0 := proj.point(xmin, ymax)
		x1, y1 := proj.point(xmax, ymin)
		m.canvas.DrawRect(x0, y0, x1, y1)
	}
	for i, r := range radii {
		cx, cy := proj.point(xy(i))
		m.canvas.DrawCircle(cx, cy, proj.length(r))
	}
}
