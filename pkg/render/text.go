package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/geom"
)

// Cell glyphs.
const (
	glyphHorizontal = '─'
	glyphVertical   = '│'
	glyphDiagonal   = '·'
	glyphNode       = '●'
	glyphParticle   = '•'
)

// TextOption configures terminal rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	color bool
	trail bool
}

// WithPlainText disables ANSI colors.
func WithPlainText() TextOption { return func(r *textRenderer) { r.color = false } }

// WithTextTrail toggles cursor trail particles.
func WithTextTrail(on bool) TextOption { return func(r *textRenderer) { r.trail = on } }

type cell struct {
	glyph rune
	color animator.Color
	layer int // higher layers overwrite lower ones
}

const (
	layerLine = iota + 1
	layerTrail
	layerNode
)

// canvas maps container CSS pixels onto a cols×rows cell grid.
type canvas struct {
	cols, rows int
	sx, sy     float64
	cells      []cell
}

func newCanvas(c geom.Point, cols, rows int) *canvas {
	cv := &canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	if c.X > 0 {
		cv.sx = float64(cols) / c.X
	}
	if c.Y > 0 {
		cv.sy = float64(rows) / c.Y
	}
	return cv
}

// cellAt converts container coordinates to a cell position.
func (cv *canvas) cellAt(p geom.Point) (int, int) {
	return int(math.Floor(p.X * cv.sx)), int(math.Floor(p.Y * cv.sy))
}

func (cv *canvas) set(col, row int, c cell) {
	if col < 0 || row < 0 || col >= cv.cols || row >= cv.rows {
		return
	}
	i := row*cv.cols + col
	if cv.cells[i].layer <= c.layer {
		cv.cells[i] = c
	}
}

func (cv *canvas) segment(a, b geom.Point, color animator.Color) {
	dx := (b.X - a.X) * cv.sx
	dy := (b.Y - a.Y) * cv.sy
	glyph := glyphDiagonal
	switch {
	case math.Abs(dy) <= 0.5*math.Abs(dx):
		glyph = glyphHorizontal
	case math.Abs(dx) <= 0.5*math.Abs(dy):
		glyph = glyphVertical
	}
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))*2)) + 1
	for i := 0; i <= steps; i++ {
		col, row := cv.cellAt(a.Lerp(b, float64(i)/float64(steps)))
		cv.set(col, row, cell{glyph: glyph, color: color, layer: layerLine})
	}
}

func (cv *canvas) polygon(pts []geom.Point, color animator.Color) {
	for i := range pts {
		cv.segment(pts[i], pts[(i+1)%len(pts)], color)
	}
}

// RenderText draws a frame as a cols×rows block of terminal cells. Nodes are
// tinted along their box's gradient; lines use the line color.
func RenderText(f animator.Frame, cols, rows int, opts ...TextOption) string {
	r := textRenderer{color: true, trail: true}
	for _, opt := range opts {
		opt(&r)
	}
	if cols <= 0 || rows <= 0 {
		return ""
	}

	cv := newCanvas(geom.Pt(f.Container.Width, f.Container.Height), cols, rows)
	s := f.State
	pal := f.Palette

	for _, c := range s.Corners {
		cv.polygon(SectionPath(c), pal.Line)
	}
	if path := PerimeterPath(s); len(path) > 0 {
		cv.polygon(path, pal.Line)
	}
	if r.trail {
		for _, p := range f.Trail {
			col, row := cv.cellAt(p.Pos)
			cv.set(col, row, cell{glyph: glyphParticle, color: p.Color, layer: layerTrail})
		}
	}
	for _, c := range s.Corners {
		for _, n := range nodes(c) {
			col, row := cv.cellAt(n)
			cv.set(col, row, cell{glyph: glyphNode, color: gradientAt(n, c.TL, c.BR, pal), layer: layerNode})
		}
	}
	if o := s.Outer; o != nil {
		for _, h := range s.Hinges {
			col, row := cv.cellAt(h.Pos)
			cv.set(col, row, cell{glyph: glyphNode, color: gradientAt(h.Pos, o.TopLeft(), o.BottomRight(), pal), layer: layerNode})
		}
	}

	return cv.String(r.color)
}

// gradientAt projects p onto the from→to axis and blends the node colors.
func gradientAt(p, from, to geom.Point, pal animator.Palette) animator.Color {
	axis := to.Sub(from)
	l2 := axis.X*axis.X + axis.Y*axis.Y
	if l2 == 0 {
		return pal.NodeA
	}
	d := p.Sub(from)
	return pal.NodeA.Blend(pal.NodeB, (d.X*axis.X+d.Y*axis.Y)/l2)
}

func (cv *canvas) String(color bool) string {
	var sb strings.Builder
	for row := 0; row < cv.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		line := cv.cells[row*cv.cols : (row+1)*cv.cols]
		for i := 0; i < len(line); {
			// group runs of identically styled cells
			j := i + 1
			for j < len(line) && line[j].layer == line[i].layer && line[j].color == line[i].color {
				j++
			}
			var run strings.Builder
			for _, c := range line[i:j] {
				if c.layer == 0 {
					run.WriteByte(' ')
				} else {
					run.WriteRune(c.glyph)
				}
			}
			if color && line[i].layer != 0 {
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(line[i].color.Hex()))
				sb.WriteString(style.Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
			i = j
		}
	}
	return sb.String()
}
