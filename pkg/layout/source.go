// Package layout supplies the section geometry the animator outlines.
//
// The animator never touches a document directly. Anything that can report a
// container size and a list of section rectangles can drive it:
//
//   - [Static]: fixed geometry, for tests and programmatic use
//   - [LoadScene]: a TOML scene file
//   - [ParseHTML]: sections discovered in an HTML document by class name
//
// Section rectangles are in CSS pixels relative to the container's top-left
// corner, listed in document order.
package layout

import (
	"math"
	"sync"

	"github.com/matzehuels/perimeter/pkg/geom"
)

// DefaultDPR is the device pixel ratio used when a source does not set one.
const DefaultDPR = 1.0

// finite reports whether every value is neither NaN nor infinite.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Container describes the drawing surface the animator is layered behind.
type Container struct {
	Width  float64 // CSS pixels
	Height float64 // CSS pixels (full scroll height)
	DPR    float64 // device pixel ratio, >= 1
}

// Normalized returns c with the device pixel ratio clamped to at least 1.
func (c Container) Normalized() Container {
	c.DPR = max(1, c.DPR)
	return c
}

// Source reports the current container and section geometry.
// Implementations never fail at query time: a source that lost its sections
// returns an empty slice.
type Source interface {
	Container() Container
	Sections() []geom.Rect
}

// Resizable is implemented by sources whose container can be resized by the
// host (window resize).
type Resizable interface {
	Source
	SetContainer(Container)
}

// Static is a fixed in-memory layout. It is safe for concurrent use.
type Static struct {
	mu        sync.RWMutex
	container Container
	sections  []geom.Rect
}

// NewStatic creates a source with the given container and sections.
func NewStatic(c Container, sections []geom.Rect) *Static {
	return &Static{container: c.Normalized(), sections: append([]geom.Rect(nil), sections...)}
}

// Container returns the current container.
func (s *Static) Container() Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.container
}

// Sections returns a copy of the section rectangles.
func (s *Static) Sections() []geom.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]geom.Rect(nil), s.sections...)
}

// SetContainer replaces the container geometry.
func (s *Static) SetContainer(c Container) {
	s.mu.Lock()
	s.container = c.Normalized()
	s.mu.Unlock()
}

// SetSections replaces the tracked sections, as a DOM mutation would.
func (s *Static) SetSections(sections []geom.Rect) {
	s.mu.Lock()
	s.sections = append([]geom.Rect(nil), sections...)
	s.mu.Unlock()
}

var _ Resizable = (*Static)(nil)

// fitHeight returns a container height that covers every section plus margin
// when the scene does not specify one.
func fitHeight(sections []geom.Rect, margin float64) float64 {
	h := 0.0
	for _, r := range sections {
		h = max(h, r.Y+r.Height)
	}
	return h + margin
}

// fitWidth is fitHeight for the horizontal axis.
func fitWidth(sections []geom.Rect, margin float64) float64 {
	w := 0.0
	for _, r := range sections {
		w = max(w, r.X+r.Width)
	}
	return w + margin
}
