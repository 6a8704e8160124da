package layout

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/geom"
)

// fitMargin is added below and to the right of the last section when a scene
// leaves the container size unset, so outlines and hinges have room.
const fitMargin = 64

// Scene is the TOML scene file format.
//
//	[container]
//	width = 1200
//	height = 900
//	dpr = 2
//
//	[[section]]
//	id = "about"
//	left = 120
//	top = 80
//	width = 640
//	height = 320
//
//	[[cursor]]
//	tick = 10
//	x = 300
//	y = 90
type Scene struct {
	Container SceneContainer `toml:"container"`
	Sections  []SceneSection `toml:"section"`
	Cursor    []CursorSample `toml:"cursor"`
}

// SceneContainer is the [container] table.
type SceneContainer struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	DPR    float64 `toml:"dpr"`
}

// SceneSection is one [[section]] entry.
type SceneSection struct {
	ID     string  `toml:"id"`
	Left   float64 `toml:"left"`
	Top    float64 `toml:"top"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// CursorSample moves the cursor at a given tick of a scripted run.
// Leave = true moves it off the container instead.
type CursorSample struct {
	Tick  int     `toml:"tick"`
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Leave bool    `toml:"leave"`
}

// LoadScene reads and validates a TOML scene file.
func LoadScene(path string) (*Scene, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "scene not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadScene(f)
}

// ReadScene decodes a TOML scene from r.
func ReadScene(r io.Reader) (*Scene, error) {
	var s Scene
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode scene")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects non-finite geometry, sections with negative sizes and
// unordered cursor scripts.
func (s *Scene) Validate() error {
	for i, sec := range s.Sections {
		if !finite(sec.Left, sec.Top, sec.Width, sec.Height) {
			return errors.New(errors.ErrCodeInvalidLayout, "section %s has a non-finite coordinate", sectionName(i, sec))
		}
		if sec.Width < 0 || sec.Height < 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "section %s has negative size", sectionName(i, sec))
		}
	}
	for i := 1; i < len(s.Cursor); i++ {
		if s.Cursor[i].Tick < s.Cursor[i-1].Tick {
			return errors.New(errors.ErrCodeInvalidLayout, "cursor samples must be ordered by tick (sample %d)", i)
		}
	}
	if !finite(s.Container.Width, s.Container.Height, s.Container.DPR) {
		return errors.New(errors.ErrCodeInvalidLayout, "container has a non-finite size")
	}
	if s.Container.Width < 0 || s.Container.Height < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "container has negative size")
	}
	return nil
}

func sectionName(i int, s SceneSection) string {
	if s.ID != "" {
		return fmt.Sprintf("%q", s.ID)
	}
	return fmt.Sprintf("#%d", i)
}

// Rects returns the section rectangles in file order.
func (s *Scene) Rects() []geom.Rect {
	rects := make([]geom.Rect, len(s.Sections))
	for i, sec := range s.Sections {
		rects[i] = geom.Rect{X: sec.Left, Y: sec.Top, Width: sec.Width, Height: sec.Height}
	}
	return rects
}

// Source returns a static source for the scene. A zero container width or
// height is fitted to the sections.
func (s *Scene) Source() *Static {
	rects := s.Rects()
	c := Container{Width: s.Container.Width, Height: s.Container.Height, DPR: s.Container.DPR}
	if c.Width == 0 {
		c.Width = fitWidth(rects, fitMargin)
	}
	if c.Height == 0 {
		c.Height = fitHeight(rects, fitMargin)
	}
	if c.DPR == 0 {
		c.DPR = DefaultDPR
	}
	return NewStatic(c, rects)
}
