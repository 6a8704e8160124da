package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/geom"
)

const sampleScene = `
[container]
width = 1000
height = 800
dpr = 2

[[section]]
id = "about"
left = 100
top = 80
width = 600
height = 300

[[section]]
id = "projects"
left = 100
top = 440
width = 600
height = 200

[[cursor]]
tick = 0
x = 90
y = 70

[[cursor]]
tick = 20
leave = true
`

func TestReadScene(t *testing.T) {
	sc, err := ReadScene(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("ReadScene: %v", err)
	}

	if len(sc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sc.Sections))
	}
	if sc.Sections[1].ID != "projects" {
		t.Errorf("section order not preserved: %q", sc.Sections[1].ID)
	}
	if len(sc.Cursor) != 2 || !sc.Cursor[1].Leave {
		t.Errorf("cursor script = %+v", sc.Cursor)
	}

	src := sc.Source()
	c := src.Container()
	if c.Width != 1000 || c.Height != 800 || c.DPR != 2 {
		t.Errorf("container = %+v", c)
	}
	want := geom.Rect{X: 100, Y: 80, Width: 600, Height: 300}
	if got := src.Sections()[0]; got != want {
		t.Errorf("first rect = %+v, want %+v", got, want)
	}
}

func TestSceneFitsContainer(t *testing.T) {
	sc, err := ReadScene(strings.NewReader(`
[[section]]
left = 10
top = 20
width = 100
height = 50
`))
	if err != nil {
		t.Fatalf("ReadScene: %v", err)
	}
	c := sc.Source().Container()
	if c.Width != 110+fitMargin || c.Height != 70+fitMargin {
		t.Errorf("fitted container = %+v", c)
	}
	if c.DPR != 1 {
		t.Errorf("DPR = %v, want 1", c.DPR)
	}
}

func TestReadSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad toml", "[container\nwidth = 1"},
		{"negative size", "[[section]]\nwidth = -1\nheight = 10"},
		{"unordered cursor", "[[cursor]]\ntick = 5\n[[cursor]]\ntick = 1"},
		{"nan width", "[[section]]\nwidth = nan\nheight = 10"},
		{"infinite height", "[[section]]\nwidth = 10\nheight = inf"},
		{"nan left", "[[section]]\nleft = nan\nwidth = 10\nheight = 10"},
		{"negative infinite top", "[[section]]\ntop = -inf\nwidth = 10\nheight = 10"},
		{"nan container", "[container]\nwidth = nan\nheight = 100"},
		{"infinite container", "[container]\nwidth = 100\nheight = inf"},
		{"infinite dpr", "[container]\nwidth = 100\nheight = 100\ndpr = inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadScene(strings.NewReader(tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidLayout) {
				t.Errorf("error = %v, want INVALID_LAYOUT", err)
			}
		})
	}
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "scene.toml")
	if err := os.WriteFile(tomlPath, []byte(sampleScene), 0o644); err != nil {
		t.Fatal(err)
	}
	src, sc, err := Load(tomlPath)
	if err != nil {
		t.Fatalf("Load toml: %v", err)
	}
	if len(src.Sections()) != 2 || len(sc.Cursor) != 2 {
		t.Errorf("toml load: %d sections, %d cursor samples", len(src.Sections()), len(sc.Cursor))
	}

	if _, _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	if _, _, err := Load(filepath.Join(dir, "scene.yaml")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad extension error = %v, want INVALID_INPUT", err)
	}
}

func TestStaticSetters(t *testing.T) {
	s := NewStatic(Container{Width: 100, Height: 100}, nil)
	if s.Container().DPR != 1 {
		t.Errorf("DPR should be normalized to 1, got %v", s.Container().DPR)
	}
	s.SetContainer(Container{Width: 300, Height: 200, DPR: 0.5})
	if c := s.Container(); c.Width != 300 || c.DPR != 1 {
		t.Errorf("SetContainer = %+v", c)
	}
	s.SetSections([]geom.Rect{{X: 1, Y: 2, Width: 3, Height: 4}})
	got := s.Sections()
	got[0].X = 99
	if s.Sections()[0].X != 1 {
		t.Error("Sections must return a copy")
	}
}
