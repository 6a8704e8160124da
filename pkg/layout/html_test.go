package layout

import (
	"strings"
	"testing"

	"github.com/matzehuels/perimeter/pkg/geom"
)

const samplePage = `<!doctype html>
<html><body>
<div class="rects-wrap no-motion" data-width="1280" data-height="2000" data-dpr="2">
  <section class="pane section" data-left="120" data-top="64" data-width="800" data-height="420">About</section>
  <section class="section pane hero" style="left: 120px; top: 540px; width: 800px; height: 300px">Projects</section>
  <section class="pane" data-width="10" data-height="10">not a section</section>
  <section class="pane section">no geometry</section>
</div>
</body></html>`

func TestParseHTML(t *testing.T) {
	src, err := ParseHTML(strings.NewReader(samplePage), HTMLOptions{})
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	got := src.Sections()
	want := []geom.Rect{
		{X: 120, Y: 64, Width: 800, Height: 420},
		{X: 120, Y: 540, Width: 800, Height: 300},
	}
	if len(got) != len(want) {
		t.Fatalf("sections = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("section %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	c := src.Container()
	if c.Width != 1280 || c.Height != 2000 || c.DPR != 2 {
		t.Errorf("container = %+v", c)
	}
}

func TestParseHTMLWithoutContainer(t *testing.T) {
	page := `<div><div class="pane section" style="left:0px;top:0px;width:50px;height:40px"></div></div>`
	src, err := ParseHTML(strings.NewReader(page), DefaultHTMLOptions)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	c := src.Container()
	if c.Width != 50+fitMargin || c.Height != 40+fitMargin || c.DPR != 1 {
		t.Errorf("container = %+v", c)
	}
}

func TestParseHTMLNoSections(t *testing.T) {
	src, err := ParseHTML(strings.NewReader(`<p>hello</p>`), DefaultHTMLOptions)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if n := len(src.Sections()); n != 0 {
		t.Errorf("sections = %d, want 0", n)
	}
}

func TestParseStyle(t *testing.T) {
	got := parseStyle("color: red; LEFT: 12.5px;top:3px; width: 50%; height: 7px")
	if got["left"] != 12.5 || got["top"] != 3 || got["height"] != 7 {
		t.Errorf("parseStyle = %v", got)
	}
	if _, ok := got["width"]; ok {
		t.Error("percent widths should be ignored")
	}
}

func TestParseHTMLSkipsNonFiniteGeometry(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
	}{
		{"nan width", `data-width="NaN" data-height="10"`},
		{"infinite height", `data-width="10" data-height="Inf"`},
		{"nan left", `data-left="nan" data-width="10" data-height="10"`},
		{"infinite top", `data-top="-Inf" data-width="10" data-height="10"`},
		{"infinite style width", `style="width: +Infpx; height: 10px"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<div class="rects-wrap" data-width="400" data-height="300">
  <div class="pane section" data-left="5" data-top="5" data-width="20" data-height="20"></div>
  <div class="pane section" ` + tt.attrs + `></div>
</div>`
			src, err := ParseHTML(strings.NewReader(page), DefaultHTMLOptions)
			if err != nil {
				t.Fatalf("ParseHTML: %v", err)
			}
			got := src.Sections()
			want := geom.Rect{X: 5, Y: 5, Width: 20, Height: 20}
			if len(got) != 1 || got[0] != want {
				t.Errorf("sections = %+v, want only %+v", got, want)
			}
		})
	}
}

func TestParseHTMLNonFiniteContainerIsFitted(t *testing.T) {
	page := `<div class="rects-wrap" data-width="NaN" data-height="Inf" data-dpr="Inf">
  <div class="pane section" data-left="0" data-top="0" data-width="50" data-height="40"></div>
</div>`
	src, err := ParseHTML(strings.NewReader(page), DefaultHTMLOptions)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	c := src.Container()
	if c.Width != 50+fitMargin || c.Height != 40+fitMargin || c.DPR != DefaultDPR {
		t.Errorf("container = %+v, want fitted with default DPR", c)
	}
}
