// Package pkg provides the core libraries for Perimeter section-outline
// animation.
//
// # Overview
//
// Perimeter draws a glowing outline around every content section of a page.
// Each outline is a quadrilateral through four corner nodes that the cursor
// pushes away and that spring back toward their rest corners. A global
// perimeter around all sections carries hinge nodes that drift along its
// edges. The pkg directory is organized into three areas:
//
//  1. Simulation - [geom], [layout], [animator], [scheduler]
//  2. Output - [render], [pipeline], [cache]
//  3. Serving - [session], [server], [httputil]
//
// # Architecture
//
// The typical data flow:
//
//	Scene file (TOML) or HTML page
//	         ↓
//	    [layout] package (container + section rectangles)
//	         ↓
//	    [animator] package (measure → step per tick → frame snapshot)
//	         ↓
//	    [render] package (SVG/PNG/text)
//
// [pipeline] runs this flow deterministically for the CLI and caches every
// stage. [server] runs one live animator per viewer session instead.
//
// # Quick Start
//
//	src, _, err := layout.Load("site.toml")
//	if err != nil {
//	    return err
//	}
//	anim, err := animator.New(src, animator.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	loop := scheduler.NewLoop(anim.Config().FPS, anim.Tick)
//	loop.Start(ctx)
//	defer loop.Stop()
//
//	anim.MoveCursor(120, 90, time.Now())
//	svg := render.RenderSVG(anim.Frame())
//
// # Supporting Packages
//
// [config] - TOML settings with environment overrides.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hook interfaces for frames, pipeline stages, the cache
// and HTTP requests.
//
// [buildinfo] - Version metadata set at link time.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/geom
// [layout]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/layout
// [animator]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/animator
// [scheduler]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/scheduler
// [render]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/perimeter/pkg/buildinfo
package pkg
