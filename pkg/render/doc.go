// Package render draws animator frames.
//
// Every sink performs a full redraw from an [animator.Frame]: per section a
// glowing quadrilateral through its corner nodes and the four nodes, then
// the global perimeter through its hinges and the hinge nodes, then cursor
// trail particles. Sinks never mutate the frame.
//
//   - [RenderSVG]: vector output; glow is an SVG drop-shadow filter
//   - [RenderPNG]: raster output via gg at the container's device pixel
//     ratio; glow is a blurred shadow layer
//   - [RenderText]: colored terminal cells, for the interactive preview
//
// Geometry stays in CSS pixels; only the PNG sink scales to device pixels.
//
//	f := anim.Frame()
//	svg := render.RenderSVG(f, render.WithBackground("#0b1020"))
//	png, err := render.RenderPNG(f)
package render
