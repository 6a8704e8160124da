// Package animator implements the perimeter animation: glowing outlines
// around page sections whose corner nodes ease away from the cursor, and one
// global outline that bends through slowly drifting "hinge" nodes.
//
// # Overview
//
// The package is split into pure functions over an explicit [State] and a
// small lifecycle owner:
//
//   - [Measure] turns section rectangles into outline boxes, corner nodes,
//     the global outer box and seeded hinges (the outliner and tracker)
//   - [Step] advances every node by one frame for a given cursor position
//   - [Animator] owns a State, the cursor, and an optional cursor trail and
//     exposes the host-facing lifecycle (remeasure, cursor events, tick)
//
// Measure and Step never fail. Zero sections is a valid layout that yields
// no boxes, no outer box and no hinges.
//
// # Determinism
//
// Hinge drift uses a [Jitter] source. Seed it with [NewJitter] for
// reproducible runs, or pass [NoJitter] to disable drift entirely.
//
// # Example
//
//	src := layout.NewStatic(layout.Container{Width: 800, Height: 600}, rects)
//	a, err := animator.New(src, animator.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	a.MoveCursor(120, 40, time.Now())
//	a.Tick(time.Now())
//	frame := a.Frame()
package animator
