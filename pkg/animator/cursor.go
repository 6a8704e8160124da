package animator

import "github.com/matzehuels/perimeter/pkg/geom"

// Cursor is the latest pointer sample in container coordinates.
type Cursor = geom.Point

// Offscreen is the sentinel used while the pointer is outside the
// container. It is far enough away that no node reacts to it.
var Offscreen = Cursor{X: -9999, Y: -9999}
