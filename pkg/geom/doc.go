// Package geom provides the small set of 2D primitives shared by the
// animator and its renderers.
//
// All coordinates are CSS pixels in the coordinate space of the animator's
// container: x grows to the right, y grows downward.
//
//   - [Point] is a position or a vector.
//   - [Rect] is a raw layout rectangle as reported by a layout source.
//   - [Box] is an outline rectangle expressed by its four edges.
//   - [Side] names one edge of a Box and carries its tangent/normal basis.
package geom
