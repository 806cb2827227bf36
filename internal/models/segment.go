package models

import "honnef.co/go/curve"

// Segment is a path vertex. HandleIn and HandleOut are relative to Point;
// a zero handle means the adjacent edge is straight on that side.
type Segment struct {
	Point     curve.Point
	HandleIn  curve.Vec2
	HandleOut curve.Vec2
}

// Corner returns a segment without handles.
func Corner(x, y float64) Segment {
	return Segment{Point: curve.Pt(x, y)}
}

// Smooth returns a segment with both handles set.
func Smooth(p curve.Point, in, out curve.Vec2) Segment {
	return Segment{Point: p, HandleIn: in, HandleOut: out}
}

// HasHandleIn reports whether the incoming handle is non-zero.
func (s Segment) HasHandleIn() bool {
	return s.HandleIn != (curve.Vec2{})
}

// HasHandleOut reports whether the outgoing handle is non-zero.
func (s Segment) HasHandleOut() bool {
	return s.HandleOut != (curve.Vec2{})
}

// ControlIn is the absolute position of the incoming handle.
func (s Segment) ControlIn() curve.Point {
	return s.Point.Translate(s.HandleIn)
}

// ControlOut is the absolute position of the outgoing handle.
func (s Segment) ControlOut() curve.Point {
	return s.Point.Translate(s.HandleOut)
}
