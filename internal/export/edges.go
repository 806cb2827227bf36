package export

import (
	"honnef.co/go/curve"

	"github.com/th2-export/backend/internal/models"
)

// Edge is the drawing form of the edge that ends at one segment. Straight
// edges only use End; curved edges are cubic Béziers from the previous anchor.
type Edge struct {
	Curved   bool
	Control1 curve.Point
	Control2 curve.Point
	End      curve.Point
}

// ClassifyEdge decides how the edge from prev to cur is written. prev is nil
// for the first segment of an open path. The edge is curved as soon as either
// side carries a handle; a missing handle then collapses its control point
// onto the anchor.
func ClassifyEdge(prev *models.Segment, cur models.Segment) Edge {
	if prev == nil || !(prev.HasHandleOut() || cur.HasHandleIn()) {
		return Edge{End: cur.Point}
	}
	return Edge{
		Curved:   true,
		Control1: prev.ControlOut(),
		Control2: cur.ControlIn(),
		End:      cur.Point,
	}
}

// PathEdges returns one edge per segment. Closed paths get an extra trailing
// edge equal to the first one, which closes the loop in the output.
func PathEdges(segments []models.Segment, closed bool) []Edge {
	n := len(segments)
	if n == 0 {
		return nil
	}

	edges := make([]Edge, 0, n+1)
	for i := range segments {
		var prev *models.Segment
		switch {
		case i > 0:
			prev = &segments[i-1]
		case closed:
			prev = &segments[n-1]
		}
		edges = append(edges, ClassifyEdge(prev, segments[i]))
	}
	if closed {
		edges = append(edges, edges[0])
	}
	return edges
}

// format prints the edge's coordinate line.
func (e Edge) format(path string) (string, error) {
	if !e.Curved {
		return formatCoords(path, e.End)
	}
	return formatCoords(path, e.Control1, e.Control2, e.End)
}
