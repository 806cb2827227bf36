package export

import (
	"math"
	"strconv"
	"strings"

	"honnef.co/go/curve"
)

// Transform maps a canvas point into drawing space: the y axis is flipped and
// both coordinates are rounded to two decimals.
func Transform(p curve.Point) curve.Point {
	p = p.Transform(curve.FlipY)
	return curve.Pt(roundCoord(p.X), roundCoord(p.Y))
}

// roundCoord rounds half up to two decimals.
func roundCoord(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// formatNumber prints the shortest decimal form of v.
func formatNumber(v float64) string {
	if v == 0 {
		// never print -0
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatCoords transforms pts and prints them as "x y x y ...".
func formatCoords(path string, pts ...curve.Point) (string, error) {
	var sb strings.Builder
	for i, p := range pts {
		q := Transform(p)
		if q.IsNaN() || q.IsInf() {
			return "", &GeometryError{Path: path, Point: p}
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(formatNumber(q.X))
		sb.WriteByte(' ')
		sb.WriteString(formatNumber(q.Y))
	}
	return sb.String(), nil
}
