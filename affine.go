package pixelcanvas

import "math"

// Affine matrices are [a, b, c, d, tx, ty], mapping (x, y) to
// (a*x + c*y + tx, b*x + d*y + ty).

var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// scaleTranslate is the matrix of a uniform scale followed by a translation.
func scaleTranslate(scale, tx, ty float64) [6]float64 {
	return [6]float64{scale, 0, 0, scale, tx, ty}
}

// invertAffine returns the inverse of m, or the identity if m is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return identityTransform
	}
	a, b := m[3]/det, -m[1]/det
	c, d := -m[2]/det, m[0]/det
	tx, ty := transformPoint([6]float64{a, b, c, d, 0, 0}, m[4], m[5])
	return [6]float64{a, b, c, d, -tx, -ty}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
