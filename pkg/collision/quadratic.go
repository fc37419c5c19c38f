package collision

import "math"

// SolveQuadratic returns the real roots of a*t^2 + b*t + c = 0 in ascending order.
// A near-zero a degrades to the linear equation, which reports its single root twice.
func SolveQuadratic(a, b, c float64) (float64, float64, bool) {
	const epsilon = 1e-12

	if math.Abs(a) < epsilon {
		if math.Abs(b) < epsilon {
			return 0, 0, false
		}
		t := -c / b
		return t, t, true
	}

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, 0, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Numerically stable form avoids cancellation when b*b >> 4ac
	var q float64
	if b < 0 {
		q = -0.5 * (b - sqrtD)
	} else {
		q = -0.5 * (b + sqrtD)
	}

	t0 := q / a
	t1 := t0
	if q != 0 {
		t1 = c / q
	}
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}
