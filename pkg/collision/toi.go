package collision

import (
	"github.com/df07/go-collision-volumes/pkg/core"
)

const (
	// toiTolerance is the gap at which a sweep counts as touching
	toiTolerance = 1e-7
	// toiMaxIterations bounds conservative advancement
	toiMaxIterations = 64
)

// TimeOfImpact is the result of sweeping one convex set against another
type TimeOfImpact struct {
	Fraction float64   // Fraction of the displacement travelled before contact, 1 when none
	Normal   core.Vec3 // Contact normal pointing from the stationary set toward the moving one
	Hit      bool
	Initial  bool // The sets already overlapped before moving
}

// NoImpact is the sweep result for a displacement that touches nothing
var NoImpact = TimeOfImpact{Fraction: 1}

// SweepConvex translates moving by displacement and finds the first fraction at
// which it touches stationary, by conservative advancement on GJK distance.
// Translation-only sweeps cannot tunnel: each step advances by the current gap
// divided by the closing speed along the separating direction.
func SweepConvex(moving, stationary Convex, displacement, hint core.Vec3) TimeOfImpact {
	t := 0.0
	var normal core.Vec3

	for i := 0; i < toiMaxIterations; i++ {
		current := Translated{Shape: moving, Offset: displacement.Mul(t)}
		prox := Distance(current, stationary, hint)

		if prox.Overlap {
			if i == 0 {
				return TimeOfImpact{Fraction: 0, Hit: true, Initial: true}
			}
			return TimeOfImpact{Fraction: t, Normal: normal, Hit: true}
		}

		gap := prox.PointA.Sub(prox.PointB)
		if prox.Distance > core.SizeEpsilon {
			normal = gap.Mul(1 / prox.Distance)
		} else if i == 0 {
			return TimeOfImpact{Fraction: 0, Hit: true, Initial: true}
		}

		if prox.Distance <= toiTolerance {
			return TimeOfImpact{Fraction: t, Normal: normal, Hit: true}
		}

		closing := -displacement.Dot(normal)
		if closing <= core.SizeEpsilon {
			// Moving apart or sliding past
			return NoImpact
		}

		t += (prox.Distance - 0.5*toiTolerance) / closing
		if t > 1 {
			return NoImpact
		}
		hint = gap.Mul(-1)
	}

	return TimeOfImpact{Fraction: t, Normal: normal, Hit: true}
}
