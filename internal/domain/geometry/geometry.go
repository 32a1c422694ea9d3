// Package geometry implements the vector math used by the XH···π detection
// engine: distances, angle quantities and least-squares plane fitting.
//
// Angle and projection functions return (value, ok) pairs. ok is false when
// the quantity is undefined (zero-length vector, zero normal, or a hydrogen
// that does not point toward the ring); callers must treat that as a hard
// short-circuit for the candidate, never as zero.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/xpid/pkg/errors"
)

// Vec3 is a point or direction in Cartesian space, in Ångström.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// IsZero reports whether v is the zero vector.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Vec3) float64 {
	return p.Sub(q).Norm()
}

// AngleBetween returns the angle between u and v in degrees, in [0, 180].
// ok is false if either vector has zero length. The cosine argument is
// clipped to [-1, 1] to absorb floating point error.
func AngleBetween(u, v Vec3) (float64, bool) {
	nu, nv := u.Norm(), v.Norm()
	if nu == 0 || nv == 0 {
		return 0, false
	}
	cos := u.Dot(v) / (nu * nv)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi, true
}

// PlaneFit fits the least-squares plane through points. The center is the
// arithmetic mean; the normal is the right-singular vector of the
// mean-centred point matrix for the smallest singular value, i.e. the
// least-variance direction. The normal has unit length but unspecified
// sign: plane fitting yields an axis, not an oriented normal, so all angle
// formulas downstream must be sign-tolerant where orientation does not
// matter.
//
// At least 3 points are required. For exactly collinear input the SVD still
// produces a unit vector orthogonal to the line (best effort, arbitrary
// within the degenerate subspace); it never yields NaN components.
func PlaneFit(points []Vec3) (center, normal Vec3, err error) {
	n := len(points)
	if n < 3 {
		return Vec3{}, Vec3{}, errors.Newf(errors.CodeValidation,
			"plane fit requires at least 3 points, got %d", n)
	}

	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Scale(1 / float64(n))

	data := make([]float64, 0, 3*n)
	for _, p := range points {
		d := p.Sub(center)
		data = append(data, d.X, d.Y, d.Z)
	}
	m := mat.NewDense(n, 3, data)

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThinV); !ok {
		return Vec3{}, Vec3{}, errors.New(errors.CodeInternal,
			"SVD factorization failed for ring atom coordinates")
	}
	var v mat.Dense
	svd.VTo(&v)

	// Singular values are ordered descending; column 2 of V spans the
	// least-variance direction.
	normal = Vec3{v.At(0, 2), v.At(1, 2), v.At(2, 2)}
	return center, normal, nil
}

// XPCNAngle returns the angle between the vector from the donor X to the
// π-center and the plane normal, folded to [0, 90] since the normal's sign
// is arbitrary. ok is false if either vector has zero length.
func XPCNAngle(xPos, center, normal Vec3) (float64, bool) {
	angle, ok := AngleBetween(center.Sub(xPos), normal)
	if !ok {
		return 0, false
	}
	if angle > 90 {
		angle = 180 - angle
	}
	return angle, true
}

// XHPiAngle returns the angle at the hydrogen between the X–H bond and the
// H→center direction, in [0, 180]. It is deliberately not folded: values
// above 120° indicate the X–H bond points from X toward the π center.
// ok is false if either vector has zero length.
func XHPiAngle(center, xPos, hPos Vec3) (float64, bool) {
	return AngleBetween(hPos.Sub(xPos), hPos.Sub(center))
}

// HudsonTheta returns the angle between the plane normal and the X–H bond,
// folded to [0, 90]. The quantity is only defined when the hydrogen points
// toward the ring: with v = center−x and w = h−x, the signed projection
// dot(w, v)/|v| must be positive, otherwise ok is false and the pair is
// excluded from Hudson classification.
func HudsonTheta(center, xPos, hPos, normal Vec3) (float64, bool) {
	v := center.Sub(xPos)
	w := hPos.Sub(xPos)
	nv := v.Norm()
	if nv == 0 {
		return 0, false
	}
	if w.Dot(v)/nv <= 0 {
		return 0, false
	}
	angle, ok := AngleBetween(normal, w)
	if !ok {
		return 0, false
	}
	if angle >= 90 {
		angle = 180 - angle
	}
	return angle, true
}

// ProjectionDistance projects xPos onto the plane through center with the
// given normal and returns the in-plane distance from the center to that
// projection. ok is false when normal is the zero vector.
func ProjectionDistance(normal, center, xPos Vec3) (float64, bool) {
	nn := normal.Dot(normal)
	if nn == 0 {
		return 0, false
	}
	t := normal.Dot(center.Sub(xPos)) / nn
	proj := xPos.Add(normal.Scale(t))
	return Distance(proj, center), true
}
