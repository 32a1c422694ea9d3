package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestDistance_RightTriangle(t *testing.T) {
	// Legs 3 and 4 at the same z give a hypotenuse of exactly 5.
	a := Vec3{0, 0, 1.5}
	b := Vec3{3, 4, 1.5}
	assert.Equal(t, 5.0, Distance(a, b))
}

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		name string
		u, v Vec3
		want float64
	}{
		{"orthogonal", Vec3{1, 0, 0}, Vec3{0, 1, 0}, 90},
		{"parallel", Vec3{2, 0, 0}, Vec3{5, 0, 0}, 0},
		{"antiparallel", Vec3{1, 0, 0}, Vec3{-3, 0, 0}, 180},
		{"diagonal", Vec3{1, 0, 0}, Vec3{1, 1, 0}, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AngleBetween(tt.u, tt.v)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, eps)
		})
	}
}

func TestAngleBetween_ZeroVectorUndefined(t *testing.T) {
	_, ok := AngleBetween(Vec3{}, Vec3{1, 0, 0})
	assert.False(t, ok)
	_, ok = AngleBetween(Vec3{1, 0, 0}, Vec3{})
	assert.False(t, ok)
}

func TestAngleBetween_ClipsRoundingError(t *testing.T) {
	// Nearly identical unit vectors can push the cosine above 1 by a few
	// ulps; the result must be a clean 0, not NaN.
	u := Vec3{0.1 + 0.2, 0.3, 0.4}
	v := Vec3{0.3, 0.1 + 0.2, 0.4}
	got, ok := AngleBetween(u, u)
	require.True(t, ok)
	assert.False(t, math.IsNaN(got))
	got, ok = AngleBetween(v, v)
	require.True(t, ok)
	assert.False(t, math.IsNaN(got))
}

func hexagonAt(z float64) []Vec3 {
	pts := make([]Vec3, 0, 6)
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		pts = append(pts, Vec3{1.4 * math.Cos(a), 1.4 * math.Sin(a), z})
	}
	return pts
}

func TestPlaneFit_Hexagon(t *testing.T) {
	center, normal, err := PlaneFit(hexagonAt(2.0))
	require.NoError(t, err)

	assert.InDelta(t, 0, center.X, 1e-12)
	assert.InDelta(t, 0, center.Y, 1e-12)
	assert.InDelta(t, 2.0, center.Z, 1e-12)

	// Axis along ±Z; the sign is unspecified.
	assert.InDelta(t, 1.0, math.Abs(normal.Z), 1e-9)
	assert.InDelta(t, 1.0, normal.Norm(), 1e-9)
}

func TestPlaneFit_TooFewPoints(t *testing.T) {
	_, _, err := PlaneFit([]Vec3{{0, 0, 0}, {1, 0, 0}})
	assert.Error(t, err)
}

func TestPlaneFit_CollinearDoesNotProduceNaN(t *testing.T) {
	pts := []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	center, normal, err := PlaneFit(pts)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, center.X, 1e-12)
	for _, c := range []float64{normal.X, normal.Y, normal.Z} {
		assert.False(t, math.IsNaN(c))
	}
	// Best-effort normal must still be orthogonal to the line.
	assert.InDelta(t, 0, normal.X, 1e-9)
	assert.InDelta(t, 1.0, normal.Norm(), 1e-9)
}

func TestXPCNAngle_FoldsAntiparallel(t *testing.T) {
	// X on the +Z axis: X→center is antiparallel to a +Z normal, the raw
	// 180° folds to 0.
	got, ok := XPCNAngle(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 0, 1})
	require.True(t, ok)
	assert.InDelta(t, 0.0, got, eps)
}

func TestXPCNAngle_Range(t *testing.T) {
	got, ok := XPCNAngle(Vec3{3, 0, 3}, Vec3{}, Vec3{0, 0, 1})
	require.True(t, ok)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 90.0)
}

func TestXPCNAngle_Undefined(t *testing.T) {
	// X at the center: zero-length X→center vector.
	_, ok := XPCNAngle(Vec3{1, 1, 1}, Vec3{1, 1, 1}, Vec3{0, 0, 1})
	assert.False(t, ok)
	// Zero normal.
	_, ok = XPCNAngle(Vec3{0, 0, 5}, Vec3{}, Vec3{})
	assert.False(t, ok)
}

func TestXHPiAngle_NotFolded(t *testing.T) {
	// H between X and the center: the measured vectors h−x and h−center
	// are antiparallel, so a bond aimed straight at the ring reads 180.
	got, ok := XHPiAngle(Vec3{}, Vec3{5, 0, 0}, Vec3{4, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 180.0, got, eps)

	// H on the far side of X: both vectors point away from the ring → 0.
	got, ok = XHPiAngle(Vec3{}, Vec3{5, 0, 0}, Vec3{6, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 0.0, got, eps)
}

func TestHudsonTheta_InPlaneApproach(t *testing.T) {
	// X at (5,0,0), H at (4,0,0), center at origin, normal +Z: the bond
	// points toward the ring and lies in the plane → θ = 90 exactly.
	got, ok := HudsonTheta(Vec3{}, Vec3{5, 0, 0}, Vec3{4, 0, 0}, Vec3{0, 0, 1})
	require.True(t, ok)
	assert.InDelta(t, 90.0, got, eps)
}

func TestHudsonTheta_HydrogenPointingAwayUndefined(t *testing.T) {
	// H on the far side of X: projection onto X→center is negative.
	_, ok := HudsonTheta(Vec3{}, Vec3{5, 0, 0}, Vec3{6, 0, 0}, Vec3{0, 0, 1})
	assert.False(t, ok)
	// Orthogonal bond: projection exactly zero is also excluded.
	_, ok = HudsonTheta(Vec3{}, Vec3{5, 0, 0}, Vec3{5, 1, 0}, Vec3{0, 0, 1})
	assert.False(t, ok)
}

func TestHudsonTheta_FoldedRange(t *testing.T) {
	// Bond tilted against the normal still folds into [0, 90].
	got, ok := HudsonTheta(Vec3{}, Vec3{4, 0, 2}, Vec3{3, 0, 1.5}, Vec3{0, 0, 1})
	require.True(t, ok)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 90.0)
}

func TestHudsonTheta_XAtCenterUndefined(t *testing.T) {
	_, ok := HudsonTheta(Vec3{1, 2, 3}, Vec3{1, 2, 3}, Vec3{2, 2, 3}, Vec3{0, 0, 1})
	assert.False(t, ok)
}

func TestProjectionDistance(t *testing.T) {
	// X above the plane at (3,4,7), plane z=0 through the origin: the foot
	// of the projection is (3,4,0), 5 away from the center.
	got, ok := ProjectionDistance(Vec3{0, 0, 1}, Vec3{}, Vec3{3, 4, 7})
	require.True(t, ok)
	assert.InDelta(t, 5.0, got, eps)

	// Scaling the normal must not change the result.
	got2, ok := ProjectionDistance(Vec3{0, 0, -2.5}, Vec3{}, Vec3{3, 4, 7})
	require.True(t, ok)
	assert.InDelta(t, got, got2, eps)
}

func TestProjectionDistance_ZeroNormalUndefined(t *testing.T) {
	_, ok := ProjectionDistance(Vec3{}, Vec3{}, Vec3{1, 2, 3})
	assert.False(t, ok)
}
