package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestMat4InverseRoundTrip(t *testing.T) {
	m := NewMat4EulerXYZ(0.3, -1.1, 0.7).Mul(NewMat4Translation(NewVec3(-840, -600, -195)))
	inv, ok := m.Inverse()
	require.True(t, ok)
	assert.True(t, m.Mul(inv).Compare(NewMat4Identity(), 1e-4))

	_, ok = Mat4{}.Inverse()
	assert.False(t, ok)
}

func TestMat4TranslationAppliesToPoints(t *testing.T) {
	p := NewMat4Translation(NewVec3(1, 2, 3)).TransformPoint(NewVec3(1, 1, 1))
	assert.Equal(t, NewVec3(2, 3, 4), p)
}

func TestPerspectiveLHMapsNearAndFar(t *testing.T) {
	proj := NewMat4PerspectiveLH(DegToRad(60), 16.0/9.0, 1, 5000)

	near := proj.ProjectPoint(NewVec4(0, 0, 1, 1))
	far := proj.ProjectPoint(NewVec4(0, 0, 5000, 1))
	assert.InDelta(t, 0, near.Z, 1e-5)
	assert.InDelta(t, 1, far.Z, 1e-5)
}

func TestOrthographicLHMapsBoundsToClipCube(t *testing.T) {
	ortho := NewMat4OrthographicLH(-10, 20, 30, -40, 5, 105)

	lt := ortho.ProjectPoint(NewVec4(-10, 20, 5, 1))
	rb := ortho.ProjectPoint(NewVec4(30, -40, 105, 1))
	assert.InDelta(t, -1, lt.X, 1e-5)
	assert.InDelta(t, 1, lt.Y, 1e-5)
	assert.InDelta(t, 0, lt.Z, 1e-5)
	assert.InDelta(t, 1, rb.X, 1e-5)
	assert.InDelta(t, -1, rb.Y, 1e-5)
	assert.InDelta(t, 1, rb.Z, 1e-5)
}

func TestAABBTransformedContainsCorners(t *testing.T) {
	box := AABB{Min: NewVec3(-1, -2, -3), Max: NewVec3(4, 5, 6)}
	rot := NewMat4EulerXYZ(0.4, 0.9, -0.2)

	out := box.Transformed(rot)
	for _, c := range box.Corners() {
		p := rot.TransformPoint(c)
		assert.True(t, out.Extend(p) == out, "corner %v outside %v", p, out)
	}
	assert.True(t, NewEmptyAABB().IsEmpty())
}

func TestGaussianFilterIsNormalizedAndSymmetric(t *testing.T) {
	k := CreateGaussianFilter(16, 0)
	require.Len(t, k, 16)

	var sum float32
	for i, v := range k {
		sum += v
		assert.InDelta(t, v, k[len(k)-1-i], 1e-7)
	}
	assert.InDelta(t, 1, sum, 1e-5)
	assert.Greater(t, k[7], k[0])
	assert.Nil(t, CreateGaussianFilter(0, 1))
}

func TestPCFPoissonDiskHasExactCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	disk, err := PCFPoissonDisk(rng, 16)
	require.NoError(t, err)
	assert.Len(t, disk, 16)

	// Scaled by √2 / minDist, so no two samples are closer than √2.
	for i := range disk {
		for j := i + 1; j < len(disk); j++ {
			assert.GreaterOrEqual(t, disk[i].Sub(disk[j]).Length(), K_SQRT_TWO-1e-4)
		}
	}
}

func TestPoissonPointsRespectMinimumDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := GeneratePoissonPoints(rng, 0.1, 30, 40)
	require.NotEmpty(t, points)
	assert.LessOrEqual(t, len(points), 40)

	for i := 1; i < len(points); i++ {
		assert.True(t, isInUnitCircle(points[i]))
		for j := 0; j < i; j++ {
			assert.GreaterOrEqual(t, points[i].Sub(points[j]).Length(), float32(0.1))
		}
	}
}

func TestPoissonExactReportsExhaustion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// Two points cannot be farther than 1 apart inside the disk.
	_, attempts, err := GeneratePoissonPointsExact(rng, 2, 30, 2, 5)
	assert.ErrorIs(t, err, ErrPoissonRetriesExhausted)
	assert.Equal(t, 5, attempts)
}

func TestRSMKernelWarp(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	kernel, err := RSMKernel(rng, 128)
	require.NoError(t, err)
	require.Len(t, kernel, 128)
	for _, s := range kernel {
		assert.LessOrEqual(t, math32.Abs(s.X), float32(1))
		assert.LessOrEqual(t, math32.Abs(s.Y), float32(1))
		assert.GreaterOrEqual(t, s.Z, float32(0))
	}
}

func TestPerlinIsDeterministicPerSeed(t *testing.T) {
	a := NewPerlin(1, 65535, 1, 99)
	b := NewPerlin(1, 65535, 1, 99)
	for i := 0; i < 10; i++ {
		x := float32(i) * 1e-6
		va := a.Get(x, 0)
		assert.Equal(t, va, b.Get(x, 0))
		assert.LessOrEqual(t, math32.Abs(va), float32(1))
	}
	assert.Zero(t, a.Get(0, 0))
}

func TestClampAndSnap(t *testing.T) {
	assert.Equal(t, 3, Clamp(7, 0, 3))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
	assert.Equal(t, float32(-4), Snap(-3.5, 2, false))
	assert.Equal(t, float32(4), Snap(3.5, 2, true))
}
