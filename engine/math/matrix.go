package math

import "github.com/chewxy/math32"

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 */
func NewMat4Identity() Mat4 {
	var m Mat4
	m.Data[0] = 1
	m.Data[5] = 1
	m.Data[10] = 1
	m.Data[15] = 1
	return m
}

// NewMat4FromRows builds a matrix from four row vectors.
func NewMat4FromRows(r0, r1, r2, r3 Vec4) Mat4 {
	return Mat4{Data: [16]float32{
		r0.X, r0.Y, r0.Z, r0.W,
		r1.X, r1.Y, r1.Z, r1.W,
		r2.X, r2.Y, r2.Z, r2.W,
		r3.X, r3.Y, r3.Z, r3.W,
	}}
}

func (m Mat4) At(row, col int) float32 {
	return m.Data[row*4+col]
}

func (m Mat4) Row(row int) Vec4 {
	return Vec4{m.Data[row*4], m.Data[row*4+1], m.Data[row*4+2], m.Data[row*4+3]}
}

// Mul returns m * other, so other is applied first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.Data[r*4+k] * other.Data[k*4+c]
			}
			out.Data[r*4+c] = sum
		}
	}
	return out
}

func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: m.Row(0).Dot(v),
		Y: m.Row(1).Dot(v),
		Z: m.Row(2).Dot(v),
		W: m.Row(3).Dot(v),
	}
}

// TransformPoint applies the matrix to (p, 1) without a perspective divide.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.MulVec4(p.ToVec4(1)).ToVec3()
}

// ProjectPoint applies the matrix to v and divides by the resulting w.
func (m Mat4) ProjectPoint(v Vec4) Vec4 {
	r := m.MulVec4(v)
	return r.DivScalar(r.W)
}

func (m Mat4) Transposed() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[c*4+r] = m.Data[r*4+c]
		}
	}
	return out
}

/**
 * @brief Creates and returns an inverse of the provided matrix. A singular
 * matrix yields the identity matrix and false.
 */
func (m Mat4) Inverse() (Mat4, bool) {
	var a [16]float64
	for i, v := range m.Data {
		a[i] = float64(v)
	}

	var inv [16]float64
	inv[0] = a[5]*a[10]*a[15] - a[5]*a[11]*a[14] - a[9]*a[6]*a[15] + a[9]*a[7]*a[14] + a[13]*a[6]*a[11] - a[13]*a[7]*a[10]
	inv[4] = -a[4]*a[10]*a[15] + a[4]*a[11]*a[14] + a[8]*a[6]*a[15] - a[8]*a[7]*a[14] - a[12]*a[6]*a[11] + a[12]*a[7]*a[10]
	inv[8] = a[4]*a[9]*a[15] - a[4]*a[11]*a[13] - a[8]*a[5]*a[15] + a[8]*a[7]*a[13] + a[12]*a[5]*a[11] - a[12]*a[7]*a[9]
	inv[12] = -a[4]*a[9]*a[14] + a[4]*a[10]*a[13] + a[8]*a[5]*a[14] - a[8]*a[6]*a[13] - a[12]*a[5]*a[10] + a[12]*a[6]*a[9]
	inv[1] = -a[1]*a[10]*a[15] + a[1]*a[11]*a[14] + a[9]*a[2]*a[15] - a[9]*a[3]*a[14] - a[13]*a[2]*a[11] + a[13]*a[3]*a[10]
	inv[5] = a[0]*a[10]*a[15] - a[0]*a[11]*a[14] - a[8]*a[2]*a[15] + a[8]*a[3]*a[14] + a[12]*a[2]*a[11] - a[12]*a[3]*a[10]
	inv[9] = -a[0]*a[9]*a[15] + a[0]*a[11]*a[13] + a[8]*a[1]*a[15] - a[8]*a[3]*a[13] - a[12]*a[1]*a[11] + a[12]*a[3]*a[9]
	inv[13] = a[0]*a[9]*a[14] - a[0]*a[10]*a[13] - a[8]*a[1]*a[14] + a[8]*a[2]*a[13] + a[12]*a[1]*a[10] - a[12]*a[2]*a[9]
	inv[2] = a[1]*a[6]*a[15] - a[1]*a[7]*a[14] - a[5]*a[2]*a[15] + a[5]*a[3]*a[14] + a[13]*a[2]*a[7] - a[13]*a[3]*a[6]
	inv[6] = -a[0]*a[6]*a[15] + a[0]*a[7]*a[14] + a[4]*a[2]*a[15] - a[4]*a[3]*a[14] - a[12]*a[2]*a[7] + a[12]*a[3]*a[6]
	inv[10] = a[0]*a[5]*a[15] - a[0]*a[7]*a[13] - a[4]*a[1]*a[15] + a[4]*a[3]*a[13] + a[12]*a[1]*a[7] - a[12]*a[3]*a[5]
	inv[14] = -a[0]*a[5]*a[14] + a[0]*a[6]*a[13] + a[4]*a[1]*a[14] - a[4]*a[2]*a[13] - a[12]*a[1]*a[6] + a[12]*a[2]*a[5]
	inv[3] = -a[1]*a[6]*a[11] + a[1]*a[7]*a[10] + a[5]*a[2]*a[11] - a[5]*a[3]*a[10] - a[9]*a[2]*a[7] + a[9]*a[3]*a[6]
	inv[7] = a[0]*a[6]*a[11] - a[0]*a[7]*a[10] - a[4]*a[2]*a[11] + a[4]*a[3]*a[10] + a[8]*a[2]*a[7] - a[8]*a[3]*a[6]
	inv[11] = -a[0]*a[5]*a[11] + a[0]*a[7]*a[9] + a[4]*a[1]*a[11] - a[4]*a[3]*a[9] - a[8]*a[1]*a[7] + a[8]*a[3]*a[5]
	inv[15] = a[0]*a[5]*a[10] - a[0]*a[6]*a[9] - a[4]*a[1]*a[10] + a[4]*a[2]*a[9] + a[8]*a[1]*a[6] - a[8]*a[2]*a[5]

	det := a[0]*inv[0] + a[1]*inv[4] + a[2]*inv[8] + a[3]*inv[12]
	if det == 0 {
		return NewMat4Identity(), false
	}
	det = 1.0 / det

	var out Mat4
	for i := range inv {
		out.Data[i] = float32(inv[i] * det)
	}
	return out, true
}

// Inverted is Inverse without the singularity flag.
func (m Mat4) Inverted() Mat4 {
	inv, _ := m.Inverse()
	return inv
}

// Mat3 returns the upper left 3x3 block.
func (m Mat4) Mat3() Mat3 {
	return Mat3{Data: [9]float32{
		m.Data[0], m.Data[1], m.Data[2],
		m.Data[4], m.Data[5], m.Data[6],
		m.Data[8], m.Data[9], m.Data[10],
	}}
}

// Compare reports whether every element is within tolerance of other.
func (m Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range m.Data {
		if math32.Abs(m.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}

/**
 * @brief Creates and returns a translation matrix from the given position.
 */
func NewMat4Translation(position Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[3] = position.X
	m.Data[7] = position.Y
	m.Data[11] = position.Z
	return m
}

func NewMat4Scale(scale Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = scale.X
	m.Data[5] = scale.Y
	m.Data[10] = scale.Z
	return m
}

func NewMat4EulerX(angleRadians float32) Mat4 {
	m := NewMat4Identity()
	c, s := math32.Cos(angleRadians), math32.Sin(angleRadians)
	m.Data[5] = c
	m.Data[6] = -s
	m.Data[9] = s
	m.Data[10] = c
	return m
}

func NewMat4EulerY(angleRadians float32) Mat4 {
	m := NewMat4Identity()
	c, s := math32.Cos(angleRadians), math32.Sin(angleRadians)
	m.Data[0] = c
	m.Data[2] = s
	m.Data[8] = -s
	m.Data[10] = c
	return m
}

func NewMat4EulerZ(angleRadians float32) Mat4 {
	m := NewMat4Identity()
	c, s := math32.Cos(angleRadians), math32.Sin(angleRadians)
	m.Data[0] = c
	m.Data[1] = -s
	m.Data[4] = s
	m.Data[5] = c
	return m
}

// NewMat4EulerXYZ composes the rotations as Rx * Ry * Rz.
func NewMat4EulerXYZ(xRadians, yRadians, zRadians float32) Mat4 {
	return NewMat4EulerX(xRadians).Mul(NewMat4EulerY(yRadians)).Mul(NewMat4EulerZ(zRadians))
}

/**
 * @brief Creates and returns a left-handed perspective projection with depth in [0, 1].
 * @param fovRadians The vertical field of view in radians.
 * @param aspectRatio Width over height.
 */
func NewMat4PerspectiveLH(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	yScale := 1 / math32.Tan(fovRadians*0.5)
	xScale := yScale / aspectRatio
	var m Mat4
	m.Data[0] = xScale
	m.Data[5] = yScale
	m.Data[10] = farClip / (farClip - nearClip)
	m.Data[11] = -nearClip * farClip / (farClip - nearClip)
	m.Data[14] = 1
	return m
}

/**
 * @brief Creates and returns a left-handed off-center orthographic projection
 * with depth in [0, 1]. The argument order (left, top, right, bottom) follows
 * the renderer's CreateOrthographicMatrix.
 */
func NewMat4OrthographicLH(left, top, right, bottom, nearClip, farClip float32) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = 2 / (right - left)
	m.Data[3] = (left + right) / (left - right)
	m.Data[5] = 2 / (top - bottom)
	m.Data[7] = (top + bottom) / (bottom - top)
	m.Data[10] = 1 / (farClip - nearClip)
	m.Data[11] = nearClip / (nearClip - farClip)
	return m
}

// NewMat4FromBasis builds a rotation whose rows are the given axes.
func NewMat4FromBasis(xAxis, yAxis, zAxis Vec3) Mat4 {
	return NewMat4FromRows(xAxis.ToVec4(0), yAxis.ToVec4(0), zAxis.ToVec4(0), NewVec4(0, 0, 0, 1))
}
