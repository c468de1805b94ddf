package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Vec2i represents a 2D integer vector, used for viewport sizes and offsets.
type Vec2i struct {
	X, Y int32
}

/**
 * @brief a 4x4 matrix stored row-major and applied to column vectors (v' = M * v).
 * Data[row*4+col] is the element at the given row and column.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/** @brief A 3x3 matrix, row-major. */
type Mat3 struct {
	Data [9]float32
}

/**
 * @brief An axis-aligned bounding box.
 */
type AABB struct {
	/** @brief The minimum extents of the box. */
	Min Vec3
	/** @brief The maximum extents of the box. */
	Max Vec3
}
