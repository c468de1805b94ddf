package math

// NewEmptyAABB returns an inverted box that any Extend call will overwrite.
func NewEmptyAABB() AABB {
	return AABB{
		Min: Vec3{K_FLOAT_MAX, K_FLOAT_MAX, K_FLOAT_MAX},
		Max: Vec3{-K_FLOAT_MAX, -K_FLOAT_MAX, -K_FLOAT_MAX},
	}
}

func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b AABB) Extend(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

func (b AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return b
	}
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Corners returns the eight vertices of the box.
func (b AABB) Corners() [8]Vec3 {
	return [8]Vec3{
		b.Min,
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		b.Max,
	}
}

// Transformed returns the axis-aligned box around the eight transformed
// corners, which is looser than the rotated box itself.
func (b AABB) Transformed(m Mat4) AABB {
	out := NewEmptyAABB()
	for _, c := range b.Corners() {
		out = out.Extend(m.TransformPoint(c))
	}
	return out
}

func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
