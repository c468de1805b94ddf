package pipeline

import (
	"github.com/iftodebogdan/gitechdemo/engine/math"
)

type Camera struct {
	Position math.Vec3
	/** @brief Rotation part of the view matrix, rows are the camera axes. */
	Rotation math.Mat4
	Move     math.Vec3
	Speed    float32
}

type Light struct {
	Direction math.Vec3
	Rotation  math.Mat4
	// Persistent up vector of the light basis, seeded on first use.
	Up    math.Vec3
	hasUp bool
}

/**
 * @brief Per frame state shared by every pass: the camera, the light, the
 * derived matrices and the kernels computed at load time.
 */
type RenderContext struct {
	Camera Camera
	Light  Light

	World             math.Mat4
	View              math.Mat4
	InvView           math.Mat4
	Proj              math.Mat4
	InvProj           math.Mat4
	WorldView         math.Mat4
	ViewProj          math.Mat4
	InvViewProj       math.Mat4
	WorldViewProj     math.Mat4
	SkyViewProj       math.Mat4
	LightView         math.Mat4
	LightWorldView    math.Mat4
	ScreenToLightView math.Mat4

	/** @brief World space AABB of the scene model. */
	SceneAABB math.AABB
	/** @brief SceneAABB in light view space. */
	SceneLightSpaceAABB math.AABB

	CascadeBoundsMin          []math.Vec2
	CascadeBoundsMax          []math.Vec2
	CascadeProj               []math.Mat4
	CascadeLightViewProj      []math.Mat4
	CascadeLightWorldViewProj []math.Mat4
	CascadesPerRow            int
	CascadeNormSize           float32

	RSMProj          math.Mat4
	RSMInvProj       math.Mat4
	RSMWorldViewProj math.Mat4
	ViewToRSMView    math.Mat4

	PoissonDisk    []math.Vec2
	RSMKernel      []math.Vec3
	GaussianKernel []float32

	// Index of the current adapted luminance target, the other one holds
	// the previous frame.
	AdaptedLumaCurrent int

	FrameTime   float32
	FrameCount  uint64
	ElapsedTime float64
}

func NewRenderContext() *RenderContext {
	identity := math.NewMat4Identity()
	return &RenderContext{
		World:               identity,
		Camera:              Camera{Rotation: identity, Speed: 1},
		Light:               Light{Direction: math.NewVec3(0, -1, 0), Rotation: identity},
		SceneAABB:           math.NewEmptyAABB(),
		SceneLightSpaceAABB: math.NewEmptyAABB(),
	}
}

// AdaptedLumaPrevious is the index of the previous frame's adapted luminance.
func (ctx *RenderContext) AdaptedLumaPrevious() int {
	return (ctx.AdaptedLumaCurrent + 1) % 2
}
