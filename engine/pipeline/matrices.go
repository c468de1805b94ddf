package pipeline

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/iftodebogdan/gitechdemo/engine/math"
)

const CAMERA_FOV_DEGREES = 60

// Extent used for light space fitting while the scene has no geometry.
var unitAABB = math.AABB{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}

// Clip space corners of a view frustum slice. Z is replaced by the depth of
// the slice near (0) and far (1) planes.
var cuboidVerts = [8]math.Vec4{
	{X: -1, Y: 1, Z: 1, W: 1},
	{X: 1, Y: 1, Z: 1, W: 1},
	{X: -1, Y: -1, Z: 1, W: 1},
	{X: 1, Y: -1, Z: 1, W: 1},
	{X: -1, Y: 1, Z: 0, W: 1},
	{X: 1, Y: 1, Z: 0, W: 1},
	{X: -1, Y: -1, Z: 0, W: 1},
	{X: 1, Y: -1, Z: 0, W: 1},
}

// resetCamera places the camera and the light where the configuration says.
func (p *Pipeline) resetCamera() {
	scene := p.config.Scene
	cam := &p.ctx.Camera
	cam.Position = scene.CameraPosition
	cam.Rotation = math.NewMat4FromBasis(scene.CameraRotation[0], scene.CameraRotation[1], scene.CameraRotation[2])
	cam.Move = math.Vec3{}
	cam.Speed = 1

	light := &p.ctx.Light
	light.Direction = p.config.Lighting.InitialDirection.Normalized()
	light.Rotation = math.NewMat4Identity()
	light.hasUp = false
}

/**
 * @brief Recomputes every matrix of the frame: camera movement and
 * projection, the animated light basis, the cascade projections fitted to
 * slices of the view frustum, the RSM projection and the debug cameras.
 */
func (p *Pipeline) UpdateMatrices() {
	ctx := p.ctx
	cfg := p.config

	ctx.World = math.NewMat4Identity()

	// Camera
	cam := &ctx.Camera
	if cam.Move != (math.Vec3{}) {
		move := cam.Move.Normalized().MulScalar(cfg.Scene.MoveSpeed * cam.Speed)
		forward := cam.Rotation.Row(2).ToVec3().MulScalar(move.Z)
		right := cam.Rotation.Row(0).ToVec3().MulScalar(move.X)
		cam.Position = cam.Position.Sub(forward.Add(right))
	}
	ctx.View = cam.Rotation.Mul(math.NewMat4Translation(cam.Position))
	ctx.InvView = ctx.View.Inverted()

	size := p.renderer.BackBufferSize()
	aspect := float32(1)
	if size.Y > 0 {
		aspect = float32(size.X) / float32(size.Y)
	}
	ctx.Proj = math.NewMat4PerspectiveLH(math.DegToRad(CAMERA_FOV_DEGREES), aspect, cfg.Scene.ZNear, cfg.Scene.ZFar)
	ctx.InvProj = ctx.Proj.Inverted()
	p.updateCompositeMatrices()

	// Light
	if cfg.Scene.AnimateLight {
		p.animateLight()
	}
	p.updateLightView()
	ctx.LightWorldView = ctx.LightView.Mul(ctx.World)
	ctx.ScreenToLightView = ctx.LightView.Mul(ctx.InvViewProj)

	scene := ctx.SceneAABB
	if scene.IsEmpty() {
		scene = unitAABB
	}
	ctx.SceneLightSpaceAABB = scene.Transformed(ctx.LightWorldView)

	p.updateCascades()

	// RSM
	ls := ctx.SceneLightSpaceAABB
	ctx.RSMProj = math.NewMat4OrthographicLH(ls.Min.X, ls.Max.Y, ls.Max.X, ls.Min.Y, ls.Min.Z, ls.Max.Z)
	ctx.RSMWorldViewProj = ctx.RSMProj.Mul(ctx.LightWorldView)
	ctx.RSMInvProj = ctx.RSMProj.Inverted()
	ctx.ViewToRSMView = ctx.LightView.Mul(ctx.InvView)

	// Debug cameras look through the light.
	switch {
	case cfg.Debug.CSMCamera:
		p.useDebugCamera(ctx.CascadeProj[len(ctx.CascadeProj)-1])
	case cfg.Debug.RSMCamera:
		p.useDebugCamera(ctx.RSMProj)
	}
}

func (p *Pipeline) updateCompositeMatrices() {
	ctx := p.ctx
	ctx.WorldView = ctx.View.Mul(ctx.World)
	ctx.ViewProj = ctx.Proj.Mul(ctx.View)
	ctx.InvViewProj = ctx.InvView.Mul(ctx.InvProj)
	ctx.WorldViewProj = ctx.Proj.Mul(ctx.WorldView)
	ctx.SkyViewProj = ctx.ViewProj.Mul(math.NewMat4Translation(ctx.Camera.Position.Negate()))
}

func (p *Pipeline) useDebugCamera(proj math.Mat4) {
	ctx := p.ctx
	ctx.View = ctx.LightView
	ctx.InvView = ctx.View.Inverted()
	ctx.Proj = proj
	ctx.InvProj = proj.Inverted()
	p.updateCompositeMatrices()
	ctx.ScreenToLightView = ctx.LightView.Mul(ctx.InvViewProj)
}

// animateLight drives the horizontal components of the light direction with
// Perlin noise sampled along the elapsed time.
func (p *Pipeline) animateLight() {
	light := &p.ctx.Light
	tick := float32(p.ctx.ElapsedTime*1000) / float32(gomath.MaxInt32)
	light.Direction.X = p.perlin.Get(tick, 0)
	light.Direction.Z = p.perlin.Get(0, tick)
	light.Direction = light.Direction.Normalized()
}

// updateLightView builds the light basis looking along the light direction.
// The up vector carries over from the previous frame so the basis does not
// flip when the direction crosses the vertical.
func (p *Pipeline) updateLightView() {
	light := &p.ctx.Light
	zAxis := light.Direction.Normalized()
	if !light.hasUp {
		light.Up = math.NewVec3(0, 1, 0)
		if math32.Abs(zAxis.Y) == 1 {
			light.Up = math.NewVec3(0, 0, 1)
		}
		light.hasUp = true
	}
	xAxis := light.Up.Cross(zAxis).Normalized()
	yAxis := zAxis.Cross(xAxis)
	light.Up = yAxis
	p.ctx.LightView = math.NewMat4FromBasis(xAxis, yAxis, zAxis)
}

// CascadeSplit returns the view space depth where cascade c of n begins,
// blending the linear and the logarithmic split schemes.
func CascadeSplit(c, n int, zNear, maxDepth, splitFactor float32) float32 {
	t := float32(c) / float32(n)
	linear := zNear + t*(maxDepth-zNear)
	logarithmic := zNear * math32.Pow(maxDepth/zNear, t)
	return math.Lerp(splitFactor, linear, logarithmic)
}

/**
 * @brief Fits one orthographic projection per cascade around the light space
 * bounds of its slice of the view frustum. The bounds are enlarged by the
 * PCF footprint and snapped to whole shadow map texels; the depth range
 * always covers the whole scene so off screen casters still cast.
 */
func (p *Pipeline) updateCascades() {
	ctx := p.ctx
	cfg := p.config
	n := cfg.Shadows.NumCascades

	ctx.CascadeBoundsMin = resize(ctx.CascadeBoundsMin, n)
	ctx.CascadeBoundsMax = resize(ctx.CascadeBoundsMax, n)
	ctx.CascadeProj = resize(ctx.CascadeProj, n)
	ctx.CascadeLightViewProj = resize(ctx.CascadeLightViewProj, n)
	ctx.CascadeLightWorldViewProj = resize(ctx.CascadeLightWorldViewProj, n)

	perRow := CascadesPerRow(n)
	ctx.CascadesPerRow = perRow
	ctx.CascadeNormSize = 1 / float32(perRow)
	texelsPerCascade := math32.Floor(float32(cfg.Shadows.MapSize) / float32(perRow))
	pcfOffset := 4 * float32(cfg.Shadows.PCFKernelSize) * math.K_SQRT_TWO
	scene := ctx.SceneLightSpaceAABB

	for c := 0; c < n; c++ {
		nearZ := CascadeSplit(c, n, cfg.Scene.ZNear, cfg.Shadows.MaxViewDepth, cfg.Shadows.SplitFactor)
		farZ := CascadeSplit(c+1, n, cfg.Scene.ZNear, cfg.Shadows.MaxViewDepth, cfg.Shadows.SplitFactor)
		nearClip := ctx.Proj.ProjectPoint(math.NewVec4(0, 0, nearZ, 1))
		farClip := ctx.Proj.ProjectPoint(math.NewVec4(0, 0, farZ, 1))

		slice := math.NewEmptyAABB()
		for _, v := range cuboidVerts {
			if v.Z == 0 {
				v.Z = nearClip.Z
			} else {
				v.Z = farClip.Z
			}
			world := ctx.InvViewProj.ProjectPoint(v).ToVec3()
			slice = slice.Extend(ctx.LightView.TransformPoint(world))
		}

		unitsPerTexel := math.NewVec2(
			(slice.Max.X-slice.Min.X+2*pcfOffset)/texelsPerCascade,
			(slice.Max.Y-slice.Min.Y+2*pcfOffset)/texelsPerCascade,
		)
		ctx.CascadeProj[c] = math.NewMat4OrthographicLH(
			math.Snap(slice.Min.X-pcfOffset, unitsPerTexel.X, false),
			math.Snap(slice.Max.Y+pcfOffset, unitsPerTexel.Y, true),
			math.Snap(slice.Max.X+pcfOffset, unitsPerTexel.X, true),
			math.Snap(slice.Min.Y-pcfOffset, unitsPerTexel.Y, false),
			scene.Min.Z, scene.Max.Z,
		)
		ctx.CascadeBoundsMin[c] = math.NewVec2(slice.Min.X, slice.Min.Y)
		ctx.CascadeBoundsMax[c] = math.NewVec2(slice.Max.X, slice.Max.Y)
		ctx.CascadeLightViewProj[c] = ctx.CascadeProj[c].Mul(ctx.LightView)
		ctx.CascadeLightWorldViewProj[c] = ctx.CascadeLightViewProj[c].Mul(ctx.World)
	}
}

// CascadesPerRow is the side of the square grid the cascades are tiled in.
func CascadesPerRow(numCascades int) int {
	return int(math32.Ceil(math32.Sqrt(float32(numCascades))))
}

func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}
