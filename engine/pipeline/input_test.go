package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
)

func button(code core.EventCode, b core.Button) core.EventContext {
	return core.EventContext{Type: code, Button: b}
}

func key(code core.EventCode, k core.KeyCode) core.EventContext {
	return core.EventContext{Type: code, Key: k}
}

func mouseMove(dx, dy int32) core.EventContext {
	return core.EventContext{Type: core.EVENT_CODE_MOUSE_MOVED, DeltaX: dx, DeltaY: dy}
}

func TestMouseRotatesCameraWhileHeld(t *testing.T) {
	tp := newTestPipeline(t, DefaultConfig())
	cam := &tp.Context().Camera
	initial := cam.Rotation

	// Moving without a button held does nothing.
	assert.False(t, tp.HandleInput(mouseMove(10, 5)))
	assert.Equal(t, initial, cam.Rotation)

	assert.True(t, tp.HandleInput(button(core.EVENT_CODE_BUTTON_PRESSED, core.BUTTON_LEFT)))
	assert.True(t, tp.HandleInput(mouseMove(10, 5)))
	assert.NotEqual(t, initial, cam.Rotation)

	rotated := cam.Rotation
	assert.True(t, tp.HandleInput(button(core.EVENT_CODE_BUTTON_RELEASED, core.BUTTON_LEFT)))
	assert.False(t, tp.HandleInput(mouseMove(10, 5)))
	assert.Equal(t, rotated, cam.Rotation)
}

func TestMiddleButtonRotatesLight(t *testing.T) {
	tp := newTestPipeline(t, DefaultConfig())
	light := &tp.Context().Light
	initial := light.Direction

	tp.HandleInput(button(core.EVENT_CODE_BUTTON_PRESSED, core.BUTTON_MIDDLE))
	assert.True(t, tp.HandleInput(mouseMove(30, 0)))
	assert.NotEqual(t, initial, light.Direction)
	assert.InDelta(t, 1, light.Direction.Length(), 1e-5)
}

func TestKeysMoveCamera(t *testing.T) {
	tp := newTestPipeline(t, DefaultConfig())
	cam := &tp.Context().Camera

	assert.True(t, tp.HandleInput(key(core.EVENT_CODE_KEY_PRESSED, core.KEY_W)))
	assert.True(t, tp.HandleInput(key(core.EVENT_CODE_KEY_PRESSED, core.KEY_A)))
	assert.Equal(t, math.NewVec3(-1, 0, 1), cam.Move)

	assert.True(t, tp.HandleInput(key(core.EVENT_CODE_KEY_PRESSED, core.KEY_SHIFT)))
	assert.Equal(t, tp.Config().Scene.FastMultiplier, cam.Speed)
	assert.True(t, tp.HandleInput(key(core.EVENT_CODE_KEY_RELEASED, core.KEY_SHIFT)))
	assert.Equal(t, float32(1), cam.Speed)
	assert.True(t, tp.HandleInput(key(core.EVENT_CODE_KEY_PRESSED, core.KEY_CONTROL)))
	assert.Equal(t, tp.Config().Scene.SlowMultiplier, cam.Speed)

	start := cam.Position
	tp.renderFrame(t)
	assert.NotEqual(t, start, cam.Position)

	tp.HandleInput(key(core.EVENT_CODE_KEY_RELEASED, core.KEY_W))
	tp.HandleInput(key(core.EVENT_CODE_KEY_RELEASED, core.KEY_A))
	assert.Equal(t, math.Vec3{}, cam.Move)

	stopped := cam.Position
	tp.renderFrame(t)
	assert.Equal(t, stopped, cam.Position)

	// Keys the demo does not use are left to other listeners.
	assert.False(t, tp.HandleInput(key(core.EVENT_CODE_KEY_PRESSED, core.KEY_ESCAPE)))
}

func TestResizeEvent(t *testing.T) {
	tp := newTestPipeline(t, DefaultConfig())

	ev := core.EventContext{Type: core.EVENT_CODE_RESIZED, Width: 800, Height: 600}
	assert.False(t, tp.HandleInput(ev), "resize is left to other listeners")
	require.Len(t, tp.rec.Ops(backend.OP_RESIZE), 1)
	assert.Equal(t, "800x600", tp.rec.Ops(backend.OP_RESIZE)[0].Detail)
	assert.Equal(t, math.Vec2i{X: 800, Y: 600}, tp.Renderer().BackBufferSize())
	assert.Equal(t, uint32(800), tp.targets.GBuffer.Width())
	assert.Equal(t, uint32(300), tp.targets.IndirectLightAccumulation.Height())
	assert.Equal(t, uint32(4096), tp.targets.ShadowMap.Width())

	// Same size and minimized windows are ignored.
	tp.HandleInput(ev)
	tp.HandleInput(core.EventContext{Type: core.EVENT_CODE_RESIZED})
	assert.Len(t, tp.rec.Ops(backend.OP_RESIZE), 1)

	tp.renderFrame(t)
}

func TestEventBusDelivery(t *testing.T) {
	tp := newTestPipeline(t, DefaultConfig())
	bus := core.NewEventBus()
	tp.RegisterEvents(bus)

	assert.True(t, bus.Fire(nil, key(core.EVENT_CODE_KEY_PRESSED, core.KEY_D)))
	assert.Equal(t, float32(1), tp.Context().Camera.Move.X)

	tp.UnregisterEvents(bus)
	assert.False(t, bus.Fire(nil, key(core.EVENT_CODE_KEY_RELEASED, core.KEY_D)))
	assert.Equal(t, float32(1), tp.Context().Camera.Move.X)
}
