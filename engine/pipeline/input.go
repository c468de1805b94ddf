package pipeline

import (
	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
)

// Degrees of rotation per pixel of mouse movement.
const MOUSE_DEGREES_PER_PIXEL = 0.1

var inputEvents = []core.EventCode{
	core.EVENT_CODE_KEY_PRESSED,
	core.EVENT_CODE_KEY_RELEASED,
	core.EVENT_CODE_BUTTON_PRESSED,
	core.EVENT_CODE_BUTTON_RELEASED,
	core.EVENT_CODE_MOUSE_MOVED,
	core.EVENT_CODE_RESIZED,
	core.EVENT_CODE_SHADER_CHANGED,
}

// RegisterEvents subscribes the pipeline to the input, resize and shader
// change events of bus.
func (p *Pipeline) RegisterEvents(bus *core.EventBus) {
	for _, code := range inputEvents {
		bus.Register(code, p, onEvent)
	}
}

func (p *Pipeline) UnregisterEvents(bus *core.EventBus) {
	for _, code := range inputEvents {
		bus.Unregister(code, p)
	}
}

func onEvent(sender interface{}, listener interface{}, context core.EventContext) bool {
	p, ok := listener.(*Pipeline)
	if !ok {
		return false
	}
	return p.HandleInput(context)
}

/**
 * @brief Applies one input event to the camera and the light.
 * Left drag rotates the camera, right drag rolls it and middle drag rotates
 * the light. W/A/S/D move the camera while held; Shift and Ctrl speed it up
 * or slow it down until released.
 * @returns TRUE if the event was consumed.
 */
func (p *Pipeline) HandleInput(ev core.EventContext) bool {
	switch ev.Type {
	case core.EVENT_CODE_BUTTON_PRESSED, core.EVENT_CODE_BUTTON_RELEASED:
		return p.handleButton(ev.Button, ev.Type == core.EVENT_CODE_BUTTON_PRESSED)
	case core.EVENT_CODE_MOUSE_MOVED:
		return p.handleMouseMove(float32(ev.DeltaX), float32(ev.DeltaY))
	case core.EVENT_CODE_KEY_PRESSED, core.EVENT_CODE_KEY_RELEASED:
		return p.handleKey(ev.Key, ev.Type == core.EVENT_CODE_KEY_PRESSED)
	case core.EVENT_CODE_SHADER_CHANGED:
		return p.ReloadShaders(ev.Path) > 0
	case core.EVENT_CODE_RESIZED:
		if ev.Width == 0 || ev.Height == 0 {
			// Minimized.
			return false
		}
		p.renderer.SetBackBufferSize(math.Vec2i{X: int32(ev.Width), Y: int32(ev.Height)})
		// Other listeners may need to know about it too.
		return false
	}
	return false
}

func (p *Pipeline) handleButton(button core.Button, pressed bool) bool {
	switch button {
	case core.BUTTON_LEFT:
		p.input.rotateCamera = pressed
	case core.BUTTON_RIGHT:
		p.input.rollCamera = pressed
	case core.BUTTON_MIDDLE:
		p.input.rotateLight = pressed
	default:
		return false
	}
	return true
}

func (p *Pipeline) handleMouseMove(dx, dy float32) bool {
	cam := &p.ctx.Camera
	handled := false

	if p.input.rotateCamera {
		rot := math.NewMat4EulerXYZ(degrees(-dy), degrees(-dx), 0)
		cam.Rotation = rot.Mul(cam.Rotation)
		handled = true
	}
	if p.input.rollCamera {
		rot := math.NewMat4EulerXYZ(0, 0, degrees(dx))
		cam.Rotation = rot.Mul(cam.Rotation)
		handled = true
	}
	if p.input.rotateLight {
		light := &p.ctx.Light
		rot := math.NewMat4EulerXYZ(degrees(-dy), degrees(-dx), degrees(dx))
		light.Rotation = rot.Mul(light.Rotation)
		light.Direction = light.Rotation.MulVec4(math.NewVec4(0, -1, 0, 0)).ToVec3()
		handled = true
	}
	return handled
}

func degrees(pixels float32) float32 {
	return math.DegToRad(pixels * MOUSE_DEGREES_PER_PIXEL)
}

func (p *Pipeline) handleKey(key core.KeyCode, pressed bool) bool {
	cam := &p.ctx.Camera
	scene := p.config.Scene

	axis := func(v float32) float32 {
		if pressed {
			return v
		}
		return 0
	}

	switch key {
	case core.KEY_W:
		cam.Move.Z = axis(1)
	case core.KEY_S:
		cam.Move.Z = axis(-1)
	case core.KEY_A:
		cam.Move.X = axis(-1)
	case core.KEY_D:
		cam.Move.X = axis(1)
	case core.KEY_SHIFT, core.KEY_LSHIFT, core.KEY_RSHIFT:
		cam.Speed = 1
		if pressed {
			cam.Speed = scene.FastMultiplier
		}
	case core.KEY_CONTROL, core.KEY_LCONTROL, core.KEY_RCONTROL:
		cam.Speed = 1
		if pressed {
			cam.Speed = scene.SlowMultiplier
		}
	default:
		return false
	}
	return true
}
