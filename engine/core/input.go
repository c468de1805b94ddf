package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions. Values follow the Win32 virtual-key codes.
type KeyCode uint16

const (
	KEY_ESCAPE   KeyCode = 0x1B
	KEY_SHIFT    KeyCode = 0x10
	KEY_CONTROL  KeyCode = 0x11
	KEY_SPACE    KeyCode = 0x20
	KEY_A        KeyCode = 0x41
	KEY_D        KeyCode = 0x44
	KEY_R        KeyCode = 0x52
	KEY_S        KeyCode = 0x53
	KEY_W        KeyCode = 0x57
	KEY_F1       KeyCode = 0x70
	KEY_F2       KeyCode = 0x71
	KEY_LSHIFT   KeyCode = 0xA0
	KEY_RSHIFT   KeyCode = 0xA1
	KEY_LCONTROL KeyCode = 0xA2
	KEY_RCONTROL KeyCode = 0xA3

	KEYS_MAX_KEYS KeyCode = 0x100
)

// Mouse state structure
type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// InputState translates raw window callbacks into events on the bus. Mouse
// moves carry the delta to the previous position.
type InputState struct {
	Keyboard KeyboardState
	Mouse    MouseState
	hasMouse bool
	bus      *EventBus
}

func NewInputState(bus *EventBus) *InputState {
	return &InputState{bus: bus}
}

func (s *InputState) IsKeyDown(key KeyCode) bool {
	return s.Keyboard.Keys[key]
}

func (s *InputState) IsButtonDown(button Button) bool {
	return s.Mouse.Buttons[button]
}

func (s *InputState) ProcessKey(key KeyCode, pressed bool) {
	// Only handle this if the state actually changed.
	if s.Keyboard.Keys[key] == pressed {
		return
	}
	s.Keyboard.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	s.bus.Fire(s, EventContext{Type: code, Key: key})
}

func (s *InputState) ProcessButton(button Button, pressed bool) {
	if s.Mouse.Buttons[button] == pressed {
		return
	}
	s.Mouse.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	s.bus.Fire(s, EventContext{Type: code, Button: button, X: s.Mouse.X, Y: s.Mouse.Y})
}

func (s *InputState) ProcessMouseMove(x, y int32) {
	if !s.hasMouse {
		s.Mouse.X, s.Mouse.Y = x, y
		s.hasMouse = true
		return
	}
	// Only process if actually different
	if s.Mouse.X == x && s.Mouse.Y == y {
		return
	}
	dx, dy := x-s.Mouse.X, y-s.Mouse.Y
	s.Mouse.X, s.Mouse.Y = x, y

	s.bus.Fire(s, EventContext{
		Type:   EVENT_CODE_MOUSE_MOVED,
		X:      x,
		Y:      y,
		DeltaX: dx,
		DeltaY: dy,
	})
}
