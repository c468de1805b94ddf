package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * KeyCode key = ev.Key
	 */
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * KeyCode key = ev.Key
	 */
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed.
	/* Context usage:
	 * Button button = ev.Button
	 */
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04

	// Mouse button released.
	/* Context usage:
	 * Button button = ev.Button
	 */
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved.
	/* Context usage:
	 * int32 x = ev.X, y = ev.Y
	 * int32 dx = ev.DeltaX, dy = ev.DeltaY
	 */
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * uint32 width = ev.Width, height = ev.Height
	 */
	EVENT_CODE_RESIZED EventCode = 0x08

	// A watched shader source changed on disk.
	/* Context usage:
	 * string path = ev.Path
	 */
	EVENT_CODE_SHADER_CHANGED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

// EventContext carries the payload of a fired event. Only the fields
// documented for the event code are meaningful.
type EventContext struct {
	Type   EventCode
	Key    KeyCode
	Button Button
	X      int32
	Y      int32
	DeltaX int32
	DeltaY int32
	Width  uint32
	Height uint32
	Path   string
}

// Should return true if handled.
type FnOnEvent func(sender interface{}, listener interface{}, context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events to the listeners registered for their code.
type EventBus struct {
	mutex      sync.RWMutex
	registered map[EventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return FALSE.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback function to be invoked when the event code is fired.
 * @returns TRUE if the event is successfully registered; otherwise false.
 */
func (b *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, e := range b.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	b.registered[code] = append(b.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns FALSE.
 */
func (b *EventBus) Unregister(code EventCode, listener interface{}) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * TRUE, the event is considered handled and is not passed on to any more listeners.
 * @returns TRUE if handled, otherwise FALSE.
 */
func (b *EventBus) Fire(sender interface{}, context EventContext) bool {
	b.mutex.RLock()
	events := append([]*registeredEvent(nil), b.registered[context.Type]...)
	b.mutex.RUnlock()

	for _, e := range events {
		if e.callback(sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}
