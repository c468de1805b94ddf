package core

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestEventBusStopsAtFirstHandler(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	first, second := "first", "second"
	require.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, first, func(_ interface{}, l interface{}, _ EventContext) bool {
		calls = append(calls, l.(string))
		return true
	}))
	require.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, second, func(_ interface{}, l interface{}, _ EventContext) bool {
		calls = append(calls, l.(string))
		return false
	}))
	assert.False(t, bus.Register(EVENT_CODE_KEY_PRESSED, first, nil), "duplicate listener")

	assert.True(t, bus.Fire(nil, EventContext{Type: EVENT_CODE_KEY_PRESSED, Key: KEY_W}))
	assert.Equal(t, []string{"first"}, calls)

	require.True(t, bus.Unregister(EVENT_CODE_KEY_PRESSED, first))
	assert.False(t, bus.Fire(nil, EventContext{Type: EVENT_CODE_KEY_PRESSED}))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.False(t, bus.Unregister(EVENT_CODE_RESIZED, first))
}

func TestInputStateMouseDeltas(t *testing.T) {
	bus := NewEventBus()
	input := NewInputState(bus)

	var moves []EventContext
	bus.Register(EVENT_CODE_MOUSE_MOVED, t, func(_ interface{}, _ interface{}, ctx EventContext) bool {
		moves = append(moves, ctx)
		return true
	})

	input.ProcessMouseMove(10, 10)
	input.ProcessMouseMove(15, 8)
	input.ProcessMouseMove(15, 8)

	require.Len(t, moves, 1)
	assert.Equal(t, int32(5), moves[0].DeltaX)
	assert.Equal(t, int32(-2), moves[0].DeltaY)
}

func TestInputStateKeyEdges(t *testing.T) {
	bus := NewEventBus()
	input := NewInputState(bus)

	var codes []EventCode
	record := func(_ interface{}, _ interface{}, ctx EventContext) bool {
		codes = append(codes, ctx.Type)
		return true
	}
	bus.Register(EVENT_CODE_KEY_PRESSED, t, record)
	bus.Register(EVENT_CODE_KEY_RELEASED, t, record)

	input.ProcessKey(KEY_W, true)
	input.ProcessKey(KEY_W, true)
	assert.True(t, input.IsKeyDown(KEY_W))
	input.ProcessKey(KEY_W, false)

	assert.Equal(t, []EventCode{EVENT_CODE_KEY_PRESSED, EVENT_CODE_KEY_RELEASED}, codes)
}

func TestLoadEventLog(t *testing.T) {
	l := NewLoadEventLog()
	l.Push("Loading %s", "shaders")
	text, v1 := l.Text()
	assert.Equal(t, "Loading shaders... ", text)

	l.Pop()
	text, v2 := l.Text()
	assert.True(t, strings.HasPrefix(text, "Loading shaders... Done in "))
	assert.True(t, strings.HasSuffix(text, " ms\n"))
	assert.Greater(t, v2, v1)

	assert.Zero(t, l.Pop())
}

func TestResourceLoadErrorUnwraps(t *testing.T) {
	cause := os.ErrNotExist
	err := error(NewResourceLoadError("models/sponza.obj", LoadStageOpen, cause))

	assert.True(t, errors.Is(err, os.ErrNotExist))
	var rle *ResourceLoadError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, LoadStageOpen, rle.Stage)
	assert.Contains(t, err.Error(), "models/sponza.obj")
}

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	_, avg := m.Frame()
	assert.InDelta(t, 16.0, avg, 1e-9)
}
