package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/iftodebogdan/gitechdemo/engine/assets"
	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
	"github.com/iftodebogdan/gitechdemo/engine/pipeline"
	"github.com/iftodebogdan/gitechdemo/engine/renderer"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/backend"
	"github.com/iftodebogdan/gitechdemo/engine/renderer/resources"
)

type AppState uint32

const (
	// Window and renderer are being created
	APP_STATE_STARTING AppState = iota
	// Render resources are being allocated in the background
	APP_STATE_LOADING_RESOURCES
	// Allocation finished, events are not hooked up yet
	APP_STATE_DONE_LOADING_RESOURCES
	// Frames are being rendered
	APP_STATE_RUNNING
	// Engine is in the process of shutting down
	APP_STATE_SHUTTING_DOWN
)

func (s AppState) String() string {
	switch s {
	case APP_STATE_STARTING:
		return "starting"
	case APP_STATE_LOADING_RESOURCES:
		return "loading resources"
	case APP_STATE_DONE_LOADING_RESOURCES:
		return "done loading resources"
	case APP_STATE_RUNNING:
		return "running"
	case APP_STATE_SHUTTING_DOWN:
		return "shutting down"
	}
	return fmt.Sprintf("AppState(%d)", uint32(s))
}

// Window is the native window hosting the demo.
type Window interface {
	Startup(name string, x, y int32, width, height uint32, bus *core.EventBus) error
	// PumpMessages dispatches pending window messages and returns false once
	// the window wants to close.
	PumpMessages() bool
	SetTitle(title string)
	Shutdown() error
}

type Option func(*Engine)

// WithBackend replaces the device backend. The null backend is used otherwise.
func WithBackend(b backend.Backend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

type Engine struct {
	appConfig *ApplicationConfig
	config    *pipeline.Config
	state     atomic.Uint32
	isRunning atomic.Bool
	// Only touched by the main loop.
	isSuspended bool

	window   Window
	bus      *core.EventBus
	backend  backend.Backend
	assets   *assets.AssetManager
	renderer *renderer.Renderer
	pipeline *pipeline.Pipeline
	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64
	lastFPS  float64

	session       uuid.UUID
	loadDone      chan error
	loadVersion   uint64
	loadLines     int
	loadingScreen *assets.LoadingScreen
}

func New(cfg *pipeline.Config, window Window, opts ...Option) (*Engine, error) {
	app := NewApplicationConfig(cfg)

	am, err := assets.NewAssetManager(app.AssetsDir)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	e := &Engine{
		appConfig: app,
		config:    cfg,
		window:    window,
		bus:       core.NewEventBus(),
		assets:    am,
		clock:     core.NewClock(),
		metrics:   core.NewMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend == nil {
		if e.backend, err = renderer.NewBackend(backend.KIND_NULL); err != nil {
			return nil, err
		}
	}
	e.renderer = renderer.New(e.backend,
		resources.WithTextureLoader(am.TextureLoader()),
		resources.WithModelLoader(am.ModelLoader()),
	)
	e.pipeline = pipeline.New(cfg, e.renderer, am.FS())
	e.state.Store(uint32(APP_STATE_STARTING))
	return e, nil
}

func (e *Engine) State() AppState {
	return AppState(e.state.Load())
}

func (e *Engine) setState(s AppState) {
	core.LogDebug("application state: %s -> %s", e.State(), s)
	e.state.Store(uint32(s))
}

func (e *Engine) Bus() *core.EventBus {
	return e.bus
}

func (e *Engine) Pipeline() *pipeline.Pipeline {
	return e.pipeline
}

func (e *Engine) IsRunning() bool {
	return e.isRunning.Load()
}

// LoadingScreen is nil when no loading font is configured.
func (e *Engine) LoadingScreen() *assets.LoadingScreen {
	return e.loadingScreen
}

// Quit stops the main loop after the current frame. Safe to call from any goroutine.
func (e *Engine) Quit() {
	e.isRunning.Store(false)
}

/**
 * @brief Opens the window, initializes the renderer and starts allocating the
 * render resources in the background. Frames are only rendered once loading
 * has completed.
 */
func (e *Engine) Initialize() error {
	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.window.Startup(e.appConfig.Name,
		e.appConfig.StartPosX,
		e.appConfig.StartPosY,
		e.appConfig.StartWidth,
		e.appConfig.StartHeight,
		e.bus); err != nil {
		return err
	}

	size := math.Vec2i{X: int32(e.appConfig.StartWidth), Y: int32(e.appConfig.StartHeight)}
	if err := e.renderer.Initialize(size); err != nil {
		return err
	}

	if e.appConfig.LoadingFont != "" {
		screen, err := assets.NewLoadingScreen(e.appConfig.LoadingFont, int(e.appConfig.StartWidth), int(e.appConfig.StartHeight))
		if err != nil {
			core.LogWarn("loading screen disabled: %s", err)
		} else {
			e.loadingScreen = screen
		}
	}

	e.isRunning.Store(true)
	e.startLoading()
	return nil
}

func (e *Engine) startLoading() {
	e.session = uuid.New()
	e.loadDone = make(chan error, 1)
	e.setState(APP_STATE_LOADING_RESOURCES)
	core.LogInfo("loading session %s started", e.session)

	go func() {
		e.loadDone <- e.pipeline.AllocateRenderResources()
	}()
}

func (e *Engine) Run() error {
	for e.IsRunning() {
		if !e.window.PumpMessages() {
			e.Quit()
			break
		}
		if err := e.Tick(); err != nil {
			e.Quit()
			return err
		}
	}
	return nil
}

// Tick advances the application by one iteration of the main loop.
func (e *Engine) Tick() error {
	switch e.State() {
	case APP_STATE_LOADING_RESOURCES:
		e.updateLoadingScreen()
		select {
		case err := <-e.loadDone:
			e.loadDone = nil
			e.updateLoadingScreen()
			if err != nil {
				core.LogError("loading session %s failed: %s", e.session, err)
				e.setState(APP_STATE_SHUTTING_DOWN)
				return err
			}
			e.setState(APP_STATE_DONE_LOADING_RESOURCES)
		default:
		}
	case APP_STATE_DONE_LOADING_RESOURCES:
		if err := e.onResourcesLoaded(); err != nil {
			return err
		}
		e.setState(APP_STATE_RUNNING)
	case APP_STATE_RUNNING:
		if !e.isSuspended {
			return e.frame()
		}
	}
	return nil
}

func (e *Engine) onResourcesLoaded() error {
	core.LogInfo("loading session %s complete", e.session)
	e.pipeline.RegisterEvents(e.bus)
	if e.appConfig.HotReload {
		if err := e.assets.Watch(); err != nil {
			core.LogWarn("shader hot reload disabled: %s", err)
		}
	}
	e.window.SetTitle(e.appConfig.Name)
	e.clock.Start()
	e.lastTime = 0
	return nil
}

func (e *Engine) frame() error {
	for _, path := range e.assets.Changes()[assets.ASSET_TYPE_SHADER] {
		e.bus.Fire(e, core.EventContext{Type: core.EVENT_CODE_SHADER_CHANGED, Path: path})
	}

	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime

	presented, err := e.pipeline.RenderScene(float32(delta))
	if err != nil {
		core.LogError("frame failed: %s", err)
		return err
	}
	if !presented {
		core.LogDebug("device not ready, frame skipped")
	}

	e.clock.Update()
	e.metrics.Update(e.clock.Elapsed() - currentTime)
	if fps, ms := e.metrics.Frame(); fps != e.lastFPS {
		e.lastFPS = fps
		e.window.SetTitle(fmt.Sprintf("%s - %.0f FPS (%.2f ms)", e.appConfig.Name, fps, ms))
	}

	e.lastTime = currentTime
	return nil
}

// updateLoadingScreen forwards load events that appeared since the last call.
func (e *Engine) updateLoadingScreen() {
	text, version := e.pipeline.LoadEvents().Text()
	if version == e.loadVersion {
		return
	}
	e.loadVersion = version

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for ; e.loadLines < len(lines); e.loadLines++ {
		// The last line is still in progress until it reports its duration.
		if e.loadLines == len(lines)-1 && !strings.HasSuffix(text, "\n") {
			break
		}
		core.LogInfo("%s", lines[e.loadLines])
	}
	if e.loadingScreen != nil {
		e.loadingScreen.Render(text)
	}
	e.window.SetTitle(fmt.Sprintf("%s - %s", e.appConfig.Name, lines[len(lines)-1]))
}

func (e *Engine) Shutdown() error {
	e.Quit()
	e.pipeline.UnregisterEvents(e.bus)
	e.bus.Unregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	e.bus.Unregister(core.EVENT_CODE_KEY_PRESSED, e)
	e.bus.Unregister(core.EVENT_CODE_RESIZED, e)

	// The loader still owns the renderer until it reports back.
	if e.loadDone != nil {
		<-e.loadDone
		e.loadDone = nil
	}
	e.setState(APP_STATE_SHUTTING_DOWN)

	var errs []error
	if err := e.renderer.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := e.assets.Close(); err != nil && !errors.Is(err, assets.ErrClosed) {
		errs = append(errs, err)
	}
	if err := e.window.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) onEvent(sender interface{}, listener interface{}, context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Quit()
		return true
	}
	return false
}

func (e *Engine) onKey(sender interface{}, listener interface{}, context core.EventContext) bool {
	if context.Key == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.bus.Fire(e, core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(sender interface{}, listener interface{}, context core.EventContext) bool {
	if context.Width == 0 || context.Height == 0 {
		if !e.isSuspended {
			core.LogInfo("Window minimized, suspending application.")
			e.isSuspended = true
		}
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	return false
}
