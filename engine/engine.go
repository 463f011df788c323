package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"github.com/sirupsen/logrus"
)

// ErrNoBackend is returned by RenderOnce when the engine has no backend to present through.
var ErrNoBackend = errors.New("engine: no backend")

// engine implements the Engine interface.
// Coordinates the tick, render, and window threads.
type engine struct {
	mu *sync.RWMutex

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window  window.Window
	backend renderer.Backend
	log     logrus.FieldLogger

	profiler         *profiler.Profiler
	profilingEnabled bool
	metrics          *profiler.Metrics

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration
}

var _ Engine = &engine{}

// Engine drives scenes through a backend. Game logic runs on a fixed-rate tick goroutine while
// frames are rendered on a separate goroutine; the window message loop owns the calling thread.
type Engine interface {
	// Window returns the host window, or nil for a headless engine.
	Window() window.Window

	// Backend returns the backend frames are presented through.
	Backend() renderer.Backend

	// EnableProfiler enables periodic profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap. Pass 0 to uncap.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key. Lower keys render first.
	//
	// Parameters:
	//   - key: the z-index determining render order
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	RemoveScene(key int)

	// Scene returns the scene at the given key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	Scenes() map[int]scene.Scene

	// RenderOnce renders every live scene into a single presented frame. Scene failures are
	// logged and counted; only backend frame errors are returned.
	//
	// Parameters:
	//   - ctx: cancels the frame between scenes
	//
	// Returns:
	//   - error: ErrNoBackend, or an error from opening or closing the frame
	RenderOnce(ctx context.Context) error

	// Resize propagates a framebuffer resize to the backend and every scene camera.
	//
	// Parameters:
	//   - width, height: new framebuffer size in pixels
	Resize(width, height int)

	// Run starts the tick and render goroutines and then runs the window message loop,
	// blocking until the window closes. A headless engine blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop and stops scene readiness polling. Run
	// returns once the goroutines have exited. Safe to call multiple times and from callbacks.
	Quit()
}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.RWMutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Noop()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log))
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Backend() renderer.Backend {
	return e.backend
}

func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.handle()
	if e.window == nil {
		<-e.quitChannel
	} else {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel once and stops every scene's readiness poll.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		scenes := make([]scene.Scene, 0, len(e.scenes))
		for _, s := range e.scenes {
			scenes = append(scenes, s)
		}
		e.mu.Unlock()

		close(e.quitChannel)
		for _, s := range scenes {
			s.Pending().Stop()
		}
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handle launches the tick, render, and quit goroutines.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate tick loop and applies tick rate changes from
// tickRateChannel.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	e.mu.RLock()
	rate := e.engineTickRate
	e.mu.RUnlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.mu.RLock()
			cb := e.tickCallback
			e.mu.RUnlock()
			if cb != nil {
				cb(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

// handleRender runs the render loop until quit. A panic inside a frame is logged and shuts
// the engine down.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("engine: render goroutine recovered from panic")
			e.signalQuit()
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-e.quitChannel:
			cancel()
		case <-ctx.Done():
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastRender).Seconds())
		lastRender = frameStart

		if err := e.RenderOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.log.WithError(err).Warn("engine: frame failed")
		}

		e.mu.RLock()
		cb := e.renderCallback
		profiling := e.profilingEnabled
		limit := e.renderFrameLimit
		e.mu.RUnlock()

		if cb != nil {
			cb(dt)
		}
		if profiling {
			e.profiler.Tick()
		}

		if limit > 0 {
			if remaining := limit - time.Since(frameStart); remaining > 0 {
				select {
				case <-e.quitChannel:
					return
				case <-time.After(remaining):
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// orderedScenes returns the live scenes in ascending z-index order.
func (e *engine) orderedScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; !s.IsDisposed() {
			out = append(out, s)
		}
	}
	return out
}

func (e *engine) RenderOnce(ctx context.Context) error {
	if e.backend == nil {
		return ErrNoBackend
	}
	if err := e.backend.BeginFrame(); err != nil {
		return fmt.Errorf("engine: begin frame: %w", err)
	}

	for _, s := range e.orderedScenes() {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := s.RenderFrame(ctx); err != nil {
			e.log.WithError(err).WithField("scene", s.Name()).Warn("engine: scene frame failed")
			e.metrics.ObserveError()
			continue
		}
		e.metrics.ObserveFrame(s.Statistics())
	}

	if err := e.backend.EndFrame(); err != nil {
		return fmt.Errorf("engine: end frame: %w", err)
	}
	e.backend.Present()
	return ctx.Err()
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.backend != nil {
		e.backend.Resize(width, height)
	}
	aspect := float32(width) / float32(height)
	for _, s := range e.orderedScenes() {
		for _, c := range s.Cameras() {
			c.SetAspect(aspect)
		}
	}
	e.log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("engine: resized")
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickRate takes effect immediately when the engine is running.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	e.mu.Lock()
	running := e.running
	if !running {
		e.engineTickRate = newRate
	}
	e.mu.Unlock()
	if !running {
		return
	}

	// Replace any pending update that the tick loop has not consumed.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameLimit(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	if s == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
