package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/physics"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/tracing"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	metricsAddr := flag.String("metrics", "", "address to serve Prometheus metrics on, e.g. :9090")
	stereo := flag.Bool("stereo", false, "render through a side-by-side stereo rig")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log := logger.New(cfg.Logging)
	if err := run(cfg, log, *metricsAddr, *stereo); err != nil {
		log.WithError(err).Fatal("viewer: exiting")
	}
}

func run(cfg config.Config, log *logrus.Logger, metricsAddr string, stereo bool) error {
	win, err := window.NewWindow(window.WithConfig(cfg.Window))
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode, err := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	if err != nil {
		return err
	}
	width, height := win.Size()
	backend, err := renderer.NewWGPUBackend(win.SurfaceDescriptor(), width, height,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceFallback),
	)
	if err != nil {
		return err
	}

	tracer, shutdownTracing, err := tracing.Setup(cfg.Tracing, os.Stdout, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracing.ShutdownWithTimeout(shutdownTracing, 2*time.Second); err != nil {
			log.WithError(err).Warn("viewer: flush traces")
		}
	}()

	metrics, err := profiler.NewMetrics(nil)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("viewer: metrics server stopped")
			}
		}()
		defer srv.Close()
	}

	body := newWorld()
	sc := scene.NewScene("viewer", backend,
		scene.WithLogger(log),
		scene.WithTracer(tracer),
		scene.WithConfig(cfg.Scene),
		scene.WithPollInterval(cfg.Engine.PendingPollInterval.Std()),
		scene.WithPhysics(physics.NewStepper(physics.EngineFunc(body.step))),
	)
	defer sc.Dispose()

	player := populate(sc, stereo, win.Aspect())
	if cfg.Scene.UseSelectionOctree {
		sc.CreateOrUpdateSelectionOctree(cfg.Scene.OctreeMaxCapacity, cfg.Scene.OctreeMaxDepth)
	}
	sc.ExecuteWhenReady(func() {
		log.WithField("entities", len(sc.Entities())).Info("viewer: scene ready")
	})

	eng := engine.NewEngine(
		engine.WithConfig(cfg.Engine),
		engine.WithWindow(win),
		engine.WithBackend(backend),
		engine.WithLogger(log),
		engine.WithMetrics(metrics),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(log))),
		engine.WithScene(0, sc),
	)

	input := newInput()
	win.SetKeyCallback(func(key window.Key, pressed bool) {
		input.set(key, pressed)
		if !pressed {
			return
		}
		switch key {
		case window.KeyB:
			for _, e := range sc.Entities() {
				if m, ok := e.(entity.Mesh); ok {
					m.SetShowBoundingBox(!m.ShowBoundingBox())
				}
			}
		case window.KeyO:
			o := sc.CreateOrUpdateSelectionOctree(cfg.Scene.OctreeMaxCapacity, cfg.Scene.OctreeMaxDepth)
			log.WithField("blocks", len(o.Blocks())).Info("viewer: selection octree rebuilt")
		case window.KeyP:
			input.requestPick()
		}
	})
	win.SetCursorCallback(input.setCursor)
	win.SetScrollCallback(func(delta float32) {
		if cam := sc.ActiveCamera(); cam != nil {
			cam.SetFov(mgl32.Clamp(cam.Fov()-delta*mgl32.DegToRad(2), mgl32.DegToRad(15), mgl32.DegToRad(90)))
		}
	})

	eng.SetTickCallback(func(dt float32) {
		move := input.direction().Mul(4 * dt)
		move = move.Add(body.gravity(dt))
		if _, hit := sc.MoveWithCollisions(player, move); hit != nil {
			body.land()
		}
		if x, y, ok := input.takePick(); ok {
			pick := sc.Pick(x, y, func(e entity.Entity) bool { return e != player && e.IsVisible() })
			if pick.Hit {
				log.WithFields(logrus.Fields{
					"entity":   pick.Entity.Name(),
					"distance": pick.Distance,
					"face":     pick.FaceID,
				}).Info("viewer: picked")
			}
		}
		if cam := sc.ActiveCamera(); cam != nil {
			p := player.AbsolutePosition()
			cam.SetTarget(p)
			cam.SetPosition(p.Add(mgl32.Vec3{0, 6, 14}))
		}
	})

	log.WithFields(logrus.Fields{"width": width, "height": height, "stereo": stereo}).Info("viewer: running")
	eng.Run()
	return nil
}

// populate builds the demo content and returns the player mesh.
func populate(sc scene.Scene, stereo bool, aspect float32) entity.Mesh {
	cam := camera.NewCamera("main",
		camera.WithPosition(mgl32.Vec3{0, 6, 14}),
		camera.WithTarget(mgl32.Vec3{0, 0, 0}),
		camera.WithAspect(aspect),
	)
	if stereo {
		camera.NewStereoRig(cam, 0.065)
	}
	sc.SetActiveCamera(cam)

	groundPos, groundIdx := entity.GroundGeometry(60)
	ground := entity.NewMesh("ground",
		entity.WithGeometry(groundPos, groundIdx),
		entity.WithMaterial(entity.NewMaterial("grass")),
		entity.WithCheckCollisions(true),
	)
	sc.AddEntity(ground)

	boxPos, boxIdx := entity.BoxGeometry(mgl32.Vec3{1, 1, 1})
	crate := entity.NewMesh("crate",
		entity.WithGeometry(boxPos, boxIdx),
		entity.WithMaterial(entity.NewMaterial("wood")),
		entity.WithPosition(mgl32.Vec3{-20, 0.5, -20}),
		entity.WithCheckCollisions(true),
	)
	sc.AddEntity(crate)
	for x := -4; x <= 4; x++ {
		for z := -4; z <= 4; z++ {
			if x == -4 && z == -4 {
				continue
			}
			inst := crate.CreateInstance(fmt.Sprintf("crate_%d_%d", x, z))
			inst.SetPosition(mgl32.Vec3{float32(x) * 5, 0.5, float32(z) * 5})
			sc.AddEntity(inst)
		}
	}

	glass := entity.NewMaterial("glass", entity.WithBaseColor([4]float32{0.6, 0.8, 1, 0.4}))
	for i := range 3 {
		sc.AddEntity(entity.NewMesh(fmt.Sprintf("pane_%d", i),
			entity.WithGeometry(boxPos, boxIdx),
			entity.WithMaterial(glass),
			entity.WithScaling(mgl32.Vec3{3, 3, 0.1}),
			entity.WithPosition(mgl32.Vec3{float32(i-1) * 4, 1.5, 6}),
			entity.WithRenderGroupID(1),
			entity.WithAlphaIndex(i),
		))
	}

	player := entity.NewMesh("player",
		entity.WithGeometry(boxPos, boxIdx),
		entity.WithMaterial(entity.NewMaterial("player")),
		entity.WithPosition(mgl32.Vec3{0, 3, 0}),
		entity.WithEllipsoid(mgl32.Vec3{0.5, 1, 0.5}),
		entity.WithEllipsoidOffset(mgl32.Vec3{0, 1, 0}),
	)
	sc.AddEntity(player)

	sun := light.NewLight("sun", light.LightTypeDirectional,
		light.WithDirection(mgl32.Vec3{-0.4, -1, -0.3}),
		light.WithIntensity(1.2),
	)
	sunView := camera.NewCamera("sun_view",
		camera.WithPosition(mgl32.Vec3{20, 50, 15}),
		camera.WithTarget(mgl32.Vec3{0, 0, 0}),
		camera.WithFar(light.DefaultShadowFar),
	)
	shadows := light.NewShadowGenerator(sun, 2048, func(t rendertarget.RenderTarget, renderID uint64) error {
		return sc.RenderPass(t, sunView, renderID)
	})
	for _, e := range sc.Entities() {
		shadows.AddShadowCaster(e.ID())
	}
	sc.AddLight(sun)
	return player
}

// world integrates vertical velocity for the player between ticks.
type world struct {
	mu       *sync.Mutex
	velocity float32
}

func newWorld() *world {
	return &world{mu: &sync.Mutex{}}
}

// step runs on the render goroutine with the clamped physics delta.
func (w *world) step(seconds float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.velocity = max(w.velocity-9.81*seconds, -30)
}

func (w *world) gravity(dt float32) mgl32.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return mgl32.Vec3{0, w.velocity * dt, 0}
}

func (w *world) land() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.velocity = 0
}

type input struct {
	mu   *sync.Mutex
	down map[window.Key]bool

	cursorX, cursorY float32
	pick             bool
}

func newInput() *input {
	return &input{mu: &sync.Mutex{}, down: make(map[window.Key]bool)}
}

func (i *input) set(key window.Key, pressed bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.down[key] = pressed
}

func (i *input) setCursor(x, y float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cursorX, i.cursorY = x, y
}

func (i *input) requestPick() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pick = true
}

// takePick returns the cursor position once per requestPick.
func (i *input) takePick() (float32, float32, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.pick {
		return 0, 0, false
	}
	i.pick = false
	return i.cursorX, i.cursorY, true
}

func (i *input) direction() mgl32.Vec3 {
	i.mu.Lock()
	defer i.mu.Unlock()
	var d mgl32.Vec3
	if i.down[window.KeyW] {
		d[2]--
	}
	if i.down[window.KeyS] {
		d[2]++
	}
	if i.down[window.KeyA] {
		d[0]--
	}
	if i.down[window.KeyD] {
		d[0]++
	}
	if d.Len() > 0 {
		d = d.Normalize()
	}
	return d
}

