// Package game runs the fluid sandbox: it owns the block world and its
// simulation, the devices placed in it, the camera and renderers, input
// handling, and the telemetry hooks that watch every run.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"seep/camera"
	"seep/components"
	"seep/config"
	"seep/renderer"
	"seep/telemetry"
	"seep/ui"
	"seep/world"
)

// Panel layout.
const (
	panelPad       = 10
	controlsWidth  = 250
	tunablesWidth  = 280
	cellPanelWidth = 260
	cellPanelY     = 450
)

// Options configures a game instance.
type Options struct {
	Seed           int64 // overrides the configured world seed when nonzero
	LogStats       bool
	StatsWindowSec float64 // overrides the configured stats window when > 0
	OutputDir      string  // run output directory; empty disables output
	Headless       bool
	StepsPerUpdate int
}

// Game owns the sandbox state and the main loop.
type Game struct {
	cfg   *config.Config
	world *world.World
	rng   *rand.Rand

	// Placed devices live in an ECS world.
	ecs           *ecs.World
	emitterMap    *ecs.Map2[components.Position, components.Emitter]
	drainMap      *ecs.Map2[components.Position, components.Drain]
	emitterFilter *ecs.Filter2[components.Position, components.Emitter]
	drainFilter   *ecs.Filter2[components.Position, components.Drain]

	// Rendering, nil in headless mode
	camera     *camera.Camera
	background *renderer.BackgroundRenderer
	terrain    *renderer.TerrainRenderer
	fluidR     *renderer.FluidRenderer

	// UI, nil in headless mode
	overlays       *ui.OverlayRegistry
	hud            *ui.HUD
	controls       *ui.ControlsPanel
	tunables       *ui.TunablesPanel
	cellPanel      *ui.CellPanel
	showCellPanel  bool
	controlsHeight int32

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	detector      *telemetry.EventDetector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	chunkCallback func([]world.ChunkCoord)

	// Loop state
	tick           int
	paused         bool
	pendingSteps   int
	stepsPerUpdate int
	headless       bool

	// Interaction state
	tool       Tool
	pourFluid  fluidPreset
	brushRad   int
	hoverX     int32
	hoverY     int32
	hoverValid bool

	// Chunks touched recently, keyed to the tick that touched them.
	// Feeds the flow activity overlay.
	activity map[world.ChunkCoord]int

	screenWidth  int32
	screenHeight int32
}

// NewGame generates a world from the loaded config and wires up the
// loop. Call Unload when done.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()

	genCfg := cfg.World
	if opts.Seed != 0 {
		genCfg.Seed = opts.Seed
	}

	params := cfg.Fluid.Params()
	w := world.New(int32(cfg.World.Width), int32(cfg.World.Height), int32(cfg.World.ChunkSize), params)
	world.NewGenerator(genCfg).Generate(w)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing run config: %w", err)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	ew := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		world: w,
		rng:   rand.New(rand.NewSource(genCfg.Seed)),

		ecs:           ew,
		emitterMap:    ecs.NewMap2[components.Position, components.Emitter](ew),
		drainMap:      ecs.NewMap2[components.Position, components.Drain](ew),
		emitterFilter: ecs.NewFilter2[components.Position, components.Emitter](ew),
		drainFilter:   ecs.NewFilter2[components.Position, components.Drain](ew),

		collector:     telemetry.NewCollector(statsWindow, params.UpdateInterval),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		detector:      telemetry.NewEventDetector(12),
		outputManager: om,
		logStats:      opts.LogStats,

		stepsPerUpdate: steps,
		headless:       opts.Headless,

		tool:      ToolWater,
		pourFluid: waterPreset,
		brushRad:  cfg.Sandbox.PaintRadius,
		activity:  make(map[world.ChunkCoord]int),

		screenWidth:  int32(cfg.Screen.Width),
		screenHeight: int32(cfg.Screen.Height),
	}

	if !opts.Headless {
		g.camera = camera.New(
			float32(cfg.Screen.Width), float32(cfg.Screen.Height),
			cfg.Derived.WorldPixelW, cfg.Derived.WorldPixelH,
		)
		g.background = renderer.NewBackgroundRenderer(g.screenWidth, g.screenHeight)
		g.terrain = renderer.NewTerrainRenderer(w, cfg.Derived.CellSize32)
		g.fluidR = renderer.NewFluidRenderer(w, cfg.Derived.CellSize32)

		g.overlays = ui.NewOverlayRegistry()
		g.hud = ui.NewHUD()
		g.controls = ui.NewControlsPanel(panelPad, 130, controlsWidth)
		g.controls.SetVisible(true)
		g.tunables = ui.NewTunablesPanel(g.screenWidth-tunablesWidth-panelPad, panelPad, tunablesWidth)
		g.cellPanel = ui.NewCellPanel(g.screenWidth-cellPanelWidth-panelPad, cellPanelY, cellPanelWidth)
	}

	g.seedDevices(cfg.Sandbox.StartEmitters)

	// The ledger baseline is the post-generation total; pools seeded by
	// the generator are world content, not injected weight.
	g.collector.Rebase(w.Grid().TotalWeight())
	w.UpdateFluid()

	return g, nil
}

// SetStatsCallback registers a sink for flushed stats windows. The
// callback runs on the game loop and must not block.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// SetChunkCallback registers a sink for the chunks each tick changed.
// The callback runs on the game loop and must not block.
func (g *Game) SetChunkCallback(fn func([]world.ChunkCoord)) {
	g.chunkCallback = fn
}

// Update advances one frame: input first, then as many simulation steps
// as the speed setting asks for.
func (g *Game) Update() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	g.handleInput()
	g.updateLoadedRegion()

	g.perfCollector.StartPhase(telemetry.PhaseSim)
	switch {
	case !g.paused:
		dt := float64(rl.GetFrameTime())
		for i := 0; i < g.stepsPerUpdate; i++ {
			g.step(dt)
		}
	case g.pendingSteps > 0:
		// Manual stepping while paused runs at the fixed interval so
		// each keypress lands exactly the requested number of ticks.
		interval := g.world.Grid().Params().UpdateInterval
		for i := 0; i < g.pendingSteps; i++ {
			g.step(interval)
		}
		g.pendingSteps = 0
	}
}

// UpdateHeadless advances stepsPerUpdate ticks at the fixed update
// interval, with no input or rendering. It brackets its own perf
// sample; in graphics mode Draw closes the one Update opens.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	g.perfCollector.StartPhase(telemetry.PhaseSim)

	interval := g.world.Grid().Params().UpdateInterval
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step(interval)
	}

	g.perfCollector.EndTick()
}

// step advances the simulation clock by dt seconds. When the clock
// crosses an update interval boundary the tick count advances and the
// devices and telemetry run, whether or not the grid stepped: a settled
// grid still ticks so emitters keep pouring into it.
func (g *Game) step(dt float64) {
	stats, stepped := g.world.Update(dt)
	if !stepped && !stats.Settled {
		return
	}
	g.tick++
	if stepped {
		g.collector.RecordTick(stats)
	}

	g.tickEmitters()
	g.tickDrains()

	g.perfCollector.StartPhase(telemetry.PhaseStream)
	g.publishChunks()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.StartPhase(telemetry.PhaseSim)
}

// publishChunks drains the chunks this tick dirtied into the renderers,
// the activity overlay, and the registered chunk callback.
func (g *Game) publishChunks() {
	chunks := g.world.DrainDirtyChunks()
	if len(chunks) == 0 {
		return
	}

	for _, c := range chunks {
		if g.terrain != nil {
			g.terrain.MarkChunkDirty(c)
		}
		if g.fluidR != nil {
			g.fluidR.MarkChunkDirty(c)
		}
		g.activity[c] = g.tick
	}

	for c, last := range g.activity {
		if g.tick-last > activityFadeTicks {
			delete(g.activity, c)
		}
	}

	if g.chunkCallback != nil {
		g.chunkCallback(chunks)
	}
}

// Unload releases GPU resources and closes run output.
func (g *Game) Unload() {
	if !g.headless {
		g.terrain.Unload()
		g.fluidR.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("closing run output", "error", err)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int { return g.tick }

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// World returns the block world the game runs.
func (g *Game) World() *world.World { return g.world }
