// Package game implements the main application loop: window, renderer,
// emulated XR platform, and state management.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/banyapon/vrmecanism/internal/assets"
	"github.com/banyapon/vrmecanism/internal/config"
	"github.com/banyapon/vrmecanism/internal/engine/camera"
	"github.com/banyapon/vrmecanism/internal/engine/interact"
	"github.com/banyapon/vrmecanism/internal/engine/render"
	"github.com/banyapon/vrmecanism/internal/engine/window"
	"github.com/banyapon/vrmecanism/internal/game/states"
	"github.com/banyapon/vrmecanism/internal/logger"
	"github.com/banyapon/vrmecanism/internal/xr/xremu"
)

// App is the main application instance.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *render.Renderer
	camera   *camera.OrbitCamera
	emulator *xremu.Emulator
	engine   *interact.Engine
	library  *assets.Library
	states   *states.Manager
}

// New creates the application and all its subsystems.
func New(cfg *config.Config) (*App, error) {
	slog.Info("initializing app",
		"width", cfg.Graphics.Width,
		"height", cfg.Graphics.Height,
	)

	a := &App{cfg: cfg}

	var err error
	a.library, err = assets.OpenLibrary(cfg.Data.ModelsDir, cfg.Data.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to open model library: %w", err)
	}

	// Window first: the renderer needs a live OpenGL context.
	a.window, err = window.New(window.Config{
		Title:      "vrmecanism",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.renderer, err = render.New(render.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.camera = camera.NewOrbitCamera()
	a.emulator = xremu.New(logger.Named("xremu"))
	a.engine = interact.New(interact.Config{
		BoostFactor:   cfg.Interaction.BoostFactor,
		PlaceDistance: cfg.Interaction.PlaceDistance,
		PlaceDrop:     cfg.Interaction.PlaceDrop,
		RotationLimit: cfg.Interaction.RotationLimitRad,
	}, a.emulator, logger.Named("interact"))

	a.states = states.NewManager()
	ctx := &states.Context{
		Manager:  a.states,
		Library:  a.library,
		Engine:   a.engine,
		Renderer: a.renderer,
		Camera:   a.camera,
		Window:   a.window,
		Platform: a.emulator,
		Log:      logger.Named("states"),
	}
	a.states.Change(states.NewModelSelectState(ctx))

	slog.Info("app initialized")
	return a, nil
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	slog.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if err := a.pumpEvents(); err != nil {
			return err
		}

		if err := a.states.Update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		a.renderer.Begin()
		if err := a.states.Render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.renderer.End()

		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			slog.Debug("fps", "count", frameCount, "dt", fmt.Sprintf("%.2fms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// pumpEvents drains the SDL queue: quit and resize are handled here, XR
// emulation gets the next look, and whatever is left goes to the current
// state.
func (a *App) pumpEvents() error {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			a.running = false
			return nil

		case *sdl.WindowEvent:
			if ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				w, h := a.window.GetDrawableSize()
				a.renderer.Resize(w, h)
			}
			continue
		}

		if a.emulator.HandleEvent(event) {
			continue
		}

		if err := a.states.HandleInput(event); err != nil {
			return fmt.Errorf("input error: %w", err)
		}
	}
	return nil
}

// Close cleans up application resources.
func (a *App) Close() {
	slog.Info("closing app")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

// Quit asks the main loop to stop after the current frame.
func (a *App) Quit() {
	a.running = false
}
