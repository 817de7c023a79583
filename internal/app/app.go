// Package app implements the main NES emulator application: configuration,
// ROM loading, and the per-frame loop that drives the bus and hands the
// frame buffer to a presentation backend.
package app

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/graphics"
)

// Application owns the emulated system, the presentation backend, and the
// loaded configuration (§4.8 Application & configuration).
type Application struct {
	bus *bus.Bus

	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	config      *Config
	initialized bool

	running bool
	paused  bool

	frameCount uint64
	startTime  time.Time

	romPath   string
	cartridge *cartridge.Cartridge

	lastESCTime time.Time

	lastController1State [8]bool
	lastController2State [8]bool
}

// ApplicationError reports which component and operation failed.
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// NewApplication creates an application with a GUI presentation backend.
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates an application, optionally forcing the
// headless presentation backend regardless of config.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	app := &Application{
		config:    NewConfig(),
		startTime: time.Now(),
	}

	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			log.Printf("could not load config from %s, using defaults: %v", configPath, err)
		}
	}

	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{Component: "initialization", Operation: "component setup", Err: err}
	}

	return app, nil
}

func (app *Application) initializeComponents(headless bool) error {
	app.bus = bus.New()

	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.initialized = true
	return nil
}

func (app *Application) initializeGraphicsBackend(headless bool) error {
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else if app.config.Video.Backend == "headless" {
		backendType = graphics.BackendHeadless
	} else {
		backendType = graphics.BackendEbitengine
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %w", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  "gones - Go NES Emulator",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		AspectRatio:  app.config.Video.AspectRatio,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType != graphics.BackendEbitengine {
			return fmt.Errorf("failed to initialize graphics backend: %w", err)
		}
		log.Printf("Ebitengine backend failed (%v), falling back to headless mode", err)
		app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
		if err != nil {
			return fmt.Errorf("failed to create fallback headless backend: %w", err)
		}
		graphicsConfig.Headless = true
		if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
			return fmt.Errorf("failed to initialize fallback headless backend: %w", err)
		}
	}

	if !graphicsConfig.Headless && !app.graphicsBackend.IsHeadless() {
		app.window, err = app.graphicsBackend.CreateWindow(
			graphicsConfig.WindowTitle, graphicsConfig.WindowWidth, graphicsConfig.WindowHeight)
		if err != nil {
			return fmt.Errorf("failed to create window: %w", err)
		}
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness, app.config.Video.Contrast, app.config.Video.Saturation)

	return nil
}

// LoadROM loads an iNES file into the bus and resets the system.
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}

	app.cartridge = cart
	app.romPath = romPath

	app.bus.LoadCartridge(cart)
	app.bus.Reset()

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("gones - %s", filepath.Base(romPath)))
	}

	app.running = true
	return nil
}

// Run drives the main application loop: poll input, advance one frame,
// hand the buffer to the backend, until the window (or headless caller)
// asks to stop.
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	app.startTime = time.Now()

	if ew, ok := graphics.AsEbitengineWindow(app.window); ok {
		ew.SetEmulatorUpdateFunc(app.tick)
		return ew.Run()
	}

	for app.running {
		if err := app.tick(); err != nil {
			return err
		}
	}
	return nil
}

// tick processes one frame: input, emulation, and presentation.
func (app *Application) tick() error {
	if !app.running {
		return nil
	}

	if err := app.processInput(); err != nil {
		return err
	}

	if !app.paused && app.cartridge != nil {
		app.bus.RunFrame()
		app.frameCount++
	}

	return app.render()
}

// render hands the current frame buffer to the presentation backend.
func (app *Application) render() error {
	if app.window == nil {
		return nil
	}

	frameBuffer := *app.bus.FrameBuffer()
	if app.videoProcessor != nil {
		processed := app.videoProcessor.ProcessFrame(frameBuffer[:])
		copy(frameBuffer[:], processed)
	}

	return app.window.RenderFrame(frameBuffer)
}

// processInput polls the backend for input events and forwards button
// changes to the bus's controller ports.
func (app *Application) processInput() error {
	if app.window == nil {
		return nil
	}

	events := app.window.PollEvents()
	if len(events) == 0 {
		return nil
	}

	controller1 := app.lastController1State
	controller2 := app.lastController2State
	var changed1, changed2 bool

	for _, event := range events {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
			return nil

		case graphics.InputEventTypeKey:
			if event.Key == graphics.KeyEscape && event.Pressed {
				if app.handleEscape() {
					return nil
				}
			}

		case graphics.InputEventTypeButton:
			if is2PButton(event.Button) {
				if idx := get2PButtonIndex(event.Button); idx >= 0 {
					controller2[idx] = event.Pressed
					changed2 = true
				}
			} else if idx := get1PButtonIndex(event.Button); idx >= 0 {
				controller1[idx] = event.Pressed
				changed1 = true
			}
		}
	}

	if changed1 {
		app.bus.SetControllerButtons(1, controller1)
		app.lastController1State = controller1
	}
	if changed2 {
		app.bus.SetControllerButtons(2, controller2)
		app.lastController2State = controller2
	}

	return nil
}

// handleEscape implements the double-tap-within-3-seconds quit gesture and
// reports whether it consumed the key press.
func (app *Application) handleEscape() bool {
	now := time.Now()
	if !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < 3*time.Second {
		app.Stop()
		return true
	}
	app.lastESCTime = now
	return true
}

// get1PButtonIndex maps a graphics.Button to its controller-1 bit position,
// in A, B, Select, Start, Up, Down, Left, Right order.
func get1PButtonIndex(b graphics.Button) int {
	switch b {
	case graphics.ButtonA:
		return 0
	case graphics.ButtonB:
		return 1
	case graphics.ButtonSelect:
		return 2
	case graphics.ButtonStart:
		return 3
	case graphics.ButtonUp:
		return 4
	case graphics.ButtonDown:
		return 5
	case graphics.ButtonLeft:
		return 6
	case graphics.ButtonRight:
		return 7
	default:
		return -1
	}
}

func is2PButton(b graphics.Button) bool {
	switch b {
	case graphics.Button2A, graphics.Button2B, graphics.Button2Select, graphics.Button2Start,
		graphics.Button2Up, graphics.Button2Down, graphics.Button2Left, graphics.Button2Right:
		return true
	default:
		return false
	}
}

func get2PButtonIndex(b graphics.Button) int {
	switch b {
	case graphics.Button2A:
		return 0
	case graphics.Button2B:
		return 1
	case graphics.Button2Select:
		return 2
	case graphics.Button2Start:
		return 3
	case graphics.Button2Up:
		return 4
	case graphics.Button2Down:
		return 5
	case graphics.Button2Left:
		return 6
	case graphics.Button2Right:
		return 7
	default:
		return -1
	}
}

// SetControllerButtons replaces a controller's full button state.
func (app *Application) SetControllerButtons(controller int, buttons [8]bool) {
	app.bus.SetControllerButtons(controller, buttons)
}

// GetBus exposes the underlying bus, e.g. for a CLI frame-dump loop.
func (app *Application) GetBus() *bus.Bus { return app.bus }

// Stop ends the main loop.
func (app *Application) Stop() { app.running = false }

// Pause suspends frame advancement without ending the loop.
func (app *Application) Pause() { app.paused = true }

// Resume resumes frame advancement.
func (app *Application) Resume() { app.paused = false }

// TogglePause flips the paused state.
func (app *Application) TogglePause() { app.paused = !app.paused }

// Reset restarts the currently loaded cartridge from power-on.
func (app *Application) Reset() {
	if app.bus != nil {
		app.bus.Reset()
	}
}

// IsRunning reports whether the main loop is still active.
func (app *Application) IsRunning() bool { return app.running }

// IsPaused reports whether frame advancement is suspended.
func (app *Application) IsPaused() bool { return app.paused }

// GetFrameCount returns the number of frames rendered this session.
func (app *Application) GetFrameCount() uint64 { return app.frameCount }

// GetUptime returns how long the application has been running.
func (app *Application) GetUptime() time.Duration { return time.Since(app.startTime) }

// GetROMPath returns the path of the currently loaded ROM, if any.
func (app *Application) GetROMPath() string { return app.romPath }

// GetConfig returns the active configuration.
func (app *Application) GetConfig() *Config { return app.config }

// Cleanup releases the presentation backend's resources.
func (app *Application) Cleanup() error {
	if app.graphicsBackend != nil {
		return app.graphicsBackend.Cleanup()
	}
	return nil
}
