package game

import (
	"errors"
	"image"
	"log"
	"time"

	"blockworld/internal/config"
	"blockworld/internal/graphics"
	"blockworld/internal/input"
	"blockworld/internal/profiling"
	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	eyeHeight   = 1.6
	walkSpeed   = 10.0
	fastFactor  = 3.0
	digRate     = 4.0 // damage per second while the dig button is held
	sunStep     = 0.1
	pausedFPS   = 30
	profileTick = time.Second
)

// Palette is the block placed by each selection slot
var Palette = [9]registry.ID{
	registry.Stone, registry.Dirt, registry.Planks,
	registry.Cobblestone, registry.Glass, registry.Glowstone,
	registry.Torch, registry.Sand, registry.RedstoneLamp,
}

// App runs a Session in a window: input, camera, drawing and frame pacing
type App struct {
	window       *glfw.Window
	inputManager *input.InputManager
	settings     *config.Settings
	prof         *profiling.Profiler

	renderer *graphics.ChunkRenderer
	camera   *graphics.Camera
	session  *Session

	palette   [9]registry.ID
	slot      int
	sun       float32
	Paused    bool
	profiling bool

	fpsLimiter  *FPSLimiter
	lastTime    time.Time
	lastProfile time.Time
}

// NewApp creates the renderer and opens the session. The window's GL context
// must be current.
func NewApp(window *glfw.Window, settings *config.Settings, atlas *image.RGBA) (*App, error) {
	prof := profiling.New()
	r, err := graphics.NewChunkRenderer(atlas, prof)
	if err != nil {
		return nil, err
	}
	s, err := NewSession(settings, r, prof)
	if err != nil {
		r.Dispose()
		return nil, err
	}

	w, h := window.GetSize()
	cam := graphics.NewCamera(w, h)
	cam.FarPlane = float32((settings.RenderDistance() + 1) * world.ChunkSizeX)
	cam.Position = s.Viewer().Add(mgl32.Vec3{0, eyeHeight, 0})

	im := input.NewInputManager()
	a := &App{
		window:       window,
		inputManager: im,
		settings:     settings,
		prof:         prof,
		renderer:     r,
		camera:       cam,
		session:      s,
		palette:      Palette,
		sun:          1,
		fpsLimiter:   NewFPSLimiter(settings),
		lastTime:     time.Now(),
	}
	im.Attach(window)
	SetupInputHandlers(a)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return a, nil
}

func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.tick()
	}
}

func (a *App) tick() {
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	glfw.PollEvents()
	a.handleToggles()
	if !a.Paused {
		a.move(dt)
		a.interact(dt)
	}

	a.session.Update(dt, a.feet())
	a.session.Pickup(a.feet())
	a.render()
	a.window.SwapBuffers()

	if a.profiling && now.Sub(a.lastProfile) >= profileTick {
		a.lastProfile = now
		log.Printf("profile: %s", a.prof.TopN(8))
	}

	a.inputManager.PostUpdate()
	a.fpsLimiter.Wait(a.Paused)
}

func (a *App) feet() mgl32.Vec3 {
	return a.camera.Position.Sub(mgl32.Vec3{0, eyeHeight, 0})
}

func (a *App) move(dt float64) {
	im := a.inputManager
	var fwd, right, up float32
	if im.IsActive(input.ActionMoveForward) {
		fwd++
	}
	if im.IsActive(input.ActionMoveBackward) {
		fwd--
	}
	if im.IsActive(input.ActionMoveRight) {
		right++
	}
	if im.IsActive(input.ActionMoveLeft) {
		right--
	}
	if im.IsActive(input.ActionFlyUp) {
		up++
	}
	if im.IsActive(input.ActionFlyDown) {
		up--
	}
	speed := float32(walkSpeed * dt)
	if im.IsActive(input.ActionFast) {
		speed *= fastFactor
	}
	a.camera.Move(fwd*speed, right*speed, up*speed)
}

func (a *App) interact(dt float64) {
	im := a.inputManager
	for i, act := range input.SlotActions {
		if im.JustPressed(act) {
			a.slot = i
			log.Printf("selected %s", a.session.Registry.Type(a.palette[i]).Name)
		}
	}

	eye, dir := a.camera.Position, a.camera.Front()
	if im.IsActive(input.ActionMouseLeft) {
		a.session.Dig(eye, dir, float32(digRate*dt))
	}
	if im.JustPressed(input.ActionMouseRight) {
		err := a.session.Place(eye, dir, a.palette[a.slot])
		if err != nil && !errors.Is(err, ErrCellOccupied) {
			log.Printf("place: %v", err)
		}
	}
	if im.JustPressed(input.ActionMouseMiddle) {
		if hit := a.session.Target(eye, dir); hit.Hit {
			p := hit.HitPosition
			a.palette[a.slot] = a.session.World.Type(p[0], p[1], p[2]).ID
		}
	}
}

func (a *App) handleToggles() {
	im := a.inputManager
	if im.JustPressed(input.ActionPause) {
		a.SetPaused(!a.Paused)
	}
	if im.JustPressed(input.ActionToggleSmooth) {
		a.settings.SetSmoothLighting(!a.settings.SmoothLighting())
		a.session.World.ForEachActive(func(c *world.Chunk) { c.MarkDirty() })
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		a.profiling = !a.profiling
	}
	if im.JustPressed(input.ActionSunUp) {
		a.setSun(a.sun + sunStep)
	}
	if im.JustPressed(input.ActionSunDown) {
		a.setSun(a.sun - sunStep)
	}
	if im.JustPressed(input.ActionSave) {
		if err := a.session.Save(); err != nil {
			log.Printf("save: %v", err)
		}
	}
}

func (a *App) setSun(v float32) {
	a.sun = max(0, min(1, v))
	a.session.SetSun(a.sun)
}

// SetPaused releases or captures the cursor and freezes input handling
func (a *App) SetPaused(paused bool) {
	a.Paused = paused
	if paused {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	} else {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		a.camera.ResetLook()
	}
}

func (a *App) render() {
	var dynamic []float32
	a.session.World.ForEachActive(func(c *world.Chunk) {
		if c.Manual().Len() == 0 {
			return
		}
		verts, err := a.session.Builder.BuildManual(c)
		if err != nil {
			log.Printf("manual blocks %v: %v", c.Coord, err)
			return
		}
		dynamic = append(dynamic, verts...)
	})
	a.renderer.Draw(a.session.World, graphics.Frame{
		Camera:  a.camera,
		Sun:     a.session.World.Light.Sun(),
		Dynamic: dynamic,
	})
}

// RefreshRender repaints during window resizes
func (a *App) RefreshRender() {
	a.render()
	a.window.SwapBuffers()
}

// Close saves and closes the session and frees the GL objects
func (a *App) Close() error {
	err := a.session.Close()
	a.renderer.Dispose()
	return err
}
