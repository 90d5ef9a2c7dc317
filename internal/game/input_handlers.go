package game

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// SetupInputHandlers installs the window callbacks not owned by the input
// manager: mouse look, resizes, focus and repaint
func SetupInputHandlers(app *App) {
	window := app.window

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !app.Paused {
			app.camera.Look(xpos, ypos)
		}
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		app.camera.SetViewport(w.GetSize())
		// NOTE: Do not render here. Rely on SetRefreshCallback for smooth resizing on macOS.
	})

	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused && !app.Paused {
			app.SetPaused(true)
		}
	})

	window.SetRefreshCallback(func(w *glfw.Window) {
		app.RefreshRender()
	})
}
