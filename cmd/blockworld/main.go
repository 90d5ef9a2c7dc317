package main

import (
	"flag"
	"image"
	"log"
	"runtime"

	"blockworld/internal/config"
	"blockworld/internal/game"
	"blockworld/internal/graphics"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	settings := config.Default()
	var (
		seed    = flag.Int64("seed", settings.Seed(), "world seed, used only when the world is created")
		dir     = flag.String("dir", "world", "save directory; empty keeps the world in memory")
		render  = flag.Int("render", settings.RenderDistance(), "render distance in chunks")
		fps     = flag.Int("fps", settings.FPSLimit(), "frame rate cap; 0 is unlimited")
		smooth  = flag.Bool("smooth", settings.SmoothLighting(), "smooth lighting")
		atlas   = flag.String("atlas", "", "texture atlas image; empty draws placeholder colors")
		width   = flag.Int("width", 1280, "window width")
		height  = flag.Int("height", 720, "window height")
		workers = flag.Int("workers", 0, "generation workers; 0 keeps the default")
	)
	flag.Parse()

	settings.SetSeed(*seed)
	settings.SetSaveDir(*dir)
	settings.SetRenderDistance(*render)
	settings.SetFPSLimit(*fps)
	settings.SetSmoothLighting(*smooth)
	if *workers > 0 {
		_, l, s, r := settings.Workers()
		settings.SetWorkers(*workers, l, s, r)
	}

	if err := glfw.Init(); err != nil {
		closer.Fatalln("glfw:", err)
	}
	defer glfw.Terminate()

	window, err := game.SetupWindow(*width, *height, "blockworld")
	if err != nil {
		closer.Fatalln("window:", err)
	}
	defer window.Destroy()

	app, err := game.NewApp(window, settings, loadAtlas(*atlas))
	if err != nil {
		closer.Fatalln("open world:", err)
	}

	// a signal asks the main loop to stop and waits for the world to be saved
	done := make(chan struct{})
	closer.Bind(func() {
		select {
		case <-done:
			return
		default:
		}
		glfw.PostEmptyEvent()
		window.SetShouldClose(true)
		<-done
	})

	app.Run()
	if err := app.Close(); err != nil {
		log.Printf("close: %v", err)
	}
	close(done)
}

func loadAtlas(path string) *image.RGBA {
	if path == "" {
		return graphics.PlaceholderAtlas()
	}
	img, err := graphics.LoadAtlasImage(path)
	if err != nil {
		log.Printf("atlas: %v, using placeholder colors", err)
		return graphics.PlaceholderAtlas()
	}
	return img
}
