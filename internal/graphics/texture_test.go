package graphics

import (
	"image"
	"image/color"
	"testing"
)

func TestFitAtlasScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	red := color.RGBA{255, 0, 0, 255}
	// top-left 2x2 source cell
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, red)
		}
	}
	dst := FitAtlas(src)
	if dst.Bounds().Dx() != AtlasSize || dst.Bounds().Dy() != AtlasSize {
		t.Fatalf("size = %v", dst.Bounds())
	}
	if got := dst.RGBAAt(atlasCell-1, atlasCell-1); got != red {
		t.Fatalf("first cell not scaled: %v", got)
	}
	if got := dst.RGBAAt(atlasCell, 0); got == red {
		t.Fatalf("second cell bled")
	}
}

func TestPlaceholderAtlasCells(t *testing.T) {
	img := PlaceholderAtlas()
	if img.RGBAAt(0, 0).A != 255 {
		t.Fatalf("rim not opaque")
	}
	a := img.RGBAAt(atlasCell/2, atlasCell/2)
	b := img.RGBAAt(atlasCell+atlasCell/2, atlasCell/2)
	if a == b {
		t.Fatalf("neighbouring cells share a color: %v", a)
	}
	if rim := img.RGBAAt(atlasCell, 0); rim == b {
		t.Fatalf("cell has no rim")
	}
}
