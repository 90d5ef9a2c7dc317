package graphics

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	xdraw "golang.org/x/image/draw"
)

// AtlasSize is the edge of the uploaded atlas in pixels: 16x16 cells of 16px
const AtlasSize = 256

const atlasCell = AtlasSize / 16

// LoadAtlasImage decodes an atlas file and scales it to AtlasSize
func LoadAtlasImage(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open atlas: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode atlas %s: %w", path, err)
	}
	return FitAtlas(img), nil
}

// FitAtlas converts img to RGBA at AtlasSize, scaling with nearest neighbour
// so cell edges stay sharp
func FitAtlas(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, AtlasSize, AtlasSize))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// PlaceholderAtlas draws a flat colored atlas used when no texture file is
// available. Every cell gets a distinct color and a darker rim.
func PlaceholderAtlas() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, AtlasSize, AtlasSize))
	for cell := 0; cell < 256; cell++ {
		base := cellColor(uint8(cell))
		rim := color.RGBA{base.R / 2, base.G / 2, base.B / 2, 255}
		cx, cy := (cell%16)*atlasCell, (cell/16)*atlasCell
		r := image.Rect(cx, cy, cx+atlasCell, cy+atlasCell)
		xdraw.Draw(dst, r, &image.Uniform{C: rim}, image.Point{}, xdraw.Src)
		xdraw.Draw(dst, r.Inset(1), &image.Uniform{C: base}, image.Point{}, xdraw.Src)
	}
	return dst
}

func cellColor(cell uint8) color.RGBA {
	h := uint32(cell)*2654435761 + 0x9E37
	return color.RGBA{
		R: uint8(96 + h%128),
		G: uint8(96 + (h>>8)%128),
		B: uint8(96 + (h>>16)%128),
		A: 255,
	}
}

// UploadTexture creates a nearest-filtered 2D texture from rgba
func UploadTexture(rgba *image.RGBA) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(rgba.Rect.Size().X),
		int32(rgba.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}
