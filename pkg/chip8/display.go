package chip8

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the monochrome framebuffer. Cells are 0 when off and hold the
// XORed value when on. The dirty flag is raised by every draw or clear and is
// lowered by the host once it presented a frame.
type Display struct {
	pixels [DisplayWidth * DisplayHeight]byte
	dirty  bool
}

func newDisplay() Display {
	return Display{dirty: true}
}

func (d *Display) Width() int  { return DisplayWidth }
func (d *Display) Height() int { return DisplayHeight }

// Pixels returns the row-major cell data. The slice aliases the framebuffer.
func (d *Display) Pixels() []byte {
	return d.pixels[:]
}

// Pixel reports the cell at (x, y).
func (d *Display) Pixel(x, y int) byte {
	return d.pixels[y*DisplayWidth+x]
}

func (d *Display) Dirty() bool {
	return d.dirty
}

// SetDirty lets the host acknowledge a consumed frame.
func (d *Display) SetDirty(dirty bool) {
	d.dirty = dirty
}

// Clear turns every cell off.
func (d *Display) Clear() {
	d.pixels = [DisplayWidth * DisplayHeight]byte{}
	d.dirty = true
}

func (d *Display) xor(x, y int, val byte) {
	d.pixels[y*DisplayWidth+x] ^= val
}

func (d *Display) isEmpty(x, y int) bool {
	return d.pixels[y*DisplayWidth+x] == 0
}

// RGBA decodes the framebuffer into a DisplayWidth*DisplayHeight*4 byte slice
// suitable for ebiten's WritePixels.
func (d *Display) RGBA(on, off color.RGBA) []byte {
	pix := make([]byte, len(d.pixels)*4)
	for i, cell := range d.pixels {
		c := off
		if cell != 0 {
			c = on
		}
		pix[i*4+0] = c.R
		pix[i*4+1] = c.G
		pix[i*4+2] = c.B
		pix[i*4+3] = c.A
	}
	return pix
}

// Image returns the framebuffer as an *image.RGBA with white pixels on black.
func (d *Display) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    d.RGBA(color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, color.RGBA{0x00, 0x00, 0x00, 0xFF}),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
}

// ScaledImage upscales the framebuffer by an integer factor with nearest
// neighbour sampling so pixels stay sharp.
func (d *Display) ScaledImage(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := d.Image()
	dst := image.NewRGBA(image.Rect(0, 0, DisplayWidth*scale, DisplayHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the framebuffer, upscaled by scale, as a PNG and
// writes it to filename.
func (d *Display) SaveScreenshot(filename string, scale int) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, d.ScaledImage(scale)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
