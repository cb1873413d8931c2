// Package argb holds rasters as packed 32-bit ARGB values and transforms
// them by index permutation only: pixel values are copied, never recomputed.
package argb

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
)

var (
	ErrInvalidImage     = errors.New("invalid image")
	ErrUnsupportedAngle = errors.New("unsupported rotation angle")
)

// InvalidImageError reports an image whose dimensions or pixel count are
// unusable. It matches ErrInvalidImage with errors.Is.
type InvalidImageError struct {
	Width  int
	Height int
	Len    int
	Reason string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image %dx%d (%d pixels): %s", e.Width, e.Height, e.Len, e.Reason)
}

func (e *InvalidImageError) Is(target error) bool {
	return target == ErrInvalidImage
}

// Image is a raster of non-premultiplied ARGB pixels. The pixel at (x, y)
// is Pix[y*Width+x], alpha in the high byte followed by red, green and blue.
type Image struct {
	Width  int
	Height int
	Pix    []uint32
}

var _ image.Image = &Image{}

// New returns an image holding a copy of pix.
func New(width, height int, pix []uint32) (*Image, error) {
	if err := check(width, height, len(pix)); err != nil {
		return nil, err
	}
	return &Image{Width: width, Height: height, Pix: slices.Clone(pix)}, nil
}

func check(width, height, n int) error {
	switch {
	case width <= 0:
		return &InvalidImageError{width, height, n, "width must be positive"}
	case height <= 0:
		return &InvalidImageError{width, height, n, "height must be positive"}
	case height > math.MaxInt/width:
		return &InvalidImageError{width, height, n, "dimensions overflow"}
	case n != width*height:
		return &InvalidImageError{width, height, n, fmt.Sprintf("expected %d pixels", width*height)}
	}
	return nil
}

// Validate reports an *InvalidImageError unless both dimensions are positive
// and Pix holds exactly Width*Height pixels.
func (img *Image) Validate() error {
	if img == nil {
		return &InvalidImageError{Reason: "nil image"}
	}
	return check(img.Width, img.Height, len(img.Pix))
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	return &Image{Width: img.Width, Height: img.Height, Pix: slices.Clone(img.Pix)}
}

// Equal compares dimensions and pixels.
func (img *Image) Equal(o *Image) bool {
	if img == nil || o == nil {
		return img == o
	}
	return img.Width == o.Width && img.Height == o.Height && slices.Equal(img.Pix, o.Pix)
}

func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

func (img *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return color.NRGBA{}
	}
	return Unpack(img.Pix[y*img.Width+x])
}

// Pack encodes c as 0xAARRGGBB.
func Pack(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack decodes a 0xAARRGGBB value.
func Unpack(v uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: uint8(v >> 24),
	}
}
