package argb

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Handle is a pixel container owned by someone else.
type Handle interface {
	Width() int
	Height() int
	ARGB(x, y int) uint32
}

// WritableHandle is a Handle whose pixels can be set.
type WritableHandle interface {
	Handle
	SetARGB(x, y int, c uint32)
}

// Committer is implemented by handles that buffer writes. Commit publishes
// every pending write.
type Committer interface {
	Commit() error
}

// Allocator returns a writable handle of exactly width x height pixels, or
// nil when it cannot provide one.
type Allocator func(width, height int) WritableHandle

// FromHandle copies the pixels of src into a new Image.
func FromHandle(src Handle) (*Image, error) {
	if src == nil {
		return nil, &InvalidImageError{Reason: "nil handle"}
	}
	w, h := src.Width(), src.Height()
	if err := check(w, h, w*h); err != nil {
		return nil, err
	}

	dst := &Image{Width: w, Height: h, Pix: make([]uint32, w*h)}
	for y := range h {
		row := dst.Pix[y*w : (y+1)*w]
		for x := range w {
			row[x] = src.ARGB(x, y)
		}
	}
	return dst, nil
}

// ToHandle writes src into a handle obtained from alloc, or into a new
// NRGBA when alloc is nil. The handle is committed before it is returned.
func ToHandle(src *Image, alloc Allocator) (WritableHandle, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if alloc == nil {
		alloc = func(w, h int) WritableHandle { return NewNRGBA(w, h) }
	}

	w, h := src.Width, src.Height
	dst := alloc(w, h)
	if dst == nil {
		return nil, fmt.Errorf("allocating %dx%d handle: %w", w, h, ErrInvalidImage)
	}
	if dst.Width() != w || dst.Height() != h {
		return nil, &InvalidImageError{dst.Width(), dst.Height(), w * h,
			fmt.Sprintf("allocated handle does not match %dx%d", w, h)}
	}

	for y := range h {
		for x, v := range src.Pix[y*w : (y+1)*w] {
			dst.SetARGB(x, y, v)
		}
	}

	if c, ok := dst.(Committer); ok {
		if err := c.Commit(); err != nil {
			return nil, fmt.Errorf("could not commit %dx%d handle: %w", w, h, err)
		}
	}
	return dst, nil
}

// NRGBA adapts *image.NRGBA to WritableHandle. Coordinates are relative to
// the bounds origin.
type NRGBA struct {
	*image.NRGBA
}

var (
	_ WritableHandle = NRGBA{}
	_ draw.Image     = NRGBA{}
)

// NewNRGBA allocates a transparent width x height handle.
func NewNRGBA(width, height int) NRGBA {
	return NRGBA{image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// WrapImage returns img as a handle, converting it to NRGBA when it is not
// one already. Bounds are kept; pixels are copied without scaling. A nil
// img yields an empty handle, which FromHandle rejects.
func WrapImage(img image.Image) NRGBA {
	if img == nil {
		return NRGBA{}
	}
	if n, ok := img.(*image.NRGBA); ok {
		return NRGBA{n}
	}

	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return NRGBA{dst}
}

func (h NRGBA) Width() int {
	if h.NRGBA == nil {
		return 0
	}
	return h.Rect.Dx()
}

func (h NRGBA) Height() int {
	if h.NRGBA == nil {
		return 0
	}
	return h.Rect.Dy()
}

func (h NRGBA) ARGB(x, y int) uint32 {
	i := h.PixOffset(h.Rect.Min.X+x, h.Rect.Min.Y+y)
	p := h.Pix[i : i+4 : i+4]
	return uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
}

func (h NRGBA) SetARGB(x, y int, c uint32) {
	i := h.PixOffset(h.Rect.Min.X+x, h.Rect.Min.Y+y)
	p := h.Pix[i : i+4 : i+4]
	p[0] = uint8(c >> 16)
	p[1] = uint8(c >> 8)
	p[2] = uint8(c)
	p[3] = uint8(c >> 24)
}
