package argb

import "fmt"

// Rotate90 turns src a quarter turn. Directions use screen coordinates:
// origin at the top-left corner, y increasing downward.
func Rotate90(src *Image, clockwise bool) (*Image, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	w, h := src.Width, src.Height
	dst := &Image{Width: h, Height: w, Pix: make([]uint32, len(src.Pix))}
	for i := range w {
		row := dst.Pix[i*h : (i+1)*h]
		if clockwise {
			for j := range h {
				row[j] = src.Pix[(h-1-j)*w+i]
			}
		} else {
			for j := range h {
				row[j] = src.Pix[j*w+(w-1-i)]
			}
		}
	}
	return dst, nil
}

// Rotate180 reverses the pixel sequence.
func Rotate180(src *Image) (*Image, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	n := len(src.Pix)
	dst := &Image{Width: src.Width, Height: src.Height, Pix: make([]uint32, n)}
	for k := range n {
		dst.Pix[k] = src.Pix[n-1-k]
	}
	return dst, nil
}

// Rotate turns src clockwise by degrees, which must be a multiple of 90.
// Negative angles turn counter-clockwise.
func Rotate(src *Image, degrees int) (*Image, error) {
	if degrees%90 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAngle, degrees)
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return Rotate90(src, true)
	case 180:
		return Rotate180(src)
	case 270:
		return Rotate90(src, false)
	default:
		return src.Clone(), nil
	}
}
