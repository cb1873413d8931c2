package rotate

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"picrot/argb"
	"picrot/imgio"
)

// Image rotates a decoded image clockwise by degrees, a multiple of 90.
func Image(img image.Image, degrees int) (*image.NRGBA, error) {
	packed, err := argb.FromHandle(argb.WrapImage(img))
	if err != nil {
		return nil, err
	}

	packed, err = argb.Rotate(packed, degrees)
	if err != nil {
		return nil, err
	}

	h, err := argb.ToHandle(packed, nil)
	if err != nil {
		return nil, err
	}
	return h.(argb.NRGBA).NRGBA, nil
}

// File decodes the image at path, rotates it and saves it in destDir.
// It returns the path of the written file.
func File(logger *slog.Logger, path string, degrees int, format, destDir string) (string, error) {
	img, imgType, err := imgio.Decode(path)
	if err != nil {
		return "", err
	}

	b := img.Bounds()
	logger.Debug("rotating", "type", imgType, "width", b.Dx(), "height", b.Dy())

	rotated, err := Image(img, degrees)
	if err != nil {
		return "", fmt.Errorf("could not rotate %q: %w", path, err)
	}

	dest, err := imgio.Save(rotated, imgType, format, destDir, filepath.Base(path))
	if err != nil {
		return "", err
	}
	logger.Info("rotated", "to", dest)
	return dest, nil
}
