package imgio

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// Formats lists the encoders Save knows about.
var Formats = []string{"gif", "jpeg", "png", "bmp", "tiff"}

// ParseFormat validates an output format: "same", one of Formats, or a
// format prefixed with "unsup:" to re-encode only images whose source format
// cannot be written back.
func ParseFormat(s string) error {
	if s == "same" {
		return nil
	}
	if f, _ := strings.CutPrefix(s, "unsup:"); canEncode(f) {
		return nil
	}
	return fmt.Errorf("unsupported output format: %s", s)
}

func outputFormat(imgType, outType string) string {
	outType, unsupOnly := strings.CutPrefix(outType, "unsup:")
	if (unsupOnly && canEncode(imgType)) || (outType == "same") {
		outType = imgType
	}
	return outType
}

func canEncode(imgType string) bool {
	for _, known := range Formats {
		if imgType == known {
			return true
		}
	}
	return false
}

// Decode reads and decodes the image stored at path.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()

	img, imgType, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return img, imgType, nil
}

// DecodeConfig reads only the header of the image stored at path.
func DecodeConfig(path string) (image.Config, error) {
	conf, _, err := DecodeHeader(path)
	return conf, err
}

// DecodeHeader is DecodeConfig that also returns the format name.
func DecodeHeader(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()

	conf, imgType, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("could not read image %q: %w", path, err)
	}
	return conf, imgType, nil
}

// DestPath returns the path Save writes to for the same arguments.
func DestPath(imgType, outType, destDir, srcName string) string {
	return filepath.Join(destDir, outName(outputFormat(imgType, outType), srcName))
}

func outName(outType, srcName string) string {
	oldExt := filepath.Ext(srcName)
	return fmt.Sprintf("%s.%s", srcName[:len(srcName)-len(oldExt)], outType)
}

// Save encodes img into destDir under srcName with its extension replaced by
// the output format. The file only appears once fully written. It returns
// the path of the written file.
func Save(img image.Image, imgType, outType, destDir, srcName string) (dest string, err error) {
	outType = outputFormat(imgType, outType)

	destName := outName(outType, srcName)
	dest = filepath.Join(destDir, destName)

	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return "", fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), dest); defErr != nil {
				dest, err = "", fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		} else {
			dest = ""
			os.Remove(outFile.Name())
		}
	}()

	switch outType {
	case "gif":
		if err = gif.Encode(outFile, img, nil); err != nil {
			return "", fmt.Errorf("could not encode GIF destination %q: %w", destName, err)
		}
	case "jpeg":
		if err = jpeg.Encode(outFile, img, &jpeg.Options{Quality: 100}); err != nil {
			return "", fmt.Errorf("could not encode JPEG destination %q: %w", destName, err)
		}
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err = enc.Encode(outFile, img); err != nil {
			return "", fmt.Errorf("could not encode PNG destination %q: %w", destName, err)
		}
	case "bmp":
		if err = bmp.Encode(outFile, img); err != nil {
			return "", fmt.Errorf("could not encode BMP destination %q: %w", destName, err)
		}
	case "tiff":
		if err = tiff.Encode(outFile, img, nil); err != nil {
			return "", fmt.Errorf("could not encode TIFF destination %q: %w", destName, err)
		}
	default:
		return "", fmt.Errorf("unsupported output format: %s", outType)
	}

	canRename = true
	return dest, nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
