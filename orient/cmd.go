package orient

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"picrot/imgio"
	"picrot/parallel"
	"picrot/rotate"

	"github.com/alecthomas/kong"
)

type OpParams struct {
	Scan      string `help:"Source folder to scan" default:"."`
	Portrait  string `help:"Destination folder for portrait images" default:"portrait"`
	Landscape string `help:"Destination folder for landscape images" default:"landscape"`
}

type CLICmd struct {
	Cp  CopyCmd `cmd:"" help:"Copy images to their respective folders"`
	Mv  MoveCmd `cmd:"" help:"Move images to their respective folders"`
	Fix FixCmd  `cmd:"" help:"Write every image in one orientation, rotating the others by 90°"`
}

type CopyCmd struct {
	OpParams
}

func (c *CopyCmd) Validate(kctx *kong.Context) error { return c.resolve() }

func (c *CopyCmd) Run(pool *parallel.Pool) error { return c.sort(pool, copyFile) }

type MoveCmd struct {
	OpParams
}

func (c *MoveCmd) Validate(kctx *kong.Context) error { return c.resolve() }

func (c *MoveCmd) Run(pool *parallel.Pool) error { return c.sort(pool, moveFile) }

func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(abs); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return "", fmt.Errorf("invalid scan path %q: %w", dir, err)
	}
	return abs, nil
}

func (p *OpParams) resolve() error {
	scanDir, err := absDir(p.Scan)
	if err != nil {
		return err
	}
	p.Scan = scanDir

	if !filepath.IsAbs(p.Portrait) {
		p.Portrait = filepath.Join(scanDir, p.Portrait)
	}

	if !filepath.IsAbs(p.Landscape) {
		p.Landscape = filepath.Join(scanDir, p.Landscape)
	}

	return nil
}

func isPortrait(width, height int) bool {
	return height > width
}

func (p *OpParams) sort(pool *parallel.Pool, fileOp fileOp) error {
	if err := os.MkdirAll(p.Portrait, 0o755); err != nil {
		return fmt.Errorf("unable to create portrait destination folder %q: %w", p.Portrait, err)
	}

	if err := os.MkdirAll(p.Landscape, 0o755); err != nil {
		return fmt.Errorf("unable to create landscape destination folder %q: %w", p.Landscape, err)
	}

	files, err := os.ReadDir(p.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", p.Scan, err)
	}

	var portraitCount, landscapeCount atomic.Uint64
	var tally parallel.Tally
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		pool.Do(func() {
			name := filepath.Join(p.Scan, file.Name())
			imgConf, err := imgio.DecodeConfig(name)
			if err != nil {
				tally.Failed()
				slog.Error("could not read image", "file", name, "error", err)
				return
			}

			var dest string
			if isPortrait(imgConf.Width, imgConf.Height) {
				portraitCount.Add(1)
				dest = filepath.Join(p.Portrait, file.Name())
			} else {
				landscapeCount.Add(1)
				dest = filepath.Join(p.Landscape, file.Name())
			}

			if err = fileOp(name, dest); err != nil {
				tally.Failed()
				slog.Error("could not operate image", "from", name, "to", dest, "error", err)
				return
			}
			tally.Done()
		})
	}

	pool.Wait(true)

	_, errCount := tally.Counts()
	slog.Info("stats", "portraits", portraitCount.Load(), "landscapes", landscapeCount.Load(), "errors", errCount,
		"total", portraitCount.Load()+landscapeCount.Load())

	return tally.Err()
}

type FixCmd struct {
	Scan   string `help:"Source folder to scan" default:"."`
	Dest   string `help:"Destination folder. Relative to scan dir if not absolute." default:"fixed"`
	Target string `help:"Orientation every image should end up in" enum:"portrait,landscape" default:"portrait"`
	Ccw    bool   `help:"Rotate counter-clockwise instead of clockwise" default:"false"`
	Format string `help:"Output format of rotated images. If prefixed with 'unsup:' will convert only unsupported formats" enum:"same,gif,unsup:gif,jpeg,unsup:jpeg,png,unsup:png,bmp,unsup:bmp,tiff,unsup:tiff" default:"unsup:png"`
}

func (c *FixCmd) Validate(kctx *kong.Context) error {
	scanDir, err := absDir(c.Scan)
	if err != nil {
		return err
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}
	if c.Dest == c.Scan {
		return fmt.Errorf("destination must differ from scan folder %q", c.Scan)
	}

	switch c.Target {
	case "portrait", "landscape":
	default:
		return fmt.Errorf("invalid target orientation %q", c.Target)
	}
	return imgio.ParseFormat(c.Format)
}

// needsTurn reports whether an image must be rotated to match the target.
// Square images match both orientations.
func (c *FixCmd) needsTurn(width, height int) bool {
	if width == height {
		return false
	}
	return isPortrait(width, height) != (c.Target == "portrait")
}

func (c *FixCmd) Run(pool *parallel.Pool) error {
	degrees := 90
	if c.Ccw {
		degrees = -90
	}

	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var rotated, kept atomic.Uint64
	var tally parallel.Tally
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		pool.Do(func() {
			name := filepath.Join(c.Scan, file.Name())
			logger := slog.Default().With("file", name)

			imgConf, imgType, err := imgio.DecodeHeader(name)
			if err != nil {
				tally.Failed()
				logger.Error("could not read image", "error", err)
				return
			}

			if c.needsTurn(imgConf.Width, imgConf.Height) {
				dest := imgio.DestPath(imgType, c.Format, c.Dest, file.Name())
				if err = checkFile("rotate", name, dest); err == nil {
					_, err = rotate.File(logger, name, degrees, c.Format, c.Dest)
				}
				if err == nil {
					rotated.Add(1)
				}
			} else {
				err = copyFile(name, filepath.Join(c.Dest, file.Name()))
				if err == nil {
					kept.Add(1)
				}
			}
			if err != nil {
				tally.Failed()
				logger.Error("could not fix image", "error", err)
				return
			}
			tally.Done()
		})
	}

	pool.Wait(true)

	_, errCount := tally.Counts()
	slog.Info("stats", "rotated", rotated.Load(), "kept", kept.Load(), "errors", errCount,
		"total", rotated.Load()+kept.Load())

	return tally.Err()
}
