package rotate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"picrot/imgio"
	"picrot/parallel"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Scan   string `help:"Source folder to scan" default:"."`
	Dest   string `help:"Destination folder for rotated pictures. Relative to scan dir if not absolute. If same as scan dir, will overwrite source files." default:"rotated"`
	Angle  string `help:"Rotation to apply: cw (90° clockwise), ccw (90° counter-clockwise), 180 or 270" enum:"cw,ccw,180,270" default:"cw"`
	Format string `help:"Output format of rotated image. If prefixed with 'unsup:' will convert only unsupported formats" enum:"same,gif,unsup:gif,jpeg,unsup:jpeg,png,unsup:png,bmp,unsup:bmp,tiff,unsup:tiff" default:"unsup:png"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if _, err := Degrees(c.Angle); err != nil {
		return err
	}
	return imgio.ParseFormat(c.Format)
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	degrees, err := Degrees(c.Angle)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var tally parallel.Tally
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		pool.Do(func() {
			filePath := filepath.Join(c.Scan, file.Name())
			logger := slog.Default().With("file", filePath, "degrees", degrees)

			if _, err := File(logger, filePath, degrees, c.Format, c.Dest); err != nil {
				tally.Failed()
				logger.Error("could not rotate image", "error", err)
				return
			}
			tally.Done()
		})
	}

	pool.Wait(true)

	processed, failed := tally.Counts()
	slog.Info("stats", "processed", processed, "errors", failed, "total", processed+failed)

	return tally.Err()
}

// Degrees maps a rotation name to a clockwise angle.
func Degrees(angle string) (int, error) {
	switch angle {
	case "cw":
		return 90, nil
	case "ccw":
		return -90, nil
	case "180":
		return 180, nil
	case "270":
		return 270, nil
	}
	return 0, fmt.Errorf("invalid angle %q, should be cw, ccw, 180 or 270", angle)
}
