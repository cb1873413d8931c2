package orient

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"picrot/imgio"
	"picrot/parallel"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func seed(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tall.png"), 2, 5)
	writePNG(t, filepath.Join(dir, "wide.png"), 5, 2)
	writePNG(t, filepath.Join(dir, "square.png"), 3, 3)
	return dir
}

func TestCopy(t *testing.T) {
	dir := seed(t)

	cmd := &CopyCmd{OpParams{Scan: dir, Portrait: "portrait", Landscape: "landscape"}}
	if err := cmd.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := cmd.Run(parallel.Start(2)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, p := range []string{
		"portrait/tall.png", "landscape/wide.png", "landscape/square.png",
		"tall.png", "wide.png", "square.png",
	} {
		if !exists(filepath.Join(dir, p)) {
			t.Errorf("%s is missing", p)
		}
	}
}

func TestMove(t *testing.T) {
	dir := seed(t)
	other := t.TempDir()

	cmd := &MoveCmd{OpParams{Scan: dir, Portrait: other, Landscape: "wide"}}
	if err := cmd.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cmd.Portrait != other {
		t.Errorf("absolute portrait path rewritten to %q", cmd.Portrait)
	}
	if err := cmd.Run(parallel.Start(1)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !exists(filepath.Join(other, "tall.png")) || exists(filepath.Join(dir, "tall.png")) {
		t.Error("tall.png was not moved")
	}
	if !exists(filepath.Join(dir, "wide", "wide.png")) || exists(filepath.Join(dir, "wide.png")) {
		t.Error("wide.png was not moved")
	}
}

func TestCopyExisting(t *testing.T) {
	dir := seed(t)
	if err := os.Mkdir(filepath.Join(dir, "portrait"), 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "portrait", "tall.png"), 1, 1)

	cmd := &CopyCmd{OpParams{Scan: dir, Portrait: "portrait", Landscape: "landscape"}}
	if err := cmd.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := cmd.Run(parallel.Start(1)); err == nil {
		t.Error("expected an error when the destination exists")
	}
}

func TestFix(t *testing.T) {
	tests := []struct {
		target string
		sizes  map[string][2]int
	}{
		{"portrait", map[string][2]int{"tall.png": {2, 5}, "wide.png": {2, 5}, "square.png": {3, 3}}},
		{"landscape", map[string][2]int{"tall.png": {5, 2}, "wide.png": {5, 2}, "square.png": {3, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			dir := seed(t)

			cmd := &FixCmd{Scan: dir, Dest: "fixed", Target: tt.target, Format: "unsup:png"}
			if err := cmd.Validate(nil); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if err := cmd.Run(parallel.Start(3)); err != nil {
				t.Fatalf("Run: %v", err)
			}

			for name, want := range tt.sizes {
				conf, err := imgio.DecodeConfig(filepath.Join(dir, "fixed", name))
				if err != nil {
					t.Errorf("%s: %v", name, err)
					continue
				}
				if conf.Width != want[0] || conf.Height != want[1] {
					t.Errorf("%s: size = %dx%d, want %dx%d", name, conf.Width, conf.Height, want[0], want[1])
				}
			}
		})
	}
}

func TestFixExistingDestination(t *testing.T) {
	dir := seed(t)
	fixed := filepath.Join(dir, "fixed")
	if err := os.Mkdir(fixed, 0o755); err != nil {
		t.Fatal(err)
	}
	// one file that would be rotated, one that would be copied
	writePNG(t, filepath.Join(fixed, "wide.png"), 1, 1)
	writePNG(t, filepath.Join(fixed, "tall.png"), 1, 1)

	cmd := &FixCmd{Scan: dir, Dest: "fixed", Target: "portrait", Format: "unsup:png"}
	if err := cmd.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	err := cmd.Run(parallel.Start(2))
	if err == nil || err.Error() != "error processing 2 files" {
		t.Errorf("Run error = %v, want both existing files refused", err)
	}

	for _, name := range []string{"wide.png", "tall.png"} {
		conf, err := imgio.DecodeConfig(filepath.Join(fixed, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if conf.Width != 1 || conf.Height != 1 {
			t.Errorf("%s was overwritten: %dx%d", name, conf.Width, conf.Height)
		}
	}
	if !exists(filepath.Join(fixed, "square.png")) {
		t.Error("square.png is missing")
	}
}

func TestFixValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cmd  FixCmd
	}{
		{"dest is scan", FixCmd{Scan: dir, Dest: ".", Target: "portrait", Format: "png"}},
		{"bad target", FixCmd{Scan: dir, Dest: "out", Target: "diagonal", Format: "png"}},
		{"bad format", FixCmd{Scan: dir, Dest: "out", Target: "portrait", Format: "heic"}},
		{"missing scan", FixCmd{Scan: filepath.Join(dir, "nope"), Dest: "out", Target: "portrait", Format: "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := checkFile("copy", src, filepath.Join(dir, "b")); err != nil {
		t.Errorf("fresh destination: %v", err)
	}
	if err := checkFile("copy", src, src); err == nil {
		t.Error("existing destination should fail")
	}
	if err := checkFile("copy", dir, filepath.Join(dir, "c")); err == nil {
		t.Error("directory source should fail")
	}
}
