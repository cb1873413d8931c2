package main

import (
	"log/slog"
	"os"

	"picrot/orient"
	"picrot/parallel"
	"picrot/rotate"

	"github.com/alecthomas/kong"
)

type cli struct {
	Workers int  `help:"Number of images processed concurrently, 0 for one per CPU" default:"0"`
	Verbose bool `help:"Log every file operation" short:"v"`

	Rotate rotate.CLICmd `cmd:"" help:"Rotate images by 90°, 180° or 270° without resampling"`
	Orient orient.CLICmd `cmd:"" help:"Sort or fix images by orientation"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("picrot"),
		kong.Description("Lossless quarter-turn rotation and orientation tools for folders of images."),
		kong.UsageOnError(),
	)

	if c.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	pool := parallel.Start(c.Workers)
	slog.Debug("running", "command", kctx.Command(), "workers", pool.Workers())

	if err := kctx.Run(pool); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
