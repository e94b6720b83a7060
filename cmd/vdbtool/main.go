// Command vdbtool voxelizes a polygon file or a generated primitive into a
// narrow band level set and writes the extracted surface and active voxels.
//
//	vdbtool -voxel-size 0.02 -stl out.stl model.obj
//	vdbtool -primitive sphere -adaptivity 0.5 -stl sphere.stl
//
// Settings are read from vdbtool.yaml in the working directory or the user
// config directory and overridden by flags.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/soypat/levelset/internal/config"
	"github.com/soypat/levelset/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.PrintUsage(os.Stdout)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		config.PrintUsage(os.Stderr)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(2)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("vdbtool failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
