package config

import (
	"flag"
	"fmt"
	"io"
)

// flags holds command line overrides. Only flags explicitly set on the
// command line override file values.
type flags struct {
	set map[string]bool

	config     string
	debug      bool
	input      string
	primitive  string
	voxelSize  float64
	scale      float64
	isovalue   float64
	adaptivity float64
	stl        string
	obj        string
	centers    string
	saveConfig string
}

func parseFlags(args []string) (*flags, error) {
	fl := &flags{set: make(map[string]bool)}
	fs := fl.flagSet()
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { fl.set[f.Name] = true })
	if fs.NArg() > 0 && !fl.set["input"] {
		fl.input = fs.Arg(0)
		fl.set["input"] = true
	}
	return fl, nil
}

// PrintUsage writes the command line usage to w.
func PrintUsage(w io.Writer) {
	fs := (&flags{}).flagSet()
	fs.SetOutput(w)
	fmt.Fprintln(w, "usage: vdbtool [flags] [input.obj]")
	fs.PrintDefaults()
}

func (fl *flags) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("vdbtool", flag.ContinueOnError)
	fs.StringVar(&fl.config, "config", "", "Path to config file")
	fs.BoolVar(&fl.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&fl.input, "input", "", "Polygon file to voxelize")
	fs.StringVar(&fl.primitive, "primitive", "", "Generate a primitive shape: box, sphere or cylinder")
	fs.Float64Var(&fl.voxelSize, "voxel-size", 0, "Voxel size in world units")
	fs.Float64Var(&fl.scale, "scale", 0, "Uniform scale applied to input vertices")
	fs.Float64Var(&fl.isovalue, "iso", 0, "Isovalue of the extracted surface")
	fs.Float64Var(&fl.adaptivity, "adaptivity", 0, "Surface simplification in [0, 1]")
	fs.StringVar(&fl.stl, "stl", "", "Write the extracted surface to this STL file")
	fs.StringVar(&fl.obj, "obj", "", "Write the input mesh to this OBJ file")
	fs.StringVar(&fl.centers, "centers", "", "Write active voxel centers to this file")
	fs.StringVar(&fl.saveConfig, "save-config", "", "Write the resolved configuration to this file")
	return fs
}

// apply applies CLI flag overrides to the config.
func (fl *flags) apply(cfg *Config) {
	if fl.debug {
		cfg.Logging.Level = "debug"
	}
	if fl.set["input"] {
		cfg.Input = fl.input
	}
	if fl.set["primitive"] {
		cfg.Primitive.Shape = fl.primitive
	}
	if fl.set["voxel-size"] {
		cfg.Voxel.Size = fl.voxelSize
	}
	if fl.set["scale"] {
		cfg.Voxel.Scale = fl.scale
	}
	if fl.set["iso"] {
		cfg.Mesh.Isovalue = fl.isovalue
	}
	if fl.set["adaptivity"] {
		cfg.Mesh.Adaptivity = fl.adaptivity
	}
	if fl.set["stl"] {
		cfg.Output.STL = fl.stl
	}
	if fl.set["obj"] {
		cfg.Output.OBJ = fl.obj
	}
	if fl.set["centers"] {
		cfg.Output.Centers = fl.centers
	}
	if fl.set["save-config"] {
		cfg.Output.Config = fl.saveConfig
	}
}
