package main

import (
	"os"

	"github.com/mizar-render/mizar/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "mizar"
	app.Usage = "partition and intersect triangle scenes using a two-level bounding volume hierarchy"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "stats",
			Usage: "print hierarchy statistics for a scene",
			Description: `
Parse a scene definition from a wavefront obj file, build the per-mesh
hierarchies and the top-level structure over all mesh instances and print
a per-mesh statistics table.`,
			ArgsUsage: "scene_file.obj",
			Flags: []cli.Flag{
				cmd.BackendFlag(),
			},
			Action: cmd.Stats,
		},
		{
			Name:        "trace",
			Usage:       "cast a single primary ray and print the intersection",
			Description: `Cast the primary ray through the selected pixel and print the hit record.`,
			ArgsUsage:   "scene_file.obj",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "x",
					Value: 256,
					Usage: "pixel x coordinate",
				},
				cli.IntFlag{
					Name:  "y",
					Value: 256,
					Usage: "pixel y coordinate",
				},
				cmd.BackendFlag(),
			},
			Action: cmd.Trace,
		},
		{
			Name:        "depth",
			Usage:       "render a depth map of the scene",
			Description: `Cast a primary ray per pixel and write the hit distances as a grayscale png.`,
			ArgsUsage:   "scene_file.obj",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "depth.png",
					Usage: "image filename for the rendered depth map",
				},
				cmd.BackendFlag(),
			},
			Action: cmd.Depth,
		},
	}

	app.Run(os.Args)
}
