package cmd

import (
	"fmt"

	"github.com/mizar-render/mizar/bvh"
	"github.com/mizar-render/mizar/scene"
	"github.com/mizar-render/mizar/scene/reader"
	"github.com/urfave/cli"
)

// Parse the scene file given as the first command argument, select the
// requested acceleration backend and build all hierarchies.
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	sceneFile := ctx.Args().First()
	if sceneFile == "" {
		return nil, fmt.Errorf("no scene file specified")
	}

	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return nil, err
	}

	switch backend := ctx.String("backend"); backend {
	case "", "tlas":
	case "linear":
		sc.SetBackend(func(leaves []*bvh.Leaf) bvh.Intersector {
			return bvh.NewLinear(leaves)
		})
	default:
		return nil, fmt.Errorf("unsupported acceleration backend '%s'", backend)
	}

	if err = sc.Rebuild(); err != nil {
		return nil, err
	}

	return sc, nil
}

// The backend selection flag shared by all commands that build a scene.
func BackendFlag() cli.StringFlag {
	return cli.StringFlag{
		Name:  "backend",
		Value: "tlas",
		Usage: "acceleration backend to use (tlas, linear)",
	}
}
