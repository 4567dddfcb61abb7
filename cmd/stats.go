package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

// Print the per-mesh hierarchy statistics for a scene.
func Stats(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		logger.Error(err)
		return err
	}

	fmt.Printf("scene information:\n%s", sc.Stats())
	return nil
}
