package cmd

import (
	"fmt"

	"github.com/mizar-render/mizar/geom"
	"github.com/urfave/cli"
)

// Cast the primary ray through a single pixel and print the intersection.
func Trace(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		logger.Error(err)
		return err
	}

	frameW := ctx.Int("width")
	frameH := ctx.Int("height")
	x := ctx.Int("x")
	y := ctx.Int("y")
	if x < 0 || x >= frameW || y < 0 || y >= frameH {
		err = fmt.Errorf("pixel (%d, %d) outside of %dx%d frame", x, y, frameW, frameH)
		logger.Error(err)
		return err
	}

	sc.Camera.SetupFrustum(float32(frameW) / float32(frameH))

	ray := geom.NewRay(sc.Camera.Position, sc.Camera.PrimaryRayDir(x, y, frameW, frameH))
	sc.Intersect(ray)

	if ray.Hit.T == geom.Inf32 {
		fmt.Printf("pixel (%d, %d): no intersection\n", x, y)
		return nil
	}

	point := ray.Origin.Add(ray.Dir.Mul(ray.Hit.T))
	fmt.Printf("pixel (%d, %d): t=%f point=%v instance=%d triangle=%d material=%d u=%f v=%f\n",
		x, y, ray.Hit.T, point, ray.Hit.InstanceID, ray.Hit.Triangle, ray.Hit.Material, ray.Hit.U, ray.Hit.V)
	return nil
}
