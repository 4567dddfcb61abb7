package cmd

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/mizar-render/mizar/geom"
	"github.com/urfave/cli"
)

// Render a grayscale depth map of the scene and write it out as a png file.
// Near surfaces map to white and the far plane fades to black. Rows are
// distributed to one worker per logical CPU.
func Depth(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		logger.Error(err)
		return err
	}

	frameW := ctx.Int("width")
	frameH := ctx.Int("height")
	sc.Camera.SetupFrustum(float32(frameW) / float32(frameH))

	start := time.Now()
	depthBuf := make([]float32, frameW*frameH)

	numWorkers := runtime.NumCPU()
	rowCh := make(chan int, frameH)
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for worker := 0; worker < numWorkers; worker++ {
		go func() {
			defer wg.Done()

			var ray geom.Ray
			for y := range rowCh {
				for x := 0; x < frameW; x++ {
					ray.Reset(sc.Camera.Position, sc.Camera.PrimaryRayDir(x, y, frameW, frameH))
					sc.Intersect(&ray)
					depthBuf[y*frameW+x] = ray.Hit.T
				}
			}
		}()
	}
	for y := 0; y < frameH; y++ {
		rowCh <- y
	}
	close(rowCh)
	wg.Wait()

	logger.Noticef("rendered %dx%d depth map in %d ms", frameW, frameH, time.Since(start).Nanoseconds()/1e6)

	// Normalize hit distances to the observed depth range.
	minDepth, maxDepth := geom.Inf32, float32(0)
	for _, d := range depthBuf {
		if d == geom.Inf32 {
			continue
		}
		if d < minDepth {
			minDepth = d
		}
		if d > maxDepth {
			maxDepth = d
		}
	}

	img := image.NewGray(image.Rect(0, 0, frameW, frameH))
	depthRange := maxDepth - minDepth
	for y := 0; y < frameH; y++ {
		for x := 0; x < frameW; x++ {
			d := depthBuf[y*frameW+x]
			if d == geom.Inf32 {
				continue
			}
			gray := uint8(255)
			if depthRange > 0 {
				gray = uint8(255 - 200*(d-minDepth)/depthRange)
			}
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}

	outFile := ctx.String("out")
	f, err := os.Create(outFile)
	if err != nil {
		logger.Error(err)
		return err
	}
	defer f.Close()

	if err = png.Encode(f, img); err != nil {
		logger.Error(err)
		return err
	}

	logger.Noticef("wrote depth map to %s", outFile)
	return nil
}
