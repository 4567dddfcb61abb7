package reader

import (
	"strings"

	"github.com/mizar-render/mizar/scene"
)

// Read a scene definition from a local path or http/https url. The format
// is selected based on the file extension.
func ReadScene(path string) (*scene.Scene, error) {
	if !strings.HasSuffix(path, ".obj") {
		return nil, ErrUnsupportedFormat
	}

	res, err := newResource(path, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return newWavefrontReader().Read(res)
}
