package scene

import "errors"

var (
	ErrNoInstances = errors.New("scene: no models added to the scene")
	ErrUnknownMesh = errors.New("scene: instance references unknown mesh")
)
