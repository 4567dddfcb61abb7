package scene

import (
	"math"

	"github.com/mizar-render/mizar/types"
)

// Stores the ray directions at the four corners of the camera frustum
// (top-left, top-right, bottom-left, bottom-right). Per-pixel rays are
// generated by interpolating the corner rays.
type Frustum [4]types.Vec3

// The camera supplies primary rays for the preview renderer and the trace
// command. It is intentionally minimal; sensor simulation is out of scope.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	frustum Frustum
}

// Create a camera with the given vertical FOV looking down -Z.
func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Recalculate the frustum corner rays for the given aspect ratio. Must be
// called after changing the camera position or orientation.
func (c *Camera) SetupFrustum(aspect float32) {
	forward := c.LookAt.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)

	halfH := float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
	halfW := halfH * aspect

	c.frustum[0] = forward.Sub(right.Mul(halfW)).Add(up.Mul(halfH))
	c.frustum[1] = forward.Add(right.Mul(halfW)).Add(up.Mul(halfH))
	c.frustum[2] = forward.Sub(right.Mul(halfW)).Sub(up.Mul(halfH))
	c.frustum[3] = forward.Add(right.Mul(halfW)).Sub(up.Mul(halfH))
}

// Generate the unit direction of the primary ray through pixel (x, y) of a
// w x h frame by bilinear interpolation of the frustum corner rays.
func (c *Camera) PrimaryRayDir(x, y, w, h int) types.Vec3 {
	u := (float32(x) + 0.5) / float32(w)
	v := (float32(y) + 0.5) / float32(h)

	top := c.frustum[0].Add(c.frustum[1].Sub(c.frustum[0]).Mul(u))
	bottom := c.frustum[2].Add(c.frustum[3].Sub(c.frustum[2]).Mul(u))
	return top.Add(bottom.Sub(top).Mul(v)).Normalize()
}
