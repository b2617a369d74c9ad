// Package camera provides the camera controllers used by the card previews,
// the thumbnail renderer and the full viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// OrbitCamera orbits a center point under drag and zoom input. Input moves
// the goal angles; Update eases the current angles toward them.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// Damping is the fraction of the remaining motion applied per Update.
	// 1 disables easing.
	Damping float32

	Near, Far float32

	goalDistance float32
	goalPitch    float32
	goalYaw      float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		Distance:        10,
		RotationX:       0.5,
		MinDistance:     0.01,
		MaxDistance:     1000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		Damping:         0.25,
		Near:            0.1,
		Far:             2000,
	}
	c.snapGoals()
	return c
}

func (c *OrbitCamera) snapGoals() {
	c.goalDistance = c.Distance
	c.goalPitch = c.RotationX
	c.goalYaw = c.RotationY
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Sin(float64(c.RotationY)))
	y := c.Distance * float32(gomath.Sin(float64(c.RotationX)))
	z := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Cos(float64(c.RotationY)))

	return c.Center.Add(math.Vec3{X: x, Y: y, Z: z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns a 60° perspective projection.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(gomath.Pi/3, aspect, c.Near, c.Far)
}

// HandleDrag updates the goal rotation from a pointer drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.goalYaw -= deltaX * c.DragSensitivity
	c.goalPitch = clamp(c.goalPitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates the goal distance from a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.goalDistance = clamp(c.goalDistance-delta*c.goalDistance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Update eases the camera toward its goal. Call once per frame.
func (c *OrbitCamera) Update() {
	k := c.Damping
	if k <= 0 || k > 1 {
		k = 1
	}
	c.Distance += (c.goalDistance - c.Distance) * k
	c.RotationX += (c.goalPitch - c.RotationX) * k
	c.RotationY += (c.goalYaw - c.RotationY) * k
}

// FitToBounds centers the orbit on the box and places the camera at
// center + (size, 0.6·size, size), where size is the box diagonal.
func (c *OrbitCamera) FitToBounds(b math.Box3) {
	if b.Empty() {
		return
	}
	size := b.Size().Length()
	if size <= 0 {
		size = 1
	}
	c.Center = b.Center()

	offset := math.Vec3{X: size, Y: size * 0.6, Z: size}
	c.Distance = offset.Length()
	c.RotationX = float32(gomath.Asin(float64(offset.Y / c.Distance)))
	c.RotationY = gomath.Pi / 4

	c.MinDistance = size * 0.05
	c.MaxDistance = size * 10
	c.Near = size / 100
	c.Far = size * 10
	c.snapGoals()
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
