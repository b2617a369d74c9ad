package camera

import (
	gomath "math"

	"github.com/Faultbox/buildings-gallery/pkg/math"
)

const (
	basePolar   = gomath.Pi / 3 // 60°
	baseAzimuth = gomath.Pi / 4 // 45°

	// Full pointer travel maps to ±45° azimuth and ±27° elevation.
	azimuthRange   = gomath.Pi / 2
	elevationRange = 0.3 * gomath.Pi

	// Smoothing is the fraction of the remaining delta covered per Step.
	Smoothing = 0.1

	// RadiusScale multiplies the bounding radius to get the orbit radius.
	RadiusScale = 2.2
	minRadius   = 0.01

	// PreviewFOV is the vertical field of view of card previews.
	PreviewFOV = gomath.Pi / 4

	minPolar = 1e-3
)

// HoverOrbit is the card preview camera. The pointer position sets target
// angle offsets from a fixed base pose; Step eases toward them.
type HoverOrbit struct {
	center math.Vec3
	radius float32

	azimuth, elevation             float32
	targetAzimuth, targetElevation float32
}

// NewHoverOrbit creates a camera framing the given bounds.
func NewHoverOrbit(bounds math.Box3) *HoverOrbit {
	h := &HoverOrbit{}
	h.Frame(bounds)
	return h
}

// Frame centers the orbit on the box centroid at RadiusScale times its
// bounding radius and resets all offsets.
func (h *HoverOrbit) Frame(bounds math.Box3) {
	h.center = math.Vec3{}
	h.radius = minRadius
	if !bounds.Empty() {
		h.center = bounds.Center()
		h.radius = bounds.Radius() * RadiusScale
		if h.radius < minRadius {
			h.radius = minRadius
		}
	}
	h.azimuth, h.elevation = 0, 0
	h.targetAzimuth, h.targetElevation = 0, 0
}

// PointerMove sets the targets from a pointer position normalized to the
// surface. Values outside [0,1] are clamped.
func (h *HoverOrbit) PointerMove(nx, ny float32) {
	nx = clamp(nx, 0, 1)
	ny = clamp(ny, 0, 1)
	h.targetAzimuth = (nx - 0.5) * azimuthRange
	h.targetElevation = (ny - 0.5) * elevationRange
}

// PointerLeave returns the targets to the base pose.
func (h *HoverOrbit) PointerLeave() {
	h.targetAzimuth, h.targetElevation = 0, 0
}

// Step moves the current angles Smoothing of the way toward the targets.
func (h *HoverOrbit) Step() {
	h.azimuth += (h.targetAzimuth - h.azimuth) * Smoothing
	h.elevation += (h.targetElevation - h.elevation) * Smoothing
}

// Angles returns the current azimuth and elevation offsets in radians.
func (h *HoverOrbit) Angles() (azimuth, elevation float32) {
	return h.azimuth, h.elevation
}

// Targets returns the target azimuth and elevation offsets in radians.
func (h *HoverOrbit) Targets() (azimuth, elevation float32) {
	return h.targetAzimuth, h.targetElevation
}

// Center returns the orbit center.
func (h *HoverOrbit) Center() math.Vec3 { return h.center }

// Radius returns the orbit radius.
func (h *HoverOrbit) Radius() float32 { return h.radius }

// Eye returns the camera position for the current angles.
func (h *HoverOrbit) Eye() math.Vec3 {
	polar := clamp(basePolar+h.elevation, minPolar, gomath.Pi-minPolar)
	return h.center.Add(math.Spherical(h.radius, polar, baseAzimuth+h.azimuth))
}

// View returns the view matrix looking at the orbit center.
func (h *HoverOrbit) View() math.Mat4 {
	return math.LookAt(h.Eye(), h.center, math.Vec3{Y: 1})
}

// Projection returns the preview projection. Near and far scale with the
// orbit radius so small and large models clip alike.
func (h *HoverOrbit) Projection(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(PreviewFOV, aspect, h.radius*0.01, h.radius*10)
}
