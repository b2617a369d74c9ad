package camera

import (
	gomath "math"

	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// Pose is a fixed camera placement.
type Pose struct {
	Eye, Target math.Vec3
	Near, Far   float32
}

// View returns the view matrix for the pose.
func (p Pose) View() math.Mat4 {
	return math.LookAt(p.Eye, p.Target, math.Vec3{Y: 1})
}

// FitVertical places the camera on the +Z axis at the distance where the
// box's largest extent, times margin, fills the vertical field of view.
func FitVertical(bounds math.Box3, fovY, margin float32) Pose {
	center := bounds.Center()
	maxDim := bounds.MaxDim()
	if bounds.Empty() || maxDim <= 0 {
		center = math.Vec3{}
		maxDim = 1
	}
	if margin <= 0 {
		margin = 1
	}

	d := (maxDim / 2) / float32(gomath.Tan(float64(fovY)/2)) * margin
	return Pose{
		Eye:    center.Add(math.Vec3{Z: d}),
		Target: center,
		Near:   d / 100,
		Far:    d * 100,
	}
}
