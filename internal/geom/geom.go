// Package geom turns hand landmarks into screen-space aim points.
// Everything here is pure; callers own canvas sizes and depth assumptions.
package geom

import "math"

// parallelStep extends the aim point when the ray never meets the screen plane.
const parallelStep = 0.1

const epsilon = 1e-6

// Point3 is a landmark position, normalized [0,1] on x/y with z a
// relative-depth unit.
type Point3 struct {
	X, Y, Z float64
}

// Point2 is a point in the same normalized space as the landmarks.
type Point2 struct {
	X, Y float64
}

// Angles describes hand orientation in degrees.
type Angles struct {
	Rotation float64 // roll in the screen plane, mirrored display
	Yaw      float64 // left/right turn
	Tilt     float64 // forward/back pitch, out of the screen plane
}

// Orientation derives the hand angles from the wrist and the base of the
// middle finger. A zero-length segment is not an error; all angles are zero.
func Orientation(wrist, middleBase Point3) Angles {
	dx := middleBase.X - wrist.X
	dy := middleBase.Y - wrist.Y
	dz := middleBase.Z - wrist.Z
	if dx == 0 && dy == 0 && dz == 0 {
		return Angles{}
	}
	return Angles{
		// The display is mirrored, so roll measures against the flipped x axis.
		Rotation: deg(math.Atan2(dy, wrist.X-middleBase.X)),
		Yaw:      deg(math.Atan2(dz, dx)),
		Tilt:     deg(math.Atan2(dz, math.Hypot(dx, dy))),
	}
}

// ProjectCrosshair casts a ray from origin along rotation/tilt and intersects
// it with the plane z = planeZ. A ray parallel to the plane has no
// intersection; the point is nudged a fixed step along the in-plane direction
// instead.
func ProjectCrosshair(origin Point3, rotationDeg, tiltDeg, planeZ float64) Point2 {
	rot := rad(rotationDeg)
	tilt := rad(tiltDeg)
	dirX := math.Cos(rot) * math.Cos(tilt)
	dirY := math.Sin(rot) * math.Cos(tilt)
	dirZ := math.Sin(tilt)

	if math.Abs(dirZ) <= epsilon {
		return Point2{X: origin.X + parallelStep*dirX, Y: origin.Y + parallelStep*dirY}
	}
	t := (planeZ - origin.Z) / dirZ
	return Point2{X: origin.X + t*dirX, Y: origin.Y + t*dirY}
}

// ClampToCanvas denormalizes p against a canvas and clamps it inside.
func ClampToCanvas(p Point2, width, height float64) Point2 {
	return Point2{
		X: clamp(p.X*width, 0, width),
		Y: clamp(p.Y*height, 0, height),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func deg(r float64) float64 { return r * 180 / math.Pi }
func rad(d float64) float64 { return d * math.Pi / 180 }
